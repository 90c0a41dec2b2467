// Package sign считает и проверяет подписи платежного шлюза: HMAC-SHA256 от
// "orderID|paymentID" для подтверждения оплаты и от сырого тела запроса для вебхуков.
// Секрет известен только нам и шлюзу.
package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// OrderSignature возвращает hex-подпись подтверждения оплаты.
func OrderSignature(orderID, paymentID string, secret []byte) string {
	return digest([]byte(orderID+"|"+paymentID), secret)
}

// VerifyOrderSignature проверяет подпись подтверждения. Сравнение за константное время.
func VerifyOrderSignature(orderID, paymentID, signature string, secret []byte) bool {
	expected := OrderSignature(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookSignature возвращает hex-подпись сырого тела вебхука.
func WebhookSignature(body, secret []byte) string {
	return digest(body, secret)
}

// VerifyWebhookSignature проверяет подпись тела вебхука. Тело должно быть взято
// до какого-либо парсинга - подпись считается по байтам как есть.
func VerifyWebhookSignature(body []byte, signature string, secret []byte) bool {
	expected := WebhookSignature(body, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func digest(payload, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
