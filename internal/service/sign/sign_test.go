package sign

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderSignature(t *testing.T) {
	secret := []byte("order secret")

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte("order_A1|pay_B2"))
	expected := hex.EncodeToString(mac.Sum(nil))

	got := OrderSignature("order_A1", "pay_B2", secret)
	require.Equal(t, expected, got)
}

func TestVerifyOrderSignature(t *testing.T) {
	secret := []byte("order secret")
	valid := OrderSignature("order_A1", "pay_B2", secret)

	cases := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{name: "valid", orderID: "order_A1", paymentID: "pay_B2", signature: valid, want: true},
		{name: "another payment id", orderID: "order_A1", paymentID: "pay_XX", signature: valid, want: false},
		{name: "another order id", orderID: "order_XX", paymentID: "pay_B2", signature: valid, want: false},
		{name: "empty signature", orderID: "order_A1", paymentID: "pay_B2", signature: "", want: false},
		{name: "truncated signature", orderID: "order_A1", paymentID: "pay_B2", signature: valid[:10], want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, VerifyOrderSignature(tc.orderID, tc.paymentID, tc.signature, secret))
		})
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := []byte("webhook secret")
	body := []byte(`{"event":"payment.captured","payload":{"order_id":"o1","payment_id":"p1"}}`)

	valid := WebhookSignature(body, secret)

	assert.True(t, VerifyWebhookSignature(body, valid, secret))
	// подпись считается по байтам тела, любое изменение тела инвалидирует ее
	assert.False(t, VerifyWebhookSignature(append(body, ' '), valid, secret))
	assert.False(t, VerifyWebhookSignature(body, valid, []byte("another secret")))
}
