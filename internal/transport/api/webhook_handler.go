package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/service/sign"
)

const HeaderWebhookSignature = "X-Webhook-Signature"

const (
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
	EventRefundCreated   = "refund.created"
)

type WebhookHandler struct {
	svs           WebhookServicer
	webhookSecret []byte
}

func NewWebhookHandler(svs WebhookServicer, webhookSecret []byte) *WebhookHandler {
	return &WebhookHandler{
		svs:           svs,
		webhookSecret: webhookSecret,
	}
}

type webhookEvent struct {
	Event   string         `json:"event"`
	Payload webhookPayload `json:"payload"`
}

type webhookPayload struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Reason    string `json:"reason"`
}

// Handle POST RouteGroup + WebhookPaymentRoute. Вебхук платежного шлюза.
// Подпись считается по сырым байтам тела, поэтому тело читается до парсинга JSON.
//
// Порядок доставки шлюз не гарантирует: событие по уже финализированному заказу
// подтверждаем со статусом 200, иначе шлюз будет ретраить его бесконечно. Ошибка
// обработки валидного события возвращает 500 - ретрай безопасен, применение
// идемпотентно.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	if !sign.VerifyWebhookSignature(body, c.GetHeader(HeaderWebhookSignature), h.webhookSecret) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var event webhookEvent
	if unmarshalErr := json.Unmarshal(body, &event); unmarshalErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, unmarshalErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	switch event.Event {
	case EventPaymentCaptured:
		h.handleCaptured(reqCtx, c, event.Payload)
	case EventPaymentFailed:
		h.handleFailed(reqCtx, c, event.Payload)
	case EventRefundCreated:
		h.handleRefund(reqCtx, c, event.Payload)
	default:
		// Неизвестные события подтверждаем не обрабатывая.
		c.AbortWithStatus(http.StatusOK)
	}
}

func (h *WebhookHandler) handleCaptured(ctx context.Context, c *gin.Context, payload webhookPayload) {
	if payload.OrderID == "" || payload.PaymentID == "" {
		c.AbortWithStatus(http.StatusUnprocessableEntity)
		return
	}

	if _, err := h.svs.ApplyCapture(ctx, payload.OrderID, payload.PaymentID); err != nil {
		if errors.Is(err, domain.ErrOrderFinalized) {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	c.AbortWithStatus(http.StatusOK)
}

func (h *WebhookHandler) handleFailed(ctx context.Context, c *gin.Context, payload webhookPayload) {
	if payload.OrderID == "" {
		c.AbortWithStatus(http.StatusUnprocessableEntity)
		return
	}

	reason := payload.Reason
	if reason == "" {
		reason = "failed by gateway"
	}

	if err := h.svs.FailOrder(ctx, payload.OrderID, reason); err != nil {
		if errors.Is(err, domain.ErrOrderFinalized) {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	c.AbortWithStatus(http.StatusOK)
}

func (h *WebhookHandler) handleRefund(ctx context.Context, c *gin.Context, payload webhookPayload) {
	if payload.PaymentID == "" {
		c.AbortWithStatus(http.StatusUnprocessableEntity)
		return
	}

	if err := h.svs.RefundCapture(ctx, payload.PaymentID); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}
	c.AbortWithStatus(http.StatusOK)
}
