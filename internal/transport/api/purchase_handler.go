package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/service"
)

const defaultCurrency = "INR"

type PurchaseHandler struct {
	svs SettlementServicer
}

func NewPurchaseHandler(svs SettlementServicer) *PurchaseHandler {
	return &PurchaseHandler{
		svs: svs,
	}
}

type PurchaseCreateParams struct {
	Coins    int64           `binding:"required,gt=0"            json:"coins"`
	Price    decimal.Decimal `binding:"required"                 json:"price"`
	Currency string          `binding:"omitempty,currency_code"  json:"currency"`
}

type PurchaseCreateResponse struct {
	OrderID  string `json:"order_id"`
	Coins    int64  `json:"coins"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Create POST RouteGroup + PurchaseRoute. Создает заказ на покупку монет во внешнем
// шлюзе. Монеты будут зачислены только после подтверждения оплаты.
func (h *PurchaseHandler) Create(c *gin.Context) {
	currentAccountID := getAccountIDFromContext(c)

	var params PurchaseCreateParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	if !params.Price.IsPositive() {
		c.AbortWithStatus(http.StatusUnprocessableEntity)
		return
	}
	if params.Currency == "" {
		params.Currency = defaultCurrency
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	order, err := h.svs.CreateOrder(reqCtx, currentAccountID, params.Coins, service.CoinPrice{
		Price:    params.Price,
		Currency: params.Currency,
	})
	if err != nil {
		var gwErr *domain.GatewayError
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			c.AbortWithStatus(http.StatusUnprocessableEntity)
		case errors.As(err, &gwErr):
			_ = c.AbortWithError(http.StatusBadGateway, err).SetType(gin.ErrorTypePrivate)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusCreated, &PurchaseCreateResponse{
		OrderID:  order.OrderID,
		Coins:    order.CoinAmount,
		Price:    order.Price.String(),
		Currency: order.Currency,
		Receipt:  order.Receipt,
		Status:   string(order.Status),
	})
}

type PurchaseVerifyParams struct {
	OrderID   string `binding:"required" json:"order_id"`
	PaymentID string `binding:"required" json:"payment_id"`
	Signature string `binding:"required" json:"signature"`
}

type PurchaseVerifyResponse struct {
	Balance int64 `json:"balance"`
}

// Verify POST RouteGroup + PurchaseVerifyRoute. Клиентское подтверждение оплаты с
// подписью шлюза. Повторная доставка того же платежа вернет тот же баланс без
// второго зачисления.
func (h *PurchaseHandler) Verify(c *gin.Context) {
	var params PurchaseVerifyParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	balance, err := h.svs.ConfirmSettlement(reqCtx, params.OrderID, params.PaymentID, params.Signature)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidSignature):
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		case errors.Is(err, domain.ErrRecordNotFound):
			c.AbortWithStatus(http.StatusNotFound)
		case errors.Is(err, domain.ErrOrderFinalized):
			c.AbortWithStatus(http.StatusConflict)
		default:
			_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		}
		return
	}

	c.JSON(http.StatusOK, &PurchaseVerifyResponse{Balance: balance})
}
