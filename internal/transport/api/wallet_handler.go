package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
)

type WalletHandler struct {
	accountSvs AccountServicer
}

func NewWalletHandler(accountSvs AccountServicer) *WalletHandler {
	return &WalletHandler{
		accountSvs: accountSvs,
	}
}

type BalanceResponse struct {
	AccountID int64                    `json:"account_id"`
	Balance   int64                    `json:"balance"`
	Status    domain.AccountStatusType `json:"status"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// Balance GET RouteGroup + BalanceRoute.
func (h *WalletHandler) Balance(c *gin.Context) {
	currentAccountID := getAccountIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	account, err := h.accountSvs.Balance(reqCtx, currentAccountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, &BalanceResponse{
		AccountID: account.ID,
		Balance:   account.Balance,
		Status:    account.Status,
		UpdatedAt: account.UpdatedAt,
	})
}

// Close POST RouteGroup + CloseRoute. Мягко закрывает кошелек текущего аккаунта:
// движения блокируются, баланс и история остаются читаемыми. Идемпотентен.
func (h *WalletHandler) Close(c *gin.Context) {
	currentAccountID := getAccountIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.accountSvs.Close(reqCtx, currentAccountID); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.Status(http.StatusNoContent)
}

type TransactionResponseItem struct {
	ID           int64                `json:"id"`
	Delta        int64                `json:"delta"`
	Kind         domain.EntryKindType `json:"kind"`
	BalanceAfter int64                `json:"balance_after"`
	ExternalRef  *string              `json:"external_ref,omitempty"`
	RefEntryID   *int64               `json:"ref_entry_id,omitempty"`
	CreatedAt    string               `json:"created_at"`
}

// Transactions GET RouteGroup + TransactionsRoute. История операций, новые сверху.
// Количество ограничивается query-параметром limit.
func (h *WalletHandler) Transactions(c *gin.Context) {
	currentAccountID := getAccountIDFromContext(c)

	var limit uint
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, parseErr := strconv.ParseUint(limitStr, 10, 32)
		if parseErr != nil {
			c.AbortWithStatus(http.StatusUnprocessableEntity)
			return
		}
		limit = uint(parsed)
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	entries, err := h.accountSvs.History(reqCtx, currentAccountID, limit)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	if len(entries) == 0 {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	response := make([]TransactionResponseItem, len(entries))
	for i, entry := range entries {
		response[i] = TransactionResponseItem{
			ID:           entry.ID,
			Delta:        entry.Delta,
			Kind:         entry.Kind,
			BalanceAfter: entry.BalanceAfter,
			ExternalRef:  entry.ExternalRef,
			RefEntryID:   entry.RefEntryID,
			CreatedAt:    entry.CreatedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, response)
}

// Open POST RouteGroup + OpenRoute. Открывает кошелек текущему аккаунту. Повторный
// вызов возвращает уже открытый кошелек, бонус второй раз не начисляется.
func (h *WalletHandler) Open(c *gin.Context) {
	currentAccountID := getAccountIDFromContext(c)

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	account, err := h.accountSvs.Open(reqCtx, currentAccountID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
		return
	}

	c.JSON(http.StatusOK, &BalanceResponse{
		AccountID: account.ID,
		Balance:   account.Balance,
		Status:    account.Status,
		UpdatedAt: account.UpdatedAt,
	})
}
