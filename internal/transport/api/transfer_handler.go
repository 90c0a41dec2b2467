package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
)

type TransferHandler struct {
	walletSvs WalletServicer
	payoutSvs PayoutServicer
}

func NewTransferHandler(walletSvs WalletServicer, payoutSvs PayoutServicer) *TransferHandler {
	return &TransferHandler{
		walletSvs: walletSvs,
		payoutSvs: payoutSvs,
	}
}

type UnlockParams struct {
	CreatorID int64 `binding:"required,gt=0" json:"creator_id"`
	Cost      int64 `binding:"required,gt=0" json:"cost"`
}

type EntryResponse struct {
	EntryID      int64 `json:"entry_id"`
	Delta        int64 `json:"delta"`
	BalanceAfter int64 `json:"balance_after"`
}

// Unlock POST RouteGroup + UnlockRoute. Разблокировка главы: списание с читателя и
// зачисление доли автору одной транзакцией.
func (h *TransferHandler) Unlock(c *gin.Context) {
	currentAccountID := getAccountIDFromContext(c)

	var params UnlockParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	entry, err := h.walletSvs.Unlock(reqCtx, currentAccountID, params.CreatorID, params.Cost)
	if err != nil {
		h.abortTransferError(c, err)
		return
	}

	c.JSON(http.StatusOK, &EntryResponse{
		EntryID:      entry.ID,
		Delta:        entry.Delta,
		BalanceAfter: entry.BalanceAfter,
	})
}

type TipParams struct {
	ToAccountID int64 `binding:"required,gt=0" json:"to_account_id"`
	Amount      int64 `binding:"required,gt=0" json:"amount"`
}

// Tip POST RouteGroup + TipRoute. Чаевые другому аккаунту.
func (h *TransferHandler) Tip(c *gin.Context) {
	currentAccountID := getAccountIDFromContext(c)

	var params TipParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	if err := h.walletSvs.Tip(reqCtx, currentAccountID, params.ToAccountID, params.Amount); err != nil {
		h.abortTransferError(c, err)
		return
	}

	c.AbortWithStatus(http.StatusOK)
}

type PayoutParams struct {
	Amount int64 `binding:"required,gt=0" json:"amount"`
}

// Payout POST RouteGroup + PayoutRoute. Заявка на вывод заработанных монет. Монеты
// списываются сразу, возврат произойдет только при отклонении заявки.
func (h *TransferHandler) Payout(c *gin.Context) {
	currentAccountID := getAccountIDFromContext(c)

	var params PayoutParams
	if bindErr := c.ShouldBindJSON(&params); bindErr != nil {
		_ = c.AbortWithError(http.StatusBadRequest, bindErr).SetType(gin.ErrorTypeBind)
		return
	}

	reqCtx, cancel := context.WithTimeout(c, DefaultServiceTimeout)
	defer cancel()

	entry, err := h.payoutSvs.Request(reqCtx, currentAccountID, params.Amount)
	if err != nil {
		h.abortTransferError(c, err)
		return
	}

	c.JSON(http.StatusOK, &EntryResponse{
		EntryID:      entry.ID,
		Delta:        entry.Delta,
		BalanceAfter: entry.BalanceAfter,
	})
}

func (h *TransferHandler) abortTransferError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		c.AbortWithStatus(http.StatusPaymentRequired)
	case errors.Is(err, domain.ErrAccountNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	case errors.Is(err, domain.ErrSelfTransfer), errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAccountClosed):
		c.AbortWithStatus(http.StatusUnprocessableEntity)
	default:
		_ = c.AbortWithError(http.StatusInternalServerError, err).SetType(gin.ErrorTypePrivate)
	}
}
