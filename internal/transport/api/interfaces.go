package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/service"
)

// AccountServicer интерфейс исключительно для моков.
type AccountServicer interface {
	Open(ctx context.Context, accountID int64) (*domain.Account, error)
	Balance(ctx context.Context, accountID int64) (*domain.Account, error)
	History(ctx context.Context, accountID int64, limit uint) ([]domain.LedgerEntry, error)
	Close(ctx context.Context, accountID int64) error
}

type WalletServicer interface {
	Unlock(ctx context.Context, readerID, creatorID, cost int64) (*domain.LedgerEntry, error)
	Tip(ctx context.Context, fromAccountID, toAccountID, amount int64) error
}

type SettlementServicer interface {
	CreateOrder(
		ctx context.Context,
		accountID int64,
		coinAmount int64,
		price service.CoinPrice,
	) (*domain.SettlementOrder, error)
	ConfirmSettlement(ctx context.Context, orderID, paymentID, signature string) (int64, error)
}

type PayoutServicer interface {
	Request(ctx context.Context, accountID, amount int64) (*domain.LedgerEntry, error)
}

// WebhookServicer операции, доступные шлюзу через вебхук. Аутентификация здесь не
// JWT, а подпись тела запроса.
type WebhookServicer interface {
	ApplyCapture(ctx context.Context, orderID string, paymentID string) (int64, error)
	FailOrder(ctx context.Context, orderID string, reason string) error
	RefundCapture(ctx context.Context, paymentID string) error
}
