package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/repository/repoargs"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type AccountRepository interface {
	Create(ctx context.Context, accountID int64) (*domain.Account, error)
	FindByID(ctx context.Context, accountID int64) (*domain.Account, error)
	LockByID(ctx context.Context, accountID int64) (*domain.Account, error)
	UpdateBalance(ctx context.Context, accountID, balance, version int64) error
	Close(ctx context.Context, accountID int64) error
}

type LedgerRepository interface {
	Create(ctx context.Context, entry repoargs.LedgerEntryCreate) (*domain.LedgerEntry, error)
	FindByID(ctx context.Context, entryID int64) (*domain.LedgerEntry, error)
	FindByExternalRef(ctx context.Context, externalRef string) (*domain.LedgerEntry, error)
	GetByAccountID(ctx context.Context, accountID int64, limit uint) ([]domain.LedgerEntry, error)
	SumDeltas(ctx context.Context, accountID int64) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order repoargs.SettlementOrderCreate) (*domain.SettlementOrder, error)
	FindByOrderID(ctx context.Context, orderID string) (*domain.SettlementOrder, error)
	MarkCompleted(ctx context.Context, orderID string, paymentID string) (*domain.SettlementOrder, error)
	MarkFailed(ctx context.Context, orderID string, reason string) (bool, error)
	ListPendingBefore(ctx context.Context, olderThan time.Time, limit uint) ([]domain.SettlementOrder, error)
}

type IdempotencyRepository interface {
	Reserve(ctx context.Context, key string) (bool, error)
}

// GatewayOrderArgs аргументы создания заказа во внешнем шлюзе. Amount - в минорных
// единицах валюты (пайсы, копейки).
type GatewayOrderArgs struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// GatewayOrder состояние заказа на стороне шлюза.
type GatewayOrder struct {
	OrderID   string
	Status    GatewayOrderStatus
	Amount    int64
	Currency  string
	Receipt   string
	PaymentID string
}

type GatewayOrderStatus string

const (
	GatewayOrderCreated GatewayOrderStatus = "created"
	GatewayOrderPaid    GatewayOrderStatus = "paid"
	GatewayOrderExpired GatewayOrderStatus = "expired"
)

// GatewayClient клиент внешнего платежного шлюза.
type GatewayClient interface {
	CreateOrder(ctx context.Context, args GatewayOrderArgs) (*GatewayOrder, error)
	FetchOrder(ctx context.Context, orderID string) (*GatewayOrder, error)
}

// CoinPrice прайс на покупку монет, нужен SettlementService для конвертации в минорные единицы.
type CoinPrice struct {
	Price    decimal.Decimal
	Currency string
}
