package gateway

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/service"
)

type Client interface {
	FetchOrder(ctx context.Context, orderID string) (*service.GatewayOrder, error)
}

type Servicer interface {
	StalePendingOrders(ctx context.Context, maxAge time.Duration, limit uint) ([]domain.SettlementOrder, error)
	ApplyCapture(ctx context.Context, orderID string, paymentID string) (int64, error)
	FailOrder(ctx context.Context, orderID string, reason string) error
}
