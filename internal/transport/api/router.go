package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/debdutta777/noobwriter-wallet/internal/transport/api/middlewares"
)

const (
	DefaultServiceTimeout = 3 * time.Second
)

const (
	RouteGroup          = "/api"
	BalanceRoute        = "/wallet/balance"
	TransactionsRoute   = "/wallet/transactions"
	OpenRoute           = "/wallet/open"
	CloseRoute          = "/wallet/close"
	PurchaseRoute       = "/wallet/purchase"
	PurchaseVerifyRoute = "/wallet/purchase/verify"
	UnlockRoute         = "/wallet/unlock"
	TipRoute            = "/wallet/tip"
	PayoutRoute         = "/wallet/payout"
	WebhookPaymentRoute = "/webhooks/payment"
)

type RouterArgs struct {
	Logger            *logrus.Logger
	AccountService    AccountServicer
	WalletService     WalletServicer
	SettlementService SettlementServicer
	PayoutService     PayoutServicer
	WebhookService    WebhookServicer
	JWTSecretKey      []byte
	WebhookSecret     []byte
}

func New(args RouterArgs) (*gin.Engine, error) {
	if err := registerValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if args.Logger != nil {
		r.Use(middlewares.Logger(args.Logger))
	}
	r.Use(middlewares.Errors())

	walletHandler := NewWalletHandler(args.AccountService)
	purchaseHandler := NewPurchaseHandler(args.SettlementService)
	transferHandler := NewTransferHandler(args.WalletService, args.PayoutService)
	webhookHandler := NewWebhookHandler(args.WebhookService, args.WebhookSecret)

	api := r.Group(RouteGroup)

	// Вебхук аутентифицируется подписью тела, JWT у шлюза нет.
	api.POST(WebhookPaymentRoute, webhookHandler.Handle)

	api.Use(middlewares.AuthRequired(args.JWTSecretKey))
	// ниже все роуты группы требуют авторизованного аккаунта.
	api.GET(BalanceRoute, walletHandler.Balance)
	api.GET(TransactionsRoute, walletHandler.Transactions)
	api.POST(OpenRoute, walletHandler.Open)
	api.POST(CloseRoute, walletHandler.Close)

	api.POST(PurchaseRoute, purchaseHandler.Create)
	api.POST(PurchaseVerifyRoute, purchaseHandler.Verify)

	api.POST(UnlockRoute, transferHandler.Unlock)
	api.POST(TipRoute, transferHandler.Tip)
	api.POST(PayoutRoute, transferHandler.Payout)
	return r, nil
}
