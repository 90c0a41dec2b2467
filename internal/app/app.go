package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/debdutta777/noobwriter-wallet/internal/config"
	"github.com/debdutta777/noobwriter-wallet/internal/repository/pgrepo"
	"github.com/debdutta777/noobwriter-wallet/internal/repository/repoargs"
	"github.com/debdutta777/noobwriter-wallet/internal/service"
	"github.com/debdutta777/noobwriter-wallet/internal/transport/api"
	"github.com/debdutta777/noobwriter-wallet/internal/transport/gateway"
	"github.com/debdutta777/noobwriter-wallet/pkg/uow"
	"github.com/sirupsen/logrus"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting wallet service on %s", a.Config.RunAddress)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	gatewayClient := gateway.NewHTTPClient(a.Config.GatewayBaseURL, a.Config.GatewayKeyID, a.Config.GatewayKeySecret)

	services, sErr := service.Factory(unitOfWork, service.FactoryArgs{
		Gateway:             gatewayClient,
		OrderSecret:         []byte(a.Config.GatewayKeySecret),
		WelcomeBonus:        a.Config.WelcomeBonus,
		CreatorSharePercent: a.Config.CreatorSharePercent,
	})
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}

	router, routerErr := api.New(api.RouterArgs{
		Logger:            a.Logger,
		AccountService:    services.AccountService,
		WalletService:     services.WalletService,
		SettlementService: services.SettlementService,
		PayoutService:     services.PayoutService,
		WebhookService:    services.SettlementService,
		JWTSecretKey:      []byte(a.Config.JWTAccountSecret),
		WebhookSecret:     []byte(a.Config.GatewayWebhookSecret),
	})
	if routerErr != nil {
		return fmt.Errorf("app run: %s", routerErr.Error())
	}

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	reaper := gateway.NewReaper(services.SettlementService, gatewayClient, a.Logger).
		SetWorkers(5).           //nolint:mnd
		SetLimitPerIteration(50) //nolint:mnd

	go reaper.Run(notifyCtx)

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	// account repo
	accountRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewAccountRepository(dbtx)
	}
	if regErr := unitOfWork.Register(uow.RepositoryName(repoargs.AccountRepoName), accountRepoFactoryFn); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	// ledger repo
	ledgerRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewLedgerRepository(dbtx)
	}
	if regErr := unitOfWork.Register(uow.RepositoryName(repoargs.LedgerRepoName), ledgerRepoFactoryFn); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	// settlement order repo
	orderRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewOrderRepository(dbtx)
	}
	if regErr := unitOfWork.Register(uow.RepositoryName(repoargs.OrderRepoName), orderRepoFactoryFn); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	// idempotency key repo
	idempotencyRepoFactoryFn := func(dbtx uow.DBTX) uow.Repository {
		return pgrepo.NewIdempotencyRepository(dbtx)
	}
	if regErr := unitOfWork.Register(
		uow.RepositoryName(repoargs.IdempotencyRepoName),
		idempotencyRepoFactoryFn,
	); regErr != nil {
		return nil, fmt.Errorf("init UOW: %s", regErr.Error())
	}

	return unitOfWork, nil
}
