package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/repository/repoargs"
	"github.com/debdutta777/noobwriter-wallet/internal/service"
	"github.com/debdutta777/noobwriter-wallet/internal/service/mocks"
	"github.com/debdutta777/noobwriter-wallet/internal/service/sign"
	"github.com/debdutta777/noobwriter-wallet/pkg/uow"
	uowmocks "github.com/debdutta777/noobwriter-wallet/pkg/uow/mocks"
)

type SettlementServiceTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockUOW         *uowmocks.MockUOW
	mockTX          *uowmocks.MockTX
	mockAccountRepo *mocks.MockAccountRepository
	mockLedgerRepo  *mocks.MockLedgerRepository
	mockOrderRepo   *mocks.MockOrderRepository
	mockIdemRepo    *mocks.MockIdempotencyRepository
	mockGateway     *mocks.MockGatewayClient
	orderSecret     []byte
	service         *service.SettlementService
}

func TestSettlementServiceSuite(t *testing.T) {
	suite.Run(t, new(SettlementServiceTestSuite))
}

func (s *SettlementServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockAccountRepo = mocks.NewMockAccountRepository(s.mockCtrl)
	s.mockLedgerRepo = mocks.NewMockLedgerRepository(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockIdemRepo = mocks.NewMockIdempotencyRepository(s.mockCtrl)
	s.mockGateway = mocks.NewMockGatewayClient(s.mockCtrl)
	s.orderSecret = []byte("order secret")

	// Репозитории вне транзакции при инициализации сервиса.
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().
		GetRepository(uow.RepositoryName(repoargs.LedgerRepoName)).
		Return(s.mockLedgerRepo, nil).AnyTimes()

	// Репозитории внутри транзакции.
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.AccountRepoName)).
		Return(s.mockAccountRepo, nil).AnyTimes()
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.LedgerRepoName)).
		Return(s.mockLedgerRepo, nil).AnyTimes()
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.IdempotencyRepoName)).
		Return(s.mockIdemRepo, nil).AnyTimes()

	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(s.T().Context(), s.mockTX)
		},
	).AnyTimes()

	var err error
	s.service, err = service.NewSettlementService(s.mockUOW, s.mockGateway, s.orderSecret)
	s.Require().NoError(err)
}

func (s *SettlementServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *SettlementServiceTestSuite) TestCreateOrder() {
	var accountID int64 = 1
	price := service.CoinPrice{Price: decimal.NewFromInt(449), Currency: "INR"}

	s.mockGateway.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args service.GatewayOrderArgs) (*service.GatewayOrder, error) {
			// цена уходит в шлюз в минорных единицах.
			s.Equal(int64(44900), args.Amount)
			s.Equal("INR", args.Currency)
			s.NotEmpty(args.Receipt)
			return &service.GatewayOrder{OrderID: "order_A1", Status: service.GatewayOrderCreated}, nil
		})

	s.mockOrderRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.SettlementOrderCreate) (*domain.SettlementOrder, error) {
			s.Equal("order_A1", args.OrderID)
			s.Equal(accountID, args.AccountID)
			s.Equal(int64(500), args.CoinAmount)
			s.True(price.Price.Equal(args.Price))
			return &domain.SettlementOrder{
				OrderID:    args.OrderID,
				AccountID:  args.AccountID,
				CoinAmount: args.CoinAmount,
				Price:      args.Price,
				Currency:   args.Currency,
				Receipt:    args.Receipt,
				Status:     domain.OrderStatusPending,
			}, nil
		})

	order, err := s.service.CreateOrder(s.T().Context(), accountID, 500, price)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusPending, order.Status)
	s.Equal("order_A1", order.OrderID)
}

func (s *SettlementServiceTestSuite) TestCreateOrder_GatewayError() {
	gwErr := domain.NewGatewayError("create order", 503, nil)
	s.mockGateway.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).Return(nil, gwErr)

	_, err := s.service.CreateOrder(s.T().Context(), 1, 500, service.CoinPrice{
		Price:    decimal.NewFromInt(449),
		Currency: "INR",
	})
	var target *domain.GatewayError
	s.Require().ErrorAs(err, &target)
}

// TestConfirmSettlement повторное подтверждение того же платежа возвращает тот же
// баланс без второго зачисления.
func (s *SettlementServiceTestSuite) TestConfirmSettlement() {
	var accountID int64 = 1
	orderID := "order_A1"
	paymentID := "pay_B2"
	signature := sign.OrderSignature(orderID, paymentID, s.orderSecret)

	pending := &domain.SettlementOrder{
		OrderID:    orderID,
		AccountID:  accountID,
		CoinAmount: 500,
		Status:     domain.OrderStatusPending,
	}
	completed := &domain.SettlementOrder{
		OrderID:    orderID,
		AccountID:  accountID,
		CoinAmount: 500,
		Status:     domain.OrderStatusCompleted,
		PaymentID:  &paymentID,
	}

	// первое подтверждение: заказ завершается и монеты зачисляются.
	s.mockOrderRepo.EXPECT().FindByOrderID(gomock.Any(), orderID).Return(pending, nil)
	s.mockIdemRepo.EXPECT().Reserve(gomock.Any(), paymentID).Return(true, nil)
	s.mockOrderRepo.EXPECT().MarkCompleted(gomock.Any(), orderID, paymentID).Return(completed, nil)
	s.mockAccountRepo.EXPECT().LockByID(gomock.Any(), accountID).
		Return(&domain.Account{ID: accountID, Balance: 0, Version: 1, Status: domain.AccountStatusOpen}, nil)
	s.mockLedgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.LedgerEntryCreate) (*domain.LedgerEntry, error) {
			s.Equal(int64(500), args.Delta)
			s.Equal(domain.EntryKindPurchase, args.Kind)
			s.Require().NotNil(args.ExternalRef)
			s.Equal(paymentID, *args.ExternalRef)
			return &domain.LedgerEntry{ID: 1, AccountID: accountID, Delta: 500, BalanceAfter: 500}, nil
		})
	s.mockAccountRepo.EXPECT().UpdateBalance(gomock.Any(), accountID, int64(500), int64(1)).Return(nil)

	balance, err := s.service.ConfirmSettlement(s.T().Context(), orderID, paymentID, signature)
	s.Require().NoError(err)
	s.Equal(int64(500), balance)

	// повторное подтверждение: заказ уже completed, результат добирается из леджера.
	s.mockOrderRepo.EXPECT().FindByOrderID(gomock.Any(), orderID).Return(completed, nil)
	s.mockLedgerRepo.EXPECT().FindByExternalRef(gomock.Any(), paymentID).
		Return(&domain.LedgerEntry{ID: 1, AccountID: accountID, Delta: 500, BalanceAfter: 500}, nil)

	replayBalance, replayErr := s.service.ConfirmSettlement(s.T().Context(), orderID, paymentID, signature)
	s.Require().NoError(replayErr)
	s.Equal(balance, replayBalance)
}

func (s *SettlementServiceTestSuite) TestConfirmSettlement_InvalidSignature() {
	signature := sign.OrderSignature("order_A1", "pay_other", s.orderSecret)

	// подпись посчитана для другого платежа, до репозиториев дело не доходит.
	_, err := s.service.ConfirmSettlement(s.T().Context(), "order_A1", "pay_B2", signature)
	s.Require().ErrorIs(err, domain.ErrInvalidSignature)
}

func (s *SettlementServiceTestSuite) TestApplyCapture_FailedOrderIsFinal() {
	orderID := "order_A1"
	s.mockOrderRepo.EXPECT().FindByOrderID(gomock.Any(), orderID).
		Return(&domain.SettlementOrder{OrderID: orderID, Status: domain.OrderStatusFailed}, nil)

	_, err := s.service.ApplyCapture(s.T().Context(), orderID, "pay_B2")
	s.Require().ErrorIs(err, domain.ErrOrderFinalized)
}

// TestApplyCapture_ConcurrentDuplicate конкурентная доставка проиграла гонку за ключ
// идемпотентности: транзакция ничего не пишет, результат добирается из леджера.
func (s *SettlementServiceTestSuite) TestApplyCapture_ConcurrentDuplicate() {
	orderID := "order_A1"
	paymentID := "pay_B2"

	s.mockOrderRepo.EXPECT().FindByOrderID(gomock.Any(), orderID).
		Return(&domain.SettlementOrder{
			OrderID:    orderID,
			AccountID:  1,
			CoinAmount: 500,
			Status:     domain.OrderStatusPending,
		}, nil)
	s.mockIdemRepo.EXPECT().Reserve(gomock.Any(), paymentID).Return(false, nil)
	s.mockLedgerRepo.EXPECT().FindByExternalRef(gomock.Any(), paymentID).
		Return(&domain.LedgerEntry{ID: 1, AccountID: 1, Delta: 500, BalanceAfter: 500}, nil)

	balance, err := s.service.ApplyCapture(s.T().Context(), orderID, paymentID)
	s.Require().NoError(err)
	s.Equal(int64(500), balance)
}

func (s *SettlementServiceTestSuite) TestFailOrder() {
	orderID := "order_A1"
	s.mockOrderRepo.EXPECT().MarkFailed(gomock.Any(), orderID, "expired by gateway").Return(true, nil)

	s.Require().NoError(s.service.FailOrder(s.T().Context(), orderID, "expired by gateway"))
}

// TestFailOrder_AfterCompletion завершенный заказ провалить нельзя: зачисление уже
// в леджере.
func (s *SettlementServiceTestSuite) TestFailOrder_AfterCompletion() {
	orderID := "order_A1"
	s.mockOrderRepo.EXPECT().MarkFailed(gomock.Any(), orderID, "expired by gateway").Return(false, nil)
	s.mockOrderRepo.EXPECT().FindByOrderID(gomock.Any(), orderID).
		Return(&domain.SettlementOrder{OrderID: orderID, Status: domain.OrderStatusCompleted}, nil)

	err := s.service.FailOrder(s.T().Context(), orderID, "expired by gateway")
	s.Require().ErrorIs(err, domain.ErrOrderFinalized)
}

func (s *SettlementServiceTestSuite) TestFailOrder_AlreadyFailed() {
	orderID := "order_A1"
	s.mockOrderRepo.EXPECT().MarkFailed(gomock.Any(), orderID, "expired by gateway").Return(false, nil)
	s.mockOrderRepo.EXPECT().FindByOrderID(gomock.Any(), orderID).
		Return(&domain.SettlementOrder{OrderID: orderID, Status: domain.OrderStatusFailed}, nil)

	s.Require().NoError(s.service.FailOrder(s.T().Context(), orderID, "expired by gateway"))
}

func (s *SettlementServiceTestSuite) TestRefundCapture() {
	paymentID := "pay_B2"
	original := &domain.LedgerEntry{ID: 1, AccountID: 1, Delta: 500, Kind: domain.EntryKindPurchase, BalanceAfter: 500}

	s.mockLedgerRepo.EXPECT().FindByExternalRef(gomock.Any(), paymentID).Return(original, nil)
	s.mockAccountRepo.EXPECT().LockByID(gomock.Any(), original.AccountID).
		Return(&domain.Account{ID: original.AccountID, Balance: 500, Version: 2, Status: domain.AccountStatusOpen}, nil)
	s.mockLedgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.LedgerEntryCreate) (*domain.LedgerEntry, error) {
			s.Equal(int64(-500), args.Delta)
			s.Equal(domain.EntryKindRefund, args.Kind)
			s.Require().NotNil(args.RefEntryID)
			s.Equal(original.ID, *args.RefEntryID)
			return &domain.LedgerEntry{ID: 2, AccountID: original.AccountID, Delta: -500, BalanceAfter: 0}, nil
		})
	s.mockAccountRepo.EXPECT().UpdateBalance(gomock.Any(), original.AccountID, int64(0), int64(2)).Return(nil)

	s.Require().NoError(s.service.RefundCapture(s.T().Context(), paymentID))
}

// TestRefundCapture_Redelivery повторная доставка события возврата - no-op без ошибки.
func (s *SettlementServiceTestSuite) TestRefundCapture_Redelivery() {
	paymentID := "pay_B2"
	original := &domain.LedgerEntry{ID: 1, AccountID: 1, Delta: 500, Kind: domain.EntryKindPurchase}

	s.mockLedgerRepo.EXPECT().FindByExternalRef(gomock.Any(), paymentID).Return(original, nil)
	s.mockAccountRepo.EXPECT().LockByID(gomock.Any(), original.AccountID).
		Return(&domain.Account{ID: original.AccountID, Balance: 500, Version: 3, Status: domain.AccountStatusOpen}, nil)
	s.mockLedgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrDuplicateKey)

	s.Require().NoError(s.service.RefundCapture(s.T().Context(), paymentID))
}

func (s *SettlementServiceTestSuite) TestStalePendingOrders() {
	maxAge := 15 * time.Minute
	want := []domain.SettlementOrder{{OrderID: "order_A1", Status: domain.OrderStatusPending}}

	s.mockOrderRepo.EXPECT().ListPendingBefore(gomock.Any(), gomock.Any(), uint(10)).
		DoAndReturn(func(_ context.Context, olderThan time.Time, _ uint) ([]domain.SettlementOrder, error) {
			// граница отсечки в прошлом примерно на maxAge.
			s.WithinDuration(time.Now().Add(-maxAge), olderThan, time.Minute)
			return want, nil
		})

	orders, err := s.service.StalePendingOrders(s.T().Context(), maxAge, 10)
	s.Require().NoError(err)
	s.Equal(want, orders)
}
