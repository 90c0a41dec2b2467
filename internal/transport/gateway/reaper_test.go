package gateway

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/service"
	"github.com/debdutta777/noobwriter-wallet/internal/transport/gateway/mocks"
)

type ReaperTestSuite struct {
	suite.Suite
	reaper         *Reaper
	mockHTTPClient *mocks.MockClient
	mockService    *mocks.MockServicer
	ctrl           *gomock.Controller
}

func (s *ReaperTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())

	s.mockHTTPClient = mocks.NewMockClient(s.ctrl)
	s.mockService = mocks.NewMockServicer(s.ctrl)

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	s.reaper = NewReaper(s.mockService, s.mockHTTPClient, logger)
}

func (s *ReaperTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestReaperSuite(t *testing.T) {
	suite.Run(t, new(ReaperTestSuite))
}

// TestProcess_NoOrders Тест на случай, когда зависших заказов нет.
func (s *ReaperTestSuite) TestProcess_NoOrders() {
	s.mockService.EXPECT().
		StalePendingOrders(gomock.Any(), s.reaper.pendingMaxAge, s.reaper.limitPerIteration).
		Return([]domain.SettlementOrder{}, nil)

	err := s.reaper.process(s.T().Context())

	s.ErrorIs(err, ErrNoOrders)
}

// TestProcess оплаченный заказ проводится через ApplyCapture, протухший проваливается,
// еще живой откладывается до следующей итерации, ошибка опроса не мешает остальным.
func (s *ReaperTestSuite) TestProcess() {
	orders := []domain.SettlementOrder{
		{OrderID: "order_paid", AccountID: 1, CoinAmount: 500, Status: domain.OrderStatusPending},
		{OrderID: "order_expired", AccountID: 2, CoinAmount: 100, Status: domain.OrderStatusPending},
		{OrderID: "order_alive", AccountID: 3, CoinAmount: 50, Status: domain.OrderStatusPending},
		{OrderID: "order_broken", AccountID: 4, CoinAmount: 10, Status: domain.OrderStatusPending},
	}

	s.mockService.EXPECT().
		StalePendingOrders(gomock.Any(), s.reaper.pendingMaxAge, s.reaper.limitPerIteration).
		Return(orders, nil)

	s.mockHTTPClient.EXPECT().FetchOrder(gomock.Any(), "order_paid").
		Return(&service.GatewayOrder{OrderID: "order_paid", Status: service.GatewayOrderPaid, PaymentID: "pay_1"}, nil)
	s.mockHTTPClient.EXPECT().FetchOrder(gomock.Any(), "order_expired").
		Return(&service.GatewayOrder{OrderID: "order_expired", Status: service.GatewayOrderExpired}, nil)
	s.mockHTTPClient.EXPECT().FetchOrder(gomock.Any(), "order_alive").
		Return(&service.GatewayOrder{OrderID: "order_alive", Status: service.GatewayOrderCreated}, nil)
	s.mockHTTPClient.EXPECT().FetchOrder(gomock.Any(), "order_broken").
		Return(nil, errors.New("gateway is down"))

	s.mockService.EXPECT().ApplyCapture(gomock.Any(), "order_paid", "pay_1").Return(int64(500), nil)
	s.mockService.EXPECT().FailOrder(gomock.Any(), "order_expired", "expired by gateway").Return(nil)

	err := s.reaper.process(s.T().Context())

	s.Require().NoError(err)
}

// TestProcess_PaidWithoutPaymentID без payment id зачисление невозможно, заказ
// остается pending до следующей итерации.
func (s *ReaperTestSuite) TestProcess_PaidWithoutPaymentID() {
	orders := []domain.SettlementOrder{
		{OrderID: "order_paid", AccountID: 1, CoinAmount: 500, Status: domain.OrderStatusPending},
	}

	s.mockService.EXPECT().
		StalePendingOrders(gomock.Any(), s.reaper.pendingMaxAge, s.reaper.limitPerIteration).
		Return(orders, nil)

	s.mockHTTPClient.EXPECT().FetchOrder(gomock.Any(), "order_paid").
		Return(&service.GatewayOrder{OrderID: "order_paid", Status: service.GatewayOrderPaid}, nil)

	err := s.reaper.process(s.T().Context())

	// ошибка применения логируется внутри process, итерация не падает.
	s.Require().NoError(err)
}
