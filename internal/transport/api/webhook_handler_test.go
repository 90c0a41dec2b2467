package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/logger"
	"github.com/debdutta777/noobwriter-wallet/internal/service/sign"
	"github.com/debdutta777/noobwriter-wallet/internal/transport/api/mocks"
	"github.com/debdutta777/noobwriter-wallet/internal/transport/api/testutils"
)

type WebhookHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockWebhookService *mocks.MockWebhookServicer
	webhookSecret      []byte
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())

	s.mockWebhookService = mocks.NewMockWebhookServicer(mockCtrl)
	s.webhookSecret = []byte("webhook secret")

	var err error
	s.router, err = New(RouterArgs{
		Logger:         logger.New(os.Stdout),
		WebhookService: s.mockWebhookService,
		JWTSecretKey:   []byte("super secret key"),
		WebhookSecret:  s.webhookSecret,
	})
	s.Require().NoError(err)
}

func (s *WebhookHandlerTestSuite) postWebhook(body []byte, signature string) *http.Response {
	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + WebhookPaymentRoute,
		Body:   bytes.NewReader(body),
	},
		testutils.WithHeader("Content-Type", "application/json"),
		testutils.WithHeader(HeaderWebhookSignature, signature),
	)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *WebhookHandlerTestSuite) TestPaymentCaptured() {
	body := []byte(`{"event":"payment.captured","payload":{"order_id":"order_A1","payment_id":"pay_B2"}}`)

	s.mockWebhookService.EXPECT().ApplyCapture(gomock.Any(), "order_A1", "pay_B2").
		Return(int64(500), nil)

	resp := s.postWebhook(body, sign.WebhookSignature(body, s.webhookSecret))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

// TestInvalidSignature с неверной подписью тела ничего не применяется.
func (s *WebhookHandlerTestSuite) TestInvalidSignature() {
	body := []byte(`{"event":"payment.captured","payload":{"order_id":"order_A1","payment_id":"pay_B2"}}`)

	resp := s.postWebhook(body, "deadbeef")
	s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
}

// TestTamperedBody подпись валидна для другого тела.
func (s *WebhookHandlerTestSuite) TestTamperedBody() {
	body := []byte(`{"event":"payment.captured","payload":{"order_id":"order_A1","payment_id":"pay_B2"}}`)
	tampered := []byte(`{"event":"payment.captured","payload":{"order_id":"order_A1","payment_id":"pay_XX"}}`)

	resp := s.postWebhook(tampered, sign.WebhookSignature(body, s.webhookSecret))
	s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *WebhookHandlerTestSuite) TestPaymentFailed() {
	body := []byte(`{"event":"payment.failed","payload":{"order_id":"order_A1","reason":"card declined"}}`)

	s.mockWebhookService.EXPECT().FailOrder(gomock.Any(), "order_A1", "card declined").Return(nil)

	resp := s.postWebhook(body, sign.WebhookSignature(body, s.webhookSecret))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

// TestPaymentFailed_AfterCompletion порядок доставки не гарантирован: событие по уже
// завершенному заказу подтверждается, иначе шлюз будет ретраить его бесконечно.
func (s *WebhookHandlerTestSuite) TestPaymentFailed_AfterCompletion() {
	body := []byte(`{"event":"payment.failed","payload":{"order_id":"order_A1","reason":"card declined"}}`)

	s.mockWebhookService.EXPECT().FailOrder(gomock.Any(), "order_A1", "card declined").
		Return(fmt.Errorf("failing order: %w", domain.ErrOrderFinalized))

	resp := s.postWebhook(body, sign.WebhookSignature(body, s.webhookSecret))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

func (s *WebhookHandlerTestSuite) TestRefundCreated() {
	body := []byte(`{"event":"refund.created","payload":{"payment_id":"pay_B2"}}`)

	s.mockWebhookService.EXPECT().RefundCapture(gomock.Any(), "pay_B2").Return(nil)

	resp := s.postWebhook(body, sign.WebhookSignature(body, s.webhookSecret))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

// TestUnknownEvent неизвестные события подтверждаются без обработки.
func (s *WebhookHandlerTestSuite) TestUnknownEvent() {
	body := []byte(`{"event":"order.paid","payload":{"order_id":"order_A1"}}`)

	resp := s.postWebhook(body, sign.WebhookSignature(body, s.webhookSecret))
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

// TestProcessingError ошибка обработки валидного события возвращает 500: шлюз
// повторит доставку, применение идемпотентно.
func (s *WebhookHandlerTestSuite) TestProcessingError() {
	body := []byte(`{"event":"payment.captured","payload":{"order_id":"order_A1","payment_id":"pay_B2"}}`)

	s.mockWebhookService.EXPECT().ApplyCapture(gomock.Any(), "order_A1", "pay_B2").
		Return(int64(0), errors.New("db is down"))

	resp := s.postWebhook(body, sign.WebhookSignature(body, s.webhookSecret))
	s.Require().Equal(http.StatusInternalServerError, resp.StatusCode)
}

func (s *WebhookHandlerTestSuite) TestMissingPayloadFields() {
	body := []byte(`{"event":"payment.captured","payload":{"order_id":"order_A1"}}`)

	resp := s.postWebhook(body, sign.WebhookSignature(body, s.webhookSecret))
	s.Require().Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}
