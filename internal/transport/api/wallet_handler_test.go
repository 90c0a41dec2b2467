package api

import (
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/logger"
	"github.com/debdutta777/noobwriter-wallet/internal/transport/api/mocks"
	"github.com/debdutta777/noobwriter-wallet/internal/transport/api/testutils"
	"github.com/debdutta777/noobwriter-wallet/internal/transport/api/tokens"
)

type WalletHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *mocks.MockAccountServicer
	jwtSecret          []byte
}

func TestWalletHandlerSuite(t *testing.T) {
	suite.Run(t, new(WalletHandlerTestSuite))
}

func (s *WalletHandlerTestSuite) SetupTest() {
	mockCtrl := gomock.NewController(s.T())

	s.mockAccountService = mocks.NewMockAccountServicer(mockCtrl)
	s.jwtSecret = []byte("super secret key")

	var err error
	s.router, err = New(RouterArgs{
		Logger:         logger.New(os.Stdout),
		AccountService: s.mockAccountService,
		JWTSecretKey:   s.jwtSecret,
		WebhookSecret:  []byte("webhook secret"),
	})
	s.Require().NoError(err)
}

func (s *WalletHandlerTestSuite) TestBalance() {
	var accountID int64 = 1

	jwtToken, jwtErr := tokens.GenerateAccountJWT(accountID, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)

	s.mockAccountService.EXPECT().Balance(gomock.Any(), accountID).
		Return(&domain.Account{ID: accountID, Balance: 120, Status: domain.AccountStatusOpen}, nil)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + BalanceRoute,
	}, testutils.WithBearerToken(jwtToken))
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body BalanceResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal(accountID, body.AccountID)
	s.Equal(int64(120), body.Balance)
}

func (s *WalletHandlerTestSuite) TestBalance_Unauthorized() {
	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + BalanceRoute,
	})
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *WalletHandlerTestSuite) TestTransactions() {
	var accountID int64 = 1

	jwtToken, jwtErr := tokens.GenerateAccountJWT(accountID, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)

	ref := "pay_B2"
	s.mockAccountService.EXPECT().History(gomock.Any(), accountID, uint(10)).
		Return([]domain.LedgerEntry{
			{ID: 2, AccountID: accountID, Delta: 500, Kind: domain.EntryKindPurchase, ExternalRef: &ref, BalanceAfter: 550, CreatedAt: time.Now()},
			{ID: 1, AccountID: accountID, Delta: 50, Kind: domain.EntryKindEarning, BalanceAfter: 50, CreatedAt: time.Now()},
		}, nil)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + TransactionsRoute + "?limit=10",
	}, testutils.WithBearerToken(jwtToken))
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body []TransactionResponseItem
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Require().Len(body, 2)
	s.Equal(domain.EntryKindPurchase, body[0].Kind)
	s.Require().NotNil(body[0].ExternalRef)
	s.Equal(ref, *body[0].ExternalRef)
	s.Nil(body[1].ExternalRef)
}

func (s *WalletHandlerTestSuite) TestTransactions_Empty() {
	var accountID int64 = 1

	jwtToken, jwtErr := tokens.GenerateAccountJWT(accountID, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)

	s.mockAccountService.EXPECT().History(gomock.Any(), accountID, uint(0)).
		Return([]domain.LedgerEntry{}, nil)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodGet,
		URL:    RouteGroup + TransactionsRoute,
	}, testutils.WithBearerToken(jwtToken))
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Require().Equal(http.StatusNoContent, resp.StatusCode)
}

func (s *WalletHandlerTestSuite) TestOpen() {
	var accountID int64 = 1

	jwtToken, jwtErr := tokens.GenerateAccountJWT(accountID, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)

	s.mockAccountService.EXPECT().Open(gomock.Any(), accountID).
		Return(&domain.Account{ID: accountID, Balance: 50, Status: domain.AccountStatusOpen}, nil)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + OpenRoute,
	}, testutils.WithBearerToken(jwtToken))
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var body BalanceResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal(int64(50), body.Balance)
}

func (s *WalletHandlerTestSuite) TestClose() {
	var accountID int64 = 1

	jwtToken, jwtErr := tokens.GenerateAccountJWT(accountID, time.Hour, s.jwtSecret)
	s.Require().NoError(jwtErr)

	s.mockAccountService.EXPECT().Close(gomock.Any(), accountID).Return(nil)

	resp, err := testutils.MakeRequest(testutils.RequestArgs{
		Router: s.router,
		Method: http.MethodPost,
		URL:    RouteGroup + CloseRoute,
	}, testutils.WithBearerToken(jwtToken))
	s.Require().NoError(err)
	defer func() { _ = resp.Body.Close() }()

	s.Require().Equal(http.StatusNoContent, resp.StatusCode)
}
