package service_test

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/repository/repoargs"
	"github.com/debdutta777/noobwriter-wallet/internal/service"
	"github.com/debdutta777/noobwriter-wallet/internal/service/mocks"
	"github.com/debdutta777/noobwriter-wallet/pkg/uow"
	uowmocks "github.com/debdutta777/noobwriter-wallet/pkg/uow/mocks"
)

type PayoutServiceTestSuite struct {
	suite.Suite
	mockCtrl        *gomock.Controller
	mockUOW         *uowmocks.MockUOW
	mockTX          *uowmocks.MockTX
	mockAccountRepo *mocks.MockAccountRepository
	mockLedgerRepo  *mocks.MockLedgerRepository
	service         *service.PayoutService
}

func TestPayoutServiceSuite(t *testing.T) {
	suite.Run(t, new(PayoutServiceTestSuite))
}

func (s *PayoutServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockAccountRepo = mocks.NewMockAccountRepository(s.mockCtrl)
	s.mockLedgerRepo = mocks.NewMockLedgerRepository(s.mockCtrl)

	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.AccountRepoName)).
		Return(s.mockAccountRepo, nil).AnyTimes()
	s.mockTX.EXPECT().
		Get(uow.RepositoryName(repoargs.LedgerRepoName)).
		Return(s.mockLedgerRepo, nil).AnyTimes()

	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(s.T().Context(), s.mockTX)
		},
	).AnyTimes()

	s.service = service.NewPayoutService(s.mockUOW)
}

func (s *PayoutServiceTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func (s *PayoutServiceTestSuite) TestRequest() {
	var accountID int64 = 1

	s.mockAccountRepo.EXPECT().LockByID(gomock.Any(), accountID).
		Return(&domain.Account{ID: accountID, Balance: 200, Version: 1, Status: domain.AccountStatusOpen}, nil)
	s.mockLedgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.LedgerEntryCreate) (*domain.LedgerEntry, error) {
			// монеты списываются сразу, пока заявка в обработке их потратить нельзя.
			s.Equal(int64(-150), args.Delta)
			s.Equal(domain.EntryKindPayoutRequest, args.Kind)
			return &domain.LedgerEntry{ID: 10, AccountID: accountID, Delta: -150, BalanceAfter: 50}, nil
		})
	s.mockAccountRepo.EXPECT().UpdateBalance(gomock.Any(), accountID, int64(50), int64(1)).Return(nil)

	entry, err := s.service.Request(s.T().Context(), accountID, 150)
	s.Require().NoError(err)
	s.Equal(int64(50), entry.BalanceAfter)
}

func (s *PayoutServiceTestSuite) TestRequest_InsufficientFunds() {
	var accountID int64 = 1

	s.mockAccountRepo.EXPECT().LockByID(gomock.Any(), accountID).
		Return(&domain.Account{ID: accountID, Balance: 100, Version: 1, Status: domain.AccountStatusOpen}, nil)

	_, err := s.service.Request(s.T().Context(), accountID, 150)
	s.Require().ErrorIs(err, domain.ErrInsufficientFunds)
}

func (s *PayoutServiceTestSuite) TestReject() {
	request := &domain.LedgerEntry{ID: 10, AccountID: 1, Delta: -150, Kind: domain.EntryKindPayoutRequest}

	s.mockLedgerRepo.EXPECT().FindByID(gomock.Any(), request.ID).Return(request, nil)
	s.mockAccountRepo.EXPECT().LockByID(gomock.Any(), request.AccountID).
		Return(&domain.Account{ID: request.AccountID, Balance: 50, Version: 2, Status: domain.AccountStatusOpen}, nil)
	s.mockLedgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.LedgerEntryCreate) (*domain.LedgerEntry, error) {
			// отклонение возвращает монеты той же суммой с обратным знаком.
			s.Equal(int64(150), args.Delta)
			s.Equal(domain.EntryKindPayoutRejected, args.Kind)
			s.Require().NotNil(args.RefEntryID)
			s.Equal(request.ID, *args.RefEntryID)
			return &domain.LedgerEntry{ID: 11, AccountID: request.AccountID, Delta: 150, BalanceAfter: 200}, nil
		})
	s.mockAccountRepo.EXPECT().UpdateBalance(gomock.Any(), request.AccountID, int64(200), int64(2)).Return(nil)

	s.Require().NoError(s.service.Reject(s.T().Context(), request.ID))
}

func (s *PayoutServiceTestSuite) TestComplete() {
	request := &domain.LedgerEntry{ID: 10, AccountID: 1, Delta: -150, Kind: domain.EntryKindPayoutRequest}

	s.mockLedgerRepo.EXPECT().FindByID(gomock.Any(), request.ID).Return(request, nil)
	s.mockAccountRepo.EXPECT().LockByID(gomock.Any(), request.AccountID).
		Return(&domain.Account{ID: request.AccountID, Balance: 50, Version: 2, Status: domain.AccountStatusOpen}, nil)
	s.mockLedgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.LedgerEntryCreate) (*domain.LedgerEntry, error) {
			// выплата закрывается нулевым маркером, баланс не меняется.
			s.Equal(int64(0), args.Delta)
			s.Equal(domain.EntryKindPayoutCompleted, args.Kind)
			s.Require().NotNil(args.RefEntryID)
			s.Equal(request.ID, *args.RefEntryID)
			return &domain.LedgerEntry{ID: 11, AccountID: request.AccountID, Delta: 0, BalanceAfter: 50}, nil
		})
	s.mockAccountRepo.EXPECT().UpdateBalance(gomock.Any(), request.AccountID, int64(50), int64(2)).Return(nil)

	s.Require().NoError(s.service.Complete(s.T().Context(), request.ID))
}

// TestComplete_AfterReject заявка закрывается ровно один раз: обе закрывающие записи
// ссылаются на запись заявки, а ref_entry_id уникален.
func (s *PayoutServiceTestSuite) TestComplete_AfterReject() {
	request := &domain.LedgerEntry{ID: 10, AccountID: 1, Delta: -150, Kind: domain.EntryKindPayoutRequest}

	s.mockLedgerRepo.EXPECT().FindByID(gomock.Any(), request.ID).Return(request, nil)
	s.mockAccountRepo.EXPECT().LockByID(gomock.Any(), request.AccountID).
		Return(&domain.Account{ID: request.AccountID, Balance: 200, Version: 3, Status: domain.AccountStatusOpen}, nil)
	s.mockLedgerRepo.EXPECT().Create(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrDuplicateKey)

	err := s.service.Complete(s.T().Context(), request.ID)
	s.Require().ErrorIs(err, domain.ErrAlreadyRefunded)
}

// TestReject_NotARequest реверсить можно только запись заявки.
func (s *PayoutServiceTestSuite) TestReject_NotARequest() {
	entry := &domain.LedgerEntry{ID: 10, AccountID: 1, Delta: -150, Kind: domain.EntryKindUnlock}

	s.mockLedgerRepo.EXPECT().FindByID(gomock.Any(), entry.ID).Return(entry, nil)

	err := s.service.Reject(s.T().Context(), entry.ID)
	s.Require().Error(err)
}
