package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/repository/repoargs"
	"github.com/debdutta777/noobwriter-wallet/pkg/uow"
)

const DefaultHistoryLimit uint = 50

// AccountService жизненный цикл кошелька: открытие при регистрации с приветственным
// бонусом, чтение баланса и истории, сверка кеша с леджером.
type AccountService struct {
	uow          uow.UOW
	accountRepo  AccountRepository
	ledgerRepo   LedgerRepository
	welcomeBonus int64
}

func NewAccountService(u uow.UOW, welcomeBonus int64) (*AccountService, error) {
	accountRepo, accountRepoErr := uow.GetRepositoryAs[AccountRepository](u, uow.RepositoryName(repoargs.AccountRepoName))
	if accountRepoErr != nil {
		return nil, accountRepoErr //nolint:wrapcheck
	}
	ledgerRepo, ledgerRepoErr := uow.GetRepositoryAs[LedgerRepository](u, uow.RepositoryName(repoargs.LedgerRepoName))
	if ledgerRepoErr != nil {
		return nil, ledgerRepoErr //nolint:wrapcheck
	}
	return &AccountService{
		uow:          u,
		accountRepo:  accountRepo,
		ledgerRepo:   ledgerRepo,
		welcomeBonus: welcomeBonus,
	}, nil
}

// Open создает кошелек и начисляет приветственный бонус одной транзакцией.
// Повторный вызов для того же аккаунта (ретрай регистрации) вернет текущее
// состояние без второго бонуса: и строка аккаунта, и бонусная запись защищены
// уникальными ключами.
func (s *AccountService) Open(ctx context.Context, accountID int64) (*domain.Account, error) {
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		accountRepo, repoErr := uow.GetAs[AccountRepository](tx, uow.RepositoryName(repoargs.AccountRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		if _, createErr := accountRepo.Create(c, accountID); createErr != nil {
			return createErr //nolint:wrapcheck
		}

		if s.welcomeBonus <= 0 {
			return nil
		}
		welcomeRef := fmt.Sprintf("welcome:%d", accountID)
		_, appendErr := appendEntry(c, tx, appendArgs{
			AccountID:   accountID,
			Delta:       s.welcomeBonus,
			Kind:        domain.EntryKindEarning,
			ExternalRef: &welcomeRef,
		})
		return appendErr
	})

	if txErr != nil && !errors.Is(txErr, domain.ErrDuplicateKey) {
		return nil, fmt.Errorf("opening account %d: %w", accountID, txErr)
	}

	account, findErr := s.accountRepo.FindByID(ctx, accountID)
	if findErr != nil {
		return nil, fmt.Errorf("opening account %d: %w", accountID, findErr)
	}
	return account, nil
}

// Close мягко закрывает кошелек: дальнейшие движения по нему блокируются в
// точке записи, история и баланс остаются читаемыми. Повторное закрытие - no-op.
func (s *AccountService) Close(ctx context.Context, accountID int64) error {
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		accountRepo, repoErr := uow.GetAs[AccountRepository](tx, uow.RepositoryName(repoargs.AccountRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		account, lockErr := accountRepo.LockByID(c, accountID)
		if lockErr != nil {
			if errors.Is(lockErr, domain.ErrRecordNotFound) {
				return domain.ErrAccountNotFound
			}
			return lockErr //nolint:wrapcheck
		}
		if account.Status == domain.AccountStatusClosed {
			return nil
		}
		return accountRepo.Close(c, accountID) //nolint:wrapcheck
	})
	if txErr != nil {
		return fmt.Errorf("closing account %d: %w", accountID, txErr)
	}
	return nil
}

// Balance возвращает кешированный баланс аккаунта.
func (s *AccountService) Balance(ctx context.Context, accountID int64) (*domain.Account, error) {
	account, err := s.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return nil, fmt.Errorf("account balance: %w", domain.ErrAccountNotFound)
		}
		return nil, err //nolint:wrapcheck
	}
	return account, nil
}

// History возвращает последние записи леджера аккаунта.
func (s *AccountService) History(ctx context.Context, accountID int64, limit uint) ([]domain.LedgerEntry, error) {
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	entries, err := s.ledgerRepo.GetByAccountID(ctx, accountID, limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return entries, nil
}

// Reconcile сверяет кешированный баланс с суммой дельт леджера. Операция только
// читает, расхождение отдается наверх для алерта - чинить его руками, а не кодом.
func (s *AccountService) Reconcile(ctx context.Context, accountID int64) (*domain.BalanceAudit, error) {
	account, accErr := s.accountRepo.FindByID(ctx, accountID)
	if accErr != nil {
		return nil, accErr //nolint:wrapcheck
	}
	sum, sumErr := s.ledgerRepo.SumDeltas(ctx, accountID)
	if sumErr != nil {
		return nil, sumErr //nolint:wrapcheck
	}
	return &domain.BalanceAudit{
		AccountID:  accountID,
		Cached:     account.Balance,
		LedgerSum:  sum,
		Consistent: account.Balance == sum,
	}, nil
}
