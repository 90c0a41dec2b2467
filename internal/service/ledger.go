package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/repository/repoargs"
	"github.com/debdutta777/noobwriter-wallet/pkg/uow"
)

// appendArgs параметры добавления записи в леджер.
type appendArgs struct {
	AccountID   int64
	Delta       int64
	Kind        domain.EntryKindType
	ExternalRef *string
	RefEntryID  *int64
}

// appendEntry единственная точка изменения баланса. Выполняется строго внутри
// uow-транзакции: блокирует строку аккаунта, проверяет достаточность средств,
// вставляет запись леджера со снимком баланса и write-through обновляет кеш.
//
// Инварианты:
//   - balance + delta >= 0, иначе ErrInsufficientFunds и никаких записей;
//   - закрытый аккаунт не принимает записей (ErrAccountClosed);
//   - accounts.balance после коммита равен сумме дельт записей аккаунта.
func appendEntry(ctx context.Context, tx uow.TX, args appendArgs) (*domain.LedgerEntry, error) {
	accountRepo, accountRepoErr := uow.GetAs[AccountRepository](tx, uow.RepositoryName(repoargs.AccountRepoName))
	if accountRepoErr != nil {
		return nil, accountRepoErr //nolint:wrapcheck
	}
	ledgerRepo, ledgerRepoErr := uow.GetAs[LedgerRepository](tx, uow.RepositoryName(repoargs.LedgerRepoName))
	if ledgerRepoErr != nil {
		return nil, ledgerRepoErr //nolint:wrapcheck
	}

	account, lockErr := accountRepo.LockByID(ctx, args.AccountID)
	if lockErr != nil {
		if errors.Is(lockErr, domain.ErrRecordNotFound) {
			return nil, fmt.Errorf("appending ledger entry: %w", domain.ErrAccountNotFound)
		}
		return nil, lockErr //nolint:wrapcheck
	}
	if account.Status == domain.AccountStatusClosed {
		return nil, fmt.Errorf("appending ledger entry: %w", domain.ErrAccountClosed)
	}

	newBalance := account.Balance + args.Delta
	if newBalance < 0 {
		return nil, fmt.Errorf("appending ledger entry: %w", domain.ErrInsufficientFunds)
	}

	entry, createErr := ledgerRepo.Create(ctx, repoargs.LedgerEntryCreate{
		AccountID:    args.AccountID,
		Delta:        args.Delta,
		Kind:         args.Kind,
		ExternalRef:  args.ExternalRef,
		RefEntryID:   args.RefEntryID,
		BalanceAfter: newBalance,
	})
	if createErr != nil {
		return nil, createErr //nolint:wrapcheck
	}

	if updErr := accountRepo.UpdateBalance(ctx, account.ID, newBalance, account.Version); updErr != nil {
		return nil, updErr //nolint:wrapcheck
	}

	return entry, nil
}

// reverseEntry добавляет обратную запись к entryID с дельтой противоположного знака.
// Уникальный индекс по ref_entry_id гарантирует не более одного реверса на запись -
// дубликат возвращается как ErrAlreadyRefunded.
func reverseEntry(
	ctx context.Context,
	tx uow.TX,
	original *domain.LedgerEntry,
	kind domain.EntryKindType,
) (*domain.LedgerEntry, error) {
	refID := original.ID
	entry, err := appendEntry(ctx, tx, appendArgs{
		AccountID:  original.AccountID,
		Delta:      -original.Delta,
		Kind:       kind,
		RefEntryID: &refID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, fmt.Errorf("reversing ledger entry %d: %w", original.ID, domain.ErrAlreadyRefunded)
		}
		return nil, err
	}
	return entry, nil
}
