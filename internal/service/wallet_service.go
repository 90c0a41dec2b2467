package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/repository/repoargs"
	"github.com/debdutta777/noobwriter-wallet/pkg/uow"
	"github.com/shopspring/decimal"
)

// WalletService переводы внутри платформы: списания за контент, чаевые авторам,
// возвраты. Каждая операция - одна uow-транзакция; частичных переводов не бывает.
type WalletService struct {
	uow          uow.UOW
	creatorShare decimal.Decimal
}

// NewWalletService создает сервис. creatorSharePercent - доля автора в монетах
// с каждого анлока, в процентах (0-100).
func NewWalletService(u uow.UOW, creatorSharePercent int64) (*WalletService, error) {
	if creatorSharePercent < 0 || creatorSharePercent > 100 {
		return nil, fmt.Errorf("new wallet service: invalid creator share %d", creatorSharePercent)
	}
	return &WalletService{
		uow:          u,
		creatorShare: decimal.NewFromInt(creatorSharePercent).Div(decimal.NewFromInt(100)), //nolint:mnd
	}, nil
}

// Spend списывает amount монет с аккаунта. При нехватке средств возвращает
// ErrInsufficientFunds, баланс не меняется.
func (s *WalletService) Spend(
	ctx context.Context,
	accountID int64,
	amount int64,
	kind domain.EntryKindType,
) (*domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("spending: %w", domain.ErrInvalidAmount)
	}

	var entry *domain.LedgerEntry
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var appendErr error
		entry, appendErr = appendEntry(c, tx, appendArgs{
			AccountID: accountID,
			Delta:     -amount,
			Kind:      kind,
		})
		return appendErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("spending: %w", txErr)
	}
	return entry, nil
}

// Tip переводит amount монет от читателя автору: дебет tip_sent и кредит tip_received
// одной транзакцией. Строки аккаунтов блокируются в порядке возрастания id -
// фиксированный глобальный порядок исключает дедлок встречных чаевых.
func (s *WalletService) Tip(ctx context.Context, fromAccountID, toAccountID, amount int64) error {
	if fromAccountID == toAccountID {
		return fmt.Errorf("tipping: %w", domain.ErrSelfTransfer)
	}
	if amount <= 0 {
		return fmt.Errorf("tipping: %w", domain.ErrInvalidAmount)
	}

	legs := []appendArgs{
		{AccountID: fromAccountID, Delta: -amount, Kind: domain.EntryKindTipSent},
		{AccountID: toAccountID, Delta: amount, Kind: domain.EntryKindTipReceived},
	}
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		return appendOrdered(c, tx, legs)
	})
	if txErr != nil {
		return fmt.Errorf("tipping: %w", txErr)
	}
	return nil
}

// Unlock списывает с читателя стоимость главы (unlock) и начисляет автору его долю
// (earning, доля округляется вниз до целых монет) одной транзакцией.
func (s *WalletService) Unlock(ctx context.Context, readerID, creatorID, cost int64) (*domain.LedgerEntry, error) {
	if readerID == creatorID {
		return nil, fmt.Errorf("unlocking: %w", domain.ErrSelfTransfer)
	}
	if cost <= 0 {
		return nil, fmt.Errorf("unlocking: %w", domain.ErrInvalidAmount)
	}

	share := s.creatorShare.Mul(decimal.NewFromInt(cost)).Floor().IntPart()

	legs := []appendArgs{
		{AccountID: readerID, Delta: -cost, Kind: domain.EntryKindUnlock},
	}
	if share > 0 {
		legs = append(legs, appendArgs{AccountID: creatorID, Delta: share, Kind: domain.EntryKindEarning})
	}

	var readerEntry *domain.LedgerEntry
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		entries, appendErr := appendOrderedEntries(c, tx, legs)
		if appendErr != nil {
			return appendErr
		}
		for i := range entries {
			if entries[i].AccountID == readerID {
				readerEntry = entries[i]
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("unlocking: %w", txErr)
	}
	return readerEntry, nil
}

// Refund добавляет обратную запись к entryID. Запись должна принадлежать accountID;
// повторный возврат той же записи вернет ErrAlreadyRefunded.
func (s *WalletService) Refund(ctx context.Context, accountID, entryID int64) (*domain.LedgerEntry, error) {
	var refundEntry *domain.LedgerEntry
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		ledgerRepo, repoErr := uow.GetAs[LedgerRepository](tx, uow.RepositoryName(repoargs.LedgerRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		original, findErr := ledgerRepo.FindByID(c, entryID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		if original.AccountID != accountID {
			return domain.ErrRecordNotFound
		}

		var reverseErr error
		refundEntry, reverseErr = reverseEntry(c, tx, original, domain.EntryKindRefund)
		return reverseErr
	})
	if txErr != nil {
		if errors.Is(txErr, domain.ErrAlreadyRefunded) {
			return nil, fmt.Errorf("refunding entry %d: %w", entryID, domain.ErrAlreadyRefunded)
		}
		return nil, fmt.Errorf("refunding entry %d: %w", entryID, txErr)
	}
	return refundEntry, nil
}

// appendOrdered применяет ноги перевода, упорядочив блокировки по возрастанию id аккаунта.
func appendOrdered(ctx context.Context, tx uow.TX, legs []appendArgs) error {
	_, err := appendOrderedEntries(ctx, tx, legs)
	return err
}

func appendOrderedEntries(ctx context.Context, tx uow.TX, legs []appendArgs) ([]*domain.LedgerEntry, error) {
	ordered := make([]appendArgs, len(legs))
	copy(ordered, legs)
	for i := range ordered {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j].AccountID < ordered[i].AccountID {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}

	var entries = make([]*domain.LedgerEntry, 0, len(ordered))
	for _, leg := range ordered {
		entry, appendErr := appendEntry(ctx, tx, leg)
		if appendErr != nil {
			return nil, appendErr
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
