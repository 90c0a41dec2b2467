package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/repository/repoargs"
	"github.com/debdutta777/noobwriter-wallet/pkg/uow"
)

// PayoutService вывод заработанных монет автором. Запрос сразу списывает монеты
// (payout_request), чтобы их нельзя было потратить пока заявка в обработке; отказ
// возвращает их обратно (payout_rejected), успешная выплата закрывается нулевой
// записью-маркером (payout_completed). Заявка закрывается ровно один раз - обе
// закрывающие записи ссылаются на запись заявки, а ref_entry_id уникален.
type PayoutService struct {
	uow uow.UOW
}

func NewPayoutService(u uow.UOW) *PayoutService {
	return &PayoutService{uow: u}
}

func (s *PayoutService) Request(ctx context.Context, accountID, amount int64) (*domain.LedgerEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("requesting payout: %w", domain.ErrInvalidAmount)
	}

	var entry *domain.LedgerEntry
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		var appendErr error
		entry, appendErr = appendEntry(c, tx, appendArgs{
			AccountID: accountID,
			Delta:     -amount,
			Kind:      domain.EntryKindPayoutRequest,
		})
		return appendErr
	})
	if txErr != nil {
		return nil, fmt.Errorf("requesting payout: %w", txErr)
	}
	return entry, nil
}

// Reject возвращает монеты отклоненной заявки на счет автора.
func (s *PayoutService) Reject(ctx context.Context, requestEntryID int64) error {
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		original, findErr := findPayoutRequest(c, tx, requestEntryID)
		if findErr != nil {
			return findErr
		}
		_, reverseErr := reverseEntry(c, tx, original, domain.EntryKindPayoutRejected)
		return reverseErr
	})
	if txErr != nil {
		return fmt.Errorf("rejecting payout %d: %w", requestEntryID, txErr)
	}
	return nil
}

// Complete закрывает выплаченную заявку нулевой записью-маркером.
func (s *PayoutService) Complete(ctx context.Context, requestEntryID int64) error {
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		original, findErr := findPayoutRequest(c, tx, requestEntryID)
		if findErr != nil {
			return findErr
		}
		refID := original.ID
		_, appendErr := appendEntry(c, tx, appendArgs{
			AccountID:  original.AccountID,
			Delta:      0,
			Kind:       domain.EntryKindPayoutCompleted,
			RefEntryID: &refID,
		})
		if appendErr != nil && errors.Is(appendErr, domain.ErrDuplicateKey) {
			return fmt.Errorf("payout %d: %w", original.ID, domain.ErrAlreadyRefunded)
		}
		return appendErr
	})
	if txErr != nil {
		return fmt.Errorf("completing payout %d: %w", requestEntryID, txErr)
	}
	return nil
}

func findPayoutRequest(ctx context.Context, tx uow.TX, entryID int64) (*domain.LedgerEntry, error) {
	ledgerRepo, repoErr := uow.GetAs[LedgerRepository](tx, uow.RepositoryName(repoargs.LedgerRepoName))
	if repoErr != nil {
		return nil, repoErr //nolint:wrapcheck
	}
	entry, findErr := ledgerRepo.FindByID(ctx, entryID)
	if findErr != nil {
		return nil, findErr //nolint:wrapcheck
	}
	if entry.Kind != domain.EntryKindPayoutRequest {
		return nil, domain.ErrRecordNotFound
	}
	return entry, nil
}
