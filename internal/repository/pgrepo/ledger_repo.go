package pgrepo

import (
	"context"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/repository/repoargs"
	"github.com/debdutta777/noobwriter-wallet/pkg/uow"
)

const ledgerColumns = `id, created_at, account_id, delta, kind, external_ref, ref_entry_id, balance_after`

// LedgerRepository работает с append-only таблицей ledger_entries. UPDATE и DELETE
// по этой таблице в кодовой базе отсутствуют: исправления делаются обратными записями.
type LedgerRepository struct {
	conn uow.DBTX
}

func NewLedgerRepository(conn uow.DBTX) *LedgerRepository {
	return &LedgerRepository{conn: conn}
}

// Create вставляет запись леджера. Дубликат external_ref или ref_entry_id вернется
// как ErrDuplicateKey - на этом строится идемпотентность и guard "один возврат на запись".
func (l *LedgerRepository) Create(
	ctx context.Context,
	entry repoargs.LedgerEntryCreate,
) (*domain.LedgerEntry, error) {
	row := l.conn.QueryRow(ctx, `
		INSERT INTO ledger_entries (account_id, delta, kind, external_ref, ref_entry_id, balance_after)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+ledgerColumns,
		entry.AccountID, entry.Delta, entry.Kind, entry.ExternalRef, entry.RefEntryID, entry.BalanceAfter)

	dbEntry, err := scanLedgerEntry(row)
	if err != nil {
		return nil, convertErr(err, "creating ledger entry")
	}
	return dbEntry, nil
}

func (l *LedgerRepository) FindByID(ctx context.Context, entryID int64) (*domain.LedgerEntry, error) {
	row := l.conn.QueryRow(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE id = $1`, entryID)

	entry, err := scanLedgerEntry(row)
	if err != nil {
		return nil, convertErr(err, "finding ledger entry %d", entryID)
	}
	return entry, nil
}

func (l *LedgerRepository) FindByExternalRef(ctx context.Context, externalRef string) (*domain.LedgerEntry, error) {
	row := l.conn.QueryRow(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE external_ref = $1`, externalRef)

	entry, err := scanLedgerEntry(row)
	if err != nil {
		return nil, convertErr(err, "finding ledger entry by external ref %s", externalRef)
	}
	return entry, nil
}

// GetByAccountID возвращает записи аккаунта, отсортированные по дате создания по убыванию.
func (l *LedgerRepository) GetByAccountID(
	ctx context.Context,
	accountID int64,
	limit uint,
) ([]domain.LedgerEntry, error) {
	rows, err := l.conn.Query(ctx, `
		SELECT `+ledgerColumns+`
		FROM ledger_entries
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, convertErr(err, "listing ledger entries of account %d", accountID)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		entry, scanErr := scanLedgerEntry(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "listing ledger entries of account %d", accountID)
		}
		entries = append(entries, *entry)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing ledger entries of account %d", accountID)
	}
	return entries, nil
}

// SumDeltas считает сумму всех дельт аккаунта. Используется сверкой баланса:
// инвариант - сумма всегда равна accounts.balance.
func (l *LedgerRepository) SumDeltas(ctx context.Context, accountID int64) (int64, error) {
	var sum int64
	err := l.conn.QueryRow(ctx, `
		SELECT COALESCE(SUM(delta), 0)
		FROM ledger_entries
		WHERE account_id = $1`, accountID).Scan(&sum)
	if err != nil {
		return 0, convertErr(err, "summing ledger deltas of account %d", accountID)
	}
	return sum, nil
}

func scanLedgerEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	err := row.Scan(
		&entry.ID,
		&entry.CreatedAt,
		&entry.AccountID,
		&entry.Delta,
		&entry.Kind,
		&entry.ExternalRef,
		&entry.RefEntryID,
		&entry.BalanceAfter,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &entry, nil
}
