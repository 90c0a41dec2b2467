package pgrepo

import (
	"context"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/pkg/uow"
)

const accountColumns = `id, created_at, updated_at, balance, version, status`

type AccountRepository struct {
	conn uow.DBTX
}

func NewAccountRepository(conn uow.DBTX) *AccountRepository {
	return &AccountRepository{conn: conn}
}

// Create заводит кошелек с нулевым балансом. ID приходит от внешнего identity-провайдера.
func (a *AccountRepository) Create(ctx context.Context, accountID int64) (*domain.Account, error) {
	row := a.conn.QueryRow(ctx, `
		INSERT INTO accounts (id)
		VALUES ($1)
		RETURNING `+accountColumns, accountID)

	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "creating account %d", accountID)
	}
	return account, nil
}

func (a *AccountRepository) FindByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	row := a.conn.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1`, accountID)

	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "finding account %d", accountID)
	}
	return account, nil
}

// LockByID читает аккаунт с блокировкой строки (SELECT ... FOR UPDATE). Все конкурентные
// мутации баланса одного аккаунта сериализуются на этой блокировке. Вызывать только
// внутри uow-транзакции.
func (a *AccountRepository) LockByID(ctx context.Context, accountID int64) (*domain.Account, error) {
	row := a.conn.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
		FOR UPDATE`, accountID)

	account, err := scanAccount(row)
	if err != nil {
		return nil, convertErr(err, "locking account %d", accountID)
	}
	return account, nil
}

// UpdateBalance записывает новый баланс с инкрементом версии. version - ожидаемая текущая
// версия строки; под FOR UPDATE конфликт невозможен, проверка оставлена как страховка от
// вызова вне транзакции - несовпадение вернет ErrRecordNotFound.
func (a *AccountRepository) UpdateBalance(ctx context.Context, accountID, balance, version int64) error {
	tag, err := a.conn.Exec(ctx, `
		UPDATE accounts
		SET balance = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3`, accountID, balance, version)

	if err != nil {
		return convertErr(err, "updating balance of account %d", accountID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "updating balance of account %d", accountID)
	}
	return nil
}

// Close помечает аккаунт закрытым. Записи леджера и история при этом не трогаются.
func (a *AccountRepository) Close(ctx context.Context, accountID int64) error {
	tag, err := a.conn.Exec(ctx, `
		UPDATE accounts
		SET status = $2, updated_at = now()
		WHERE id = $1`, accountID, domain.AccountStatusClosed)

	if err != nil {
		return convertErr(err, "closing account %d", accountID)
	}
	if tag.RowsAffected() == 0 {
		return convertErr(errNoRowsAffected, "closing account %d", accountID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.CreatedAt,
		&account.UpdatedAt,
		&account.Balance,
		&account.Version,
		&account.Status,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &account, nil
}
