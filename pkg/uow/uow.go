// Package uow реализует паттерн Unit of Work поверх pgxpool: реестр репозиториев
// и выполнение произвольной функции внутри одной транзакции. Все мутации баланса
// в проекте обязаны проходить через Do - отдельные read-then-write вызовы из
// прикладного кода запрещены.
package uow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepositoryName string
type Repository any
type RepositoryFactory func(DBTX) Repository

type UnitOfWork struct {
	conn         *pgxpool.Pool
	repositories map[RepositoryName]RepositoryFactory
}

func NewUnitOfWork(conn *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{
		conn:         conn,
		repositories: make(map[RepositoryName]RepositoryFactory),
	}
}

// Register регистрирует фабрику репозитория. Если имя уже занято, возвращает
// ErrRepositoryAlreadyRegistered.
func (u *UnitOfWork) Register(name RepositoryName, factory RepositoryFactory) error {
	if _, ok := u.repositories[name]; ok {
		return ErrRepositoryAlreadyRegistered
	}
	u.repositories[name] = factory
	return nil
}

// Do выполняет fn внутри транзакции с уровнем изоляции по умолчанию. Блокировки строк
// (SELECT ... FOR UPDATE) репозитории берут сами, поэтому ReadCommitted достаточно.
func (u *UnitOfWork) Do(ctx context.Context, fn func(context.Context, TX) error) error {
	return u.doTx(ctx, pgx.TxOptions{}, fn)
}

func (u *UnitOfWork) doTx(ctx context.Context, opts pgx.TxOptions, fn func(context.Context, TX) error) (err error) {
	tx, txErr := u.conn.BeginTx(ctx, opts)
	if txErr != nil {
		return txErr //nolint:wrapcheck
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			if err == nil {
				err = rollbackErr
			} else {
				err = errors.Join(err, rollbackErr)
			}
		}
	}()

	if fnErr := fn(ctx, NewTransaction(tx, u.repositories)); fnErr != nil {
		return fnErr
	}
	err = tx.Commit(ctx)
	return
}

// GetRepository возвращает репозиторий, привязанный к пулу (вне транзакции),
// или ошибку ErrRepositoryNotRegistered.
func (u *UnitOfWork) GetRepository(name RepositoryName) (Repository, error) {
	if repoFactory, ok := u.repositories[name]; ok {
		return repoFactory(u.conn), nil
	}
	return nil, ErrRepositoryNotRegistered
}

// GetRepositoryAs возвращает репозиторий по имени name, приведенный к типу T. Возвращает ошибки
// ErrRepositoryNotRegistered и ErrInvalidRepositoryType.
func GetRepositoryAs[T any](u UOW, name RepositoryName) (T, error) {
	var res T
	repo, err := u.GetRepository(name)
	if err != nil {
		return res, err //nolint:wrapcheck
	}
	r, ok := repo.(T)
	if !ok {
		return res, ErrInvalidRepositoryType
	}
	return r, nil
}
