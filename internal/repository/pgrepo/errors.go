package pgrepo

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
)

const (
	uniqueViolationCode = "23505"
	checkViolationCode  = "23514"
)

// errNoRowsAffected сигнализирует что guarded UPDATE не затронул ни одной строки.
var errNoRowsAffected = errors.New("no rows affected")

// convertErr преобразует ошибку драйвера к стандартному виду для слоя репозитория.
// Особенности:
//   - pgx.ErrNoRows возвращается как ErrRecordNotFound из domain.
//   - Нарушение уникального ключа (23505) - как ErrDuplicateKey.
//   - Нарушение check-констрейнта (23514, у нас это balance >= 0) - как ErrInsufficientFunds:
//     последний рубеж защиты от ухода баланса в минус, сервисный слой проверяет это раньше.
//   - Все остальные ошибки возвращаются как ErrUnknown с оригинальным сообщением.
func convertErr(err error, format string, formatArgs ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, formatArgs...)

	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, errNoRowsAffected) {
		return fmt.Errorf("[repository/%s] %w", msg, domain.ErrRecordNotFound)
	}

	var pgErr *pgconn.PgError
	errType := domain.ErrUnknown

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			errType = domain.ErrDuplicateKey
		case checkViolationCode:
			errType = domain.ErrInsufficientFunds
		}
	}

	return fmt.Errorf("[repository/%s] %w: %s", msg, errType, err.Error())
}
