package pgrepo

import (
	"context"
	"errors"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/pkg/uow"
)

// IdempotencyRepository резервирует внешние reference id (payment id вебхука и т.п.).
// Шлюз доставляет события at-least-once, поэтому каждое применение расчета обязано
// сначала пройти через Reserve.
type IdempotencyRepository struct {
	conn uow.DBTX
}

func NewIdempotencyRepository(conn uow.DBTX) *IdempotencyRepository {
	return &IdempotencyRepository{conn: conn}
}

// Reserve пытается занять ключ. Возвращает fresh=false, если ключ уже занят - вызывающий
// обязан пропустить повторное применение и вернуть ранее записанный результат.
// Конкурентные дубликаты разруливаются уникальным констрейнтом, а не проверкой наличия.
func (i *IdempotencyRepository) Reserve(ctx context.Context, key string) (bool, error) {
	_, err := i.conn.Exec(ctx, `
		INSERT INTO idempotency_keys (key)
		VALUES ($1)`, key)

	if err != nil {
		convErr := convertErr(err, "reserving idempotency key %s", key)
		if errors.Is(convErr, domain.ErrDuplicateKey) {
			return false, nil
		}
		return false, convErr
	}
	return true, nil
}
