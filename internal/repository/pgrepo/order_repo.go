package pgrepo

import (
	"context"
	"time"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/repository/repoargs"
	"github.com/debdutta777/noobwriter-wallet/pkg/uow"
)

const orderColumns = `order_id, created_at, updated_at, account_id, coin_amount, price, currency,
	receipt, status, payment_id, failure_reason`

type OrderRepository struct {
	conn uow.DBTX
}

func NewOrderRepository(conn uow.DBTX) *OrderRepository {
	return &OrderRepository{conn: conn}
}

func (o *OrderRepository) Create(
	ctx context.Context,
	order repoargs.SettlementOrderCreate,
) (*domain.SettlementOrder, error) {
	row := o.conn.QueryRow(ctx, `
		INSERT INTO settlement_orders (order_id, account_id, coin_amount, price, currency, receipt)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+orderColumns,
		order.OrderID, order.AccountID, order.CoinAmount, order.Price, order.Currency, order.Receipt)

	dbOrder, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating settlement order %s", order.OrderID)
	}
	return dbOrder, nil
}

func (o *OrderRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.SettlementOrder, error) {
	row := o.conn.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM settlement_orders
		WHERE order_id = $1`, orderID)

	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding settlement order %s", orderID)
	}
	return order, nil
}

// MarkCompleted переводит заказ pending -> completed. Условие по статусу гарантирует что
// терминальный заказ не будет перезаписан: для уже завершенного или проваленного заказа
// вернется ErrRecordNotFound, решение принимает сервисный слой.
func (o *OrderRepository) MarkCompleted(
	ctx context.Context,
	orderID string,
	paymentID string,
) (*domain.SettlementOrder, error) {
	row := o.conn.QueryRow(ctx, `
		UPDATE settlement_orders
		SET status = $3, payment_id = $2, updated_at = now()
		WHERE order_id = $1 AND status = $4
		RETURNING `+orderColumns,
		orderID, paymentID, domain.OrderStatusCompleted, domain.OrderStatusPending)

	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "completing settlement order %s", orderID)
	}
	return order, nil
}

// MarkFailed переводит заказ pending -> failed. Возвращает false если pending-строки
// не нашлось (заказ уже терминальный или не существует) - повторный вызов это no-op.
func (o *OrderRepository) MarkFailed(ctx context.Context, orderID string, reason string) (bool, error) {
	tag, err := o.conn.Exec(ctx, `
		UPDATE settlement_orders
		SET status = $3, failure_reason = $2, updated_at = now()
		WHERE order_id = $1 AND status = $4`,
		orderID, reason, domain.OrderStatusFailed, domain.OrderStatusPending)

	if err != nil {
		return false, convertErr(err, "failing settlement order %s", orderID)
	}
	return tag.RowsAffected() > 0, nil
}

// ListPendingBefore возвращает pending-заказы, созданные раньше границы olderThan.
// Используется воркером сверки зависших заказов.
func (o *OrderRepository) ListPendingBefore(
	ctx context.Context,
	olderThan time.Time,
	limit uint,
) ([]domain.SettlementOrder, error) {
	rows, err := o.conn.Query(ctx, `
		SELECT `+orderColumns+`
		FROM settlement_orders
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at
		LIMIT $3`, domain.OrderStatusPending, olderThan, limit)
	if err != nil {
		return nil, convertErr(err, "listing pending settlement orders")
	}
	defer rows.Close()

	var orders []domain.SettlementOrder
	for rows.Next() {
		order, scanErr := scanOrder(rows)
		if scanErr != nil {
			return nil, convertErr(scanErr, "listing pending settlement orders")
		}
		orders = append(orders, *order)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "listing pending settlement orders")
	}
	return orders, nil
}

func scanOrder(row rowScanner) (*domain.SettlementOrder, error) {
	var order domain.SettlementOrder
	err := row.Scan(
		&order.OrderID,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.AccountID,
		&order.CoinAmount,
		&order.Price,
		&order.Currency,
		&order.Receipt,
		&order.Status,
		&order.PaymentID,
		&order.FailureReason,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return &order, nil
}
