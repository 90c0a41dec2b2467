package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/repository/repoargs"
	"github.com/debdutta777/noobwriter-wallet/internal/service/sign"
	"github.com/debdutta777/noobwriter-wallet/pkg/uow"
)

const minorUnitsPerMajor = 100

// SettlementService координирует покупку монет: создание заказа во внешнем шлюзе,
// проверку подписи подтверждения и идемпотентное применение оплаты к леджеру.
// Жизненный цикл заказа: pending -> completed | failed, терминальные статусы финальны.
type SettlementService struct {
	uow         uow.UOW
	orderRepo   OrderRepository
	ledgerRepo  LedgerRepository
	gateway     GatewayClient
	orderSecret []byte
}

func NewSettlementService(u uow.UOW, gateway GatewayClient, orderSecret []byte) (*SettlementService, error) {
	orderRepo, orderRepoErr := uow.GetRepositoryAs[OrderRepository](u, uow.RepositoryName(repoargs.OrderRepoName))
	if orderRepoErr != nil {
		return nil, orderRepoErr //nolint:wrapcheck
	}
	ledgerRepo, ledgerRepoErr := uow.GetRepositoryAs[LedgerRepository](u, uow.RepositoryName(repoargs.LedgerRepoName))
	if ledgerRepoErr != nil {
		return nil, ledgerRepoErr //nolint:wrapcheck
	}
	return &SettlementService{
		uow:         u,
		orderRepo:   orderRepo,
		ledgerRepo:  ledgerRepo,
		gateway:     gateway,
		orderSecret: orderSecret,
	}, nil
}

// CreateOrder создает заказ в шлюзе и сохраняет его у нас в статусе pending.
// Леджер на этом шаге не трогается: монеты зачисляются только после подтверждения
// оплаты. Ошибка шлюза возвращается как *domain.GatewayError, у нас ничего не остается.
func (s *SettlementService) CreateOrder(
	ctx context.Context,
	accountID int64,
	coinAmount int64,
	price CoinPrice,
) (*domain.SettlementOrder, error) {
	if coinAmount <= 0 {
		return nil, fmt.Errorf("creating order: %w", domain.ErrInvalidAmount)
	}

	receipt := uuid.NewString()
	amountMinor := price.Price.Mul(decimal.NewFromInt(minorUnitsPerMajor)).IntPart()

	gwOrder, gwErr := s.gateway.CreateOrder(ctx, GatewayOrderArgs{
		Amount:   amountMinor,
		Currency: price.Currency,
		Receipt:  receipt,
		Notes: map[string]string{
			"account_id":  fmt.Sprintf("%d", accountID),
			"coin_amount": fmt.Sprintf("%d", coinAmount),
		},
	})
	if gwErr != nil {
		return nil, fmt.Errorf("creating order: %w", gwErr)
	}

	order, createErr := s.orderRepo.Create(ctx, repoargs.SettlementOrderCreate{
		OrderID:    gwOrder.OrderID,
		AccountID:  accountID,
		CoinAmount: coinAmount,
		Price:      price.Price,
		Currency:   price.Currency,
		Receipt:    receipt,
	})
	if createErr != nil {
		return nil, fmt.Errorf("creating order: %w", createErr)
	}
	return order, nil
}

// ConfirmSettlement проверяет подпись подтверждения оплаты и применяет расчет.
// Несовпадение подписи возвращает ErrInvalidSignature, заказ остается pending -
// легитимный ретрай с корректной подписью не блокируется.
func (s *SettlementService) ConfirmSettlement(
	ctx context.Context,
	orderID string,
	paymentID string,
	signature string,
) (int64, error) {
	if !sign.VerifyOrderSignature(orderID, paymentID, signature, s.orderSecret) {
		return 0, fmt.Errorf("confirming settlement of order %s: %w", orderID, domain.ErrInvalidSignature)
	}
	return s.ApplyCapture(ctx, orderID, paymentID)
}

// ApplyCapture идемпотентно применяет подтвержденную оплату: помечает заказ completed
// и зачисляет монеты одной транзакцией - упасть между этими шагами нельзя. Аутентичность
// события проверяет вызывающий (подпись подтверждения либо подпись вебхука).
//
// Повторная доставка того же paymentID (вебхук + клиентское подтверждение, ретраи
// шлюза) возвращает ранее записанный результат без второго зачисления.
func (s *SettlementService) ApplyCapture(ctx context.Context, orderID string, paymentID string) (int64, error) {
	order, findErr := s.orderRepo.FindByOrderID(ctx, orderID)
	if findErr != nil {
		return 0, fmt.Errorf("applying capture of order %s: %w", orderID, findErr)
	}

	switch order.Status {
	case domain.OrderStatusFailed:
		return 0, fmt.Errorf("applying capture of order %s: %w", orderID, domain.ErrOrderFinalized)
	case domain.OrderStatusCompleted:
		return s.replayCapture(ctx, paymentID)
	case domain.OrderStatusPending:
	}

	var balance int64
	var replay bool
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		idemRepo, idemRepoErr := uow.GetAs[IdempotencyRepository](tx, uow.RepositoryName(repoargs.IdempotencyRepoName))
		if idemRepoErr != nil {
			return idemRepoErr //nolint:wrapcheck
		}

		fresh, reserveErr := idemRepo.Reserve(c, paymentID)
		if reserveErr != nil {
			return reserveErr //nolint:wrapcheck
		}
		if !fresh {
			// Конкурентная доставка успела раньше. Выходим без записей, результат
			// добираем после коммита.
			replay = true
			return nil
		}

		orderRepo, orderRepoErr := uow.GetAs[OrderRepository](tx, uow.RepositoryName(repoargs.OrderRepoName))
		if orderRepoErr != nil {
			return orderRepoErr //nolint:wrapcheck
		}
		if _, complErr := orderRepo.MarkCompleted(c, orderID, paymentID); complErr != nil {
			return complErr //nolint:wrapcheck
		}

		entry, appendErr := appendEntry(c, tx, appendArgs{
			AccountID:   order.AccountID,
			Delta:       order.CoinAmount,
			Kind:        domain.EntryKindPurchase,
			ExternalRef: &paymentID,
		})
		if appendErr != nil {
			return appendErr
		}
		balance = entry.BalanceAfter
		return nil
	})
	if txErr != nil {
		return 0, fmt.Errorf("applying capture of order %s: %w", orderID, txErr)
	}

	if replay {
		return s.replayCapture(ctx, paymentID)
	}
	return balance, nil
}

// replayCapture возвращает результат ранее примененного расчета по paymentID.
func (s *SettlementService) replayCapture(ctx context.Context, paymentID string) (int64, error) {
	entry, err := s.ledgerRepo.FindByExternalRef(ctx, paymentID)
	if err != nil {
		return 0, fmt.Errorf("replaying capture of payment %s: %w", paymentID, err)
	}
	return entry.BalanceAfter, nil
}

// FailOrder помечает заказ проваленным. Леджер не трогается. Идемпотентна: повторный
// вызов для уже проваленного заказа - no-op, а вот completed заказ провалить нельзя.
func (s *SettlementService) FailOrder(ctx context.Context, orderID string, reason string) error {
	applied, err := s.orderRepo.MarkFailed(ctx, orderID, reason)
	if err != nil {
		return fmt.Errorf("failing order %s: %w", orderID, err)
	}
	if applied {
		return nil
	}

	order, findErr := s.orderRepo.FindByOrderID(ctx, orderID)
	if findErr != nil {
		return fmt.Errorf("failing order %s: %w", orderID, findErr)
	}
	if order.Status == domain.OrderStatusCompleted {
		return fmt.Errorf("failing order %s: %w", orderID, domain.ErrOrderFinalized)
	}
	return nil
}

// RefundCapture обрабатывает возврат оплаты со стороны шлюза: находит запись покупки
// по paymentID и добавляет обратную запись. Повторная доставка события - no-op.
func (s *SettlementService) RefundCapture(ctx context.Context, paymentID string) error {
	txErr := s.uow.Do(ctx, func(c context.Context, tx uow.TX) error {
		ledgerRepo, repoErr := uow.GetAs[LedgerRepository](tx, uow.RepositoryName(repoargs.LedgerRepoName))
		if repoErr != nil {
			return repoErr //nolint:wrapcheck
		}
		original, findErr := ledgerRepo.FindByExternalRef(c, paymentID)
		if findErr != nil {
			return findErr //nolint:wrapcheck
		}
		_, reverseErr := reverseEntry(c, tx, original, domain.EntryKindRefund)
		return reverseErr
	})
	if txErr != nil {
		if errors.Is(txErr, domain.ErrAlreadyRefunded) {
			return nil
		}
		return fmt.Errorf("refunding capture of payment %s: %w", paymentID, txErr)
	}
	return nil
}

// StalePendingOrders возвращает pending-заказы старше maxAge для сверки со шлюзом.
func (s *SettlementService) StalePendingOrders(
	ctx context.Context,
	maxAge time.Duration,
	limit uint,
) ([]domain.SettlementOrder, error) {
	orders, err := s.orderRepo.ListPendingBefore(ctx, time.Now().Add(-maxAge), limit)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	return orders, nil
}
