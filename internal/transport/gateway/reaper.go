// Package gateway связывает кошелек с внешним платежным шлюзом: HTTP-клиент заказов
// и воркер сверки зависших pending-заказов.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/debdutta777/noobwriter-wallet/internal/domain"
	"github.com/debdutta777/noobwriter-wallet/internal/service"
)

const (
	defaultServiceTimeout      = 3 * time.Second
	defaultAPITimeout          = 10 * time.Second
	defaultLimitPerIteration   uint = 100
	defaultReaperWorkers       uint = 10
	defaultPendingMaxAge            = 15 * time.Minute
	defaultIterationPause           = time.Minute
)

// Reaper сверяет зависшие pending-заказы со шлюзом. Вебхук может потеряться, клиент -
// закрыть вкладку до подтверждения; воркер добирает такие заказы: оплаченные проводит
// через тот же идемпотентный путь, что и вебхук, протухшие помечает проваленными.
type Reaper struct {
	client            Client
	svs               Servicer
	l                 *logrus.Entry
	limitPerIteration uint
	workers           uint
	pendingMaxAge     time.Duration
}

func NewReaper(svs Servicer, client Client, l *logrus.Logger) *Reaper {
	loggerEntry := l.WithFields(logrus.Fields{
		"component": "gateway",
		"module":    "reaper",
	})

	return &Reaper{
		svs:               svs,
		client:            client,
		l:                 loggerEntry,
		limitPerIteration: defaultLimitPerIteration,
		workers:           defaultReaperWorkers,
		pendingMaxAge:     defaultPendingMaxAge,
	}
}

// SetLimitPerIteration устанавливает кол-во заказов, обрабатываемых за одну итерацию.
func (r *Reaper) SetLimitPerIteration(limit uint) *Reaper {
	r.limitPerIteration = limit
	return r
}

// SetWorkers устанавливает кол-во воркеров, опрашивающих шлюз.
func (r *Reaper) SetWorkers(workers uint) *Reaper {
	r.workers = workers
	return r
}

// SetPendingMaxAge устанавливает возраст, после которого pending-заказ считается зависшим.
func (r *Reaper) SetPendingMaxAge(age time.Duration) *Reaper {
	r.pendingMaxAge = age
	return r
}

// Run запускает сверку в цикле до отмены контекста.
func (r *Reaper) Run(ctx context.Context) {
	r.l.WithFields(logrus.Fields{
		"limitPerIteration": r.limitPerIteration,
		"workers":           r.workers,
		"pendingMaxAge":     r.pendingMaxAge.String(),
	}).Info("Starting")

	for {
		select {
		case <-ctx.Done():
			r.l.Info("Got stop signal, exiting...")
			return
		default:
			if err := r.process(ctx); err != nil && !errors.Is(err, ErrNoOrders) {
				r.l.WithError(err).Error("process error")
			}
			select {
			case <-ctx.Done():
			case <-time.After(defaultIterationPause):
			}
		}
	}
}

// process одна итерация сверки: выборка зависших заказов, параллельный опрос шлюза,
// применение результата через сервисный слой.
func (r *Reaper) process(ctx context.Context) error {
	orders, ordersErr := r.produce(ctx)
	if ordersErr != nil {
		return fmt.Errorf("process: %w", ordersErr)
	}

	results := r.runWorkers(ctx, orders)

	for _, result := range results {
		if result.Error != nil {
			continue
		}
		if applyErr := r.apply(ctx, result); applyErr != nil {
			r.l.WithError(applyErr).WithField("orderID", result.Order.OrderID).Error("apply error")
		}
	}
	return nil
}

func (r *Reaper) apply(ctx context.Context, result workerResult) error {
	reqCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	switch result.GatewayStatus {
	case service.GatewayOrderPaid:
		if result.PaymentID == "" {
			return fmt.Errorf("order %s is paid but gateway returned no payment id", result.Order.OrderID)
		}
		if _, err := r.svs.ApplyCapture(reqCtx, result.Order.OrderID, result.PaymentID); err != nil {
			return fmt.Errorf("apply capture: %w", err)
		}
		r.l.WithField("orderID", result.Order.OrderID).Info("settled stale order")
	case service.GatewayOrderExpired:
		if err := r.svs.FailOrder(reqCtx, result.Order.OrderID, "expired by gateway"); err != nil {
			return fmt.Errorf("fail order: %w", err)
		}
		r.l.WithField("orderID", result.Order.OrderID).Info("failed expired order")
	case service.GatewayOrderCreated:
		// заказ еще жив на стороне шлюза, решение отложено до следующей итерации.
	}
	return nil
}

type workerResult struct {
	WorkerID      uint
	Order         *domain.SettlementOrder
	Error         error
	GatewayStatus service.GatewayOrderStatus
	PaymentID     string
}

// runWorkers запускает параллельных воркеров опроса шлюза и ожидает конца их работы.
// Паттерн fan-out/fan-in.
func (r *Reaper) runWorkers(ctx context.Context, orders []domain.SettlementOrder) []workerResult {
	var taskCh = make(chan *domain.SettlementOrder, len(orders))

	for _, order := range orders {
		taskCh <- &order
	}
	close(taskCh)

	wg := new(sync.WaitGroup)
	wg.Add(int(r.workers)) //nolint:gosec

	var resultCh = make(chan *workerResult, len(orders))

	for i := range r.workers {
		go r.worker(ctx, wg, i+1, taskCh, resultCh)
	}
	wg.Wait()

	close(resultCh)

	var results = make([]workerResult, 0, len(orders))
	for result := range resultCh {
		l := r.l.WithFields(logrus.Fields{
			"worker":  result.WorkerID,
			"orderID": result.Order.OrderID,
		})
		if result.Error != nil {
			l.WithError(result.Error).Error("fetch order from gateway")
		} else {
			l.WithField("gatewayStatus", result.GatewayStatus).Debug("fetched")
		}
		results = append(results, *result)
	}
	return results
}

func (r *Reaper) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	workerID uint,
	taskCh <-chan *domain.SettlementOrder,
	resultCh chan<- *workerResult,
) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-taskCh:
			if !ok {
				return
			}
			resultCh <- r.processWorkerTask(ctx, workerID, task)
		}
	}
}

func (r *Reaper) processWorkerTask(
	ctx context.Context,
	workerID uint,
	task *domain.SettlementOrder,
) *workerResult {
	reqCtx, cancel := context.WithTimeout(ctx, defaultAPITimeout)
	defer cancel()

	resp, err := r.client.FetchOrder(reqCtx, task.OrderID)
	if err != nil {
		return &workerResult{
			WorkerID: workerID,
			Order:    task,
			Error:    err,
		}
	}
	return &workerResult{
		WorkerID:      workerID,
		Order:         task,
		GatewayStatus: resp.Status,
		PaymentID:     resp.PaymentID,
	}
}

// produce получает список зависших заказов. Возвращает ErrNoOrders, если таких нет.
func (r *Reaper) produce(ctx context.Context) ([]domain.SettlementOrder, error) {
	produceCtx, cancel := context.WithTimeout(ctx, defaultServiceTimeout)
	defer cancel()

	orders, ordersErr := r.svs.StalePendingOrders(produceCtx, r.pendingMaxAge, r.limitPerIteration)
	if ordersErr != nil {
		return nil, fmt.Errorf("produce: %w", ordersErr)
	}

	if len(orders) == 0 {
		return nil, ErrNoOrders
	}
	return orders, nil
}
