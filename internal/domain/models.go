package domain

import (
	"github.com/shopspring/decimal"

	"time"
)

// Account кошелек пользователя. Баланс хранится в монетах (целое число) и является
// write-through проекцией суммы дельт записей леджера. Аккаунты не удаляются,
// только помечаются закрытыми.
type Account struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Balance   int64
	Version   int64
	Status    AccountStatusType
}

// LedgerEntry неизменяемая запись леджера. Единственный способ изменить баланс аккаунта -
// добавить новую запись. BalanceAfter хранит снимок баланса после применения дельты.
type LedgerEntry struct {
	ID           int64
	CreatedAt    time.Time
	AccountID    int64
	Delta        int64
	Kind         EntryKindType
	ExternalRef  *string
	RefEntryID   *int64
	BalanceAfter int64
}

// SettlementOrder заказ на покупку монет, созданный во внешнем платежном шлюзе.
// Price хранится в фиатной валюте, CoinAmount - в монетах.
type SettlementOrder struct {
	OrderID       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	AccountID     int64
	CoinAmount    int64
	Price         decimal.Decimal
	Currency      string
	Receipt       string
	Status        OrderStatusType
	PaymentID     *string
	FailureReason *string
}

// BalanceAudit результат сверки кешированного баланса с суммой дельт леджера.
type BalanceAudit struct {
	AccountID  int64
	Cached     int64
	LedgerSum  int64
	Consistent bool
}
