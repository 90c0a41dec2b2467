package repoargs

import (
	"github.com/debdutta777/noobwriter-wallet/internal/domain"
)

// LedgerEntryCreate аргументы вставки записи леджера. BalanceAfter заполняется сервисным
// слоем после проверки достаточности баланса под блокировкой строки аккаунта.
type LedgerEntryCreate struct {
	AccountID    int64
	Delta        int64
	Kind         domain.EntryKindType
	ExternalRef  *string
	RefEntryID   *int64
	BalanceAfter int64
}
