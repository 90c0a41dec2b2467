package repoargs

import "github.com/shopspring/decimal"

type SettlementOrderCreate struct {
	OrderID    string
	AccountID  int64
	CoinAmount int64
	Price      decimal.Decimal
	Currency   string
	Receipt    string
}
