package domain

type OrderStatusType string

const (
	OrderStatusPending   OrderStatusType = "pending"
	OrderStatusCompleted OrderStatusType = "completed"
	OrderStatusFailed    OrderStatusType = "failed"
)

type AccountStatusType string

const (
	AccountStatusOpen   AccountStatusType = "open"
	AccountStatusClosed AccountStatusType = "closed"
)

// EntryKindType тип записи леджера. Значения персистятся и не должны меняться -
// по ним строится вся история операций платформы.
type EntryKindType string

const (
	EntryKindPurchase        EntryKindType = "purchase"
	EntryKindUnlock          EntryKindType = "unlock"
	EntryKindTip             EntryKindType = "tip"
	EntryKindTipSent         EntryKindType = "tip_sent"
	EntryKindTipReceived     EntryKindType = "tip_received"
	EntryKindEarning         EntryKindType = "earning"
	EntryKindRefund          EntryKindType = "refund"
	EntryKindPayoutRequest   EntryKindType = "payout_request"
	EntryKindPayoutCompleted EntryKindType = "payout_completed"
	EntryKindPayoutRejected  EntryKindType = "payout_rejected"
)
