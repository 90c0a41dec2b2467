package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrUnknown        = errors.New("unknown error")

	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountClosed     = errors.New("account closed")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrOrderFinalized    = errors.New("order finalized")
	ErrAlreadyRefunded   = errors.New("entry already refunded")
	ErrSelfTransfer      = errors.New("self transfer")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// GatewayError ошибка вызова платежного шлюза. Заказ при этом остается в статусе pending,
// повторный вызов безопасен.
type GatewayError struct {
	Op         string
	StatusCode int
	Err        error
}

func NewGatewayError(op string, statusCode int, err error) error {
	return &GatewayError{Op: op, StatusCode: statusCode, Err: err}
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s: %s", e.Op, e.Err.Error())
	}
	return fmt.Sprintf("gateway %s: unexpected status code %d", e.Op, e.StatusCode)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
