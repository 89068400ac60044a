package model

import (
	"errors"
	"fmt"
)

// ErrInvalidTransaction is returned by Validate for malformed trade records.
var ErrInvalidTransaction = errors.New("model: invalid transaction")

// Validate checks the immutable-record invariants: a known side and executor,
// and strictly positive quantity and price.
func (t Transaction) Validate() error {
	switch t.Type {
	case TransactionBuy, TransactionSell:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.Type)
	}
	switch t.ExecutedBy {
	case ExecutorManual, ExecutorBot:
	default:
		return fmt.Errorf("%w: unknown executor %q", ErrInvalidTransaction, t.ExecutedBy)
	}
	if !t.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidTransaction, t.Quantity)
	}
	if !t.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive, got %s", ErrInvalidTransaction, t.Price)
	}
	if t.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidTransaction)
	}
	return nil
}
