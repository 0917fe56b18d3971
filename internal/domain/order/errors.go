package order

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrEmptyCart              = errors.New("cart must have at least one item")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrOrderNumberExhausted   = errors.New("could not allocate a unique order number")

	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrPersistence matches every *PersistenceError.
	ErrPersistence = errors.New("persistence failed")
)

// ValidationError reports caller-correctable input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// PersistenceError reports a failed store call. When returned from
// PlaceOrder no order exists.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// StockUpdateWarning records a line item whose stock decrement failed
// after the order was created. It never fails the placement.
type StockUpdateWarning struct {
	ProductID string
	Quantity  int
	Err       error
}

func (w StockUpdateWarning) Error() string {
	return fmt.Sprintf("stock update for product %s (qty %d) failed: %v", w.ProductID, w.Quantity, w.Err)
}

func (w StockUpdateWarning) Unwrap() error {
	return w.Err
}

// MarshalJSON exposes the cause as a string so callers can surface it.
func (w StockUpdateWarning) MarshalJSON() ([]byte, error) {
	msg := ""
	if w.Err != nil {
		msg = w.Err.Error()
	}
	return json.Marshal(struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
		Error     string `json:"error"`
	}{w.ProductID, w.Quantity, msg})
}
