package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// OrderStatus is the processing state of an order. The state machine is
//
//	NOT_PROCESSED → {FULFILLED, NOT_FULFILLED}
//
// and the transition is one-shot: once an order is terminal its status never
// changes again.
type OrderStatus int

const (
	StatusNotProcessed OrderStatus = iota
	StatusFulfilled
	StatusNotFulfilled
)

func (s OrderStatus) String() string {
	switch s {
	case StatusNotProcessed:
		return "NOT_PROCESSED"
	case StatusFulfilled:
		return "FULFILLED"
	case StatusNotFulfilled:
		return "NOT_FULFILLED"
	default:
		return fmt.Sprintf("OrderStatus(%d)", int(s))
	}
}

// Terminal reports whether the status is a processing outcome.
func (s OrderStatus) Terminal() bool {
	return s == StatusFulfilled || s == StatusNotFulfilled
}

// Order is one customer purchase request for a quantity of a single product.
// It is created by a customer, owned by the queue while queued, then by the
// worker that dequeues it, and finally shared read-only through the processed
// orders log.
type Order struct {
	OrderID    string
	Product    Product
	Quantity   int
	CustomerID int

	mu         sync.Mutex
	status     OrderStatus
	processing bool
}

// NewOrder creates an unprocessed order. Quantity must be positive.
func NewOrder(product Product, quantity, customerID int) (*Order, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("order quantity must be positive, got %d", quantity)
	}
	return &Order{
		OrderID:    uuid.NewString(),
		Product:    product,
		Quantity:   quantity,
		CustomerID: customerID,
	}, nil
}

// Status returns the current processing state.
func (o *Order) Status() OrderStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// beginProcessing claims the order for a single fulfillment attempt. Only one
// caller can win the claim; every later attempt, concurrent or not, gets
// ErrAlreadyProcessed. Claiming before any ledger mutation is what makes the
// double-processing guard atomic rather than check-then-act.
func (o *Order) beginProcessing() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status.Terminal() {
		return fmt.Errorf("already %s: %w", o.status, ErrAlreadyProcessed)
	}
	if o.processing {
		return fmt.Errorf("fulfillment already in flight: %w", ErrAlreadyProcessed)
	}
	o.processing = true
	return nil
}

// SetStatus records the terminal processing outcome. Setting a status on an
// order that is already terminal returns ErrAlreadyProcessed and leaves the
// first recorded status in place; a double transition means the order was
// processed twice, which would double-deduct stock upstream.
func (o *Order) SetStatus(status OrderStatus) error {
	if !status.Terminal() {
		return fmt.Errorf("cannot set order %s to non-terminal status %s", o.OrderID, status)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status.Terminal() {
		return fmt.Errorf("order %s is already %s: %w", o.OrderID, o.status, ErrAlreadyProcessed)
	}
	o.status = status
	return nil
}
