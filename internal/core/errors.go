package core

import "errors"

// Errors returned by the core. Insufficient stock is deliberately not among
// them: a rejected fulfillment or reservation is a normal negative outcome,
// reported as a boolean, while these indicate caller bugs or lifecycle signals.
var (
	// ErrAlreadyProcessed is returned when an order's status is set a second
	// time. The first recorded status stands.
	ErrAlreadyProcessed = errors.New("order already processed")

	// ErrProductNotFound is returned when an operation names a product the
	// warehouse was never stocked with.
	ErrProductNotFound = errors.New("product not found in warehouse")

	// ErrMissingStockSnapshot means a reservation reported success but carries
	// no total-stock snapshot. This is an invariant violation, never defaulted.
	ErrMissingStockSnapshot = errors.New("placed reservation has no total stock snapshot")

	// ErrQueueEmpty is the poll timeout sentinel: no order arrived within the
	// wait. Workers treat it as the drain-and-exit signal, not as a failure.
	ErrQueueEmpty = errors.New("no order received within poll timeout")

	// ErrQueueClosed is returned by Put after Close, and by Poll once the
	// queue is closed and fully drained.
	ErrQueueClosed = errors.New("order queue is closed")
)
