package core

import (
	"fmt"
)

// FulfillmentService converts one queued order into a stock deduction and a
// terminal status. It owns no state of its own; everything flows through the
// ledger, the processed-orders log and the event hooks.
type FulfillmentService struct {
	ledger *StockLedger
	log    *ProcessedLog
	events Events
}

// NewFulfillmentService wires a fulfillment service. A nil events sink is
// replaced with NopEvents.
func NewFulfillmentService(ledger *StockLedger, log *ProcessedLog, events Events) *FulfillmentService {
	if events == nil {
		events = NopEvents{}
	}
	return &FulfillmentService{ledger: ledger, log: log, events: events}
}

// Fulfill attempts to deduct the order's quantity from available stock and
// records the outcome on the order.
//
// Insufficient stock is a normal negative outcome: the order becomes
// NOT_FULFILLED, the ledger stays untouched and err is nil. A second attempt
// on the same order is a double-processing bug; Fulfill claims the order
// atomically before touching the ledger, so even two concurrent attempts can
// never both deduct stock.
//
// The terminal order is appended to the processed-orders log, then
// OnOrderProcessed fires for every attempt and OnOrderFulfilled only on
// success.
func (s *FulfillmentService) Fulfill(order *Order) (bool, error) {
	if err := order.beginProcessing(); err != nil {
		return false, fmt.Errorf("fulfill order %s: %w", order.OrderID, err)
	}

	_, fulfilled := s.ledger.AdjustIfAvailable(order.Product.ID, -order.Quantity, 0, func(q StockQuantity) bool {
		// Another order for the same product may have gone through since the
		// customer saw the catalog; in that case this order just fails.
		return q.Available >= order.Quantity
	})

	status := StatusNotFulfilled
	if fulfilled {
		status = StatusFulfilled
	}
	if err := order.SetStatus(status); err != nil {
		return false, fmt.Errorf("fulfill order %s: %w", order.OrderID, err)
	}

	s.log.Append(order)
	s.events.OnOrderProcessed(order)
	if fulfilled {
		s.events.OnOrderFulfilled(order)
	}
	return fulfilled, nil
}
