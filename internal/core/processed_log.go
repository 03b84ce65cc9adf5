package core

import "sync"

// ProcessedLog is the append-only record of orders that reached a terminal
// status. It is written concurrently by every worker and read by analytics
// and debug reporting once the writers are done.
type ProcessedLog struct {
	mu     sync.RWMutex
	orders []*Order
}

func NewProcessedLog() *ProcessedLog {
	return &ProcessedLog{}
}

// Append records a processed order. Orders in the log are read-only from the
// moment they are appended.
func (l *ProcessedLog) Append(order *Order) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.orders = append(l.orders, order)
}

// Snapshot returns a copy of the log in append order.
func (l *ProcessedLog) Snapshot() []*Order {
	l.mu.RLock()
	defer l.mu.RUnlock()
	orders := make([]*Order, len(l.orders))
	copy(orders, l.orders)
	return orders
}

// Len returns the number of processed orders.
func (l *ProcessedLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.orders)
}
