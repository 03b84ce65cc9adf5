package core

import (
	"context"
	"sync"
	"time"
)

// OrderQueue is the FIFO hand-off between customers and workers.
//
// Put blocks only when a capacity is configured and the queue is full
// (capacity 0, the default, never blocks). Poll blocks up to a timeout and
// then reports ErrQueueEmpty, which workers use as their drain-and-exit
// signal. Each order is delivered to exactly one poller; there is no fairness
// guarantee among blocked pollers beyond that.
//
// Signaling uses two one-slot channels instead of a condition variable so
// that blocked callers can also honor context cancellation.
type OrderQueue struct {
	mu       sync.Mutex
	orders   []*Order
	capacity int // 0 = unbounded
	closed   bool

	items chan struct{} // one-slot, coalesced "orders available" signal
	space chan struct{} // one-slot, coalesced "capacity available" signal
	done  chan struct{} // closed by Close, wakes all waiters
}

// NewOrderQueue creates a queue holding at most capacity orders; capacity 0
// means unbounded.
func NewOrderQueue(capacity int) *OrderQueue {
	return &OrderQueue{
		capacity: capacity,
		items:    make(chan struct{}, 1),
		space:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Put appends an order, blocking while a bounded queue is full. It returns
// ErrQueueClosed after Close, or the context error if ctx ends first.
func (q *OrderQueue) Put(ctx context.Context, order *Order) error {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return ErrQueueClosed
		}
		if q.capacity == 0 || len(q.orders) < q.capacity {
			q.orders = append(q.orders, order)
			q.mu.Unlock()
			signal(q.items)
			return nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			return ErrQueueClosed
		case <-q.space:
		}
	}
}

// Poll removes and returns the oldest order, waiting up to timeout for one to
// arrive. On timeout it returns ErrQueueEmpty; callers treat that as the
// documented idle signal, not a failure. A cancelled context surfaces as the
// context's error so cooperative interruption is never mistaken for idleness
// handled silently. After Close, remaining orders are still drained before
// ErrQueueClosed is reported.
func (q *OrderQueue) Poll(ctx context.Context, timeout time.Duration) (*Order, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		if order, ok := q.take(); ok {
			return order, nil
		}

		q.mu.Lock()
		drained := q.closed && len(q.orders) == 0
		q.mu.Unlock()
		if drained {
			return nil, ErrQueueClosed
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, ErrQueueEmpty
		case <-q.done:
		case <-q.items:
		}
	}
}

// take removes the head order if there is one. While holding the lock it
// re-signals waiters: items if orders remain (the one-slot channel coalesces
// signals, so a single Put signal can cover several queued orders), and space
// for any putter blocked on a bounded queue.
func (q *OrderQueue) take() (*Order, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.orders) == 0 {
		return nil, false
	}

	order := q.orders[0]
	q.orders[0] = nil // release the reference for GC
	q.orders = q.orders[1:]
	if len(q.orders) == 0 {
		q.orders = nil
	} else {
		signal(q.items)
	}
	if q.capacity > 0 {
		signal(q.space)
	}
	return order, true
}

// Len returns the number of queued orders.
func (q *OrderQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.orders)
}

// Close marks the queue as accepting no further orders and wakes every
// blocked caller. Queued orders remain pollable until drained.
func (q *OrderQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
