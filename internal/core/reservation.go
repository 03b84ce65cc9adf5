package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Reservation is a customer's hold on a quantity of one product. Lifecycle:
// created, then placed at most once (moves stock from available to reserved),
// then optionally cancelled at most once (moves it back). It is never placed
// twice; enforcing the at-most-once cancel is the caller's responsibility.
type Reservation struct {
	ReservationID string
	Product       Product
	Quantity      int
	CustomerID    int

	mu         sync.Mutex
	totalStock *int // total stock observed atomically at placement, nil until placed
}

// NewReservation creates an unplaced reservation. Quantity must be positive.
func NewReservation(product Product, quantity, customerID int) (*Reservation, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("reservation quantity must be positive, got %d", quantity)
	}
	return &Reservation{
		ReservationID: uuid.NewString(),
		Product:       product,
		Quantity:      quantity,
		CustomerID:    customerID,
	}, nil
}

// TotalStockAtReserveTime returns the total stock (available plus reserved) of
// the product as observed atomically at the moment the reservation was placed.
// ok is false for a reservation that was rejected or never placed. Analytics
// uses the value as the denominator for percentage-of-stock computations.
func (r *Reservation) TotalStockAtReserveTime() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.totalStock == nil {
		return 0, false
	}
	return *r.totalStock, true
}

// recordTotalStock captures the placement-time stock snapshot. Called exactly
// once, by ReservationService, from the same atomic step that held the stock.
func (r *Reservation) recordTotalStock(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.totalStock = &total
}
