package core

import (
	"fmt"
)

// ReservationService applies reservations against the stock ledger: placement
// moves stock from available to reserved, cancellation moves it back. Total
// stock is invariant under both.
type ReservationService struct {
	ledger *StockLedger
	events Events
}

// NewReservationService wires a reservation service. A nil events sink is
// replaced with NopEvents.
func NewReservationService(ledger *StockLedger, events Events) *ReservationService {
	if events == nil {
		events = NopEvents{}
	}
	return &ReservationService{ledger: ledger, events: events}
}

// Place attempts to hold the reservation's quantity. On success the
// reservation records the product's total stock as observed in the same
// atomic step that held it (a separate read could race with a later mutation
// and give analytics an inconsistent denominator), and OnReservationPlaced
// fires. On insufficient stock nothing is held, the snapshot stays unset and
// (false, nil) is returned.
func (s *ReservationService) Place(reservation *Reservation) (bool, error) {
	before, placed := s.ledger.AdjustIfAvailable(
		reservation.Product.ID,
		-reservation.Quantity,
		+reservation.Quantity,
		func(q StockQuantity) bool { return q.Available >= reservation.Quantity },
	)
	if !placed {
		return false, nil
	}

	reservation.recordTotalStock(before.Total())
	if err := s.events.OnReservationPlaced(reservation); err != nil {
		return false, fmt.Errorf("reservation %s: %w", reservation.ReservationID, err)
	}
	return true, nil
}

// Cancel releases a previously placed reservation's hold back to available
// stock. Callers cancel at most once and only after a successful placement;
// the ledger still refuses a release that would drive the reserved count
// negative or names an unknown product, and that refusal is reported as an
// error because it always means a caller bug.
func (s *ReservationService) Cancel(reservation *Reservation) error {
	if _, known := s.ledger.Quantity(reservation.Product.ID); !known {
		return fmt.Errorf("cancel reservation %s: product %d: %w",
			reservation.ReservationID, reservation.Product.ID, ErrProductNotFound)
	}
	_, released := s.ledger.AdjustIfAvailable(
		reservation.Product.ID,
		+reservation.Quantity,
		-reservation.Quantity,
		nil,
	)
	if !released {
		return fmt.Errorf("cancel reservation %s: release of %d units of product %d rejected by ledger",
			reservation.ReservationID, reservation.Quantity, reservation.Product.ID)
	}
	return nil
}
