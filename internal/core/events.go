package core

// Events receives hooks fired synchronously right after each core operation
// resolves, at most once per operation, with the operation's outcome already
// decided. Emission happens in the same logical step as the ledger update, so
// an observer never sees a placed reservation whose stock snapshot could still
// change underneath it. Implementations are called from many producer and
// worker goroutines concurrently and must be safe for that.
type Events interface {
	// OnOrderProcessed fires after every fulfillment attempt, fulfilled or not.
	OnOrderProcessed(order *Order)

	// OnOrderFulfilled fires only when the attempt succeeded; the order
	// carries the product, quantity and price for sales tallying.
	OnOrderFulfilled(order *Order)

	// OnReservationPlaced fires only for successful placements. It returns
	// ErrMissingStockSnapshot when the reservation lacks its placement-time
	// snapshot, which is an invariant violation the caller must surface.
	OnReservationPlaced(reservation *Reservation) error

	// OnSimulationEnd fires once, after all producers and workers finished.
	OnSimulationEnd()
}

// NopEvents discards every event. Useful as a default so the services never
// need a nil check per hook.
type NopEvents struct{}

func (NopEvents) OnOrderProcessed(*Order) {}

func (NopEvents) OnOrderFulfilled(*Order) {}

func (NopEvents) OnReservationPlaced(*Reservation) error { return nil }

func (NopEvents) OnSimulationEnd() {}
