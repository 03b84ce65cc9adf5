package sim

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"warehouse-sim/internal/core"
)

// Tuning carries the behavioral knobs of a customer visit. The probabilities
// are simulation tuning, not a contract, which is why they are configuration
// rather than constants.
type Tuning struct {
	// OrderProbability is the chance a visit produces an order instead of a
	// reservation.
	OrderProbability float64
	// CancelProbability is the independent chance a placed reservation is
	// cancelled after a short random delay.
	CancelProbability float64
	// CancelDelayMax bounds the random sleep before a cancellation.
	CancelDelayMax time.Duration
}

// Customer simulates a single store visit: it takes a catalog snapshot, picks
// a product and quantity at random, and either queues an order or places a
// reservation. One visit produces at most one order or one reservation.
//
// Each customer owns its rand source; *rand.Rand is not safe for concurrent
// use and sharing one across tasks would serialize them on a lock.
type Customer struct {
	id           int
	ledger       *core.StockLedger
	queue        *core.OrderQueue
	reservations *core.ReservationService
	tuning       Tuning
	rng          *rand.Rand
	log          *zap.SugaredLogger
}

func NewCustomer(id int, ledger *core.StockLedger, queue *core.OrderQueue,
	reservations *core.ReservationService, tuning Tuning, rng *rand.Rand, log *zap.SugaredLogger) *Customer {
	return &Customer{
		id:           id,
		ledger:       ledger,
		queue:        queue,
		reservations: reservations,
		tuning:       tuning,
		rng:          rng,
		log:          log,
	}
}

// Visit performs the customer's single visit. An empty catalog means the
// customer leaves without acting; that is not an error.
func (c *Customer) Visit(ctx context.Context) error {
	catalog := c.ledger.Catalog()
	if len(catalog) == 0 {
		c.log.Debugf("customer %d found an empty catalog", c.id)
		return nil
	}

	entry := catalog[c.rng.IntN(len(catalog))]
	quantity := 1 + c.rng.IntN(entry.Available)

	if c.rng.Float64() < c.tuning.OrderProbability {
		return c.placeOrder(ctx, entry.Product, quantity)
	}
	return c.reserve(ctx, entry.Product, quantity)
}

func (c *Customer) placeOrder(ctx context.Context, product core.Product, quantity int) error {
	order, err := core.NewOrder(product, quantity, c.id)
	if err != nil {
		return fmt.Errorf("customer %d: %w", c.id, err)
	}
	if err := c.queue.Put(ctx, order); err != nil {
		return fmt.Errorf("customer %d: queue order %s: %w", c.id, order.OrderID, err)
	}
	c.log.Infof("customer %d placed an order for product %d x%d", c.id, product.ID, quantity)
	return nil
}

func (c *Customer) reserve(ctx context.Context, product core.Product, quantity int) error {
	reservation, err := core.NewReservation(product, quantity, c.id)
	if err != nil {
		return fmt.Errorf("customer %d: %w", c.id, err)
	}

	placed, err := c.reservations.Place(reservation)
	if err != nil {
		return fmt.Errorf("customer %d: %w", c.id, err)
	}
	if !placed {
		// The catalog snapshot was stale and the stock is gone. Expected.
		c.log.Debugf("customer %d could not reserve product %d x%d", c.id, product.ID, quantity)
		return nil
	}

	total, _ := reservation.TotalStockAtReserveTime()
	c.log.Infof("customer %d placed a reservation for product %d x%d (total stock: %d)",
		c.id, product.ID, quantity, total)

	if c.rng.Float64() >= c.tuning.CancelProbability {
		return nil
	}
	if err := c.sleep(ctx); err != nil {
		return err
	}
	if err := c.reservations.Cancel(reservation); err != nil {
		return fmt.Errorf("customer %d: %w", c.id, err)
	}
	c.log.Infof("customer %d cancelled a reservation for product %d x%d", c.id, product.ID, quantity)
	return nil
}

// sleep waits a random interval in [0, CancelDelayMax], giving other tasks a
// window to contend for the held stock. It returns early with the context
// error on cancellation.
func (c *Customer) sleep(ctx context.Context) error {
	if c.tuning.CancelDelayMax <= 0 {
		return nil
	}
	delay := time.Duration(c.rng.Int64N(int64(c.tuning.CancelDelayMax) + 1))
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
