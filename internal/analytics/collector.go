// Package analytics tallies simulation outcomes from the core event hooks.
// It is a pure observer: the pipeline calls it synchronously after each
// operation resolves, and nothing here touches the stock ledger.
package analytics

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"warehouse-sim/internal/core"
)

// Collector implements core.Events, accumulating counts, profit, per-product
// sales and the highest observed reservation percentage per product. All
// hooks are safe for concurrent use.
type Collector struct {
	processed atomic.Int64
	fulfilled atomic.Int64

	mu          sync.Mutex
	totalProfit decimal.Decimal
	sold        map[int]*productSales
	reservation map[int]*productHigh

	endOnce sync.Once
	onEnd   func()
}

type productSales struct {
	product  core.Product
	quantity int
}

type productHigh struct {
	product    core.Product
	percentage float64
}

// Option configures a Collector.
type Option func(*Collector)

// WithSimulationEndHook registers a callback fired by the first
// OnSimulationEnd, typically used to print the summary.
func WithSimulationEndHook(fn func()) Option {
	return func(c *Collector) { c.onEnd = fn }
}

func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		sold:        make(map[int]*productSales),
		reservation: make(map[int]*productHigh),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnOrderProcessed counts every fulfillment attempt, whatever its outcome.
func (c *Collector) OnOrderProcessed(*core.Order) {
	c.processed.Add(1)
}

// OnOrderFulfilled accrues the sale: fulfilled count, profit of
// price x quantity, and the per-product sold tally.
func (c *Collector) OnOrderFulfilled(order *core.Order) {
	c.fulfilled.Add(1)

	profit := order.Product.Price.Mul(decimal.NewFromInt(int64(order.Quantity)))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalProfit = c.totalProfit.Add(profit)
	if sales, ok := c.sold[order.Product.ID]; ok {
		sales.quantity += order.Quantity
	} else {
		c.sold[order.Product.ID] = &productSales{product: order.Product, quantity: order.Quantity}
	}
}

// OnReservationPlaced records the reservation's share of the product's total
// stock, keeping the highest percentage seen per product. A placed
// reservation without its snapshot is an invariant violation and is returned
// as an error rather than defaulted.
func (c *Collector) OnReservationPlaced(reservation *core.Reservation) error {
	total, ok := reservation.TotalStockAtReserveTime()
	if !ok {
		return fmt.Errorf("reservation %s reported placed: %w",
			reservation.ReservationID, core.ErrMissingStockSnapshot)
	}

	percentage := float64(reservation.Quantity) * 100.0 / float64(total)

	c.mu.Lock()
	defer c.mu.Unlock()
	if high, exists := c.reservation[reservation.Product.ID]; !exists || percentage > high.percentage {
		c.reservation[reservation.Product.ID] = &productHigh{product: reservation.Product, percentage: percentage}
	}
	return nil
}

// OnSimulationEnd fires the registered end hook, once, no matter how many
// times it is called.
func (c *Collector) OnSimulationEnd() {
	c.endOnce.Do(func() {
		if c.onEnd != nil {
			c.onEnd()
		}
	})
}

// ── Summary ───────────────────────────────────────────────────────────────────

// ProductSales is one line of the bestseller ranking.
type ProductSales struct {
	Product  core.Product
	Quantity int
}

// ProductPercentage is the highest observed percentage of a product's total
// stock held by a single reservation.
type ProductPercentage struct {
	Product    core.Product
	Percentage float64
}

// Summary is a point-in-time snapshot of everything the collector tallied.
type Summary struct {
	OrdersProcessed int64
	OrdersFulfilled int64
	TotalProfit     decimal.Decimal
	// Bestsellers holds at most the requested number of products, best first;
	// ties are broken by ascending product id.
	Bestsellers []ProductSales
	// ReservationHighs is sorted by ascending product id.
	ReservationHighs []ProductPercentage
}

// Summarize snapshots the tallies, ranking at most topN bestsellers.
func (c *Collector) Summarize(topN int) Summary {
	c.mu.Lock()
	defer c.mu.Unlock()

	bestsellers := make([]ProductSales, 0, len(c.sold))
	for _, sales := range c.sold {
		bestsellers = append(bestsellers, ProductSales{Product: sales.product, Quantity: sales.quantity})
	}
	slices.SortFunc(bestsellers, func(a, b ProductSales) int {
		if a.Quantity != b.Quantity {
			return b.Quantity - a.Quantity
		}
		return a.Product.ID - b.Product.ID
	})
	if topN >= 0 && len(bestsellers) > topN {
		bestsellers = bestsellers[:topN]
	}

	highs := make([]ProductPercentage, 0, len(c.reservation))
	for _, high := range c.reservation {
		highs = append(highs, ProductPercentage{Product: high.product, Percentage: high.percentage})
	}
	slices.SortFunc(highs, func(a, b ProductPercentage) int {
		return a.Product.ID - b.Product.ID
	})

	return Summary{
		OrdersProcessed:  c.processed.Load(),
		OrdersFulfilled:  c.fulfilled.Load(),
		TotalProfit:      c.totalProfit,
		Bestsellers:      bestsellers,
		ReservationHighs: highs,
	}
}
