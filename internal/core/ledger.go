package core

import (
	"fmt"
	"slices"
	"sync"
)

// StockLedger owns the per-product stock positions of the warehouse. The
// product set is fixed at construction; after that only quantities change, and
// every quantity change goes through AdjustIfAvailable.
//
// Each entry carries its own lock, so mutations against the same product
// serialize while mutations against different products proceed fully in
// parallel. The map itself is never written after construction and is
// therefore safe to read without a lock.
type StockLedger struct {
	entries map[int]*stockEntry
}

type stockEntry struct {
	mu       sync.Mutex
	product  Product
	quantity StockQuantity
}

// NewStockLedger initializes the ledger from the opening stock. Quantities
// must be non-negative and product ids unique.
func NewStockLedger(stock []StockedProduct) (*StockLedger, error) {
	entries := make(map[int]*stockEntry, len(stock))
	for _, sp := range stock {
		if sp.Quantity < 0 {
			return nil, fmt.Errorf("initial quantity for product %d must be non-negative, got %d", sp.Product.ID, sp.Quantity)
		}
		if _, exists := entries[sp.Product.ID]; exists {
			return nil, fmt.Errorf("duplicate product id %d in initial stock", sp.Product.ID)
		}
		entries[sp.Product.ID] = &stockEntry{
			product:  sp.Product,
			quantity: StockQuantity{Available: sp.Quantity},
		}
	}
	return &StockLedger{entries: entries}, nil
}

// AdjustIfAvailable is the single atomic primitive every higher-level stock
// operation composes from. It reads the product's current position, evaluates
// predicate against it, and only if the predicate accepts applies
// (deltaAvailable, deltaReserved). The whole read-predicate-write is one
// indivisible step per product key, so no two concurrent callers can both
// observe capacity and both commit.
//
// A nil predicate accepts any position. The mutation is additionally refused
// if it would drive Available or Reserved negative. The returned StockQuantity
// is the position as it was before the mutation; callers needing an atomic
// snapshot of the pre-mutation state (the reservation total-stock denominator)
// take it from there instead of issuing a second, racy read.
//
// Returns ok=false with no mutation when the product is unknown, the predicate
// rejects, or the result would be negative.
func (l *StockLedger) AdjustIfAvailable(productID, deltaAvailable, deltaReserved int, predicate func(StockQuantity) bool) (StockQuantity, bool) {
	entry, ok := l.entries[productID]
	if !ok {
		return StockQuantity{}, false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	before := entry.quantity
	if predicate != nil && !predicate(before) {
		return before, false
	}

	next := StockQuantity{
		Available: before.Available + deltaAvailable,
		Reserved:  before.Reserved + deltaReserved,
	}
	if next.Available < 0 || next.Reserved < 0 {
		return before, false
	}

	entry.quantity = next
	return before, true
}

// Quantity returns the current position of one product.
func (l *StockLedger) Quantity(productID int) (StockQuantity, bool) {
	entry, ok := l.entries[productID]
	if !ok {
		return StockQuantity{}, false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.quantity, true
}

// Catalog returns the products a customer can buy right now: every entry with
// Available > 0, paired with that quantity. Each entry is a point-in-time read
// of its own key; no lock spans multiple keys, so the view may be inconsistent
// across products and stale by the time it is used. Callers tolerate both.
func (l *StockLedger) Catalog() []CatalogEntry {
	catalog := make([]CatalogEntry, 0, len(l.entries))
	for _, entry := range l.entries {
		entry.mu.Lock()
		available := entry.quantity.Available
		entry.mu.Unlock()
		if available > 0 {
			catalog = append(catalog, CatalogEntry{Product: entry.product, Available: available})
		}
	}
	return catalog
}

// Positions returns every ledger entry sorted by product id, for the debug
// warehouse dump. Read-only and off the concurrency-critical path.
func (l *StockLedger) Positions() []StockPosition {
	positions := make([]StockPosition, 0, len(l.entries))
	for _, entry := range l.entries {
		entry.mu.Lock()
		quantity := entry.quantity
		entry.mu.Unlock()
		positions = append(positions, StockPosition{Product: entry.product, Quantity: quantity})
	}
	slices.SortFunc(positions, func(a, b StockPosition) int {
		return a.Product.ID - b.Product.ID
	})
	return positions
}
