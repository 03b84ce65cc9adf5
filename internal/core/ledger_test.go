package core_test

import (
	"sync"
	"testing"

	"warehouse-sim/internal/core"

	"github.com/shopspring/decimal"
)

func testProduct(id int, price string) core.Product {
	return core.Product{ID: id, Price: decimal.RequireFromString(price)}
}

// newTestLedger builds a ledger with a single product P1 at the given
// available quantity.
func newTestLedger(t *testing.T, available int) (*core.StockLedger, core.Product) {
	t.Helper()
	p := testProduct(1, "10.00")
	ledger, err := core.NewStockLedger([]core.StockedProduct{{Product: p, Quantity: available}})
	if err != nil {
		t.Fatalf("NewStockLedger failed: %v", err)
	}
	return ledger, p
}

func quantityOf(t *testing.T, ledger *core.StockLedger, productID int) core.StockQuantity {
	t.Helper()
	q, ok := ledger.Quantity(productID)
	if !ok {
		t.Fatalf("product %d not found in ledger", productID)
	}
	return q
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestStockLedger_RejectsInvalidInitialStock(t *testing.T) {
	p := testProduct(1, "1.00")

	if _, err := core.NewStockLedger([]core.StockedProduct{{Product: p, Quantity: -1}}); err == nil {
		t.Error("expected error for negative initial quantity")
	}

	_, err := core.NewStockLedger([]core.StockedProduct{
		{Product: p, Quantity: 1},
		{Product: p, Quantity: 2},
	})
	if err == nil {
		t.Error("expected error for duplicate product id")
	}
}

func TestStockLedger_AdjustIfAvailable_UnknownProduct(t *testing.T) {
	ledger, _ := newTestLedger(t, 5)

	_, ok := ledger.AdjustIfAvailable(99, -1, 0, nil)
	if ok {
		t.Error("adjustment against unknown product must fail")
	}
	if got := quantityOf(t, ledger, 1); got.Available != 5 || got.Reserved != 0 {
		t.Errorf("ledger changed by failed adjustment: %v", got)
	}
}

func TestStockLedger_AdjustIfAvailable_PredicateRejects(t *testing.T) {
	ledger, _ := newTestLedger(t, 5)

	before, ok := ledger.AdjustIfAvailable(1, -6, 0, func(q core.StockQuantity) bool {
		return q.Available >= 6
	})
	if ok {
		t.Fatal("predicate rejected but adjustment was applied")
	}
	if before.Available != 5 {
		t.Errorf("expected before.Available=5, got %d", before.Available)
	}
	if got := quantityOf(t, ledger, 1); got.Available != 5 || got.Reserved != 0 {
		t.Errorf("ledger changed by rejected adjustment: %v", got)
	}
}

func TestStockLedger_AdjustIfAvailable_ReturnsPreMutationQuantity(t *testing.T) {
	ledger, _ := newTestLedger(t, 10)

	before, ok := ledger.AdjustIfAvailable(1, -4, 4, func(q core.StockQuantity) bool {
		return q.Available >= 4
	})
	if !ok {
		t.Fatal("adjustment should have been applied")
	}
	if before.Available != 10 || before.Reserved != 0 {
		t.Errorf("expected pre-mutation quantity 10/0, got %v", before)
	}
	if got := quantityOf(t, ledger, 1); got.Available != 6 || got.Reserved != 4 {
		t.Errorf("expected 6 available / 4 reserved, got %v", got)
	}
}

func TestStockLedger_AdjustIfAvailable_RefusesNegativeResult(t *testing.T) {
	ledger, _ := newTestLedger(t, 3)

	// A release without a matching hold would drive reserved negative.
	_, ok := ledger.AdjustIfAvailable(1, +2, -2, nil)
	if ok {
		t.Fatal("adjustment driving reserved negative must be refused")
	}
	if got := quantityOf(t, ledger, 1); got.Available != 3 || got.Reserved != 0 {
		t.Errorf("ledger changed by refused adjustment: %v", got)
	}
}

func TestStockLedger_Catalog_FiltersOutOfStock(t *testing.T) {
	p1 := testProduct(1, "1.00")
	p2 := testProduct(2, "2.00")
	p3 := testProduct(3, "3.00")
	ledger, err := core.NewStockLedger([]core.StockedProduct{
		{Product: p1, Quantity: 4},
		{Product: p2, Quantity: 0},
		{Product: p3, Quantity: 7},
	})
	if err != nil {
		t.Fatalf("NewStockLedger failed: %v", err)
	}

	catalog := ledger.Catalog()
	if len(catalog) != 2 {
		t.Fatalf("expected 2 catalog entries, got %d", len(catalog))
	}
	for _, entry := range catalog {
		if entry.Product.ID == 2 {
			t.Error("out-of-stock product must not appear in the catalog")
		}
		if entry.Available <= 0 {
			t.Errorf("catalog entry for product %d has available=%d", entry.Product.ID, entry.Available)
		}
	}
}

func TestStockLedger_Positions_SortedByProductID(t *testing.T) {
	ledger, err := core.NewStockLedger([]core.StockedProduct{
		{Product: testProduct(3, "3.00"), Quantity: 1},
		{Product: testProduct(1, "1.00"), Quantity: 2},
		{Product: testProduct(2, "2.00"), Quantity: 3},
	})
	if err != nil {
		t.Fatalf("NewStockLedger failed: %v", err)
	}

	positions := ledger.Positions()
	if len(positions) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(positions))
	}
	for i, want := range []int{1, 2, 3} {
		if positions[i].Product.ID != want {
			t.Errorf("position %d: expected product %d, got %d", i, want, positions[i].Product.ID)
		}
	}
}

// Two concurrent deductions of 3 against 5 available: exactly one may win.
func TestStockLedger_ConcurrentDeduction_NoOversell(t *testing.T) {
	for round := 0; round < 100; round++ {
		ledger, _ := newTestLedger(t, 5)

		var wg sync.WaitGroup
		results := make([]bool, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, ok := ledger.AdjustIfAvailable(1, -3, 0, func(q core.StockQuantity) bool {
					return q.Available >= 3
				})
				results[i] = ok
			}(i)
		}
		wg.Wait()

		wins := 0
		for _, ok := range results {
			if ok {
				wins++
			}
		}
		if wins != 1 {
			t.Fatalf("expected exactly one winner, got %d", wins)
		}
		if got := quantityOf(t, ledger, 1); got.Available != 2 || got.Reserved != 0 {
			t.Fatalf("expected 2 available after one deduction of 3, got %v", got)
		}
	}
}

// Hammer one product with holds and releases from many goroutines: total
// stock must be conserved and the sum of winning deductions must never
// exceed the opening stock.
func TestStockLedger_Conservation_UnderConcurrentMutation(t *testing.T) {
	const (
		initial    = 50
		goroutines = 16
		iterations = 200
	)
	ledger, _ := newTestLedger(t, initial)

	var deducted sync.Map
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			sold := 0
			for i := 0; i < iterations; i++ {
				switch i % 3 {
				case 0: // hold one unit, then release it
					if _, ok := ledger.AdjustIfAvailable(1, -1, 1, func(q core.StockQuantity) bool {
						return q.Available >= 1
					}); ok {
						if _, released := ledger.AdjustIfAvailable(1, +1, -1, nil); !released {
							t.Error("release of a held unit was refused")
							return
						}
					}
				case 1: // sell one unit
					if _, ok := ledger.AdjustIfAvailable(1, -1, 0, func(q core.StockQuantity) bool {
						return q.Available >= 1
					}); ok {
						sold++
					}
				case 2: // observe, never mutate
					q := ledger.Catalog()
					_ = q
				}
			}
			deducted.Store(g, sold)
		}(g)
	}
	wg.Wait()

	totalSold := 0
	deducted.Range(func(_, v any) bool {
		totalSold += v.(int)
		return true
	})

	final := quantityOf(t, ledger, 1)
	if final.Available < 0 || final.Reserved < 0 {
		t.Fatalf("negative stock: %v", final)
	}
	if final.Reserved != 0 {
		t.Fatalf("all holds were released, expected reserved=0, got %d", final.Reserved)
	}
	if totalSold > initial {
		t.Fatalf("oversold: %d units deducted from an opening stock of %d", totalSold, initial)
	}
	if final.Total() != initial-totalSold {
		t.Fatalf("conservation violated: opening %d, sold %d, final total %d", initial, totalSold, final.Total())
	}
}
