// Package report renders the end-of-run summary and the debug dumps. All
// rendering works on read-only snapshots taken after the simulation settled;
// nothing here is on the concurrency-critical path.
package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/shopspring/decimal"

	"warehouse-sim/internal/analytics"
	"warehouse-sim/internal/core"
)

// WriteSummary renders the analytics summary.
func WriteSummary(w io.Writer, s analytics.Summary) {
	fmt.Fprintln(w, "Store analytics:")
	fmt.Fprintf(w, "- orders processed: %d\n", s.OrdersProcessed)
	fmt.Fprintf(w, "- orders fulfilled successfully: %d\n", s.OrdersFulfilled)
	fmt.Fprintf(w, "- total profits: %s\n", s.TotalProfit.StringFixed(2))

	fmt.Fprintf(w, "- top %d bestsellers:\n", len(s.Bestsellers))
	for i, bestseller := range s.Bestsellers {
		fmt.Fprintf(w, "  %d) Product %d, %d items sold\n", i+1, bestseller.Product.ID, bestseller.Quantity)
	}

	fmt.Fprintln(w, "- highest reservation percentage per product:")
	for _, high := range s.ReservationHighs {
		fmt.Fprintf(w, "  - Product %d: %.2f%%\n", high.Product.ID, high.Percentage)
	}
}

// WriteWarehouse renders the current ledger contents sorted by product id.
func WriteWarehouse(w io.Writer, positions []core.StockPosition) {
	fmt.Fprintln(w, "Current warehouse status:")
	for _, position := range positions {
		fmt.Fprintf(w, "%s (%s)\n", position.Product, position.Quantity)
	}
}

// WriteSoldProducts aggregates the fulfilled orders of the processed log into
// total quantity sold and profit per product, sorted by product id.
func WriteSoldProducts(w io.Writer, orders []*core.Order) {
	type sold struct {
		product  core.Product
		quantity int
	}
	byProduct := make(map[int]*sold)
	for _, order := range orders {
		if order.Status() != core.StatusFulfilled {
			continue
		}
		if s, ok := byProduct[order.Product.ID]; ok {
			s.quantity += order.Quantity
		} else {
			byProduct[order.Product.ID] = &sold{product: order.Product, quantity: order.Quantity}
		}
	}

	lines := make([]*sold, 0, len(byProduct))
	for _, s := range byProduct {
		lines = append(lines, s)
	}
	slices.SortFunc(lines, func(a, b *sold) int {
		return a.product.ID - b.product.ID
	})

	fmt.Fprintln(w, "Sold products info:")
	for _, s := range lines {
		profit := s.product.Price.Mul(decimal.NewFromInt(int64(s.quantity)))
		fmt.Fprintf(w, "%s (%d, %s)\n", s.product, s.quantity, profit.StringFixed(2))
	}
}
