package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is a sellable item in the warehouse catalog. Identity is the id plus
// the price; products are never mutated after warehouse initialization.
type Product struct {
	ID    int
	Price decimal.Decimal
}

// Equal reports whether two products are the same catalog item.
func (p Product) Equal(other Product) bool {
	return p.ID == other.ID && p.Price.Equal(other.Price)
}

func (p Product) String() string {
	return fmt.Sprintf("[Product] ID: %d, price = %s", p.ID, p.Price.StringFixed(2))
}

// StockQuantity is the stock position of one product. Available and Reserved
// are both >= 0 at every observable instant; Total only decreases when stock
// is sold.
type StockQuantity struct {
	Available int
	Reserved  int
}

// Total is the combined sellable and held quantity.
func (q StockQuantity) Total() int {
	return q.Available + q.Reserved
}

func (q StockQuantity) String() string {
	return fmt.Sprintf("total: %d, available: %d, reserved: %d", q.Total(), q.Available, q.Reserved)
}

// CatalogEntry is one purchasable line of the catalog view: a product together
// with the quantity that was available when the snapshot was taken.
type CatalogEntry struct {
	Product   Product
	Available int
}

// StockedProduct pairs a product with its initial available quantity, used to
// seed the ledger at warehouse initialization.
type StockedProduct struct {
	Product  Product
	Quantity int
}

// StockPosition is a read-only view of one ledger entry, used by reporting.
type StockPosition struct {
	Product  Product
	Quantity StockQuantity
}
