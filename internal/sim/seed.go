package sim

import (
	"fmt"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"warehouse-sim/internal/core"
)

const (
	minPrice = 0.01
	maxPrice = 1000.00
)

// GenerateWarehouse rolls the opening stock: between 1 and maxProducts
// products with consecutive ids starting at 1, each priced uniformly in
// [0.01, 1000.00] at two decimal places and stocked with 1..maxQuantity
// units. Runs once, single-threaded, before any simulation task starts.
func GenerateWarehouse(rng *rand.Rand, maxProducts, maxQuantity int) ([]core.StockedProduct, error) {
	if maxProducts <= 0 || maxQuantity <= 0 {
		return nil, fmt.Errorf("max products and max quantity must be positive, got %d and %d", maxProducts, maxQuantity)
	}

	count := 1 + rng.IntN(maxProducts)
	stock := make([]core.StockedProduct, 0, count)
	for i := 0; i < count; i++ {
		price := decimal.NewFromFloat(minPrice + rng.Float64()*(maxPrice-minPrice)).Round(2)
		stock = append(stock, core.StockedProduct{
			Product:  core.Product{ID: i + 1, Price: price},
			Quantity: 1 + rng.IntN(maxQuantity),
		})
	}
	return stock, nil
}
