package sim_test

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"warehouse-sim/internal/core"
	"warehouse-sim/internal/sim"
)

func testRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

func nopLog() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func singleProductLedger(t *testing.T, available int) (*core.StockLedger, core.Product) {
	t.Helper()
	p := core.Product{ID: 1, Price: decimal.RequireFromString("9.99")}
	ledger, err := core.NewStockLedger([]core.StockedProduct{{Product: p, Quantity: available}})
	require.NoError(t, err)
	return ledger, p
}

func TestCustomer_OrdersWhenCoinSaysOrder(t *testing.T) {
	ledger, p := singleProductLedger(t, 8)
	queue := core.NewOrderQueue(0)
	reservations := core.NewReservationService(ledger, core.NopEvents{})

	tuning := sim.Tuning{OrderProbability: 1.0}
	customer := sim.NewCustomer(1, ledger, queue, reservations, tuning, testRNG(1), nopLog())

	require.NoError(t, customer.Visit(context.Background()))

	order, err := queue.Poll(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, p.ID, order.Product.ID)
	assert.Equal(t, 1, order.CustomerID)
	assert.GreaterOrEqual(t, order.Quantity, 1)
	assert.LessOrEqual(t, order.Quantity, 8)
	assert.Equal(t, core.StatusNotProcessed, order.Status())

	// An order by itself must not touch the ledger.
	q, ok := ledger.Quantity(p.ID)
	require.True(t, ok)
	assert.Equal(t, 8, q.Available)
}

func TestCustomer_ReservesWhenCoinSaysReserve(t *testing.T) {
	ledger, p := singleProductLedger(t, 8)
	queue := core.NewOrderQueue(0)
	reservations := core.NewReservationService(ledger, core.NopEvents{})

	tuning := sim.Tuning{OrderProbability: 0.0, CancelProbability: 0.0}
	customer := sim.NewCustomer(1, ledger, queue, reservations, tuning, testRNG(2), nopLog())

	require.NoError(t, customer.Visit(context.Background()))

	assert.Equal(t, 0, queue.Len(), "a reservation visit must not queue an order")
	q, ok := ledger.Quantity(p.ID)
	require.True(t, ok)
	assert.Positive(t, q.Reserved, "the visit must have placed a hold")
	assert.Equal(t, 8, q.Total(), "reservations must conserve total stock")
}

func TestCustomer_CancelsReservationAfterDelay(t *testing.T) {
	ledger, p := singleProductLedger(t, 8)
	queue := core.NewOrderQueue(0)
	reservations := core.NewReservationService(ledger, core.NopEvents{})

	tuning := sim.Tuning{
		OrderProbability:  0.0,
		CancelProbability: 1.0,
		CancelDelayMax:    5 * time.Millisecond,
	}
	customer := sim.NewCustomer(1, ledger, queue, reservations, tuning, testRNG(3), nopLog())

	require.NoError(t, customer.Visit(context.Background()))

	q, ok := ledger.Quantity(p.ID)
	require.True(t, ok)
	assert.Equal(t, 8, q.Available, "cancellation must release the full hold")
	assert.Equal(t, 0, q.Reserved)
}

func TestCustomer_EmptyCatalogDoesNothing(t *testing.T) {
	ledger, _ := singleProductLedger(t, 0)
	queue := core.NewOrderQueue(0)
	reservations := core.NewReservationService(ledger, core.NopEvents{})

	customer := sim.NewCustomer(1, ledger, queue, reservations, sim.Tuning{OrderProbability: 1.0}, testRNG(4), nopLog())

	require.NoError(t, customer.Visit(context.Background()))
	assert.Equal(t, 0, queue.Len())
}

func TestCustomer_CancelSleepHonorsContext(t *testing.T) {
	ledger, _ := singleProductLedger(t, 8)
	queue := core.NewOrderQueue(0)
	reservations := core.NewReservationService(ledger, core.NopEvents{})

	tuning := sim.Tuning{
		OrderProbability:  0.0,
		CancelProbability: 1.0,
		CancelDelayMax:    time.Hour, // would hang without cancellation
	}
	customer := sim.NewCustomer(1, ledger, queue, reservations, tuning, testRNG(5), nopLog())

	ctx, cancel := context.WithCancel(context.Background())
	visited := make(chan error, 1)
	go func() {
		visited <- customer.Visit(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-visited:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Visit did not honor context cancellation during the cancel delay")
	}
}
