package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"warehouse-sim/internal/core"
)

// Params sizes one simulation run.
type Params struct {
	Customers int
	Workers   int
	// PoolSize caps how many tasks run at once; 0 means customers+workers,
	// i.e. everything concurrently.
	PoolSize int
	// IdleTimeout is how long a worker waits on an empty queue before
	// terminating.
	IdleTimeout time.Duration
	// JoinTimeout bounds the wait for all tasks after submission; when it
	// expires the remaining work is cancelled and abandoned rather than
	// awaited indefinitely.
	JoinTimeout time.Duration
	// Seed feeds the per-task rand sources; 0 picks a random seed.
	Seed   uint64
	Tuning Tuning
}

// Runner submits every customer and worker task to one bounded pool and
// waits for them with a bounded join.
type Runner struct {
	params       Params
	ledger       *core.StockLedger
	queue        *core.OrderQueue
	fulfillment  *core.FulfillmentService
	reservations *core.ReservationService
	events       core.Events
	log          *zap.SugaredLogger
}

func NewRunner(params Params, ledger *core.StockLedger, queue *core.OrderQueue,
	fulfillment *core.FulfillmentService, reservations *core.ReservationService,
	events core.Events, log *zap.SugaredLogger) (*Runner, error) {
	if params.Customers <= 0 || params.Workers <= 0 {
		return nil, fmt.Errorf("customers and workers must be positive, got %d and %d", params.Customers, params.Workers)
	}
	if params.IdleTimeout <= 0 || params.JoinTimeout <= 0 {
		return nil, fmt.Errorf("idle and join timeouts must be positive")
	}
	if events == nil {
		events = core.NopEvents{}
	}
	return &Runner{
		params:       params,
		ledger:       ledger,
		queue:        queue,
		fulfillment:  fulfillment,
		reservations: reservations,
		events:       events,
		log:          log,
	}, nil
}

// Run executes the simulation: all customers take their single visit while
// workers drain the queue until idle. Run returns once every task finished or
// the join timeout expired, firing OnSimulationEnd exactly once either way.
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	seed := r.params.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	r.log.Debugf("running %d customers and %d workers (seed %d)", r.params.Customers, r.params.Workers, seed)

	poolSize := r.params.PoolSize
	if poolSize <= 0 {
		poolSize = r.params.Customers + r.params.Workers
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(poolSize)

	// Submission itself can block once the pool is full, so it happens on the
	// watchdog goroutine's side of the select, not before it.
	done := make(chan error, 1)
	go func() {
		for i := 0; i < r.params.Customers; i++ {
			customer := NewCustomer(i+1, r.ledger, r.queue, r.reservations, r.params.Tuning,
				rand.New(rand.NewPCG(seed, uint64(i+1))), r.log)
			group.Go(func() error {
				return customer.Visit(groupCtx)
			})
		}
		for i := 0; i < r.params.Workers; i++ {
			worker := NewWorker(i+1, r.queue, r.fulfillment, r.params.IdleTimeout, r.log)
			group.Go(func() error {
				return worker.Run(groupCtx)
			})
		}
		done <- group.Wait()
	}()

	var runErr error
	select {
	case err := <-done:
		runErr = err
	case <-time.After(r.params.JoinTimeout):
		r.log.Warnf("join timeout of %s exceeded, abandoning remaining work", r.params.JoinTimeout)
		cancel()
		// Tasks honor cancellation promptly; an error a task was already
		// failing with still surfaces instead of being dropped here.
		runErr = <-done
	}

	r.events.OnSimulationEnd()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("simulation run: %w", runErr)
	}
	return nil
}
