package sim

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"warehouse-sim/internal/core"
)

// Worker drains the order queue and hands each order to the fulfillment
// service. A worker terminates on its own once the queue stays empty for a
// full idle timeout; there is no global done signal, so workers finish
// independently and in no particular order.
type Worker struct {
	id          int
	queue       *core.OrderQueue
	fulfillment *core.FulfillmentService
	idleTimeout time.Duration
	log         *zap.SugaredLogger
}

func NewWorker(id int, queue *core.OrderQueue, fulfillment *core.FulfillmentService,
	idleTimeout time.Duration, log *zap.SugaredLogger) *Worker {
	return &Worker{
		id:          id,
		queue:       queue,
		fulfillment: fulfillment,
		idleTimeout: idleTimeout,
		log:         log,
	}
}

// Run loops until the queue has been idle for the full timeout or the context
// is cancelled. A fulfillment error stops only the offending order: the
// worker reports it and keeps draining, because a double-processed order must
// not take the rest of the simulation down with it.
func (w *Worker) Run(ctx context.Context) error {
	for {
		order, err := w.queue.Poll(ctx, w.idleTimeout)
		switch {
		case err == nil:
		case errors.Is(err, core.ErrQueueEmpty), errors.Is(err, core.ErrQueueClosed):
			w.log.Debugf("worker %d idle, shutting down", w.id)
			return nil
		default:
			// Cooperative interruption: propagate instead of swallowing it
			// into a clean exit.
			return err
		}

		fulfilled, err := w.fulfillment.Fulfill(order)
		if err != nil {
			w.log.Errorf("worker %d: order %s from customer %d rejected: %v",
				w.id, order.OrderID, order.CustomerID, err)
			continue
		}
		outcome := "not fulfilled"
		if fulfilled {
			outcome = "fulfilled"
		}
		w.log.Infof("worker %d: order %s from customer %d %s", w.id, order.OrderID, order.CustomerID, outcome)
	}
}
