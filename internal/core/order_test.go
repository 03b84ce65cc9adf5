package core_test

import (
	"errors"
	"sync"
	"testing"

	"warehouse-sim/internal/core"
)

func TestNewOrder_RejectsNonPositiveQuantity(t *testing.T) {
	p := testProduct(1, "5.00")
	for _, quantity := range []int{0, -3} {
		if _, err := core.NewOrder(p, quantity, 1); err == nil {
			t.Errorf("expected error for quantity %d", quantity)
		}
	}
}

func TestOrder_StatusIsOneShot(t *testing.T) {
	p := testProduct(1, "5.00")
	order, err := core.NewOrder(p, 2, 7)
	if err != nil {
		t.Fatalf("NewOrder failed: %v", err)
	}
	if order.Status() != core.StatusNotProcessed {
		t.Fatalf("new order must be NOT_PROCESSED, got %s", order.Status())
	}

	if err := order.SetStatus(core.StatusFulfilled); err != nil {
		t.Fatalf("first transition failed: %v", err)
	}

	err = order.SetStatus(core.StatusNotFulfilled)
	if !errors.Is(err, core.ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed on second transition, got %v", err)
	}
	if order.Status() != core.StatusFulfilled {
		t.Errorf("first recorded status must stand, got %s", order.Status())
	}
}

func TestOrder_SetStatus_RejectsNonTerminal(t *testing.T) {
	p := testProduct(1, "5.00")
	order, err := core.NewOrder(p, 1, 1)
	if err != nil {
		t.Fatalf("NewOrder failed: %v", err)
	}
	if err := order.SetStatus(core.StatusNotProcessed); err == nil {
		t.Error("expected error when setting a non-terminal status")
	}
}

// Many concurrent transitions: exactly one may succeed.
func TestOrder_ConcurrentSetStatus(t *testing.T) {
	p := testProduct(1, "5.00")
	order, err := core.NewOrder(p, 1, 1)
	if err != nil {
		t.Fatalf("NewOrder failed: %v", err)
	}

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := core.StatusFulfilled
			if i%2 == 0 {
				status = core.StatusNotFulfilled
			}
			errs[i] = order.SetStatus(status)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, core.ErrAlreadyProcessed) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful transition, got %d", succeeded)
	}
	if !order.Status().Terminal() {
		t.Error("order must end terminal")
	}
}
