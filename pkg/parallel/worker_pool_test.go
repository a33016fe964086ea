package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_ExecuteFunc(t *testing.T) {
	pool := NewWorkerPool[int, int](DefaultPoolConfig())

	inputs := []int{1, 2, 3, 4, 5}
	results := pool.ExecuteFunc(context.Background(), inputs, func(ctx context.Context, input int) (int, error) {
		return input * 2, nil
	})

	if len(results) != len(inputs) {
		t.Fatalf("expected %d results, got %d", len(inputs), len(results))
	}
	for i, r := range results {
		if r.Error != nil {
			t.Errorf("unexpected error for input %d: %v", inputs[i], r.Error)
		}
		if r.Result != inputs[i]*2 {
			t.Errorf("expected %d, got %d", inputs[i]*2, r.Result)
		}
	}
}

func TestWorkerPool_PreservesOrder(t *testing.T) {
	pool := NewWorkerPool[int, int](DefaultPoolConfig().WithWorkers(4))

	inputs := make([]int, 100)
	for i := range inputs {
		inputs[i] = i
	}
	results := pool.ExecuteFunc(context.Background(), inputs, func(ctx context.Context, input int) (int, error) {
		return input, nil
	})
	for i, r := range results {
		if r.Result != i {
			t.Fatalf("result %d out of order: got %d", i, r.Result)
		}
	}
}

func TestWorkerPool_Errors(t *testing.T) {
	pool := NewWorkerPool[int, int](DefaultPoolConfig())
	boom := errors.New("boom")

	results := pool.ExecuteFunc(context.Background(), []int{1, 2, 3}, func(ctx context.Context, input int) (int, error) {
		if input == 2 {
			return 0, boom
		}
		return input, nil
	})

	if results[1].Error != boom {
		t.Errorf("expected error for input 2, got %v", results[1].Error)
	}
	if results[0].Error != nil || results[2].Error != nil {
		t.Error("unexpected errors on healthy inputs")
	}
}

func TestWorkerPool_Timeout(t *testing.T) {
	pool := NewWorkerPool[int, int](DefaultPoolConfig().WithWorkers(1).WithTimeout(20 * time.Millisecond))

	var executed atomic.Int32
	inputs := make([]int, 50)
	results := pool.ExecuteFunc(context.Background(), inputs, func(ctx context.Context, input int) (int, error) {
		executed.Add(1)
		time.Sleep(5 * time.Millisecond)
		return input, nil
	})

	cancelled := 0
	for _, r := range results {
		if r.Error != nil {
			cancelled++
		}
	}
	if cancelled == 0 {
		t.Error("expected some tasks to be cancelled by the timeout")
	}
}
