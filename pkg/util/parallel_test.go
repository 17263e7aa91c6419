package util

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestParallelRunsEveryInput(t *testing.T) {
	inputs := []int{1, 2, 3, 4, 5, 6, 7, 8}

	var mu sync.Mutex
	seen := make(map[int]bool)
	var running, peak atomic.Int32

	err := Parallel(context.Background(), inputs, 3, func(_ context.Context, n int) error {
		cur := running.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		running.Add(-1)

		mu.Lock()
		seen[n] = true
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != len(inputs) {
		t.Errorf("processed %d inputs, want %d", len(seen), len(inputs))
	}
	if peak.Load() > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak.Load())
	}
}

func TestParallelStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32

	inputs := make([]int, 100)
	err := Parallel(context.Background(), inputs, 1, func(_ context.Context, _ int) error {
		if calls.Add(1) == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Parallel() error = %v, want boom", err)
	}
	if calls.Load() >= int32(len(inputs)) {
		t.Errorf("calls = %d, expected early stop", calls.Load())
	}
}

func TestParallelCanceledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Parallel(ctx, []int{1, 2, 3}, 2, func(ctx context.Context, _ int) error {
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Parallel() error = %v, want context.Canceled", err)
	}
}

func TestParallelEmpty(t *testing.T) {
	called := false
	err := Parallel(context.Background(), nil, 4, func(context.Context, string) error {
		called = true
		return nil
	})
	if err != nil || called {
		t.Errorf("Parallel(nil) = %v, called = %v", err, called)
	}
}
