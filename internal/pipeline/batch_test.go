package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestBatchProcessorNew tests the BatchProcessor constructor.
func TestBatchProcessorNew(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, string) error { return nil }

	t.Run("default concurrency", func(t *testing.T) {
		t.Parallel()
		if got := NewBatchProcessor(noop).Concurrency(); got != 4 {
			t.Errorf("expected 4, got %d", got)
		}
	})

	t.Run("custom concurrency", func(t *testing.T) {
		t.Parallel()
		if got := NewBatchProcessor(noop, WithConcurrency(2)).Concurrency(); got != 2 {
			t.Errorf("expected 2, got %d", got)
		}
	})

	t.Run("ignores non-positive concurrency", func(t *testing.T) {
		t.Parallel()
		if got := NewBatchProcessor(noop, WithConcurrency(0)).Concurrency(); got != 4 {
			t.Errorf("expected default 4, got %d", got)
		}
	})
}

// TestBatchProcessorProcessBatch tests batch execution.
func TestBatchProcessorProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("results keep input order", func(t *testing.T) {
		t.Parallel()

		errMissing := errors.New("missing")
		bp := NewBatchProcessor(func(_ context.Context, url string) error {
			if url == "missing.html" {
				return errMissing
			}
			return nil
		})

		urls := []string{"index.html", "missing.html", "about.html"}
		results, err := bp.ProcessBatch(t.Context(), urls)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, r := range results {
			if r.URL != urls[i] {
				t.Errorf("result %d: expected %q, got %q", i, urls[i], r.URL)
			}
		}
		if !errors.Is(results[1].Err, errMissing) {
			t.Errorf("expected task error recorded, got %v", results[1].Err)
		}
		if results[0].Err != nil || results[2].Err != nil {
			t.Error("expected other tasks to succeed")
		}
	})

	t.Run("respects concurrency limit", func(t *testing.T) {
		t.Parallel()

		var running, peak atomic.Int32
		bp := NewBatchProcessor(func(context.Context, string) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return nil
		}, WithConcurrency(2))

		urls := []string{"a.html", "b.html", "c.html", "d.html", "e.html"}
		if _, err := bp.ProcessBatch(t.Context(), urls); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if peak.Load() > 2 {
			t.Errorf("expected at most 2 concurrent tasks, got %d", peak.Load())
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		var calls atomic.Int32
		bp := NewBatchProcessor(func(context.Context, string) error {
			calls.Add(1)
			return nil
		})
		_, err := bp.ProcessBatch(ctx, []string{"a.html", "b.html"})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if calls.Load() != 0 {
			t.Errorf("expected no task to run, got %d", calls.Load())
		}
	})
}

// TestBatchProcessorProcessBatchWithCallback tests streaming results.
func TestBatchProcessorProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	bp := NewBatchProcessor(func(context.Context, string) error { return nil })

	var mu sync.Mutex
	seen := make(map[int]string)
	err := bp.ProcessBatchWithCallback(t.Context(), []string{"a.html", "b.html"}, func(r BatchResult, i int) {
		mu.Lock()
		defer mu.Unlock()
		seen[i] = r.URL
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen[0] != "a.html" || seen[1] != "b.html" {
		t.Errorf("unexpected callbacks: %v", seen)
	}
}
