package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestCache_PutGet(t *testing.T) {
	t.Parallel()

	c := New()
	if _, ok := c.Get("about.html"); ok {
		t.Fatal("expected empty cache")
	}

	if !c.Put("about.html", "<h1>About</h1>") {
		t.Error("expected first Put to add the entry")
	}
	if c.Put("about.html", "<h1>Changed</h1>") {
		t.Error("expected second Put to be rejected")
	}

	got, ok := c.Get("about.html")
	if !ok || got != "<h1>About</h1>" {
		t.Errorf("expected first value to be kept, got %q (ok=%v)", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}
}

func TestCache_Keys(t *testing.T) {
	t.Parallel()

	c := New()
	c.Put("pricing.html", "p")
	c.Put("about.html", "a")
	c.Put("index.html", "i")

	want := []string{"about.html", "index.html", "pricing.html"}
	if diff := cmp.Diff(want, c.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestCache_Load(t *testing.T) {
	t.Parallel()

	t.Run("fills once per URL", func(t *testing.T) {
		t.Parallel()

		c := New()
		var calls atomic.Int32
		fill := func(_ context.Context, url string) (string, error) {
			calls.Add(1)
			return "fragment of " + url, nil
		}

		got, fromCache, err := c.Load(t.Context(), "about.html", fill)
		if err != nil || fromCache || got != "fragment of about.html" {
			t.Fatalf("first load: got %q fromCache=%v err=%v", got, fromCache, err)
		}

		got, fromCache, err = c.Load(t.Context(), "about.html", fill)
		if err != nil || !fromCache || got != "fragment of about.html" {
			t.Fatalf("second load: got %q fromCache=%v err=%v", got, fromCache, err)
		}

		if calls.Load() != 1 {
			t.Errorf("expected 1 fill, got %d", calls.Load())
		}
		if c.Fills() != 1 {
			t.Errorf("expected Fills() = 1, got %d", c.Fills())
		}
	})

	t.Run("failed fills are not cached", func(t *testing.T) {
		t.Parallel()

		c := New()
		errBoom := errors.New("boom")
		var calls atomic.Int32
		fill := func(context.Context, string) (string, error) {
			if calls.Add(1) == 1 {
				return "", errBoom
			}
			return "ok", nil
		}

		if _, _, err := c.Load(t.Context(), "x.html", fill); !errors.Is(err, errBoom) {
			t.Fatalf("expected errBoom, got %v", err)
		}
		if c.Len() != 0 {
			t.Fatalf("expected nothing cached after failure")
		}
		got, _, err := c.Load(t.Context(), "x.html", fill)
		if err != nil || got != "ok" {
			t.Fatalf("expected retry to succeed, got %q %v", got, err)
		}
	})

	t.Run("concurrent loads share one fill", func(t *testing.T) {
		t.Parallel()

		c := New()
		release := make(chan struct{})
		var calls atomic.Int32
		fill := func(context.Context, string) (string, error) {
			calls.Add(1)
			<-release
			return "shared", nil
		}

		var wg sync.WaitGroup
		results := make([]string, 5)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], _, _ = c.Load(context.Background(), "pricing.html", fill)
			}()
		}

		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		if calls.Load() != 1 {
			t.Errorf("expected 1 fill, got %d", calls.Load())
		}
		for i, r := range results {
			if r != "shared" {
				t.Errorf("result %d = %q", i, r)
			}
		}
	})

	t.Run("cancelled caller does not cancel the fill", func(t *testing.T) {
		t.Parallel()

		c := New()
		release := make(chan struct{})
		done := make(chan struct{})
		fill := func(ctx context.Context, _ string) (string, error) {
			defer close(done)
			<-release
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "kept", nil
		}

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			_, _, err := c.Load(ctx, "about.html", fill)
			errCh <- err
		}()

		cancel()
		if err := <-errCh; !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}

		close(release)
		<-done

		// the group returns after storing, so poll briefly
		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			if got, ok := c.Get("about.html"); ok {
				if got != "kept" {
					t.Errorf("expected kept, got %q", got)
				}
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		t.Error("expected fragment to be cached after cancelled load")
	})
}
