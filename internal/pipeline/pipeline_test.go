package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/sitenav/internal/page"
)

// mockStep is a test helper that implements the Step interface.
type mockStep struct {
	name      string
	doFunc    func(ctx context.Context, swap *Swap) error
	callCount int
}

// Do implements Step.Do.
func (m *mockStep) Do(ctx context.Context, swap *Swap) error {
	m.callCount++
	if m.doFunc != nil {
		return m.doFunc(ctx, swap)
	}
	return nil
}

// Name implements Step.Name.
func (m *mockStep) Name() string {
	return m.name
}

func newTestSwap(t *testing.T, url string) *Swap {
	t.Helper()
	doc, err := page.ParseString(`<html><head></head><body><main></main></body></html>`)
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return NewSwap(url, doc, "main")
}

// TestPipelineNew tests the Pipeline constructor.
func TestPipelineNew(t *testing.T) {
	t.Parallel()

	t.Run("creates pipeline with default settings", func(t *testing.T) {
		t.Parallel()

		p := New()
		if p.StepCount() != 0 {
			t.Errorf("expected 0 steps, got %d", p.StepCount())
		}
		if p.continueOnError {
			t.Error("expected continueOnError to default to false")
		}
	})

	t.Run("applies WithContinueOnError option", func(t *testing.T) {
		t.Parallel()

		p := New(WithContinueOnError(true))
		if !p.continueOnError {
			t.Error("expected continueOnError to be true")
		}
	})
}

// TestPipelineExecute tests step execution order and error handling.
func TestPipelineExecute(t *testing.T) {
	t.Parallel()

	t.Run("runs steps in order", func(t *testing.T) {
		t.Parallel()

		var order []string
		p := New()
		for _, name := range []string{"a", "b", "c"} {
			p.AddStep(Func(name, func(context.Context, *Swap) error {
				order = append(order, name)
				return nil
			}))
		}

		swap := newTestSwap(t, "about.html")
		if err := p.Execute(t.Context(), swap); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{"a", "b", "c"}
		if diff := cmp.Diff(want, order); diff != "" {
			t.Errorf("order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff(want, swap.Performed); diff != "" {
			t.Errorf("performed mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("stops on first error by default", func(t *testing.T) {
		t.Parallel()

		errStep := errors.New("step failed")
		failing := &mockStep{name: "failing", doFunc: func(context.Context, *Swap) error { return errStep }}
		after := &mockStep{name: "after"}

		p := New()
		p.AddSteps(failing, after)

		swap := newTestSwap(t, "about.html")
		if err := p.Execute(t.Context(), swap); !errors.Is(err, errStep) {
			t.Fatalf("expected errStep, got %v", err)
		}
		if after.callCount != 0 {
			t.Error("expected later step not to run")
		}
		if len(swap.Errors) != 1 || swap.Errors[0].Step != "failing" {
			t.Errorf("expected recorded error, got %v", swap.Errors)
		}
	})

	t.Run("continues on error when configured", func(t *testing.T) {
		t.Parallel()

		errStep := errors.New("step failed")
		failing := &mockStep{name: "failing", doFunc: func(context.Context, *Swap) error { return errStep }}
		after := &mockStep{name: "after"}

		p := New(WithContinueOnError(true))
		p.AddSteps(failing, after)

		swap := newTestSwap(t, "about.html")
		if err := p.Execute(t.Context(), swap); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if after.callCount != 1 {
			t.Error("expected later step to run")
		}
		if !errors.Is(swap.Errors[0], errStep) {
			t.Errorf("expected StepError to unwrap to errStep")
		}
	})

	t.Run("respects cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		step := &mockStep{name: "never"}
		p := New()
		p.AddStep(step)

		if err := p.Execute(ctx, newTestSwap(t, "x.html")); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if step.callCount != 0 {
			t.Error("expected step not to run")
		}
	})
}

// TestPipelineStepNames tests StepNames.
func TestPipelineStepNames(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddSteps(NewScrollTopStep(), NewActiveLinkStep(""), NewMetadataStep("", ""))

	want := []string{StepScrollTop, StepActiveLink, StepMetadata}
	if diff := cmp.Diff(want, p.StepNames()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

// TestPageID tests the page identifier derivation.
func TestPageID(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"index.html":         "index",
		"docs/cookies.html":  "cookies",
		"privacy.html#scope": "privacy",
		"terms.html?x=1":     "terms",
		"pricing":            "pricing",
	}
	for in, want := range tests {
		if got := PageID(in); got != want {
			t.Errorf("PageID(%q) = %q, want %q", in, got, want)
		}
	}
}
