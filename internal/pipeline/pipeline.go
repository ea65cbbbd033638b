package pipeline

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/sitenav/internal/page"
)

// Swap describes a completed content swap. Steps read the live document
// through it and record their outcome in it.
type Swap struct {
	// URL is the normalized page URL now rendered.
	URL string

	// PageID is the page identifier: the file name of URL without ".html".
	PageID string

	// Doc is the live page. Steps run while the navigator holds exclusive
	// access to it.
	Doc *page.Document

	// ContentSelector selects the main content region in Doc.
	ContentSelector string

	// FromCache reports whether the fragment came from the cache.
	FromCache bool

	// Animated reports whether the swap was animated.
	Animated bool

	// Performed lists the steps that ran, in order.
	Performed []string

	// Errors holds the errors of failed steps.
	Errors []StepError
}

// StepError records a failed step.
type StepError struct {
	Step string
	Err  error
}

func (e StepError) Error() string {
	return e.Step + ": " + e.Err.Error()
}

// Unwrap returns the step's error.
func (e StepError) Unwrap() error {
	return e.Err
}

// NewSwap creates a Swap for url rendered into doc.
func NewSwap(url string, doc *page.Document, contentSelector string) *Swap {
	return &Swap{
		URL:             url,
		PageID:          PageID(url),
		Doc:             doc,
		ContentSelector: contentSelector,
		Performed:       make([]string, 0),
	}
}

// Main returns the main content region of the swap's document.
func (s *Swap) Main() (*goquery.Selection, error) {
	return s.Doc.Main(s.ContentSelector)
}

// PageID returns the identifier of a page URL: its last path segment
// without the ".html" suffix. "docs/cookies.html" yields "cookies".
func PageID(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	return strings.TrimSuffix(path.Base(url), ".html")
}

// Step is one unit of post-swap work.
type Step interface {
	// Do runs the step. A returned error is recorded in the swap.
	Do(ctx context.Context, swap *Swap) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// stepFunc adapts a function to Step.
type stepFunc struct {
	name string
	fn   func(ctx context.Context, swap *Swap) error
}

func (s stepFunc) Do(ctx context.Context, swap *Swap) error { return s.fn(ctx, swap) }
func (s stepFunc) Name() string                              { return s.name }

// Func returns a Step named name that calls fn.
func Func(name string, fn func(ctx context.Context, swap *Swap) error) Step {
	return stepFunc{name: name, fn: fn}
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps []Step

	logger *slog.Logger

	// continueOnError keeps executing after a step fails.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to run the remaining steps
// after one fails.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps in order for swap. Cancellation is checked before
// each step. It returns the first step error unless the pipeline continues
// on error, in which case every error is recorded in swap.Errors and nil is
// returned.
func (p *Pipeline) Execute(ctx context.Context, swap *Swap) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("post-swap steps cancelled",
				"step", step.Name(),
				"url", swap.URL,
				"reason", err,
			)
			return err
		}

		if err := step.Do(ctx, swap); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"url", swap.URL,
				"error", err,
			)
			swap.Errors = append(swap.Errors, StepError{Step: step.Name(), Err: err})
			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"url", swap.URL,
			)
		}

		swap.Performed = append(swap.Performed, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
