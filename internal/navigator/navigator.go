package navigator

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/sitenav/internal/cache"
	"github.com/nao1215/sitenav/internal/fetch"
	"github.com/nao1215/sitenav/internal/history"
	"github.com/nao1215/sitenav/internal/i18n"
	"github.com/nao1215/sitenav/internal/page"
	"github.com/nao1215/sitenav/internal/pipeline"
)

// Navigator is the navigation controller of one browsing session.
// It is safe for concurrent use.
type Navigator struct {
	fetcher fetch.Fetcher
	cache   *cache.Cache
	history *history.History
	logger  *slog.Logger
	printer *i18n.Printer

	contentSelector     string
	home                string
	swapDelay           time.Duration
	settleDelay         time.Duration
	siteName            string
	description         string
	hooks               []Hook
	initializers        map[string]Hook
	ignorePatterns      []string
	recorder            VisitRecorder
	prefetchConcurrency int
	sessionID           string

	fetches atomic.Int64

	// gen is the generation of the newest Load.
	gen atomic.Uint64

	// loadMu guards cancelPrev.
	loadMu     sync.Mutex
	cancelPrev context.CancelFunc

	// mu guards everything below and every access to doc.
	mu          sync.Mutex
	doc         *page.Document
	steps       *pipeline.Pipeline
	currentPage string
	faded       bool
	settleTimer *time.Timer
	closed      bool
}

// New creates a Navigator rendering into doc and fetching pages with fetcher.
func New(doc *page.Document, fetcher fetch.Fetcher, opts ...Option) *Navigator {
	n := &Navigator{
		doc:                 doc,
		fetcher:             fetcher,
		contentSelector:     DefaultContentSelector,
		home:                DefaultHomePage,
		swapDelay:           DefaultSwapDelay,
		settleDelay:         DefaultSettleDelay,
		siteName:            pipeline.DefaultTitle,
		initializers:        make(map[string]Hook),
		prefetchConcurrency: 4,
		currentPage:         DefaultHomePage,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	if n.cache == nil {
		n.cache = cache.New()
	}
	if n.history == nil {
		n.history = history.New()
	}
	if n.printer == nil {
		n.printer = i18n.Default()
	}
	if n.sessionID == "" {
		n.sessionID = uuid.NewString()
	}
	n.steps = n.buildSteps()
	return n
}

// buildSteps assembles the post-swap pipeline. Callers hold mu or own n
// exclusively.
func (n *Navigator) buildSteps() *pipeline.Pipeline {
	p := pipeline.New(
		pipeline.WithLogger(n.logger),
		pipeline.WithContinueOnError(true),
	)
	p.AddStep(pipeline.NewInitializerStep(n.initializers))
	p.AddSteps(n.hooks...)
	p.AddSteps(
		pipeline.NewMetadataStep(n.siteName, n.description),
		pipeline.NewScrollTopStep(),
		pipeline.NewActiveLinkStep(n.home),
	)
	return p
}

// AddHook registers a post-swap hook after construction, for collaborators
// that need the Navigator itself.
func (n *Navigator) AddHook(hook Hook) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.hooks = append(n.hooks, hook)
	n.steps = n.buildSteps()
}

// SetInitializer registers the initializer for a page identifier.
func (n *Navigator) SetInitializer(pageID string, hook Hook) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.initializers[pageID] = hook
	n.steps = n.buildSteps()
}

// StepNames returns the post-swap steps in execution order.
func (n *Navigator) StepNames() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.steps.StepNames()
}

// Start performs the initial Load of the page the visitor landed on: the last
// segment of the live page's location, or the home page. It is not animated
// and replaces the current history entry instead of pushing one.
func (n *Navigator) Start(ctx context.Context) *Result {
	n.mu.Lock()
	landing := landingPage(n.doc.Location(), n.home)
	n.mu.Unlock()

	n.history.Replace(history.State{Page: landing})
	return n.LoadPage(ctx, landing, false)
}

// Navigate goes to url: it pushes a history entry and performs an animated
// Load. Navigating to the current page does nothing and returns a Result with
// Skipped set. Load failures are reported in the Result, never as errors.
func (n *Navigator) Navigate(ctx context.Context, url string) *Result {
	n.mu.Lock()
	current := n.currentPage
	n.mu.Unlock()

	if url == current || NormalizeURL(url) == current {
		n.logger.Debug("already on page", "url", url)
		return &Result{URL: current, Skipped: true}
	}

	n.history.Push(history.State{Page: url})
	n.setLocation(url)
	return n.LoadPage(ctx, url, true)
}

// Click handles a click on a link. It returns false when the link is left to
// the browser (see Intercept).
func (n *Navigator) Click(ctx context.Context, href string) (*Result, bool) {
	if !n.Intercept(href) {
		return nil, false
	}
	return n.Navigate(ctx, href), true
}

// HandlePop replays a history entry: a Load without animation and without
// pushing history.
func (n *Navigator) HandlePop(ctx context.Context, state history.State) *Result {
	if state.Page == "" {
		return &Result{Skipped: true}
	}
	n.setLocation(state.Page)
	return n.LoadPage(ctx, state.Page, false)
}

// Back moves one entry back in history and replays it.
func (n *Navigator) Back(ctx context.Context) (*Result, error) {
	state, err := n.history.Back()
	if err != nil {
		return nil, err
	}
	return n.HandlePop(ctx, state), nil
}

// Forward moves one entry forward in history and replays it.
func (n *Navigator) Forward(ctx context.Context) (*Result, error) {
	state, err := n.history.Forward()
	if err != nil {
		return nil, err
	}
	return n.HandlePop(ctx, state), nil
}

// Retry reloads the page named on the error placeholder, with animation.
func (n *Navigator) Retry(ctx context.Context) (*Result, error) {
	n.mu.Lock()
	url, ok := n.doc.ByID(retryButtonID).Attr("data-url")
	n.mu.Unlock()
	if !ok || url == "" {
		return nil, ErrNoRetry
	}
	return n.LoadPage(ctx, url, true), nil
}

// Do calls fn with exclusive access to the live page.
func (n *Navigator) Do(fn func(doc *page.Document) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return fn(n.doc)
}

// CurrentPage returns the URL of the rendered fragment.
func (n *Navigator) CurrentPage() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.currentPage
}

// History returns the session history.
func (n *Navigator) History() *history.History {
	return n.history
}

// Cache returns the fragment cache.
func (n *Navigator) Cache() *cache.Cache {
	return n.cache
}

// SessionID returns the session identifier.
func (n *Navigator) SessionID() string {
	return n.sessionID
}

// ContentSelector returns the selector of the main content region.
func (n *Navigator) ContentSelector() string {
	return n.contentSelector
}

// HomePage returns the home document.
func (n *Navigator) HomePage() string {
	return n.home
}

// Fetches returns how many fetches the navigator has issued.
func (n *Navigator) Fetches() int {
	return int(n.fetches.Load())
}

// Close cancels the in-flight Load and stops pending transitions.
func (n *Navigator) Close() {
	n.loadMu.Lock()
	if n.cancelPrev != nil {
		n.cancelPrev()
		n.cancelPrev = nil
	}
	n.loadMu.Unlock()

	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	if n.settleTimer != nil {
		n.settleTimer.Stop()
		n.settleTimer = nil
	}
}

func (n *Navigator) setLocation(url string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.doc.SetLocation(url)
}
