package navigator

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/sitenav/internal/cache"
	"github.com/nao1215/sitenav/internal/history"
	"github.com/nao1215/sitenav/internal/i18n"
	"github.com/nao1215/sitenav/internal/model"
	"github.com/nao1215/sitenav/internal/pipeline"
)

// Hook is a post-swap collaborator. Hooks run while the navigator holds the
// live page, so they must not call Navigate or other loading methods
// synchronously.
type Hook = pipeline.Step

// HookFunc returns a Hook named name that calls fn.
func HookFunc(name string, fn func(ctx context.Context, swap *pipeline.Swap) error) Hook {
	return pipeline.Func(name, fn)
}

// VisitRecorder stores the outcome of every Load.
type VisitRecorder interface {
	RecordVisit(ctx context.Context, v *model.Visit) error
}

// Default values of a Navigator.
const (
	DefaultContentSelector = "main"
	DefaultHomePage        = "index.html"
	DefaultSwapDelay       = 300 * time.Millisecond
	DefaultSettleDelay     = 500 * time.Millisecond
)

// Option configures a Navigator.
type Option func(*Navigator)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) {
		n.logger = logger
	}
}

// WithCache replaces the fragment cache, e.g. to share one between
// navigators touring the same site.
func WithCache(c *cache.Cache) Option {
	return func(n *Navigator) {
		n.cache = c
	}
}

// WithHistory replaces the session history.
func WithHistory(h *history.History) Option {
	return func(n *Navigator) {
		n.history = h
	}
}

// WithContentSelector sets the selector of the main content region.
func WithContentSelector(selector string) Option {
	return func(n *Navigator) {
		if selector != "" {
			n.contentSelector = selector
		}
	}
}

// WithHomePage sets the home document ("index.html").
func WithHomePage(home string) Option {
	return func(n *Navigator) {
		if home != "" {
			n.home = home
		}
	}
}

// WithSwapDelay sets how long the outgoing content stays faded out.
func WithSwapDelay(d time.Duration) Option {
	return func(n *Navigator) {
		if d >= 0 {
			n.swapDelay = d
		}
	}
}

// WithSettleDelay sets how long the fade-in transition stays applied.
func WithSettleDelay(d time.Duration) Option {
	return func(n *Navigator) {
		if d >= 0 {
			n.settleDelay = d
		}
	}
}

// WithSiteName sets the brand appended to titles.
func WithSiteName(name string) Option {
	return func(n *Navigator) {
		n.siteName = name
	}
}

// WithDescription sets the fallback page description.
func WithDescription(description string) Option {
	return func(n *Navigator) {
		n.description = description
	}
}

// WithPrinter sets the message printer for the error placeholder.
func WithPrinter(p *i18n.Printer) Option {
	return func(n *Navigator) {
		n.printer = p
	}
}

// WithHooks registers post-swap hooks, run in order after the page
// initializer.
func WithHooks(hooks ...Hook) Option {
	return func(n *Navigator) {
		n.hooks = append(n.hooks, hooks...)
	}
}

// WithInitializer registers the initializer for a page identifier (the file
// name without ".html", e.g. "cookies").
func WithInitializer(pageID string, hook Hook) Option {
	return func(n *Navigator) {
		n.initializers[pageID] = hook
	}
}

// WithIgnorePatterns sets link patterns that are never intercepted.
func WithIgnorePatterns(patterns []string) Option {
	return func(n *Navigator) {
		n.ignorePatterns = patterns
	}
}

// WithVisitRecorder sets where Load outcomes are stored.
func WithVisitRecorder(r VisitRecorder) Option {
	return func(n *Navigator) {
		n.recorder = r
	}
}

// WithPrefetchConcurrency sets how many fragments Prefetch fetches at once.
func WithPrefetchConcurrency(c int) Option {
	return func(n *Navigator) {
		if c > 0 {
			n.prefetchConcurrency = c
		}
	}
}

// WithSessionID sets the session identifier written into visit records.
func WithSessionID(id string) Option {
	return func(n *Navigator) {
		if id != "" {
			n.sessionID = id
		}
	}
}
