package navigator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/nao1215/sitenav/internal/fragment"
	"github.com/nao1215/sitenav/internal/i18n"
	"github.com/nao1215/sitenav/internal/model"
	"github.com/nao1215/sitenav/internal/page"
	"github.com/nao1215/sitenav/internal/pipeline"
)

// retryButtonID is the id of the retry button on the error placeholder.
const retryButtonID = "retry-load"

// Result describes the outcome of a Load.
type Result struct {
	// URL is the normalized page URL.
	URL string

	// FromCache is true when the fragment was already cached.
	FromCache bool

	// Skipped is true when nothing was loaded (navigation to the current
	// page, or an empty history state).
	Skipped bool

	// Superseded is true when a newer Load started before this one rendered.
	// A superseded Load changes nothing on the page.
	Superseded bool

	// Err is the failure of the Load. The error placeholder was rendered
	// unless the Load was superseded or its context was cancelled.
	Err error

	// Title and Description are the document title and description after
	// a successful swap.
	Title       string
	Description string

	// Swap holds the post-swap step outcomes of a successful swap.
	Swap *pipeline.Swap

	// Elapsed is how long the Load took.
	Elapsed time.Duration
}

// OK reports whether the Load rendered its page.
func (r *Result) OK() bool {
	return r.Err == nil && !r.Superseded && !r.Skipped
}

// LoadPage loads url into the main region: from the cache when possible,
// otherwise by fetching and extracting the page's main content. With animate
// the outgoing content fades out for the swap delay before the new fragment
// fades in. The loading indicator is shown for the whole Load.
func (n *Navigator) LoadPage(ctx context.Context, url string, animate bool) *Result {
	start := time.Now()
	url = NormalizeURL(url)
	res := &Result{URL: url}

	ctx, gen, cancel := n.begin(ctx)
	defer cancel()

	n.mu.Lock()
	release := n.doc.AttachLoader()
	n.mu.Unlock()
	defer func() {
		n.mu.Lock()
		release()
		n.mu.Unlock()
	}()

	fragmentHTML, fromCache, err := n.cache.Load(ctx, url, n.fill)
	res.FromCache = fromCache
	if err == nil {
		err = n.render(ctx, gen, res, fragmentHTML, animate)
	}
	if err != nil {
		n.fail(ctx, gen, res, err)
	}

	res.Elapsed = time.Since(start)
	n.record(ctx, res, animate)
	return res
}

// begin starts a new Load generation and cancels the previous Load.
func (n *Navigator) begin(ctx context.Context) (context.Context, uint64, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	n.loadMu.Lock()
	defer n.loadMu.Unlock()
	// Advance the generation first so the cancelled Load sees itself
	// superseded when it wakes up.
	gen := n.gen.Add(1)
	if n.cancelPrev != nil {
		n.cancelPrev()
	}
	n.cancelPrev = cancel
	return ctx, gen, cancel
}

func (n *Navigator) superseded(gen uint64) bool {
	return n.gen.Load() != gen
}

// fill fetches url and extracts its fragment. It is the cache's fill
// function.
func (n *Navigator) fill(ctx context.Context, url string) (string, error) {
	n.fetches.Add(1)
	n.logger.Debug("fetching page", "url", url)

	resp, err := n.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	if !resp.OK() {
		return "", &FetchError{URL: url, Status: resp.Status}
	}

	frag, err := fragment.Extract(bytes.NewReader(resp.Body), url, n.contentSelector)
	if err != nil {
		if errors.Is(err, fragment.ErrNoContent) {
			return "", &ContentMissingError{URL: url, Selector: n.contentSelector}
		}
		return "", fmt.Errorf("extract %s: %w", url, err)
	}
	return frag, nil
}

// render swaps fragmentHTML into the main region and runs the post-swap
// steps. A superseded Load returns nil with res.Superseded set.
func (n *Navigator) render(ctx context.Context, gen uint64, res *Result, fragmentHTML string, animate bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.superseded(gen) {
		res.Superseded = true
		return nil
	}

	main, err := n.doc.Main(n.contentSelector)
	if err != nil {
		return &RenderTargetMissingError{Selector: n.contentSelector}
	}

	if animate {
		page.SetStyle(main, "opacity", "0", "transform", "translateY(20px)")
		n.faded = true

		n.mu.Unlock()
		err := sleep(ctx, n.swapDelay)
		n.mu.Lock()

		if n.superseded(gen) {
			res.Superseded = true
			return nil
		}
		if err != nil {
			return err
		}
		// The page may have changed while unlocked.
		if main, err = n.doc.Main(n.contentSelector); err != nil {
			return &RenderTargetMissingError{Selector: n.contentSelector}
		}
	} else if n.faded {
		page.SetStyle(main, "opacity", "", "transform", "", "transition", "")
	}

	main.SetHtml(fragmentHTML)
	n.currentPage = res.URL
	n.faded = false

	if animate {
		page.SetStyle(main, "transition", "all 0.5s ease", "opacity", "1", "transform", "translateY(0)")
		n.scheduleSettle()
	}

	swap := pipeline.NewSwap(res.URL, n.doc, n.contentSelector)
	swap.FromCache = res.FromCache
	swap.Animated = animate
	// Steps already started must finish even if the caller gives up now.
	if err := n.steps.Execute(context.WithoutCancel(ctx), swap); err != nil {
		n.logger.Warn("post-swap steps stopped", "url", res.URL, "error", err)
	}

	res.Swap = swap
	res.Title = n.doc.Title()
	res.Description = n.doc.Meta("og:description")

	n.logger.Info("page loaded",
		"url", res.URL,
		"from_cache", res.FromCache,
		"animated", animate,
	)
	return nil
}

// scheduleSettle clears the fade-in transition after the settle delay.
// Callers hold mu.
func (n *Navigator) scheduleSettle() {
	if n.settleTimer != nil {
		n.settleTimer.Stop()
		n.settleTimer = nil
	}
	if n.settleDelay == 0 {
		n.clearTransition()
		return
	}
	n.settleTimer = time.AfterFunc(n.settleDelay, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.closed {
			return
		}
		n.clearTransition()
	})
}

func (n *Navigator) clearTransition() {
	if main, err := n.doc.Main(n.contentSelector); err == nil {
		page.SetStyle(main, "transition", "")
	}
}

// fail handles a failed Load: it renders the error placeholder unless the
// Load was superseded or cancelled by its caller.
func (n *Navigator) fail(ctx context.Context, gen uint64, res *Result, err error) {
	res.Err = err

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.superseded(gen) {
		res.Superseded = true
		n.logger.Debug("load superseded", "url", res.URL)
		return
	}

	main, mainErr := n.doc.Main(n.contentSelector)

	if ctx.Err() != nil {
		n.logger.Warn("load cancelled", "url", res.URL, "error", err)
		if mainErr == nil && n.faded {
			page.SetStyle(main, "opacity", "", "transform", "", "transition", "")
			n.faded = false
		}
		return
	}

	n.logger.Error("failed to load page", "url", res.URL, "error", err)

	if mainErr != nil {
		n.logger.Error("cannot show error page", "error", &RenderTargetMissingError{Selector: n.contentSelector})
		return
	}
	if n.faded {
		page.SetStyle(main, "opacity", "", "transform", "", "transition", "")
		n.faded = false
	}
	main.SetHtml(n.errorPlaceholder(res.URL))
}

// errorPlaceholder returns the markup shown when url fails to load.
func (n *Navigator) errorPlaceholder(url string) string {
	p := n.printer
	escaped := html.EscapeString(url)
	return fmt.Sprintf(`<div class="error-page">
    <div class="container">
        <div class="error-content">
            <div class="error-icon">
                <i class="fas fa-exclamation-triangle"></i>
            </div>
            <h2>%s</h2>
            <p>%s</p>
            <div class="error-actions">
                <button class="btn btn-primary" id="%s" data-url="%s">%s</button>
                <a href="%s" class="btn btn-secondary">%s</a>
            </div>
        </div>
    </div>
</div>`,
		html.EscapeString(p.Sprintf(i18n.LoadErrorTitle)),
		html.EscapeString(p.Sprintf(i18n.LoadErrorText, url)),
		retryButtonID, escaped,
		html.EscapeString(p.Sprintf(i18n.RetryLabel)),
		html.EscapeString(n.home),
		html.EscapeString(p.Sprintf(i18n.HomeLabel)),
	)
}

// record passes the outcome of a Load to the visit recorder.
func (n *Navigator) record(ctx context.Context, res *Result, animate bool) {
	if n.recorder == nil {
		return
	}

	v := &model.Visit{
		SessionID:   n.sessionID,
		URL:         res.URL,
		Title:       res.Title,
		Description: res.Description,
		FromCache:   res.FromCache,
		Animated:    animate,
		Elapsed:     res.Elapsed,
		Timestamp:   time.Now(),
	}
	switch {
	case res.Superseded:
		v.Status = model.VisitSuperseded
	case res.Err != nil:
		v.Status = model.VisitFailed
		v.Error = res.Err.Error()
	default:
		v.Status = model.VisitOK
	}

	if err := n.recorder.RecordVisit(context.WithoutCancel(ctx), v); err != nil {
		n.logger.Warn("failed to record visit", "url", res.URL, "error", err)
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
