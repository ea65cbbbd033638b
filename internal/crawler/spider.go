package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/sitenav/internal/model"
	"github.com/nao1215/sitenav/internal/navigator"
	"github.com/nao1215/sitenav/internal/page"
)

// Spider tours a site through a Navigator: it loads the landing page, then
// every page reachable through intercepted links, breadth first, exactly as
// a visitor clicking through the site would see them.
type Spider struct {
	nav    *navigator.Navigator
	parser *Parser
	logger *slog.Logger

	// maxDepth limits how many clicks away from the landing page to go.
	// 0 means only the landing page.
	maxDepth int

	// maxPages limits the total number of pages to load.
	maxPages int

	// delay is the time to wait between page loads.
	delay time.Duration

	// prefetch warms the cache with the links of every page before
	// visiting them.
	prefetch bool
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum number of clicks from the landing page.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		s.maxDepth = depth
	}
}

// WithMaxPages sets the maximum number of pages to load.
func WithMaxPages(maxPages int) SpiderOption {
	return func(s *Spider) {
		s.maxPages = maxPages
	}
}

// WithDelay sets the delay between page loads.
func WithDelay(d time.Duration) SpiderOption {
	return func(s *Spider) {
		s.delay = d
	}
}

// WithPrefetch enables or disables concurrent prefetching of page links.
func WithPrefetch(enabled bool) SpiderOption {
	return func(s *Spider) {
		s.prefetch = enabled
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// NewSpider creates a Spider driving nav. The navigator should be fresh:
// the tour starts with nav.Start.
func NewSpider(nav *navigator.Navigator, opts ...SpiderOption) *Spider {
	s := &Spider{
		nav:      nav,
		parser:   NewParser(nav.Intercept),
		maxDepth: 5,
		maxPages: 100,
		prefetch: true,
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// queueItem represents an item in the tour queue.
type queueItem struct {
	url   string
	depth int
}

// tourState is the bookkeeping of one Tour.
type tourState struct {
	report    *model.TourReport
	queued    map[string]bool
	referrers map[string][]string
	failed    map[string]bool
	queue     []queueItem
}

// Tour visits the site and reports what it found. site names the toured
// site in the report.
//
// A deadline on ctx stops the tour with TimedOut set and a nil error; any
// other cancellation returns the partial report and ctx.Err().
func (s *Spider) Tour(ctx context.Context, site string) (*model.TourReport, error) {
	st := &tourState{
		report:    model.NewTourReport(site, s.nav.HomePage()),
		queued:    make(map[string]bool),
		referrers: make(map[string][]string),
		failed:    make(map[string]bool),
	}
	st.report.SessionID = s.nav.SessionID()
	start := time.Now()

	defer func() {
		st.report.Duration = time.Since(start)
		st.report.CacheEntries = s.nav.Cache().Len()
		st.report.Fetches = s.nav.Fetches()
		s.addDuplicateTitles(st.report)
		st.report.SortFindings()
	}()

	res := s.nav.Start(ctx)
	if ctx.Err() != nil {
		return s.interrupted(st.report, ctx.Err())
	}
	st.report.Entry = res.URL
	st.queued[res.URL] = true
	if stop := s.visit(ctx, st, queueItem{url: res.URL}, res); stop {
		return st.report, nil
	}

	for len(st.queue) > 0 && len(st.report.Pages) < s.maxPages {
		if err := ctx.Err(); err != nil {
			return s.interrupted(st.report, err)
		}

		if s.delay > 0 {
			select {
			case <-ctx.Done():
				return s.interrupted(st.report, ctx.Err())
			case <-time.After(s.delay):
			}
		}

		item := st.queue[0]
		st.queue = st.queue[1:]

		res := s.nav.LoadPage(ctx, item.url, false)
		if ctx.Err() != nil {
			return s.interrupted(st.report, ctx.Err())
		}
		if stop := s.visit(ctx, st, item, res); stop {
			return st.report, nil
		}
	}

	return st.report, nil
}

// interrupted finishes a tour stopped by its context.
func (s *Spider) interrupted(report *model.TourReport, err error) (*model.TourReport, error) {
	if errors.Is(err, context.DeadlineExceeded) {
		report.TimedOut = true
		return report, nil
	}
	return report, err
}

// visit records the Load of item and queues the pages it links to.
// It returns true when the tour cannot continue.
func (s *Spider) visit(ctx context.Context, st *tourState, item queueItem, res *navigator.Result) bool {
	summary := model.PageSummary{
		URL:       res.URL,
		Status:    model.VisitOK,
		FromCache: res.FromCache,
		Depth:     item.depth,
		Elapsed:   res.Elapsed,
	}

	if res.Err != nil {
		summary.Status = model.VisitFailed
		summary.Error = res.Err.Error()
		st.report.AddPage(summary)
		return s.recordFailure(st, res)
	}
	if res.Superseded || res.Skipped {
		return false
	}

	summary.Title = res.Title
	summary.Description = res.Description
	if res.Swap != nil {
		for _, stepErr := range res.Swap.Errors {
			st.report.AddFinding(model.FindingStepFailed, "Post-navigation step failed", stepErr.Error(), res.URL)
		}
	}

	parsed, err := s.inspect(st.report, res.URL)
	if err != nil {
		s.logger.Warn("failed to inspect page", "url", res.URL, "error", err)
		st.report.AddPage(summary)
		return false
	}

	for _, link := range parsed.PageLinks {
		target := navigator.NormalizeURL(link)
		summary.Links = append(summary.Links, target)
		st.referrers[target] = append(st.referrers[target], res.URL)
		if st.failed[target] {
			st.report.AddFinding(model.FindingBrokenLink, "Link to a page that fails to load", target, res.URL)
		}
		if st.queued[target] || item.depth >= s.maxDepth {
			continue
		}
		st.queued[target] = true
		st.queue = append(st.queue, queueItem{url: target, depth: item.depth + 1})
	}
	st.report.AddPage(summary)

	if s.prefetch && item.depth < s.maxDepth {
		if _, err := s.nav.PrefetchLinks(ctx); err != nil {
			s.logger.Debug("prefetch interrupted", "url", res.URL, "error", err)
		}
	}

	s.logger.Debug("page visited",
		"url", res.URL,
		"depth", item.depth,
		"links", len(summary.Links),
		"from_cache", res.FromCache,
	)
	return false
}

// recordFailure turns a failed Load into findings. It returns true for
// failures no later Load can recover from.
func (s *Spider) recordFailure(st *tourState, res *navigator.Result) bool {
	st.failed[res.URL] = true

	var (
		fetchErr   *navigator.FetchError
		missingErr *navigator.ContentMissingError
		targetErr  *navigator.RenderTargetMissingError
	)

	switch {
	case errors.As(res.Err, &targetErr):
		st.report.AddFinding(model.FindingRenderTargetMissing, "Layout has no content region", targetErr.Selector, res.URL)
		st.report.Error = res.Err
		return true
	case errors.As(res.Err, &missingErr):
		st.report.AddFinding(model.FindingContentMissing, "Page has no content region", missingErr.Selector, res.URL)
	case errors.As(res.Err, &fetchErr):
		st.report.AddFinding(model.FindingFetchFailed, "Page could not be fetched", fetchDetail(fetchErr), res.URL)
	default:
		st.report.AddFinding(model.FindingFetchFailed, "Page could not be loaded", res.Err.Error(), res.URL)
	}

	for _, ref := range st.referrers[res.URL] {
		st.report.AddFinding(model.FindingBrokenLink, "Link to a page that fails to load", res.URL, ref)
	}
	return false
}

func fetchDetail(err *navigator.FetchError) string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return fmt.Sprintf("HTTP %d", err.Status)
}

// inspect parses the rendered fragment of url and records per-page
// findings.
func (s *Spider) inspect(report *model.TourReport, url string) (*ParseResult, error) {
	fragment, ok := s.nav.Cache().Get(url)
	if !ok {
		return nil, fmt.Errorf("%s: fragment not cached", url)
	}

	parsed, err := s.parser.Parse(fragment)
	if err != nil {
		return nil, err
	}

	if len(parsed.Headings) == 0 {
		report.AddFinding(model.FindingMissingHeading, "Page has no heading", "", url)
	}
	if parsed.Subtitle == "" {
		report.AddFinding(model.FindingMissingDescription, "Page has no description", "", url)
	}
	for _, link := range parsed.ExternalLinks {
		report.AddFinding(model.FindingExternalLink, "External link", link, url)
	}
	for _, link := range parsed.BrowserLinks {
		report.AddFinding(model.FindingBrowserLink, "Link handled by the browser", link, url)
	}
	for _, addr := range parsed.Emails {
		report.AddFinding(model.FindingEmailAddress, "E-mail address published", addr, url)
	}

	// Anchor targets may live in the layout around the content region.
	err = s.nav.Do(func(doc *page.Document) error {
		for _, id := range parsed.Anchors {
			if !parsed.IDs[id] && doc.ByID(id).Length() == 0 {
				report.AddFinding(model.FindingBrokenAnchor, "Anchor target missing", "#"+id, url)
			}
		}
		return nil
	})

	return parsed, err
}

// addDuplicateTitles reports titles shared by several rendered pages.
func (s *Spider) addDuplicateTitles(report *model.TourReport) {
	byTitle := make(map[string][]string)
	var order []string
	for _, p := range report.Pages {
		if p.Status != model.VisitOK || p.Title == "" {
			continue
		}
		if _, ok := byTitle[p.Title]; !ok {
			order = append(order, p.Title)
		}
		byTitle[p.Title] = append(byTitle[p.Title], p.URL)
	}
	for _, title := range order {
		urls := byTitle[title]
		if len(urls) < 2 {
			continue
		}
		for _, url := range urls {
			report.AddFinding(model.FindingDuplicateTitle, "Title shared with other pages", title, url)
		}
	}
}
