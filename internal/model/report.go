package model

import (
	"slices"
	"time"
)

// TourReport is the result of touring a site: every page reachable from the
// entry through intercepted links, loaded through the navigator.
type TourReport struct {
	// Site is the toured base URL or directory.
	Site string `json:"site"`

	// Entry is the page the tour started from.
	Entry string `json:"entry"`

	// SessionID identifies the navigator session that ran the tour.
	SessionID string `json:"session_id"`

	// DateToured is when the tour started.
	DateToured time.Time `json:"date_toured"`

	// Duration is how long the tour took.
	Duration time.Duration `json:"duration"`

	// Pages holds one summary per visited page, in visiting order.
	Pages []PageSummary `json:"pages"`

	// Findings holds everything the tour noticed.
	Findings []Finding `json:"findings,omitempty"`

	// CacheEntries is the number of fragments cached at the end of the tour.
	CacheEntries int `json:"cache_entries"`

	// Fetches is the number of network (or filesystem) fetches made.
	Fetches int `json:"fetches"`

	// TimedOut indicates the tour was stopped by its deadline.
	TimedOut bool `json:"timed_out"`

	// Error is set when the tour could not run to completion.
	Error error `json:"-"`
}

// PageSummary describes one toured page.
type PageSummary struct {
	URL         string        `json:"url"`
	Title       string        `json:"title,omitempty"`
	Description string        `json:"description,omitempty"`
	Status      VisitStatus   `json:"status"`
	Error       string        `json:"error,omitempty"`
	FromCache   bool          `json:"from_cache"`
	Links       []string      `json:"links,omitempty"`
	Depth       int           `json:"depth"`
	Elapsed     time.Duration `json:"elapsed"`
}

// NewTourReport creates an empty report for site.
func NewTourReport(site, entry string) *TourReport {
	return &TourReport{
		Site:       site,
		Entry:      entry,
		DateToured: time.Now(),
		Pages:      make([]PageSummary, 0),
	}
}

// AddPage appends a page summary.
func (r *TourReport) AddPage(p PageSummary) {
	r.Pages = append(r.Pages, p)
}

// AddFinding records a finding of the given type.
func (r *TourReport) AddFinding(findingType, title, value, location string) {
	info := GetFindingInfo(findingType)
	r.Findings = append(r.Findings, Finding{
		Type:           findingType,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          title,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
		Value:          value,
		Location:       location,
	})
}

// SortFindings orders findings by descending severity, then by location and
// value, so reports are stable across runs.
func (r *TourReport) SortFindings() {
	slices.SortStableFunc(r.Findings, func(a, b Finding) int {
		if a.Severity != b.Severity {
			return int(b.Severity) - int(a.Severity)
		}
		if a.Location != b.Location {
			if a.Location < b.Location {
				return -1
			}
			return 1
		}
		switch {
		case a.Value < b.Value:
			return -1
		case a.Value > b.Value:
			return 1
		}
		return 0
	})
}

// Page returns the summary for url.
func (r *TourReport) Page(url string) (PageSummary, bool) {
	for _, p := range r.Pages {
		if p.URL == url {
			return p, true
		}
	}
	return PageSummary{}, false
}

// FailedPages returns the summaries of pages that did not render.
func (r *TourReport) FailedPages() []PageSummary {
	var failed []PageSummary
	for _, p := range r.Pages {
		if p.Status != VisitOK {
			failed = append(failed, p)
		}
	}
	return failed
}
