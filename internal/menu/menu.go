// Package menu implements the site navigation bar: the mobile menu toggle,
// scroll-dependent classes, anchor scrolling and the highlight of the link
// designating the landing page.
package menu

import (
	"context"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/sitenav/internal/navigator"
	"github.com/nao1215/sitenav/internal/page"
	"github.com/nao1215/sitenav/internal/pipeline"
)

// Layout thresholds in CSS pixels.
const (
	MobileBreakpoint   = 768
	ScrolledThreshold  = 50
	ScrollTopThreshold = 300
)

// Element selectors of the navigation bar.
const (
	NavbarID       = "navbar"
	ToggleID       = "nav-toggle"
	ScrollTopID    = "scroll-top"
	LinksSelector  = ".nav-links"
	LinkSelector   = ".nav-links a"
	HookName       = "menu"
	classActive    = "active"
	classScrolled  = "scrolled"
	classVisible   = "visible"
	anchorFragment = ".html#"
)

// Manager drives the navigation bar of a page. It keeps no state of its own;
// everything lives in the document, so one Manager serves any number of
// pages.
type Manager struct {
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New creates a Manager.
func New(opts ...Option) *Manager {
	m := &Manager{logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init applies the initial scroll classes and link highlight, as on the
// first paint of a page.
func (m *Manager) Init(doc *page.Document) {
	m.HandleScroll(doc)
	m.SetActiveNavLink(doc)
}

// Hook returns the post-swap hook refreshing the navigation bar. Every swap
// ends scrolled to the top, so the scroll classes are computed for y=0.
func (m *Manager) Hook() navigator.Hook {
	return navigator.HookFunc(HookName, func(_ context.Context, swap *pipeline.Swap) error {
		m.Close(swap.Doc)
		m.Scroll(swap.Doc, 0)
		m.SetActiveNavLink(swap.Doc)
		return nil
	})
}

// Toggle opens or closes the mobile menu and reports whether it is open
// afterwards. It is a no-op returning false when the page has no toggle
// button or link list.
func (m *Manager) Toggle(doc *page.Document) bool {
	links := doc.Find(LinksSelector).First()
	if doc.ByID(ToggleID).Length() == 0 || links.Length() == 0 {
		return false
	}
	links.ToggleClass(classActive)
	return links.HasClass(classActive)
}

// IsOpen reports whether the mobile menu is open.
func (m *Manager) IsOpen(doc *page.Document) bool {
	return doc.Find(LinksSelector).First().HasClass(classActive)
}

// Close closes the mobile menu.
func (m *Manager) Close(doc *page.Document) {
	doc.Find(LinksSelector).RemoveClass(classActive)
}

// LinkClicked reacts to a click inside the link list: the menu closes on
// mobile viewports.
func (m *Manager) LinkClicked(doc *page.Document) {
	if doc.ViewportWidth() <= MobileBreakpoint {
		m.Close(doc)
	}
}

// HandleScroll updates the classes that depend on the scroll position.
func (m *Manager) HandleScroll(doc *page.Document) {
	y := doc.ScrollY()
	setClass(doc.ByID(NavbarID), classScrolled, y > ScrolledThreshold)
	setClass(doc.ByID(ScrollTopID), classVisible, y > ScrollTopThreshold)
}

// Scroll moves the page to y and updates the scroll classes.
func (m *Manager) Scroll(doc *page.Document, y int) {
	doc.ScrollTo(y)
	m.HandleScroll(doc)
}

// ScrollToTop handles a click on the scroll-to-top button.
func (m *Manager) ScrollToTop(doc *page.Document) {
	m.Scroll(doc, 0)
}

// ScrollToAnchor handles a click on an in-page anchor link. The target is
// scrolled to just below the navigation bar. It reports whether the click
// was handled: "#" alone, links to an anchor on another page and anchors
// without a target are not.
func (m *Manager) ScrollToAnchor(doc *page.Document, href string) bool {
	if href == "#" || !strings.HasPrefix(href, "#") || strings.Contains(href, anchorFragment) {
		return false
	}
	target := doc.ByID(strings.TrimPrefix(href, "#"))
	if target.Length() == 0 {
		m.logger.Debug("anchor target not found", "href", href)
		return false
	}
	m.Scroll(doc, page.OffsetTop(target)-page.Height(doc.ByID(NavbarID)))
	return true
}

// AnchorTargets returns the in-page anchor hrefs of the page whose target
// element is missing.
func (m *Manager) AnchorTargets(doc *page.Document) (missing []string) {
	doc.Find(`a[href^="#"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "#" {
			return
		}
		if doc.ByID(strings.TrimPrefix(href, "#")).Length() == 0 {
			missing = append(missing, href)
		}
	})
	return missing
}

// SetActiveNavLink highlights the link designating the current location:
// an href equal to the last path segment, "index.html" when that segment
// is empty, or an anchor href equal to the location hash.
func (m *Manager) SetActiveNavLink(doc *page.Document) {
	current, hash := splitLocation(doc.Location())

	doc.Find(LinkSelector).Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		link.RemoveClass(classActive)
		if href == current ||
			(current == "" && href == "index.html") ||
			(strings.Contains(href, "#") && hash == href) {
			link.AddClass(classActive)
		}
	})
}

// splitLocation returns the last path segment and the "#fragment" of a
// location.
func splitLocation(location string) (segment, hash string) {
	if i := strings.Index(location, "#"); i >= 0 {
		location, hash = location[:i], location[i:]
	}
	if i := strings.Index(location, "?"); i >= 0 {
		location = location[:i]
	}
	if i := strings.LastIndex(location, "/"); i >= 0 {
		location = location[i+1:]
	}
	return location, hash
}

func setClass(sel *goquery.Selection, class string, on bool) {
	if on {
		sel.AddClass(class)
		return
	}
	sel.RemoveClass(class)
}
