package pipeline

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Names of the built-in steps.
const (
	StepPageInit   = "page-init"
	StepMetadata   = "metadata"
	StepScrollTop  = "scroll-top"
	StepActiveLink = "active-link"
)

// DefaultTitle is the title used when the new content has no heading.
const DefaultTitle = "Media Sync Bot"

// InitializerStep runs the page-specific initializer registered for the
// swapped page's identifier, if any.
type InitializerStep struct {
	initializers map[string]Step
}

// NewInitializerStep creates a step dispatching on Swap.PageID.
func NewInitializerStep(initializers map[string]Step) *InitializerStep {
	m := make(map[string]Step, len(initializers))
	for id, step := range initializers {
		m[id] = step
	}
	return &InitializerStep{initializers: m}
}

// Do runs the initializer for swap.PageID.
func (s *InitializerStep) Do(ctx context.Context, swap *Swap) error {
	step, ok := s.initializers[swap.PageID]
	if !ok {
		return nil
	}
	if err := step.Do(ctx, swap); err != nil {
		return StepError{Step: step.Name(), Err: err}
	}
	return nil
}

// Name returns the step name.
func (s *InitializerStep) Name() string {
	return StepPageInit
}

// MetadataStep rewrites the title, canonical link and Open Graph / Twitter
// tags from the swapped content.
type MetadataStep struct {
	siteName    string
	description string
}

// NewMetadataStep creates a metadata step. siteName is appended to titles
// and published as og:site_name; description is the fallback description.
func NewMetadataStep(siteName, description string) *MetadataStep {
	if siteName == "" {
		siteName = DefaultTitle
	}
	return &MetadataStep{siteName: siteName, description: description}
}

// Do updates the head of swap.Doc.
func (s *MetadataStep) Do(_ context.Context, swap *Swap) error {
	doc := swap.Doc
	main := swap.ContentSelector

	title := firstText(swap, main+" h1")
	if title == "" {
		title = s.siteName
	}
	if strings.Contains(title, s.siteName) {
		doc.SetTitle(title)
	} else {
		doc.SetTitle(title + " - " + s.siteName)
	}

	doc.SetCanonical(doc.Origin() + "/" + strings.TrimPrefix(swap.URL, "/"))

	description := firstText(swap, main+" .page-subtitle")
	if description == "" {
		description = firstText(swap, main+" .section-header p")
	}
	if description == "" {
		description = s.description
	}

	tags := []struct{ key, content string }{
		{"og:title", title},
		{"og:description", description},
		{"og:url", doc.Href()},
		{"og:type", "website"},
		{"og:site_name", s.siteName},
		{"twitter:card", "summary"},
		{"twitter:title", title},
		{"twitter:description", description},
	}
	for _, tag := range tags {
		doc.SetMeta(tag.key, tag.content)
	}
	return nil
}

// Name returns the step name.
func (s *MetadataStep) Name() string {
	return StepMetadata
}

func firstText(swap *Swap, selector string) string {
	return strings.TrimSpace(swap.Doc.Find(selector).First().Text())
}

// ScrollTopStep resets the scroll position to the top of the page.
type ScrollTopStep struct{}

// NewScrollTopStep creates a scroll reset step.
func NewScrollTopStep() *ScrollTopStep {
	return &ScrollTopStep{}
}

// Do scrolls swap.Doc to the top.
func (s *ScrollTopStep) Do(_ context.Context, swap *Swap) error {
	swap.Doc.ScrollTo(0)
	return nil
}

// Name returns the step name.
func (s *ScrollTopStep) Name() string {
	return StepScrollTop
}

// ActiveLinkStep marks the navigation links pointing at the swapped page.
type ActiveLinkStep struct {
	home string
}

// DefaultHomePage is the page the home anchor designates when no other
// home page is configured.
const DefaultHomePage = "index.html"

// NewActiveLinkStep creates an active-link step. home is the site's home
// page, designated by the "#home" anchor; empty means DefaultHomePage.
func NewActiveLinkStep(home string) *ActiveLinkStep {
	if home == "" {
		home = DefaultHomePage
	}
	return &ActiveLinkStep{home: home}
}

// NavLinkSelector selects the links considered by the active-link update.
const NavLinkSelector = "nav a, .nav-links a"

// Do updates the "active" class of every navigation link.
func (s *ActiveLinkStep) Do(_ context.Context, swap *Swap) error {
	UpdateActiveLinks(swap.Doc.Find(NavLinkSelector), swap.URL, s.home)
	return nil
}

// Name returns the step name.
func (s *ActiveLinkStep) Name() string {
	return StepActiveLink
}

// UpdateActiveLinks adds the "active" class to every link in links whose
// href matches url and removes it from all others. Links without an href
// are left untouched.
func UpdateActiveLinks(links *goquery.Selection, url, home string) {
	links.Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		link.RemoveClass("active")
		if IsActiveLink(href, url, home) {
			link.AddClass("active")
		}
	})
}

// IsActiveLink reports whether a navigation link with the given href
// designates url. Both sides lose their ".html" suffix and the link loses
// a leading "#" before comparing; the home anchor "#home" designates the
// home page, and an href equal to url always matches.
func IsActiveLink(href, url, home string) bool {
	pageName := strings.Replace(url, ".html", "", 1)
	linkPage := strings.TrimPrefix(strings.Replace(href, ".html", "", 1), "#")

	return linkPage == pageName ||
		(href == "#home" && pageName == strings.Replace(home, ".html", "", 1)) ||
		href == url
}
