package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/sitenav/internal/page"
)

const stepsLayout = `<!DOCTYPE html><html><head><title>Old</title></head><body>
<nav><a href="index.html">Home</a><a href="about.html" class="active">About</a><a href="contact.html">Contact</a></nav>
<div class="nav-links"><a href="#home">Top</a><a href="#features">Features</a></div>
<main></main></body></html>`

func newStepsSwap(t *testing.T, url, fragment string) *Swap {
	t.Helper()
	doc, err := page.ParseString(stepsLayout,
		page.WithOrigin("https://mediasyncbot.example"),
		page.WithLocation(url))
	if err != nil {
		t.Fatalf("failed to parse layout: %v", err)
	}
	if err := doc.ReplaceMain("main", fragment); err != nil {
		t.Fatalf("failed to fill main: %v", err)
	}
	return NewSwap(url, doc, "main")
}

func TestInitializerStep(t *testing.T) {
	t.Parallel()

	var ran []string
	step := NewInitializerStep(map[string]Step{
		"cookies": Func("cookies", func(context.Context, *Swap) error { ran = append(ran, "cookies"); return nil }),
		"terms":   Func("terms", func(context.Context, *Swap) error { return errors.New("boom") }),
	})

	if err := step.Do(t.Context(), newStepsSwap(t, "cookies.html", "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := step.Do(t.Context(), newStepsSwap(t, "my-cookies-guide.html", "")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ran) != 1 {
		t.Errorf("expected initializer to run only for the exact page id, ran %v", ran)
	}

	err := step.Do(t.Context(), newStepsSwap(t, "terms.html", ""))
	var stepErr StepError
	if !errors.As(err, &stepErr) || stepErr.Step != "terms" {
		t.Errorf("expected StepError from terms, got %v", err)
	}
}

func TestMetadataStep(t *testing.T) {
	t.Parallel()

	t.Run("uses heading and subtitle", func(t *testing.T) {
		t.Parallel()

		swap := newStepsSwap(t, "about.html", `<h1>About us</h1><p class="page-subtitle">Who we are</p>`)
		if err := NewMetadataStep("Media Sync Bot", "default").Do(t.Context(), swap); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		doc := swap.Doc
		if doc.Title() != "About us - Media Sync Bot" {
			t.Errorf("unexpected title %q", doc.Title())
		}
		if doc.Canonical() != "https://mediasyncbot.example/about.html" {
			t.Errorf("unexpected canonical %q", doc.Canonical())
		}
		checks := map[string]string{
			"og:title":            "About us",
			"og:description":      "Who we are",
			"og:url":              "https://mediasyncbot.example/about.html",
			"og:type":             "website",
			"og:site_name":        "Media Sync Bot",
			"twitter:card":        "summary",
			"twitter:title":       "About us",
			"twitter:description": "Who we are",
		}
		for key, want := range checks {
			if got := doc.Meta(key); got != want {
				t.Errorf("%s = %q, want %q", key, got, want)
			}
		}
	})

	t.Run("falls back to section header and defaults", func(t *testing.T) {
		t.Parallel()

		swap := newStepsSwap(t, "pricing.html", `<div class="section-header"><p>Plans</p></div>`)
		if err := NewMetadataStep("Media Sync Bot", "default").Do(t.Context(), swap); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if swap.Doc.Title() != "Media Sync Bot" {
			t.Errorf("expected site name as title, got %q", swap.Doc.Title())
		}
		if swap.Doc.Meta("og:description") != "Plans" {
			t.Errorf("expected section header description, got %q", swap.Doc.Meta("og:description"))
		}

		swap = newStepsSwap(t, "x.html", `<p>plain</p>`)
		if err := NewMetadataStep("Media Sync Bot", "default").Do(t.Context(), swap); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if swap.Doc.Meta("description") != "" || swap.Doc.Meta("og:description") != "default" {
			t.Errorf("expected default description, got %q", swap.Doc.Meta("og:description"))
		}
	})

	t.Run("title already containing site name", func(t *testing.T) {
		t.Parallel()

		swap := newStepsSwap(t, "index.html", `<h1>Media Sync Bot</h1>`)
		if err := NewMetadataStep("Media Sync Bot", "d").Do(t.Context(), swap); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if swap.Doc.Title() != "Media Sync Bot" {
			t.Errorf("expected title without suffix, got %q", swap.Doc.Title())
		}
	})
}

func TestScrollTopStep(t *testing.T) {
	t.Parallel()

	swap := newStepsSwap(t, "about.html", "")
	swap.Doc.ScrollTo(800)
	if err := NewScrollTopStep().Do(t.Context(), swap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if swap.Doc.ScrollY() != 0 {
		t.Errorf("expected scroll reset, got %d", swap.Doc.ScrollY())
	}
}

func TestActiveLinkStep(t *testing.T) {
	t.Parallel()

	activeHrefs := func(swap *Swap) []string {
		var hrefs []string
		swap.Doc.Find(NavLinkSelector).Each(func(_ int, s *goquery.Selection) {
			if s.HasClass("active") {
				hrefs = append(hrefs, s.AttrOr("href", ""))
			}
		})
		return hrefs
	}

	t.Run("marks exactly the matching link", func(t *testing.T) {
		t.Parallel()

		swap := newStepsSwap(t, "contact.html", "")
		if err := NewActiveLinkStep("").Do(t.Context(), swap); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := activeHrefs(swap)
		if len(got) != 1 || got[0] != "contact.html" {
			t.Errorf("expected only contact.html active, got %v", got)
		}
	})

	t.Run("index activates the home anchor", func(t *testing.T) {
		t.Parallel()

		swap := newStepsSwap(t, "index.html", "")
		if err := NewActiveLinkStep("").Do(t.Context(), swap); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := activeHrefs(swap)
		if len(got) != 2 || got[0] != "index.html" || got[1] != "#home" {
			t.Errorf("expected index.html and #home active, got %v", got)
		}
	})

	t.Run("configured home page activates the home anchor", func(t *testing.T) {
		t.Parallel()

		swap := newStepsSwap(t, "start.html", "")
		if err := NewActiveLinkStep("start.html").Do(t.Context(), swap); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := activeHrefs(swap)
		if len(got) != 1 || got[0] != "#home" {
			t.Errorf("expected #home active, got %v", got)
		}
	})

	t.Run("index is not home when another home page is configured", func(t *testing.T) {
		t.Parallel()

		swap := newStepsSwap(t, "index.html", "")
		if err := NewActiveLinkStep("start.html").Do(t.Context(), swap); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := activeHrefs(swap)
		if len(got) != 1 || got[0] != "index.html" {
			t.Errorf("expected only index.html active, got %v", got)
		}
	})
}

func TestIsActiveLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		href, url, home string
		want            bool
	}{
		{"about.html", "about.html", "index.html", true},
		{"about", "about.html", "index.html", true},
		{"#about", "about.html", "index.html", true},
		{"#home", "index.html", "index.html", true},
		{"#home", "about.html", "index.html", false},
		{"pricing.html", "about.html", "index.html", false},
		{"docs/guide.html", "docs/guide.html", "index.html", true},
		{"#home", "start.html", "start.html", true},
		{"#home", "start", "start.html", true},
		{"#home", "index.html", "start.html", false},
	}
	for _, tt := range tests {
		if got := IsActiveLink(tt.href, tt.url, tt.home); got != tt.want {
			t.Errorf("IsActiveLink(%q, %q, %q) = %v, want %v", tt.href, tt.url, tt.home, got, tt.want)
		}
	}
}
