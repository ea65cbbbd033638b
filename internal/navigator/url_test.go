package navigator

import (
	"testing"

	"github.com/nao1215/sitenav/internal/fetch"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"about", "about.html"},
		{"about.html", "about.html"},
		{"docs/guide", "docs/guide.html"},
		{"image.png", "image.png"},
		{"", ".html"},
	}
	for _, tt := range tests {
		if got := NormalizeURL(tt.in); got != tt.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLandingPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		location, want string
	}{
		{"/index.html", "index.html"},
		{"/docs/guide.html", "guide.html"},
		{"/", "index.html"},
		{"", "index.html"},
		{"/pricing.html#plans", "pricing.html"},
	}
	for _, tt := range tests {
		if got := landingPage(tt.location, "index.html"); got != tt.want {
			t.Errorf("landingPage(%q) = %q, want %q", tt.location, got, tt.want)
		}
	}
}

func TestIntercept(t *testing.T) {
	t.Parallel()

	n := newTestNavigator(t, fetch.NewDirFetcher(testSite()),
		WithIgnorePatterns([]string{"downloads/*", "legacy.html"}),
	)

	tests := []struct {
		href string
		want bool
	}{
		{"about.html", true},
		{"about", true},
		{"docs/guide.html", true},
		{"", false},
		{"https://t.me/mediasyncbot", false},
		{"http://example.com/page.html", false},
		{"mailto:roma.sharper@yandex.ru", false},
		{"tel:+70000000000", false},
		{"#features", false},
		{"javascript:void(0)", false},
		{"files/manual.pdf", false},
		{"about.html#team", false},
		{"downloads/setup", false},
		{"legacy.html", false},
	}
	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			t.Parallel()
			if got := n.Intercept(tt.href); got != tt.want {
				t.Errorf("Intercept(%q) = %v, want %v", tt.href, got, tt.want)
			}
		})
	}
}

func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern, path string
		want          bool
	}{
		{"/admin/*", "/admin/users", true},
		{"/admin/*", "/admin", true},
		{"/admin/*", "/administrator", false},
		{"*.pdf", "docs/file.pdf", true},
		{"*.pdf", "docs/file.html", false},
		{"draft-*", "pages/draft-1.html", true},
		{"legacy.html", "legacy.html", true},
		{"[", "anything", false},
	}
	for _, tt := range tests {
		if got := matchPattern(tt.pattern, tt.path); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}
