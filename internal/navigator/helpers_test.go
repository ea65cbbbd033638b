package navigator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/nao1215/sitenav/internal/fetch"
	"github.com/nao1215/sitenav/internal/page"
)

const testLayout = `<!DOCTYPE html>
<html>
<head><title>Media Sync Bot</title></head>
<body>
<nav id="navbar" class="navbar" data-height="70">
  <div class="nav-links">
    <a href="index.html">Home</a>
    <a href="about.html">About</a>
    <a href="contact.html">Contact</a>
    <a href="#home">Top</a>
  </div>
</nav>
<main><p>landing</p></main>
</body>
</html>`

func testPage(body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><title>ignored</title><script src="app.js"></script></head>
<body><nav><a href="index.html">Home</a></nav><main>%s</main><footer>footer</footer></body></html>`, body)
}

func testSite() fstest.MapFS {
	return fstest.MapFS{
		"index.html": {Data: []byte(testPage(
			`<h1>Media Sync Bot</h1><p class="page-subtitle">Sync media</p>` +
				`<a href="about.html">About</a><a href="contact">Contact</a>` +
				`<a href="https://t.me/mediasyncbot">Telegram</a><a href="#features">Features</a>`))},
		"about.html": {Data: []byte(testPage(
			`<h1>About us</h1><p class="page-subtitle">Who we are</p>` +
				`<script>alert("x")</script><link rel="stylesheet" href="about.css">`))},
		"contact.html": {Data: []byte(testPage(`<h1>Contact</h1><div class="section-header"><p>Write to us</p></div>`))},
		"pricing.html": {Data: []byte(testPage(`<h1>Pricing</h1>`))},
		"cookies.html": {Data: []byte(testPage(`<h1>Cookies</h1>`))},
		"fast.html":    {Data: []byte(testPage(`<h1>Fast</h1>`))},
		"slow.html":    {Data: []byte(testPage(`<h1>Slow</h1>`))},
		"docs/guide.html": {Data: []byte(testPage(
			`<h1>Guide</h1><img src="images/x.png"><a href="images/x.png">rel</a>` +
				`<a href="/images/x.png">abs</a><a href="https://ext.com">ext</a>`))},
		"nomain.html": {Data: []byte(`<html><body><div>no main here</div></body></html>`)},
	}
}

// countingFetcher counts fetches per URL.
type countingFetcher struct {
	mu     sync.Mutex
	counts map[string]int
	next   fetch.Fetcher
}

func newCountingFetcher(next fetch.Fetcher) *countingFetcher {
	return &countingFetcher{counts: make(map[string]int), next: next}
}

func (f *countingFetcher) Fetch(ctx context.Context, url string) (*fetch.Response, error) {
	f.mu.Lock()
	f.counts[url]++
	f.mu.Unlock()
	return f.next.Fetch(ctx, url)
}

func (f *countingFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[url]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestNavigator(t *testing.T, fetcher fetch.Fetcher, opts ...Option) *Navigator {
	t.Helper()

	doc, err := page.ParseString(testLayout,
		page.WithOrigin("https://mediasync.example"),
		page.WithLocation("/index.html"),
	)
	if err != nil {
		t.Fatalf("parse layout: %v", err)
	}

	base := []Option{
		WithLogger(discardLogger()),
		WithSwapDelay(0),
		WithSettleDelay(0),
	}
	n := New(doc, fetcher, append(base, opts...)...)
	t.Cleanup(n.Close)
	return n
}

func mainHTML(t *testing.T, n *Navigator) string {
	t.Helper()
	var s string
	if err := n.Do(func(doc *page.Document) error {
		var err error
		s, err = doc.MainHTML(n.ContentSelector())
		return err
	}); err != nil {
		t.Fatalf("main html: %v", err)
	}
	return s
}

func mainText(t *testing.T, n *Navigator) string {
	t.Helper()
	var s string
	_ = n.Do(func(doc *page.Document) error {
		s = doc.Find(n.ContentSelector()).First().Text()
		return nil
	})
	return s
}

func activeLinks(t *testing.T, n *Navigator) []string {
	t.Helper()
	var hrefs []string
	_ = n.Do(func(doc *page.Document) error {
		doc.Find(".nav-links a.active").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			hrefs = append(hrefs, href)
		})
		return nil
	})
	return hrefs
}
