package consent

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/sitenav/internal/navigator"
	"github.com/nao1215/sitenav/internal/page"
	"github.com/nao1215/sitenav/internal/pipeline"
)

// fakeController owns a page and records navigations.
type fakeController struct {
	mu        sync.Mutex
	doc       *page.Document
	navigated []string
}

func (c *fakeController) Do(fn func(doc *page.Document) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.doc)
}

func (c *fakeController) Navigate(_ context.Context, url string) *navigator.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.navigated = append(c.navigated, url)
	return &navigator.Result{URL: url}
}

func newController(t *testing.T) *fakeController {
	t.Helper()
	doc, err := page.ParseString(`<html><body><main><p>home</p></main></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	return &fakeController{doc: doc}
}

func TestBanner_HookShowsWithoutConsent(t *testing.T) {
	t.Parallel()

	ctrl := newController(t)
	m := newTestManager(NewMemoryStore())
	b := NewBanner(m, ctrl)

	hook := b.Hook()
	if hook.Name() != BannerHookName {
		t.Errorf("Name() = %q, want %q", hook.Name(), BannerHookName)
	}
	swap := pipeline.NewSwap("index.html", ctrl.doc, "main")
	if err := hook.Do(context.Background(), swap); err != nil {
		t.Fatal(err)
	}
	if !BannerVisible(ctrl.doc) {
		t.Fatal("banner not shown without consent")
	}

	text := ctrl.doc.ByID(BannerID).Text()
	for _, want := range []string{"Мы используем файлы cookie", "Подробнее", "Понятно"} {
		if !strings.Contains(text, want) {
			t.Errorf("banner text missing %q", want)
		}
	}

	// A second swap must not duplicate the banner.
	if err := hook.Do(context.Background(), swap); err != nil {
		t.Fatal(err)
	}
	if n := ctrl.doc.ByID(BannerID).Length(); n != 1 {
		t.Errorf("%d banners, want 1", n)
	}
}

func TestBanner_Accept(t *testing.T) {
	t.Parallel()

	ctrl := newController(t)
	store := NewMemoryStore()
	m := newTestManager(store)
	b := NewBanner(m, ctrl)

	if err := b.Show(); err != nil {
		t.Fatal(err)
	}
	if err := b.Accept(context.Background()); err != nil {
		t.Fatal(err)
	}

	if BannerVisible(ctrl.doc) {
		t.Error("banner visible after Accept")
	}
	if !m.HasConsent() {
		t.Fatal("manager has no consent after banner Accept")
	}
	s := m.Settings()
	if !s.Analytics || !s.Functional || !s.Necessary {
		t.Errorf("Settings() = %+v, want every category", s)
	}

	// Later swaps keep the banner hidden.
	if err := b.Hook().Do(context.Background(), pipeline.NewSwap("about.html", ctrl.doc, "main")); err != nil {
		t.Fatal(err)
	}
	if BannerVisible(ctrl.doc) {
		t.Error("banner reappeared after consent")
	}
}

func TestBanner_LearnMore(t *testing.T) {
	t.Parallel()

	ctrl := newController(t)
	b := NewBanner(newTestManager(NewMemoryStore()), ctrl)
	if err := b.Show(); err != nil {
		t.Fatal(err)
	}

	res := b.LearnMore(context.Background())
	if res.URL != LearnMorePage {
		t.Errorf("LearnMore() navigated to %q, want %q", res.URL, LearnMorePage)
	}

	t.Run("banner already dismissed", func(t *testing.T) {
		t.Parallel()
		ctrl := newController(t)
		b := NewBanner(newTestManager(NewMemoryStore()), ctrl)
		if res := b.LearnMore(context.Background()); res.URL != LearnMorePage {
			t.Errorf("LearnMore() navigated to %q, want %q", res.URL, LearnMorePage)
		}
	})
}
