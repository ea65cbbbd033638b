package selectbox

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/sitenav/internal/page"
	"github.com/nao1215/sitenav/internal/pipeline"
)

const selectPage = `<html><body><main><form id="contact-form">
<div class="custom-select" id="custom-select-container">
  <div class="select-header"><span class="select-placeholder">Выберите тему сообщения</span><i class="fas fa-chevron-down"></i></div>
  <div class="select-dropdown">
    <div class="select-search"><input type="text"></div>
    <div class="select-options"></div>
    <button class="select-custom-btn"></button>
  </div>
</div>
<div id="selected-tags"></div>
<input type="hidden" id="custom-subject">
</form></main></body></html>`

type pageOwner struct {
	mu  sync.Mutex
	doc *page.Document
}

func (o *pageOwner) Do(fn func(doc *page.Document) error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return fn(o.doc)
}

func newOwner(t *testing.T) *pageOwner {
	t.Helper()
	doc, err := page.ParseString(selectPage)
	if err != nil {
		t.Fatal(err)
	}
	return &pageOwner{doc: doc}
}

func optionValues(doc *page.Document) []string {
	var values []string
	doc.Find(".select-option").Each(func(_ int, o *goquery.Selection) {
		values = append(values, o.AttrOr("data-value", ""))
	})
	return values
}

func TestRender(t *testing.T) {
	t.Parallel()

	owner := newOwner(t)
	w := NewWidget(New(WithPlaceholder("Выберите тему сообщения")), owner)

	if err := w.Hook().Do(context.Background(), pipeline.NewSwap("contact.html", owner.doc, "main")); err != nil {
		t.Fatal(err)
	}
	doc := owner.doc
	if n := len(optionValues(doc)); n != 7 {
		t.Fatalf("%d options rendered, want 7", n)
	}
	if page.Style(doc.Find(".select-placeholder"), "display") != "block" {
		t.Error("placeholder hidden with nothing selected")
	}

	if err := w.ToggleDropdown(); err != nil {
		t.Fatal(err)
	}
	if !doc.Find(".select-dropdown").HasClass("show") || !doc.Find(".select-header").HasClass("open") {
		t.Error("dropdown not shown")
	}

	if _, err := w.Choose("billing"); err != nil {
		t.Fatal(err)
	}
	if got := page.Value(doc.ByID(HiddenInputID)); got != "billing" {
		t.Errorf("hidden input = %q", got)
	}
	if got := doc.Find(".select-value").Text(); got != "Вопросы по оплате" {
		t.Errorf("select-value = %q", got)
	}
	if page.Style(doc.Find(".select-placeholder"), "display") != "none" {
		t.Error("placeholder shown with a selection")
	}
	if doc.Find(".select-dropdown").HasClass("show") {
		t.Error("dropdown still shown after a single choice")
	}
	if diff := cmp.Diff([]string{"billing"}, doc.Find(".select-option.selected").Map(func(_ int, s *goquery.Selection) string {
		return s.AttrOr("data-value", "")
	})); diff != "" {
		t.Errorf("selected options mismatch (-want +got):\n%s", diff)
	}

	if err := w.Search("ZZZ"); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(doc.Find(".select-empty").Text()); got != "Ничего не найдено" {
		t.Errorf("empty placeholder = %q", got)
	}
	if page.Value(doc.Find(".select-search input")) != "ZZZ" {
		t.Error("search input not updated")
	}

	if err := w.Escape(); err != nil {
		t.Fatal(err)
	}
	if n := len(optionValues(doc)); n != 7 {
		t.Errorf("%d options after Escape, want 7", n)
	}
}

func TestRender_MultipleTags(t *testing.T) {
	t.Parallel()

	owner := newOwner(t)
	w := NewWidget(New(WithMultiple(true)), owner)
	for _, v := range []string{"bug", "api", "other"} {
		if _, err := w.Choose(v); err != nil {
			t.Fatal(err)
		}
	}
	doc := owner.doc
	if got := doc.Find(".select-value").Text(); got != "Сообщить об ошибке, API и интеграции (+1)" {
		t.Errorf("select-value = %q", got)
	}
	tags := doc.Find("#selected-tags button").Map(func(_ int, s *goquery.Selection) string {
		return s.AttrOr("data-value", "")
	})
	if diff := cmp.Diff([]string{"bug", "api", "other"}, tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	if _, err := w.Unselect("api"); err != nil {
		t.Fatal(err)
	}
	if got := page.Value(doc.ByID(HiddenInputID)); got != "bug,other" {
		t.Errorf("hidden input = %q", got)
	}

	w.Reset(doc)
	if page.Value(doc.ByID(HiddenInputID)) != "" || doc.Find("#selected-tags .selected-tag").Length() != 0 {
		t.Error("Reset() left a selection on the page")
	}
}

func TestRender_CustomOptionEscaped(t *testing.T) {
	t.Parallel()

	owner := newOwner(t)
	w := NewWidget(New(), owner)
	if _, ok, err := w.Custom(`<b>VIP</b>`); err != nil || !ok {
		t.Fatalf("Custom() = %v, %v", ok, err)
	}
	doc := owner.doc
	if doc.Find(".select-options b").Length() != 0 {
		t.Error("custom label rendered as markup")
	}
	if got := doc.Find(".select-value").Text(); got != "<b>VIP</b>" {
		t.Errorf("select-value = %q", got)
	}
}

func TestRender_NoContainer(t *testing.T) {
	t.Parallel()

	doc, err := page.ParseString(`<html><body><main></main></body></html>`)
	if err != nil {
		t.Fatal(err)
	}
	if New().Render(doc) {
		t.Error("Render() = true without a container")
	}
	if err := NewWidget(New(), &pageOwner{doc: doc}).Hook().Do(context.Background(), pipeline.NewSwap("index.html", doc, "main")); err != nil {
		t.Errorf("hook error = %v", err)
	}
}
