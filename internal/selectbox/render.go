package selectbox

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/nao1215/sitenav/internal/i18n"
	"github.com/nao1215/sitenav/internal/navigator"
	"github.com/nao1215/sitenav/internal/page"
	"github.com/nao1215/sitenav/internal/pipeline"
)

// Element ids and classes of the select.
const (
	ContainerID   = "custom-select-container"
	HiddenInputID = "custom-subject"
	TagsID        = "selected-tags"
	HookName      = "custom-select"
)

// Render draws the state of s into the select on the page. It reports
// false when the page has no select container.
func (s *Select) Render(doc *page.Document) bool {
	container := doc.ByID(ContainerID)
	if container.Length() == 0 {
		return false
	}

	s.mu.Lock()
	open := s.open
	s.mu.Unlock()

	header := container.Find(".select-header").First()
	if header.Length() == 0 {
		container.PrependHtml(`<div class="select-header"><span class="select-placeholder"></span>` +
			`<i class="fas fa-chevron-down"></i></div>`)
		header = container.Find(".select-header").First()
	}
	placeholder := header.Find(".select-placeholder")
	if placeholder.Length() == 0 {
		header.PrependHtml(`<span class="select-placeholder"></span>`)
		placeholder = header.Find(".select-placeholder")
	}
	placeholder.SetText(s.placeholder)

	text := s.HeaderText()
	value := header.Find(".select-value")
	if text == "" {
		page.SetStyle(placeholder, "display", "block")
		page.SetStyle(value, "display", "none")
	} else {
		page.SetStyle(placeholder, "display", "none")
		if value.Length() == 0 {
			placeholder.AfterHtml(`<span class="select-value"></span>`)
			value = header.Find(".select-value")
		}
		value.SetText(text)
		page.SetStyle(value, "display", "flex")
	}

	dropdown := container.Find(".select-dropdown").First()
	if dropdown.Length() == 0 {
		container.AppendHtml(`<div class="select-dropdown"><div class="select-options"></div></div>`)
		dropdown = container.Find(".select-dropdown").First()
	}
	if open {
		dropdown.AddClass("show")
		header.AddClass("open")
	} else {
		dropdown.RemoveClass("show")
		header.RemoveClass("open")
	}
	page.SetValue(dropdown.Find(".select-search input"), s.Query())

	options := dropdown.Find(".select-options").First()
	if options.Length() == 0 {
		dropdown.AppendHtml(`<div class="select-options"></div>`)
		options = dropdown.Find(".select-options").First()
	}
	options.SetHtml(s.optionsHTML())

	page.SetValue(doc.ByID(HiddenInputID), s.HiddenValue())
	if s.multiple {
		doc.ByID(TagsID).SetHtml(s.tagsHTML())
	}
	return true
}

func (s *Select) optionsHTML() string {
	visible := s.Visible()
	if len(visible) == 0 {
		return fmt.Sprintf(`<div class="select-empty"><i class="fas fa-search"></i><p>%s</p></div>`,
			html.EscapeString(s.printer.Sprintf(i18n.NothingFound)))
	}

	var b strings.Builder
	for _, it := range visible {
		selected := s.Selected(it.Value)
		class := "select-option"
		if selected {
			class += " selected"
		}
		fmt.Fprintf(&b, `<div class="%s" data-value="%s"><div class="option-text">`,
			class, html.EscapeString(it.Value))
		if it.Icon != "" {
			fmt.Fprintf(&b, `<i class="%s option-icon"></i>`, html.EscapeString(it.Icon))
		}
		fmt.Fprintf(&b, `<span>%s</span>`, html.EscapeString(it.Label))
		if it.Badge != "" {
			fmt.Fprintf(&b, `<span class="option-badge">%s</span>`, html.EscapeString(it.Badge))
		}
		b.WriteString(`</div>`)
		if selected {
			b.WriteString(`<i class="fas fa-check"></i>`)
		}
		b.WriteString(`</div>`)
	}
	return b.String()
}

func (s *Select) tagsHTML() string {
	values := s.Values()
	labels := s.Labels()
	var b strings.Builder
	for i, v := range values {
		fmt.Fprintf(&b, `<div class="selected-tag">%s<button type="button" data-value="%s">`+
			`<i class="fas fa-times"></i></button></div>`,
			html.EscapeString(labels[i]), html.EscapeString(v))
	}
	return b.String()
}

// Controller is the part of the navigator the select needs.
type Controller interface {
	Do(fn func(doc *page.Document) error) error
}

// Widget binds a Select to the live page: every operation updates the
// state and redraws the select.
type Widget struct {
	*Select
	nav Controller
}

// NewWidget binds s to the page owned by nav.
func NewWidget(s *Select, nav Controller) *Widget {
	return &Widget{Select: s, nav: nav}
}

// Hook returns the post-swap hook drawing the select on pages that have
// one. A freshly swapped form starts with nothing selected.
func (w *Widget) Hook() navigator.Hook {
	return navigator.HookFunc(HookName, func(_ context.Context, swap *pipeline.Swap) error {
		if swap.Doc.ByID(ContainerID).Length() == 0 {
			return nil
		}
		w.Select.Clear()
		w.Select.Close()
		w.Select.Render(swap.Doc)
		return nil
	})
}

// Reset clears the selection on doc; it is meant to run while the page is
// already held, e.g. from the contact form's reset.
func (w *Widget) Reset(doc *page.Document) {
	w.Select.Clear()
	w.Select.Render(doc)
}

// Choose selects value, like clicking its option.
func (w *Widget) Choose(value string) (bool, error) {
	ok := w.Select.Toggle(value)
	return ok, w.redraw()
}

// Unselect removes value, like clicking the cross on its tag.
func (w *Widget) Unselect(value string) (bool, error) {
	ok := w.Select.Remove(value)
	return ok, w.redraw()
}

// Search filters the options, like typing in the search field.
func (w *Widget) Search(query string) error {
	w.Select.Filter(query)
	return w.redraw()
}

// ToggleDropdown opens or closes the dropdown, like clicking the header.
func (w *Widget) ToggleDropdown() error {
	w.Select.ToggleOpen()
	return w.redraw()
}

// Escape closes the dropdown.
func (w *Widget) Escape() error {
	w.Select.Close()
	return w.redraw()
}

// Custom adds and selects a custom subject.
func (w *Widget) Custom(label string) (Item, bool, error) {
	item, ok := w.Select.AddCustom(label)
	return item, ok, w.redraw()
}

func (w *Widget) redraw() error {
	return w.nav.Do(func(doc *page.Document) error {
		w.Select.Render(doc)
		return nil
	})
}
