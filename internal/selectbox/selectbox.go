// Package selectbox implements the searchable single or multiple choice
// select used for the contact form subject.
package selectbox

import (
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"

	"github.com/nao1215/sitenav/internal/i18n"
)

// CustomPrefix starts the value of every option added with AddCustom.
const CustomPrefix = "custom_"

// Item is one option.
type Item struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
	Badge string `json:"badge,omitempty"`
}

// DefaultItems returns the contact subjects labelled in p's language.
func DefaultItems(p *i18n.Printer) []Item {
	return []Item{
		{Value: "support", Label: p.Sprintf(i18n.OptionSupport), Icon: "fas fa-tools"},
		{Value: "bug", Label: p.Sprintf(i18n.OptionBug), Icon: "fas fa-bug"},
		{Value: "feature", Label: p.Sprintf(i18n.OptionFeature), Icon: "fas fa-lightbulb"},
		{Value: "billing", Label: p.Sprintf(i18n.OptionBilling), Icon: "fas fa-credit-card"},
		{Value: "api", Label: p.Sprintf(i18n.OptionAPI), Icon: "fas fa-code"},
		{Value: "privacy", Label: p.Sprintf(i18n.OptionPrivacy), Icon: "fas fa-shield-alt"},
		{Value: "other", Label: p.Sprintf(i18n.OptionOther), Icon: "fas fa-question-circle"},
	}
}

// Select is the state of a select widget. It is safe for concurrent use.
type Select struct {
	mu sync.Mutex

	multiple    bool
	placeholder string
	printer     *i18n.Printer
	now         func() time.Time
	fold        cases.Caser

	items    []Item
	selected []string
	query    string
	open     bool

	listeners []func(values []string)
}

// Option configures a Select.
type Option func(*Select)

// WithMultiple allows several values to be selected.
func WithMultiple(multiple bool) Option {
	return func(s *Select) {
		s.multiple = multiple
	}
}

// WithItems replaces the default options.
func WithItems(items []Item) Option {
	return func(s *Select) {
		s.items = slices.Clone(items)
	}
}

// WithPlaceholder sets the text shown while nothing is selected.
func WithPlaceholder(placeholder string) Option {
	return func(s *Select) {
		s.placeholder = placeholder
	}
}

// WithPrinter sets the language of labels and placeholders.
func WithPrinter(p *i18n.Printer) Option {
	return func(s *Select) {
		s.printer = p
	}
}

// WithClock replaces time.Now, which names custom options.
func WithClock(now func() time.Time) Option {
	return func(s *Select) {
		s.now = now
	}
}

// New creates a Select with the default subjects unless WithItems is given.
func New(opts ...Option) *Select {
	s := &Select{
		now:  time.Now,
		fold: cases.Fold(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.printer == nil {
		s.printer = i18n.Default()
	}
	if s.items == nil {
		s.items = DefaultItems(s.printer)
	}
	if s.placeholder == "" {
		s.placeholder = s.printer.Sprintf(i18n.SelectPlaceholder)
	}
	return s
}

// Multiple reports whether several values may be selected.
func (s *Select) Multiple() bool {
	return s.multiple
}

// Placeholder returns the text shown while nothing is selected.
func (s *Select) Placeholder() string {
	return s.placeholder
}

// Printer returns the printer used for labels.
func (s *Select) Printer() *i18n.Printer {
	return s.printer
}

// Items returns every option.
func (s *Select) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// OnChange registers fn to be called with the selected values after every
// change.
func (s *Select) OnChange(fn func(values []string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Toggle selects value, or deselects it in multiple mode. Selecting in
// single mode replaces the selection and closes the dropdown. Unknown
// values are ignored; Toggle reports whether value was known.
func (s *Select) Toggle(value string) bool {
	s.mu.Lock()
	if s.indexOf(value) < 0 {
		s.mu.Unlock()
		return false
	}
	if s.multiple {
		if i := slices.Index(s.selected, value); i >= 0 {
			s.selected = slices.Delete(s.selected, i, i+1)
		} else {
			s.selected = append(s.selected, value)
		}
	} else {
		s.selected = []string{value}
		s.closeLocked()
	}
	s.notifyAndUnlock()
	return true
}

// Remove deselects value. It reports whether value was selected.
func (s *Select) Remove(value string) bool {
	s.mu.Lock()
	i := slices.Index(s.selected, value)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.selected = slices.Delete(s.selected, i, i+1)
	s.notifyAndUnlock()
	return true
}

// Clear deselects everything without notifying listeners.
func (s *Select) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// AddCustom adds an option labelled label and selects it. Blank labels are
// ignored. The new option's value is CustomPrefix plus the Unix time in
// milliseconds.
func (s *Select) AddCustom(label string) (Item, bool) {
	label = strings.TrimSpace(label)
	s.mu.Lock()
	s.closeLocked()
	if label == "" {
		s.mu.Unlock()
		return Item{}, false
	}
	item := Item{
		Value: CustomPrefix + strconv.FormatInt(s.now().UnixMilli(), 10),
		Label: label,
		Icon:  "fas fa-plus",
	}
	s.items = append(s.items, item)
	s.mu.Unlock()

	s.Toggle(item.Value)
	return item, true
}

// Values returns the selected values in selection order.
func (s *Select) Values() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selected)
}

// Labels returns the labels of the selected values; a value without an
// option stands for itself.
func (s *Select) Labels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.labelsLocked()
}

func (s *Select) labelsLocked() []string {
	labels := make([]string, 0, len(s.selected))
	for _, v := range s.selected {
		labels = append(labels, s.labelOf(v))
	}
	return labels
}

// HiddenValue is the value of the form's hidden input: the selected values
// joined by ",".
func (s *Select) HiddenValue() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.selected, ",")
}

// HeaderText is the text of the closed select. It is empty while nothing
// is selected. In multiple mode up to two labels are listed, more are
// summarized as "a, b (+n)".
func (s *Select) HeaderText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.selected) == 0 {
		return ""
	}
	if !s.multiple {
		return s.labelOf(s.selected[0])
	}
	labels := s.labelsLocked()
	if len(labels) <= 2 {
		return strings.Join(labels, ", ")
	}
	return labels[0] + ", " + labels[1] + " (+" + strconv.Itoa(len(labels)-2) + ")"
}

// Filter sets the search query.
func (s *Select) Filter(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = query
}

// Query returns the search query.
func (s *Select) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Visible returns the options matching the query, case-insensitively on
// label or value.
func (s *Select) Visible() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query == "" {
		return slices.Clone(s.items)
	}
	q := s.fold.String(s.query)
	var out []Item
	for _, it := range s.items {
		if strings.Contains(s.fold.String(it.Label), q) || strings.Contains(s.fold.String(it.Value), q) {
			out = append(out, it)
		}
	}
	return out
}

// Selected reports whether value is selected.
func (s *Select) Selected(value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.selected, value)
}

// Open shows the dropdown.
func (s *Select) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
}

// Close hides the dropdown and clears the search query.
func (s *Select) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// ToggleOpen opens a closed dropdown and closes an open one.
func (s *Select) ToggleOpen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		s.closeLocked()
		return
	}
	s.open = true
}

// IsOpen reports whether the dropdown is shown.
func (s *Select) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

func (s *Select) closeLocked() {
	s.open = false
	s.query = ""
}

func (s *Select) indexOf(value string) int {
	return slices.IndexFunc(s.items, func(it Item) bool { return it.Value == value })
}

func (s *Select) labelOf(value string) string {
	if i := s.indexOf(value); i >= 0 {
		return s.items[i].Label
	}
	return value
}

// notifyAndUnlock releases mu, then calls the listeners with the selection.
func (s *Select) notifyAndUnlock() {
	values := slices.Clone(s.selected)
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(values)
	}
}
