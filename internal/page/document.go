package page

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrMainMissing is returned when the live page has no element matching the
// content selector.
var ErrMainMissing = errors.New("no main element found")

// LoaderID is the id of the loading indicator element.
const LoaderID = "ajax-loader"

// loaderStyle is the inline style of the loading indicator bar.
const loaderStyle = "position: fixed; top: 0; left: 0; width: 100%; height: 3px; " +
	"background: var(--gradient-1); z-index: 9999; transform: translateX(-70%); " +
	"transition: transform 0.3s ease"

// DefaultViewportWidth is the viewport width of a new Document.
const DefaultViewportWidth = 1280

// Document is the live page.
type Document struct {
	doc *goquery.Document

	origin   string
	location string

	scrollY       int
	viewportWidth int

	loaders int
}

// Option configures a Document.
type Option func(*Document)

// WithOrigin sets the origin ("https://host") used for absolute URLs.
func WithOrigin(origin string) Option {
	return func(d *Document) {
		d.origin = strings.TrimSuffix(origin, "/")
	}
}

// WithLocation sets the page URL the document was loaded from.
func WithLocation(location string) Option {
	return func(d *Document) {
		d.location = location
	}
}

// WithViewportWidth sets the viewport width in CSS pixels.
func WithViewportWidth(width int) Option {
	return func(d *Document) {
		d.viewportWidth = width
	}
}

// Parse reads an HTML document as the live page.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	d := &Document{
		doc:           doc,
		origin:        "http://localhost",
		viewportWidth: DefaultViewportWidth,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// ParseString is Parse for a string.
func ParseString(s string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

// Find returns the elements matching selector.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// ByID returns the element with the given id. The selection is empty when
// no such element exists.
func (d *Document) ByID(id string) *goquery.Selection {
	return d.doc.Find("#" + id).First()
}

// HTML renders the whole document.
func (d *Document) HTML() (string, error) {
	return goquery.OuterHtml(d.doc.Selection)
}

// Main returns the first element matching selector, or ErrMainMissing.
func (d *Document) Main(selector string) (*goquery.Selection, error) {
	main := d.doc.Find(selector).First()
	if main.Length() == 0 {
		return nil, ErrMainMissing
	}
	return main, nil
}

// MainHTML returns the inner markup of the main region.
func (d *Document) MainHTML(selector string) (string, error) {
	main, err := d.Main(selector)
	if err != nil {
		return "", err
	}
	return main.Html()
}

// ReplaceMain replaces the inner markup of the main region with fragment.
func (d *Document) ReplaceMain(selector, fragment string) error {
	main, err := d.Main(selector)
	if err != nil {
		return err
	}
	main.SetHtml(fragment)
	return nil
}

// Origin returns the origin of the page.
func (d *Document) Origin() string {
	return d.origin
}

// Location returns the page URL of the document.
func (d *Document) Location() string {
	return d.location
}

// SetLocation updates the page URL, as a history push or pop would.
func (d *Document) SetLocation(location string) {
	d.location = location
}

// Href returns the absolute URL of the current location.
func (d *Document) Href() string {
	return d.origin + "/" + strings.TrimPrefix(d.location, "/")
}

// ScrollY returns the vertical scroll position.
func (d *Document) ScrollY() int {
	return d.scrollY
}

// ScrollTo sets the vertical scroll position. Negative values clamp to 0.
func (d *Document) ScrollTo(y int) {
	d.scrollY = max(y, 0)
}

// ViewportWidth returns the viewport width.
func (d *Document) ViewportWidth() int {
	return d.viewportWidth
}

// SetViewportWidth resizes the viewport.
func (d *Document) SetViewportWidth(width int) {
	d.viewportWidth = width
}

// OffsetTop returns the layout offset of sel from data-offset-top, or 0.
func OffsetTop(sel *goquery.Selection) int {
	return intAttr(sel, "data-offset-top")
}

// Height returns the layout height of sel from data-height, or 0.
func Height(sel *goquery.Selection) int {
	return intAttr(sel, "data-height")
}

func intAttr(sel *goquery.Selection, name string) int {
	v, ok := sel.Attr(name)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}

// AttachLoader shows the loading indicator and returns a function that
// releases it. The indicator stays attached while any acquisition is
// outstanding; releasing twice is a no-op.
func (d *Document) AttachLoader() (release func()) {
	d.loaders++
	if d.loaders == 1 && d.ByID(LoaderID).Length() == 0 {
		d.doc.Find("body").First().AppendHtml(
			fmt.Sprintf(`<div id="%s" style="%s"></div>`, LoaderID, loaderStyle))
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		d.loaders--
		if d.loaders == 0 {
			d.ByID(LoaderID).Remove()
		}
	}
}

// LoaderVisible reports whether the loading indicator is attached.
func (d *Document) LoaderVisible() bool {
	return d.ByID(LoaderID).Length() > 0
}
