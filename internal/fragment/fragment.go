package fragment

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoContent is returned by Extract when the document has no element
// matching the content selector.
var ErrNoContent = errors.New("no main content found")

// strippedSelector matches the elements removed from every fragment.
const strippedSelector = `script, link[rel~="stylesheet"]`

// excludedPrefixes are reference prefixes that are never rewritten.
var excludedPrefixes = []string{"http", "#", "mailto:", "tel:", "data:", "/"}

// Extract parses an HTML document and returns the processed inner markup of
// the first element matching selector. base is the normalized URL the
// document was fetched from and anchors relative references.
func Extract(r io.Reader, base, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	region := doc.Find(selector).First()
	if region.Length() == 0 {
		return "", fmt.Errorf("%w: selector %q", ErrNoContent, selector)
	}

	Process(region, base)

	content, err := region.Html()
	if err != nil {
		return "", fmt.Errorf("render fragment: %w", err)
	}
	return content, nil
}

// Process rewrites relative a[href] and img[src] references below sel
// against base and removes script and stylesheet elements in place.
func Process(sel *goquery.Selection, base string) {
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if rewritten := RewriteReference(base, href); rewritten != href {
			a.SetAttr("href", rewritten)
		}
	})

	sel.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
		src, _ := img.Attr("src")
		if rewritten := RewriteReference(base, src); rewritten != src {
			img.SetAttr("src", rewritten)
		}
	})

	sel.Find(strippedSelector).Remove()
}

// RewriteReference resolves ref against the directory of base.
//
// References starting with http, #, mailto:, tel:, data: or / are returned
// unchanged, as is the empty reference. Anything else is prefixed with
// Dirname(base). Resolution is textual: "../" segments are kept as they are.
func RewriteReference(base, ref string) string {
	if ref == "" {
		return ref
	}
	for _, prefix := range excludedPrefixes {
		if strings.HasPrefix(ref, prefix) {
			return ref
		}
	}
	return Dirname(base) + ref
}

// Dirname returns base up to and including its last "/", or "" when base
// has no slash.
func Dirname(base string) string {
	i := strings.LastIndex(base, "/")
	if i < 0 {
		return ""
	}
	return base[:i+1]
}
