package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// head returns the <head> element. The HTML parser always creates one.
func (d *Document) head() *goquery.Selection {
	return d.doc.Find("head").First()
}

// Title returns the document title.
func (d *Document) Title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

// SetTitle sets the document title, creating <title> when absent.
func (d *Document) SetTitle(title string) {
	el := d.doc.Find("title").First()
	if el.Length() == 0 {
		d.head().AppendHtml("<title></title>")
		el = d.doc.Find("title").First()
	}
	el.SetText(title)
}

// Canonical returns the href of the canonical link, or "".
func (d *Document) Canonical() string {
	href, _ := d.doc.Find(`link[rel="canonical"]`).First().Attr("href")
	return href
}

// SetCanonical sets the canonical link, creating it when absent.
func (d *Document) SetCanonical(href string) {
	el := d.doc.Find(`link[rel="canonical"]`).First()
	if el.Length() == 0 {
		d.head().AppendHtml(`<link rel="canonical">`)
		el = d.doc.Find(`link[rel="canonical"]`).First()
	}
	el.SetAttr("href", href)
}

func (d *Document) metaTag(key string) *goquery.Selection {
	return d.doc.Find(`meta[property="` + key + `"], meta[name="` + key + `"]`).First()
}

// Meta returns the content of the meta tag identified by key through its
// property or name attribute.
func (d *Document) Meta(key string) string {
	content, _ := d.metaTag(key).Attr("content")
	return content
}

// SetMeta updates the meta tag identified by key, creating it when absent.
// New og:* tags are keyed by property, all others by name.
func (d *Document) SetMeta(key, content string) {
	el := d.metaTag(key)
	if el.Length() == 0 {
		attr := "name"
		if strings.HasPrefix(key, "og:") {
			attr = "property"
		}
		d.head().AppendHtml(`<meta ` + attr + `="` + key + `">`)
		el = d.metaTag(key)
	}
	el.SetAttr("content", content)
}
