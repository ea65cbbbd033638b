package crawler

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LinkKind classifies a link found in a content fragment.
type LinkKind int

const (
	// LinkPage is a link the navigator intercepts.
	LinkPage LinkKind = iota

	// LinkExternal points to another site.
	LinkExternal

	// LinkContact is a mailto: or tel: link.
	LinkContact

	// LinkAnchor is an in-page "#id" anchor.
	LinkAnchor

	// LinkBrowser is left to the browser: downloads, ignored paths and
	// javascript: placeholders.
	LinkBrowser
)

// Parser extracts what a tour checks from a rendered content fragment.
type Parser struct {
	// intercept reports whether the navigator handles a link.
	intercept func(href string) bool
}

// ParseResult contains everything extracted from one fragment.
type ParseResult struct {
	// Headings holds the text of every h1, in document order.
	Headings []string

	// Subtitle is the text the metadata step publishes as description,
	// empty when the fragment has none.
	Subtitle string

	// PageLinks are intercepted links, in document order.
	PageLinks []string

	// ExternalLinks point to other sites.
	ExternalLinks []string

	// ContactLinks are mailto: and tel: links.
	ContactLinks []string

	// Anchors are in-page anchors without the leading "#".
	Anchors []string

	// BrowserLinks are links that trigger a full page load.
	BrowserLinks []string

	// IDs holds every id attribute in the fragment.
	IDs map[string]bool

	// Emails contains addresses found in text and mailto: links.
	Emails []string
}

// NewParser creates a parser classifying links with intercept.
func NewParser(intercept func(href string) bool) *Parser {
	return &Parser{intercept: intercept}
}

// Parse parses a content fragment.
func (p *Parser) Parse(fragment string) (*ParseResult, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		IDs: make(map[string]bool),
	}
	seen := make(map[string]bool)
	var pageSubtitle, headerText string
	var subtitleSeen, headerSeen bool

	var textContent strings.Builder

	var walk func(n *html.Node, inHeader bool)
	walk = func(n *html.Node, inHeader bool) {
		switch n.Type {
		case html.ElementNode:
			if id := getAttr(n, "id"); id != "" {
				result.IDs[id] = true
			}
			switch n.DataAtom {
			case atom.H1:
				if text := nodeText(n); text != "" {
					result.Headings = append(result.Headings, text)
				}
			case atom.A:
				if href := strings.TrimSpace(getAttr(n, "href")); href != "" && !seen[href] {
					seen[href] = true
					p.classifyLink(href, result)
				}
			case atom.P:
				if inHeader && !headerSeen {
					headerSeen = true
					headerText = nodeText(n)
				}
			}
			if hasClass(n, "page-subtitle") && !subtitleSeen {
				subtitleSeen = true
				pageSubtitle = nodeText(n)
			}
			if hasClass(n, "section-header") {
				inHeader = true
			}
		case html.TextNode:
			textContent.WriteString(n.Data)
			textContent.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inHeader)
		}
	}

	for _, n := range nodes {
		walk(n, false)
	}

	result.Subtitle = pageSubtitle
	if result.Subtitle == "" {
		result.Subtitle = headerText
	}
	result.Emails = mergeEmails(result.Emails, extractEmails(textContent.String()))

	return result, nil
}

// classifyLink records href under its kind.
func (p *Parser) classifyLink(href string, result *ParseResult) {
	switch linkKind(href, p.intercept) {
	case LinkPage:
		result.PageLinks = append(result.PageLinks, href)
	case LinkExternal:
		result.ExternalLinks = append(result.ExternalLinks, href)
	case LinkContact:
		result.ContactLinks = append(result.ContactLinks, href)
		if addr, ok := strings.CutPrefix(href, "mailto:"); ok {
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			result.Emails = mergeEmails(result.Emails, []string{addr})
		}
	case LinkAnchor:
		if id := strings.TrimPrefix(href, "#"); id != "" {
			result.Anchors = append(result.Anchors, id)
		}
	case LinkBrowser:
		result.BrowserLinks = append(result.BrowserLinks, href)
	}
}

// linkKind classifies href. intercept only decides for links that are not
// contact, anchor, absolute or javascript: links.
func linkKind(href string, intercept func(string) bool) LinkKind {
	switch {
	case strings.HasPrefix(href, "mailto:"), strings.HasPrefix(href, "tel:"):
		return LinkContact
	case strings.HasPrefix(href, "#"):
		return LinkAnchor
	case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"), strings.HasPrefix(href, "//"):
		return LinkExternal
	case strings.HasPrefix(href, "javascript:"):
		return LinkBrowser
	case intercept != nil && intercept(href):
		return LinkPage
	default:
		return LinkBrowser
	}
}

// emailRegex is permissive; false positives only add informational
// findings.
var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

func extractEmails(text string) []string {
	return emailRegex.FindAllString(text, -1)
}

// mergeEmails appends the lower-cased addresses not yet in dst.
func mergeEmails(dst, addrs []string) []string {
	for _, addr := range addrs {
		lower := strings.ToLower(strings.TrimSpace(addr))
		if lower != "" && !slices.Contains(dst, lower) {
			dst = append(dst, lower)
		}
	}
	return dst
}

// nodeText returns the concatenated text below n.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// hasClass reports whether n carries class in its class attribute.
func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(getAttr(n, "class")), class)
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
