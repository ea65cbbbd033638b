package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type declaration struct {
	property string
	value    string
}

func parseStyle(style string) []declaration {
	var decls []declaration
	for _, part := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		if prop == "" {
			continue
		}
		decls = append(decls, declaration{property: prop, value: strings.TrimSpace(value)})
	}
	return decls
}

func formatStyle(decls []declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.property+": "+d.value)
	}
	return strings.Join(parts, "; ")
}

// Style returns the inline value of property on the first element of sel.
func Style(sel *goquery.Selection, property string) string {
	style, _ := sel.First().Attr("style")
	property = strings.ToLower(property)
	for _, d := range parseStyle(style) {
		if d.property == property {
			return d.value
		}
	}
	return ""
}

// SetStyle sets inline style properties on every element of sel, given as
// property/value pairs. An empty value removes the property, like assigning
// "" to element.style.prop in a browser.
func SetStyle(sel *goquery.Selection, pairs ...string) {
	sel.Each(func(_ int, el *goquery.Selection) {
		style, _ := el.Attr("style")
		decls := parseStyle(style)
		for i := 0; i+1 < len(pairs); i += 2 {
			decls = setDeclaration(decls, strings.ToLower(pairs[i]), pairs[i+1])
		}
		if len(decls) == 0 {
			el.RemoveAttr("style")
			return
		}
		el.SetAttr("style", formatStyle(decls))
	})
}

func setDeclaration(decls []declaration, property, value string) []declaration {
	for i, d := range decls {
		if d.property != property {
			continue
		}
		if value == "" {
			return append(decls[:i], decls[i+1:]...)
		}
		decls[i].value = value
		return decls
	}
	if value == "" {
		return decls
	}
	return append(decls, declaration{property: property, value: value})
}
