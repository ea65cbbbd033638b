package page

import (
	"github.com/PuerkitoBio/goquery"
)

// Body returns the <body> element.
func (d *Document) Body() *goquery.Selection {
	return d.doc.Find("body").First()
}

// Value returns the current value of a form control: the text of a
// <textarea>, the value attribute otherwise.
func Value(sel *goquery.Selection) string {
	el := sel.First()
	if goquery.NodeName(el) == "textarea" {
		return el.Text()
	}
	v, _ := el.Attr("value")
	return v
}

// SetValue sets the value of every form control in sel.
func SetValue(sel *goquery.Selection, value string) {
	sel.Each(func(_ int, el *goquery.Selection) {
		if goquery.NodeName(el) == "textarea" {
			el.SetText(value)
			return
		}
		el.SetAttr("value", value)
	})
}

// Checked reports whether the first element of sel carries the checked
// attribute.
func Checked(sel *goquery.Selection) bool {
	_, ok := sel.First().Attr("checked")
	return ok
}

// SetChecked adds or removes the checked attribute on every element of sel.
func SetChecked(sel *goquery.Selection, checked bool) {
	if checked {
		sel.SetAttr("checked", "")
		return
	}
	sel.RemoveAttr("checked")
}
