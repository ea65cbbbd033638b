package contact

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/sitenav/internal/i18n"
	"github.com/nao1215/sitenav/internal/navigator"
	"github.com/nao1215/sitenav/internal/page"
	"github.com/nao1215/sitenav/internal/pipeline"
)

// Element ids and classes of the contact page.
const (
	FormID          = "contact-form"
	SubjectInputID  = "custom-subject"
	CounterID       = "char-count"
	FormMessageID   = "form-message"
	HookName        = "contact-form"
	fieldErrorClass = "field-error-message"
	errorFieldClass = "error-field"
	selectSelector  = ".custom-select"
	selectErrorCls  = "select-error"
	fallbackClass   = "mailto-fallback"
)

// controlIDs maps form fields to the ids of their controls.
var controlIDs = map[string]string{
	FieldName:    FieldName,
	FieldEmail:   FieldEmail,
	FieldMessage: FieldMessage,
}

// HasForm reports whether the page shows the contact form.
func HasForm(doc *page.Document) bool {
	return doc.ByID(FormID).Length() > 0
}

// FormFromDocument reads the form controls. The subject is the first value
// of the select's hidden input.
func FormFromDocument(doc *page.Document) Form {
	subject, _, _ := strings.Cut(page.Value(doc.ByID(SubjectInputID)), ",")
	return Form{
		Name:    page.Value(doc.ByID(FieldName)),
		Email:   page.Value(doc.ByID(FieldEmail)),
		Subject: subject,
		Message: page.Value(doc.ByID(FieldMessage)),
	}
}

// FillForm writes f into the form controls, as typing would, and updates
// the counter.
func FillForm(doc *page.Document, f Form) {
	page.SetValue(doc.ByID(FieldName), f.Name)
	page.SetValue(doc.ByID(FieldEmail), f.Email)
	page.SetValue(doc.ByID(SubjectInputID), f.Subject)
	page.SetValue(doc.ByID(FieldMessage), f.Message)
	UpdateCounter(doc)
}

// UpdateCounter shows the length of the message and colors the counter.
func UpdateCounter(doc *page.Document) {
	counter := doc.ByID(CounterID)
	if counter.Length() == 0 {
		return
	}
	n := utf8.RuneCountInString(page.Value(doc.ByID(FieldMessage)))
	level := Level(n)
	counter.SetText(strconv.Itoa(n))
	page.SetStyle(counter, "color", level.Color(), "font-weight", level.FontWeight())
}

// ClearErrors removes every field and subject error.
func ClearErrors(doc *page.Document) {
	form := doc.ByID(FormID)
	form.Find("." + fieldErrorClass + ", ." + selectErrorCls).Remove()
	form.Find("." + errorFieldClass).RemoveClass(errorFieldClass)
	doc.Find(selectSelector).RemoveClass("error")
}

// ShowErrors marks the invalid fields with their localized messages.
func ShowErrors(doc *page.Document, p *i18n.Printer, errs ValidationErrors) {
	ClearErrors(doc)
	for _, fe := range errs {
		msg := html.EscapeString(p.Sprintf(fe.Message))
		if fe.Field == FieldSubject {
			sel := doc.Find(selectSelector).First()
			sel.AddClass("error")
			sel.AppendHtml(fmt.Sprintf(
				`<div class="%s"><i class="fas fa-exclamation-circle"></i> %s</div>`, selectErrorCls, msg))
			continue
		}
		control := doc.ByID(controlIDs[fe.Field])
		control.AddClass(errorFieldClass)
		control.Closest(".form-group").AppendHtml(fmt.Sprintf(
			`<div class="%s"><i class="fas fa-exclamation-circle"></i><span>%s</span></div>`, fieldErrorClass, msg))
	}
}

// FieldErrorText returns the error shown for field, or "".
func FieldErrorText(doc *page.Document, field string) string {
	if field == FieldSubject {
		return strings.TrimSpace(doc.Find(selectSelector + " ." + selectErrorCls).Text())
	}
	return doc.ByID(controlIDs[field]).Closest(".form-group").Find("." + fieldErrorClass).Text()
}

// ShowMessage displays msg under the form.
func ShowMessage(doc *page.Document, kind MessageKind, msg string) {
	el := doc.ByID(FormMessageID)
	el.SetText(msg)
	el.SetAttr("class", "form-message "+string(kind))
	page.SetStyle(el, "display", "block")
}

// Message returns the text under the form.
func Message(doc *page.Document) string {
	return doc.ByID(FormMessageID).Text()
}

// ResetForm empties the controls, the counter and the errors.
func ResetForm(doc *page.Document) {
	for _, id := range []string{FieldName, FieldEmail, FieldMessage, SubjectInputID} {
		page.SetValue(doc.ByID(id), "")
	}
	UpdateCounter(doc)
	ClearErrors(doc)
}

// ShowManualCopy appends the manual copy dialog to the page.
func ShowManualCopy(doc *page.Document, p *i18n.Printer, m *ManualCopy) {
	doc.Find("." + fallbackClass).Remove()
	esc := html.EscapeString
	doc.Body().AppendHtml(fmt.Sprintf(`<div class="%s"><div class="fallback-content">`+
		`<h4><i class="fas fa-envelope"></i> %s</h4><div class="fallback-data">`+
		`<div class="data-field"><label>%s</label><input type="text" readonly value="%s" class="copy-field"></div>`+
		`<div class="data-field"><label>%s</label><input type="text" readonly value="%s" class="copy-field"></div>`+
		`<div class="data-field"><label>%s</label><textarea readonly class="copy-field">%s</textarea></div>`+
		`</div><div class="fallback-buttons"><button class="btn btn-secondary" id="close-fallback">`+
		`<i class="fas fa-times"></i> %s</button></div></div></div>`,
		fallbackClass,
		esc(p.Sprintf(i18n.CopyTitle)),
		esc(p.Sprintf(i18n.CopyRecipient)), esc(m.Recipient),
		esc(p.Sprintf(i18n.CopySubject)), esc(m.Subject),
		esc(p.Sprintf(i18n.CopyBody)), esc(m.Body),
		esc(p.Sprintf(i18n.CloseLabel)),
	))
}

// CloseManualCopy removes the manual copy dialog.
func CloseManualCopy(doc *page.Document) {
	doc.Find("." + fallbackClass).Remove()
}

// ManualCopyShown reports whether the manual copy dialog is on the page.
func ManualCopyShown(doc *page.Document) bool {
	return doc.Find("."+fallbackClass).Length() > 0
}

// ApplyOutcome shows the result of a submission on the page. A successful
// delivery resets the form.
func ApplyOutcome(doc *page.Document, p *i18n.Printer, out *Outcome) {
	if !out.Valid() {
		ShowErrors(doc, p, out.Errors)
		ShowMessage(doc, out.Kind, out.Message)
		return
	}
	ClearErrors(doc)
	ShowMessage(doc, out.Kind, out.Message)
	if out.Manual != nil {
		ShowManualCopy(doc, p, out.Manual)
		return
	}
	ResetForm(doc)
}

// ErrNoForm is returned when the live page has no contact form.
var ErrNoForm = errors.New("page has no contact form")

// Controller is the part of the navigator the form handler needs.
type Controller interface {
	Do(fn func(doc *page.Document) error) error
}

// Handler binds a Service to the contact page.
type Handler struct {
	service *Service
	onReset []func(doc *page.Document)
}

// NewHandler creates a Handler submitting through service.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// OnReset registers fn to run, with the page held, whenever a delivered
// submission resets the form; the subject select clears itself this way.
func (h *Handler) OnReset(fn func(doc *page.Document)) {
	h.onReset = append(h.onReset, fn)
}

// Hook returns the post-swap hook preparing the form of a freshly swapped
// contact page.
func (h *Handler) Hook() navigator.Hook {
	return navigator.HookFunc(HookName, func(_ context.Context, swap *pipeline.Swap) error {
		if !HasForm(swap.Doc) {
			return nil
		}
		UpdateCounter(swap.Doc)
		return nil
	})
}

// Submit reads the form from the live page, delivers it and shows the
// outcome. The page is not held while the message is in flight.
func (h *Handler) Submit(ctx context.Context, nav Controller) (*Outcome, error) {
	var f Form
	found := false
	p := h.service.Printer()
	if err := nav.Do(func(doc *page.Document) error {
		if found = HasForm(doc); found {
			f = FormFromDocument(doc)
			ShowMessage(doc, KindInfo, p.Sprintf(i18n.Sending))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoForm
	}

	out, err := h.service.Submit(ctx, f)
	if err != nil {
		return nil, err
	}

	err = nav.Do(func(doc *page.Document) error {
		if !HasForm(doc) {
			return nil
		}
		ApplyOutcome(doc, p, out)
		if out.Valid() && out.Manual == nil {
			for _, fn := range h.onReset {
				fn(doc)
			}
		}
		return nil
	})
	return out, err
}
