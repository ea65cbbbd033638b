package contact

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/sitenav/internal/i18n"
	"github.com/nao1215/sitenav/internal/model"
)

// ErrOpenerUnavailable is returned by an Opener that cannot open links,
// like a browser blocking the pop-up.
var ErrOpenerUnavailable = errors.New("no mail client available")

// Opener opens a mailto link in the visitor's mail client.
type Opener interface {
	Open(ctx context.Context, link string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, link string) error

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, link string) error {
	return f(ctx, link)
}

// ManualCopy is the data shown to the visitor when no channel could deliver
// the message.
type ManualCopy struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// formatter renders submissions in one language.
type formatter struct {
	printer  *i18n.Printer
	siteName string
}

// telegramText renders the Markdown message posted to Telegram.
func (f formatter) telegramText(s *model.Submission) string {
	p := f.printer
	var b strings.Builder
	b.WriteString(p.Sprintf(i18n.TelegramHeader, f.siteName))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "*👤 %s:* %s\n", p.Sprintf(i18n.FieldName), s.Name)
	fmt.Fprintf(&b, "*📧 %s:* %s\n", p.Sprintf(i18n.FieldEmail), s.Email)
	fmt.Fprintf(&b, "*🏷️ %s:* %s\n", p.Sprintf(i18n.FieldSubject), s.Subject)
	fmt.Fprintf(&b, "*⏰ %s:* %s\n\n", p.Sprintf(i18n.FieldTime), p.FormatTime(s.Timestamp))
	fmt.Fprintf(&b, "*📝 %s:*\n%s\n\n", p.Sprintf(i18n.FieldMessage), s.Message)
	fmt.Fprintf(&b, "*🌐 %s:* %s", p.Sprintf(i18n.FieldSource), s.Source)
	return b.String()
}

// mailSubject is the subject line of the mailto fallback.
func (f formatter) mailSubject(s *model.Submission) string {
	return f.siteName + ": " + s.Subject
}

// mailBody renders the plain-text body of the mailto fallback.
func (f formatter) mailBody(s *model.Submission) string {
	p := f.printer
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", p.Sprintf(i18n.FieldName), s.Name)
	fmt.Fprintf(&b, "%s: %s\n", p.Sprintf(i18n.FieldEmail), s.Email)
	fmt.Fprintf(&b, "%s: %s\n", p.Sprintf(i18n.FieldSubject), s.Subject)
	fmt.Fprintf(&b, "%s: %s\n\n", p.Sprintf(i18n.FieldDate), p.FormatTime(s.Timestamp))
	fmt.Fprintf(&b, "%s:\n%s\n\n", p.Sprintf(i18n.FieldMessage), s.Message)
	b.WriteString("---\n")
	b.WriteString(p.Sprintf(i18n.MailFooter, f.siteName))
	return b.String()
}

// BuildMailto returns a mailto link with the given subject and body.
func BuildMailto(recipient, subject, body string) string {
	return "mailto:" + recipient +
		"?subject=" + encodeComponent(subject) +
		"&body=" + encodeComponent(body)
}

// encodeComponent escapes s for a mailto header; spaces become %20, which
// mail clients expect instead of "+".
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
