package contact

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/nao1215/sitenav/internal/i18n"
	"github.com/nao1215/sitenav/internal/model"
)

// Defaults of a Service.
const (
	DefaultSiteName  = "Media Sync Bot"
	DefaultSource    = "Media Sync Bot Website"
	DefaultRecipient = "roma.sharper@yandex.ru"
)

// MessageKind is the style of the message shown under the form.
type MessageKind string

const (
	KindSuccess MessageKind = "success"
	KindInfo    MessageKind = "info"
	KindError   MessageKind = "error"
)

// SubmissionStore persists submissions.
type SubmissionStore interface {
	SaveSubmission(ctx context.Context, s *model.Submission) error
}

// Outcome is the result of submitting the form.
type Outcome struct {
	// Submission is nil when the form was invalid.
	Submission *model.Submission `json:"submission,omitempty"`

	// Kind and Message are shown under the form, already localized.
	Kind    MessageKind `json:"kind"`
	Message string      `json:"message"`

	// Errors lists the invalid fields.
	Errors ValidationErrors `json:"errors,omitempty"`

	// Manual is set when the visitor has to send the message by hand.
	Manual *ManualCopy `json:"manual,omitempty"`
}

// Valid reports whether the form passed validation.
func (o *Outcome) Valid() bool {
	return len(o.Errors) == 0
}

// Service validates and delivers contact form submissions.
type Service struct {
	telegram  *TelegramSender
	opener    Opener
	store     SubmissionStore
	recipient string
	source    string
	siteName  string
	printer   *i18n.Printer
	logger    *slog.Logger
	now       func() time.Time
	policy    *bluemonday.Policy
}

// Option configures a Service.
type Option func(*Service)

// WithTelegram enables delivery through a Telegram bot.
func WithTelegram(sender *TelegramSender) Option {
	return func(s *Service) {
		s.telegram = sender
	}
}

// WithOpener sets the mail client used for the mailto fallback.
func WithOpener(o Opener) Option {
	return func(s *Service) {
		s.opener = o
	}
}

// WithStore records every valid submission.
func WithStore(store SubmissionStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithRecipient sets the address of the mailto fallback.
func WithRecipient(email string) Option {
	return func(s *Service) {
		if email != "" {
			s.recipient = email
		}
	}
}

// WithSource sets the source written into submissions.
func WithSource(source string) Option {
	return func(s *Service) {
		if source != "" {
			s.source = source
		}
	}
}

// WithSiteName sets the site name used in messages.
func WithSiteName(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.siteName = name
		}
	}
}

// WithPrinter sets the language of messages.
func WithPrinter(p *i18n.Printer) Option {
	return func(s *Service) {
		s.printer = p
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service. Without WithTelegram every submission goes
// to the mailto fallback.
func NewService(opts ...Option) *Service {
	s := &Service{
		recipient: DefaultRecipient,
		source:    DefaultSource,
		siteName:  DefaultSiteName,
		printer:   i18n.Default(),
		logger:    slog.Default(),
		now:       time.Now,
		policy:    bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Printer returns the printer used for messages.
func (s *Service) Printer() *i18n.Printer {
	return s.printer
}

// Sanitize strips markup from every field of f and trims it.
func (s *Service) Sanitize(f Form) Form {
	clean := func(v string) string {
		return html.UnescapeString(s.policy.Sanitize(v))
	}
	return Form{
		Name:    clean(f.Name),
		Email:   clean(f.Email),
		Subject: clean(f.Subject),
		Message: clean(f.Message),
	}.Trimmed()
}

// Submit validates f and delivers it: through Telegram when configured,
// else through a mailto link, else as a manual copy. The returned error is
// only set when ctx ends; delivery failures are reported in the Outcome.
func (s *Service) Submit(ctx context.Context, f Form) (*Outcome, error) {
	f = s.Sanitize(f)
	if errs := f.Validate(); errs != nil {
		return &Outcome{
			Kind:    KindError,
			Message: s.printer.Sprintf(i18n.FormInvalid),
			Errors:  errs,
		}, nil
	}

	sub := &model.Submission{
		ID:        uuid.NewString(),
		Name:      f.Name,
		Email:     f.Email,
		Subject:   f.Subject,
		Message:   f.Message,
		Source:    s.source,
		Timestamp: s.now(),
	}
	out, err := s.deliver(ctx, sub)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.SaveSubmission(ctx, sub); err != nil {
			s.logger.Warn("failed to record submission", "id", sub.ID, "error", err)
		}
	}
	return out, nil
}

func (s *Service) deliver(ctx context.Context, sub *model.Submission) (*Outcome, error) {
	ft := formatter{printer: s.printer, siteName: s.siteName}
	out := &Outcome{Submission: sub}

	err := s.telegram.Send(ctx, ft.telegramText(sub))
	if err == nil {
		sub.Channel = model.ChannelTelegram
		sub.Delivered = true
		out.Kind = KindSuccess
		out.Message = s.printer.Sprintf(i18n.SentTelegram)
		s.logger.Info("contact message sent", "id", sub.ID, "channel", sub.Channel)
		return out, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if !errors.Is(err, ErrNotConfigured) {
		s.logger.Warn("telegram delivery failed", "id", sub.ID, "error", err)
	}

	subject := ft.mailSubject(sub)
	body := ft.mailBody(sub)
	if err := s.openMailto(ctx, BuildMailto(s.recipient, subject, body)); err == nil {
		sub.Channel = model.ChannelMailto
		sub.Delivered = true
		out.Kind = KindInfo
		out.Message = s.printer.Sprintf(i18n.SentMailto)
		return out, nil
	} else if !errors.Is(err, ErrOpenerUnavailable) {
		s.logger.Warn("mailto fallback failed", "id", sub.ID, "error", err)
	}

	sub.Channel = model.ChannelManual
	out.Kind = KindError
	out.Message = s.printer.Sprintf(i18n.SendFailed, s.recipient)
	out.Manual = &ManualCopy{Recipient: s.recipient, Subject: subject, Body: body}
	return out, nil
}

func (s *Service) openMailto(ctx context.Context, link string) error {
	if s.opener == nil {
		return ErrOpenerUnavailable
	}
	if err := s.opener.Open(ctx, link); err != nil {
		return fmt.Errorf("open mailto link: %w", err)
	}
	return nil
}
