package contact

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/nao1215/sitenav/internal/i18n"
)

// Field length limits, in characters.
const (
	NameMin    = 2
	NameMax    = 50
	MessageMin = 10
	MessageMax = 2000
)

// Form field names, equal to the ids of the form controls.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether addr passes the form's e-mail check.
func ValidEmail(addr string) bool {
	return emailPattern.MatchString(addr)
}

// Form is the data entered in the contact form.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Trimmed returns f with surrounding whitespace removed from every field.
func (f Form) Trimmed() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Subject: strings.TrimSpace(f.Subject),
		Message: strings.TrimSpace(f.Message),
	}
}

// FieldError is a validation failure of one field. Message is a catalog
// key; see i18n.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists the failures of a form in field order.
type ValidationErrors []FieldError

// Error implements error.
func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "invalid contact form: " + strings.Join(parts, "; ")
}

// For returns the message key of field, or "".
func (e ValidationErrors) For(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Validate checks the trimmed form and returns nil when it is valid.
func (f Form) Validate() ValidationErrors {
	f = f.Trimmed()
	var errs ValidationErrors
	add := func(field, key string) {
		errs = append(errs, FieldError{Field: field, Message: key})
	}

	switch n := utf8.RuneCountInString(f.Name); {
	case n == 0:
		add(FieldName, i18n.NameRequired)
	case n < NameMin:
		add(FieldName, i18n.NameTooShort)
	case n > NameMax:
		add(FieldName, i18n.NameTooLong)
	}

	switch {
	case f.Email == "":
		add(FieldEmail, i18n.EmailRequired)
	case !ValidEmail(f.Email):
		add(FieldEmail, i18n.EmailInvalid)
	}

	switch n := utf8.RuneCountInString(f.Message); {
	case n == 0:
		add(FieldMessage, i18n.MessageRequired)
	case n < MessageMin:
		add(FieldMessage, i18n.MessageTooShort)
	case n > MessageMax:
		add(FieldMessage, i18n.MessageTooLong)
	}

	if f.Subject == "" {
		add(FieldSubject, i18n.SubjectRequired)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// CounterLevel grades the length of the message.
type CounterLevel int

const (
	// CounterNormal is shown up to 1500 characters.
	CounterNormal CounterLevel = iota
	// CounterWarning is shown above 1500 characters.
	CounterWarning
	// CounterDanger is shown above 1900 characters.
	CounterDanger
)

// Counter thresholds.
const (
	WarningThreshold = 1500
	DangerThreshold  = 1900
)

// Level returns the counter level of a message of n characters.
func Level(n int) CounterLevel {
	switch {
	case n > DangerThreshold:
		return CounterDanger
	case n > WarningThreshold:
		return CounterWarning
	default:
		return CounterNormal
	}
}

// Color returns the counter's CSS color.
func (l CounterLevel) Color() string {
	switch l {
	case CounterDanger:
		return "#ff4757"
	case CounterWarning:
		return "#ffa502"
	default:
		return "#a0a0c0"
	}
}

// FontWeight returns the counter's CSS font weight.
func (l CounterLevel) FontWeight() string {
	switch l {
	case CounterDanger:
		return "bold"
	case CounterWarning:
		return "600"
	default:
		return "normal"
	}
}

// String returns the level name.
func (l CounterLevel) String() string {
	switch l {
	case CounterDanger:
		return "danger"
	case CounterWarning:
		return "warning"
	default:
		return "normal"
	}
}
