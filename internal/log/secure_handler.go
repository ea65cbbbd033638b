package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys whose values are always masked.
var sensitiveKeys = map[string]bool{
	// HTTP headers
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"proxy-authorization": true,

	// Telegram delivery
	"bot_token": true,
	"bottoken":  true,
	"chat_id":   true,
	"chatid":    true,

	// Session
	"session":    true,
	"session_id": true,
	"sessionid":  true,
	"sid":        true,

	// Credentials
	"password":    true,
	"secret":      true,
	"api_key":     true,
	"apikey":      true,
	"credentials": true,
}

// sensitiveKeywords mark a key as sensitive when contained in it.
// The bare word "key" is excluded because of names like "cache_key".
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "auth", "credential",
}

// sensitivePatterns match values that are masked regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// Telegram bot tokens: "<bot id>:<secret>"
	regexp.MustCompile(`^\d{6,12}:[A-Za-z0-9_-]{30,}$`),

	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer and Basic authorization values
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// Long opaque strings
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),
}

var (
	// botURLPattern finds the token segment of Telegram Bot API URLs.
	botURLPattern = regexp.MustCompile(`/bot\d+:[^/\s]+`)

	// emailPattern finds e-mail addresses inside a value.
	emailPattern = regexp.MustCompile(`([^\s@:/?&=,;<>"']+)@([^\s@/?&,;<>"']+\.[^\s@/?&,;<>"']+)`)
)

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler and sanitizes every attribute before
// passing the record on.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, slog.Default().Handler() is used.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled reports whether the underlying handler handles records at level.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it to the underlying handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes sanitized and added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

func sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	// error values are rendered through their message, which may carry
	// request URLs with a bot token in them
	switch a.Value.Kind() {
	case slog.KindString:
		return slog.String(a.Key, sanitizeValue(a.Value.String()))
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok && err != nil {
			return slog.String(a.Key, sanitizeValue(err.Error()))
		}
	}
	return a
}

func containsSensitiveKeyword(key string) bool {
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// sanitizeValue masks a whole value when it looks like a credential and
// otherwise rewrites the sensitive parts embedded in it.
func sanitizeValue(value string) string {
	if isSensitiveValue(value) {
		return MaskValue
	}
	if strings.Contains(value, "/bot") {
		value = botURLPattern.ReplaceAllString(value, "/bot"+MaskValue)
	}
	if strings.Contains(value, "@") {
		value = MaskEmail(value)
	}
	return value
}

// MaskEmail keeps the first character of the local part and the domain of
// every e-mail address found in s: "roma.sharper@yandex.ru" becomes
// "r***@yandex.ru".
func MaskEmail(s string) string {
	return emailPattern.ReplaceAllStringFunc(s, func(addr string) string {
		m := emailPattern.FindStringSubmatch(addr)
		local, domain := m[1], m[2]
		r := []rune(local)
		return string(r[:1]) + "***@" + domain
	})
}

// Options configures New.
type Options struct {
	// Verbose lowers the level from Warn to Debug.
	Verbose bool
	// JSON selects the JSON handler instead of the text handler.
	JSON bool
}

// New creates an slog.Logger whose output is sanitized by a SecureHandler.
func New(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(NewSecureHandler(handler))
}

// NewSecureLogger creates a text logger; verbose selects the Debug level.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return New(w, Options{Verbose: verbose})
}

// NewSecureJSONLogger creates a JSON logger; verbose selects the Debug level.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return New(w, Options{Verbose: verbose, JSON: true})
}
