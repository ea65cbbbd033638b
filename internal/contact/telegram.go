package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTelegramAPI is the Telegram Bot API endpoint.
const DefaultTelegramAPI = "https://api.telegram.org"

// ErrNotConfigured is returned by a TelegramSender without a token or chat.
var ErrNotConfigured = errors.New("telegram bot not configured")

// APIError is a non-2xx answer of the Bot API.
type APIError struct {
	Status      int
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("telegram api: status %d", e.Status)
	}
	return fmt.Sprintf("telegram api: status %d: %s", e.Status, e.Description)
}

// TelegramSender posts messages to one chat through a bot.
type TelegramSender struct {
	token   string
	chatID  string
	apiBase string
	client  *http.Client
}

// TelegramOption configures a TelegramSender.
type TelegramOption func(*TelegramSender)

// WithAPIBase overrides the Bot API endpoint.
func WithAPIBase(base string) TelegramOption {
	return func(s *TelegramSender) {
		if base != "" {
			s.apiBase = strings.TrimSuffix(base, "/")
		}
	}
}

// WithTelegramClient sets the HTTP client.
func WithTelegramClient(client *http.Client) TelegramOption {
	return func(s *TelegramSender) {
		s.client = client
	}
}

// NewTelegramSender creates a sender for chatID using the bot token.
func NewTelegramSender(token, chatID string, opts ...TelegramOption) *TelegramSender {
	s := &TelegramSender{
		token:   token,
		chatID:  chatID,
		apiBase: DefaultTelegramAPI,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether the sender has a token and a chat.
func (s *TelegramSender) Configured() bool {
	return s != nil && s.token != "" && s.chatID != ""
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts text as a Markdown message.
func (s *TelegramSender) Send(ctx context.Context, text string) error {
	if !s.Configured() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                s.chatID,
		Text:                  text,
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("encode telegram message: %w", err)
	}

	endpoint := s.apiBase + "/bot" + s.token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		// The URL embeds the token; report the failure without it.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return fmt.Errorf("telegram request: %w", urlErr.Err)
		}
		return fmt.Errorf("telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var r apiResponse
		if data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && json.Unmarshal(data, &r) == nil {
			apiErr.Description = r.Description
		}
		return apiErr
	}
	return nil
}
