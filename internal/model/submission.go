package model

import "time"

// Channel is how a contact submission was delivered.
type Channel string

const (
	// ChannelTelegram means the Telegram Bot API accepted the message.
	ChannelTelegram Channel = "telegram"

	// ChannelMailto means a mail client was opened with a mailto link.
	ChannelMailto Channel = "mailto"

	// ChannelManual means the visitor was shown the data to copy by hand.
	ChannelManual Channel = "manual"
)

// Submission is a contact form submission.
type Submission struct {
	// ID is a random UUID assigned when the form is submitted.
	ID string `json:"id"`

	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`

	// Source names the site the form was sent from.
	Source string `json:"source"`

	// Timestamp is when the form was submitted.
	Timestamp time.Time `json:"timestamp"`

	// Channel is how the submission was finally delivered.
	Channel Channel `json:"channel,omitempty"`

	// Delivered is false when every channel failed.
	Delivered bool `json:"delivered"`
}
