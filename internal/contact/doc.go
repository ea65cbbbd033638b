// Package contact implements the contact form: validation, the character
// counter, and delivery of submissions through the Telegram Bot API with a
// mailto link and a manual copy as fallbacks.
package contact
