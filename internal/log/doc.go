// Package log provides the slog setup used by sitenav, with automatic
// sanitization of sensitive information.
//
// The SecureHandler wraps any slog.Handler and rewrites attributes before
// they are written:
//   - credentials found by key (Telegram bot token, chat id, cookies,
//     authorization headers, session ids) are replaced with MaskValue
//   - token-shaped values are replaced regardless of their key
//   - bot tokens embedded in Telegram API URLs are cut out of the URL
//   - e-mail addresses keep their first character and domain only
//
// Contact form submissions carry personal data and the delivery channel
// carries a bot token, so every logger in the application goes through this
// handler, including debug output.
//
// # Usage
//
//	logger := log.New(os.Stderr, log.Options{Verbose: true})
//	logger.Info("message delivered",
//	    "bot_token", "123456:ABC", // bot_token=***REDACTED***
//	    "email", "roma.sharper@yandex.ru", // email=r***@yandex.ru
//	)
package log
