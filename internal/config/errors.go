package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrNoSite is returned when neither a base URL nor a site directory
	// was given.
	ErrNoSite = errors.New("no site specified: provide a base URL or a site directory with --site")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when a swap or settle delay is negative.
	ErrInvalidDelay = errors.New("invalid animation delay: must be non-negative")

	// ErrInvalidConcurrency is returned when the prefetch concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid prefetch concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrEmptyContentSelector is returned when the content selector is empty.
	ErrEmptyContentSelector = errors.New("invalid content selector: must not be empty")

	// ErrUnsupportedLanguage is returned for languages without a message catalog.
	ErrUnsupportedLanguage = errors.New("unsupported language: use ru or en")
)
