package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultHomePage is the document loaded when the landing URL has no
	// file name, and the target of the "home" link on the error placeholder.
	DefaultHomePage = "index.html"

	// DefaultContentSelector selects the main content region swapped on
	// navigation, both in fetched documents and in the live page.
	DefaultContentSelector = "main"

	// DefaultSwapDelay is how long the outgoing content stays faded out
	// before the new fragment is inserted.
	DefaultSwapDelay = 300 * time.Millisecond

	// DefaultSettleDelay is how long the fade-in transition stays on the
	// content region after a swap.
	DefaultSettleDelay = 500 * time.Millisecond

	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultPrefetchConcurrency is the number of fragments fetched in
	// parallel when warming the cache.
	DefaultPrefetchConcurrency = 4

	// DefaultMaxBodySize limits how much of a fetched document is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultSiteName is appended to page titles and used as og:site_name.
	DefaultSiteName = "Media Sync Bot"

	// DefaultDescription is used when a page carries no subtitle.
	DefaultDescription = "Синхронизация медиа между Discord и Telegram"

	// DefaultLanguage selects the message catalog for user-visible text.
	DefaultLanguage = "ru"

	// DefaultContactEmail receives mailto fallbacks of the contact form.
	DefaultContactEmail = "roma.sharper@yandex.ru"

	// DefaultServeAddress is the listen address of the development server.
	DefaultServeAddress = "127.0.0.1:8080"

	// AppName is the application name used for XDG directory paths.
	AppName = "sitenav"

	// DefaultUserAgent identifies sitenav in HTTP requests.
	DefaultUserAgent = "sitenav/1.0 (+https://github.com/nao1215/sitenav)"
)

// Config holds all configuration options for a navigation session.
// It is populated from CLI flags and the optional configuration file and
// passed down explicitly; nothing reads it from global state.
type Config struct {
	// Site is where pages are fetched from: an http(s) base URL or a local
	// directory containing the static site.
	Site string

	// Origin is the public origin written into canonical links and og:url.
	// When empty, the origin of Site is used (or "http://localhost" for a
	// directory site).
	Origin string

	// Entry is the document the session lands on.
	Entry string

	// ContentSelector selects the main content region.
	ContentSelector string

	// Animate enables the fade-out/fade-in swap for user navigations.
	Animate bool

	// SwapDelay is the fade-out time before new content is inserted.
	SwapDelay time.Duration

	// SettleDelay is the fade-in time after new content is inserted.
	SettleDelay time.Duration

	// Timeout bounds every fetch.
	Timeout time.Duration

	// ProxyAddress is an optional SOCKS5 proxy ("host:port") for fetches.
	ProxyAddress string

	// MaxBodySize is the maximum number of bytes read from a fetched page.
	MaxBodySize int64

	// UserAgent is sent with every fetch.
	UserAgent string

	// PrefetchConcurrency bounds parallel fetches while warming the cache.
	PrefetchConcurrency int

	// Language selects the message catalog ("ru" or "en").
	Language string

	// SiteName is the brand appended to document titles.
	SiteName string

	// DefaultDescription is used when a page has no subtitle.
	DefaultDescription string

	// Verbose enables debug logging.
	Verbose bool

	// JSONLog switches the log handler to JSON output.
	JSONLog bool

	// ConfigFilePath is the explicit configuration file, if any.
	ConfigFilePath string

	// File holds the settings loaded from the configuration file.
	File *File

	// DBDir is where the SQLite database lives. Empty disables persistence.
	DBDir string

	// ServeAddress is the listen address of `sitenav serve`.
	ServeAddress string

	// JSONReport and MarkdownReport select the tour report format.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile redirects the tour report to a file.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Entry:               DefaultHomePage,
		ContentSelector:     DefaultContentSelector,
		Animate:             true,
		SwapDelay:           DefaultSwapDelay,
		SettleDelay:         DefaultSettleDelay,
		Timeout:             DefaultTimeout,
		MaxBodySize:         DefaultMaxBodySize,
		UserAgent:           DefaultUserAgent,
		PrefetchConcurrency: DefaultPrefetchConcurrency,
		Language:            DefaultLanguage,
		SiteName:            DefaultSiteName,
		DefaultDescription:  DefaultDescription,
		ServeAddress:        DefaultServeAddress,
		File: &File{
			Sites: make(map[string]SiteConfig),
		},
	}
}

// XDGDataDir returns the XDG data directory for sitenav.
// On Linux: ~/.local/share/sitenav
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitenav.
// On Linux: ~/.config/sitenav
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.Site == "" {
		return ErrNoSite
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.SwapDelay < 0 || c.SettleDelay < 0 {
		return ErrInvalidDelay
	}

	if c.PrefetchConcurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.ContentSelector == "" {
		return ErrEmptyContentSelector
	}

	switch c.Language {
	case "ru", "en":
	default:
		return ErrUnsupportedLanguage
	}

	return nil
}

// ApplySite overlays the file settings for the given host onto c.
// Values explicitly set by flags win: ApplySite only fills fields that still
// hold their defaults.
func (c *Config) ApplySite(host string) SiteConfig {
	if c.File == nil {
		return SiteConfig{}
	}
	site := c.File.GetSiteConfig(host)

	if site.Entry != "" && c.Entry == DefaultHomePage {
		c.Entry = site.Entry
	}
	if site.ContentSelector != "" && c.ContentSelector == DefaultContentSelector {
		c.ContentSelector = site.ContentSelector
	}
	if site.Origin != "" && c.Origin == "" {
		c.Origin = site.Origin
	}
	if c.File.UI.Language != "" && c.Language == DefaultLanguage {
		c.Language = c.File.UI.Language
	}
	if c.File.UI.SiteName != "" && c.SiteName == DefaultSiteName {
		c.SiteName = c.File.UI.SiteName
	}
	if c.File.UI.Description != "" && c.DefaultDescription == DefaultDescription {
		c.DefaultDescription = c.File.UI.Description
	}
	return site
}
