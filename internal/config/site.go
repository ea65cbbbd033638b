package config

// SiteConfig holds per-host settings for fetching and rendering a site.
type SiteConfig struct {
	// Cookie is sent with every fetch to this host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers added to every fetch.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Entry overrides the landing document for this host.
	Entry string `yaml:"entry,omitempty"`

	// ContentSelector overrides the main content selector for this host.
	ContentSelector string `yaml:"contentSelector,omitempty"`

	// Origin overrides the public origin used in canonical links.
	Origin string `yaml:"origin,omitempty"`

	// IgnorePatterns are link paths that are never intercepted; clicking
	// them is left to the browser (a full page load).
	// Patterns use glob syntax (e.g., "/downloads/*", "*.pdf").
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`
}

// ContactConfig configures contact form delivery.
type ContactConfig struct {
	// BotToken is the Telegram bot token. Empty disables Telegram delivery.
	BotToken string `yaml:"botToken,omitempty"`

	// ChatID is the Telegram chat receiving messages.
	ChatID string `yaml:"chatId,omitempty"`

	// APIBase overrides the Telegram Bot API endpoint.
	APIBase string `yaml:"apiBase,omitempty"`

	// Email receives the mailto fallback.
	Email string `yaml:"email,omitempty"`

	// Source is written into every submission.
	Source string `yaml:"source,omitempty"`
}

// UIConfig holds user-visible text settings.
type UIConfig struct {
	// Language selects the message catalog ("ru" or "en").
	Language string `yaml:"language,omitempty"`

	// SiteName is the brand appended to titles.
	SiteName string `yaml:"siteName,omitempty"`

	// Description is the fallback page description.
	Description string `yaml:"description,omitempty"`
}

// File represents the structure of the .sitenav configuration file.
type File struct {
	// Sites maps hosts (e.g., "mediasyncbot.example") to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every host unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Contact configures contact form delivery.
	Contact ContactConfig `yaml:"contact,omitempty"`

	// UI configures user-visible text.
	UI UIConfig `yaml:"ui,omitempty"`
}

// GetSiteConfig returns the configuration for a host merged over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	if siteConfig, ok := cf.Sites[host]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.Entry != "" {
			result.Entry = siteConfig.Entry
		}
		if siteConfig.ContentSelector != "" {
			result.ContentSelector = siteConfig.ContentSelector
		}
		if siteConfig.Origin != "" {
			result.Origin = siteConfig.Origin
		}
		if len(siteConfig.Headers) > 0 {
			merged := make(map[string]string, len(result.Headers)+len(siteConfig.Headers))
			for k, v := range result.Headers {
				merged[k] = v
			}
			for k, v := range siteConfig.Headers {
				merged[k] = v
			}
			result.Headers = merged
		}
		if len(siteConfig.IgnorePatterns) > 0 {
			result.IgnorePatterns = siteConfig.IgnorePatterns
		}
	}

	return result
}
