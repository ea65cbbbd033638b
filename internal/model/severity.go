package model

// Severity represents how much a tour finding hurts navigation.
type Severity int

const (
	// SeverityInfo indicates informational findings.
	// Examples: external links, links left to the browser.
	SeverityInfo Severity = iota

	// SeverityLow indicates cosmetic issues.
	// Examples: a page without a heading, so the default title is used.
	SeverityLow

	// SeverityMedium indicates issues a visitor will notice.
	// Examples: links to pages that fail to load, failing page scripts.
	SeverityMedium

	// SeverityHigh indicates pages that cannot be navigated to.
	// Examples: 404 responses, documents without a main region.
	SeverityHigh

	// SeverityCritical indicates the navigator cannot render anything.
	// Example: the layout document has no main region to swap into.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Finding types reported by a tour.
const (
	FindingRenderTargetMissing = "render_target_missing"
	FindingFetchFailed         = "fetch_failed"
	FindingContentMissing      = "content_missing"
	FindingBrokenLink          = "broken_link"
	FindingStepFailed          = "step_failed"
	FindingMissingHeading      = "missing_heading"
	FindingMissingDescription  = "missing_description"
	FindingDuplicateTitle      = "duplicate_title"
	FindingExternalLink        = "external_link"
	FindingBrowserLink         = "browser_link"
	FindingBrokenAnchor        = "broken_anchor"
	FindingEmailAddress        = "email_address"
)

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

var findingInfoMapping = map[string]FindingInfo{
	FindingRenderTargetMissing: {
		Severity:       SeverityCritical,
		Impact:         "The layout document has no main content region, so no page can be rendered.",
		Recommendation: "Add the main content element to the layout or fix the configured content selector.",
	},
	FindingFetchFailed: {
		Severity:       SeverityHigh,
		Impact:         "The page could not be fetched; visitors see the error placeholder.",
		Recommendation: "Restore the page or remove links pointing to it.",
	},
	FindingContentMissing: {
		Severity:       SeverityHigh,
		Impact:         "The page has no main content region, so navigation to it always fails.",
		Recommendation: "Wrap the page content in the main content element.",
	},
	FindingBrokenLink: {
		Severity:       SeverityMedium,
		Impact:         "A navigation link leads to a page that fails to load.",
		Recommendation: "Fix the link target or the target page.",
	},
	FindingStepFailed: {
		Severity:       SeverityMedium,
		Impact:         "A post-navigation initializer failed; parts of the page may not respond.",
		Recommendation: "Check the page markup the initializer expects.",
	},
	FindingMissingHeading: {
		Severity:       SeverityLow,
		Impact:         "The page has no heading, so the document title falls back to the site name.",
		Recommendation: "Add an h1 to the page content.",
	},
	FindingMissingDescription: {
		Severity:       SeverityLow,
		Impact:         "The page has no subtitle, so the default description is published.",
		Recommendation: "Add a page subtitle or a section header paragraph.",
	},
	FindingBrokenAnchor: {
		Severity:       SeverityLow,
		Impact:         "An in-page anchor points to an element that does not exist, so the click does nothing.",
		Recommendation: "Add the missing id or fix the anchor.",
	},
	FindingDuplicateTitle: {
		Severity:       SeverityLow,
		Impact:         "Several pages share a title, which makes history entries and shares ambiguous.",
		Recommendation: "Give every page a distinct heading.",
	},
	FindingExternalLink: {
		Severity:       SeverityInfo,
		Impact:         "The page links to another site; the link is never intercepted.",
		Recommendation: "No action needed.",
	},
	FindingEmailAddress: {
		Severity:       SeverityInfo,
		Impact:         "The address is published in the page and can be harvested.",
		Recommendation: "No action needed if the address is meant to be public.",
	},
	FindingBrowserLink: {
		Severity:       SeverityInfo,
		Impact:         "The link targets a non-page resource and triggers a full page load.",
		Recommendation: "No action needed unless the target should be a page.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Returns SeverityInfo if the finding type is not in the mapping.
func GetSeverity(findingType string) Severity {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetFindingInfo returns the full finding information for a finding type.
// Returns a default FindingInfo with SeverityInfo if the type is not in the mapping.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown finding type. Review manually.",
		Recommendation: "Investigate the finding.",
	}
}
