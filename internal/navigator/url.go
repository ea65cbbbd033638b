package navigator

import (
	"path/filepath"
	"strings"
)

// NormalizeURL appends ".html" to a URL without any ".".
func NormalizeURL(url string) string {
	if !strings.HasSuffix(url, ".html") && !strings.Contains(url, ".") {
		return url + ".html"
	}
	return url
}

// landingPage returns the last path segment of location, or home when the
// location ends in "/" or is empty.
func landingPage(location, home string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	if i := strings.LastIndex(location, "/"); i >= 0 {
		location = location[i+1:]
	}
	if location == "" {
		return home
	}
	return location
}

// Intercept reports whether a click on a link with the given href is handled
// by the navigator. External links, mailto: and tel: links, in-page anchors,
// the javascript:void(0) placeholder and hrefs matching an ignore pattern are
// left to the browser, as is anything that is neither a ".html" file nor an
// extensionless path.
func (n *Navigator) Intercept(href string) bool {
	if href == "" ||
		strings.HasPrefix(href, "http") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "#") ||
		href == "javascript:void(0)" {
		return false
	}

	for _, pattern := range n.ignorePatterns {
		if matchPattern(pattern, href) {
			return false
		}
	}

	return strings.HasSuffix(href, ".html") || !strings.Contains(href, ".")
}

// matchPattern checks if a link path matches a glob pattern.
// "/downloads/*" matches everything below /downloads, "*.pdf" matches by
// extension, other patterns use filepath.Match against the path and, for
// patterns without "/", against the file name.
func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(path, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}

	return false
}
