package fetch

import (
	"context"
	"errors"
	"net/url"
	"os"
	"strings"
)

// Fetcher retrieves the raw document for a page URL relative to the site root.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Response, error)
}

// Response is a fetched document.
type Response struct {
	// URL is the page URL as requested.
	URL string
	// Status is the HTTP status code (synthesized for DirFetcher).
	Status int
	// ContentType is the Content-Type of the document.
	ContentType string
	// Body is the document. HTTPFetcher rejects bodies over its size limit.
	Body []byte
}

// OK reports whether Status is in the 2xx range.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, pageURL string) (*Response, error)

// Fetch calls f(ctx, pageURL).
func (f FetcherFunc) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	return f(ctx, pageURL)
}

// ErrInvalidProxyAddress is returned when the proxy address is not "host:port".
var ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

// ErrBodyTooLarge is returned when a response body exceeds the configured
// maximum size.
var ErrBodyTooLarge = errors.New("response body exceeds the maximum size")

// ErrUnsupportedSite is returned by New for a site that is neither an
// http(s) URL nor an existing directory.
var ErrUnsupportedSite = errors.New("site must be an http(s) URL or a directory")

// New returns an HTTPFetcher for http(s) sites and a DirFetcher for
// directories. Options only apply to HTTPFetcher.
func New(site string, opts ...HTTPOption) (Fetcher, error) {
	if strings.HasPrefix(site, "http://") || strings.HasPrefix(site, "https://") {
		return NewHTTPFetcher(site, opts...)
	}
	info, err := os.Stat(site)
	if err != nil || !info.IsDir() {
		return nil, ErrUnsupportedSite
	}
	return NewDirFetcher(os.DirFS(site)), nil
}

// Host returns the host of an http(s) site, or "" for a directory site.
func Host(site string) string {
	u, err := url.Parse(site)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.Host
}
