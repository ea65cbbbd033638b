package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPFetcher fetches pages from an http(s) site.
type HTTPFetcher struct {
	base *url.URL

	client *http.Client

	// headers are added to every request.
	headers map[string]string

	// cookie is sent as the Cookie header when non-empty.
	cookie string

	userAgent string

	maxBodySize int64

	timeout time.Duration

	proxyAddress string
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithHeaders adds custom headers to every request.
func WithHeaders(headers map[string]string) HTTPOption {
	return func(f *HTTPFetcher) {
		for k, v := range headers {
			f.headers[k] = v
		}
	}
}

// WithCookie sets the Cookie header sent with every request.
func WithCookie(cookie string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.cookie = cookie
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the largest accepted response body; a longer page
// fails with ErrBodyTooLarge. Zero or negative means no limit.
func WithMaxBodySize(size int64) HTTPOption {
	return func(f *HTTPFetcher) {
		f.maxBodySize = size
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

// WithProxy routes requests through the SOCKS5 proxy at address ("host:port").
func WithProxy(address string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.proxyAddress = address
	}
}

// WithHTTPClient replaces the HTTP client. WithTimeout and WithProxy are
// ignored when a client is given.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// NewHTTPFetcher creates a fetcher for the site rooted at baseURL.
// Page URLs are resolved against baseURL, which is treated as a directory.
func NewHTTPFetcher(baseURL string, opts ...HTTPOption) (*HTTPFetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid site URL %q: %w", baseURL, ErrUnsupportedSite)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	f := &HTTPFetcher{
		base:        u,
		headers:     make(map[string]string),
		maxBodySize: 5 * 1024 * 1024,
		timeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		client := &http.Client{
			Timeout: f.timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
		if f.proxyAddress != "" {
			transport, err := newProxyTransport(f.proxyAddress)
			if err != nil {
				return nil, err
			}
			client.Transport = transport
		}
		f.client = client
	}

	return f, nil
}

// Base returns the site root every page URL is resolved against.
func (f *HTTPFetcher) Base() string {
	return f.base.String()
}

// Resolve returns the absolute URL of a page.
func (f *HTTPFetcher) Resolve(pageURL string) (string, error) {
	ref, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	return f.base.ResolveReference(ref).String(), nil
}

// Fetch performs a GET for pageURL.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	target, err := f.Resolve(pageURL)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", pageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if f.maxBodySize > 0 {
		// One byte past the limit tells a page of exactly maxBodySize
		// bytes from a longer one.
		reader = io.LimitReader(resp.Body, f.maxBodySize+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if f.maxBodySize > 0 && int64(len(body)) > f.maxBodySize {
		return nil, fmt.Errorf("%s: %w (%d bytes)", pageURL, ErrBodyTooLarge, f.maxBodySize)
	}

	return &Response{
		URL:         pageURL,
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
