package navigator

import (
	"errors"
	"fmt"
)

// ErrNoRetry is returned by Retry when the main region shows no error
// placeholder.
var ErrNoRetry = errors.New("no failed page to retry")

// FetchError is returned when a page could not be fetched or the response
// status was not 2xx.
type FetchError struct {
	URL string

	// Status is the HTTP status, zero for transport failures.
	Status int

	// Err is the transport error, nil for status failures.
	Err error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.Status)
}

// Unwrap returns the transport error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ContentMissingError is returned when a fetched document has no main
// content region.
type ContentMissingError struct {
	URL      string
	Selector string
}

func (e *ContentMissingError) Error() string {
	return fmt.Sprintf("%s: no main content found (selector %q)", e.URL, e.Selector)
}

// RenderTargetMissingError is returned when the live page has no main
// content region to render into.
type RenderTargetMissingError struct {
	Selector string
}

func (e *RenderTargetMissingError) Error() string {
	return fmt.Sprintf("no main element found in the live page (selector %q)", e.Selector)
}
