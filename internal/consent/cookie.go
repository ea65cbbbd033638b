package consent

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/sitenav/internal/model"
)

// CookieName is the name of the consent cookie.
const CookieName = "cookie_consent"

// CookieLifetime is how long a consent cookie is kept.
const CookieLifetime = 365 * 24 * time.Hour

// ErrMalformedCookie is returned when a consent cookie cannot be decoded.
var ErrMalformedCookie = errors.New("malformed consent cookie")

// EncodeCookie returns the consent cookie storing s, expiring
// CookieLifetime after now.
func EncodeCookie(s model.ConsentSettings, now time.Time) *http.Cookie {
	// Marshalling three booleans cannot fail.
	data, _ := json.Marshal(s.Normalize())
	return &http.Cookie{
		Name:     CookieName,
		Value:    url.QueryEscape(string(data)),
		Path:     "/",
		Expires:  now.Add(CookieLifetime).UTC(),
		MaxAge:   int(CookieLifetime / time.Second),
		SameSite: http.SameSiteStrictMode,
	}
}

// ExpiredCookie returns a cookie that erases the consent cookie.
func ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:   CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}
}

// DecodeCookie parses a consent cookie value. Both query-escaped and raw
// JSON values are accepted, since browsers store whatever the page wrote.
func DecodeCookie(value string) (model.ConsentSettings, error) {
	raw := value
	if !strings.HasPrefix(raw, "{") {
		unescaped, err := url.QueryUnescape(raw)
		if err != nil {
			return model.ConsentSettings{}, fmt.Errorf("%w: %w", ErrMalformedCookie, err)
		}
		raw = unescaped
	}

	var s model.ConsentSettings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return model.ConsentSettings{}, fmt.Errorf("%w: %w", ErrMalformedCookie, err)
	}
	return s.Normalize(), nil
}

// FromRequest returns the consent stored in the request's cookie. ok is
// false when the request carries no consent cookie.
func FromRequest(r *http.Request) (s model.ConsentSettings, ok bool, err error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return model.ConsentSettings{}, false, nil
	}
	s, err = DecodeCookie(c.Value)
	if err != nil {
		return model.ConsentSettings{}, false, err
	}
	return s, true, nil
}
