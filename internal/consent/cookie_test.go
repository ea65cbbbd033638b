package consent

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/sitenav/internal/model"
)

func TestEncodeCookie(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := EncodeCookie(model.ConsentSettings{Analytics: true}, now)

	if c.Name != CookieName {
		t.Errorf("Name = %q, want %q", c.Name, CookieName)
	}
	if c.Path != "/" {
		t.Errorf("Path = %q, want /", c.Path)
	}
	if c.SameSite != http.SameSiteStrictMode {
		t.Errorf("SameSite = %v, want Strict", c.SameSite)
	}
	if want := now.Add(365 * 24 * time.Hour); !c.Expires.Equal(want) {
		t.Errorf("Expires = %v, want %v", c.Expires, want)
	}

	got, err := DecodeCookie(c.Value)
	if err != nil {
		t.Fatal(err)
	}
	want := model.ConsentSettings{Necessary: true, Analytics: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded settings mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCookie(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    model.ConsentSettings
		wantErr bool
	}{
		{
			name:  "raw json",
			value: `{"necessary":true,"analytics":false,"functional":true}`,
			want:  model.ConsentSettings{Necessary: true, Functional: true},
		},
		{
			name:  "escaped json",
			value: "%7B%22necessary%22%3Atrue%2C%22analytics%22%3Atrue%2C%22functional%22%3Afalse%7D",
			want:  model.ConsentSettings{Necessary: true, Analytics: true},
		},
		{
			name:  "necessary forced on",
			value: `{"necessary":false}`,
			want:  model.ConsentSettings{Necessary: true},
		},
		{name: "garbage", value: "yes", wantErr: true},
		{name: "bad escape", value: "%zz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := DecodeCookie(tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedCookie) {
					t.Fatalf("DecodeCookie(%q) error = %v, want ErrMalformedCookie", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DecodeCookie() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFromRequest(t *testing.T) {
	t.Parallel()

	t.Run("no cookie", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		_, ok, err := FromRequest(r)
		if ok || err != nil {
			t.Errorf("FromRequest() = ok %v, err %v; want false, nil", ok, err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(EncodeCookie(model.NecessaryOnly(), time.Now()))
		s, ok, err := FromRequest(r)
		if err != nil || !ok {
			t.Fatalf("FromRequest() = ok %v, err %v", ok, err)
		}
		if diff := cmp.Diff(model.NecessaryOnly(), s); diff != "" {
			t.Errorf("settings mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "nope"})
		if _, _, err := FromRequest(r); !errors.Is(err, ErrMalformedCookie) {
			t.Errorf("FromRequest() error = %v, want ErrMalformedCookie", err)
		}
	})
}

func TestExpiredCookie(t *testing.T) {
	t.Parallel()

	c := ExpiredCookie()
	if c.Name != CookieName || c.MaxAge >= 0 {
		t.Errorf("ExpiredCookie() = %+v", c)
	}
}
