package fetch

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"
)

func TestHTTPFetcher(t *testing.T) {
	t.Parallel()

	t.Run("fetches relative to base and sends headers", func(t *testing.T) {
		t.Parallel()

		var gotPath, gotCookie, gotUA, gotHeader string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotCookie = r.Header.Get("Cookie")
			gotUA = r.Header.Get("User-Agent")
			gotHeader = r.Header.Get("X-Site")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<main>ok</main>"))
		}))
		defer srv.Close()

		f, err := NewHTTPFetcher(srv.URL+"/site",
			WithCookie("lang=ru"),
			WithUserAgent("sitenav-test"),
			WithHeaders(map[string]string{"X-Site": "1"}),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		resp, err := f.Fetch(t.Context(), "docs/guide.html")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !resp.OK() || string(resp.Body) != "<main>ok</main>" {
			t.Errorf("unexpected response: %+v", resp)
		}
		if gotPath != "/site/docs/guide.html" {
			t.Errorf("expected /site/docs/guide.html, got %q", gotPath)
		}
		if gotCookie != "lang=ru" || gotUA != "sitenav-test" || gotHeader != "1" {
			t.Errorf("headers not sent: cookie=%q ua=%q x-site=%q", gotCookie, gotUA, gotHeader)
		}
		if resp.URL != "docs/guide.html" {
			t.Errorf("expected response URL to be the page URL, got %q", resp.URL)
		}
	})

	t.Run("non-2xx is not an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		f, err := NewHTTPFetcher(srv.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp, err := f.Fetch(t.Context(), "missing.html")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.OK() || resp.Status != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.Status)
		}
	})

	t.Run("body over the size limit is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("0123456789"))
		}))
		defer srv.Close()

		f, err := NewHTTPFetcher(srv.URL, WithMaxBodySize(4))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp, err := f.Fetch(t.Context(), "x.html")
		if !errors.Is(err, ErrBodyTooLarge) {
			t.Fatalf("expected ErrBodyTooLarge, got %v", err)
		}
		if resp != nil {
			t.Errorf("expected no response, got body %q", resp.Body)
		}
	})

	t.Run("body of exactly the size limit is accepted", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("0123"))
		}))
		defer srv.Close()

		f, err := NewHTTPFetcher(srv.URL, WithMaxBodySize(4))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp, err := f.Fetch(t.Context(), "x.html")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(resp.Body) != "0123" {
			t.Errorf("expected the whole body, got %q", resp.Body)
		}
	})

	t.Run("timeout surfaces as error", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		f, err := NewHTTPFetcher(srv.URL, WithTimeout(50*time.Millisecond))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := f.Fetch(t.Context(), "slow.html"); err == nil {
			t.Error("expected timeout error")
		}
	})

	t.Run("rejects non-http base", func(t *testing.T) {
		t.Parallel()

		if _, err := NewHTTPFetcher("ftp://example.com"); !errors.Is(err, ErrUnsupportedSite) {
			t.Errorf("expected ErrUnsupportedSite, got %v", err)
		}
	})

	t.Run("invalid proxy address", func(t *testing.T) {
		t.Parallel()

		if _, err := NewHTTPFetcher("http://example.com", WithProxy("127.0.0.1")); !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})

	t.Run("valid proxy address", func(t *testing.T) {
		t.Parallel()

		f, err := NewHTTPFetcher("http://example.com", WithProxy("127.0.0.1:1080"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.client.Transport == nil {
			t.Error("expected proxy transport")
		}
	})
}

func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"127.0.0.1:9050": true,
		"localhost:1080": true,
		"[::1]:1080":     true,
		"127.0.0.1":      false,
		":1080":          false,
		"host:0":         false,
		"host:65536":     false,
		"host:abc":       false,
		"":               false,
	}
	for addr, want := range tests {
		if got := isValidProxyAddress(addr); got != want {
			t.Errorf("isValidProxyAddress(%q) = %v, want %v", addr, got, want)
		}
	}
}

func TestDirFetcher(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"index.html":      {Data: []byte("<main>home</main>")},
		"docs/guide.html": {Data: []byte("<main>guide</main>")},
	}
	f := NewDirFetcher(fsys)

	tests := []struct {
		name       string
		url        string
		wantStatus int
		wantBody   string
	}{
		{name: "existing page", url: "docs/guide.html", wantStatus: http.StatusOK, wantBody: "<main>guide</main>"},
		{name: "leading slash", url: "/index.html", wantStatus: http.StatusOK, wantBody: "<main>home</main>"},
		{name: "query is ignored", url: "index.html?x=1", wantStatus: http.StatusOK, wantBody: "<main>home</main>"},
		{name: "empty is index", url: "", wantStatus: http.StatusOK, wantBody: "<main>home</main>"},
		{name: "missing page", url: "missing.html", wantStatus: http.StatusNotFound},
		{name: "escaping path", url: "../secret.html", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, err := f.Fetch(t.Context(), tt.url)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, resp.Status)
			}
			if string(resp.Body) != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, resp.Body)
			}
		})
	}

	t.Run("html content type", func(t *testing.T) {
		t.Parallel()

		resp, err := f.Fetch(t.Context(), "index.html")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.ContentType != "text/html; charset=utf-8" {
			t.Errorf("unexpected content type %q", resp.ContentType)
		}
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	if _, err := New("http://example.com"); err != nil {
		t.Errorf("expected http site to be accepted: %v", err)
	}
	f, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("expected directory site to be accepted: %v", err)
	}
	if _, ok := f.(*DirFetcher); !ok {
		t.Errorf("expected *DirFetcher, got %T", f)
	}
	if _, err := New("/nonexistent/site"); !errors.Is(err, ErrUnsupportedSite) {
		t.Errorf("expected ErrUnsupportedSite, got %v", err)
	}
	if Host("https://mediasyncbot.example/x") != "mediasyncbot.example" || Host("./site") != "" {
		t.Error("unexpected Host result")
	}
}
