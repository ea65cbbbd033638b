package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nao1215/sitenav/internal/consent"
	"github.com/nao1215/sitenav/internal/contact"
	"github.com/nao1215/sitenav/internal/fragment"
	"github.com/nao1215/sitenav/internal/model"
	"github.com/nao1215/sitenav/internal/navigator"
)

// SessionCookieName identifies a visitor across consent requests.
const SessionCookieName = "sitenav_session"

// maxRequestBody limits JSON request bodies.
const maxRequestBody = 64 << 10

// errorResponse is the body of every API error.
type errorResponse struct {
	Error string `json:"error"`
}

// ConsentResponse is returned by the consent endpoints.
type ConsentResponse struct {
	Settings model.ConsentSettings `json:"settings"`

	// Stored is false when the visitor has not chosen yet.
	Stored bool `json:"stored"`

	// Source is where the settings came from: "cookie", "store" or
	// "default".
	Source string `json:"source"`
}

// FragmentResponse is returned by the fragment endpoint.
type FragmentResponse struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// handleContact validates and delivers a contact form submission.
// Invalid forms are answered with 422 and the field errors.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if s.contact == nil {
		writeError(w, http.StatusServiceUnavailable, "contact delivery is not configured")
		return
	}

	var form contact.Form
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := s.contact.Submit(r.Context(), form)
	if err != nil {
		s.logger.Warn("contact submission failed", "error", err)
		writeError(w, http.StatusInternalServerError, "submission failed")
		return
	}
	if !out.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, out)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// sessionID returns the visitor's session id, issuing one when the request
// carries none.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		Expires:  s.now().Add(consent.CookieLifetime),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return id
}

// handleGetConsent returns the visitor's consent: the cookie wins, then the
// store; without either the visitor has not chosen yet.
func (s *Server) handleGetConsent(w http.ResponseWriter, r *http.Request) {
	settings, ok, err := consent.FromRequest(r)
	if err != nil {
		s.logger.Debug("discarding malformed consent cookie", "error", err)
		http.SetCookie(w, consent.ExpiredCookie())
	}
	if ok {
		writeJSON(w, http.StatusOK, ConsentResponse{Settings: settings, Stored: true, Source: "cookie"})
		return
	}

	if s.consent != nil {
		rec, err := s.consent.LoadConsent(r.Context(), s.sessionID(w, r))
		switch {
		case err == nil:
			http.SetCookie(w, consent.EncodeCookie(rec.Settings, s.now()))
			writeJSON(w, http.StatusOK, ConsentResponse{Settings: rec.Settings, Stored: true, Source: "store"})
			return
		case !errors.Is(err, consent.ErrNoConsent):
			s.logger.Warn("failed to load consent", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to load consent")
			return
		}
	}

	writeJSON(w, http.StatusOK, ConsentResponse{Settings: model.NecessaryOnly(), Source: "default"})
}

// handleSaveConsent stores the posted settings in the cookie and the store.
func (s *Server) handleSaveConsent(w http.ResponseWriter, r *http.Request) {
	var settings model.ConsentSettings
	if err := decodeJSON(w, r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	settings = settings.Normalize()
	now := s.now()

	if s.consent != nil {
		rec := &model.ConsentRecord{
			SessionID: s.sessionID(w, r),
			Settings:  settings,
			UpdatedAt: now,
		}
		if err := s.consent.SaveConsent(r.Context(), rec); err != nil {
			s.logger.Warn("failed to save consent", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to save consent")
			return
		}
	}

	http.SetCookie(w, consent.EncodeCookie(settings, now))
	writeJSON(w, http.StatusOK, ConsentResponse{Settings: settings, Stored: true, Source: "cookie"})
}

// handleDeleteConsent forgets the visitor's choice.
func (s *Server) handleDeleteConsent(w http.ResponseWriter, r *http.Request) {
	if s.consent != nil {
		if err := s.consent.DeleteConsent(r.Context(), s.sessionID(w, r)); err != nil {
			s.logger.Warn("failed to delete consent", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to delete consent")
			return
		}
	}
	http.SetCookie(w, consent.ExpiredCookie())
	w.WriteHeader(http.StatusNoContent)
}

// handleFragment returns the processed main region of a page, the same
// fragment the navigator caches.
func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	url := navigator.NormalizeURL(chi.URLParam(r, "page"))

	resp, err := s.pages.Fetch(r.Context(), url)
	if err != nil {
		s.logger.Warn("failed to read page", "url", url, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read page")
		return
	}
	if !resp.OK() {
		writeError(w, resp.Status, http.StatusText(resp.Status))
		return
	}

	html, err := fragment.Extract(bytes.NewReader(resp.Body), url, s.cfg.ContentSelector)
	if err != nil {
		if errors.Is(err, fragment.ErrNoContent) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Cache-Control", "max-age=60")
	writeJSON(w, http.StatusOK, FragmentResponse{URL: url, HTML: html})
}
