package model

import "time"

// ConsentSettings is a visitor's cookie-consent choice.
// Necessary cookies cannot be declined; Normalize enforces it.
type ConsentSettings struct {
	Necessary  bool `json:"necessary"`
	Analytics  bool `json:"analytics"`
	Functional bool `json:"functional"`
}

// AllCookies accepts every category.
func AllCookies() ConsentSettings {
	return ConsentSettings{Necessary: true, Analytics: true, Functional: true}
}

// NecessaryOnly declines every optional category.
func NecessaryOnly() ConsentSettings {
	return ConsentSettings{Necessary: true}
}

// Normalize returns s with Necessary set.
func (s ConsentSettings) Normalize() ConsentSettings {
	s.Necessary = true
	return s
}

// ConsentRecord is a stored consent choice.
type ConsentRecord struct {
	// SessionID identifies the visitor (the navigator session or a browser
	// supplied identifier).
	SessionID string `json:"session_id"`

	Settings ConsentSettings `json:"settings"`

	// UpdatedAt is when the choice was last saved.
	UpdatedAt time.Time `json:"updated_at"`
}
