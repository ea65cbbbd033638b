package model

import "time"

// VisitStatus is the outcome of a Load.
type VisitStatus string

const (
	// VisitOK means the fragment was rendered.
	VisitOK VisitStatus = "ok"

	// VisitFailed means the error placeholder was rendered instead.
	VisitFailed VisitStatus = "failed"

	// VisitSuperseded means a newer Load started before this one rendered.
	VisitSuperseded VisitStatus = "superseded"
)

// Visit is one Load performed by the navigator.
type Visit struct {
	// ID is assigned by the store. Zero for unsaved visits.
	ID int64 `json:"id,omitempty"`

	// SessionID identifies the navigator session that performed the Load.
	SessionID string `json:"session_id"`

	// URL is the normalized page URL.
	URL string `json:"url"`

	// Title is the document title after the swap.
	Title string `json:"title,omitempty"`

	// Description is the og:description after the swap.
	Description string `json:"description,omitempty"`

	// FromCache is true when no fetch was needed.
	FromCache bool `json:"from_cache"`

	// Animated is true for user navigations.
	Animated bool `json:"animated"`

	// Status is the outcome of the Load.
	Status VisitStatus `json:"status"`

	// Error is the failure message for failed Loads.
	Error string `json:"error,omitempty"`

	// Elapsed is how long the Load took.
	Elapsed time.Duration `json:"elapsed"`

	// Timestamp is when the Load finished.
	Timestamp time.Time `json:"timestamp"`
}

// OK reports whether the visit rendered its page.
func (v *Visit) OK() bool {
	return v.Status == VisitOK
}
