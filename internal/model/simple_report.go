package model

import "time"

// SimpleReport is a summarized, human-readable view of a TourReport.
type SimpleReport struct {
	// Site is the toured base URL or directory.
	Site string `json:"site"`

	// DateToured is when the tour started.
	DateToured time.Time `json:"date_toured"`

	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`
	InfoCount     int `json:"info_count"`

	// Findings contains all findings, most severe first.
	Findings []Finding `json:"findings,omitempty"`

	// PagesVisited is the number of pages loaded.
	PagesVisited int `json:"pages_visited"`

	// PagesFailed is the number of pages that did not render.
	PagesFailed int `json:"pages_failed"`

	// Fetches is the number of fetches made during the tour.
	Fetches int `json:"fetches"`

	// TimedOut indicates the tour was stopped by its deadline.
	TimedOut bool `json:"timed_out"`

	// Error contains any error message if the tour failed.
	Error string `json:"error,omitempty"`
}

// Finding represents a single finding in a report.
type Finding struct {
	// Type is the finding type identifier (see severity.go).
	Type string `json:"type"`

	// Severity is the impact level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Impact explains what visitors experience.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to address this finding.
	Recommendation string `json:"recommendation,omitempty"`

	// Value is the specific value found (link target, error text, title).
	Value string `json:"value,omitempty"`

	// Location is the page where the finding was made.
	Location string `json:"location,omitempty"`
}

// NewSimpleReport summarizes report.
func NewSimpleReport(report *TourReport) *SimpleReport {
	report.SortFindings()

	simple := &SimpleReport{
		Site:         report.Site,
		DateToured:   report.DateToured,
		PagesVisited: len(report.Pages),
		PagesFailed:  len(report.FailedPages()),
		Fetches:      report.Fetches,
		TimedOut:     report.TimedOut,
		Findings:     report.Findings,
	}
	if report.Error != nil {
		simple.Error = report.Error.Error()
	}

	simple.countBySeverity()
	return simple
}

// countBySeverity counts findings by severity level.
func (s *SimpleReport) countBySeverity() {
	for _, f := range s.Findings {
		switch f.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		case SeverityInfo:
			s.InfoCount++
		}
	}
}

// TotalFindings returns the total number of findings.
func (s *SimpleReport) TotalFindings() int {
	return len(s.Findings)
}

// HasFindings returns true if there are any findings.
func (s *SimpleReport) HasFindings() bool {
	return len(s.Findings) > 0
}

// GetFindingsBySeverity returns findings filtered by severity.
func (s *SimpleReport) GetFindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range s.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}
