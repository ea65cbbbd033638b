package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nao1215/sitenav/internal/model"
)

// SaveTourReport saves a complete tour report as JSON and returns its ID.
func (sdb *SiteDB) SaveTourReport(ctx context.Context, report *model.TourReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	simple := model.NewSimpleReport(report)
	riskSummary := map[string]int{
		"critical": simple.CriticalCount,
		"high":     simple.HighCount,
		"medium":   simple.MediumCount,
		"low":      simple.LowCount,
		"info":     simple.InfoCount,
		"pages":    simple.PagesVisited,
		"failed":   simple.PagesFailed,
	}
	riskJSON, _ := json.Marshal(riskSummary) //nolint:errcheck,errchkjson // riskSummary is a simple map; Marshal won't fail

	query := `
	INSERT INTO tour_reports (site, timestamp, report_json, risk_summary)
	VALUES (?, ?, ?, ?)
	`

	result, err := sdb.db.ExecContext(ctx, query,
		report.Site,
		sdb.formatTimestamp(report.DateToured),
		string(reportJSON),
		string(riskJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save tour report: %w", err)
	}

	return result.LastInsertId()
}

// GetLatestTourReport retrieves the most recent tour report for a site,
// or nil if the site was never toured.
func (sdb *SiteDB) GetLatestTourReport(ctx context.Context, site string) (*model.TourReport, error) {
	query := `
	SELECT report_json FROM tour_reports
	WHERE site = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`
	return sdb.queryReport(ctx, query, site)
}

// GetTourReportByID retrieves a tour report by its database ID.
func (sdb *SiteDB) GetTourReportByID(ctx context.Context, id int64) (*model.TourReport, error) {
	return sdb.queryReport(ctx, "SELECT report_json FROM tour_reports WHERE id = ?", id)
}

func (sdb *SiteDB) queryReport(ctx context.Context, query string, arg any) (*model.TourReport, error) {
	var reportJSON string
	err := sdb.db.QueryRowContext(ctx, query, arg).Scan(&reportJSON)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tour report: %w", err)
	}

	var report model.TourReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListTouredSites returns every site with at least one stored report.
func (sdb *SiteDB) ListTouredSites(ctx context.Context) ([]string, error) {
	rows, err := sdb.db.QueryContext(ctx, "SELECT DISTINCT site FROM tour_reports ORDER BY site")
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	return sites, rows.Err()
}

// TourReportMetadata contains summary information about a tour report.
// This is used for displaying tour history without loading the full report.
type TourReportMetadata struct {
	// ID is the unique identifier of the tour report in the database.
	ID int64

	// Site is the toured site.
	Site string

	// Timestamp is when the tour started.
	Timestamp time.Time

	// RiskSummary contains counts of findings by severity level plus the
	// "pages" and "failed" page counts.
	RiskSummary map[string]int
}

// GetTourHistoryWithMetadata retrieves report metadata for a site, newest
// first. An empty site lists every site.
func (sdb *SiteDB) GetTourHistoryWithMetadata(ctx context.Context, site string) ([]TourReportMetadata, error) {
	query := `
	SELECT id, site, timestamp, risk_summary
	FROM tour_reports
	`
	args := make([]any, 0, 1)
	if site != "" {
		query += " WHERE site = ?"
		args = append(args, site)
	}
	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get tour history: %w", err)
	}
	defer rows.Close()

	var results []TourReportMetadata
	for rows.Next() {
		var meta TourReportMetadata
		var timestamp string
		var riskJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Site, &timestamp, &riskJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)

		meta.RiskSummary = make(map[string]int)
		if riskJSON.Valid && riskJSON.String != "" {
			if err := json.Unmarshal([]byte(riskJSON.String), &meta.RiskSummary); err != nil {
				meta.RiskSummary = make(map[string]int)
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}
