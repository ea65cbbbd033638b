package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nao1215/sitenav/internal/model"
)

// RecordVisit stores v and sets its ID.
func (sdb *SiteDB) RecordVisit(ctx context.Context, v *model.Visit) error {
	query := `
	INSERT INTO visits (session_id, url, title, description, from_cache, animated, status, error, elapsed_ms, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sdb.db.ExecContext(ctx, query,
		v.SessionID,
		v.URL,
		v.Title,
		v.Description,
		boolToInt(v.FromCache),
		boolToInt(v.Animated),
		string(v.Status),
		v.Error,
		v.Elapsed.Milliseconds(),
		sdb.formatTimestamp(v.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read visit id: %w", err)
	}
	v.ID = id
	return nil
}

// ListVisits returns the most recent visits, newest first.
// An empty sessionID lists every session. A limit <= 0 means no limit.
func (sdb *SiteDB) ListVisits(ctx context.Context, sessionID string, limit int) ([]model.Visit, error) {
	query := `
	SELECT id, session_id, url, title, description, from_cache, animated, status, error, elapsed_ms, timestamp
	FROM visits
	WHERE 1=1
	`
	args := make([]any, 0, 2)

	if sessionID != "" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}

	query += " ORDER BY timestamp DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []model.Visit
	for rows.Next() {
		var (
			v                   model.Visit
			title, description  sql.NullString
			errText             sql.NullString
			fromCache, animated int
			status, timestamp   string
			elapsedMS           int64
		)

		err := rows.Scan(
			&v.ID,
			&v.SessionID,
			&v.URL,
			&title,
			&description,
			&fromCache,
			&animated,
			&status,
			&errText,
			&elapsedMS,
			&timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}

		v.Title = title.String
		v.Description = description.String
		v.FromCache = fromCache != 0
		v.Animated = animated != 0
		v.Status = model.VisitStatus(status)
		v.Error = errText.String
		v.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		v.Timestamp = parseTimestamp(timestamp)
		visits = append(visits, v)
	}

	return visits, rows.Err()
}

// SessionSummary aggregates the visits of one session.
type SessionSummary struct {
	SessionID string
	Visits    int
	Failed    int
	FirstSeen time.Time
	LastSeen  time.Time
}

// ListSessions summarizes every recorded session, most recent first.
func (sdb *SiteDB) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	query := `
	SELECT session_id,
		COUNT(*),
		SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
		MIN(timestamp),
		MAX(timestamp)
	FROM visits
	GROUP BY session_id
	ORDER BY MAX(timestamp) DESC
	`

	rows, err := sdb.db.QueryContext(ctx, query, string(model.VisitFailed))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionSummary
	for rows.Next() {
		var s SessionSummary
		var first, last string
		if err := rows.Scan(&s.SessionID, &s.Visits, &s.Failed, &first, &last); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.FirstSeen = parseTimestamp(first)
		s.LastSeen = parseTimestamp(last)
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}
