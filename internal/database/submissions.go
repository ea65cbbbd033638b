package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nao1215/sitenav/internal/model"
)

// SaveSubmission stores s. Saving the same ID twice updates the delivery
// outcome.
func (sdb *SiteDB) SaveSubmission(ctx context.Context, s *model.Submission) error {
	query := `
	INSERT INTO submissions (id, name, email, subject, message, source, channel, delivered, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		channel = excluded.channel,
		delivered = excluded.delivered
	`

	_, err := sdb.db.ExecContext(ctx, query,
		s.ID,
		s.Name,
		s.Email,
		s.Subject,
		s.Message,
		s.Source,
		string(s.Channel),
		boolToInt(s.Delivered),
		sdb.formatTimestamp(s.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}

	return nil
}

// GetSubmission returns the submission with id, or nil if there is none.
func (sdb *SiteDB) GetSubmission(ctx context.Context, id string) (*model.Submission, error) {
	query := `
	SELECT id, name, email, subject, message, source, channel, delivered, timestamp
	FROM submissions
	WHERE id = ?
	`

	s, err := scanSubmission(sdb.db.QueryRowContext(ctx, query, id))
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return s, nil
}

// ListSubmissions returns submissions newest first. A limit <= 0 means no
// limit. When undelivered is true only submissions no channel accepted are
// returned.
func (sdb *SiteDB) ListSubmissions(ctx context.Context, limit int, undelivered bool) ([]*model.Submission, error) {
	query := `
	SELECT id, name, email, subject, message, source, channel, delivered, timestamp
	FROM submissions
	`
	args := make([]any, 0, 1)

	if undelivered {
		query += " WHERE delivered = 0"
	}
	query += " ORDER BY timestamp DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := sdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var results []*model.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		results = append(results, s)
	}

	return results, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*model.Submission, error) {
	var (
		s               model.Submission
		source, channel sql.NullString
		delivered       int
		timestamp       string
	)

	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Email,
		&s.Subject,
		&s.Message,
		&source,
		&channel,
		&delivered,
		&timestamp,
	)
	if err != nil {
		return nil, err
	}

	s.Source = source.String
	s.Channel = model.Channel(channel.String)
	s.Delivered = delivered != 0
	s.Timestamp = parseTimestamp(timestamp)
	return &s, nil
}
