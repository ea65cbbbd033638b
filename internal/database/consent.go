package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nao1215/sitenav/internal/consent"
	"github.com/nao1215/sitenav/internal/model"
)

// LoadConsent returns the stored choice of sessionID or consent.ErrNoConsent.
func (sdb *SiteDB) LoadConsent(ctx context.Context, sessionID string) (*model.ConsentRecord, error) {
	query := `
	SELECT settings, updated_at FROM consents
	WHERE session_id = ?
	`

	var settingsJSON, updatedAt string
	err := sdb.db.QueryRowContext(ctx, query, sessionID).Scan(&settingsJSON, &updatedAt)
	if isNoRows(err) {
		return nil, consent.ErrNoConsent
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load consent: %w", err)
	}

	rec := &model.ConsentRecord{SessionID: sessionID}
	if err := json.Unmarshal([]byte(settingsJSON), &rec.Settings); err != nil {
		return nil, fmt.Errorf("failed to parse consent settings: %w", err)
	}
	rec.Settings = rec.Settings.Normalize()
	rec.UpdatedAt = parseTimestamp(updatedAt)

	return rec, nil
}

// SaveConsent stores record, replacing any previous choice of the session.
func (sdb *SiteDB) SaveConsent(ctx context.Context, record *model.ConsentRecord) error {
	settingsJSON, err := json.Marshal(record.Settings.Normalize())
	if err != nil {
		return fmt.Errorf("failed to serialize consent settings: %w", err)
	}

	query := `
	INSERT INTO consents (session_id, settings, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		settings = excluded.settings,
		updated_at = excluded.updated_at
	`

	_, err = sdb.db.ExecContext(ctx, query,
		record.SessionID,
		string(settingsJSON),
		sdb.formatTimestamp(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save consent: %w", err)
	}

	return nil
}

// DeleteConsent forgets the choice of sessionID. Deleting a missing
// choice is not an error.
func (sdb *SiteDB) DeleteConsent(ctx context.Context, sessionID string) error {
	if _, err := sdb.db.ExecContext(ctx, "DELETE FROM consents WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete consent: %w", err)
	}
	return nil
}
