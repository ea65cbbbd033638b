package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the name of the database file inside the data directory.
const FileName = "sitenav.db"

// SiteDB provides SQLite-based storage for visits, consent choices,
// contact submissions and tour reports.
//
// A SiteDB satisfies navigator.VisitRecorder, consent.Store and
// contact.SubmissionStore, so one file backs a whole session.
type SiteDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now returns the current time; replaced in tests.
	now func() time.Time
}

// Options configures SiteDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so readers (the history
	// command) do not block the serving process.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a SiteDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*SiteDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &SiteDB{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Path returns the database file path.
func (sdb *SiteDB) Path() string {
	return sdb.dbPath
}

// Close closes the database connection.
func (sdb *SiteDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
// Timestamps are stored as UTC text in timestampLayout so they sort
// lexically.
func (sdb *SiteDB) createTables() error {
	schema := `
	-- Visits store one row per navigator Load
	CREATE TABLE IF NOT EXISTS visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		url TEXT NOT NULL,
		title TEXT,
		description TEXT,
		from_cache INTEGER NOT NULL DEFAULT 0,
		animated INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_visits_session ON visits(session_id);
	CREATE INDEX IF NOT EXISTS idx_visits_url ON visits(url);
	CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);

	-- Consents store the latest cookie choice per session
	CREATE TABLE IF NOT EXISTS consents (
		session_id TEXT PRIMARY KEY,
		settings TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Submissions store contact form messages
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		subject TEXT NOT NULL,
		message TEXT NOT NULL,
		source TEXT,
		channel TEXT,
		delivered INTEGER NOT NULL DEFAULT 0,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_timestamp ON submissions(timestamp);

	-- Tour reports store complete tour results as JSON
	CREATE TABLE IF NOT EXISTS tour_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		report_json TEXT NOT NULL,
		risk_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_site ON tour_reports(site);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON tour_reports(timestamp);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// timestampLayout is how timestamps are written. Always UTC.
const timestampLayout = "2006-01-02 15:04:05.000"

// formatTimestamp formats t for storage, substituting now for the zero time.
func (sdb *SiteDB) formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = sdb.now()
	}
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be read back.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	"2006-01-02 15:04:05",  // SQLite default datetime format
	"2006-01-02T15:04:05Z", // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",  // ISO 8601 without timezone
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// boolToInt converts b for an INTEGER column.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isNoRows reports whether err means the query matched nothing.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
