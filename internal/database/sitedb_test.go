package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/sitenav/internal/consent"
	"github.com/nao1215/sitenav/internal/contact"
	"github.com/nao1215/sitenav/internal/model"
	"github.com/nao1215/sitenav/internal/navigator"
)

var (
	_ navigator.VisitRecorder = (*SiteDB)(nil)
	_ consent.Store           = (*SiteDB)(nil)
	_ contact.SubmissionStore = (*SiteDB)(nil)
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *SiteDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// fixedClock pins db.now to t.
func fixedClock(db *SiteDB, t time.Time) {
	db.now = func() time.Time { return t }
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("Path() = %q", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "missing")
		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
		if _, statErr := os.Stat(dbDir); !os.IsNotExist(statErr) {
			t.Error("directory should not have been created")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db.Close()

		db, err = Open(dbDir, Options{CreateIfNotExists: false})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		_ = db.Close()
	})
}

func TestVisits(t *testing.T) {
	t.Parallel()

	t.Run("record and list newest first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		visits := []*model.Visit{
			{SessionID: "s1", URL: "index.html", Title: "Home", Status: model.VisitOK, Elapsed: 40 * time.Millisecond, Timestamp: base},
			{SessionID: "s1", URL: "faq.html", Status: model.VisitFailed, Error: "HTTP 404", Animated: true, Timestamp: base.Add(time.Second)},
			{SessionID: "s2", URL: "index.html", FromCache: true, Status: model.VisitOK, Timestamp: base.Add(2 * time.Second)},
		}
		for _, v := range visits {
			if err := db.RecordVisit(ctx, v); err != nil {
				t.Fatalf("RecordVisit() error = %v", err)
			}
			if v.ID == 0 {
				t.Error("RecordVisit() did not assign an ID")
			}
		}

		got, err := db.ListVisits(ctx, "s1", 0)
		if err != nil {
			t.Fatalf("ListVisits() error = %v", err)
		}
		want := []model.Visit{*visits[1], *visits[0]}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ListVisits() mismatch (-want +got):\n%s", diff)
		}

		all, err := db.ListVisits(ctx, "", 1)
		if err != nil {
			t.Fatalf("ListVisits() error = %v", err)
		}
		if len(all) != 1 || all[0].SessionID != "s2" {
			t.Errorf("ListVisits(all, 1) = %+v", all)
		}
	})

	t.Run("zero timestamp uses clock", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		now := time.Date(2026, 5, 2, 8, 30, 0, 0, time.UTC)
		fixedClock(db, now)

		v := &model.Visit{SessionID: "s", URL: "index.html", Status: model.VisitOK}
		if err := db.RecordVisit(context.Background(), v); err != nil {
			t.Fatal(err)
		}
		got, err := db.ListVisits(context.Background(), "s", 0)
		if err != nil {
			t.Fatal(err)
		}
		if !got[0].Timestamp.Equal(now) {
			t.Errorf("Timestamp = %v, want %v", got[0].Timestamp, now)
		}
	})

	t.Run("sessions", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		_ = db.RecordVisit(ctx, &model.Visit{SessionID: "old", URL: "a", Status: model.VisitOK, Timestamp: base})
		_ = db.RecordVisit(ctx, &model.Visit{SessionID: "new", URL: "a", Status: model.VisitOK, Timestamp: base.Add(time.Hour)})
		_ = db.RecordVisit(ctx, &model.Visit{SessionID: "new", URL: "b", Status: model.VisitFailed, Timestamp: base.Add(2 * time.Hour)})

		got, err := db.ListSessions(ctx)
		if err != nil {
			t.Fatal(err)
		}
		want := []SessionSummary{
			{SessionID: "new", Visits: 2, Failed: 1, FirstSeen: base.Add(time.Hour), LastSeen: base.Add(2 * time.Hour)},
			{SessionID: "old", Visits: 1, Failed: 0, FirstSeen: base, LastSeen: base},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ListSessions() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestConsent(t *testing.T) {
	t.Parallel()

	t.Run("missing returns ErrNoConsent", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		_, err := db.LoadConsent(context.Background(), "nobody")
		if !errors.Is(err, consent.ErrNoConsent) {
			t.Errorf("LoadConsent() error = %v, want ErrNoConsent", err)
		}
	})

	t.Run("save replaces and load normalizes", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()
		at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

		if err := db.SaveConsent(ctx, &model.ConsentRecord{SessionID: "s", Settings: model.AllCookies(), UpdatedAt: at}); err != nil {
			t.Fatal(err)
		}
		later := at.Add(time.Hour)
		if err := db.SaveConsent(ctx, &model.ConsentRecord{SessionID: "s", Settings: model.ConsentSettings{Analytics: true}, UpdatedAt: later}); err != nil {
			t.Fatal(err)
		}

		got, err := db.LoadConsent(ctx, "s")
		if err != nil {
			t.Fatal(err)
		}
		want := &model.ConsentRecord{
			SessionID: "s",
			Settings:  model.ConsentSettings{Necessary: true, Analytics: true},
			UpdatedAt: later,
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("LoadConsent() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("delete", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.DeleteConsent(ctx, "absent"); err != nil {
			t.Errorf("DeleteConsent(absent) error = %v", err)
		}
		_ = db.SaveConsent(ctx, &model.ConsentRecord{SessionID: "s", Settings: model.NecessaryOnly()})
		if err := db.DeleteConsent(ctx, "s"); err != nil {
			t.Fatal(err)
		}
		if _, err := db.LoadConsent(ctx, "s"); !errors.Is(err, consent.ErrNoConsent) {
			t.Errorf("LoadConsent() after delete error = %v", err)
		}
	})

	t.Run("backs a consent manager", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		m := consent.NewManager(db, "visitor")
		if err := m.SetSettings(ctx, model.NecessaryOnly()); err != nil {
			t.Fatal(err)
		}

		reloaded := consent.NewManager(db, "visitor")
		if err := reloaded.Load(ctx); err != nil {
			t.Fatal(err)
		}
		if !reloaded.HasConsent() {
			t.Error("HasConsent() = false after reload")
		}
		if diff := cmp.Diff(model.NecessaryOnly(), reloaded.Settings()); diff != "" {
			t.Errorf("Settings() mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestSubmissions(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	first := &model.Submission{
		ID: "a", Name: "Ivan", Email: "ivan@example.com", Subject: "support",
		Message: "Hello there", Source: "Media Sync Bot Website",
		Timestamp: base, Channel: model.ChannelManual,
	}
	second := &model.Submission{
		ID: "b", Name: "Olga", Email: "olga@example.com", Subject: "bug",
		Message: "Something broke", Timestamp: base.Add(time.Minute),
		Channel: model.ChannelTelegram, Delivered: true,
	}
	for _, s := range []*model.Submission{first, second} {
		if err := db.SaveSubmission(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ListSubmissions(ctx, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]*model.Submission{second, first}, got); diff != "" {
		t.Errorf("ListSubmissions() mismatch (-want +got):\n%s", diff)
	}

	pending, err := db.ListSubmissions(ctx, 0, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != "a" {
		t.Errorf("ListSubmissions(undelivered) = %+v", pending)
	}

	// Re-saving updates the delivery outcome only.
	retried := *first
	retried.Channel = model.ChannelMailto
	retried.Delivered = true
	retried.Message = "changed"
	if err := db.SaveSubmission(ctx, &retried); err != nil {
		t.Fatal(err)
	}
	one, err := db.GetSubmission(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if one.Channel != model.ChannelMailto || !one.Delivered || one.Message != "Hello there" {
		t.Errorf("GetSubmission() = %+v", one)
	}

	missing, err := db.GetSubmission(ctx, "zzz")
	if err != nil || missing != nil {
		t.Errorf("GetSubmission(missing) = %v, %v", missing, err)
	}
}

func TestTourReports(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	older := model.NewTourReport("site", "index.html")
	older.DateToured = base
	older.AddPage(model.PageSummary{URL: "index.html", Title: "Home", Status: model.VisitOK})

	newer := model.NewTourReport("site", "index.html")
	newer.DateToured = base.Add(time.Hour)
	newer.AddPage(model.PageSummary{URL: "index.html", Title: "Home", Status: model.VisitOK})
	newer.AddPage(model.PageSummary{URL: "gone.html", Status: model.VisitFailed, Error: "HTTP 404"})
	newer.AddFinding(model.FindingBrokenLink, "Broken link", "gone.html", "index.html")

	other := model.NewTourReport("other", "index.html")
	other.DateToured = base

	var newerID int64
	for _, r := range []*model.TourReport{older, newer, other} {
		id, err := db.SaveTourReport(ctx, r)
		if err != nil {
			t.Fatal(err)
		}
		if r == newer {
			newerID = id
		}
	}

	latest, err := db.GetLatestTourReport(ctx, "site")
	if err != nil {
		t.Fatal(err)
	}
	if len(latest.Pages) != 2 || len(latest.Findings) != 1 {
		t.Errorf("GetLatestTourReport() = %+v", latest)
	}

	byID, err := db.GetTourReportByID(ctx, newerID)
	if err != nil || byID == nil || !byID.DateToured.Equal(newer.DateToured) {
		t.Errorf("GetTourReportByID() = %+v, %v", byID, err)
	}

	none, err := db.GetLatestTourReport(ctx, "never")
	if err != nil || none != nil {
		t.Errorf("GetLatestTourReport(never) = %v, %v", none, err)
	}

	sites, err := db.ListTouredSites(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"other", "site"}, sites); diff != "" {
		t.Errorf("ListTouredSites() mismatch (-want +got):\n%s", diff)
	}

	history, err := db.GetTourHistoryWithMetadata(ctx, "site")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].ID != newerID {
		t.Errorf("history[0].ID = %d, want %d", history[0].ID, newerID)
	}
	wantRisk := map[string]int{"critical": 0, "high": 0, "medium": 1, "low": 0, "info": 0, "pages": 2, "failed": 1}
	if diff := cmp.Diff(wantRisk, history[0].RiskSummary); diff != "" {
		t.Errorf("RiskSummary mismatch (-want +got):\n%s", diff)
	}

	all, err := db.GetTourHistoryWithMetadata(ctx, "")
	if err != nil || len(all) != 3 {
		t.Errorf("GetTourHistoryWithMetadata(all) = %d entries, %v", len(all), err)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []string{
		"2026-01-02 03:04:05.000",
		"2026-01-02 03:04:05",
		"2026-01-02T03:04:05Z",
		"2026-01-02T03:04:05",
		"2026-01-02T03:04:05+00:00",
	}
	for _, in := range tests {
		if got := parseTimestamp(in); !got.Equal(want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", in, got, want)
		}
	}
	if got := parseTimestamp("not a time"); !got.IsZero() {
		t.Errorf("parseTimestamp(garbage) = %v, want zero", got)
	}
}
