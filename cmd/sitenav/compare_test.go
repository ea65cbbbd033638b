package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/sitenav/internal/database"
	"github.com/nao1215/sitenav/internal/model"
)

func TestNewCompareCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCompareCmd()
	if cmd.Use != "compare [site]" {
		t.Errorf("unexpected Use: got %q", cmd.Use)
	}

	flagsWithShort := map[string]string{
		"list":         "l",
		"list-sites":   "L",
		"with-tour-id": "i",
		"json":         "j",
		"markdown":     "m",
	}
	for flag, shorthand := range flagsWithShort {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("expected flag %q to exist", flag)
			continue
		}
		if f.Shorthand != shorthand {
			t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
		}
	}
}

func newTestReport(date time.Time, findings ...[3]string) *model.TourReport {
	r := model.NewTourReport("./public", "index.html")
	r.DateToured = date
	r.AddPage(model.PageSummary{URL: "index.html", Status: model.VisitOK})
	for _, f := range findings {
		r.AddFinding(f[0], f[1], f[2], "index.html")
	}
	return r
}

func TestCompareReports(t *testing.T) {
	t.Parallel()

	day1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	previous := newTestReport(day1,
		[3]string{model.FindingBrokenLink, "Broken link", "gone.html"},
		[3]string{model.FindingExternalLink, "External link", "https://t.me/mediasyncbot"},
	)
	current := newTestReport(day2,
		[3]string{model.FindingExternalLink, "External link", "https://t.me/mediasyncbot"},
		[3]string{model.FindingContentMissing, "No main content", "nomain.html"},
		[3]string{model.FindingMissingHeading, "No heading", "deep.html"},
	)

	result := compareReports(previous, current)

	var newValues, resolvedValues []string
	for _, f := range result.NewFindings {
		newValues = append(newValues, f.Value)
	}
	for _, f := range result.ResolvedFindings {
		resolvedValues = append(resolvedValues, f.Value)
	}
	// Most severe first.
	if diff := cmp.Diff([]string{"nomain.html", "deep.html"}, newValues); diff != "" {
		t.Errorf("new findings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"gone.html"}, resolvedValues); diff != "" {
		t.Errorf("resolved findings mismatch (-want +got):\n%s", diff)
	}
	if result.UnchangedCount != 1 {
		t.Errorf("expected 1 unchanged finding, got %d", result.UnchangedCount)
	}
	want := RiskChange{
		Direction:   riskDirectionWorsened,
		HighDelta:   1,
		MediumDelta: -1,
		LowDelta:    1,
	}
	if diff := cmp.Diff(want, result.RiskChange); diff != "" {
		t.Errorf("risk change mismatch (-want +got):\n%s", diff)
	}
	if !result.CurrentTour.DateToured.Equal(day2) || !result.PreviousTour.DateToured.Equal(day1) {
		t.Error("tour dates not carried over")
	}

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := outputComparisonText(&buf, result); err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"WORSENED", "[+] [HIGH] No main content: nomain.html", "[-] [MEDIUM] Broken link: gone.html", "Unchanged: 1 findings"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected %q in:\n%s", want, buf.String())
			}
		}
	})

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		if err := outputComparisonMarkdown(&buf, result); err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"# Tour Comparison: ./public", "| Metric", "## New Findings (2)", "~~**[MEDIUM]** Broken link: gone.html~~"} {
			if !strings.Contains(buf.String(), want) {
				t.Errorf("expected %q in:\n%s", want, buf.String())
			}
		}
	})
}

func TestCalculateRiskChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		previous TourMetadata
		current  TourMetadata
		want     string
	}{
		{"fewer critical", TourMetadata{CriticalCount: 1}, TourMetadata{HighCount: 1}, riskDirectionImproved},
		{"more info", TourMetadata{}, TourMetadata{InfoCount: 2}, riskDirectionWorsened},
		{"same score", TourMetadata{LowCount: 2}, TourMetadata{MediumCount: 1}, riskDirectionUnchanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := calculateRiskChange(tt.previous, tt.current).Direction; got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSelectPrevious(t *testing.T) {
	t.Parallel()

	day := func(d int) time.Time { return time.Date(2026, 5, d, 12, 0, 0, 0, time.UTC) }
	tours := []database.TourReportMetadata{
		{ID: 3, Timestamp: day(10)},
		{ID: 2, Timestamp: day(5)},
		{ID: 1, Timestamp: day(1)},
	}

	tests := []struct {
		name    string
		opts    compareOptions
		want    int64
		wantErr bool
	}{
		{name: "previous tour", want: 2},
		{name: "explicit id", opts: compareOptions{withTourID: 1}, want: 1},
		{name: "first tour since date", opts: compareOptions{since: "2026-05-02"}, want: 2},
		{name: "since before every tour", opts: compareOptions{since: "2026-01-01"}, want: 1},
		{name: "only the latest since date", opts: compareOptions{since: "2026-05-08"}, wantErr: true},
		{name: "nothing since date", opts: compareOptions{since: "2026-06-01"}, wantErr: true},
		{name: "malformed date", opts: compareOptions{since: "May 2"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := selectPrevious(tours, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatHelpers(t *testing.T) {
	t.Parallel()

	deltas := map[int]string{3: "+3", 0: "0", -2: "-2"}
	for in, want := range deltas {
		if got := formatDelta(in); got != want {
			t.Errorf("formatDelta(%d) = %q, want %q", in, got, want)
		}
	}

	summaries := []struct {
		in   map[string]int
		want string
	}{
		{nil, "N/A"},
		{map[string]int{"pages": 4}, noFindingsMessage},
		{map[string]int{"critical": 1, "medium": 2, "info": 3}, "C:1 M:2 I:3"},
	}
	for _, tt := range summaries {
		if got := formatRiskSummary(tt.in); got != tt.want {
			t.Errorf("formatRiskSummary(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRunCompareCmdErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"missing site", []string{"--db-dir", t.TempDir()}},
		{"no history", []string{"./public", "--db-dir", t.TempDir()}},
		{"both formats", []string{"./public", "--json", "--markdown", "--db-dir", t.TempDir()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := execute(t, NewCompareCmd(), "", tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
