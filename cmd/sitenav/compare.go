package main

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/sitenav/internal/config"
	"github.com/nao1215/sitenav/internal/database"
	"github.com/nao1215/sitenav/internal/model"
)

// Risk directions and summary messages.
const (
	riskDirectionWorsened  = "worsened"
	riskDirectionImproved  = "improved"
	riskDirectionUnchanged = "unchanged"
	noFindingsMessage      = "No findings"
)

// errTourNotFound is returned when a tour ID has no stored report.
var errTourNotFound = errors.New("tour not found")

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [site]",
		Short: "Compare tour results with earlier tours",
		Long: `Compare displays the differences between the latest tour of a site and
an earlier one stored in the database:
- findings that appeared since the earlier tour
- findings that are gone
- the change in the number of findings per severity

The comparison needs at least two tours of the site. Use 'sitenav tour'
to tour a site and store the report.

Examples:
  # Compare the latest two tours
  sitenav compare ./public

  # List the tours of a site
  sitenav compare --list ./public

  # Compare with a specific tour
  sitenav compare --with-tour-id 5 ./public

  # Compare with the first tour since a date
  sitenav compare --since 2026-01-01 ./public

  # List every toured site
  sitenav compare --list-sites`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List the tour history of the site")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List every toured site in the database")

	cmd.Flags().Int64P("with-tour-id", "i", 0,
		"Compare with a specific tour by ID (use --list to see available IDs)")
	cmd.Flags().String("since", "",
		"Compare with the first tour after this date (format: YYYY-MM-DD)")

	cmd.Flags().BoolP("json", "j", false,
		"Output the comparison as JSON")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output the comparison as Markdown")

	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the sitenav database")

	return cmd
}

// compareOptions selects the tours to compare and the output format.
type compareOptions struct {
	withTourID int64
	since      string
	json       bool
	markdown   bool
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	// Validate before opening the database.
	var site string
	if !listSites {
		if len(args) == 0 {
			return errors.New("site is required (use --list-sites to see toured sites)")
		}
		site = args[0]
	}

	var opts compareOptions
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if opts.markdown, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if opts.json && opts.markdown {
		return config.ErrConflictingReportFormats
	}
	if opts.withTourID, err = cmd.Flags().GetInt64("with-tour-id"); err != nil {
		return err
	}
	if opts.since, err = cmd.Flags().GetString("since"); err != nil {
		return err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if listSites {
		return listTouredSites(ctx, out, db)
	}

	listHistory, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if listHistory {
		return listTourHistory(ctx, out, db, site)
	}

	return runComparison(ctx, out, db, site, opts)
}

// listTouredSites lists every site with a stored tour.
func listTouredSites(ctx context.Context, w io.Writer, db *database.SiteDB) error {
	sites, err := db.ListTouredSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}

	if len(sites) == 0 {
		fmt.Fprintln(w, "No toured sites found in the database.")
		fmt.Fprintln(w, "\nUse 'sitenav tour <site>' to tour a site.")
		return nil
	}

	fmt.Fprintf(w, "Toured sites (%d):\n\n", len(sites))
	for _, site := range sites {
		fmt.Fprintf(w, "  • %s\n", site)
	}
	fmt.Fprintln(w, "\nUse 'sitenav compare --list <site>' to see the tours of a site.")
	return nil
}

// listTourHistory lists the stored tours of site, newest first.
func listTourHistory(ctx context.Context, w io.Writer, db *database.SiteDB, site string) error {
	tours, err := db.GetTourHistoryWithMetadata(ctx, site)
	if err != nil {
		return fmt.Errorf("failed to get tour history: %w", err)
	}

	if len(tours) == 0 {
		fmt.Fprintf(w, "No tour history found for %s\n", site)
		fmt.Fprintln(w, "\nUse 'sitenav tour' to tour this site.")
		return nil
	}

	fmt.Fprintf(w, "Tour history for %s (%d tours):\n\n", site, len(tours))
	fmt.Fprintf(w, "  %-6s  %-20s  %-6s  %s\n", "ID", "Date", "Pages", "Risk Summary")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 60))
	for _, meta := range tours {
		fmt.Fprintf(w, "  %-6d  %-20s  %-6d  %s\n",
			meta.ID,
			meta.Timestamp.Format(time.DateTime),
			meta.RiskSummary["pages"],
			formatRiskSummary(meta.RiskSummary),
		)
	}

	fmt.Fprintln(w, "\nUse 'sitenav compare <site>' to compare the latest two tours.")
	fmt.Fprintln(w, "Use 'sitenav compare --with-tour-id <id> <site>' to compare with a specific tour.")
	return nil
}

// formatRiskSummary formats the severity counts as "C:1 H:2".
func formatRiskSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	for _, s := range []struct{ key, label string }{
		{"critical", "C"}, {"high", "H"}, {"medium", "M"}, {"low", "L"}, {"info", "I"},
	} {
		if v := summary[s.key]; v > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", s.label, v))
		}
	}

	if len(parts) == 0 {
		return noFindingsMessage
	}
	return strings.Join(parts, " ")
}

// runComparison compares the latest tour of site with an earlier one.
func runComparison(ctx context.Context, w io.Writer, db *database.SiteDB, site string, opts compareOptions) error {
	tours, err := db.GetTourHistoryWithMetadata(ctx, site)
	if err != nil {
		return fmt.Errorf("failed to get tour history: %w", err)
	}
	if len(tours) == 0 {
		return fmt.Errorf("no tour history found for %s", site)
	}
	if len(tours) < 2 && opts.withTourID == 0 && opts.since == "" {
		return fmt.Errorf("at least 2 tours are required for comparison (found %d)", len(tours))
	}

	previousID, err := selectPrevious(tours, opts)
	if err != nil {
		return err
	}
	if previousID == tours[0].ID {
		return errors.New("cannot compare a tour with itself")
	}

	current, err := db.GetTourReportByID(ctx, tours[0].ID)
	if err != nil || current == nil {
		return fmt.Errorf("failed to get tour %d: %w", tours[0].ID, cmp.Or(err, errTourNotFound))
	}
	previous, err := db.GetTourReportByID(ctx, previousID)
	if err != nil {
		return fmt.Errorf("failed to get tour %d: %w", previousID, err)
	}
	if previous == nil {
		return fmt.Errorf("tour with ID %d: %w", previousID, errTourNotFound)
	}
	if previous.Site != site {
		return fmt.Errorf("tour ID %d belongs to %s, not %s", previousID, previous.Site, site)
	}

	comparison := compareReports(previous, current)
	switch {
	case opts.json:
		return outputComparisonJSON(w, comparison)
	case opts.markdown:
		return outputComparisonMarkdown(w, comparison)
	default:
		return outputComparisonText(w, comparison)
	}
}

// selectPrevious picks the earlier tour. tours are newest first.
func selectPrevious(tours []database.TourReportMetadata, opts compareOptions) (int64, error) {
	switch {
	case opts.withTourID > 0:
		return opts.withTourID, nil
	case opts.since != "":
		sinceDate, err := time.Parse(time.DateOnly, opts.since)
		if err != nil {
			return 0, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
		for i := len(tours) - 1; i >= 0; i-- {
			if !tours[i].Timestamp.Before(sinceDate) {
				if i == 0 {
					return 0, fmt.Errorf("only one tour found since %s; at least 2 tours are required for comparison", opts.since)
				}
				return tours[i].ID, nil
			}
		}
		return 0, fmt.Errorf("no tours found since %s", opts.since)
	default:
		return tours[1].ID, nil
	}
}

// ComparisonResult holds the result of comparing two tour reports.
type ComparisonResult struct {
	// Site is the toured site.
	Site string `json:"site"`

	PreviousTour TourMetadata `json:"previous_tour"`
	CurrentTour  TourMetadata `json:"current_tour"`

	// NewFindings are in the current tour only.
	NewFindings []model.Finding `json:"new_findings,omitempty"`

	// ResolvedFindings are in the previous tour only.
	ResolvedFindings []model.Finding `json:"resolved_findings,omitempty"`

	// UnchangedCount is the number of findings present in both tours.
	UnchangedCount int `json:"unchanged_count"`

	RiskChange RiskChange `json:"risk_change"`
}

// TourMetadata summarizes one tour for comparison display.
type TourMetadata struct {
	DateToured    time.Time `json:"date_toured"`
	PagesVisited  int       `json:"pages_visited"`
	PagesFailed   int       `json:"pages_failed"`
	TotalFindings int       `json:"total_findings"`
	CriticalCount int       `json:"critical_count"`
	HighCount     int       `json:"high_count"`
	MediumCount   int       `json:"medium_count"`
	LowCount      int       `json:"low_count"`
	InfoCount     int       `json:"info_count"`
}

// RiskChange describes the change in findings between tours.
type RiskChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	CriticalDelta int `json:"critical_delta"`
	HighDelta     int `json:"high_delta"`
	MediumDelta   int `json:"medium_delta"`
	LowDelta      int `json:"low_delta"`
	InfoDelta     int `json:"info_delta"`
}

func newTourMetadata(s *model.SimpleReport) TourMetadata {
	return TourMetadata{
		DateToured:    s.DateToured,
		PagesVisited:  s.PagesVisited,
		PagesFailed:   s.PagesFailed,
		TotalFindings: len(s.Findings),
		CriticalCount: s.CriticalCount,
		HighCount:     s.HighCount,
		MediumCount:   s.MediumCount,
		LowCount:      s.LowCount,
		InfoCount:     s.InfoCount,
	}
}

// compareReports compares two tour reports.
func compareReports(previous, current *model.TourReport) *ComparisonResult {
	prev := model.NewSimpleReport(previous)
	curr := model.NewSimpleReport(current)

	result := &ComparisonResult{
		Site:         current.Site,
		PreviousTour: newTourMetadata(prev),
		CurrentTour:  newTourMetadata(curr),
	}

	previousFindings := make(map[string]model.Finding, len(prev.Findings))
	for _, f := range prev.Findings {
		previousFindings[findingKey(f)] = f
	}
	currentFindings := make(map[string]model.Finding, len(curr.Findings))
	for _, f := range curr.Findings {
		currentFindings[findingKey(f)] = f
	}

	for key, finding := range currentFindings {
		if _, exists := previousFindings[key]; !exists {
			result.NewFindings = append(result.NewFindings, finding)
		}
	}
	for key, finding := range previousFindings {
		if _, exists := currentFindings[key]; !exists {
			result.ResolvedFindings = append(result.ResolvedFindings, finding)
		} else {
			result.UnchangedCount++
		}
	}
	sortFindings(result.NewFindings)
	sortFindings(result.ResolvedFindings)

	result.RiskChange = calculateRiskChange(result.PreviousTour, result.CurrentTour)
	return result
}

// findingKey identifies a finding across tours.
func findingKey(f model.Finding) string {
	return f.Type + "|" + f.Value + "|" + f.Location
}

// sortFindings orders findings most severe first, then by key.
func sortFindings(findings []model.Finding) {
	slices.SortFunc(findings, func(a, b model.Finding) int {
		if c := cmp.Compare(b.Severity, a.Severity); c != 0 {
			return c
		}
		return cmp.Compare(findingKey(a), findingKey(b))
	})
}

// calculateRiskChange weighs the severity deltas into a direction.
func calculateRiskChange(previous, current TourMetadata) RiskChange {
	change := RiskChange{
		CriticalDelta: current.CriticalCount - previous.CriticalCount,
		HighDelta:     current.HighCount - previous.HighCount,
		MediumDelta:   current.MediumCount - previous.MediumCount,
		LowDelta:      current.LowCount - previous.LowCount,
		InfoDelta:     current.InfoCount - previous.InfoCount,
	}

	previousScore := riskScore(previous)
	currentScore := riskScore(current)
	switch {
	case currentScore < previousScore:
		change.Direction = riskDirectionImproved
	case currentScore > previousScore:
		change.Direction = riskDirectionWorsened
	default:
		change.Direction = riskDirectionUnchanged
	}
	return change
}

func riskScore(m TourMetadata) int {
	return m.CriticalCount*100 + m.HighCount*50 + m.MediumCount*10 + m.LowCount*5 + m.InfoCount
}

// outputComparisonJSON writes the comparison as indented JSON.
func outputComparisonJSON(w io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// severityRows returns the per-severity rows: label, previous, current, delta.
func severityRows(result *ComparisonResult) [][4]string {
	p, c, d := result.PreviousTour, result.CurrentTour, result.RiskChange
	return [][4]string{
		{"Critical", strconv.Itoa(p.CriticalCount), strconv.Itoa(c.CriticalCount), formatDelta(d.CriticalDelta)},
		{"High", strconv.Itoa(p.HighCount), strconv.Itoa(c.HighCount), formatDelta(d.HighDelta)},
		{"Medium", strconv.Itoa(p.MediumCount), strconv.Itoa(c.MediumCount), formatDelta(d.MediumDelta)},
		{"Low", strconv.Itoa(p.LowCount), strconv.Itoa(c.LowCount), formatDelta(d.LowDelta)},
		{"Info", strconv.Itoa(p.InfoCount), strconv.Itoa(c.InfoCount), formatDelta(d.InfoDelta)},
	}
}

// outputComparisonMarkdown writes the comparison as Markdown.
func outputComparisonMarkdown(w io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(w)
	md.H1("Tour Comparison: " + result.Site)
	md.H2("Summary")
	md.PlainText("**Risk Status:** " + formatRiskDirection(result.RiskChange.Direction))
	md.PlainText("")

	rows := [][]string{
		{"Date", result.PreviousTour.DateToured.Format("2006-01-02 15:04"), result.CurrentTour.DateToured.Format("2006-01-02 15:04"), "-"},
		{"Pages", strconv.Itoa(result.PreviousTour.PagesVisited), strconv.Itoa(result.CurrentTour.PagesVisited),
			formatDelta(result.CurrentTour.PagesVisited - result.PreviousTour.PagesVisited)},
	}
	for _, r := range severityRows(result) {
		rows = append(rows, r[:])
	}
	rows = append(rows, []string{
		"**Total**",
		"**" + strconv.Itoa(result.PreviousTour.TotalFindings) + "**",
		"**" + strconv.Itoa(result.CurrentTour.TotalFindings) + "**",
		"**" + formatDelta(result.CurrentTour.TotalFindings-result.PreviousTour.TotalFindings) + "**",
	})
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows:   rows,
	})

	if len(result.NewFindings) > 0 {
		md.H2(fmt.Sprintf("New Findings (%d)", len(result.NewFindings)))
		items := make([]string, 0, len(result.NewFindings))
		for _, f := range result.NewFindings {
			item := fmt.Sprintf("**[%s]** %s: %s", f.SeverityText, f.Title, f.Value)
			if f.Location != "" {
				item += " (`" + f.Location + "`)"
			}
			items = append(items, item)
		}
		md.BulletList(items...)
	}

	if len(result.ResolvedFindings) > 0 {
		md.H2(fmt.Sprintf("Resolved Findings (%d)", len(result.ResolvedFindings)))
		items := make([]string, 0, len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			items = append(items, fmt.Sprintf("~~**[%s]** %s: %s~~", f.SeverityText, f.Title, f.Value))
		}
		md.BulletList(items...)
	}

	if result.UnchangedCount > 0 {
		md.HorizontalRule()
		md.PlainText(fmt.Sprintf("*%d findings unchanged*", result.UnchangedCount))
	}

	return md.Build()
}

// outputComparisonText writes the comparison as plain text.
func outputComparisonText(w io.Writer, result *ComparisonResult) error {
	fmt.Fprintf(w, "Tour Comparison: %s\n", result.Site)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintf(w, "\nRisk Status: %s\n", formatRiskDirection(result.RiskChange.Direction))
	fmt.Fprintf(w, "\nPrevious tour: %s (%d pages)\n", result.PreviousTour.DateToured.Format(time.DateTime), result.PreviousTour.PagesVisited)
	fmt.Fprintf(w, "Current tour:  %s (%d pages)\n", result.CurrentTour.DateToured.Format(time.DateTime), result.CurrentTour.PagesVisited)

	fmt.Fprintln(w, "\nFindings Summary:")
	fmt.Fprintf(w, "  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 45))
	for _, r := range severityRows(result) {
		fmt.Fprintf(w, "  %-10s  %-10s  %-10s  %-10s\n", r[0], r[1], r[2], r[3])
	}
	fmt.Fprintln(w, "  "+strings.Repeat("-", 45))
	fmt.Fprintf(w, "  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousTour.TotalFindings, result.CurrentTour.TotalFindings,
		formatDelta(result.CurrentTour.TotalFindings-result.PreviousTour.TotalFindings))

	if len(result.NewFindings) > 0 {
		fmt.Fprintf(w, "\nNew Findings (%d):\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Fprintf(w, "  [+] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.Location != "" {
				fmt.Fprintf(w, "      Location: %s\n", f.Location)
			}
		}
	}

	if len(result.ResolvedFindings) > 0 {
		fmt.Fprintf(w, "\nResolved Findings (%d):\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Fprintf(w, "  [-] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
		}
	}

	if result.UnchangedCount > 0 {
		fmt.Fprintf(w, "\nUnchanged: %d findings\n", result.UnchangedCount)
	}
	return nil
}

// formatRiskDirection formats the risk change direction for display.
func formatRiskDirection(direction string) string {
	switch direction {
	case riskDirectionImproved:
		return "IMPROVED (fewer problems)"
	case riskDirectionWorsened:
		return "WORSENED (more problems)"
	default:
		return "UNCHANGED"
	}
}

// formatDelta formats a delta with its sign.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
