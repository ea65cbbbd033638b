package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitenav/internal/config"
	"github.com/nao1215/sitenav/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded visits, sessions, contact messages and tours",
		Long: `History prints what sitenav recorded in its database.

Without flags it lists the most recent page loads of every session.

Examples:
  # Page loads of one session
  sitenav history --session 0b7c... --limit 50

  # Every recorded session
  sitenav history --sessions

  # Contact messages that were not delivered
  sitenav history --submissions --undelivered

  # Stored tours of every site
  sitenav history --tours`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("session", "", "Only show the page loads of this session")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of entries (0 for all)")
	cmd.Flags().Bool("sessions", false, "List recorded sessions")
	cmd.Flags().Bool("submissions", false, "List contact form submissions")
	cmd.Flags().Bool("undelivered", false, "Only list submissions that were not delivered")
	cmd.Flags().Bool("tours", false, "List stored tours")
	cmd.Flags().Bool("json", false, "Print entries as JSON")
	addStorageFlags(cmd)

	return cmd
}

// historyOptions selects what the history command prints.
type historyOptions struct {
	session     string
	limit       int
	sessions    bool
	submissions bool
	undelivered bool
	tours       bool
	json        bool
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	opts, err := readHistoryOptions(cmd)
	if err != nil {
		return err
	}

	cfg := config.NewConfig()
	if err := buildStorageConfig(cmd, cfg); err != nil {
		return err
	}
	db, err := openDatabase(cfg, setupLogger(cmd))
	if err != nil {
		return err
	}
	if db == nil {
		return errNoDatabase
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	switch {
	case opts.sessions:
		return printSessions(ctx, out, db, opts)
	case opts.submissions:
		return printSubmissions(ctx, out, db, opts)
	case opts.tours:
		return printTours(ctx, out, db, opts)
	default:
		return printVisits(ctx, out, db, opts)
	}
}

// readHistoryOptions reads the history flags.
func readHistoryOptions(cmd *cobra.Command) (historyOptions, error) {
	var opts historyOptions
	var err error
	if opts.session, err = cmd.Flags().GetString("session"); err != nil {
		return opts, err
	}
	if opts.limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return opts, err
	}
	if opts.sessions, err = cmd.Flags().GetBool("sessions"); err != nil {
		return opts, err
	}
	if opts.submissions, err = cmd.Flags().GetBool("submissions"); err != nil {
		return opts, err
	}
	if opts.undelivered, err = cmd.Flags().GetBool("undelivered"); err != nil {
		return opts, err
	}
	if opts.tours, err = cmd.Flags().GetBool("tours"); err != nil {
		return opts, err
	}
	if opts.json, err = cmd.Flags().GetBool("json"); err != nil {
		return opts, err
	}

	selected := 0
	for _, on := range []bool{opts.sessions, opts.submissions, opts.tours} {
		if on {
			selected++
		}
	}
	if selected > 1 {
		return opts, fmt.Errorf("--sessions, --submissions and --tours cannot be combined")
	}
	return opts, nil
}

func writeJSONTo(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printVisits lists page loads, newest first.
func printVisits(ctx context.Context, w io.Writer, db *database.SiteDB, opts historyOptions) error {
	visits, err := db.ListVisits(ctx, opts.session, opts.limit)
	if err != nil {
		return err
	}
	if opts.json {
		return writeJSONTo(w, visits)
	}
	if len(visits) == 0 {
		fmt.Fprintln(w, "No visits recorded.")
		return nil
	}

	fmt.Fprintf(w, "  %-19s  %-10s  %-8s  %-6s  %s\n", "Time", "Status", "Elapsed", "Cache", "Page")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 70))
	for _, v := range visits {
		cached := ""
		if v.FromCache {
			cached = "hit"
		}
		fmt.Fprintf(w, "  %-19s  %-10s  %-8s  %-6s  %s\n",
			v.Timestamp.Local().Format(time.DateTime),
			v.Status,
			v.Elapsed.Round(time.Millisecond),
			cached,
			v.URL,
		)
		if v.Error != "" {
			fmt.Fprintf(w, "      %s\n", v.Error)
		}
	}
	return nil
}

// printSessions lists recorded sessions, most recent first.
func printSessions(ctx context.Context, w io.Writer, db *database.SiteDB, opts historyOptions) error {
	sessions, err := db.ListSessions(ctx)
	if err != nil {
		return err
	}
	if opts.limit > 0 && len(sessions) > opts.limit {
		sessions = sessions[:opts.limit]
	}
	if opts.json {
		return writeJSONTo(w, sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions recorded.")
		return nil
	}

	fmt.Fprintf(w, "  %-36s  %-6s  %-6s  %s\n", "Session", "Loads", "Failed", "Last seen")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 75))
	for _, s := range sessions {
		fmt.Fprintf(w, "  %-36s  %-6d  %-6d  %s\n",
			s.SessionID, s.Visits, s.Failed, s.LastSeen.Local().Format(time.DateTime))
	}
	return nil
}

// printSubmissions lists contact form submissions, newest first.
func printSubmissions(ctx context.Context, w io.Writer, db *database.SiteDB, opts historyOptions) error {
	subs, err := db.ListSubmissions(ctx, opts.limit, opts.undelivered)
	if err != nil {
		return err
	}
	if opts.json {
		return writeJSONTo(w, subs)
	}
	if len(subs) == 0 {
		fmt.Fprintln(w, "No submissions recorded.")
		return nil
	}

	for _, s := range subs {
		status := "delivered"
		if !s.Delivered {
			status = "not delivered"
		}
		fmt.Fprintf(w, "%s  %s <%s>  [%s, %s]\n",
			s.Timestamp.Local().Format(time.DateTime), s.Name, s.Email, s.Channel, status)
		fmt.Fprintf(w, "  subject: %s\n", s.Subject)
		for _, line := range strings.Split(s.Message, "\n") {
			fmt.Fprintf(w, "  | %s\n", line)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// printTours lists stored tours of every site.
func printTours(ctx context.Context, w io.Writer, db *database.SiteDB, opts historyOptions) error {
	tours, err := db.GetTourHistoryWithMetadata(ctx, "")
	if err != nil {
		return err
	}
	if opts.limit > 0 && len(tours) > opts.limit {
		tours = tours[:opts.limit]
	}
	if opts.json {
		return writeJSONTo(w, tours)
	}
	if len(tours) == 0 {
		fmt.Fprintln(w, "No tours stored.")
		return nil
	}

	fmt.Fprintf(w, "  %-6s  %-19s  %-6s  %-14s  %s\n", "ID", "Date", "Pages", "Risk Summary", "Site")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 75))
	for _, t := range tours {
		fmt.Fprintf(w, "  %-6d  %-19s  %-6d  %-14s  %s\n",
			t.ID, t.Timestamp.Local().Format(time.DateTime), t.RiskSummary["pages"],
			formatRiskSummary(t.RiskSummary), t.Site)
	}
	return nil
}
