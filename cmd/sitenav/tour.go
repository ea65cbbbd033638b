package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitenav/internal/config"
	"github.com/nao1215/sitenav/internal/crawler"
	"github.com/nao1215/sitenav/internal/database"
	"github.com/nao1215/sitenav/internal/model"
	"github.com/nao1215/sitenav/internal/report"
)

// NewTourCmd creates the tour command.
func NewTourCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tour [site]",
		Short: "Visit every page reachable through in-page navigation",
		Long: `Tour starts a session on the landing page and follows every intercepted
link breadth-first, swapping each page into the layout the way a visitor
clicking through the site would. Every swap runs the site's post-swap steps.

The report lists broken links, pages without a main content region,
duplicate titles, missing descriptions, in-page anchors pointing nowhere and
steps that failed after a swap. Each report is stored in the database so
that later tours can be compared with "sitenav compare".

Examples:
  # Tour a local build
  sitenav tour ./public

  # Tour the live site, two clicks deep, as Markdown
  sitenav tour https://mediasyncbot.example --depth 2 --markdown -o tour.md

  # JSON report without touching the database
  sitenav tour ./public --json --no-db`,
		Args: cobra.MaximumNArgs(1),
		RunE: runTourCmd,
	}

	addSiteFlags(cmd)
	cmd.Flags().IntP("depth", "d", 5,
		"Maximum number of clicks away from the landing page")
	cmd.Flags().Int("max-pages", 100,
		"Maximum number of pages to visit")
	cmd.Flags().Duration("delay", 0,
		"Pause between page loads")
	cmd.Flags().Bool("no-prefetch", false,
		"Do not warm the cache with the links of every page")
	cmd.Flags().Bool("json", false,
		"Output the full report as JSON")
	cmd.Flags().Bool("markdown", false,
		"Output the report as Markdown")
	cmd.Flags().StringP("output", "o", "",
		"Write the report to a file instead of stdout")

	return cmd
}

// tourOptions are the crawl limits of a tour.
type tourOptions struct {
	depth    int
	maxPages int
	prefetch bool
	spider   []crawler.SpiderOption
}

// runTourCmd executes the tour command.
func runTourCmd(cmd *cobra.Command, args []string) error {
	cfg, site, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts, err := readTourOptions(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd)
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	tourReport, err := runTour(ctx, cfg, site, db, logger, opts)
	if err != nil {
		return err
	}

	if db != nil {
		id, err := db.SaveTourReport(ctx, tourReport)
		if err != nil {
			logger.Warn("failed to save tour report", "error", err)
		} else {
			logger.Info("tour report saved", "id", id)
		}
	}

	return outputReport(cmd, cfg, tourReport)
}

// readTourOptions reads the crawl flags.
func readTourOptions(cmd *cobra.Command) (tourOptions, error) {
	var opts tourOptions
	var err error
	if opts.depth, err = cmd.Flags().GetInt("depth"); err != nil {
		return opts, err
	}
	if opts.maxPages, err = cmd.Flags().GetInt("max-pages"); err != nil {
		return opts, err
	}
	delay, err := cmd.Flags().GetDuration("delay")
	if err != nil {
		return opts, err
	}
	noPrefetch, err := cmd.Flags().GetBool("no-prefetch")
	if err != nil {
		return opts, err
	}
	if opts.depth < 0 || opts.maxPages <= 0 {
		return opts, fmt.Errorf("invalid limits: depth must be non-negative and max-pages positive")
	}
	opts.prefetch = !noPrefetch
	opts.spider = append(opts.spider, crawler.WithDelay(delay))
	return opts, nil
}

// runTour builds a session and walks the site.
func runTour(ctx context.Context, cfg *config.Config, site config.SiteConfig, db *database.SiteDB, logger *slog.Logger, opts tourOptions) (*model.TourReport, error) {
	s, err := newSession(ctx, cfg, site, db, logger, sessionOptions{record: true})
	if err != nil {
		return nil, err
	}
	defer s.Close()

	spiderOpts := append([]crawler.SpiderOption{
		crawler.WithMaxDepth(opts.depth),
		crawler.WithMaxPages(opts.maxPages),
		crawler.WithPrefetch(opts.prefetch),
		crawler.WithLogger(logger),
	}, opts.spider...)

	logger.Info("starting tour", "site", cfg.Site, "session", s.nav.SessionID())
	tourReport, err := crawler.NewSpider(s.nav, spiderOpts...).Tour(ctx, cfg.Site)
	if err != nil {
		return nil, err
	}
	logger.Info("tour complete",
		"pages", len(tourReport.Pages),
		"findings", len(tourReport.Findings),
		"fetches", tourReport.Fetches,
	)
	return tourReport, nil
}

// outputReport writes the report in the selected format to the report file
// or stdout.
func outputReport(cmd *cobra.Command, cfg *config.Config, tourReport *model.TourReport) error {
	f, closeFn, err := openOutput(cmd, cfg.ReportFile)
	if err != nil {
		return err
	}
	defer closeFn() //nolint:errcheck // nothing left to flush

	var output io.Writer = cmd.OutOrStdout()
	if f != nil {
		output = f
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
	if f != nil {
		writer = report.NewMultiWriter(writer, report.SummaryOnly(report.NewSimpleWriter(cmd.OutOrStdout())))
	}
	if _, err := writer.Write(tourReport); err != nil {
		return err
	}

	if f != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", cfg.ReportFile)
	}
	return nil
}
