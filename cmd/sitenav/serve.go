package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitenav/internal/config"
	"github.com/nao1215/sitenav/internal/i18n"
	"github.com/nao1215/sitenav/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <site-dir>",
		Short: "Serve a site directory with its JSON API",
		Long: `Serve publishes a static site directory together with the API its
scripts use:

  GET    /healthz               liveness probe
  POST   /api/contact           validate and relay the contact form
  GET    /api/consent           cookie consent of the visitor
  POST   /api/consent           store the consent choice
  DELETE /api/consent           forget the consent choice
  GET    /api/fragment/{page}   main content region of a page

The contact form is relayed to Telegram when a bot token is configured;
otherwise the response carries the message for manual sending.

Examples:
  # Serve ./public on the default address
  sitenav serve ./public

  # Accept API calls from the production origin
  sitenav serve ./public --address :8080 --allow-origin https://mediasyncbot.example`,
		Args: cobra.ExactArgs(1),
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("address", "a", config.DefaultServeAddress,
		"Listen address")
	cmd.Flags().String("selector", config.DefaultContentSelector,
		"Selector of the main content region returned by the fragment API")
	cmd.Flags().StringSlice("allow-origin", nil,
		"CORS origin allowed to call the API (repeatable; default: localhost)")
	cmd.Flags().StringP("lang", "l", config.DefaultLanguage,
		"Language of contact form messages (ru or en)")
	addStorageFlags(cmd)

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	cfg.Site = args[0]

	var err error
	if cfg.ServeAddress, err = cmd.Flags().GetString("address"); err != nil {
		return err
	}
	if cfg.ContentSelector, err = cmd.Flags().GetString("selector"); err != nil {
		return err
	}
	if cfg.Language, err = cmd.Flags().GetString("lang"); err != nil {
		return err
	}
	origins, err := cmd.Flags().GetStringSlice("allow-origin")
	if err != nil {
		return err
	}
	if err := buildStorageConfig(cmd, cfg); err != nil {
		return err
	}
	cfg.ApplySite("")
	if err := cfg.Validate(); err != nil {
		return err
	}

	info, err := os.Stat(cfg.Site)
	if err != nil {
		return fmt.Errorf("failed to open site directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("site must be a directory: %s", cfg.Site)
	}

	logger := setupLogger(cmd)
	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	printer, err := i18n.New(cfg.Language)
	if err != nil {
		return err
	}

	// The server has no mail client: without Telegram the visitor copies
	// the message by hand.
	service := newContactService(cfg, printer, db, logger, nil)

	srv := server.New(server.Config{
		Address:         cfg.ServeAddress,
		ContentSelector: cfg.ContentSelector,
		AllowedOrigins:  origins,
	}, os.DirFS(cfg.Site),
		server.WithLogger(logger),
		server.WithContactService(service),
		server.WithConsentStore(consentStore(db)),
	)

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", cfg.Site, cfg.ServeAddress)
	return srv.Run(ctx)
}
