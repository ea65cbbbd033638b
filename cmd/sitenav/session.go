package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nao1215/sitenav/internal/config"
	"github.com/nao1215/sitenav/internal/consent"
	"github.com/nao1215/sitenav/internal/contact"
	"github.com/nao1215/sitenav/internal/database"
	"github.com/nao1215/sitenav/internal/fetch"
	"github.com/nao1215/sitenav/internal/i18n"
	ilog "github.com/nao1215/sitenav/internal/log"
	"github.com/nao1215/sitenav/internal/menu"
	"github.com/nao1215/sitenav/internal/navigator"
	"github.com/nao1215/sitenav/internal/page"
	"github.com/nao1215/sitenav/internal/sitepages"
)

// addSiteFlags registers the flags shared by the commands that load pages.
func addSiteFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("site", "s", "",
		"Base URL or directory of the site (alternative to the positional argument)")
	cmd.Flags().StringP("entry", "e", config.DefaultHomePage,
		"Page the session lands on")
	cmd.Flags().String("selector", config.DefaultContentSelector,
		"Selector of the content region swapped on navigation")
	cmd.Flags().String("origin", "",
		"Public origin written into canonical links (default: the site's origin)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each fetch")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy for fetches (host:port)")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Largest page size in bytes; larger pages fail to load")
	cmd.Flags().Int("prefetch", config.DefaultPrefetchConcurrency,
		"Number of pages fetched in parallel when warming the cache")
	cmd.Flags().StringP("lang", "l", config.DefaultLanguage,
		"Language of user-visible text (ru or en)")
	cmd.Flags().Bool("no-animate", false,
		"Swap content immediately instead of fading")
	addStorageFlags(cmd)
}

// addStorageFlags registers the configuration file and database flags.
func addStorageFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitenav in current or home directory)")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the sitenav database")
	cmd.Flags().Bool("no-db", false,
		"Do not record anything in the database")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the secure structured logger selected by the global
// flags.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	jsonLog, err := cmd.Flags().GetBool("json-log")
	if err != nil {
		jsonLog, _ = cmd.Root().PersistentFlags().GetBool("json-log") //nolint:errcheck // defaults to text output
	}
	return ilog.New(cmd.ErrOrStderr(), ilog.Options{
		Verbose: getVerboseFlag(cmd),
		JSON:    jsonLog,
	})
}

// loadConfigFile fills cfg.File. A missing file is an error only when its
// path was given explicitly.
func loadConfigFile(cfg *config.Config) error {
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.File = file
	case explicitConfigPath:
		return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}
	return nil
}

// buildStorageConfig reads the configuration file and database flags.
func buildStorageConfig(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	if err := loadConfigFile(cfg); err != nil {
		return err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return err
	}
	if !noDB {
		cfg.DBDir, err = cmd.Flags().GetString("db-dir")
		if err != nil {
			return err
		}
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return nil
}

// buildConfig creates a Config from cobra command flags. The site comes
// from the first positional argument.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, config.SiteConfig, error) {
	cfg := config.NewConfig()

	var err error
	if cfg.Site, err = cmd.Flags().GetString("site"); err != nil {
		return nil, config.SiteConfig{}, err
	}
	if len(args) > 0 {
		cfg.Site = args[0]
	}
	if cfg.Entry, err = cmd.Flags().GetString("entry"); err != nil {
		return nil, config.SiteConfig{}, err
	}
	if cfg.ContentSelector, err = cmd.Flags().GetString("selector"); err != nil {
		return nil, config.SiteConfig{}, err
	}
	if cfg.Origin, err = cmd.Flags().GetString("origin"); err != nil {
		return nil, config.SiteConfig{}, err
	}
	if cfg.Timeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
		return nil, config.SiteConfig{}, err
	}
	if cfg.ProxyAddress, err = cmd.Flags().GetString("proxy"); err != nil {
		return nil, config.SiteConfig{}, err
	}
	if cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body-size"); err != nil {
		return nil, config.SiteConfig{}, err
	}
	if cfg.PrefetchConcurrency, err = cmd.Flags().GetInt("prefetch"); err != nil {
		return nil, config.SiteConfig{}, err
	}
	if cfg.Language, err = cmd.Flags().GetString("lang"); err != nil {
		return nil, config.SiteConfig{}, err
	}
	noAnimate, err := cmd.Flags().GetBool("no-animate")
	if err != nil {
		return nil, config.SiteConfig{}, err
	}
	cfg.Animate = !noAnimate

	if err := buildStorageConfig(cmd, cfg); err != nil {
		return nil, config.SiteConfig{}, err
	}

	site := cfg.ApplySite(fetch.Host(cfg.Site))
	return cfg, site, nil
}

// openDatabase opens the database in cfg.DBDir, or returns nil when
// persistence is disabled.
func openDatabase(cfg *config.Config, logger *slog.Logger) (*database.SiteDB, error) {
	if cfg.DBDir == "" {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", db.Path())
	return db, nil
}

// newFetcher creates the fetcher for cfg.Site with the host settings.
func newFetcher(cfg *config.Config, site config.SiteConfig) (fetch.Fetcher, error) {
	opts := []fetch.HTTPOption{
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
	}
	if cfg.ProxyAddress != "" {
		opts = append(opts, fetch.WithProxy(cfg.ProxyAddress))
	}
	if len(site.Headers) > 0 {
		opts = append(opts, fetch.WithHeaders(site.Headers))
	}
	if site.Cookie != "" {
		opts = append(opts, fetch.WithCookie(site.Cookie))
	}

	f, err := fetch.New(cfg.Site, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher for %s: %w", cfg.Site, err)
	}
	return f, nil
}

// siteOrigin returns the public origin of cfg.Site.
func siteOrigin(cfg *config.Config) string {
	if cfg.Origin != "" {
		return cfg.Origin
	}
	if u, err := url.Parse(cfg.Site); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return u.Scheme + "://" + u.Host
	}
	return "http://localhost"
}

// newContactService creates the contact service configured by the file.
func newContactService(cfg *config.Config, printer *i18n.Printer, db *database.SiteDB, logger *slog.Logger, opener contact.Opener) *contact.Service {
	cc := cfg.File.Contact
	telegramOpts := []contact.TelegramOption{}
	if cc.APIBase != "" {
		telegramOpts = append(telegramOpts, contact.WithAPIBase(cc.APIBase))
	}

	opts := []contact.Option{
		contact.WithTelegram(contact.NewTelegramSender(cc.BotToken, cc.ChatID, telegramOpts...)),
		contact.WithSiteName(cfg.SiteName),
		contact.WithPrinter(printer),
		contact.WithLogger(logger),
	}
	if cc.Email != "" {
		opts = append(opts, contact.WithRecipient(cc.Email))
	}
	if cc.Source != "" {
		opts = append(opts, contact.WithSource(cc.Source))
	}
	if opener != nil {
		opts = append(opts, contact.WithOpener(opener))
	}
	if db != nil {
		opts = append(opts, contact.WithStore(db))
	}
	return contact.NewService(opts...)
}

// consentStore returns the database, or an in-memory store without one.
func consentStore(db *database.SiteDB) consent.Store {
	if db == nil {
		return consent.NewMemoryStore()
	}
	return db
}

// session is a navigator over the live layout with every collaborator of
// the site installed.
type session struct {
	cfg     *config.Config
	nav     *navigator.Navigator
	site    *sitepages.Site
	printer *i18n.Printer
	db      *database.SiteDB
	logger  *slog.Logger
}

// sessionOptions tune newSession for a command.
type sessionOptions struct {
	// sessionID resumes a session; empty starts a new one.
	sessionID string

	// opener opens mailto links for the contact form fallback.
	opener contact.Opener

	// record stores every Load in the visit journal.
	record bool
}

// newSession fetches the entry page as the live layout and installs the
// site's collaborators. The caller must call Close.
func newSession(ctx context.Context, cfg *config.Config, site config.SiteConfig, db *database.SiteDB, logger *slog.Logger, so sessionOptions) (*session, error) {
	fetcher, err := newFetcher(cfg, site)
	if err != nil {
		return nil, err
	}

	printer, err := i18n.New(cfg.Language)
	if err != nil {
		return nil, err
	}

	layout, err := loadLayout(ctx, fetcher, cfg)
	if err != nil {
		return nil, err
	}

	sessionID := so.sessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	opts := []navigator.Option{
		navigator.WithLogger(logger),
		navigator.WithContentSelector(cfg.ContentSelector),
		navigator.WithHomePage(config.DefaultHomePage),
		navigator.WithSiteName(cfg.SiteName),
		navigator.WithDescription(cfg.DefaultDescription),
		navigator.WithPrinter(printer),
		navigator.WithPrefetchConcurrency(cfg.PrefetchConcurrency),
		navigator.WithSessionID(sessionID),
		navigator.WithIgnorePatterns(site.IgnorePatterns),
	}
	if cfg.Animate {
		opts = append(opts,
			navigator.WithSwapDelay(cfg.SwapDelay),
			navigator.WithSettleDelay(cfg.SettleDelay),
		)
	} else {
		opts = append(opts, navigator.WithSwapDelay(0), navigator.WithSettleDelay(0))
	}
	if db != nil && so.record {
		opts = append(opts, navigator.WithVisitRecorder(db))
	}
	nav := navigator.New(layout, fetcher, opts...)

	consentMgr := consent.NewManager(consentStore(db), sessionID,
		consent.WithPrinter(printer),
		consent.WithLogger(logger),
	)
	if err := consentMgr.Load(ctx); err != nil {
		nav.Close()
		return nil, err
	}

	menuMgr := menu.New(menu.WithLogger(logger))
	_ = nav.Do(func(doc *page.Document) error { //nolint:errcheck // the function never fails
		menuMgr.Init(doc)
		return nil
	})

	service := newContactService(cfg, printer, db, logger, so.opener)
	return &session{
		cfg:     cfg,
		nav:     nav,
		site:    sitepages.Install(nav, menuMgr, consentMgr, service),
		printer: printer,
		db:      db,
		logger:  logger,
	}, nil
}

// Close stops the navigator.
func (s *session) Close() {
	s.nav.Close()
}

// loadLayout fetches the entry page and parses it as the live document.
func loadLayout(ctx context.Context, fetcher fetch.Fetcher, cfg *config.Config) (*page.Document, error) {
	entry := navigator.NormalizeURL(cfg.Entry)
	resp, err := fetcher.Fetch(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", entry, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("failed to fetch %s: %w", entry, &navigator.FetchError{URL: entry, Status: resp.Status})
	}

	doc, err := page.Parse(bytes.NewReader(resp.Body),
		page.WithOrigin(siteOrigin(cfg)),
		page.WithLocation("/"+strings.TrimPrefix(entry, "/")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", entry, err)
	}
	return doc, nil
}

// openOutput returns the writer for a report: path, or stdout when path is
// empty. The returned function closes the file.
func openOutput(cmd *cobra.Command, path string) (out *os.File, closeFn func() error, err error) {
	if path == "" {
		return nil, func() error { return nil }, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports may list e-mail addresses found on the site.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// errNoDatabase is returned by commands that only read the database when
// persistence is disabled.
var errNoDatabase = errors.New("the database is disabled (--no-db)")

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
