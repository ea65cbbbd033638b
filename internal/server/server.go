package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/sitenav/internal/consent"
	"github.com/nao1215/sitenav/internal/contact"
	"github.com/nao1215/sitenav/internal/fetch"
)

// Default values of a Server.
const (
	DefaultContentSelector = "main"
	DefaultRequestTimeout  = 60 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

// Config holds server configuration.
type Config struct {
	// Address is the listen address ("host:port").
	Address string

	// ContentSelector selects the main region returned by the fragment API.
	ContentSelector string

	// AllowedOrigins are the CORS origins accepted by the API. Empty
	// allows only local development origins.
	AllowedOrigins []string
}

// Server serves the static site together with the JSON API the site's
// scripts talk to: contact relay, consent storage and page fragments.
type Server struct {
	cfg     Config
	site    fs.FS
	pages   fetch.Fetcher
	contact *contact.Service
	consent consent.Store
	logger  *slog.Logger
	now     func() time.Time
	router  chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithContactService enables POST /api/contact.
func WithContactService(svc *contact.Service) Option {
	return func(s *Server) {
		s.contact = svc
	}
}

// WithConsentStore persists consent choices in addition to the cookie.
func WithConsentStore(store consent.Store) Option {
	return func(s *Server) {
		s.consent = store
	}
}

// WithClock sets the clock used for cookie expiry and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a Server for the site in site, typically os.DirFS of the
// static site directory.
func New(cfg Config, site fs.FS, opts ...Option) *Server {
	if cfg.ContentSelector == "" {
		cfg.ContentSelector = DefaultContentSelector
	}
	s := &Server{
		cfg:    cfg,
		site:   site,
		pages:  fetch.NewDirFetcher(site),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(DefaultRequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(s.corsOptions()))

		r.Post("/contact", s.handleContact)

		r.Route("/consent", func(r chi.Router) {
			r.Get("/", s.handleGetConsent)
			r.Post("/", s.handleSaveConsent)
			r.Delete("/", s.handleDeleteConsent)
		})

		r.Get("/fragment/{page}", s.handleFragment)
	})

	r.Handle("/*", http.FileServerFS(s.site))

	return r
}

func (s *Server) corsOptions() cors.Options {
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler { return s.router }

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      DefaultRequestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving site", "address", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
