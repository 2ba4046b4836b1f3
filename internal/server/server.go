// Package server exposes the administrative operations over HTTP.
//
// Handlers depend on the narrow Admin interface rather than on live
// databases, so they are testable with a fake. Live adapts the root
// package's operations to that interface for real deployments.
//
// Routes:
//
//	GET    /healthz
//	GET    /v1/databases/exists?url=
//	POST   /v1/databases            {"url": ..., "encoding": ..., "template": ...}
//	DELETE /v1/databases?url=&force=&diagnostics=
//	GET    /v1/databases/ping?url=
//	GET    /v1/tables?url=
//	GET    /v1/tables/{table}?url=
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/dbadmin"
	"github.com/koustreak/dbadmin/internal/logger"
	"github.com/koustreak/dbadmin/schema"
)

// Admin is the slice of administrative operations the handlers call.
type Admin interface {
	DatabaseExists(ctx context.Context, rawURL string) (bool, error)
	CreateDatabase(ctx context.Context, rawURL, encoding, template string) error
	DropDatabase(ctx context.Context, rawURL string, force, diagnostics bool) error
	Ping(ctx context.Context, rawURL string) error
	ListTables(ctx context.Context, rawURL string) ([]string, error)
	InspectTable(ctx context.Context, rawURL, table string) (*schema.Table, error)
}

// Live dispatches to the package-level operations of dbadmin.
type Live struct{}

var _ Admin = Live{}

func (Live) DatabaseExists(ctx context.Context, rawURL string) (bool, error) {
	return dbadmin.DatabaseExists(ctx, rawURL)
}

func (Live) CreateDatabase(ctx context.Context, rawURL, encoding, template string) error {
	var opts []dbadmin.CreateOption
	if encoding != "" {
		opts = append(opts, dbadmin.WithEncoding(encoding))
	}
	if template != "" {
		opts = append(opts, dbadmin.WithTemplate(template))
	}
	return dbadmin.CreateDatabase(ctx, rawURL, opts...)
}

func (Live) DropDatabase(ctx context.Context, rawURL string, force, diagnostics bool) error {
	return dbadmin.DropDatabase(ctx, rawURL,
		dbadmin.WithForceDisconnect(force),
		dbadmin.WithDiagnostics(diagnostics))
}

func (Live) Ping(ctx context.Context, rawURL string) error {
	return dbadmin.Ping(ctx, rawURL)
}

func (Live) ListTables(ctx context.Context, rawURL string) ([]string, error) {
	return dbadmin.ListTables(ctx, rawURL)
}

func (Live) InspectTable(ctx context.Context, rawURL, table string) (*schema.Table, error) {
	return dbadmin.InspectTable(ctx, rawURL, table)
}

// Config holds the server settings.
type Config struct {
	// Listen is the host:port the server binds to.
	Listen string
}

// Server routes HTTP requests to an Admin.
type Server struct {
	cfg   Config
	admin Admin
	log   *logger.Logger
}

// New creates a Server. A nil log falls back to the default logger.
func New(cfg Config, admin Admin, log *logger.Logger) *Server {
	if log == nil {
		log = logger.New(nil)
	}
	return &Server{cfg: cfg, admin: admin, log: log}
}

// Handler assembles the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/databases/exists", s.handleExists)
		r.Get("/databases/ping", s.handlePing)
		r.Post("/databases", s.handleCreate)
		r.Delete("/databases", s.handleDrop)
		r.Get("/tables", s.handleListTables)
		r.Get("/tables/{table}", s.handleInspectTable)
	})
	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.InfoWith("server listening", map[string]interface{}{"addr": s.cfg.Listen})

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger logs one structured event per request and threads the
// logger through the request context for downstream code. The query string
// is left out of the log: connection URLs carry credentials.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(s.log.WithContext(r.Context())))

		s.log.InfoWith("request handled", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
	})
}
