// Package api serves the exporter over HTTP.
//
// Routes:
//
//	GET    /healthz
//	POST   /api/v1/export                 diagram body → .xlsx
//	POST   /api/v1/layout                 diagram body → laid-out diagram
//	POST   /api/v1/lint                   diagram body → findings
//	GET    /api/v1/diagrams               ?project= → summaries
//	POST   /api/v1/diagrams               diagram body → stored diagram
//	GET    /api/v1/diagrams/{id}
//	DELETE /api/v1/diagrams/{id}
//	GET    /api/v1/diagrams/{id}/export   → .xlsx
//
// Diagram bodies are JSON, or YAML when Content-Type says so. Export and
// layout accept ?layout=auto|always|never and ?refresh=true.
package api

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/procsheet/pkg/config"
	"github.com/matzehuels/procsheet/pkg/observability"
	"github.com/matzehuels/procsheet/pkg/pipeline"
	"github.com/matzehuels/procsheet/pkg/store"
)

// DefaultMaxBodyBytes caps request bodies when Server.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 10 << 20

// Server holds the collaborators shared by all handlers. It is safe for
// concurrent use once constructed.
type Server struct {
	Runner *pipeline.Runner
	Store  store.Store
	// Options are the per-request pipeline defaults; query parameters
	// override LayoutMode and Refresh.
	Options      pipeline.Options
	Logger       *log.Logger
	MaxBodyBytes int64
}

// New returns a server. A nil logger discards output.
func New(runner *pipeline.Runner, st store.Store, opts pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		Runner:       runner,
		Store:        st,
		Options:      opts,
		Logger:       logger,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/export", s.handleExport)
		r.Post("/layout", s.handleLayout)
		r.Post("/lint", s.handleLint)

		r.Route("/diagrams", func(r chi.Router) {
			r.Get("/", s.handleListDiagrams)
			r.Post("/", s.handlePutDiagram)
			r.Get("/{id}", s.handleGetDiagram)
			r.Delete("/{id}", s.handleDeleteDiagram)
			r.Get("/{id}/export", s.handleExportDiagram)
		})
	})
	return r
}

// logRequests logs each request and reports it to the HTTP hooks under its
// route pattern.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)
		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, duration)
		s.Logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", duration)
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, cfg config.Server) error {
	if cfg.MaxBodyBytes > 0 {
		s.MaxBodyBytes = cfg.MaxBodyBytes
	}
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout.Duration,
		WriteTimeout: cfg.WriteTimeout.Duration,
	}

	errc := make(chan error, 1)
	go func() {
		s.Logger.Info("listening", "addr", cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}
