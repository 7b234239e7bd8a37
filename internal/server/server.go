package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/rundown/pkg/editor"
	rerrors "github.com/matzehuels/rundown/pkg/errors"
	"github.com/matzehuels/rundown/pkg/render"
)

const (
	DefaultAddr            = "localhost:8080"
	DefaultMaxBodyBytes    = 4 << 20
	DefaultShutdownTimeout = 5 * time.Second
)

// RenderFunc turns DOT source into SVG.
type RenderFunc func(ctx context.Context, dot string) ([]byte, error)

// =============================================================================
// Options
// =============================================================================

// Options configures a Server.
type Options struct {
	// Addr is the listen address. Defaults to DefaultAddr.
	Addr string

	// Logger receives request logs. Defaults to a discarding logger.
	Logger *log.Logger

	// MaxBodyBytes limits request bodies. Defaults to DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// ShutdownTimeout bounds graceful shutdown in Run.
	ShutdownTimeout time.Duration

	// Render produces SVG for /render.svg. Defaults to render.RenderSVG.
	Render RenderFunc
}

// SetDefaults fills in unset fields.
func (o *Options) SetDefaults() {
	if o.Addr == "" {
		o.Addr = DefaultAddr
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = DefaultShutdownTimeout
	}
	if o.Render == nil {
		o.Render = render.RenderSVG
	}
}

// =============================================================================
// Server
// =============================================================================

// Server serves one editor.
type Server struct {
	ed     *editor.Editor
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New creates a Server for ed.
func New(ed *editor.Editor, opts Options) (*Server, error) {
	if ed == nil {
		return nil, rerrors.New(rerrors.ErrCodeInvalidInput, "editor is required")
	}
	opts.SetDefaults()
	s := &Server{
		ed:     ed,
		opts:   opts,
		logger: opts.Logger,
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	r.Use(s.limitBody)

	r.Get("/healthz", s.handleHealth)

	r.Get("/project", s.handleGetProject)
	r.Put("/project", s.handlePutProject)
	r.Post("/commands", s.handleCommands)

	r.Get("/export", s.handleExport)
	r.Post("/import", s.handleImport)

	r.Get("/script.md", s.handleScript)
	r.Get("/render.dot", s.handleDOT)
	r.Get("/render.svg", s.handleSVG)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, rerrors.New(rerrors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, errorBody{
			Code:  string(rerrors.ErrCodeInvalidInput),
			Error: r.Method + " is not allowed on " + r.URL.Path,
		})
	})
	return r
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()
	s.logger.Info("listening", "addr", s.opts.Addr, "key", s.ed.Key())

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-serverErr:
		if err != nil {
			return rerrors.Wrap(rerrors.ErrCodeNetwork, err, "listen on %s", s.opts.Addr)
		}
		return nil
	}
}
