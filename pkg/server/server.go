// Package server exposes charts over an HTTP JSON API.
//
// Charts live in a [store.Store]. Every mutation rebuilds the chart from its
// stored definition, applies one chart operation (which recomputes the
// layout) and stores the resulting definition. Layouts and artifacts are
// produced by a [pipeline.Runner] and cached like CLI output.
//
// Routes:
//
//	GET    /healthz
//	GET    /charts
//	POST   /charts                                  (?demo=caffeine)
//	GET    /charts/{id}
//	DELETE /charts/{id}
//	POST   /charts/{id}/subcategories
//	POST   /charts/{id}/categories
//	PUT    /charts/{id}/categories/{name}
//	PUT    /charts/{id}/categories/{name}/values/{sub}
//	POST   /charts/{id}/ycategories
//	PUT    /charts/{id}/ycategories/{name}
//	GET    /charts/{id}/layout
//	GET    /charts/{id}/render/{format}
//
// Errors are returned as {"code": ..., "message": ...} with a status derived
// from the error code.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/mosaic/pkg/pipeline"
	"github.com/matzehuels/mosaic/pkg/store"
)

const (
	maxBodyBytes    = 1 << 20
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server serves the chart API.
type Server struct {
	store  store.Store
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New creates a server. A nil logger discards output.
func New(st store.Store, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{store: st, runner: runner, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/charts", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)

			r.Post("/subcategories", s.handleAddSubCategory)
			r.Post("/categories", s.handleAddCategory)
			r.Put("/categories/{name}", s.handleSetCategoryValue)
			r.Put("/categories/{name}/values/{sub}", s.handleSetSubCategoryValue)
			r.Post("/ycategories", s.handleAddYCategory)
			r.Put("/ycategories/{name}", s.handleSetYCategoryValue)

			r.Get("/layout", s.handleLayout)
			r.Get("/render/{format}", s.handleRender)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Code: "METHOD_NOT_ALLOWED", Message: r.Method + " not allowed"})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
