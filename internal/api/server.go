// Package api serves loads as a read-only JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/paddock/internal/loader"
	"github.com/sells-group/paddock/internal/model"
	"github.com/sells-group/paddock/internal/store"
)

// Service is the set of loads the API exposes. *loader.Loader satisfies it.
type Service interface {
	Sessions(ctx context.Context, year int, sessionType model.SessionType) ([]model.Session, error)
	ResultsFor(ctx context.Context, req loader.Request) (*model.SessionResult, error)
	Latest(ctx context.Context, year int) (*model.SessionResult, error)
	Standings(ctx context.Context, year int) ([]model.Standing, error)
	Runs(ctx context.Context, filter store.RunFilter) ([]model.Run, error)
}

var _ Service = (*loader.Loader)(nil)

// Options configures the server.
type Options struct {
	Addr           string
	AllowedOrigins []string
	// RequestTimeout bounds one load. Zero means no bound beyond the client's.
	RequestTimeout time.Duration
}

// Server wraps the HTTP server and its router.
type Server struct {
	srv *http.Server
}

// New creates a Server for svc.
func New(svc Service, opts Options) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              opts.Addr,
			Handler:           NewRouter(svc, opts),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

// NewRouter builds the route table.
func NewRouter(svc Service, opts Options) chi.Router {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}

	h := &handlers{svc: svc}
	r.Get("/health", h.health)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/latest", h.latest)
		r.Get("/runs", h.runs)
		r.Route("/seasons/{year}", func(r chi.Router) {
			r.Get("/sessions", h.sessions)
			r.Get("/sessions/{key}/results", h.resultsByKey)
			r.Get("/rounds/{round}/results", h.resultsByRound)
			r.Get("/standings", h.standings)
		})
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

// Run listens and serves until Shutdown is called.
func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return eris.Wrapf(err, "api: listen on %s", s.srv.Addr)
	}
	zap.L().Info("api: listening", zap.String("addr", ln.Addr().String()))

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return eris.Wrap(err, "api: serve")
}

// Shutdown stops the server, waiting up to ten seconds for in-flight loads.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return eris.Wrap(s.srv.Shutdown(ctx), "api: shutdown")
}

// Addr formats a listen address for port.
func Addr(port int) string {
	return fmt.Sprintf(":%d", port)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			zap.L().Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
