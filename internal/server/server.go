// Package server hosts the chartdir command interpreter over HTTP.
//
// Pages post commands or whole scripts to /exec, fetch images of live
// handles and run named scripts from a directory, receiving the image the
// script returns. All endpoints share one [command.Interp] and therefore
// one handle registry.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/chartdir/pkg/command"
	"github.com/matzehuels/chartdir/pkg/observability"
)

// DefaultMaxBody bounds request bodies of /exec.
const DefaultMaxBody = 1 << 20

// shutdownTimeout bounds the graceful shutdown of [Server.ListenAndServe].
const shutdownTimeout = 5 * time.Second

// Options configures a Server.
type Options struct {
	Interp *command.Interp

	// ScriptDir holds the scripts served under /run/{name}. Empty disables
	// the endpoint.
	ScriptDir string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxBody      int64

	Logger *log.Logger
}

// Server is the HTTP host.
type Server struct {
	in        *command.Interp
	scriptDir string
	maxBody   int64
	read      time.Duration
	write     time.Duration
	logger    *log.Logger
	router    chi.Router
}

// New builds the router.
func New(opts Options) *Server {
	s := &Server{
		in:        opts.Interp,
		scriptDir: opts.ScriptDir,
		maxBody:   opts.MaxBody,
		read:      opts.ReadTimeout,
		write:     opts.WriteTimeout,
		logger:    opts.Logger,
	}
	if s.in == nil {
		s.in = command.New(command.Options{})
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBody
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Post("/exec", s.handleExec)
	r.Get("/charts", s.handleCharts)
	r.Delete("/charts/{id}", s.handleDestroy)
	r.Get("/charts/{id}/image.{format}", s.handleImage)
	r.Post("/gc", s.handleGC)
	r.Get("/run/{name}", s.handleRun)
	r.Get("/version", s.handleVersion)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok\n")
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.read,
		WriteTimeout: s.write,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("shutdown", "error", err)
		return srv.Close()
	}
	s.logger.Info("server stopped")
	return nil
}

// =============================================================================
// Middleware
// =============================================================================

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// requestID keeps a client supplied id or assigns a new uuid.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFrom returns the id assigned to the request carried by ctx.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		observability.HTTP().OnRequest(ctx, r.Method, r.URL.Path)
		ctx = command.WithLogger(ctx, s.logger.With("request_id", RequestIDFrom(ctx)))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		observability.HTTP().OnResponse(ctx, r.Method, r.URL.Path, status, dur)
		s.logger.Debug("request",
			"id", RequestIDFrom(ctx),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", dur,
		)
	})
}
