package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/louvel/scantext/internal/config"
	"github.com/louvel/scantext/internal/correct"
	"github.com/louvel/scantext/internal/ocr"
	"github.com/louvel/scantext/internal/pipeline"
	"github.com/louvel/scantext/internal/textclean"
)

const (
	// requestTimeout bounds one request end to end. Rendering and
	// recognizing a large PDF takes a while, so this is generous.
	requestTimeout = 5 * time.Minute

	// shutdownTimeout is how long graceful shutdown waits for
	// in-flight extractions to finish.
	shutdownTimeout = 30 * time.Second
)

// Server is the HTTP API for extraction. It wraps the same pipeline the
// CLI uses behind a multipart upload endpoint.
type Server struct {
	// cfg supplies defaults for extraction parameters, the listen
	// address, the upload limit, and the concurrency cap.
	cfg *config.Config

	// engine is the shared OCR engine used by every request.
	engine ocr.Engine

	// cleaner is applied when a request asks for text cleanup.
	cleaner *textclean.Cleaner

	// corrector is applied when a request asks for AI correction.
	// Nil when no API key is configured; such requests get a 400.
	corrector correct.Corrector

	// recorder persists finished runs to history. Nil disables
	// recording and requests report history as skipped.
	recorder pipeline.RunRecorder

	// sem caps concurrent extraction jobs. Requests over the cap wait.
	sem *semaphore.Weighted

	// logger is used for structured logging.
	logger *slog.Logger

	// httpServer is the underlying HTTP server, set by Start.
	httpServer *http.Server
}

// Option is a function that configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger for the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithCleaner sets the cleaner used for requests with clean enabled.
func WithCleaner(cleaner *textclean.Cleaner) Option {
	return func(s *Server) {
		s.cleaner = cleaner
	}
}

// WithCorrector sets the AI corrector used for requests with
// apply_ai_correction enabled.
func WithCorrector(corrector correct.Corrector) Option {
	return func(s *Server) {
		s.corrector = corrector
	}
}

// WithRecorder sets the history recorder for finished runs.
func WithRecorder(recorder pipeline.RunRecorder) Option {
	return func(s *Server) {
		s.recorder = recorder
	}
}

// NewServer creates a server around a shared OCR engine.
//
// Design decision: The engine is shared across requests and the
// concurrency cap defaults to one job at a time, because recognition
// saturates the CPU on its own. ServerMaxConcurrent raises the cap on
// machines with cores to spare.
func NewServer(engine ocr.Engine, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:    cfg,
		engine: engine,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.cleaner == nil {
		s.cleaner = textclean.NewCleaner()
	}

	maxConcurrent := cfg.ServerMaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	s.sem = semaphore.NewWeighted(int64(maxConcurrent))

	return s
}

// Router builds the HTTP routing table with the middleware stack.
// It is separate from Start so tests can drive it directly.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(corsHeaders)

	r.Get("/api/v1/extract", s.handleHealth)
	r.Post("/api/v1/extract", s.handleExtract)

	return r
}

// Start runs the HTTP server and blocks until ctx is cancelled or the
// listener fails. On cancellation the server shuts down gracefully,
// letting in-flight extractions finish.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.ServerAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting http server", "addr", s.cfg.ServerAddr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// logRequests logs one line per handled request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Info("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// corsHeaders adds permissive CORS headers for dev usage.
func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
