// internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"

	"github.com/pagesnap/pagesnap/internal/capture"
	"github.com/pagesnap/pagesnap/internal/config"
	"github.com/pagesnap/pagesnap/internal/history"
	"github.com/pagesnap/pagesnap/internal/monitoring"
	"github.com/pagesnap/pagesnap/internal/utils"
)

// Executor runs one capture request end to end. The capture pipeline
// is the production implementation.
type Executor interface {
	Execute(ctx context.Context, q url.Values) (*capture.Result, error)
}

// Options wires a Server's collaborators. Pipeline is required;
// everything else is optional.
type Options struct {
	Pipeline       Executor
	Metrics        *monitoring.Metrics
	MetricsHandler http.Handler
	History        *history.Store
	Logger         utils.Logger
	Version        string
}

// Server is the HTTP front of the capture service.
type Server struct {
	cfg      *config.ServiceConfig
	pipeline Executor
	metrics  *monitoring.Metrics
	history  *history.Store
	health   *monitoring.HealthReporter
	limiter  *ipLimiter
	log      utils.Logger
	version  string
	router   *mux.Router
	inFlight int64
}

// New builds the server and its routes.
func New(cfg *config.ServiceConfig, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger()
	}

	s := &Server{
		cfg:      cfg,
		pipeline: opts.Pipeline,
		metrics:  opts.Metrics,
		history:  opts.History,
		log:      logger,
		version:  opts.Version,
	}

	s.health = monitoring.NewHealthReporter(cfg.Name, s.version, string(cfg.Profile), func() int {
		return int(atomic.LoadInt64(&s.inFlight))
	})

	if cfg.RateLimit.Enabled {
		s.limiter = newIPLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	r := mux.NewRouter()
	r.HandleFunc("/capture", s.handleCapture).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/docs", s.handleDocs).Methods(http.MethodGet)
	r.HandleFunc("/", s.handleDocs).Methods(http.MethodGet)
	if opts.MetricsHandler != nil {
		r.Handle("/metrics", opts.MetricsHandler).Methods(http.MethodGet)
	}
	if s.history != nil {
		r.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	}
	s.router = r

	return s
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = s.rateLimitMiddleware(h)
	if s.cfg.Server.EnableCORS {
		h = corsMiddleware(h)
	}
	h = s.loggingMiddleware(h)
	return h
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout(),
		WriteTimeout: s.cfg.Server.WriteTimeout(),
		IdleTimeout:  s.cfg.Server.IdleTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithFields(map[string]interface{}{
			"address": srv.Addr,
			"profile": string(s.cfg.Profile),
		}).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}
