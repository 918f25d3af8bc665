// Package httpapi wires the gateway's OpenAI-compatible HTTP surface: chat
// completions (streaming and non-streaming), model listing, health/stats,
// and the admin credential-pool endpoints, using the route/middleware
// assembly and graceful-shutdown shape of a typical net/http server wrapper.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gemini-gateway/pkg/config"
	"gemini-gateway/pkg/httpapi/handlers"
	"gemini-gateway/pkg/httpapi/middleware"
	"gemini-gateway/pkg/security/auth"
)

const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 0 // streaming responses must not be cut off
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 15 * time.Second
)

// AdminPoolStats is the union the credential pool satisfies; handlers only
// need the narrower AdminPool/PoolStats slices, but Deps takes one concrete
// dependency to avoid wiring the pool twice.
type AdminPoolStats interface {
	handlers.AdminPool
	handlers.PoolStats
}

// Server is the gateway's main HTTP server.
type Server struct {
	cfg          *config.Config
	httpServer   *http.Server
	logger       *slog.Logger
	startedAt    time.Time
	shutdownOnce sync.Once
	shutdownChan chan struct{}
	mu           sync.RWMutex
	isRunning    bool

	dispatcher handlers.Dispatcher
	pool       AdminPoolStats
	clientAuth *auth.APIKeyValidator
	adminAuth  *auth.APIKeyValidator
	version    string
	metrics    middleware.RequestRecorder
	evidence   handlers.EvidenceRecorder
}

// Deps bundles the components NewServer wires into the route table.
type Deps struct {
	Config     *config.Config
	Dispatcher handlers.Dispatcher
	Pool       AdminPoolStats
	ClientAuth *auth.APIKeyValidator
	AdminAuth  *auth.APIKeyValidator
	Logger     *slog.Logger
	Version    string
	// Metrics is optional; when nil, no per-request metrics are recorded.
	Metrics middleware.RequestRecorder
	// Evidence is optional; when nil, no dispatch outcomes are persisted.
	Evidence handlers.EvidenceRecorder
}

// NewServer builds a Server ready to Start.
func NewServer(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := d.Version
	if version == "" {
		version = "dev"
	}
	return &Server{
		cfg:          d.Config,
		logger:       logger,
		startedAt:    time.Now(),
		shutdownChan: make(chan struct{}),
		dispatcher:   d.Dispatcher,
		pool:         d.Pool,
		clientAuth:   d.ClientAuth,
		adminAuth:    d.AdminAuth,
		version:      version,
		metrics:      d.Metrics,
		evidence:     d.Evidence,
	}
}

// Start starts the HTTP server and blocks until shutdown, using a
// signal-handling/shutdown-channel select loop.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	addr := fmt.Sprintf("%s:%d", s.cfg.ServiceHost, s.cfg.ServicePort)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting gateway server", "address", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", shutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("gateway server stopped")
	})

	return shutdownErr
}

// Handler returns the fully wired HTTP handler, useful for tests that drive
// the server via httptest without binding a real port.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// routes assembles the route table and middleware chain. Client-tier routes
// sit behind clientAuth, admin routes behind adminAuth, and /health is
// unauthenticated so orchestrators can probe it freely.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	chatHandler := handlers.NewChatHandler(s.dispatcher, s.logger).WithEvidence(s.evidence)
	modelsHandler := handlers.NewModelsHandler()
	healthHandler := handlers.NewHealthHandler(s.pool, s.startedAt, s.version)
	statsHandler := handlers.NewStatsHandler(s.pool)
	adminKeysHandler := handlers.NewAdminKeysHandler(s.pool)
	adminKeyStatusHandler := handlers.NewAdminKeyStatusHandler(s.pool)

	clientMW := auth.NewAPIKeyMiddleware(s.clientAuth, auth.DefaultSources(), s.logger)
	adminMW := auth.NewAPIKeyMiddleware(s.adminAuth, auth.DefaultSources(), s.logger)

	mux.Handle("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/v1/chat/completions", clientMW.Handle(chatHandler))
	mux.Handle("/v1/models", clientMW.Handle(modelsHandler))
	mux.Handle("/stats", clientMW.Handle(statsHandler))
	mux.Handle("/admin/keys", adminMW.Handle(adminKeysHandler))
	mux.Handle("/admin/keys/{key_id}", adminMW.Handle(adminKeyStatusHandler))

	// Timeout middleware deliberately excludes /v1/chat/completions: that
	// handler's own upstream timeout already bounds each call, and a
	// blanket handler timeout would cut off a healthy long SSE stream.
	// Every other route gets wrapped.
	timedOut := middleware.TimeoutMiddleware(s.cfg.GeminiRequestTimeout + 30*time.Second)(mux)
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/chat/completions" {
			mux.ServeHTTP(w, r)
			return
		}
		timedOut.ServeHTTP(w, r)
	})

	corsConfig := middleware.DefaultCORSConfig(s.cfg.ServiceCORSOrigins)
	handler = middleware.CORSMiddleware(corsConfig)(handler)
	handler = middleware.MetricsMiddleware(s.metrics, routeLabel)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.LoggingMiddleware(s.logger)(handler)
	handler = middleware.RecoveryMiddleware(s.logger)(handler)

	return handler
}

// routeLabel collapses the one path-parameterized route into a constant
// label so /admin/keys/{key_id} doesn't create one Prometheus series per key.
func routeLabel(r *http.Request) string {
	if strings.HasPrefix(r.URL.Path, "/admin/keys/") {
		return "/admin/keys/{key_id}"
	}
	return r.URL.Path
}

// IsRunning reports whether the server is currently accepting connections.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
