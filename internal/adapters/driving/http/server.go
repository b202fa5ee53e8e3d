package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/facturas-core/internal/core/ports/driven"
	"github.com/custodia-labs/facturas-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	shutdownGrace   time.Duration
	defaultRedirect string

	// Services
	oauthService      driving.OAuthService
	accountService    driving.AccountService
	fileService       driving.FileAccessService
	comparisonService driving.ComparisonService
	reviewService     driving.ReviewService
	metricsService    driving.MetricsService

	// Infrastructure
	sessions    driven.SessionResolver
	db          Pinger // PostgreSQL health check
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// DefaultRedirectPath is used when a callback fails before the state is decoded.
	DefaultRedirectPath string
	SessionCookieName   string
	CORSOrigins         []string
	ShutdownGrace       time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:                "0.0.0.0",
		Port:                8080,
		Version:             "dev",
		DefaultRedirectPath: "/integraciones",
		SessionCookieName:   "session",
		ShutdownGrace:       10 * time.Second,
	}
}

// Services groups the driving ports the server exposes.
type Services struct {
	OAuth      driving.OAuthService
	Accounts   driving.AccountService
	Files      driving.FileAccessService
	Comparison driving.ComparisonService
	Review     driving.ReviewService
	Metrics    driving.MetricsService
}

// Infrastructure groups the driven dependencies the server uses directly.
type Infrastructure struct {
	Sessions driven.SessionResolver
	DB       Pinger
	Redis    Pinger // can be nil
	Logger   *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, svc Services, infra Infrastructure) *Server {
	logger := infra.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultRedirectPath == "" {
		cfg.DefaultRedirectPath = DefaultConfig().DefaultRedirectPath
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = DefaultConfig().ShutdownGrace
	}

	s := &Server{
		router:            http.NewServeMux(),
		version:           cfg.Version,
		logger:            logger,
		shutdownGrace:     cfg.ShutdownGrace,
		defaultRedirect:   cfg.DefaultRedirectPath,
		oauthService:      svc.OAuth,
		accountService:    svc.Accounts,
		fileService:       svc.Files,
		comparisonService: svc.Comparison,
		reviewService:     svc.Review,
		metricsService:    svc.Metrics,
		sessions:          infra.Sessions,
		db:                infra.DB,
		redisClient:       infra.Redis,
	}

	s.setupRoutes(cfg)

	var handler http.Handler = s.router
	handler = NewCORSMiddleware(cfg.CORSOrigins).Handler(handler)
	handler = NewRecoveryMiddleware(logger).Handler(handler)
	handler = NewLoggingMiddleware(logger).Handler(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) {
	session := NewSessionMiddleware(s.sessions, cfg.SessionCookieName)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwaggerDoc)

	// OAuth connect flow. The callback is public: the signed state carries the user.
	s.router.Handle("GET /api/v1/oauth/{provider}/start",
		session.Authenticate(http.HandlerFunc(s.handleOAuthStart)))
	s.router.HandleFunc("GET /api/v1/oauth/{provider}/callback", s.handleOAuthCallback)
	s.router.HandleFunc("POST /api/v1/oauth/{provider}/callback", s.handleOAuthCallback)

	// Connected accounts
	s.router.Handle("GET /api/v1/accounts",
		session.Authenticate(http.HandlerFunc(s.handleListAccounts)))
	s.router.Handle("GET /api/v1/accounts/{provider}",
		session.Authenticate(http.HandlerFunc(s.handleGetAccount)))

	// Invoice documents
	s.router.Handle("GET /api/v1/files/drive/{fileId}",
		session.Authenticate(http.HandlerFunc(s.handleGetDriveFile)))

	// Invoice comparison and review
	s.router.Handle("GET /api/v1/facturas/comparisons",
		session.Authenticate(http.HandlerFunc(s.handleListComparisons)))
	s.router.Handle("GET /api/v1/facturas/metrics",
		session.Authenticate(http.HandlerFunc(s.handleGetMetrics)))
	s.router.Handle("GET /api/v1/facturas/{uid}/comparison",
		session.Authenticate(http.HandlerFunc(s.handleGetComparison)))
	s.router.Handle("GET /api/v1/facturas/{uid}/review",
		session.Authenticate(http.HandlerFunc(s.handleGetReview)))
	s.router.Handle("PUT /api/v1/facturas/{uid}/review",
		session.Authenticate(http.HandlerFunc(s.handlePutReview)))
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownGrace)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
