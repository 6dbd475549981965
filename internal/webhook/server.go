package webhook

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/stepup/internal/config"
	apphttp "github.com/allisson/stepup/internal/http"
	"github.com/allisson/stepup/internal/metrics"
	policyUseCase "github.com/allisson/stepup/internal/policy/usecase"
)

// Server is the HTTP server for the event listener.
type Server struct {
	server *http.Server
	logger *slog.Logger
	cancel context.CancelFunc
}

// NewServer creates the event listener server. db may be nil when the
// approval store runs in memory; it only feeds the readiness check. The
// metrics provider may be nil to disable request metrics.
func NewServer(
	cfg *config.Config,
	approvals policyUseCase.ApprovalUseCase,
	db *sql.DB,
	metricsProvider *metrics.Provider,
	logger *slog.Logger,
) (*Server, error) {
	verifier, err := NewSignatureVerifier(cfg.WebhookSecret)
	if err != nil {
		return nil, err
	}
	handler := NewHandler(approvals, verifier, logger)

	// Background context for the rate limiter cleanup, cancelled on Shutdown.
	ctx, cancel := context.WithCancel(context.Background())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(apphttp.CustomLoggerMiddleware(logger))
	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", apphttp.HealthHandler())
	router.GET("/ready", apphttp.ReadinessHandler(db))

	events := router.Group("/webhook")
	if cfg.WebhookRateLimitEnabled {
		events.Use(RateLimitMiddleware(
			ctx,
			cfg.WebhookRateLimitRequestsPerSec,
			cfg.WebhookRateLimitBurst,
			logger,
		))
	}
	events.POST("/events", handler.HandleEvent)

	router.GET("/approvals", handler.ListApprovals)
	router.GET("/approvals/:id", handler.GetApproval)

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.WebhookHost, cfg.WebhookPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		cancel: cancel,
	}, nil
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the event listener server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting webhook server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start webhook server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the event listener server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down webhook server")
	s.cancel()
	return s.server.Shutdown(ctx)
}
