// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	auditHTTP "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/audit/http"
	"github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/metrics"
	vaultHTTP "github.com/BaramayStation/TetraCryptPQC-Nexus-sub000/internal/vault/http"
)

// RouterConfig holds the optional middleware settings of the API router.
type RouterConfig struct {
	CORSEnabled      bool
	CORSAllowOrigins []string
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	MetricsNamespace string
}

// Server represents the HTTP server
type Server struct {
	server    *http.Server
	logger    *slog.Logger
	router    *gin.Engine
	providers vaultHTTP.ProviderStatusReader
	keys      vaultHTTP.KeyStatusReader
}

// NewServer creates a new HTTP server. providers and keys back the readiness probe.
func NewServer(
	providers vaultHTTP.ProviderStatusReader,
	keys vaultHTTP.KeyStatusReader,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		logger:    logger,
		providers: providers,
		keys:      keys,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers middleware and every API route.
func (s *Server) SetupRouter(
	cfg RouterConfig,
	valueHandler *vaultHTTP.ValueHandler,
	keyHandler *vaultHTTP.KeyHandler,
	auditHandler *auditHTTP.AuditHandler,
	meterProvider metric.MeterProvider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}

	if corsMiddleware := newCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst, s.logger))
	}

	values := v1.Group("/values")
	{
		values.GET("", valueHandler.ListHandler)
		values.PUT("/*key", valueHandler.PutHandler)
		values.GET("/*key", valueHandler.GetHandler)
		values.DELETE("/*key", valueHandler.DeleteHandler)
	}

	keys := v1.Group("/keys")
	{
		keys.GET("", keyHandler.StatusHandler)
		keys.POST("/rotate", keyHandler.RotateHandler)
	}

	v1.GET("/storage/providers", keyHandler.StorageStatusHandler)

	audit := v1.Group("/audit")
	{
		audit.GET("/events", auditHandler.ListHandler)
		audit.DELETE("/events", auditHandler.ClearHandler)
		audit.GET("/stats", auditHandler.StatsHandler)
		audit.GET("/verify", auditHandler.VerifyHandler)
		audit.GET("/export", auditHandler.ExportHandler)
	}

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not initialized, call SetupRouter first")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready when at least one storage provider answered
// the last probe and the root key slot is initialized.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{
		"storage":  "ok",
		"root_key": "ok",
	}
	ready := true

	switch {
	case s.providers == nil:
		components["storage"] = "error"
		ready = false
	case s.providers.Degraded():
		components["storage"] = "degraded"
		ready = false
	}

	switch {
	case s.keys == nil:
		components["root_key"] = "error"
		ready = false
	case !s.keys.Status().Initialized:
		components["root_key"] = "uninitialized"
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}
