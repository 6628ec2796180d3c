// Package http assembles the gin router and HTTP server.
package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openpbrl/openpbrl/internal/api/http/handlers"
	"github.com/openpbrl/openpbrl/internal/api/http/middleware"
	"github.com/openpbrl/openpbrl/internal/app/service"
	"github.com/openpbrl/openpbrl/internal/observability/logging"
	"github.com/openpbrl/openpbrl/internal/observability/metrics"
	"github.com/openpbrl/openpbrl/pkg/config"
)

// Server wraps the HTTP server with graceful shutdown
type Server struct {
	httpServer *http.Server
	logger     logging.Logger
}

// NewServer builds the router and binds all routes.
func NewServer(
	cfg *config.Config,
	svc *service.RelabelService,
	collector *metrics.MetricsCollector,
	logger logging.Logger,
) *Server {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.Recovery(logger))
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
	if cfg.Server.EnableCORS {
		engine.Use(middleware.CORS(cfg.Server))
	}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(collector.Handler()))

	api := engine.Group("/api/v1")
	handlers.NewRunHandler(svc, logger).Register(api)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:      engine,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		logger: logger,
	}
}

// Start blocks serving requests until shutdown or failure.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logging.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
