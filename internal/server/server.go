package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/loomui/loom/internal/engine"
	"github.com/loomui/loom/internal/infrastructure/config"
	"github.com/loomui/loom/internal/infrastructure/monitoring"
	"github.com/loomui/loom/internal/logging"
	"github.com/loomui/loom/internal/middleware"
	"github.com/loomui/loom/internal/widget"
	"github.com/loomui/loom/internal/ws"
)

// Server wires the engine, the WebSocket binding, and the HTTP surface.
type Server struct {
	router  *gin.Engine
	engine  *engine.Engine
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a server around the embedding application's widget
// registry and hooks.
func NewServer(cfg *config.Config, registry *widget.Registry, hooks engine.Hooks) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		l, err := logging.New(logging.DevelopmentConfig())
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
		logger = l
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing Loom runtime",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
	)

	metrics := monitoring.NewMetrics()

	eng := engine.New(registry, hooks, logger.Named("engine")).
		WithMetrics(metrics).
		WithLimits(cfg.Engine)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.GlobalRateLimit(cfg.RateLimit.InstructionsPerSecond, cfg.RateLimit.Burst))
	}

	wsHandler := ws.NewHandler(eng, logger.Named("ws"), cfg.RateLimit).WithMetrics(metrics)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"widgets":   eng.Tree().Len(),
			"styles":    eng.Styles().Len(),
			"themes":    eng.Themes().Len(),
			"timestamp": time.Now().Unix(),
		})
	})
	router.GET("/stream", wsHandler.HandleConnection)
	router.GET("/metrics", func(c *gin.Context) {
		metrics.UpdateUptime()
		gin.WrapH(promhttp.Handler())(c)
	})

	return &Server{
		router:  router,
		engine:  eng,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Engine returns the reconciliation engine, mainly for embedding and tests.
func (s *Server) Engine() *engine.Engine {
	return s.engine
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Server listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close flushes the logger.
func (s *Server) Close() error {
	return s.logger.Sync()
}
