package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/luqq/sonarqube/internal/indexd/handlers"
	"github.com/luqq/sonarqube/internal/rule"
	"github.com/luqq/sonarqube/internal/search/estransport"
	"github.com/luqq/sonarqube/pkg/config"
	"github.com/luqq/sonarqube/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	config     *config.Config
	logger     logger.Logger
	httpServer *http.Server
	rules      *rule.Index
}

func New(cfg *config.Config, log logger.Logger) (*Server, error) {
	esClient, err := estransport.NewFromConfig(cfg.Elasticsearch, log)
	if err != nil {
		return nil, err
	}

	// No source-of-truth store is wired here, so reindex-by-key is not
	// available through this daemon.
	rules := rule.NewIndex(esClient, nil, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := rules.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to bootstrap rule index: %w", err)
	}

	h := handlers.New(rules, log)
	router := setupRouter(h, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	return &Server{
		config:     cfg,
		logger:     log,
		httpServer: httpServer,
		rules:      rules,
	}, nil
}

func setupRouter(h *handlers.IndexHandlers, log logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(log))

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/rules/:key", h.GetRule)
		v1.POST("/rules", h.UpsertRule)
		v1.DELETE("/rules/:key", h.DeleteRule)

		v1.GET("/indexes/rules/stat", h.GetIndexStat)
		v1.POST("/indexes/rules/refresh", h.RefreshIndex)
	}

	return router
}

func loggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", "port", s.config.Server.Port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}
