package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hareeshbabu82ns/devhub-search/internal/auth"
	"github.com/hareeshbabu82ns/devhub-search/internal/auth/middleware"
	"github.com/hareeshbabu82ns/devhub-search/internal/conf"
	dictservice "github.com/hareeshbabu82ns/devhub-search/internal/dictionary/service"
	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/database"
	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/logger"
	savedservice "github.com/hareeshbabu82ns/devhub-search/internal/savedsearch/service"
)

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	db *database.DB,
	searchService *dictservice.SearchService,
	liveService *dictservice.LiveService,
	savedSearchService *savedservice.SavedSearchService,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))

	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if err := db.HealthCheck(c.Request.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api/v1")

	// dictionary search is public
	searchService.RegisterRoutes(api)
	liveService.RegisterRoutes(api)

	// saved searches are user scoped
	jwtManager := auth.NewJWTManager(config.Auth.JWTSecret, config.Auth.JWTIssuer, config.Auth.TokenTTL)
	protected := api.Group("")
	protected.Use(middleware.JWTAuth(jwtManager, log))
	savedSearchService.RegisterRoutes(protected)

	return &HTTPServer{
		server: &http.Server{
			Addr:    config.Server.Addr(),
			Handler: router,
		},
		logger: log,
	}
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		log.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
