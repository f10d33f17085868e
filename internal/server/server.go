package server

import (
	"time"

	"mailflow/internal/analytics"
	"mailflow/internal/config"
	"mailflow/internal/engine"
	"mailflow/internal/handlers"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Server represents the application server
type Server struct {
	echo      *echo.Echo
	db        *sqlx.DB
	config    *config.Config
	logger    zerolog.Logger
	orch      *engine.Orchestrator
	analytics *analytics.Service
}

// New creates a new server instance
func New(cfg *config.Config, db *sqlx.DB, orch *engine.Orchestrator, analyticsSvc *analytics.Service, logger zerolog.Logger) *Server {
	return &Server{
		config:    cfg,
		db:        db,
		logger:    logger,
		orch:      orch,
		analytics: analyticsSvc,
	}
}

// zerologMiddleware creates a zerolog-based logging middleware for Echo
func (s *Server) zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			s.logger.Info().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Str("user_agent", req.UserAgent()).
				Msg("HTTP request")

			return err
		}
	}
}

// Initialize sets up the Echo framework with middleware and routes
func (s *Server) Initialize() {
	s.echo = echo.New()

	// Middleware
	s.echo.Use(s.zerologMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())

	// Hide Echo banner
	s.echo.HideBanner = true

	// Setup routes
	s.setupRoutes()
}

// setupRoutes configures all the application routes
func (s *Server) setupRoutes() {
	// API group with /api prefix
	api := s.echo.Group("/api")

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// Health endpoints (keep at root level for monitoring)
	s.echo.GET("/healthz", handlers.HealthHandler(s.config.Version))
	s.echo.GET("/healthz/db", handlers.DBHealthHandler(s.db))

	// API endpoints under /api prefix
	api.GET("/", handlers.RootHandler(s.config.Version))
	api.POST("/emails/incoming", handlers.IncomingEmailHandler(s.orch))

	api.GET("/threads/:id", handlers.GetThreadHandler(s.orch))
	api.GET("/threads/:id/summary", handlers.ThreadSummaryHandler(s.analytics))
	api.POST("/threads/:id/close", handlers.CloseThreadHandler(s.orch))

	api.GET("/threads/:id/drafts", handlers.ListDraftsHandler(s.orch))
	api.POST("/threads/:id/drafts", handlers.GenerateDraftHandler(s.orch))
	api.POST("/threads/:id/drafts/variants", handlers.GenerateVariantsHandler(s.orch, s.config.DraftVariantCount))
	api.POST("/threads/:id/drafts/custom", handlers.GenerateCustomDraftHandler(s.orch))
	api.POST("/threads/:id/send", handlers.SendDraftHandler(s.orch))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Port).Msg("Server starting")
	return s.echo.Start(":" + s.config.Port)
}
