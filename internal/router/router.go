package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/soltixdb/insight/internal/config"
	"github.com/soltixdb/insight/internal/handlers"
	"github.com/soltixdb/insight/internal/logging"
	"github.com/soltixdb/insight/internal/middleware"
	"github.com/soltixdb/insight/internal/services"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, analytics *services.AnalyticsService, cfg *config.Config) *handlers.Handler {
	h := handlers.New(logger, analytics, cfg)

	// Global middlewares
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))

	// Health check (no auth required)
	app.Get("/health", h.Health)

	v1 := app.Group("/v1", middleware.APIKeyAuth(logger, cfg.Auth))

	v1.Post("/stats/describe", h.Describe)
	v1.Post("/anomalies", h.Anomalies)
	v1.Post("/trends", h.Trends)
	v1.Post("/correlations", h.Correlations)
	v1.Post("/abtests", h.ABTests)

	// 404 handler
	app.Use(h.NotFound)

	return h
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, analytics *services.AnalyticsService, cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Insight",
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
		BodyLimit:             cfg.Server.BodyLimit,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
	})

	Setup(app, logger, analytics, cfg)

	return app
}
