package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/resultboard-api/internal/config"
	"github.com/noah-isme/resultboard-api/internal/handler"
	"github.com/noah-isme/resultboard-api/internal/middleware"
	"github.com/noah-isme/resultboard-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ResultHandler   *handler.ResultHandler
	MetadataHandler *handler.MetadataHandler
	ContactHandler  *handler.ContactHandler
	SeedHandler     *handler.SeedHandler
	HealthChecks    map[string]handler.DependencyCheck
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.HealthChecks))

	if deps.MetadataHandler != nil {
		deps.MetadataHandler.Register(api)
	}

	if deps.ResultHandler != nil {
		deps.ResultHandler.Register(api, middleware.RateLimit("results", cfg.ResultRateLimit, time.Minute))
	}

	if deps.ContactHandler != nil {
		deps.ContactHandler.Register(api, middleware.RateLimit("contact", 5, time.Minute))
	}

	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}
}
