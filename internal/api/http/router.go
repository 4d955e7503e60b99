package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-router/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Items       *handlers.ItemsHandler
	Escalations *handlers.EscalationsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/items", cfg.Items.CreateItems)
	app.Put("/items", cfg.Items.UpdateItems)
	app.Post("/items/:id/escalate", cfg.Escalations.EscalateItem)
	app.Post("/escalations/run", cfg.Escalations.RunBatch)
}
