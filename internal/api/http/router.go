package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/team-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health *handlers.HealthHandler
	Teams  *handlers.TeamsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	team := app.Group("/api/mesh/team")
	team.Get("/", cfg.Teams.QueryTeam)
	team.Post("/", cfg.Teams.CreateTeam)
	team.Post("/invite", cfg.Teams.InviteNewTeamMember)
}
