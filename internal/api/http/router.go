package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/api/http/handlers"
)

// StaffRouteConfig bundles dependencies for the staff dashboard front.
type StaffRouteConfig struct {
	Health    *handlers.HealthHandler
	Session   *handlers.SessionHandler
	Dashboard *handlers.DashboardHandler
	Guard     fiber.Handler
}

// RegisterStaffRoutes wires the staff dashboard HTTP surface.
func RegisterStaffRoutes(app *fiber.App, cfg StaffRouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/login", cfg.Session.Login)

	protected := app.Group("", cfg.Guard)
	protected.Post("/logout", cfg.Session.Logout)
	protected.Get("/dashboard", cfg.Dashboard.Queue)
	protected.Get("/tickets/:id", cfg.Dashboard.Detail)
	protected.Post("/tickets/:id", cfg.Dashboard.Update)
}

// PortalRouteConfig bundles dependencies for the public portal front.
type PortalRouteConfig struct {
	Health  *handlers.HealthHandler
	Session *handlers.SessionHandler
	Portal  *handlers.PortalHandler
	Guard   fiber.Handler
}

// RegisterPortalRoutes wires the public portal HTTP surface.
func RegisterPortalRoutes(app *fiber.App, cfg PortalRouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/register", cfg.Portal.Register)
	app.Post("/login", cfg.Session.Login)

	protected := app.Group("", cfg.Guard)
	protected.Post("/logout", cfg.Session.Logout)
	protected.Post("/tickets", cfg.Portal.CreateTicket)
	protected.Get("/tickets", cfg.Portal.ListTickets)
	protected.Get("/tickets/:id", cfg.Portal.GetTicket)
}
