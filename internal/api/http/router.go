package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/servicedesk-io/servicedesk/internal/api/http/handlers"
	"github.com/servicedesk-io/servicedesk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Reports        *handlers.ReportsHandler
	Categories     *handlers.CategoriesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Users.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", cfg.Tickets.Update)
	tickets.Patch("/:id/status", cfg.Tickets.ChangeStatus)
	tickets.Delete("/:id", auth.RequireAdmin(), cfg.Tickets.Delete)
	tickets.Get("/:id/comments", cfg.Tickets.ListComments)

	comments := app.Group("/comments", cfg.AuthMiddleware.Handle)
	comments.Post("", cfg.Comments.Create)
	comments.Get("/:id", cfg.Comments.Get)
	comments.Put("/:id", cfg.Comments.Update)
	comments.Delete("/:id", cfg.Comments.Delete)

	reports := app.Group("/reports", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	reports.Get("/statistics", cfg.Reports.Statistics)
	reports.Get("/average-resolution-time", cfg.Reports.AverageResolutionTime)

	app.Get("/categories", cfg.AuthMiddleware.Handle, cfg.Categories.List)
}
