package router

import (
	"github.com/DocBriefHQ/DocBrief/app/controllers"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/", controllers.HandleStart)
	app.Get("/health", controllers.HandleHealth)

	// Slack Events API (signature-verified in controller, no session)
	app.Post("/slack/events", controllers.HandleSlackEvents)

	// Slack OAuth login
	app.Get("/login", controllers.HandleLogin)
	app.Get("/auth/slack/callback", controllers.HandleOAuthCallback)
	app.Post("/logout", middleware.RequireAuth, controllers.HandleLogout)

	// Logged-in pages
	app.Get("/dashboard", middleware.RequireAuth, controllers.HandleDashboard)
}
