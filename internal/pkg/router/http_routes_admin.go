package router

import (
	"github.com/DocBriefHQ/DocBrief/app/controllers"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

func (h HttpRouter) registerAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.RequireAdmin)
	adminGroup.Post("/reset-limits", controllers.HandleAdminResetLimits)
	adminGroup.Get("/stats", controllers.HandleAdminStats)
}
