package router

import (
	"github.com/DocBriefHQ/DocBrief/app/controllers"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// Session-authenticated JSON API, rate-limited as a group
	api := app.Group("", limiter.New())
	api.Post("/subscription/upgrade", middleware.RequireAPISessionAuth, controllers.HandleSubscriptionUpgrade)
	api.Get("/subscription/status", middleware.RequireAPISessionAuth, controllers.HandleSubscriptionStatus)
	api.Post("/process-pdf", middleware.RequireAPISessionAuth, controllers.HandleProcessPDF)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
