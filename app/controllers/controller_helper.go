package controllers

import (
	"context"

	"github.com/DocBriefHQ/DocBrief/internal/pkg/dedup"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/featureflags"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/pdftext"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/pipeline"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/subscription"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// FileFetcher downloads file bytes from a URL with the bot's credentials.
type FileFetcher interface {
	DownloadFile(ctx context.Context, url string) ([]byte, error)
}

// Shared wiring for all controllers, set once at startup.
var (
	subscriptionSvc *subscription.Service
	eventGuard      *dedup.Guard
	pdfPipeline     *pipeline.Pipeline
	pdfExtractor    pdftext.Extractor
	fileFetcher     FileFetcher
	appFlags        featureflags.Flags
)

// Setup injects the services the controllers dispatch to.
func Setup(svc *subscription.Service, guard *dedup.Guard, p *pipeline.Pipeline, extractor pdftext.Extractor, fetcher FileFetcher, flags featureflags.Flags) {
	subscriptionSvc = svc
	eventGuard = guard
	pdfPipeline = p
	pdfExtractor = extractor
	fileFetcher = fetcher
	appFlags = flags
}

func isLoggedIn(c *fiber.Ctx) bool {
	return usercontext.IsLoggedIn(c)
}

func jsonDetail(c *fiber.Ctx, status int, detail string) error {
	return c.Status(status).JSON(fiber.Map{"detail": detail})
}
