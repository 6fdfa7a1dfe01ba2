package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/DocBriefHQ/DocBrief/app/controllers"
	"github.com/DocBriefHQ/DocBrief/app/repository"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/cache"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/database"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/dedup"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/env"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/featureflags"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/pdftext"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/pipeline"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/router"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/slackapi"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/subscription"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/summarize"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	repository.InitializeFactory(db)

	flags := featureflags.FromEnv()
	subscriptionSvc := subscription.NewServiceFromDB(db, flags)

	slackClient := slackapi.NewClient(nil, "", env.GetEnv("SLACK_BOT_TOKEN", ""))
	summarizer := summarize.NewClient(
		&http.Client{Timeout: 60 * time.Second},
		"",
		env.GetEnv("OPENAI_API_KEY", ""),
		env.GetEnv("OPENAI_MODEL", ""),
	)
	extractor := pdftext.New()
	pdfPipeline := pipeline.New(slackClient, summarizer, extractor, subscriptionSvc, flags.UpgradeLink)

	controllers.Setup(
		subscriptionSvc,
		dedup.NewGuard(dedup.DefaultMaxEntries),
		pdfPipeline,
		extractor,
		slackClient,
		flags,
	)

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 52428800, // 50 MiB, covers the largest PDFs Slack accepts
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			"admin": env.GetEnv("METRICS_PASSWORD", "test"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app)

	return app
}
