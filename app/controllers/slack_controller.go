package controllers

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/DocBriefHQ/DocBrief/internal/pkg/dedup"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/env"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/pipeline"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/security"
	"github.com/gofiber/fiber/v2"
)

// processTimeout bounds one background pipeline run.
const processTimeout = 5 * time.Minute

type slackEventFile struct {
	ID string `json:"id"`
}

type slackInnerEvent struct {
	Type     string           `json:"type"`
	User     string           `json:"user"`
	Channel  string           `json:"channel"`
	TS       string           `json:"ts"`
	ThreadTS string           `json:"thread_ts"`
	Files    []slackEventFile `json:"files"`
}

// threadTarget is the timestamp replies should thread under: the existing
// thread when the mention is already in one, otherwise the mention itself.
func (e slackInnerEvent) threadTarget() string {
	if e.ThreadTS != "" {
		return e.ThreadTS
	}
	return e.TS
}

type slackEventEnvelope struct {
	Type      string          `json:"type"`
	Challenge string          `json:"challenge"`
	EventID   string          `json:"event_id"`
	TeamID    string          `json:"team_id"`
	Event     slackInnerEvent `json:"event"`
}

// HandleSlackEvents receives Slack Events API deliveries: URL verification
// challenges, mentions, and file shares. Redeliveries of an already-seen
// event are acknowledged without reprocessing.
func HandleSlackEvents(c *fiber.Ctx) error {
	body := c.Body()

	if secret := env.GetEnv("SLACK_SIGNING_SECRET", ""); secret != "" {
		err := security.VerifySlackSignature(
			secret,
			c.Get("X-Slack-Request-Timestamp"),
			c.Get("X-Slack-Signature"),
			body,
		)
		if err != nil {
			return jsonDetail(c, fiber.StatusUnauthorized, "Invalid request signature")
		}
	}

	var envelope slackEventEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Type == "" {
		return jsonDetail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	switch envelope.Type {
	case "url_verification":
		return c.JSON(fiber.Map{"challenge": envelope.Challenge})
	case "event_callback":
		return handleEventCallback(c, body, envelope)
	default:
		return c.JSON(fiber.Map{"ok": true})
	}
}

func handleEventCallback(c *fiber.Ctx, body []byte, envelope slackEventEnvelope) error {
	// Dedup on the payload content hash; Slack retries redeliver the
	// identical envelope.
	if eventGuard.CheckAndMark(dedup.EventHash(body)) {
		return c.JSON(fiber.Map{"ok": true, "duplicate": true})
	}

	event := envelope.Event
	switch event.Type {
	case "app_mention", "message":
		dispatchFiles(envelope.TeamID, event)
	}
	return c.JSON(fiber.Map{"ok": true})
}

// dispatchFiles kicks off one background pipeline run per attached file. A
// mention with no attachments gets a usage hint instead.
func dispatchFiles(teamID string, event slackInnerEvent) {
	if len(event.Files) == 0 {
		if event.Type == "app_mention" {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
				defer cancel()
				if err := pdfPipeline.PostUsageHint(ctx, event.Channel, event.threadTarget()); err != nil {
					log.Printf("slack events: usage hint failed: %v", err)
				}
			}()
		}
		return
	}

	for _, file := range event.Files {
		req := pipeline.Request{
			FileID:   file.ID,
			UserID:   event.User,
			TeamID:   teamID,
			Channel:  event.Channel,
			ThreadTS: event.threadTarget(),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
			defer cancel()
			if err := pdfPipeline.ProcessFile(ctx, req); err != nil {
				log.Printf("slack events: processing %s failed: %v", req.FileID, err)
			}
		}()
	}
}
