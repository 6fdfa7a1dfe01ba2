package controllers

import (
	"log"
	"path"
	"strings"

	"github.com/DocBriefHQ/DocBrief/internal/pkg/metrics/counter"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/pipeline"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

type processPDFRequest struct {
	PDFURL string `json:"pdf_url"`
}

// HandleProcessPDF summarizes a PDF fetched from a URL, synchronously. The
// same quota rules apply as for event-driven processing.
func HandleProcessPDF(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	var req processPDFRequest
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.PDFURL) == "" {
		return jsonDetail(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if !subscriptionSvc.CheckUsageLimit(userCtx.UserID, userCtx.TeamID) {
		return jsonDetail(c, fiber.StatusTooManyRequests, "Monthly summary limit reached")
	}

	fileName := path.Base(strings.TrimRight(req.PDFURL, "/"))

	data, err := fileFetcher.DownloadFile(c.Context(), req.PDFURL)
	if err != nil {
		log.Printf("process-pdf: download of %s failed: %v", req.PDFURL, err)
		return jsonDetail(c, fiber.StatusBadGateway, "Could not download PDF")
	}

	text, err := pdfExtractor.ExtractText(data)
	if err != nil {
		if cerr := counter.AddFailure(pipeline.StageExtracting); cerr != nil {
			log.Printf("process-pdf: failure counter: %v", cerr)
		}
		return jsonDetail(c, fiber.StatusUnprocessableEntity, "Could not extract text from PDF")
	}

	summary, err := pdfPipeline.SummarizeDocument(c.Context(), text)
	if err != nil {
		if cerr := counter.AddFailure(pipeline.StageSummarizing); cerr != nil {
			log.Printf("process-pdf: failure counter: %v", cerr)
		}
		log.Printf("process-pdf: summarization of %s failed: %v", fileName, err)
		return jsonDetail(c, fiber.StatusBadGateway, "Summarization failed")
	}

	if err := subscriptionSvc.RecordUsage(userCtx.UserID, userCtx.TeamID, fileName); err != nil {
		log.Printf("process-pdf: usage recording failed: %v", err)
	}
	if err := counter.AddSummary(userCtx.UserID, userCtx.TeamID); err != nil {
		log.Printf("process-pdf: summary counter: %v", err)
	}

	return c.JSON(fiber.Map{
		"file_name": fileName,
		"summary":   summary,
	})
}
