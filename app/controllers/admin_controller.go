package controllers

import (
	"log"

	"github.com/DocBriefHQ/DocBrief/internal/pkg/metrics/counter"
	"github.com/gofiber/fiber/v2"
)

// HandleAdminResetLimits wipes all recorded usage. Admin only.
func HandleAdminResetLimits(c *fiber.Ctx) error {
	if err := subscriptionSvc.ResetAllUsage(); err != nil {
		log.Printf("admin reset-limits failed: %v", err)
		return jsonDetail(c, fiber.StatusInternalServerError, "Usage reset failed")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// HandleAdminStats reports pipeline failure counters. Admin only.
func HandleAdminStats(c *fiber.Ctx) error {
	failures, err := counter.FailureCounts()
	if err != nil {
		log.Printf("admin stats failed: %v", err)
		return jsonDetail(c, fiber.StatusInternalServerError, "Stats unavailable")
	}
	return c.JSON(fiber.Map{"failures": failures})
}
