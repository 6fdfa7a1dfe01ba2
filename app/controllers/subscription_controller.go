package controllers

import (
	"errors"
	"log"

	"github.com/DocBriefHQ/DocBrief/internal/pkg/subscription"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

type upgradeRequest struct {
	Tier string `json:"tier"`
}

// HandleSubscriptionUpgrade moves the authenticated user onto a paid tier.
// The tier comes from the query string, or from the JSON body as a fallback.
func HandleSubscriptionUpgrade(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	tier := c.Query("tier")
	if tier == "" {
		var req upgradeRequest
		if err := c.BodyParser(&req); err != nil || req.Tier == "" {
			return jsonDetail(c, fiber.StatusBadRequest, "Invalid request body")
		}
		tier = req.Tier
	}

	err := subscriptionSvc.ChangeSubscription(userCtx.UserID, userCtx.TeamID, tier)
	if err != nil {
		if errors.Is(err, subscription.ErrInvalidTier) {
			return jsonDetail(c, fiber.StatusBadRequest, "Invalid subscription tier")
		}
		if errors.Is(err, subscription.ErrUpgradesDisabled) {
			return jsonDetail(c, fiber.StatusForbidden, "Subscription upgrades are disabled")
		}
		log.Printf("subscription upgrade for %s/%s failed: %v", userCtx.UserID, userCtx.TeamID, err)
		return jsonDetail(c, fiber.StatusInternalServerError, "Subscription change failed")
	}

	limits, err := subscriptionSvc.GetLimits(userCtx.UserID, userCtx.TeamID)
	if err != nil {
		log.Printf("subscription limits for %s/%s failed: %v", userCtx.UserID, userCtx.TeamID, err)
		return jsonDetail(c, fiber.StatusInternalServerError, "Subscription change failed")
	}
	return c.JSON(fiber.Map{
		"ok":     true,
		"tier":   limits.Tier,
		"status": limits.Status,
		"limit":  limits.Limit,
	})
}

// HandleSubscriptionStatus returns usage against the current quota.
func HandleSubscriptionStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	stats := subscriptionSvc.GetUsageStats(userCtx.UserID, userCtx.TeamID)
	return c.JSON(stats)
}
