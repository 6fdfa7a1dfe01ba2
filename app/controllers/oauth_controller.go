package controllers

import (
	"log"
	"time"

	"github.com/DocBriefHQ/DocBrief/internal/pkg/env"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/middleware"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/security"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
	"github.com/markbates/goth"
	gothfiber "github.com/shareed2k/goth_fiber"
)

const sessionTTL = 24 * time.Hour

// HandleLogin starts the Slack OAuth flow.
func HandleLogin(c *fiber.Ctx) error {
	return gothfiber.BeginAuthHandler(c)
}

// HandleOAuthCallback completes the Slack OAuth flow, provisions the
// account, and issues the session cookie.
func HandleOAuthCallback(c *fiber.Ctx) error {
	gothUser, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		log.Printf("oauth callback failed: %v", err)
		return jsonDetail(c, fiber.StatusUnauthorized, "Authentication failed")
	}

	teamID := slackTeamID(gothUser)
	if gothUser.UserID == "" || teamID == "" {
		return jsonDetail(c, fiber.StatusUnauthorized, "Authentication failed")
	}

	if _, err := subscriptionSvc.GetOrCreateAccount(gothUser.UserID, teamID, gothUser.Email); err != nil {
		log.Printf("oauth account provisioning for %s/%s failed: %v", gothUser.UserID, teamID, err)
		return jsonDetail(c, fiber.StatusInternalServerError, "Account setup failed")
	}

	token, err := security.GenerateSessionToken(gothUser.UserID, teamID, gothUser.Email, sessionTTL, env.GetEnv("SECRET_KEY", ""))
	if err != nil {
		log.Printf("session token generation failed: %v", err)
		return jsonDetail(c, fiber.StatusInternalServerError, "Session setup failed")
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		HTTPOnly: true,
		SameSite: "Lax",
		Secure:   !env.IsDev(),
		Expires:  time.Now().Add(sessionTTL),
	})
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

// HandleLogout drops the session cookie.
func HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		HTTPOnly: true,
		Expires:  time.Now().Add(-time.Hour),
	})
	return c.Redirect("/", fiber.StatusSeeOther)
}

// HandleDashboard shows the logged-in user their account and usage.
func HandleDashboard(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	stats := subscriptionSvc.GetUsageStats(userCtx.UserID, userCtx.TeamID)

	payload := fiber.Map{
		"user_id": userCtx.UserID,
		"team_id": userCtx.TeamID,
		"email":   userCtx.Email,
		"usage":   stats,
	}
	if warning, err := subscriptionSvc.CheckExpiry(userCtx.UserID, userCtx.TeamID); err == nil && warning != nil {
		payload["expiry_warning"] = warning
	}
	if events, err := subscriptionSvc.ListMonthUsage(userCtx.UserID, userCtx.TeamID); err == nil {
		files := make([]string, 0, len(events))
		for _, e := range events {
			files = append(files, e.FileName)
		}
		payload["recent_files"] = files
	}
	if appFlags.UpgradeEnabled() && appFlags.UpgradeLink != "" {
		payload["upgrade_link"] = appFlags.UpgradeLink
	}
	return c.JSON(payload)
}

// slackTeamID digs the team ID out of the provider response.
func slackTeamID(user goth.User) string {
	if team, ok := user.RawData["team"].(map[string]any); ok {
		if id, ok := team["id"].(string); ok {
			return id
		}
	}
	if id, ok := user.RawData["team_id"].(string); ok {
		return id
	}
	return ""
}
