package middleware

import (
	"strings"

	"github.com/DocBriefHQ/DocBrief/internal/pkg/env"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/security"
	"github.com/DocBriefHQ/DocBrief/internal/pkg/usercontext"
	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie carrying the signed session token.
const SessionCookie = "session"

// UserContextMiddleware sets up the complete user context for every request
// This centralizes session handling and eliminates code duplication
func UserContextMiddleware(c *fiber.Ctx) error {
	// Avoid interfering with Goth/Fiber session handling on OAuth routes.
	// Goth uses its own fiber session store and relies on per-request locals.
	// We skip our app session on /auth/* to prevent cross-store collisions.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	anonymous := func() error {
		c.Locals("USER_CONTEXT", usercontext.UserContext{
			IsLoggedIn: false,
			IsAdmin:    false,
		})
		c.Locals(usercontext.AuthKey, false)
		c.Locals(usercontext.KeyIsAdmin, false)
		return c.Next()
	}

	cookie := c.Cookies(SessionCookie)
	if cookie == "" {
		return anonymous()
	}

	claims, err := security.VerifySessionToken(cookie, env.GetEnv("SECRET_KEY", ""))
	if err != nil {
		return anonymous()
	}

	userCtx := usercontext.UserContext{
		UserID:     claims.SlackID,
		TeamID:     claims.TeamID,
		Email:      claims.Email,
		IsLoggedIn: true,
		IsAdmin:    IsAdminUser(claims.SlackID),
	}
	c.Locals("USER_CONTEXT", userCtx)
	c.Locals(usercontext.AuthKey, true)
	c.Locals(usercontext.KeyUserID, claims.SlackID)
	c.Locals(usercontext.KeyTeamID, claims.TeamID)
	c.Locals(usercontext.KeyEmail, claims.Email)
	c.Locals(usercontext.KeyIsAdmin, userCtx.IsAdmin)

	return c.Next()
}

// IsAdminUser checks the Slack user ID against the ADMIN_USER_IDS allow-list.
func IsAdminUser(slackID string) bool {
	if slackID == "" {
		return false
	}
	for _, id := range strings.Split(env.GetEnv("ADMIN_USER_IDS", ""), ",") {
		if strings.TrimSpace(id) == slackID {
			return true
		}
	}
	return false
}
