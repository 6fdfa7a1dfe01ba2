package usercontext

// Shared Locals/session keys used across controllers and middlewares
const (
	AuthKey    = "authenticated"
	KeyUserID  = "user_id"
	KeyTeamID  = "team_id"
	KeyEmail   = "email"
	KeyIsAdmin = "isAdmin"
)
