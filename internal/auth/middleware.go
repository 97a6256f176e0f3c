package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/session"
	apperrors "github.com/admiral-Gal-Arch/galactic-support-portal/pkg/util"
)

const (
	claimsKey = "session_claims"
	stateKey  = "view_state"
)

// RequireSession validates the front's session cookie and loads the
// caller's view state into request locals. State is created fresh when the
// process has none for a valid cookie, e.g. after a restart.
func RequireSession(sessions *SessionManager, registry *session.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(sessions.CookieName())
		if raw == "" {
			return apperrors.NewUnauthorized("login required")
		}

		claims, err := sessions.Parse(raw)
		if err != nil {
			return apperrors.NewUnauthorized("invalid session")
		}

		c.Locals(claimsKey, claims)
		c.Locals(stateKey, registry.Get(claims.SessionID()))
		return c.Next()
	}
}

// ClaimsFromContext retrieves the authenticated session claims.
func ClaimsFromContext(c *fiber.Ctx) (*SessionClaims, bool) {
	claims, ok := c.Locals(claimsKey).(*SessionClaims)
	return claims, ok
}

// StateFromContext retrieves the caller's view state.
func StateFromContext(c *fiber.Ctx) (*session.State, bool) {
	state, ok := c.Locals(stateKey).(*session.State)
	return state, ok
}
