package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/api/dto"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/auth"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/directory"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/domain"
	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/session"
	apperrors "github.com/admiral-Gal-Arch/galactic-support-portal/pkg/util"
)

// SessionHandler exposes login/logout for one front, authenticating against
// that front's identity set.
type SessionHandler struct {
	directory *directory.Directory
	sessions  *auth.SessionManager
	registry  *session.Registry
	role      domain.Role
}

// NewSessionHandler constructs handler.
func NewSessionHandler(dir *directory.Directory, sessions *auth.SessionManager, registry *session.Registry, role domain.Role) *SessionHandler {
	return &SessionHandler{directory: dir, sessions: sessions, registry: registry, role: role}
}

// Login handles POST /login. A fresh login always starts view state at the
// dashboard with nothing selected.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	authenticator, err := h.directory.Authenticator(c.UserContext(), h.role)
	if err != nil {
		return err
	}
	cred, ok := authenticator.Login(req.Username, req.Password)
	if !ok {
		return apperrors.NewUnauthorized("username/password is incorrect")
	}

	cookie, claims, err := h.sessions.Issue(cred)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	h.registry.Start(claims.SessionID())
	c.Cookie(cookie)

	return c.JSON(fiber.Map{"data": dto.SessionResponse{
		Username: cred.Username,
		Name:     cred.Name,
		Email:    cred.Email,
	}})
}

// Logout handles POST /logout for an authenticated session.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	if claims, ok := auth.ClaimsFromContext(c); ok {
		h.registry.End(claims.SessionID())
	}
	c.Cookie(h.sessions.ClearCookie())
	return c.SendStatus(http.StatusNoContent)
}
