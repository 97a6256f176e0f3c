package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/admiral-Gal-Arch/galactic-support-portal/internal/config"
)

// SessionClaims is the signed payload carried by a front's session cookie.
// The jti registered claim doubles as the key for the server-side view
// state, so every login gets a fresh one.
type SessionClaims struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// SessionID returns the per-login identifier.
func (c *SessionClaims) SessionID() string {
	return c.ID
}

// SessionManager issues and validates session cookies for one front. Cookie
// name, signing key and expiry come from the environment and are treated as
// opaque.
type SessionManager struct {
	cookieName string
	secret     []byte
	expiry     time.Duration
}

// NewSessionManager builds a manager from validated front configuration.
func NewSessionManager(cfg config.FrontConfig) (*SessionManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SessionManager{
		cookieName: cfg.CookieName,
		secret:     []byte(cfg.CookieKey),
		expiry:     cfg.CookieExpiry(),
	}, nil
}

// Issue signs a session token for the credential and returns the cookie to
// set on the response.
func (m *SessionManager) Issue(cred Credential) (*fiber.Cookie, *SessionClaims, error) {
	expiresAt := time.Now().Add(m.expiry)
	claims := &SessionClaims{
		Username: cred.Username,
		Name:     cred.Name,
		Email:    cred.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   cred.Username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, nil, err
	}

	return &fiber.Cookie{
		Name:     m.cookieName,
		Value:    signed,
		Expires:  expiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}, claims, nil
}

// Parse validates a session token and returns its claims.
func (m *SessionManager) Parse(tokenStr string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid session claims")
	}
	return claims, nil
}

// CookieName returns the configured cookie name for reading requests.
func (m *SessionManager) CookieName() string {
	return m.cookieName
}

// ClearCookie returns an expired cookie that removes the session.
func (m *SessionManager) ClearCookie() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}
