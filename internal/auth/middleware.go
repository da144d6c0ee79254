package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"evalgo.org/assetd/internal/config"
)

// ContextKeyClaims is the key for storing JWT claims in context
const ContextKeyClaims = "claims"

// Middleware enforces bearer authentication when it is enabled.
type Middleware struct {
	verifier *Verifier
	enabled  bool
}

// NewMiddleware creates the authentication middleware from security settings.
func NewMiddleware(cfg config.SecurityConfig) *Middleware {
	return &Middleware{
		verifier: NewVerifier(cfg.JWTSecret),
		enabled:  cfg.AuthEnabled,
	}
}

// Enabled reports whether requests are authenticated.
func (m *Middleware) Enabled() bool {
	return m.enabled
}

// RequireAuth rejects requests without a valid bearer token.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !m.enabled {
			return next(c)
		}

		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
		}

		claims, err := m.verifier.ValidateToken(token)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				return echo.NewHTTPError(http.StatusUnauthorized, "token has expired")
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		c.Set(ContextKeyClaims, claims)
		return next(c)
	}
}

// RequireRole requires one of roles. It must run after RequireAuth.
func (m *Middleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !m.enabled {
				return next(c)
			}

			claims, ok := GetClaims(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			if !claims.HasRole(roles...) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}
			return next(c)
		}
	}
}

// RequireWrite allows admins and users.
func (m *Middleware) RequireWrite(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireRole(RoleAdmin, RoleUser)(next)
}

// GetClaims extracts JWT claims from Echo context
func GetClaims(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ContextKeyClaims).(*Claims)
	return claims, ok
}
