package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"task-marketplace.com/task-marketplace/internal/auth"
	"task-marketplace.com/task-marketplace/internal/constants"
	apperrors "task-marketplace.com/task-marketplace/internal/errors"
)

const (
	userIDKey = "auth.user_id"
	roleKey   = "auth.role"
)

// Authenticate requires a valid bearer token and stores the caller's identity on the context.
func Authenticate(issuer *auth.TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return apperrors.Unauthorized("missing bearer token")
			}

			claims, err := issuer.Parse(strings.TrimSpace(token))
			if err != nil {
				return err
			}

			c.Set(userIDKey, claims.UserID)
			c.Set(roleKey, claims.Role)
			return next(c)
		}
	}
}

// UserID returns the authenticated caller, or "" outside Authenticate.
func UserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

// Role returns the authenticated caller's role, or "" outside Authenticate.
func Role(c echo.Context) constants.Role {
	role, _ := c.Get(roleKey).(constants.Role)
	return role
}
