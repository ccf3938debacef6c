// Package auth resolves bearer tokens to users. Issuing tokens (login,
// registration) happens elsewhere; this service only consumes them.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"newsbrief/internal/model"
)

type UserResolver interface {
	UserByToken(ctx context.Context, token string) (*model.User, error)
}

const userContextKey = "newsbrief.user"

// Middleware authenticates requests with an Authorization: Bearer header and
// stashes the resolved user in the request context.
func Middleware(resolver UserResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token := strings.TrimPrefix(header, "Bearer ")
			if token == header || token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}

			user, err := resolver.UserByToken(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "auth lookup failed"})
			}
			if user == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user, or nil outside the middleware.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}
