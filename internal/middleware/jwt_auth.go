package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// TokenParser validates a bearer token and returns the user id it was issued for.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// JWTAuthMiddleware checks for a valid JWT and stores the caller's user id under contextKey.
func JWTAuthMiddleware(parser TokenParser, contextKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return unauthorized("missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return unauthorized("invalid Authorization header format")
			}

			userID, err := parser.ParseToken(parts[1])
			if err != nil {
				return unauthorized("invalid or expired token")
			}

			c.Set(contextKey, userID)
			return next(c)
		}
	}
}

func unauthorized(message string) error {
	return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
		"category": "unauthorized",
		"message":  message,
	})
}
