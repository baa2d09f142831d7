package middleware

import (
	stdErrors "errors"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/standup-assistant/errors"
	"github.com/johnquangdev/standup-assistant/pkg/jwt"
)

const (
	// ClaimsContextKey holds the validated *jwt.Claims in the echo context
	ClaimsContextKey = "claims"
	// SubjectContextKey holds the token subject
	SubjectContextKey = "subject"
)

// EchoAuth returns an Echo middleware that validates operator tokens
func EchoAuth(manager *jwt.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c.Request())
			if token == "" {
				return reject(c, errors.ErrUnauthenticated())
			}

			claims, err := manager.ValidateToken(token)
			if err != nil {
				if stdErrors.Is(err, jwtlib.ErrTokenExpired) {
					return reject(c, errors.ErrTokenExpired())
				}
				return reject(c, errors.ErrInvalidToken())
			}

			c.Set(ClaimsContextKey, claims)
			c.Set(SubjectContextKey, claims.Subject)
			return next(c)
		}
	}
}

// RequireRole rejects tokens whose role is not listed; use after EchoAuth
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ClaimsContextKey).(*jwt.Claims)
			if !ok {
				return reject(c, errors.ErrUnauthenticated())
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(c)
				}
			}
			return reject(c, errors.ErrForbidden(claims.Role))
		}
	}
}

func reject(c echo.Context, appErr errors.AppError) error {
	return c.JSON(appErr.HTTPCode, map[string]interface{}{
		"code":    appErr.Code,
		"message": appErr.Message,
	})
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}
	return ""
}
