package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/joacominatel/rewards/internal/infrastructure/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// OperatorContextKey is the context key for the authenticated operator's claims.
	OperatorContextKey contextKey = "operator_claims"
)

// TokenValidator validates admin bearer tokens.
type TokenValidator interface {
	ValidateAdminToken(token string) (*auth.SupabaseClaims, error)
}

// AuthConfig holds authentication middleware configuration.
type AuthConfig struct {
	Validator TokenValidator
}

// AdminAuthMiddleware requires a valid admin bearer token.
// missing or invalid tokens get 401, valid non-admin tokens get 403.
func AdminAuthMiddleware(config AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := config.Validator.ValidateAdminToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				if errors.Is(err, auth.ErrNotAdmin) {
					return echo.NewHTTPError(http.StatusForbidden, err.Error())
				}
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error()).SetInternal(err)
			}

			// store in context for downstream handlers
			c.Set(string(OperatorContextKey), claims)

			return next(c)
		}
	}
}

// GetOperatorID retrieves the authenticated operator's id from context.
// returns empty string if not authenticated.
func GetOperatorID(c echo.Context) string {
	if claims, ok := c.Get(string(OperatorContextKey)).(*auth.SupabaseClaims); ok {
		return claims.UserID()
	}
	return ""
}
