package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"recohub/domain"
	"recohub/pkg/logger"
	"recohub/pkg/utils"

	"github.com/labstack/echo/v4"
)

// TenantFinder resolves a tenant from an API-key prefix.
type TenantFinder interface {
	FindByAPIKeyPrefix(ctx context.Context, prefix string) (domain.Tenant, error)
}

type authError struct {
	Message string `json:"message"`
}

// APIKeyAuth maps X-API-Key to a tenant. Keys are bcrypt-hashed at rest;
// the plaintext prefix narrows the lookup to one row before the hash check.
func APIKeyAuth(tenants TenantFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			apiKey := strings.TrimSpace(c.Request().Header.Get("X-API-Key"))
			if apiKey == "" {
				return c.JSON(http.StatusUnauthorized, authError{Message: "missing api key"})
			}

			prefix, err := utils.APIKeyPrefix(apiKey)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, authError{Message: "invalid api key"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			tenant, err := tenants.FindByAPIKeyPrefix(ctx, prefix)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, authError{Message: "invalid api key"})
			}

			if !utils.CheckAPIKey(tenant.APIKeyHash, apiKey) {
				logger.Warn("api key hash mismatch", "tenant_id", tenant.ID)
				return c.JSON(http.StatusUnauthorized, authError{Message: "invalid api key"})
			}

			c.Set("tenant_id", tenant.ID)
			c.Set("tenant", tenant)

			return next(c)
		}
	}
}

// AdminAuth protects experiment administration with a bearer JWT carrying
// the admin role.
func AdminAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, authError{Message: "missing authorization header"})
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return c.JSON(http.StatusUnauthorized, authError{Message: "invalid authorization format"})
			}

			claims, err := utils.ParseJWT(tokenParts[1])
			if err != nil {
				return c.JSON(http.StatusUnauthorized, authError{Message: "invalid token"})
			}

			if !strings.EqualFold(claims.Role, "admin") {
				return c.JSON(http.StatusForbidden, authError{Message: "admin access required"})
			}

			c.Set("admin_id", claims.UserID)

			return next(c)
		}
	}
}
