// Package middleware provides HTTP middleware components for the application.
package middleware

import (
	"strings"

	"bankcore/internal/models"
	"bankcore/internal/utils"
	"bankcore/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthMiddleware validates bearer tokens and stores the caller's claims in
// the request context.
type AuthMiddleware struct {
	secret string
	log    *zap.Logger
}

func NewAuthMiddleware(secret string, log *zap.Logger) *AuthMiddleware {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthMiddleware{secret: secret, log: log.Named("auth")}
}

// Handler checks for a Bearer token with a valid signature, issuer and expiry.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return response.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return response.Unauthorized(c, "invalid authorization format")
	}

	claims, err := utils.ParseToken(m.secret, strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		m.log.Debug("token rejected", zap.String("path", c.Path()), zap.Error(err))
		return response.Unauthorized(c, "invalid token")
	}

	c.Locals(utils.ClaimsKey, claims)
	return c.Next()
}

// AdminOnly lets through callers whose claims carry the admin role.
func AdminOnly(c *fiber.Ctx) error {
	claims, ok := c.Locals(utils.ClaimsKey).(*models.UserClaims)
	if !ok {
		return response.Unauthorized(c, "invalid claims")
	}
	if !claims.IsAdmin() {
		return response.Forbidden(c)
	}
	return c.Next()
}
