package auth

import (
	"context"
	"strings"

	coreauth "portfolio-api/core/auth"
	"portfolio-api/core/response"

	"github.com/gofiber/fiber/v2"
)

const (
	// ClaimsKey is the locals key holding the verified *coreauth.Claims.
	ClaimsKey = "admin_claims"
	// TokenKey is the locals key holding the raw bearer token.
	TokenKey = "admin_token"
)

// Verifier validates access tokens.
type Verifier interface {
	Verify(ctx context.Context, token string) (*coreauth.Claims, error)
}

// Config configures the admin auth middleware.
type Config struct {
	Verifier Verifier
}

// New creates a middleware that rejects requests without a valid bearer token.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return response.Error(c, fiber.StatusUnauthorized, "Missing bearer token")
		}

		claims, err := cfg.Verifier.Verify(c.UserContext(), token)
		if err != nil {
			return response.Error(c, fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(ClaimsKey, claims)
		c.Locals(TokenKey, token)
		return c.Next()
	}
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	header := c.Get(fiber.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// ClaimsFrom returns the claims stored by the middleware.
func ClaimsFrom(c *fiber.Ctx) (*coreauth.Claims, bool) {
	claims, ok := c.Locals(ClaimsKey).(*coreauth.Claims)
	return claims, ok
}
