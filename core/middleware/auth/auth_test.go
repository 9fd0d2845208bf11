package auth_test

import (
	"context"
	"net/http/httptest"
	"testing"

	coreauth "portfolio-api/core/auth"
	"portfolio-api/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*coreauth.Claims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*coreauth.Claims)
	return claims, args.Error(1)
}

func TestAuthMiddleware(t *testing.T) {
	verifier := new(mockVerifier)
	verifier.On("Verify", mock.Anything, "good").Return(&coreauth.Claims{Email: "admin@example.com"}, nil)
	verifier.On("Verify", mock.Anything, "bad").Return(nil, coreauth.ErrUnauthorized)

	app := fiber.New()
	app.Use(auth.New(auth.Config{Verifier: verifier}))
	app.Get("/", func(c *fiber.Ctx) error {
		claims, ok := auth.ClaimsFrom(c)
		require.True(t, ok)
		return c.SendString(claims.Email)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"Missing", "", fiber.StatusUnauthorized},
		{"WrongScheme", "Basic abc", fiber.StatusUnauthorized},
		{"Invalid", "Bearer bad", fiber.StatusUnauthorized},
		{"Valid", "Bearer good", fiber.StatusOK},
		{"LowercaseScheme", "bearer good", fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
