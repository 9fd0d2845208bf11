package contact

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleSubmit(t *testing.T) {
	sender := new(mockSender)
	sender.On("Send", mock.Anything, mock.Anything).Return(nil)
	s := setupService(t, sender, zap.NewNop())

	app := fiber.New()
	NewHandler(s).RegisterRoutes(app, func(c *fiber.Ctx) error { return c.Next() })

	post := func(contentType, body string) int {
		req := httptest.NewRequest("POST", "/contact", strings.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusCreated, post("application/json",
		`{"name":"Ada","email":"ada@example.com","phone":"600 123 456","message":"Hello"}`))
	assert.Equal(t, fiber.StatusCreated, post("application/x-www-form-urlencoded",
		"name=Bob&email=bob%40example.com&phone=%2B1+555+0100&message=Hi"))
	assert.Equal(t, fiber.StatusBadRequest, post("application/json", `{"name":"Ada"}`))
	assert.Equal(t, fiber.StatusBadRequest, post("application/json", `{`))

	resp, err := app.Test(httptest.NewRequest("GET", "/contact", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
