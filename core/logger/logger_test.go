package logger_test

import (
	"net/http/httptest"
	"testing"

	"portfolio-api/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		cfg   logger.Config
		level zapcore.Level
	}{
		{"Debug", logger.Config{Level: "debug", Format: "console"}, zapcore.DebugLevel},
		{"Info", logger.Config{Level: "info", Format: "json"}, zapcore.InfoLevel},
		{"Warn", logger.Config{Level: "warn"}, zapcore.WarnLevel},
		{"UnknownFallsBackToInfo", logger.Config{Level: "loud"}, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := logger.New(&tt.cfg)
			assert.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.level))
			assert.False(t, l.Core().Enabled(tt.level-1))
		})
	}
}

func TestWithRayID(t *testing.T) {
	app := fiber.New()
	base := zap.NewNop()

	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals("ray_id", "ray-123")
		l := logger.WithRayID(base, c)
		assert.NotSame(t, base, l)
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/none", func(c *fiber.Ctx) error {
		assert.Same(t, base, logger.WithRayID(base, c))
		return c.SendStatus(fiber.StatusOK)
	})

	for _, path := range []string{"/", "/none"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestRequestFields(t *testing.T) {
	app := fiber.New()
	var fields []zap.Field
	app.Get("/ping", func(c *fiber.Ctx) error {
		c.Status(fiber.StatusTeapot)
		fields = logger.RequestFields(c)
		return nil
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	byKey := map[string]zap.Field{}
	for _, f := range fields {
		byKey[f.Key] = f
	}
	assert.Equal(t, "GET", byKey["method"].String)
	assert.Equal(t, "/ping", byKey["path"].String)
	assert.Equal(t, int64(fiber.StatusTeapot), byKey["status"].Integer)
}
