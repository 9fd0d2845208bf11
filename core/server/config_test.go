package server_test

import (
	"testing"

	"portfolio-api/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_AllowedOrigins(t *testing.T) {
	tests := []struct {
		name        string
		frontendURL string
		want        string
	}{
		{"Single", "http://localhost:4200", "http://localhost:4200"},
		{"TrailingSlash", "https://example.com/", "https://example.com"},
		{"Multiple", "https://a.com, https://b.com/ ,", "https://a.com,https://b.com"},
		{"Empty", "", "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{FrontendURL: tt.frontendURL}
			assert.Equal(t, tt.want, c.AllowedOrigins())
		})
	}
}

func TestConfig_BodyLimit(t *testing.T) {
	assert.Equal(t, 10*1024*1024, server.Config{BodyLimitMB: 10}.BodyLimit())
	assert.Equal(t, 25*1024*1024, server.Config{}.BodyLimit())
}
