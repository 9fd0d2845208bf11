package storage_test

import (
	"testing"

	"portfolio-api/core/storage"

	"github.com/stretchr/testify/assert"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTP", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestConfig_BaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  storage.Config
		want string
	}{
		{"FromEndpoint", storage.Config{Endpoint: "localhost:9000", Bucket: "portfolio"}, "http://localhost:9000/portfolio"},
		{"FromEndpointSSL", storage.Config{Endpoint: "https://s3.example.com", UseSSL: true, Bucket: "b"}, "https://s3.example.com/b"},
		{"PublicURL", storage.Config{Endpoint: "minio:9000", PublicURL: "https://cdn.example.com/", Bucket: "b"}, "https://cdn.example.com/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.BaseURL())
		})
	}
}
