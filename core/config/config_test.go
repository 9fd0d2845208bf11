package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"portfolio-api/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "portfolio", cfg.Storage.Bucket)
	assert.Equal(t, "5MB", cfg.Storage.MaxUploadSize)
	assert.Equal(t, 4, cfg.Reconcile.UploadConcurrency)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_PUBLIC_URL", "https://cdn.example.com")
	t.Setenv("RECONCILE_UPLOAD_CONCURRENCY", "8")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://cdn.example.com", cfg.Storage.PublicURL)
	assert.Equal(t, 8, cfg.Reconcile.UploadConcurrency)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AUTH_JWT_SECRET=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("AUTH_JWT_SECRET") })

	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Auth.JWTSecret)
}

func TestValidate(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	cfg.Server.Port = "http"
	cfg.Database.Driver = "oracle"
	cfg.Storage.Bucket = ""
	cfg.Storage.MaxUploadSize = "lots"
	cfg.Mail.Host = "smtp.example.com"
	cfg.Mail.Recipient = ""

	err = cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"server.port", "database.driver", "storage.bucket", "storage.max_upload_size", "mail.recipient"} {
		assert.Contains(t, err.Error(), want)
	}
}
