// Package config provides configuration management for the portfolio API.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults live next to each setting as `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP port, CORS origins, body limit, request timeout
//   - Database: Postgres/MySQL/SQLite connection details
//   - Storage: S3/MinIO credentials, bucket, public URL and upload limit
//   - Log: Logging level and format
//   - Auth: JWT secret and token lifetimes
//   - Mail: SMTP settings for contact notifications
//   - Reconcile: image upload concurrency and rollback timeout
//   - Cache: TTL of cached reads
//
// Environment variables map to nested keys by replacing dots with underscores,
// e.g. STORAGE_PUBLIC_URL sets storage.public_url.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
