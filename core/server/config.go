package server

import "strings"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// FrontendURL lists the origins allowed by CORS, comma separated.
	FrontendURL string `mapstructure:"frontend_url" default:"http://localhost:4200"`
	// BodyLimitMB caps request bodies, multipart uploads included.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"25"`
	// RequestTimeoutSeconds bounds the time a handler may spend on storage and database calls.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" default:"60"`
}

// AllowedOrigins returns the CORS origins as a normalized, comma separated list.
func (c Config) AllowedOrigins() string {
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return "*"
	}
	return strings.Join(origins, ",")
}

// BodyLimit returns the body limit in bytes.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return 25 * 1024 * 1024
	}
	return c.BodyLimitMB * 1024 * 1024
}
