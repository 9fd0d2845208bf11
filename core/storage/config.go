package storage

// Config holds configuration for the storage provider.
type Config struct {
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket images are stored in.
	Bucket string `mapstructure:"bucket" default:"portfolio"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// PublicURL is the base URL clients use to fetch objects. The bucket name is appended to it.
	// Defaults to the endpoint with the configured scheme when empty.
	PublicURL string `mapstructure:"public_url" default:""`
	// MaxUploadSize limits a single image, in human readable form (e.g. "5MB").
	MaxUploadSize string `mapstructure:"max_upload_size" default:"5MB"`
}

// BaseURL returns the public URL prefix of the bucket, without trailing slash.
func (c Config) BaseURL() string {
	base := c.PublicURL
	if base == "" {
		scheme := "http://"
		if c.UseSSL {
			scheme = "https://"
		}
		base = scheme + trimScheme(c.Endpoint)
	}
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/" + c.Bucket
}
