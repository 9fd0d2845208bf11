package auth

import "time"

// Config holds configuration for admin authentication.
type Config struct {
	// JWTSecret signs access and refresh tokens. Must be overridden in production.
	JWTSecret string `mapstructure:"jwt_secret" default:""`
	// AccessTTLMinutes is the lifetime of access tokens.
	AccessTTLMinutes int `mapstructure:"access_ttl_minutes" default:"60"`
	// RefreshTTLHours is the lifetime of refresh tokens.
	RefreshTTLHours int `mapstructure:"refresh_ttl_hours" default:"168"`
	// BcryptCost is the cost used when hashing new passwords.
	BcryptCost int `mapstructure:"bcrypt_cost" default:"10"`
}

// AccessTTL returns the access token lifetime.
func (c Config) AccessTTL() time.Duration {
	if c.AccessTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.AccessTTLMinutes) * time.Minute
}

// RefreshTTL returns the refresh token lifetime.
func (c Config) RefreshTTL() time.Duration {
	if c.RefreshTTLHours <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.RefreshTTLHours) * time.Hour
}
