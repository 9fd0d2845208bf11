package mail

// Config holds configuration for outgoing email.
type Config struct {
	// Host is the SMTP server. Sending is disabled when empty.
	Host string `mapstructure:"host" default:""`
	// Port is the SMTP port.
	Port int `mapstructure:"port" default:"587"`
	// Username for SMTP authentication.
	Username string `mapstructure:"username" default:""`
	// Password for SMTP authentication.
	Password string `mapstructure:"password" default:""`
	// From is the sender address.
	From string `mapstructure:"from" default:""`
	// Recipient receives contact form notifications.
	Recipient string `mapstructure:"recipient" default:""`
	// UseTLS requires STARTTLS when true.
	UseTLS bool `mapstructure:"use_tls" default:"true"`
	// TimeoutSeconds bounds a single delivery.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"15"`
}

// Enabled reports whether an SMTP server is configured.
func (c Config) Enabled() bool {
	return c.Host != ""
}
