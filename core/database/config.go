package database

// Config holds configuration for the database connection.
type Config struct {
	// Driver is the database driver (postgres, mysql, sqlite).
	Driver string `mapstructure:"driver" default:"postgres"`
	// URL is a full connection string. When set it takes precedence over the discrete fields.
	URL string `mapstructure:"url" default:""`
	// Host is the database host.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port.
	Port int `mapstructure:"port" default:"5432"`
	// User is the database user.
	User string `mapstructure:"user" default:"postgres"`
	// Password is the database password.
	Password string `mapstructure:"password" default:""`
	// Name is the database name, or the file path for sqlite.
	Name string `mapstructure:"name" default:"postgres"`
	// SSLMode is passed to postgres (disable, require, verify-full).
	SSLMode string `mapstructure:"ssl_mode" default:"require"`
	// TimeoutSeconds bounds connection setup and I/O.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// AutoMigrate creates missing tables and columns on start.
	AutoMigrate bool `mapstructure:"auto_migrate" default:"false"`
}
