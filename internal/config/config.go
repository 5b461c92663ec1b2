package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Review   ReviewConfig   `mapstructure:"review" validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port      int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=json text"`
}

// DatabaseConfig selects and configures the card store backend.
type DatabaseConfig struct {
	// Driver is "sqlite" for an embedded database file or "postgres".
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres"`
	// URL is a PostgreSQL connection URL or a SQLite file path/DSN.
	URL          string `mapstructure:"url" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1,lte=100"`
}

// AuthConfig contains the settings for API bearer tokens.
// It is only required by the HTTP server.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=1,lte=525600"`
}

// ReviewConfig holds the defaults offered when starting a review session.
type ReviewConfig struct {
	Count       int    `mapstructure:"count" validate:"gte=1,lte=10000"`
	AutoSeconds int    `mapstructure:"auto_seconds" validate:"gte=0,lte=600"`
	Side        string `mapstructure:"side" validate:"required,oneof=front back"`

	// IdleTimeoutMinutes ends server sessions that receive no command for
	// this long. Zero keeps them until they are deleted.
	IdleTimeoutMinutes int `mapstructure:"idle_timeout_minutes" validate:"gte=0,lte=10080"`
}

// SRSConfig holds the count-down scheduling parameters.
type SRSConfig struct {
	Intervals []int `mapstructure:"intervals" validate:"required,min=1,dive,gte=1"`
	Threshold int   `mapstructure:"threshold" validate:"gte=1,lte=100"`
}
