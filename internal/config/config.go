package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// CORSAllowedOrigins lists origins allowed to call the API from a browser.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	// ReviewRateLimit is the sustained number of review submissions per
	// second allowed for one user. Zero disables the limiter.
	ReviewRateLimit float64 `mapstructure:"review_rate_limit" validate:"gte=0"`
	ReviewRateBurst int     `mapstructure:"review_rate_burst" validate:"gte=1"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	// Driver selects the storage backend.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`

	// URL is a PostgreSQL connection string or a SQLite file path/DSN.
	URL string `mapstructure:"url" validate:"required"`

	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`

	// AutoMigrate applies pending migrations when the server starts.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// Issuer, when set, must match the token's iss claim.
	Issuer string `mapstructure:"issuer"`

	// ClockSkew is the leeway applied to exp/nbf/iat checks.
	ClockSkew time.Duration `mapstructure:"clock_skew" validate:"gte=0"`
}

// RedisConfig contains the settings for publishing domain events to a
// Redis stream. Publishing is disabled when Addr is empty.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0,lte=15"`
	Stream   string `mapstructure:"stream" validate:"required_with=Addr"`

	// MaxLen approximately caps the stream length. Zero means unbounded.
	MaxLen int64 `mapstructure:"max_len" validate:"gte=0"`
}

// Enabled reports whether event publishing to Redis is configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}
