package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"areadata.app/pkg/errors"
)

// Config represents the application configuration structure
type Config struct {
	Server    ServerConfig    `split_words:"true"`
	Cache     CacheConfig     `split_words:"true"`
	Upstreams UpstreamsConfig `split_words:"true"`
	Retry     RetryConfig     `split_words:"true"`
	Breaker   BreakerConfig   `split_words:"true"`
	Database  DatabaseConfig  `split_words:"true"`
	Refresh   RefreshConfig   `split_words:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// CacheConfig selects and tunes the response cache backend.
type CacheConfig struct {
	Backend string `envconfig:"CACHE_BACKEND" default:"memory"`

	// TTLs per data family, chosen by how fast the upstream data moves:
	// monthly statistical releases keep for hours, places results for less.
	SeriesTTL time.Duration `envconfig:"CACHE_SERIES_TTL" default:"6h"`
	PlacesTTL time.Duration `envconfig:"CACHE_PLACES_TTL" default:"30m"`

	// StaleTTL bounds how long an expired result may still be served as
	// a fallback while the upstream is down.
	StaleTTL time.Duration `envconfig:"CACHE_STALE_TTL" default:"72h"`

	RedisAddr         string        `envconfig:"CACHE_REDIS_ADDR" default:"localhost:6379"`
	RedisPassword     string        `envconfig:"CACHE_REDIS_PASSWORD" default:""`
	RedisDB           int           `envconfig:"CACHE_REDIS_DB" default:"0"`
	RedisDialTimeout  time.Duration `envconfig:"CACHE_REDIS_DIAL_TIMEOUT" default:"5s"`
	RedisReadTimeout  time.Duration `envconfig:"CACHE_REDIS_READ_TIMEOUT" default:"3s"`
	RedisWriteTimeout time.Duration `envconfig:"CACHE_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// UpstreamConfig holds the credentials and base URL for one upstream.
type UpstreamConfig struct {
	APIKey  string
	BaseURL string
}

// UpstreamsConfig contains settings for every external data source.
// Keys are optional: an upstream without a key is simply not registered.
type UpstreamsConfig struct {
	LaborAPIKey  string `envconfig:"LABOR_API_KEY" default:""`
	LaborBaseURL string `envconfig:"LABOR_BASE_URL" default:"https://api.bls.gov/publicAPI/v2"`

	EconAPIKey  string `envconfig:"ECON_API_KEY" default:""`
	EconBaseURL string `envconfig:"ECON_BASE_URL" default:"https://apps.bea.gov/api/data"`

	CrimeAPIKey  string `envconfig:"CRIME_API_KEY" default:""`
	CrimeBaseURL string `envconfig:"CRIME_BASE_URL" default:"https://api.usa.gov/crime/fbi/cde"`

	ClimateToken   string `envconfig:"CLIMATE_TOKEN" default:""`
	ClimateBaseURL string `envconfig:"CLIMATE_BASE_URL" default:"https://www.ncei.noaa.gov/cdo-web/api/v2"`

	PlacesToken   string `envconfig:"PLACES_TOKEN" default:""`
	PlacesBaseURL string `envconfig:"PLACES_BASE_URL" default:"https://api.foursquare.com/v3/places"`

	DemoAPIKey  string `envconfig:"DEMO_API_KEY" default:""`
	DemoBaseURL string `envconfig:"DEMO_BASE_URL" default:"https://api.census.gov/data"`
}

// RetryConfig contains the defaults for the retry executor.
type RetryConfig struct {
	MaxAttempts    int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	BaseDelay      time.Duration `envconfig:"RETRY_BASE_DELAY" default:"1s"`
	MaxDelay       time.Duration `envconfig:"RETRY_MAX_DELAY" default:"30s"`
	AttemptTimeout time.Duration `envconfig:"RETRY_ATTEMPT_TIMEOUT" default:"15s"`
}

// BreakerConfig contains the circuit breaker thresholds.
type BreakerConfig struct {
	FailureThreshold int           `envconfig:"BREAKER_FAILURE_THRESHOLD" default:"5"`
	Cooldown         time.Duration `envconfig:"BREAKER_COOLDOWN" default:"5m"`
}

// DatabaseConfig contains the snapshot store connection settings.
type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	Path     string `envconfig:"DB_PATH" default:"areadata.db"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"areadata"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

// GetDSN returns a formatted database connection string
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RefreshConfig drives the warm-metric refresher.
type RefreshConfig struct {
	Enabled  bool          `envconfig:"REFRESH_ENABLED" default:"false"`
	Interval time.Duration `envconfig:"REFRESH_INTERVAL" default:"1h"`

	// Metrics lists warm specs of the form "upstream|key=value;key=value",
	// comma-separated. The semicolon keeps parameter lists clear of the
	// comma envconfig splits slice values on.
	Metrics []string `envconfig:"REFRESH_METRICS" default:""`

	SnapshotRetention time.Duration `envconfig:"SNAPSHOT_RETENTION" default:"720h"`
}

// LoadConfig loads and validates application configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Retry.Validate(); err != nil {
		return err
	}
	if err := c.Breaker.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Refresh.Validate(); err != nil {
		return err
	}
	return c.Upstreams.Validate()
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

// Validate checks cache configuration
func (c *CacheConfig) Validate() error {
	if c.Backend != "memory" && c.Backend != "redis" {
		return errors.NewConfigurationError("CACHE_BACKEND must be either 'memory' or 'redis'", nil)
	}
	if c.SeriesTTL <= 0 || c.PlacesTTL <= 0 {
		return errors.NewConfigurationError("cache TTLs must be positive", nil)
	}
	if c.StaleTTL < c.SeriesTTL {
		return errors.NewConfigurationError("CACHE_STALE_TTL must not be shorter than CACHE_SERIES_TTL", nil)
	}
	if c.Backend == "redis" && c.RedisAddr == "" {
		return errors.NewConfigurationError("CACHE_REDIS_ADDR cannot be empty when the redis backend is selected", nil)
	}
	return nil
}

// Validate checks upstream configuration
func (u *UpstreamsConfig) Validate() error {
	for name, baseURL := range map[string]string{
		"LABOR_BASE_URL":   u.LaborBaseURL,
		"ECON_BASE_URL":    u.EconBaseURL,
		"CRIME_BASE_URL":   u.CrimeBaseURL,
		"CLIMATE_BASE_URL": u.ClimateBaseURL,
		"PLACES_BASE_URL":  u.PlacesBaseURL,
		"DEMO_BASE_URL":    u.DemoBaseURL,
	} {
		if baseURL == "" {
			return errors.NewConfigurationError(fmt.Sprintf("%s cannot be empty", name), nil)
		}
		if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
			return errors.NewConfigurationError(fmt.Sprintf("%s must start with http:// or https://", name), nil)
		}
	}
	return nil
}

// Validate checks retry configuration
func (r *RetryConfig) Validate() error {
	if r.MaxAttempts < 1 {
		return errors.NewConfigurationError("RETRY_MAX_ATTEMPTS must be at least 1", nil)
	}
	if r.BaseDelay <= 0 {
		return errors.NewConfigurationError("RETRY_BASE_DELAY must be positive", nil)
	}
	if r.MaxDelay < r.BaseDelay {
		return errors.NewConfigurationError("RETRY_MAX_DELAY must not be shorter than RETRY_BASE_DELAY", nil)
	}
	if r.AttemptTimeout <= 0 {
		return errors.NewConfigurationError("RETRY_ATTEMPT_TIMEOUT must be positive", nil)
	}
	return nil
}

// Validate checks breaker configuration
func (b *BreakerConfig) Validate() error {
	if b.FailureThreshold < 1 {
		return errors.NewConfigurationError("BREAKER_FAILURE_THRESHOLD must be at least 1", nil)
	}
	if b.Cooldown <= 0 {
		return errors.NewConfigurationError("BREAKER_COOLDOWN must be positive", nil)
	}
	return nil
}

// Validate checks database configuration
func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case "sqlite":
		if d.Path == "" {
			return errors.NewConfigurationError("DB_PATH cannot be empty for the sqlite driver", nil)
		}
	case "postgres":
		if d.Host == "" {
			return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
		}
		if d.Port < 1 || d.Port > 65535 {
			return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
		}
		if d.User == "" {
			return errors.NewConfigurationError("DB_USER cannot be empty", nil)
		}
		if d.Name == "" {
			return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
		}
		if err := d.validateSSLMode(); err != nil {
			return err
		}
	default:
		return errors.NewConfigurationError("DB_DRIVER must be either 'sqlite' or 'postgres'", nil)
	}
	return nil
}

func (d *DatabaseConfig) validateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

// Validate checks refresher configuration
func (r *RefreshConfig) Validate() error {
	if !r.Enabled {
		return nil
	}
	if r.Interval < time.Minute {
		return errors.NewConfigurationError("REFRESH_INTERVAL must be at least 1 minute", nil)
	}
	if len(r.Metrics) == 0 {
		return errors.NewConfigurationError("REFRESH_METRICS cannot be empty when the refresher is enabled", nil)
	}
	for _, spec := range r.Metrics {
		if !strings.Contains(spec, "|") {
			return errors.NewConfigurationError(
				fmt.Sprintf("refresh spec %q must have the form upstream|key=value;key=value", spec), nil)
		}
	}
	return nil
}
