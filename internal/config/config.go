// Package config loads the server configuration from YAML with environment
// overrides for deployment settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/glosslab/salon-service/pkg/logger"
)

// Duration is a time.Duration that unmarshals from YAML strings like "30s".
type Duration time.Duration

// UnmarshalYAML accepts either a Go duration string or a number of
// nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err == nil {
		parsed, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value")
	}
	*d = Duration(n)
	return nil
}

// Std converts to the standard library type.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the root server configuration.
type Config struct {
	Server   ServerConfig         `yaml:"server"`
	Database DatabaseConfig       `yaml:"database"`
	Redis    RedisConfig          `yaml:"redis"`
	Catalog  CatalogConfig        `yaml:"catalog"`
	Booking  BookingConfig        `yaml:"booking"`
	Auth     AuthConfig           `yaml:"auth"`
	Logging  logger.LoggingConfig `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	RateLimitRPS    int      `yaml:"rate_limit_rps"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	AuditLogPath    string   `yaml:"audit_log_path"`
}

// DatabaseConfig selects the persistence backend. An empty DSN selects the
// in-memory store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig enables the Redis cart store when Addr is set.
type RedisConfig struct {
	Addr string   `yaml:"addr"`
	TTL  Duration `yaml:"ttl"`
}

// CatalogConfig points cart metadata resolution at a remote catalog. Empty
// endpoint resolves against the local design store.
type CatalogConfig struct {
	MetadataURL string `yaml:"metadata_url"`
	MetadataKey string `yaml:"metadata_key"`
}

// BookingConfig tunes the appointment reminder sweeper. An empty schedule
// keeps the sweeper's built-in default.
type BookingConfig struct {
	ReminderSchedule string `yaml:"reminder_schedule"`
}

// AuthConfig configures request authentication. JWT verification is enabled
// when a public key file is configured.
type AuthConfig struct {
	PublicKeyPath string   `yaml:"public_key_path"`
	SkipPaths     []string `yaml:"skip_paths"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
			RateLimitRPS:    50,
			RateLimitBurst:  100,
		},
		Redis: RedisConfig{
			TTL: Duration(7 * 24 * time.Hour),
		},
		Logging: logger.LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Load reads the YAML file at path, falling back to defaults when the file
// does not exist, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to defaults
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("SALON_ADDR")); v != "" {
		cfg.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("SALON_DATABASE_DSN")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("SALON_REDIS_ADDR")); v != "" {
		cfg.Redis.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("SALON_METADATA_URL")); v != "" {
		cfg.Catalog.MetadataURL = v
	}
	if v := os.Getenv("SALON_METADATA_KEY"); v != "" {
		cfg.Catalog.MetadataKey = v
	}
	if v := strings.TrimSpace(os.Getenv("SALON_REMINDER_SCHEDULE")); v != "" {
		cfg.Booking.ReminderSchedule = v
	}
	if v := strings.TrimSpace(os.Getenv("SALON_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("SALON_RATE_LIMIT_RPS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.RateLimitRPS = n
		}
	}
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server addr is required")
	}
	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("rate_limit_rps must not be negative")
	}
	return nil
}
