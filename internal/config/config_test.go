package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 7*24*time.Hour, cfg.Redis.TTL.Std())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  addr: ":9090"
  rate_limit_rps: 10
database:
  dsn: "postgres://localhost/salon"
redis:
  addr: "localhost:6379"
  ttl: 1h
catalog:
  metadata_url: "https://catalog.example.com/designs"
booking:
  reminder_schedule: "@every 5m"
logging:
  level: debug
  format: text
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Server.RateLimitRPS)
	assert.Equal(t, "postgres://localhost/salon", cfg.Database.DSN)
	assert.Equal(t, time.Hour, cfg.Redis.TTL.Std())
	assert.Equal(t, "https://catalog.example.com/designs", cfg.Catalog.MetadataURL)
	assert.Equal(t, "@every 5m", cfg.Booking.ReminderSchedule)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SALON_ADDR", ":7070")
	t.Setenv("SALON_REDIS_ADDR", "cache:6379")
	t.Setenv("SALON_RATE_LIMIT_RPS", "5")
	t.Setenv("SALON_REMINDER_SCHEDULE", "@hourly")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 5, cfg.Server.RateLimitRPS)
	assert.Equal(t, "@hourly", cfg.Booking.ReminderSchedule)
}

func TestValidateRejectsEmptyAddr(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \"  \"\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
