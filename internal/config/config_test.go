package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 2*time.Hour, cfg.Scheduler.Interval.Std())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  host: db.internal
  port: 6432
rabbitmq:
  host: mq.internal
scheduler:
  interval: 30m
`), 0o644))

	t.Setenv("DB_PASSWORD", "sekret")
	t.Setenv("DECAY_INTERVAL", "1h")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6432, cfg.Database.Port)
	assert.Equal(t, "mq.internal", cfg.RabbitMQ.Host)
	// Env wins over both defaults and file.
	assert.Equal(t, "sekret", cfg.Database.Password)
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval.Std())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "freshdeal", cfg.Database.Database)
}

func TestLoad_BadInterval(t *testing.T) {
	t.Setenv("DECAY_INTERVAL", "soon")
	_, err := Load("")
	require.Error(t, err)
}
