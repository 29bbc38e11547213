package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	testCases := []struct {
		name      string
		body      string
		expectErr bool
		check     func(t *testing.T, cfg *Config)
	}{
		{
			name: "Empty sections get defaults",
			body: "server: {}\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 300*time.Second, cfg.Server.CacheTTL)
				assert.Equal(t, 10*time.Minute, cfg.Server.RateLimitIdle)
				assert.Equal(t, DriverSQLite, cfg.Database.Driver)
				assert.Equal(t, "daytrack.db", cfg.Database.DSN)
				assert.Equal(t, time.UTC, cfg.Timeline.Location)
				assert.Equal(t, 1, cfg.SmartGuess.BaselineConfidence)
				assert.Equal(t, 1, cfg.WorkerPool.Size)
				assert.Equal(t, 64, cfg.WorkerPool.QueueSize)
			},
		},
		{
			name: "Explicit values are kept",
			body: `
server:
  port: 9000
  cache_ttl_seconds: 10
  rate_limit_idle_minutes: 2
database:
  driver: postgres
  dsn: "host=localhost user=daytrack"
timeline:
  timezone: Europe/Berlin
smart_guess:
  baseline_confidence: 3
  same_weekday_only: true
worker_pool:
  size: 2
  queue_size: 8
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9000, cfg.Server.Port)
				assert.Equal(t, 10*time.Second, cfg.Server.CacheTTL)
				assert.Equal(t, 2*time.Minute, cfg.Server.RateLimitIdle)
				assert.Equal(t, DriverPostgres, cfg.Database.Driver)
				assert.Equal(t, "host=localhost user=daytrack", cfg.Database.DSN)
				assert.Equal(t, "Europe/Berlin", cfg.Timeline.Location.String())
				assert.Equal(t, 3, cfg.SmartGuess.BaselineConfidence)
				assert.True(t, cfg.SmartGuess.SameWeekdayOnly)
				assert.Equal(t, 2, cfg.WorkerPool.Size)
				assert.Equal(t, 8, cfg.WorkerPool.QueueSize)
			},
		},
		{
			name:      "Unknown driver",
			body:      "database:\n  driver: mysql\n",
			expectErr: true,
		},
		{
			name:      "Unknown timezone",
			body:      "timeline:\n  timezone: Mars/Olympus\n",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tc.body))
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, time.UTC, cfg.Timeline.Location)
}
