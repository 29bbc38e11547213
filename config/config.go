package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Timeline   TimelineConfig   `yaml:"timeline"`
	SmartGuess SmartGuessConfig `yaml:"smart_guess"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the async event worker pool.
type WorkerPoolConfig struct {
	Size      int `yaml:"size"`
	QueueSize int `yaml:"queue_size"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"` // Ignored by YAML parser

	// Clients idle for longer than this lose their token bucket.
	RateLimitIdleMinutes int           `yaml:"rate_limit_idle_minutes"`
	RateLimitIdle        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // sqlite | postgres | memory
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogSQL                 bool   `yaml:"log_sql"`
}

// TimelineConfig controls how calendar days are computed.
type TimelineConfig struct {
	Timezone string         `yaml:"timezone"`
	Location *time.Location `yaml:"-"`
}

// SmartGuessConfig tunes the location-based category guesser.
type SmartGuessConfig struct {
	BaselineConfidence int  `yaml:"baseline_confidence"`
	SameWeekdayOnly    bool `yaml:"same_weekday_only"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration suitable for local development: sqlite on
// disk, UTC days and a single event worker.
func Default() *Config {
	cfg := &Config{}
	// UTC always loads.
	_ = cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if cfg.Server.RateLimitIdleMinutes <= 0 {
		cfg.Server.RateLimitIdleMinutes = 10
	}
	cfg.Server.RateLimitIdle = time.Duration(cfg.Server.RateLimitIdleMinutes) * time.Minute

	switch cfg.Database.Driver {
	case "":
		cfg.Database.Driver = DriverSQLite
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	if cfg.Database.Driver == DriverSQLite && cfg.Database.DSN == "" {
		cfg.Database.DSN = "daytrack.db"
	}

	if cfg.Timeline.Timezone == "" {
		cfg.Timeline.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(cfg.Timeline.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", cfg.Timeline.Timezone, err)
	}
	cfg.Timeline.Location = loc

	if cfg.SmartGuess.BaselineConfidence <= 0 {
		cfg.SmartGuess.BaselineConfidence = 1
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}
	if cfg.WorkerPool.QueueSize <= 0 {
		cfg.WorkerPool.QueueSize = 64
	}
	return nil
}
