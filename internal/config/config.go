// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "time"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// BackendURL is the base URL of the score recognition backend.
	BackendURL string `koanf:"backend_url"`

	// FetchTimeoutMS bounds one backend snapshot fetch.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// RefreshIntervalMS schedules automatic refresh runs; 0 disables
	// the scheduler so runs only happen on demand.
	RefreshIntervalMS int `koanf:"refresh_interval_ms"`

	// RefreshQueueSize bounds the refresh request queue.
	RefreshQueueSize int `koanf:"refresh_queue_size"`

	// InlineProcessing runs refreshes synchronously on the caller
	// instead of through the background queue.
	InlineProcessing bool `koanf:"inline_processing"`

	// RedisAddr enables the Redis snapshot store when non-empty;
	// otherwise snapshots live in process memory.
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// SnapshotSchema versions the persisted ranking snapshots.
	SnapshotSchema string `koanf:"snapshot_schema"`

	// DebugRating enables the battle replay debug log.
	DebugRating bool `koanf:"debug_rating"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		BackendURL:          "http://localhost:3010",
		FetchTimeoutMS:      120_000,
		RefreshIntervalMS:   600_000,
		RefreshQueueSize:    16,
		SnapshotSchema:      "v3",
		MaxLeaderboardLimit: 100,
	}
}

// FetchTimeout returns the fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// RefreshInterval returns the scheduler interval as a duration.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalMS) * time.Millisecond
}
