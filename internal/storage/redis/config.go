package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// InstanceID namespaces every key so a restarted server never reads an earlier run's data
	InstanceID string

	// MatchTTL applies to each match record and the recent-match index
	MatchTTL time.Duration

	// MaxMatches bounds the recent-match index
	MaxMatches int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		MatchTTL:     24 * time.Hour,
		MaxMatches:   1000,
	}
}
