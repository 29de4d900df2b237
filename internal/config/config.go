package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment keys
const (
	EnvListenAddr = "RPS_LISTEN_ADDR"
	EnvHTTPAddr   = "RPS_HTTP_ADDR"
	EnvStorage    = "RPS_STORAGE"
	EnvRedisURL   = "RPS_REDIS_URL"
	EnvHistoryTTL = "RPS_HISTORY_TTL"
	EnvNATSURL    = "RPS_NATS_URL"
	EnvLogLevel   = "RPS_LOG_LEVEL"
	EnvLogFormat  = "RPS_LOG_FORMAT"
	EnvSendBuffer = "RPS_SEND_BUFFER"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

// Config is the server's runtime configuration
type Config struct {
	ListenAddr string
	HTTPAddr   string
	Storage    string
	RedisURL   string
	HistoryTTL time.Duration
	NATSURL    string // empty disables event publishing
	LogLevel   slog.Level
	LogFormat  string
	SendBuffer int
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		ListenAddr: "127.0.0.1:7640",
		HTTPAddr:   ":8080",
		Storage:    StorageMemory,
		HistoryTTL: 24 * time.Hour,
		LogLevel:   slog.LevelInfo,
		LogFormat:  "json",
		SendBuffer: 256,
	}
}

// Load reads an optional .env file and then the process environment
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function over environment variables
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvListenAddr); ok && v != "" {
		cfg.ListenAddr = v
	}
	if v, ok := lookup(EnvHTTPAddr); ok && v != "" {
		cfg.HTTPAddr = v
	}
	if v, ok := lookup(EnvStorage); ok && v != "" {
		cfg.Storage = strings.ToLower(v)
	}
	if v, ok := lookup(EnvRedisURL); ok {
		cfg.RedisURL = v
	}
	if v, ok := lookup(EnvNATSURL); ok {
		cfg.NATSURL = v
	}
	if v, ok := lookup(EnvHistoryTTL); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("%s: invalid duration %q", EnvHistoryTTL, v)
		}
		cfg.HistoryTTL = d
	}
	if v, ok := lookup(EnvSendBuffer); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%s: must be a positive integer, got %q", EnvSendBuffer, v)
		}
		cfg.SendBuffer = n
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvLogLevel, err)
		}
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks combinations of settings
func (c Config) Validate() error {
	switch c.Storage {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%s required when %s=%s", EnvRedisURL, EnvStorage, StorageRedis)
		}
	default:
		return fmt.Errorf("%s: must be %q or %q, got %q", EnvStorage, StorageMemory, StorageRedis, c.Storage)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("%s: must be json or text, got %q", EnvLogFormat, c.LogFormat)
	}
	return nil
}

// NewLogger builds the process logger described by the config
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
