package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:7640", cfg.ListenAddr)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, 24*time.Hour, cfg.HistoryTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 256, cfg.SendBuffer)
	assert.Empty(t, cfg.NATSURL)
}

func TestOverrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		EnvListenAddr: "0.0.0.0:9000",
		EnvHTTPAddr:   ":9090",
		EnvStorage:    "Redis",
		EnvRedisURL:   "redis://cache:6379/1",
		EnvHistoryTTL: "90m",
		EnvNATSURL:    "nats://bus:4222",
		EnvLogLevel:   "debug",
		EnvLogFormat:  "text",
		EnvSendBuffer: "16",
	}))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.ListenAddr)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, StorageRedis, cfg.Storage)
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, 90*time.Minute, cfg.HistoryTTL)
	assert.Equal(t, "nats://bus:4222", cfg.NATSURL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 16, cfg.SendBuffer)
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad storage", map[string]string{EnvStorage: "postgres"}},
		{"redis without url", map[string]string{EnvStorage: "redis"}},
		{"bad ttl", map[string]string{EnvHistoryTTL: "soon"}},
		{"negative ttl", map[string]string{EnvHistoryTTL: "-1h"}},
		{"bad buffer", map[string]string{EnvSendBuffer: "0"}},
		{"bad level", map[string]string{EnvLogLevel: "loud"}},
		{"bad format", map[string]string{EnvLogFormat: "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(lookupFrom(tt.env))
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("RPS_HTTP_ADDR=:7777\n"), 0o600))
	t.Setenv(EnvHTTPAddr, "")
	require.NoError(t, os.Unsetenv(EnvHTTPAddr))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.HTTPAddr)
}

func TestLoadWithoutEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Default()
	cfg.LogFormat = "text"

	cfg.NewLogger(&buf).Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
}
