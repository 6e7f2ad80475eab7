package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MCGEN_CONFIG", "SERVER_HOST", "SERVER_PORT", "METRICS_ADDR", "LOG_LEVEL",
		"CORS_ALLOWED_ORIGINS", "MAX_HOSTS_PER_ROLE", "DEFAULT_HOST_COUNT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 3, cfg.Generator.DefaultHostCount)
	assert.Equal(t, 64, cfg.Generator.MaxHostsPerRole)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("MAX_HOSTS_PER_ROLE", "8")
	t.Setenv("DEFAULT_HOST_COUNT", "1")
	t.Setenv("METRICS_ADDR", ":2112")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 8, cfg.Generator.MaxHostsPerRole)
	assert.Equal(t, 1, cfg.Generator.DefaultHostCount)
	assert.Equal(t, ":2112", cfg.Server.MetricsAddr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestLoad_EnvBadInt(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "eighty")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SERVER_PORT")
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "mcgen.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
server {
  port          = 9090
  read_timeout  = "5s"
  write_timeout = "10s"
}

generator {
  max_hosts_per_role = 10
  default_host_count = 2
}

log {
  level = "warn"
}
`), 0o600))
	t.Setenv("MCGEN_CONFIG", path)
	t.Setenv("SERVER_PORT", "9191")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port, "env overrides file")
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 10, cfg.Generator.MaxHostsPerRole)
	assert.Equal(t, 2, cfg.Generator.DefaultHostCount)
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}

func TestLoad_FileErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "server {"},
		{"duration", "server {\n  read_timeout = \"soon\"\n}\n"},
		{"unknown block", "database {}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			path := filepath.Join(t.TempDir(), "mcgen.hcl")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o600))
			t.Setenv("MCGEN_CONFIG", path)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"empty host", func(c *Config) { c.Server.Host = "" }},
		{"default above max", func(c *Config) { c.Generator.DefaultHostCount = 100 }},
		{"negative default", func(c *Config) { c.Generator.DefaultHostCount = -1 }},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }},
		{"bad metrics addr", func(c *Config) { c.Server.MetricsAddr = "not an addr" }},
		{"zero timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
