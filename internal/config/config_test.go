package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "fung", cfg.Metrics.Namespace)
	assert.Zero(t, cfg.Batch.Workers)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}

func TestReadFile_YAML(t *testing.T) {
	p := writeFile(t, "fung.yaml", `
server:
  port: 9090
  read_timeout: 5s
log:
  level: debug
  json: true
batch:
  workers: 4
`)
	cfg := Default()
	require.NoError(t, readFile(p, &cfg))
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.Equal(t, "fung", cfg.Metrics.Namespace)
}

func TestReadFile_TOML(t *testing.T) {
	p := writeFile(t, "fung.toml", `
[server]
port = 7070
max_body_bytes = 4096

[metrics]
enabled = false
namespace = ""
`)
	cfg := Default()
	require.NoError(t, readFile(p, &cfg))
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, int64(4096), cfg.Server.MaxBodyBytes)
	assert.False(t, cfg.Metrics.Enabled)
	assert.NoError(t, Validate(cfg))
}

func TestReadFile_Errors(t *testing.T) {
	cfg := Default()
	assert.ErrorContains(t, readFile(writeFile(t, "fung.ini", "port=1"), &cfg), "unsupported config format")
	assert.ErrorContains(t, readFile(writeFile(t, "bad.yaml", "server: [1"), &cfg), "failed to parse YAML")
	assert.ErrorContains(t, readFile(writeFile(t, "bad.toml", "[server\n"), &cfg), "failed to parse TOML")
	assert.ErrorIs(t, readFile(filepath.Join(t.TempDir(), "missing.yaml"), &cfg), os.ErrNotExist)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, env(map[string]string{
		"FUNG_PORT":          "9999",
		"FUNG_LOG_LEVEL":     "WARN",
		"FUNG_LOG_JSON":      "true",
		"FUNG_METRICS":       "false",
		"FUNG_BATCH_WORKERS": "8",
	}))
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 8, cfg.Batch.Workers)

	unchanged := Default()
	require.NoError(t, applyEnv(&unchanged, env(nil)))
	assert.Equal(t, Default(), unchanged)
}

func TestApplyEnv_Errors(t *testing.T) {
	for _, key := range []string{"FUNG_PORT", "FUNG_LOG_JSON", "FUNG_METRICS", "FUNG_BATCH_WORKERS"} {
		cfg := Default()
		err := applyEnv(&cfg, env(map[string]string{key: "many"}))
		assert.ErrorContains(t, err, key)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	p := writeFile(t, "fung.yml", "server:\n  port: 9090\n")
	t.Setenv("FUNG_PORT", "9191")
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "Port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "Port"},
		{"small body", func(c *Config) { c.Server.MaxBodyBytes = 10 }, "MaxBodyBytes"},
		{"no timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, "ReadTimeout"},
		{"level", func(c *Config) { c.Log.Level = "trace" }, "Level"},
		{"namespace", func(c *Config) { c.Metrics.Namespace = "" }, "Namespace"},
		{"workers", func(c *Config) { c.Batch.Workers = -1 }, "Workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	_, err := Load(writeFile(t, "fung.yaml", "log:\n  level: loud\n"))
	assert.ErrorContains(t, err, "invalid config")
}
