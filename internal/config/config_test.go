package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DoyleJ11/impostor/internal/persist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	cfg := &Config{}
	var got *Config
	cmd := NewCommand(cfg, func(_ context.Context, c *Config) error {
		got = c
		return nil
	})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return got, err
}

func TestNewCommand_Defaults(t *testing.T) {
	cfg, err := execute(t)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, persist.Config{Driver: persist.DriverMemory}, cfg.Store())
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestNewCommand_FlagsAndEnv(t *testing.T) {
	t.Setenv("IMPOSTOR_PORT", "9090")
	t.Setenv("IMPOSTOR_LOG_LEVEL", "debug")
	t.Setenv("IMPOSTOR_ALLOWED_ORIGINS", "localhost:*,example.com")

	dir := t.TempDir()
	cfg, err := execute(t, "--store", "sqlite", "--store-path", filepath.Join(dir, "impostor.db"), "--log-level", "warn")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel, "flags beat the environment")
	assert.Equal(t, []string{"localhost:*", "example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, persist.DriverSQLite, cfg.StoreDriver)
}

func TestNewCommand_InvalidConfigNeverRuns(t *testing.T) {
	cfg, err := execute(t, "--store", "file")
	assert.ErrorContains(t, err, "--store-path is required")
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:            8080,
			LogLevel:        "info",
			LogFormat:       "json",
			StoreDriver:     persist.DriverMemory,
			ShutdownTimeout: time.Second,
		}
	}

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "port", mutate: func(c *Config) { c.Port = 0 }, wantErr: "invalid port"},
		{name: "log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "invalid log level"},
		{name: "log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: "invalid log format"},
		{name: "driver", mutate: func(c *Config) { c.StoreDriver = "redis" }, wantErr: "invalid store driver"},
		{name: "postgres dsn", mutate: func(c *Config) { c.StoreDriver = persist.DriverPostgres }, wantErr: "--store-dsn"},
		{name: "file path", mutate: func(c *Config) { c.StoreDriver = persist.DriverFile; c.StorePath = "data" }},
		{name: "shutdown", mutate: func(c *Config) { c.ShutdownTimeout = 0 }, wantErr: "shutdown timeout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("IMPOSTOR_TEST_DOTENV=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("IMPOSTOR_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("IMPOSTOR_TEST_DOTENV"))
}
