package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config discovery at an empty home and clears inherited env.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"GITHUB_TOKEN", "YEARINCODE_TOKEN", "YEARINCODE_USER", "YEARINCODE_CONCURRENCY",
		"YEARINCODE_OUTPUT", "YEARINCODE_STORE_BACKEND", "YEARINCODE_STORE_DSN", "YEARINCODE_SERVE_ADDR",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(New(""))
	require.NoError(t, err)

	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
	assert.Equal(t, "none", cfg.Store.Backend)
	assert.Equal(t, DefaultServeAddr, cfg.Serve.Addr)
	assert.Empty(t, cfg.Output)
	assert.ErrorIs(t, cfg.RequireToken(), ErrMissingToken)
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("YEARINCODE_CONCURRENCY", "8")
	t.Setenv("YEARINCODE_STORE_BACKEND", "sqlite")
	t.Setenv("YEARINCODE_STORE_DSN", "stats.db")

	cfg, err := Load(New(""))
	require.NoError(t, err)

	assert.Equal(t, "ghp_test", cfg.Token)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, StoreConfig{Backend: "sqlite", DSN: "stats.db"}, cfg.Store)
	assert.NoError(t, cfg.RequireToken())
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
user: octocat
output: table
store:
  backend: postgres
  dsn: postgres://localhost/stats
serve:
  addr: 127.0.0.1:9000
`)

	cfg, err := Load(New(path))
	require.NoError(t, err)

	assert.Equal(t, "octocat", cfg.User)
	assert.Equal(t, "table", cfg.Output)
	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.Equal(t, "postgres://localhost/stats", cfg.Store.DSN)
	assert.Equal(t, "127.0.0.1:9000", cfg.Serve.Addr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(New(filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			User:        "octo-cat",
			Concurrency: 5,
			Output:      "json",
			Store:       StoreConfig{Backend: "none"},
			Serve:       ServeConfig{Addr: ":8080"},
		}
	}

	testCases := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty user resolves later", mutate: func(c *Config) { c.User = "" }},
		{name: "login with leading dash", mutate: func(c *Config) { c.User = "-octocat" }, expectError: true},
		{name: "login too long", mutate: func(c *Config) { c.User = "a123456789012345678901234567890123456789" }, expectError: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.Concurrency = 0 }, expectError: true},
		{name: "too much concurrency", mutate: func(c *Config) { c.Concurrency = 33 }, expectError: true},
		{name: "unknown output", mutate: func(c *Config) { c.Output = "xml" }, expectError: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Store.Backend = "redis" }, expectError: true},
		{name: "backend without dsn", mutate: func(c *Config) { c.Store.Backend = "mysql" }, expectError: true},
		{name: "backend with dsn", mutate: func(c *Config) { c.Store = StoreConfig{Backend: "mysql", DSN: "u:p@/db"} }},
		{name: "bad listen address", mutate: func(c *Config) { c.Serve.Addr = "not an address" }, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
