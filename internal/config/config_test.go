package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

// clearEnv blanks every key the manager reads so the host environment
// cannot leak into a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DATABASE_URL", "DATABASE_MAX_OPEN_CONNS", "BASE_URL", "POKEAPI_BASE_URL",
		"POKEAPI_TIMEOUT", "POKEAPI_RATE_LIMIT", "POKEAPI_RATE_BURST", "POKEAPI_USER_AGENT",
		"POKEDEX_MAX_RETRIES", "POKEDEX_BASE_DELAY", "POKEDEX_MAX_DELAY", "POKEDEX_RETRY_MULTIPLIER",
		"POKEDEX_CACHE_TTL", "POKEDEX_FLAVOR_LANGUAGE", "POKEDEX_SERVER_ADDR",
		"POKEDEX_READ_TIMEOUT", "POKEDEX_WRITE_TIMEOUT", "POKEDEX_LOG_LEVEL", "POKEDEX_LOG_FORMAT",
		"POKEDEX_LOG_SAVE_DB", "POKEDEX_LOG_RETENTION", "POKEDEX_POPULATE_SCHEDULE",
		"POKEDEX_POPULATE_PAGE_SIZE", "POKEDEX_POPULATE_PAGES",
	} {
		t.Setenv(key, "")
	}
}

func TestNewConfigManager_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite://pokedex.db")

	cfg, err := NewConfigManagerFromDir(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "defaults", cfg.Source())
	assert.Equal(t, "https://pokeapi.co/api/v2", cfg.GetPokeAPIConfig().BaseURL)
	assert.Equal(t, 7*24*time.Hour, cfg.GetSyncConfig().TTL)
	assert.Equal(t, "en", cfg.GetSyncConfig().FlavorLanguage)
	assert.Equal(t, 3, cfg.GetRetryConfig().MaxRetries)
	assert.Equal(t, 3*time.Second, cfg.GetRetryConfig().BaseDelay)
	assert.Equal(t, ":8080", cfg.GetServerConfig().Addr)
	assert.Equal(t, "@daily", cfg.GetPopulatorConfig().Schedule)
}

func TestNewConfigManager_YAML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "pokedex.yaml", `
database:
  url: postgres://pokedex@localhost/pokedex
pokeapi:
  timeout: 5s
  rate_limit: 2.5
sync:
  ttl: 24h
  flavor_language: ja
logger:
  level: debug
  format: console
`)
	// a TOML file next to it is ignored
	writeFile(t, dir, "pokedex.toml", "[sync]\nttl = \"1h\"\n")

	cfg, err := NewConfigManagerFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Source())
	assert.Equal(t, "postgres://pokedex@localhost/pokedex", cfg.GetDatabaseConfig().URL)
	assert.Equal(t, 5*time.Second, cfg.GetPokeAPIConfig().Timeout)
	assert.Equal(t, 2.5, cfg.GetPokeAPIConfig().RateLimit)
	assert.Equal(t, 24*time.Hour, cfg.GetSyncConfig().TTL)
	assert.Equal(t, "ja", cfg.GetSyncConfig().FlavorLanguage)
	assert.Equal(t, "debug", cfg.GetLoggerConfig().Level)

	// unset keys keep their defaults
	assert.Equal(t, "https://pokeapi.co/api/v2", cfg.GetPokeAPIConfig().BaseURL)
	assert.Equal(t, 5, cfg.GetPokeAPIConfig().RateBurst)
}

func TestNewConfigManager_TOML(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "pokedex.toml", `
[database]
url = "sqlite://catalog.db"

[retry]
max_retries = 5
base_delay = "500ms"

[populator]
schedule = "0 3 * * *"
pages = 10
`)

	cfg, err := NewConfigManagerFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "toml", cfg.Source())
	assert.Equal(t, "sqlite://catalog.db", cfg.GetDatabaseConfig().URL)
	assert.Equal(t, 5, cfg.GetRetryConfig().MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.GetRetryConfig().BaseDelay)
	assert.Equal(t, "0 3 * * *", cfg.GetPopulatorConfig().Schedule)
	assert.Equal(t, 10, cfg.GetPopulatorConfig().Pages)
}

func TestNewConfigManager_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "pokedex.yaml", "database:\n  url: sqlite://file.db\nsync:\n  ttl: 24h\n")

	t.Setenv("DATABASE_URL", "sqlite://env.db")
	t.Setenv("POKEDEX_CACHE_TTL", "90m")
	t.Setenv("POKEDEX_LOG_SAVE_DB", "false")
	t.Setenv("POKEDEX_POPULATE_PAGE_SIZE", "not-a-number")

	cfg, err := NewConfigManagerFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite://env.db", cfg.GetDatabaseConfig().URL)
	assert.Equal(t, 90*time.Minute, cfg.GetSyncConfig().TTL)
	assert.False(t, cfg.GetLoggerConfig().SaveToDB)
	assert.Equal(t, 50, cfg.GetPopulatorConfig().PageSize)
}

func TestNewConfigManager_BaseURLAliases(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite://pokedex.db")
	t.Setenv("BASE_URL", "http://legacy.local/api/v2")

	cfg, err := NewConfigManagerFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "http://legacy.local/api/v2", cfg.GetPokeAPIConfig().BaseURL)

	t.Setenv("POKEAPI_BASE_URL", "http://mirror.local/api/v2")
	cfg, err = NewConfigManagerFromDir(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "http://mirror.local/api/v2", cfg.GetPokeAPIConfig().BaseURL)
}

func TestNewConfigManager_InvalidFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "pokedex.yaml", "database: [unclosed")

	_, err := NewConfigManagerFromDir(dir)
	assert.Error(t, err)
}

func TestConfigManager_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database url", func(c *Config) { c.Database.URL = "" }},
		{"bad base url", func(c *Config) { c.PokeAPI.BaseURL = "pokeapi.co" }},
		{"zero timeout", func(c *Config) { c.PokeAPI.Timeout = 0 }},
		{"burst without room", func(c *Config) { c.PokeAPI.RateBurst = 0 }},
		{"negative retries", func(c *Config) { c.Retry.MaxRetries = -1 }},
		{"max below base delay", func(c *Config) { c.Retry.MaxDelay = time.Millisecond }},
		{"shrinking multiplier", func(c *Config) { c.Retry.Multiplier = 0.5 }},
		{"zero ttl", func(c *Config) { c.Sync.TTL = 0 }},
		{"unknown log level", func(c *Config) { c.Logger.Level = "verbose" }},
		{"unknown log format", func(c *Config) { c.Logger.Format = "xml" }},
		{"bad schedule", func(c *Config) { c.Populator.Schedule = "every day" }},
		{"no pages", func(c *Config) { c.Populator.Pages = 0 }},
		{"oversized page", func(c *Config) { c.Populator.PageSize = 150 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := &ConfigManager{config: &Config{}}
			cm.setDefaults(cm.config)
			cm.config.Database.URL = "sqlite://pokedex.db"
			require.NoError(t, cm.Validate())

			tt.mutate(cm.config)
			assert.Error(t, cm.Validate())
		})
	}
}
