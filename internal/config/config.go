package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultDir is where configuration files are looked up
const DefaultDir = "config"

// DatabaseConfig contains store connection settings
type DatabaseConfig struct {
	URL          string `yaml:"url" toml:"url" env:"DATABASE_URL"`
	MaxOpenConns int    `yaml:"max_open_conns" toml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
}

// PokeAPIConfig contains upstream client settings
type PokeAPIConfig struct {
	BaseURL   string        `yaml:"base_url" toml:"base_url" env:"POKEAPI_BASE_URL"`
	Timeout   time.Duration `yaml:"timeout" toml:"timeout" env:"POKEAPI_TIMEOUT"`
	RateLimit float64       `yaml:"rate_limit" toml:"rate_limit" env:"POKEAPI_RATE_LIMIT"`
	RateBurst int           `yaml:"rate_burst" toml:"rate_burst" env:"POKEAPI_RATE_BURST"`
	UserAgent string        `yaml:"user_agent" toml:"user_agent" env:"POKEAPI_USER_AGENT"`
}

// RetryConfig contains retry logic configuration
type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries" toml:"max_retries" env:"POKEDEX_MAX_RETRIES"`
	BaseDelay  time.Duration `yaml:"base_delay" toml:"base_delay" env:"POKEDEX_BASE_DELAY"`
	MaxDelay   time.Duration `yaml:"max_delay" toml:"max_delay" env:"POKEDEX_MAX_DELAY"`
	Multiplier float64       `yaml:"multiplier" toml:"multiplier" env:"POKEDEX_RETRY_MULTIPLIER"`
}

// SyncConfig contains cache-or-fetch settings
type SyncConfig struct {
	TTL            time.Duration `yaml:"ttl" toml:"ttl" env:"POKEDEX_CACHE_TTL"`
	FlavorLanguage string        `yaml:"flavor_language" toml:"flavor_language" env:"POKEDEX_FLAVOR_LANGUAGE"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr         string        `yaml:"addr" toml:"addr" env:"POKEDEX_SERVER_ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout" toml:"read_timeout" env:"POKEDEX_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" toml:"write_timeout" env:"POKEDEX_WRITE_TIMEOUT"`
}

// LoggerConfig contains logging configuration
type LoggerConfig struct {
	Level     string        `yaml:"level" toml:"level" env:"POKEDEX_LOG_LEVEL"`
	Format    string        `yaml:"format" toml:"format" env:"POKEDEX_LOG_FORMAT"`
	SaveToDB  bool          `yaml:"save_to_db" toml:"save_to_db" env:"POKEDEX_LOG_SAVE_DB"`
	Retention time.Duration `yaml:"retention" toml:"retention" env:"POKEDEX_LOG_RETENTION"`
}

// PopulatorConfig contains the warm-up job settings
type PopulatorConfig struct {
	Schedule string `yaml:"schedule" toml:"schedule" env:"POKEDEX_POPULATE_SCHEDULE"`
	PageSize int    `yaml:"page_size" toml:"page_size" env:"POKEDEX_POPULATE_PAGE_SIZE"`
	Pages    int    `yaml:"pages" toml:"pages" env:"POKEDEX_POPULATE_PAGES"`
}

// Config represents the complete configuration structure for YAML/TOML files
type Config struct {
	Database  DatabaseConfig  `yaml:"database" toml:"database"`
	PokeAPI   PokeAPIConfig   `yaml:"pokeapi" toml:"pokeapi"`
	Retry     RetryConfig     `yaml:"retry" toml:"retry"`
	Sync      SyncConfig      `yaml:"sync" toml:"sync"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Logger    LoggerConfig    `yaml:"logger" toml:"logger"`
	Populator PopulatorConfig `yaml:"populator" toml:"populator"`
}

// ConfigProvider exposes the validated configuration sections
type ConfigProvider interface {
	GetDatabaseConfig() *DatabaseConfig
	GetPokeAPIConfig() *PokeAPIConfig
	GetRetryConfig() *RetryConfig
	GetSyncConfig() *SyncConfig
	GetServerConfig() *ServerConfig
	GetLoggerConfig() *LoggerConfig
	GetPopulatorConfig() *PopulatorConfig
	Source() string
	Validate() error
}

// ConfigManager implements the ConfigProvider interface
type ConfigManager struct {
	config *Config
	source string
}

var _ ConfigProvider = (*ConfigManager)(nil)

// NewConfigManager loads configuration from the default directory
func NewConfigManager() (ConfigProvider, error) {
	return NewConfigManagerFromDir(DefaultDir)
}

// NewConfigManagerFromDir creates a ConfigManager with configuration loaded
// from multiple sources
func NewConfigManagerFromDir(dir string) (ConfigProvider, error) {
	manager := &ConfigManager{}

	// Sources in order of preference:
	// 1. YAML file (<dir>/pokedex.yaml)
	// 2. TOML file (<dir>/pokedex.toml)
	// 3. Default values
	// Environment variables (.env included) override whichever was used.

	config := &Config{}
	manager.setDefaults(config)
	manager.source = "defaults"

	if err := manager.loadYAMLConfig(dir, config); err == nil {
		manager.source = "yaml"
	} else if !os.IsNotExist(err) {
		return nil, err
	} else if err := manager.loadTOMLConfig(dir, config); err == nil {
		manager.source = "toml"
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := manager.loadEnvConfig(config); err != nil {
		return nil, err
	}

	manager.config = config

	if err := manager.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return manager, nil
}

// loadYAMLConfig overlays the YAML file onto config. A missing file returns
// an error satisfying os.IsNotExist.
func (cm *ConfigManager) loadYAMLConfig(dir string, config *Config) error {
	yamlPath := filepath.Join(dir, "pokedex.yaml")
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse YAML config %s: %w", yamlPath, err)
	}

	return nil
}

// loadTOMLConfig overlays the TOML file onto config
func (cm *ConfigManager) loadTOMLConfig(dir string, config *Config) error {
	tomlPath := filepath.Join(dir, "pokedex.toml")
	if _, err := os.Stat(tomlPath); err != nil {
		return err
	}

	if _, err := toml.DecodeFile(tomlPath, config); err != nil {
		return fmt.Errorf("failed to parse TOML config %s: %w", tomlPath, err)
	}

	return nil
}

// loadEnvConfig applies environment variables on top of config
func (cm *ConfigManager) loadEnvConfig(config *Config) error {
	// Load .env file if it exists; real environment variables win
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	config.Database.URL = getEnvString("DATABASE_URL", config.Database.URL)
	config.Database.MaxOpenConns = getEnvInt("DATABASE_MAX_OPEN_CONNS", config.Database.MaxOpenConns)

	// BASE_URL is the older spelling and loses to POKEAPI_BASE_URL
	config.PokeAPI.BaseURL = getEnvString("BASE_URL", config.PokeAPI.BaseURL)
	config.PokeAPI.BaseURL = getEnvString("POKEAPI_BASE_URL", config.PokeAPI.BaseURL)
	config.PokeAPI.Timeout = getEnvDuration("POKEAPI_TIMEOUT", config.PokeAPI.Timeout)
	config.PokeAPI.RateLimit = getEnvFloat("POKEAPI_RATE_LIMIT", config.PokeAPI.RateLimit)
	config.PokeAPI.RateBurst = getEnvInt("POKEAPI_RATE_BURST", config.PokeAPI.RateBurst)
	config.PokeAPI.UserAgent = getEnvString("POKEAPI_USER_AGENT", config.PokeAPI.UserAgent)

	config.Retry.MaxRetries = getEnvInt("POKEDEX_MAX_RETRIES", config.Retry.MaxRetries)
	config.Retry.BaseDelay = getEnvDuration("POKEDEX_BASE_DELAY", config.Retry.BaseDelay)
	config.Retry.MaxDelay = getEnvDuration("POKEDEX_MAX_DELAY", config.Retry.MaxDelay)
	config.Retry.Multiplier = getEnvFloat("POKEDEX_RETRY_MULTIPLIER", config.Retry.Multiplier)

	config.Sync.TTL = getEnvDuration("POKEDEX_CACHE_TTL", config.Sync.TTL)
	config.Sync.FlavorLanguage = getEnvString("POKEDEX_FLAVOR_LANGUAGE", config.Sync.FlavorLanguage)

	config.Server.Addr = getEnvString("POKEDEX_SERVER_ADDR", config.Server.Addr)
	config.Server.ReadTimeout = getEnvDuration("POKEDEX_READ_TIMEOUT", config.Server.ReadTimeout)
	config.Server.WriteTimeout = getEnvDuration("POKEDEX_WRITE_TIMEOUT", config.Server.WriteTimeout)

	config.Logger.Level = getEnvString("POKEDEX_LOG_LEVEL", config.Logger.Level)
	config.Logger.Format = getEnvString("POKEDEX_LOG_FORMAT", config.Logger.Format)
	config.Logger.SaveToDB = getEnvBool("POKEDEX_LOG_SAVE_DB", config.Logger.SaveToDB)
	config.Logger.Retention = getEnvDuration("POKEDEX_LOG_RETENTION", config.Logger.Retention)

	config.Populator.Schedule = getEnvString("POKEDEX_POPULATE_SCHEDULE", config.Populator.Schedule)
	config.Populator.PageSize = getEnvInt("POKEDEX_POPULATE_PAGE_SIZE", config.Populator.PageSize)
	config.Populator.Pages = getEnvInt("POKEDEX_POPULATE_PAGES", config.Populator.Pages)

	return nil
}

// setDefaults sets default configuration values
func (cm *ConfigManager) setDefaults(config *Config) {
	config.Database = DatabaseConfig{
		MaxOpenConns: 10,
	}

	config.PokeAPI = PokeAPIConfig{
		BaseURL:   "https://pokeapi.co/api/v2",
		Timeout:   30 * time.Second,
		RateLimit: 10,
		RateBurst: 5,
		UserAgent: "pokedex-sync/1.0",
	}

	config.Retry = RetryConfig{
		MaxRetries: 3,
		BaseDelay:  3 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
	}

	config.Sync = SyncConfig{
		TTL:            7 * 24 * time.Hour,
		FlavorLanguage: "en",
	}

	config.Server = ServerConfig{
		Addr:         ":8080",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	config.Logger = LoggerConfig{
		Level:     "info",
		Format:    "json",
		SaveToDB:  true,
		Retention: 30 * 24 * time.Hour,
	}

	config.Populator = PopulatorConfig{
		Schedule: "@daily",
		PageSize: 50,
		Pages:    4,
	}
}

// GetDatabaseConfig returns the database configuration
func (cm *ConfigManager) GetDatabaseConfig() *DatabaseConfig {
	return &cm.config.Database
}

// GetPokeAPIConfig returns the upstream client configuration
func (cm *ConfigManager) GetPokeAPIConfig() *PokeAPIConfig {
	return &cm.config.PokeAPI
}

// GetRetryConfig returns the retry configuration
func (cm *ConfigManager) GetRetryConfig() *RetryConfig {
	return &cm.config.Retry
}

// GetSyncConfig returns the sync configuration
func (cm *ConfigManager) GetSyncConfig() *SyncConfig {
	return &cm.config.Sync
}

// GetServerConfig returns the HTTP server configuration
func (cm *ConfigManager) GetServerConfig() *ServerConfig {
	return &cm.config.Server
}

// GetLoggerConfig returns the logger configuration
func (cm *ConfigManager) GetLoggerConfig() *LoggerConfig {
	return &cm.config.Logger
}

// GetPopulatorConfig returns the populator configuration
func (cm *ConfigManager) GetPopulatorConfig() *PopulatorConfig {
	return &cm.config.Populator
}

// Source names the file format the configuration came from, or "defaults"
func (cm *ConfigManager) Source() string {
	return cm.source
}

// Validate validates the configuration values
func (cm *ConfigManager) Validate() error {
	c := cm.config

	// Validate database config
	if c.Database.URL == "" {
		return fmt.Errorf("database url cannot be empty (set DATABASE_URL)")
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("database max_open_conns must be non-negative, got %d", c.Database.MaxOpenConns)
	}

	// Validate upstream config
	if !strings.HasPrefix(c.PokeAPI.BaseURL, "http://") && !strings.HasPrefix(c.PokeAPI.BaseURL, "https://") {
		return fmt.Errorf("pokeapi base_url must be an http(s) URL, got %q", c.PokeAPI.BaseURL)
	}
	if c.PokeAPI.Timeout <= 0 {
		return fmt.Errorf("pokeapi timeout must be positive, got %v", c.PokeAPI.Timeout)
	}
	if c.PokeAPI.RateLimit < 0 {
		return fmt.Errorf("pokeapi rate_limit must be non-negative, got %f", c.PokeAPI.RateLimit)
	}
	if c.PokeAPI.RateLimit > 0 && c.PokeAPI.RateBurst <= 0 {
		return fmt.Errorf("pokeapi rate_burst must be positive when rate limiting, got %d", c.PokeAPI.RateBurst)
	}

	// Validate retry config
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry max_retries must be non-negative, got %d", c.Retry.MaxRetries)
	}
	if c.Retry.BaseDelay <= 0 {
		return fmt.Errorf("retry base_delay must be positive, got %v", c.Retry.BaseDelay)
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("retry max_delay must be at least base_delay, got %v", c.Retry.MaxDelay)
	}
	if c.Retry.Multiplier < 1.0 {
		return fmt.Errorf("retry multiplier must be at least 1.0, got %f", c.Retry.Multiplier)
	}

	// Validate sync config
	if c.Sync.TTL <= 0 {
		return fmt.Errorf("sync ttl must be positive, got %v", c.Sync.TTL)
	}
	if c.Sync.FlavorLanguage == "" {
		return fmt.Errorf("sync flavor_language cannot be empty")
	}

	// Validate server config
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr cannot be empty")
	}

	// Validate logger config
	if !isValidLogLevel(c.Logger.Level) {
		return fmt.Errorf("invalid logger level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}
	if !isValidLogFormat(c.Logger.Format) {
		return fmt.Errorf("invalid logger format: %s (must be json or console)", c.Logger.Format)
	}

	// Validate populator config
	if _, err := cron.ParseStandard(c.Populator.Schedule); err != nil {
		return fmt.Errorf("invalid populator schedule %q: %w", c.Populator.Schedule, err)
	}
	if c.Populator.PageSize <= 0 || c.Populator.Pages <= 0 {
		return fmt.Errorf("populator page_size and pages must be positive")
	}
	// upstream serves at most 100 entries per listing page
	if c.Populator.PageSize > 100 {
		return fmt.Errorf("populator page_size must not exceed 100, got %d", c.Populator.PageSize)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validation helper functions
func isValidLogLevel(level string) bool {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

func isValidLogFormat(format string) bool {
	switch strings.ToLower(format) {
	case "json", "console":
		return true
	}
	return false
}
