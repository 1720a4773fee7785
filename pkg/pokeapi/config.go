package pokeapi

import (
	"time"
)

// DefaultBaseURL is the public PokeAPI v2 endpoint
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// Config holds client configuration
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	RateBurst int
	UserAgent string
	Retry     RetryConfig
}

// RetryConfig holds retry-related configuration
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Base delay for exponential backoff
	MaxDelay   time.Duration // Maximum delay between retries
	Multiplier float64       // Backoff multiplier
}

// DefaultRetryConfig mirrors three attempts with a growing delay
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  3 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
	}
}

// DefaultConfig returns a configuration suitable for the public API
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   30 * time.Second,
		RateLimit: 10,
		RateBurst: 5,
		UserAgent: "pokedex-sync/1.0",
		Retry:     DefaultRetryConfig(),
	}
}
