package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Gemini    GeminiConfig
	Cache     CacheConfig
	Batch     BatchConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	Model         string        `mapstructure:"model"`
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxInputChars int           `mapstructure:"max_input_chars"`
}

// CacheConfig holds result cache configuration
type CacheConfig struct {
	MaxEntries    int     `mapstructure:"max_entries"`
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// BatchConfig holds batch dispatch configuration
type BatchConfig struct {
	MaxConcurrency int `mapstructure:"max_concurrency"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP    int     `mapstructure:"per_ip"`    // requests per minute per client IP
	ModelRPS float64 `mapstructure:"model_rps"` // requests per second to the model backend
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/originlens/")

	// Environment variable settings: gemini.api_key binds to
	// ORIGINLENS_GEMINI_API_KEY and so on
	v.SetEnvPrefix("ORIGINLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Gemini defaults. The empty api_key default registers the key so the
	// ORIGINLENS_GEMINI_API_KEY env var binds during Unmarshal.
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.timeout", "30s")
	v.SetDefault("gemini.max_input_chars", 1000)

	// Cache defaults
	v.SetDefault("cache.max_entries", 1000)
	v.SetDefault("cache.min_confidence", 0.5)

	// Batch defaults
	v.SetDefault("batch.max_concurrency", 8)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.model_rps", 5)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Gemini.APIKey == "" {
		return fmt.Errorf("Gemini API key is required (set ORIGINLENS_GEMINI_API_KEY)")
	}

	if config.Cache.MaxEntries <= 0 {
		return fmt.Errorf("cache max_entries must be positive, got: %d", config.Cache.MaxEntries)
	}

	if config.Cache.MinConfidence < 0 || config.Cache.MinConfidence > 1 {
		return fmt.Errorf("cache min_confidence must be in [0,1], got: %v", config.Cache.MinConfidence)
	}

	if config.Batch.MaxConcurrency < 0 {
		return fmt.Errorf("batch max_concurrency must not be negative, got: %d", config.Batch.MaxConcurrency)
	}

	return nil
}
