package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Exchange ExchangeConfig
	Cache    CacheConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ExchangeConfig holds upstream exchange configuration
type ExchangeConfig struct {
	Default        string
	Timeout        time.Duration
	BinanceBaseURL string
	KrakenBaseURL  string
}

// CacheConfig holds ticker cache configuration
type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with defaults
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8000),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Exchange: ExchangeConfig{
			Default:        getEnvString("DEFAULT_EXCHANGE", "binance"),
			Timeout:        getEnvDuration("EXCHANGE_TIMEOUT", 10*time.Second),
			BinanceBaseURL: getEnvString("BINANCE_BASE_URL", ""),
			KrakenBaseURL:  getEnvString("KRAKEN_BASE_URL", ""),
		},
		Cache: CacheConfig{
			TTL:        getEnvDuration("CACHE_TTL", 60*time.Second),
			MaxEntries: getEnvInt("CACHE_MAX_ENTRIES", 1024),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
		},
	}, nil
}

// Validate ensures configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Exchange.Default == "" {
		return fmt.Errorf("default exchange is required")
	}

	if c.Cache.TTL < time.Second {
		return fmt.Errorf("cache TTL must be at least one second")
	}

	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache max entries must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true, "text": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// Helper functions
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
