package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfiguration marks errors that must stop the process at startup
var ErrConfiguration = errors.New("configuration error")

// Config holds all configuration for archsim
type Config struct {
	Server  ServerConfig
	Model   ModelConfig
	Storage StorageConfig
	Redis   RedisConfig
	Catalog CatalogConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host          string
	Port          int
	AllowedOrigin string
	WriteTimeout  time.Duration
}

// ModelConfig holds upstream model configuration
type ModelConfig struct {
	Provider string // gemini | anthropic | openai
	APIKey   string
	Name     string
	BaseURL  string
}

// StorageConfig holds project store configuration
type StorageConfig struct {
	Driver        string // none | postgres | sqlite | mysql | redis
	DSN           string
	MigrationsDir string
	MaxOpenConns  int
	MinConns      int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// CatalogConfig holds paths of the static data files
type CatalogConfig struct {
	ComponentsPath string
	ScenariosPath  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Storage drivers
const (
	DriverNone     = "none"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverRedis    = "redis"
)

// Model providers
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

var defaultModels = map[string]string{
	ProviderGemini:    "gemini-2.5-flash",
	ProviderAnthropic: "claude-sonnet-4-20250514",
	ProviderOpenAI:    "gpt-4o-mini",
}

var providerKeys = map[string]string{
	ProviderGemini:    "GEMINI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
}

// Load loads configuration from the environment, reading ./.env first when present
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a configuration from environment variables without validating it
func FromEnv() *Config {
	provider := strings.ToLower(getEnv("MODEL_PROVIDER", ProviderGemini))

	return &Config{
		Server: ServerConfig{
			Host:          getEnv("SERVER_HOST", "0.0.0.0"),
			Port:          getEnvAsInt("SERVER_PORT", 8080),
			AllowedOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
			WriteTimeout:  getEnvAsDuration("SERVER_WRITE_TIMEOUT", 0),
		},
		Model: ModelConfig{
			Provider: provider,
			APIKey:   getEnv("MODEL_API_KEY", getEnv(providerKeys[provider], "")),
			Name:     getEnv("MODEL_NAME", defaultModels[provider]),
			BaseURL:  getEnv("MODEL_BASE_URL", ""),
		},
		Storage: StorageConfig{
			Driver:        strings.ToLower(getEnv("STORAGE_DRIVER", DriverNone)),
			DSN:           getEnv("DATABASE_DSN", ""),
			MigrationsDir: getEnv("MIGRATIONS_DIR", ""),
			MaxOpenConns:  getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 25),
			MinConns:      getEnvAsInt("DATABASE_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Catalog: CatalogConfig{
			ComponentsPath: getEnv("ARCHITECTURE_DEFS_PATH", "./catalog/architecture_defs.json"),
			ScenariosPath:  getEnv("SCENARIO_CATALOG_PATH", ""),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: invalid server port: %d", ErrConfiguration, c.Server.Port)
	}

	switch c.Model.Provider {
	case ProviderGemini, ProviderAnthropic, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: unknown model provider %q", ErrConfiguration, c.Model.Provider)
	}

	switch c.Storage.Driver {
	case DriverNone, DriverRedis:
	case DriverPostgres, DriverSQLite, DriverMySQL:
		if c.Storage.DSN == "" {
			return fmt.Errorf("%w: DATABASE_DSN is required for storage driver %s", ErrConfiguration, c.Storage.Driver)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrConfiguration, c.Storage.Driver)
	}

	if c.Catalog.ComponentsPath == "" {
		return fmt.Errorf("%w: ARCHITECTURE_DEFS_PATH is required", ErrConfiguration)
	}

	return nil
}

// SlogLevel maps the configured level name onto a slog level
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
