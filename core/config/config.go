package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds all application configuration in a structured way.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Telegram  TelegramConfig
	Market    MarketConfig
	Dex       DexConfig
	AI        AIConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Version            string
	Port               string
	Debug              bool
	Environment        string
	BasicAuth          []string
	BasePath           string
	CorsAllowedOrigins []string
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string // File path for SQLite, DB Name for Postgres
}

type TelegramConfig struct {
	BotToken string
	Debug    bool
}

type MarketConfig struct {
	BaseURL string
	APIKey  string
}

type DexConfig struct {
	BaseURL string
}

type AIConfig struct {
	OpenAIKey       string
	OpenAIModel     string
	GeminiKey       string
	GeminiModel     string
	DefaultProvider string // openai | gemini | auto
}

type RateLimitConfig struct {
	Enabled bool
}

// Global provides access to the loaded configuration globally.
var Global *Config

// LoadConfig loads configuration from Environment Variables or defaults.
func LoadConfig() (*Config, error) {
	baseDir := getEnv("APP_BASE_DIR", "storages")

	debug := false
	if v := os.Getenv("APP_DEBUG"); v == "true" || v == "1" || v == "on" {
		debug = true
	}

	var basicAuth []string
	if v := os.Getenv("APP_BASIC_AUTH"); v != "" {
		basicAuth = strings.Split(v, ",")
	}

	corsOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	if v := os.Getenv("APP_CORS_ALLOWED_ORIGINS"); v != "" {
		corsOrigins = strings.Split(v, ",")
	}

	cfg := &Config{
		App: AppConfig{
			Version:            "v1.0.0",
			Port:               getEnv("APP_PORT", "3000"),
			Debug:              debug,
			Environment:        getEnv("APP_ENV", "development"),
			BasicAuth:          basicAuth,
			BasePath:           getEnv("APP_BASE_PATH", ""),
			CorsAllowedOrigins: corsOrigins,
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite"),
			Name:     getEnv("DB_NAME", filepath.Join(baseDir, "app.db")),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			Debug:    getEnvBool("TELEGRAM_DEBUG", false),
		},
		Market: MarketConfig{
			BaseURL: getEnv("COINGECKO_BASE_URL", ""),
			APIKey:  getEnv("COINGECKO_API_KEY", ""),
		},
		Dex: DexConfig{
			BaseURL: getEnv("DEXSCREENER_BASE_URL", ""),
		},
		AI: AIConfig{
			OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:     getEnv("OPENAI_MODEL", ""),
			GeminiKey:       getEnv("GEMINI_API_KEY", ""),
			GeminiModel:     getEnv("GEMINI_MODEL", ""),
			DefaultProvider: getEnv("AI_DEFAULT_PROVIDER", "auto"),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		},
	}

	Global = cfg
	return cfg, nil
}
