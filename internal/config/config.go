package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"ideaboard/internal/logger"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string `yaml:"addr"`
	DatabaseURL   string `yaml:"database_url"`
	SessionName   string `yaml:"session_name"`
	SessionSecret string `yaml:"session_secret"`
	// RedisURL enables the shared detail cache; empty keeps an in-process LRU.
	RedisURL        string `yaml:"redis_url"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
	GinMode         string `yaml:"gin_mode"`
	LLM             LLM    `yaml:"llm"`
}

type LLM struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func (l LLM) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

func Default() Config {
	return Config{
		Addr:            ":8080",
		DatabaseURL:     "host=localhost user=postgres password=postgres dbname=ideaboard port=5432 sslmode=disable",
		SessionName:     "ideaboard_session",
		SessionSecret:   "secret_key_change_me",
		CacheTTLSeconds: 60,
		LogLevel:        "info",
		LogFormat:       "json",
		GinMode:         "release",
		LLM: LLM{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 60,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order of precedence (environment wins). A .env file in
// the working directory is loaded first when present.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.L.Debug("no .env file found, using environment only")
	}

	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	cfg.Addr = getenv("ADDR", cfg.Addr)
	cfg.DatabaseURL = getenv("DATABASE_URL", cfg.DatabaseURL)
	cfg.SessionName = getenv("SESSION_NAME", cfg.SessionName)
	cfg.SessionSecret = getenv("SESSION_SECRET", cfg.SessionSecret)
	cfg.RedisURL = getenv("REDIS_URL", cfg.RedisURL)
	cfg.CacheTTLSeconds = getenvInt("CACHE_TTL_SECONDS", cfg.CacheTTLSeconds)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenv("LOG_FORMAT", cfg.LogFormat)
	cfg.GinMode = getenv("GIN_MODE", cfg.GinMode)
	cfg.LLM.BaseURL = getenv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getenv("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getenv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.TimeoutSeconds = getenvInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)

	return cfg, nil
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
