package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	DefaultPort           = "8000"
	DefaultLeadCollection = "lead"
	DefaultDigestSchedule = "0 9 1 * *"
	DefaultLogLevel       = "info"
	DefaultLeadRateLimit  = 10
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	DatabaseURL    string
	DatabaseName   string
	LeadCollection string

	TelegramToken  string
	TelegramChatID int64
	DigestSchedule string

	LogLevel string
	// LeadRateLimit is the number of lead submissions allowed per client IP per minute.
	LeadRateLimit int

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool
}

// Load loads configuration from an optional .env file and environment variables.
// A missing database configuration is not an error: the service runs without a store.
func Load() (*Config, error) {
	loaded := godotenv.Load() == nil

	cfg := &Config{
		Port:           getEnv("PORT", DefaultPort),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabaseName:   os.Getenv("DATABASE_NAME"),
		LeadCollection: getEnv("LEAD_COLLECTION", DefaultLeadCollection),
		TelegramToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		DigestSchedule: getEnv("DIGEST_SCHEDULE", DefaultDigestSchedule),
		LogLevel:       getEnv("LOG_LEVEL", DefaultLogLevel),
		LeadRateLimit:  DefaultLeadRateLimit,
		EnvFileLoaded:  loaded,
	}

	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = chatID
	}

	if limitStr := os.Getenv("LEAD_RATE_LIMIT"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("invalid LEAD_RATE_LIMIT %q", limitStr)
		}
		cfg.LeadRateLimit = limit
	}

	if _, err := cron.ParseStandard(cfg.DigestSchedule); err != nil {
		return nil, fmt.Errorf("invalid DIGEST_SCHEDULE %q: %w", cfg.DigestSchedule, err)
	}

	return cfg, nil
}

// DatabaseConfigured reports whether both the connection URL and database name are set.
func (c *Config) DatabaseConfigured() bool {
	return c.DatabaseURL != "" && c.DatabaseName != ""
}

// TelegramConfigured reports whether lead alerts and digests can be delivered.
func (c *Config) TelegramConfigured() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
