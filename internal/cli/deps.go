package cli

import (
	"context"
	"fmt"
	"time"

	"paylot-backend/internal/config"
	"paylot-backend/internal/database"
	"paylot-backend/internal/logging"
	"paylot-backend/internal/notify"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const connectTimeout = 10 * time.Second

func setup() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(cfg.LogLevel)
	if !cfg.EnvFileLoaded {
		logger.Debug("No .env file found, using environment only")
	}
	return cfg, logger, nil
}

// openDatabase connects to MongoDB. It returns nil without an error when the
// database is not configured or unreachable so the service can run degraded.
func openDatabase(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *database.DB {
	if !cfg.DatabaseConfigured() {
		logger.Warn("DATABASE_URL or DATABASE_NAME not set, running without a database")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DatabaseName, cfg.LeadCollection)
	if err != nil {
		logger.WithError(err).Warn("MongoDB unavailable, running without a database")
		return nil
	}

	logger.WithFields(logrus.Fields{
		"database":   cfg.DatabaseName,
		"collection": cfg.LeadCollection,
	}).Info("Connected to MongoDB")
	return db
}

func newNotifier(cfg *config.Config, logger *logrus.Logger) notify.Notifier {
	if !cfg.TelegramConfigured() {
		logger.Info("Telegram not configured, notifications disabled")
		return notify.Nop{}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		logger.WithError(err).Warn("Failed to create Telegram bot, notifications disabled")
		return notify.Nop{}
	}

	bot.Debug = false
	logger.WithField("bot", bot.Self.UserName).Info("Telegram notifications enabled")
	return notify.NewTelegram(bot, cfg.TelegramChatID)
}
