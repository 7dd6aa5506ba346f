package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paylot-backend/internal/config"
	"paylot-backend/internal/handlers"
	"paylot-backend/internal/jobs"
	"paylot-backend/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the digest schedule",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Keep store a nil interface when there is no database.
	var store handlers.Store
	db := openDatabase(ctx, cfg, logger)
	if db != nil {
		store = db
		defer db.Close(context.Background())
	}

	notifier := newNotifier(cfg, logger)
	h := handlers.New(store, notifier, cfg, logger)

	var digest *jobs.Digest
	if db != nil {
		digest = jobs.NewDigest(db, notifier, logger)
	} else {
		digest = jobs.NewDigest(nil, notifier, logger)
	}

	c := cron.New(cron.WithLocation(time.UTC))
	if err := scheduleDigest(c, cfg, digest, logger); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	srv := &http.Server{
		Addr: net.JoinHostPort("", cfg.Port),
		Handler: server.NewRouter(&server.Config{
			Handler:       h,
			Logger:        logger,
			LeadRateLimit: cfg.LeadRateLimit,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("PAYLOT API server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-stop:
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

// scheduleDigest registers the digest only when there is a chat to deliver it to.
func scheduleDigest(c *cron.Cron, cfg *config.Config, digest *jobs.Digest, logger *logrus.Logger) error {
	if !cfg.TelegramConfigured() {
		logger.Info("Telegram not configured, digest schedule disabled")
		return nil
	}

	if _, err := digest.Schedule(c, cfg.DigestSchedule); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	logger.WithField("schedule", cfg.DigestSchedule).Info("Lead digest scheduled")
	return nil
}
