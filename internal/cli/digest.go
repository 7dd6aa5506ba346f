package cli

import (
	"context"
	"errors"

	"paylot-backend/internal/jobs"

	"github.com/spf13/cobra"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Compute the dashboard and send the digest once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		if !cfg.TelegramConfigured() {
			return errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required to send the digest")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), jobs.DigestTimeout)
		defer cancel()

		notifier := newNotifier(cfg, logger)

		var digest *jobs.Digest
		if db := openDatabase(ctx, cfg, logger); db != nil {
			defer db.Close(context.Background())
			digest = jobs.NewDigest(db, notifier, logger)
		} else {
			digest = jobs.NewDigest(nil, notifier, logger)
		}

		if err := digest.Run(ctx); err != nil {
			return err
		}
		logger.Info("Lead digest sent")
		return nil
	},
}
