// Package jobs holds scheduled background work.
package jobs

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"paylot-backend/internal/dashboard"
	"paylot-backend/internal/notify"
	"paylot-backend/internal/utils"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DigestTimeout bounds one digest run.
const DigestTimeout = 30 * time.Second

// Digest computes the dashboard and delivers it through a notifier.
type Digest struct {
	store    dashboard.Querier
	notifier notify.Notifier
	logger   *logrus.Logger
	now      func() time.Time
}

// NewDigest creates a digest job. store may be nil when no database is configured.
func NewDigest(store dashboard.Querier, notifier notify.Notifier, logger *logrus.Logger) *Digest {
	return &Digest{
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Run performs one digest.
func (d *Digest) Run(ctx context.Context) error {
	now := d.now()
	summary, err := dashboard.Compute(ctx, d.store, now)
	if err != nil {
		return err
	}

	var report []byte
	if summary.Note == "" {
		var buffer bytes.Buffer
		if err := utils.GenerateSummaryCSV(summary, now, &buffer); err != nil {
			// The text digest is still worth sending.
			d.logger.WithError(err).Warn("Failed to generate digest CSV")
		} else {
			report = buffer.Bytes()
		}
	}

	if err := d.notifier.Digest(ctx, summary, report); err != nil {
		return fmt.Errorf("failed to deliver digest: %w", err)
	}
	return nil
}

// Schedule registers the digest on c using a standard cron spec.
func (d *Digest) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		d.logger.Info("Executing lead digest...")
		ctx, cancel := context.WithTimeout(context.Background(), DigestTimeout)
		defer cancel()

		if err := d.Run(ctx); err != nil {
			d.logger.WithError(err).Error("Lead digest failed")
			return
		}
		d.logger.Info("Lead digest sent")
	})
}
