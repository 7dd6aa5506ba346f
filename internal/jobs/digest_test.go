package jobs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"paylot-backend/internal/dashboard"
	"paylot-backend/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type recordingNotifier struct {
	summary *dashboard.Summary
	report  []byte
	calls   int
	err     error
}

func (r *recordingNotifier) LeadCreated(ctx context.Context, lead *models.Lead) error { return nil }

func (r *recordingNotifier) Digest(ctx context.Context, summary *dashboard.Summary, report []byte) error {
	r.calls++
	r.summary = summary
	r.report = report
	return r.err
}

type staticQuerier struct {
	count int64
	err   error
}

func (s staticQuerier) CountLeads(ctx context.Context, f dashboard.Filter) (int64, error) {
	return s.count, s.err
}

func (s staticQuerier) SumVolume(ctx context.Context, f dashboard.Filter) (float64, error) {
	return 0, nil
}

func (s staticQuerier) DistinctBrokers(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (s staticQuerier) MonthlyVolume(ctx context.Context, since time.Time) (map[string]float64, error) {
	return map[string]float64{}, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestDigestRun(t *testing.T) {
	notifier := &recordingNotifier{}
	job := NewDigest(staticQuerier{count: 4}, notifier, quietLogger())
	job.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if notifier.calls != 1 {
		t.Fatalf("Expected 1 digest, got %d", notifier.calls)
	}
	if notifier.summary.Totals.TotalLeads != 4 {
		t.Errorf("Expected 4 leads, got %d", notifier.summary.Totals.TotalLeads)
	}
	if !strings.Contains(string(notifier.report), "2025-03,0.00") {
		t.Errorf("Expected CSV report with current month, got %q", notifier.report)
	}
}

func TestDigestRunWithoutStore(t *testing.T) {
	notifier := &recordingNotifier{}
	job := NewDigest(nil, notifier, quietLogger())

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if notifier.summary.Note == "" {
		t.Error("Expected unavailable note in digest")
	}
	if notifier.report != nil {
		t.Error("Expected no CSV report without a store")
	}
}

func TestDigestRunErrors(t *testing.T) {
	t.Run("Aggregation failure", func(t *testing.T) {
		notifier := &recordingNotifier{}
		job := NewDigest(staticQuerier{err: errors.New("timeout")}, notifier, quietLogger())

		err := job.Run(context.Background())
		if !errors.Is(err, dashboard.ErrAggregationFailed) {
			t.Errorf("Expected ErrAggregationFailed, got %v", err)
		}
		if notifier.calls != 0 {
			t.Errorf("Expected no digest on failure, got %d", notifier.calls)
		}
	})

	t.Run("Delivery failure", func(t *testing.T) {
		notifier := &recordingNotifier{err: errors.New("forbidden")}
		job := NewDigest(staticQuerier{}, notifier, quietLogger())

		if err := job.Run(context.Background()); err == nil {
			t.Error("Expected delivery error")
		}
	})
}

func TestDigestSchedule(t *testing.T) {
	job := NewDigest(nil, &recordingNotifier{}, quietLogger())
	c := cron.New(cron.WithLocation(time.UTC))

	id, err := job.Schedule(c, "0 9 1 * *")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	entry := c.Entry(id)
	next := entry.Schedule.Next(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	if want := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC); !next.Equal(want) {
		t.Errorf("Expected next run %v, got %v", want, next)
	}

	if _, err := job.Schedule(c, "not a schedule"); err == nil {
		t.Error("Expected error for invalid schedule")
	}
}
