// Package notify delivers lead alerts and dashboard digests to a chat.
package notify

import (
	"context"

	"paylot-backend/internal/dashboard"
	"paylot-backend/internal/models"
)

// Notifier sends lead alerts and periodic digests.
type Notifier interface {
	LeadCreated(ctx context.Context, lead *models.Lead) error
	Digest(ctx context.Context, summary *dashboard.Summary, report []byte) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) LeadCreated(ctx context.Context, lead *models.Lead) error { return nil }

func (Nop) Digest(ctx context.Context, summary *dashboard.Summary, report []byte) error {
	return nil
}
