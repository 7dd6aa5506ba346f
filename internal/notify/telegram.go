package notify

import (
	"context"
	"fmt"
	"time"

	"paylot-backend/internal/dashboard"
	"paylot-backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of *tgbotapi.BotAPI used for delivery.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts notifications to a single chat.
type Telegram struct {
	bot    Sender
	chatID int64
	now    func() time.Time
}

// NewTelegram creates a notifier for chatID using bot.
func NewTelegram(bot Sender, chatID int64) *Telegram {
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		now:    time.Now,
	}
}

// LeadCreated sends a plain-text alert so user-supplied text needs no escaping.
func (t *Telegram) LeadCreated(ctx context.Context, lead *models.Lead) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatLeadAlert(lead))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send lead alert: %w", err)
	}
	return nil
}

// Digest sends the dashboard text and, when report is non-empty, the CSV as a document.
func (t *Telegram) Digest(ctx context.Context, summary *dashboard.Summary, report []byte) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatDigest(summary))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}

	if len(report) == 0 {
		return nil
	}

	month := dashboard.MonthKey(t.now())
	document := tgbotapi.NewDocument(t.chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("leads_series_%s.csv", month),
		Bytes: report,
	})
	document.Caption = fmt.Sprintf("📊 Lead dashboard for %s\n💾 %d leads, %.2f lots total",
		month, summary.Totals.TotalLeads, summary.Totals.TotalVolume)

	if _, err := t.bot.Send(document); err != nil {
		return fmt.Errorf("failed to send digest report: %w", err)
	}
	return nil
}
