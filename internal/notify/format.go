package notify

import (
	"fmt"
	"strings"

	"paylot-backend/internal/dashboard"
	"paylot-backend/internal/models"
)

// barWidth is the number of cells in a series bar.
const barWidth = 10

// FormatLeadAlert renders a plain-text alert for a new lead.
func FormatLeadAlert(lead *models.Lead) string {
	var b strings.Builder
	b.WriteString("🆕 New lead\n")
	fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "Email: %s\n", lead.Email)

	broker := lead.BrokerName()
	if broker == "" {
		broker = "not specified"
	}
	fmt.Fprintf(&b, "Broker: %s\n", broker)

	if lead.ExpectedMonthlyVolume != nil {
		fmt.Fprintf(&b, "Expected volume: %.2f lots/month\n", *lead.ExpectedMonthlyVolume)
	} else {
		b.WriteString("Expected volume: unknown\n")
	}
	if lead.Message != nil {
		fmt.Fprintf(&b, "Message: %s\n", *lead.Message)
	}
	if !lead.Consent {
		b.WriteString("⚠️ No consent to be contacted\n")
	}
	return b.String()
}

// FormatDigest renders a Markdown dashboard digest.
func FormatDigest(summary *dashboard.Summary) string {
	var b strings.Builder
	b.WriteString("📊 *LEAD DASHBOARD*\n")
	b.WriteString("═══════════════════\n\n")

	if summary.Note != "" {
		fmt.Fprintf(&b, "⚠️ %s\n", summary.Note)
		return b.String()
	}

	t := summary.Totals
	b.WriteString("📈 *Totals:*\n")
	fmt.Fprintf(&b, "   • Leads: %d\n", t.TotalLeads)
	fmt.Fprintf(&b, "   • Expected volume: %.2f lots\n", t.TotalVolume)
	fmt.Fprintf(&b, "   • Conversion rate: %.2f%%\n", t.ConversionRate)
	fmt.Fprintf(&b, "   • Active brokers: %d\n\n", t.ActiveBrokers)

	peak := 0.0
	for _, p := range summary.Series {
		if p.Volume > peak {
			peak = p.Volume
		}
	}

	b.WriteString("🗓 *Last 12 months:*\n")
	for _, p := range summary.Series {
		fmt.Fprintf(&b, "`%s %s` %.2f\n", p.Month, bar(p.Volume, peak), p.Volume)
	}
	return b.String()
}

func bar(v, peak float64) string {
	bars := 0
	if peak > 0 {
		bars = int(v / peak * barWidth)
		if bars == 0 && v > 0 {
			bars = 1
		}
	}
	return strings.Repeat("█", bars) + strings.Repeat("░", barWidth-bars)
}
