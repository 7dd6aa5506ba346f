package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"paylot-backend/internal/dashboard"
	"paylot-backend/internal/models"
)

// GenerateLeadsCSV writes one row per lead
func GenerateLeadsCSV(leads []models.Lead, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)

	header := []string{"ID", "Created At", "Name", "Email", "Broker", "Expected Monthly Volume", "Consent", "Message"}
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, lead := range leads {
		volume := ""
		if lead.ExpectedMonthlyVolume != nil {
			volume = fmt.Sprintf("%.2f", *lead.ExpectedMonthlyVolume)
		}
		message := ""
		if lead.Message != nil {
			message = *lead.Message
		}

		row := []string{
			lead.ID.Hex(),
			lead.CreatedAt.UTC().Format(time.RFC3339),
			lead.Name,
			lead.Email,
			lead.BrokerName(),
			volume,
			strconv.FormatBool(lead.Consent),
			message,
		}
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write lead %s: %w", lead.ID.Hex(), err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// GenerateSummaryCSV writes the dashboard totals followed by the monthly series
func GenerateSummaryCSV(summary *dashboard.Summary, generated time.Time, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)

	rows := [][]string{
		{"Lead Dashboard Report"},
		{"Generated", generated.UTC().Format("2006-01-02 15:04:05")},
		{}, // Empty row
		{"SUMMARY"},
		{"Total Leads", strconv.FormatInt(summary.Totals.TotalLeads, 10)},
		{"Total Volume", fmt.Sprintf("%.2f", summary.Totals.TotalVolume)},
		{"Conversion Rate", fmt.Sprintf("%.2f%%", summary.Totals.ConversionRate)},
		{"Active Brokers", strconv.Itoa(summary.Totals.ActiveBrokers)},
		{}, // Empty row
		{"MONTHLY VOLUME"},
		{"Month", "Volume"},
	}
	for _, p := range summary.Series {
		rows = append(rows, []string{p.Month, fmt.Sprintf("%.2f", p.Volume)})
	}

	for _, row := range rows {
		if err := csvWriter.Write(row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
