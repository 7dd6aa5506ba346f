// Package dashboard computes the lead dashboard summary from a read-only lead store.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SeriesMonths is the length of the trailing monthly volume series.
const SeriesMonths = 12

// UnavailableNote is reported when no store is configured.
const UnavailableNote = "Database not configured or unreachable; showing default values."

// ErrAggregationFailed wraps every store failure during Compute.
var ErrAggregationFailed = errors.New("aggregation failed")

// Filter narrows the leads an aggregate query runs over. The zero value matches all leads.
type Filter struct {
	// PositiveVolume keeps only leads with expected_monthly_volume > 0.
	PositiveVolume bool
	// Since keeps only leads created at or after it, when non-zero.
	Since time.Time
}

// Querier is the read-only query capability the aggregator needs.
// Missing or null volumes count as zero in every sum.
type Querier interface {
	CountLeads(ctx context.Context, filter Filter) (int64, error)
	SumVolume(ctx context.Context, filter Filter) (float64, error)
	DistinctBrokers(ctx context.Context) ([]string, error)
	// MonthlyVolume sums volume per UTC "YYYY-MM" of created_at for leads created at or after since.
	MonthlyVolume(ctx context.Context, since time.Time) (map[string]float64, error)
}

// Totals holds the headline dashboard numbers.
type Totals struct {
	TotalLeads     int64   `json:"total_leads"`
	TotalVolume    float64 `json:"total_volume"`
	ConversionRate float64 `json:"conversion_rate"`
	ActiveBrokers  int     `json:"active_brokers"`
}

// SeriesPoint is one month of the trailing volume series.
type SeriesPoint struct {
	Month  string  `json:"month"`
	Volume float64 `json:"volume"`
}

// Summary is the dashboard payload. Note is set only when the store is unavailable.
type Summary struct {
	Totals Totals        `json:"totals"`
	Series []SeriesPoint `json:"series"`
	Note   string        `json:"note,omitempty"`
}

// Unavailable returns the zero-valued summary served when there is no store.
func Unavailable() *Summary {
	return &Summary{
		Series: []SeriesPoint{},
		Note:   UnavailableNote,
	}
}

// Compute builds the summary from q as of now. A nil q yields Unavailable.
// Any store failure aborts the whole computation.
func Compute(ctx context.Context, q Querier, now time.Time) (*Summary, error) {
	if q == nil {
		return Unavailable(), nil
	}

	total, err := q.CountLeads(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("%w: counting leads: %w", ErrAggregationFailed, err)
	}

	volume, err := q.SumVolume(ctx, Filter{})
	if err != nil {
		return nil, fmt.Errorf("%w: summing volume: %w", ErrAggregationFailed, err)
	}

	brokers, err := q.DistinctBrokers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing brokers: %w", ErrAggregationFailed, err)
	}

	withVolume, err := q.CountLeads(ctx, Filter{PositiveVolume: true})
	if err != nil {
		return nil, fmt.Errorf("%w: counting leads with volume: %w", ErrAggregationFailed, err)
	}

	since := AddMonths(now, -(SeriesMonths - 1))
	buckets, err := q.MonthlyVolume(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("%w: grouping monthly volume: %w", ErrAggregationFailed, err)
	}

	if total < 0 || withVolume < 0 || volume < 0 {
		return nil, fmt.Errorf("%w: negative aggregate from store", ErrAggregationFailed)
	}

	series := make([]SeriesPoint, 0, SeriesMonths)
	for _, month := range TrailingMonths(now, SeriesMonths) {
		v := buckets[month]
		if v < 0 {
			return nil, fmt.Errorf("%w: negative volume for %s", ErrAggregationFailed, month)
		}
		series = append(series, SeriesPoint{Month: month, Volume: Round2(v)})
	}

	return &Summary{
		Totals: Totals{
			TotalLeads:     total,
			TotalVolume:    Round2(volume),
			ConversionRate: conversionRate(withVolume, total),
			ActiveBrokers:  countBrokers(brokers),
		},
		Series: series,
	}, nil
}

// conversionRate is the share of leads that declared a positive volume, in percent.
// Reads are not atomic, so a numerator ahead of the total is capped at 100.
func conversionRate(withVolume, total int64) float64 {
	if total <= 0 {
		return 0
	}
	if withVolume > total {
		withVolume = total
	}
	rate := decimal.NewFromInt(withVolume).
		Div(decimal.NewFromInt(total)).
		Mul(decimal.NewFromInt(100))
	return rate.Round(2).InexactFloat64()
}

func countBrokers(brokers []string) int {
	seen := make(map[string]struct{}, len(brokers))
	for _, b := range brokers {
		if strings.TrimSpace(b) == "" {
			continue
		}
		seen[b] = struct{}{}
	}
	return len(seen)
}

// Round2 rounds v half away from zero to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
