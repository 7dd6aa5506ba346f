package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"paylot-backend/internal/models"
)

// memQuerier answers aggregate queries over an in-memory slice of leads.
type memQuerier struct {
	leads []models.Lead

	failOn string
	calls  int
}

func (m *memQuerier) match(l models.Lead, f Filter) bool {
	if f.PositiveVolume && l.Volume() <= 0 {
		return false
	}
	if !f.Since.IsZero() && l.CreatedAt.Before(f.Since) {
		return false
	}
	return true
}

func (m *memQuerier) fail(op string) error {
	m.calls++
	if m.failOn == op {
		return errors.New("connection reset")
	}
	return nil
}

func (m *memQuerier) CountLeads(ctx context.Context, f Filter) (int64, error) {
	if err := m.fail("count"); err != nil {
		return 0, err
	}
	var n int64
	for _, l := range m.leads {
		if m.match(l, f) {
			n++
		}
	}
	return n, nil
}

func (m *memQuerier) SumVolume(ctx context.Context, f Filter) (float64, error) {
	if err := m.fail("sum"); err != nil {
		return 0, err
	}
	var total float64
	for _, l := range m.leads {
		if m.match(l, f) {
			total += l.Volume()
		}
	}
	return total, nil
}

func (m *memQuerier) DistinctBrokers(ctx context.Context) ([]string, error) {
	if err := m.fail("distinct"); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, l := range m.leads {
		b := l.BrokerName()
		if b == "" || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	return out, nil
}

func (m *memQuerier) MonthlyVolume(ctx context.Context, since time.Time) (map[string]float64, error) {
	if err := m.fail("monthly"); err != nil {
		return nil, err
	}
	out := map[string]float64{}
	for _, l := range m.leads {
		if l.CreatedAt.Before(since) {
			continue
		}
		out[MonthKey(l.CreatedAt)] += l.Volume()
	}
	return out, nil
}

func vol(v float64) *float64 { return &v }
func str(s string) *string    { return &s }

var testNow = time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)

func TestComputeUnavailable(t *testing.T) {
	summary, err := Compute(context.Background(), nil, testNow)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summary.Totals != (Totals{}) {
		t.Errorf("Expected zero totals, got %+v", summary.Totals)
	}
	if summary.Series == nil || len(summary.Series) != 0 {
		t.Errorf("Expected empty non-nil series, got %v", summary.Series)
	}
	if summary.Note == "" {
		t.Error("Expected a note when the store is unavailable")
	}

	body, err := json.Marshal(summary)
	if err != nil {
		t.Fatal(err)
	}
	expected := `{"totals":{"total_leads":0,"total_volume":0,"conversion_rate":0,"active_brokers":0},"series":[],"note":"` + UnavailableNote + `"}`
	if string(body) != expected {
		t.Errorf("Expected %s, got %s", expected, body)
	}
}

func TestComputeEmptyStore(t *testing.T) {
	summary, err := Compute(context.Background(), &memQuerier{}, testNow)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summary.Totals != (Totals{}) {
		t.Errorf("Expected zero totals, got %+v", summary.Totals)
	}
	if len(summary.Series) != SeriesMonths {
		t.Fatalf("Expected %d series entries, got %d", SeriesMonths, len(summary.Series))
	}
	for _, p := range summary.Series {
		if p.Volume != 0 {
			t.Errorf("Expected zero volume for %s, got %v", p.Month, p.Volume)
		}
	}
	if summary.Note != "" {
		t.Errorf("Expected no note, got %q", summary.Note)
	}
}

func TestComputeScenario(t *testing.T) {
	created := time.Date(2025, 1, 5, 9, 30, 0, 0, time.UTC)
	q := &memQuerier{leads: []models.Lead{
		{Name: "One", ExpectedMonthlyVolume: vol(100), Broker: str("A"), CreatedAt: created},
		{Name: "Two", Broker: str(""), CreatedAt: created.Add(time.Hour)},
		{Name: "Three", ExpectedMonthlyVolume: vol(50), Broker: str("A"), CreatedAt: created.Add(2 * time.Hour)},
	}}

	summary, err := Compute(context.Background(), q, testNow)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := Totals{TotalLeads: 3, TotalVolume: 150, ConversionRate: 66.67, ActiveBrokers: 1}
	if summary.Totals != expected {
		t.Errorf("Expected totals %+v, got %+v", expected, summary.Totals)
	}

	last := summary.Series[len(summary.Series)-1]
	if last.Month != "2025-01" || last.Volume != 150 {
		t.Errorf("Expected current month 2025-01 with 150, got %+v", last)
	}
	for _, p := range summary.Series[:len(summary.Series)-1] {
		if p.Volume != 0 {
			t.Errorf("Expected zero volume for %s, got %v", p.Month, p.Volume)
		}
	}
}

func TestComputeExcludesLeadsOutsideWindow(t *testing.T) {
	q := &memQuerier{leads: []models.Lead{
		{Name: "Old", ExpectedMonthlyVolume: vol(40), CreatedAt: time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)},
		{Name: "Edge", ExpectedMonthlyVolume: vol(10), CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "Before edge", ExpectedMonthlyVolume: vol(7), CreatedAt: time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)},
	}}

	summary, err := Compute(context.Background(), q, testNow)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summary.Totals.TotalLeads != 3 {
		t.Errorf("Expected 3 leads, got %d", summary.Totals.TotalLeads)
	}
	if summary.Totals.TotalVolume != 57 {
		t.Errorf("Expected total volume 57, got %v", summary.Totals.TotalVolume)
	}

	first := summary.Series[0]
	if first.Month != "2024-02" || first.Volume != 10 {
		t.Errorf("Expected first bucket 2024-02 with 10, got %+v", first)
	}

	var seriesTotal float64
	for _, p := range summary.Series {
		seriesTotal += p.Volume
	}
	if seriesTotal != 10 {
		t.Errorf("Expected series total 10, got %v", seriesTotal)
	}
}

func TestComputeSeriesShape(t *testing.T) {
	tests := []struct {
		name  string
		now   time.Time
		first string
		last  string
	}{
		{"Mid year", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), "2024-08", "2025-07"},
		{"December", time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), "2024-01", "2024-12"},
		{"January", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "2024-02", "2025-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := Compute(context.Background(), &memQuerier{}, tt.now)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(summary.Series) != SeriesMonths {
				t.Fatalf("Expected %d entries, got %d", SeriesMonths, len(summary.Series))
			}
			if summary.Series[0].Month != tt.first {
				t.Errorf("Expected first month %s, got %s", tt.first, summary.Series[0].Month)
			}
			if summary.Series[SeriesMonths-1].Month != tt.last {
				t.Errorf("Expected last month %s, got %s", tt.last, summary.Series[SeriesMonths-1].Month)
			}
		})
	}
}

func TestComputeIdempotent(t *testing.T) {
	q := &memQuerier{leads: []models.Lead{
		{Name: "One", ExpectedMonthlyVolume: vol(33.333), Broker: str("B"), CreatedAt: testNow.Add(-time.Hour)},
		{Name: "Two", ExpectedMonthlyVolume: vol(0), Broker: str("C"), CreatedAt: testNow.Add(-48 * time.Hour)},
	}}

	first, err := Compute(context.Background(), q, testNow)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Compute(context.Background(), q, testNow)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical summaries, got %+v and %+v", first, second)
	}
	if first.Totals.ConversionRate != 50 {
		t.Errorf("Expected conversion 50, got %v", first.Totals.ConversionRate)
	}
	if first.Totals.TotalVolume != 33.33 {
		t.Errorf("Expected rounded volume 33.33, got %v", first.Totals.TotalVolume)
	}
}

func TestComputePropagatesStoreFailure(t *testing.T) {
	for _, op := range []string{"count", "sum", "distinct", "monthly"} {
		t.Run(op, func(t *testing.T) {
			q := &memQuerier{failOn: op}
			summary, err := Compute(context.Background(), q, testNow)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !errors.Is(err, ErrAggregationFailed) {
				t.Errorf("Expected ErrAggregationFailed, got %v", err)
			}
			if summary != nil {
				t.Errorf("Expected no partial summary, got %+v", summary)
			}
		})
	}
}

type negativeQuerier struct{ memQuerier }

func (negativeQuerier) SumVolume(ctx context.Context, f Filter) (float64, error) {
	return -5, nil
}

func TestComputeRejectsNegativeAggregates(t *testing.T) {
	_, err := Compute(context.Background(), &negativeQuerier{}, testNow)
	if !errors.Is(err, ErrAggregationFailed) {
		t.Errorf("Expected ErrAggregationFailed, got %v", err)
	}
}

func TestConversionRate(t *testing.T) {
	tests := []struct {
		name       string
		withVolume int64
		total      int64
		expected   float64
	}{
		{"No leads", 5, 0, 0},
		{"None with volume", 0, 4, 0},
		{"All with volume", 4, 4, 100},
		{"One third", 1, 3, 33.33},
		{"Stale numerator is capped", 6, 5, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := conversionRate(tt.withVolume, tt.total)
			if got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
			if got < 0 || got > 100 {
				t.Errorf("Expected rate within [0, 100], got %v", got)
			}
		})
	}
}

func TestCountBrokers(t *testing.T) {
	got := countBrokers([]string{"A", "", "B", "A", "  ", "b"})
	if got != 3 {
		t.Errorf("Expected 3 distinct brokers, got %d", got)
	}
}
