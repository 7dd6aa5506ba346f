package database

import (
	"context"
	"fmt"
	"time"

	"paylot-backend/internal/dashboard"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	fieldBroker    = "broker"
	fieldVolume    = "expected_monthly_volume"
	fieldCreatedAt = "created_at"
)

var _ dashboard.Querier = (*DB)(nil)

// filterDocument translates a dashboard filter into a MongoDB query document.
func filterDocument(f dashboard.Filter) bson.M {
	doc := bson.M{}
	if f.PositiveVolume {
		doc[fieldVolume] = bson.M{"$gt": 0}
	}
	if !f.Since.IsZero() {
		doc[fieldCreatedAt] = bson.M{"$gte": f.Since.UTC()}
	}
	return doc
}

// volumeOrZero treats a missing or null volume as 0.
func volumeOrZero() bson.M {
	return bson.M{"$ifNull": bson.A{"$" + fieldVolume, 0}}
}

func sumVolumePipeline(f dashboard.Filter) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: filterDocument(f)}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": volumeOrZero()},
		}}},
	}
}

func monthlyVolumePipeline(since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: filterDocument(dashboard.Filter{Since: since})}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format":   "%Y-%m",
				"date":     "$" + fieldCreatedAt,
				"timezone": "UTC",
			}},
			"volume": bson.M{"$sum": volumeOrZero()},
		}}},
	}
}

func brokerFilter() bson.M {
	return bson.M{fieldBroker: bson.M{"$nin": bson.A{nil, ""}}}
}

// CountLeads counts leads matching the filter
func (db *DB) CountLeads(ctx context.Context, f dashboard.Filter) (int64, error) {
	n, err := db.collection.CountDocuments(ctx, filterDocument(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return n, nil
}

// SumVolume sums expected monthly volume over leads matching the filter
func (db *DB) SumVolume(ctx context.Context, f dashboard.Filter) (float64, error) {
	cursor, err := db.collection.Aggregate(ctx, sumVolumePipeline(f))
	if err != nil {
		return 0, fmt.Errorf("failed to sum volume: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode volume sum: %w", err)
	}
	if len(rows) == 0 {
		// $group emits nothing when no document matched.
		return 0, nil
	}
	return rows[0].Total, nil
}

// DistinctBrokers lists distinct non-empty broker names
func (db *DB) DistinctBrokers(ctx context.Context) ([]string, error) {
	values, err := db.collection.Distinct(ctx, fieldBroker, brokerFilter())
	if err != nil {
		return nil, fmt.Errorf("failed to list brokers: %w", err)
	}

	brokers := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("failed to decode broker: unexpected type %T", v)
		}
		if s != "" {
			brokers = append(brokers, s)
		}
	}
	return brokers, nil
}

// MonthlyVolume sums volume per UTC month of created_at since the given instant
func (db *DB) MonthlyVolume(ctx context.Context, since time.Time) (map[string]float64, error) {
	cursor, err := db.collection.Aggregate(ctx, monthlyVolumePipeline(since))
	if err != nil {
		return nil, fmt.Errorf("failed to group monthly volume: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Month  string  `bson:"_id"`
		Volume float64 `bson:"volume"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode monthly volume: %w", err)
	}

	buckets := make(map[string]float64, len(rows))
	for _, r := range rows {
		buckets[r.Month] = r.Volume
	}
	return buckets, nil
}
