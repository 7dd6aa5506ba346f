package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"paylot-backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a lead id matches no document.
var ErrNotFound = errors.New("lead not found")

// DB wraps MongoDB operations on the lead collection
type DB struct {
	client     *mongo.Client
	database   *mongo.Database
	collection *mongo.Collection
	now        func() time.Time
}

// New creates a new database connection and verifies it with a ping
func New(ctx context.Context, uri, dbName, collName string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(dbName)
	return &DB{
		client:     client,
		database:   database,
		collection: database.Collection(collName),
		now:        time.Now,
	}, nil
}

// Close closes the database connection
func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// Name returns the database name
func (db *DB) Name() string {
	return db.database.Name()
}

// Ping checks the server is reachable
func (db *DB) Ping(ctx context.Context) error {
	if err := db.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return nil
}

// CollectionNames lists the collections of the configured database
func (db *DB) CollectionNames(ctx context.Context) ([]string, error) {
	names, err := db.database.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}

// InsertLead stamps created_at, inserts the lead and returns its hex id
func (db *DB) InsertLead(ctx context.Context, lead *models.Lead) (string, error) {
	lead.ID = primitive.NewObjectID()
	lead.CreatedAt = db.now().UTC()

	_, err := db.collection.InsertOne(ctx, lead)
	if err != nil {
		return "", fmt.Errorf("failed to insert lead: %w", err)
	}
	return lead.ID.Hex(), nil
}

// FindLead finds a lead by its hex id
func (db *DB) FindLead(ctx context.Context, id string) (*models.Lead, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var lead models.Lead
	err = db.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&lead)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find lead: %w", err)
	}
	return &lead, nil
}

// ListLeads returns the newest leads first with limit (0 = no limit)
func (db *DB) ListLeads(ctx context.Context, limit int) ([]models.Lead, error) {
	opts := options.Find().SetSort(bson.D{{Key: fieldCreatedAt, Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	return db.findLeads(ctx, opts)
}

// AllLeads returns every lead, oldest first
func (db *DB) AllLeads(ctx context.Context) ([]models.Lead, error) {
	opts := options.Find().SetSort(bson.D{{Key: fieldCreatedAt, Value: 1}})
	return db.findLeads(ctx, opts)
}

func (db *DB) findLeads(ctx context.Context, opts *options.FindOptions) ([]models.Lead, error) {
	cursor, err := db.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	defer cursor.Close(ctx)

	leads := []models.Lead{}
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, fmt.Errorf("failed to decode leads: %w", err)
	}
	return leads, nil
}
