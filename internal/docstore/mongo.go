// Package docstore implements the document store backends for the document benchmark.
package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/dbsmedya/encbench/internal/config"
	"github.com/dbsmedya/encbench/internal/source"
	"github.com/dbsmedya/encbench/internal/types"
)

// MongoStore is one MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
	name       string
}

// Connect opens a client and verifies the server is reachable.
func Connect(ctx context.Context, cfg *config.NoSQLConfig) (*MongoStore, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.TimeoutSeconds > 0 {
		opts.SetServerSelectionTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URI, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping %s: %w", cfg.URI, err)
	}

	db := client.Database(cfg.Database)
	return &MongoStore{
		client:     client,
		db:         db,
		collection: db.Collection(cfg.Collection),
		name:       cfg.Collection,
	}, nil
}

// Reset drops the collection.
func (m *MongoStore) Reset(ctx context.Context) error {
	if err := m.collection.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop %s: %w", m.name, err)
	}
	return nil
}

// InsertMany inserts the documents in one call.
func (m *MongoStore) InsertMany(ctx context.Context, docs []source.PatientLog) error {
	if len(docs) == 0 {
		return nil
	}
	batch := make([]interface{}, len(docs))
	for i := range docs {
		batch[i] = docs[i]
	}
	if _, err := m.collection.InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", m.name, err)
	}
	return nil
}

// FindAll reads every document of the collection.
func (m *MongoStore) FindAll(ctx context.Context) ([]source.PatientLog, error) {
	cursor, err := m.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", m.name, err)
	}
	var docs []source.PatientLog
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", m.name, err)
	}
	return docs, nil
}

// LogicalSize returns collStats.size, the uncompressed data size rather than
// the allocated storage size.
func (m *MongoStore) LogicalSize(ctx context.Context) (int64, error) {
	var stats bson.M
	cmd := bson.D{{Key: "collStats", Value: m.name}}
	if err := m.db.RunCommand(ctx, cmd).Decode(&stats); err != nil {
		return 0, fmt.Errorf("collStats %s: %w", m.name, err)
	}
	return SizeFromStats(stats)
}

// SizeFromStats extracts the size field from a collStats reply. The server
// encodes it as int32, int64, or double depending on magnitude.
func SizeFromStats(stats bson.M) (int64, error) {
	raw, ok := stats["size"]
	if !ok {
		return 0, fmt.Errorf("collStats reply has no size field")
	}
	size, ok := types.ToInt64(raw)
	if !ok {
		return 0, fmt.Errorf("collStats size has unexpected type %T", raw)
	}
	return size, nil
}

// Close disconnects the client.
func (m *MongoStore) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
