package cache

import (
	"context"
	"time"

	"callpulse/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// document is one cached analysis result, one record per composite key.
type document struct {
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store is a MongoDB-backed analysis cache. A Store built without a
// connection string, or one whose connection failed, degrades to an
// always-miss no-op cache; operation failures are logged and reported as
// misses so analysis still reaches the provider. The mongo driver is safe
// for concurrent use, so Store holds no client-side locks.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewStore connects to MongoDB and returns a Store bound to the given
// database and collection. An empty uri yields a no-op Store.
func NewStore(ctx context.Context, uri, databaseName, collectionName string) *Store {
	if uri == "" {
		logger.Warn(ctx, "No MongoDB URI configured - analysis cache disabled")
		return &Store{}
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to connect to MongoDB - analysis cache disabled", err)
		return &Store{}
	}

	logger.Info(ctx, "Connected to MongoDB", "database", databaseName, "collection", collectionName)
	return &Store{
		client:     client,
		collection: client.Database(databaseName).Collection(collectionName),
	}
}

// Enabled reports whether the store has a live collection behind it.
func (s *Store) Enabled() bool {
	return s.collection != nil
}

// Get looks up a cached analysis result by composite key.
func (s *Store) Get(ctx context.Context, key string) (string, bool) {
	if s.collection == nil {
		return "", false
	}

	var doc document
	err := s.collection.FindOne(ctx, bson.M{"key": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		logger.Debug(ctx, "Cache miss", "key", key)
		return "", false
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Cache lookup failed, treating as miss", err, "key", key)
		return "", false
	}

	logger.Info(ctx, "Cache hit", "key", key)
	return doc.Value, true
}

// Put upserts an analysis result under its composite key. Concurrent or
// repeated writes for the same key replace rather than accumulate.
func (s *Store) Put(ctx context.Context, key, value string) bool {
	if s.collection == nil {
		return false
	}

	update := bson.M{"$set": document{Key: key, Value: value, UpdatedAt: time.Now().UTC()}}
	_, err := s.collection.UpdateOne(ctx, bson.M{"key": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		logger.ErrorWithErr(ctx, "Cache write failed", err, "key", key)
		return false
	}

	logger.Info(ctx, "Cached analysis result", "key", key)
	return true
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
