package catalog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Defaults for [MongoSource].
const (
	DefaultMongoDatabase   = "skillgraph"
	DefaultMongoCollection = "catalog"
)

// MongoSource reads catalog entries from a MongoDB collection. Documents use
// the bson field names of [Entry].
type MongoSource struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoSource connects to uri. Empty database or collection names select
// the defaults.
func NewMongoSource(ctx context.Context, uri, database, collection string) (*MongoSource, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &MongoSource{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Load reads every entry, ordered by id.
func (s *MongoSource) Load(ctx context.Context) (*Memory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	cur, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find catalog entries: %w", err)
	}
	var entries []Entry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog entries: %w", err)
	}
	if err := check(entries); err != nil {
		return nil, err
	}
	return NewMemory(entries...), nil
}

// Close disconnects the client.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
