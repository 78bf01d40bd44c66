// Package audit keeps an append-only trail of order lifecycle actions in
// MongoDB.
package audit

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ActionCreated       = "created"
	ActionStatusChanged = "status_changed"
	ActionNoteAdded     = "note_added"
	ActionDeleted       = "deleted"
)

// Entry is one audit record.
type Entry struct {
	OrderID   string            `bson:"order_id" json:"order_id"`
	Action    string            `bson:"action" json:"action"`
	Actor     string            `bson:"actor" json:"actor"`
	Data      map[string]string `bson:"data,omitempty" json:"data,omitempty"`
	CreatedAt time.Time         `bson:"created_at" json:"created_at"`
}

type Config struct {
	URI        string
	Database   string
	Collection string
}

// MongoSink writes entries to a MongoDB collection.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect opens a MongoDB client and verifies the server is reachable.
func Connect(ctx context.Context, cfg Config) (*MongoSink, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connect to MongoDB")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping MongoDB")
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "create audit index")
	}
	return &MongoSink{client: client, collection: coll}, nil
}

func (s *MongoSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Record inserts e, stamping CreatedAt when unset.
func (s *MongoSink) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if _, err := s.collection.InsertOne(ctx, e); err != nil {
		return errors.Wrapf(err, "insert audit entry for order %s", e.OrderID)
	}
	return nil
}

// List returns up to limit entries of an order, oldest first.
func (s *MongoSink) List(ctx context.Context, orderID string, limit int64) ([]Entry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}).SetLimit(limit)
	cursor, err := s.collection.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "find audit entries of order %s", orderID)
	}
	defer func() { _ = cursor.Close(ctx) }()

	entries := []Entry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, errors.Wrap(err, "decode audit entries")
	}
	return entries, nil
}
