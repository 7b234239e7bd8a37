package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures a [MongoStore].
type MongoConfig struct {
	URI        string // default "mongodb://localhost:27017"
	Database   string // default "rundown"
	Collection string // default "documents"
}

// MongoStore keeps each document in its own MongoDB document keyed by _id.
// Set is a whole-document replace with upsert.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

type mongoDocument struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// NewMongoStore connects to MongoDB and pings the server.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "rundown"
	}
	if cfg.Collection == "" {
		cfg.Collection = "documents"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, storageErr(err, "connect to mongo")
	}
	if err := RetryWithBackoff(ctx, func() error { return mongoErr(client.Ping(ctx, nil)) }); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, storageErr(err, "ping mongo")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		now:    time.Now,
	}, nil
}

// Get retrieves the document stored under key.
func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc mongoDocument
	found := true
	err := RetryWithBackoff(ctx, func() error {
		err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			found = false
			return nil
		}
		return mongoErr(err)
	})
	if err != nil {
		return nil, false, storageErr(err, "read %s", key)
	}
	if !found {
		return nil, false, nil
	}
	return doc.Data, true, nil
}

// Set replaces the document stored under key, inserting it if missing.
func (s *MongoStore) Set(ctx context.Context, key string, data []byte) error {
	doc := mongoDocument{Key: key, Data: data, UpdatedAt: s.now().UTC()}
	err := RetryWithBackoff(ctx, func() error {
		_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
		return mongoErr(err)
	})
	return storageErr(err, "write %s", key)
}

// Delete removes the document stored under key.
func (s *MongoStore) Delete(ctx context.Context, key string) error {
	err := RetryWithBackoff(ctx, func() error {
		_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
		return mongoErr(err)
	})
	return storageErr(err, "delete %s", key)
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Backend reports [BackendMongo].
func (s *MongoStore) Backend() Backend { return BackendMongo }

func mongoErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return Retryable(err)
	}
	return err
}

var _ Store = (*MongoStore)(nil)
