package store

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
)

const (
	// DefaultDatabase is the database used when none is configured.
	DefaultDatabase = "mosaic"
	// DefaultCollection holds the chart records.
	DefaultCollection = "charts"

	updateAttempts = 5
)

// MongoOptions configures [NewMongoStore].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoStore keeps records in a MongoDB collection. Updates use the record
// version as an optimistic lock.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo uri is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI).SetConnectTimeout(opts.Timeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongo")
	}
	pingCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}

	s := NewMongoStoreFromClient(client, opts.Database, opts.Collection)
	s.owned = true
	return s, nil
}

// NewMongoStoreFromClient uses an existing client. Close does not disconnect
// a client it did not create.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(collection)}
}

func (s *MongoStore) Create(ctx context.Context, def mosaic.Definition) (Record, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	rec := Record{ID: NewID(), Definition: def, Version: 1, CreatedAt: now, UpdatedAt: now}
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeInternal, err, "insert chart")
	}
	return rec, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, notFound(id)
	}
	if err != nil {
		return Record{}, errors.Wrap(errors.ErrCodeInternal, err, "find chart %s", id)
	}
	return rec, nil
}

func (s *MongoStore) Put(ctx context.Context, id string, def mosaic.Definition) (Record, error) {
	return s.Update(ctx, id, func(d *mosaic.Definition) error {
		*d = def
		return nil
	})
}

// Update reads, modifies and conditionally replaces the record, retrying
// when another writer got there first.
func (s *MongoStore) Update(ctx context.Context, id string, fn func(*mosaic.Definition) error) (Record, error) {
	for range updateAttempts {
		rec, err := s.Get(ctx, id)
		if err != nil {
			return Record{}, err
		}
		if err := fn(&rec.Definition); err != nil {
			return Record{}, err
		}

		prev := rec.Version
		rec.Version++
		rec.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

		res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id, "version": prev}, rec)
		if err != nil {
			return Record{}, errors.Wrap(errors.ErrCodeInternal, err, "replace chart %s", id)
		}
		if res.MatchedCount == 1 {
			return rec, nil
		}
	}
	return Record{}, ErrConflict
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete chart %s", id)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"_id": 1, "title": "$definition.title", "updated_at": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list charts")
	}
	out := []Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode charts")
	}
	return out, nil
}

// Close disconnects the client if the store created it.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
