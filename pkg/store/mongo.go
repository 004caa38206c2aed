package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/procsheet/pkg/cache"
	"github.com/matzehuels/procsheet/pkg/diagram"
)

// Defaults for MongoStore.
const (
	DefaultDatabase   = "procsheet"
	DefaultCollection = "diagrams"
)

// mongoRecord is the stored document: the diagram inline plus bookkeeping.
type mongoRecord struct {
	diagram.Diagram `bson:",inline"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

// MongoStore keeps records in a MongoDB collection, one document per
// diagram with the record id as _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoStore connects to uri and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, classify("ping mongo", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
		now:    time.Now,
	}, nil
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context, f Filter) ([]Summary, error) {
	filter := bson.M{}
	if f.Project != "" {
		filter["project"] = f.Project
	}
	cur, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, classify("find diagrams", err)
	}
	var records []mongoRecord
	if err := cur.All(ctx, &records); err != nil {
		return nil, classify("decode diagrams", err)
	}

	out := make([]Summary, 0, len(records))
	for i := range records {
		out = append(out, summarize(&records[i].Diagram, records[i].UpdatedAt))
	}
	sort.Slice(out, func(i, j int) bool { return lessSummary(out[i], out[j]) })
	return out, nil
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, id string) (*diagram.Diagram, error) {
	var rec mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, classify("get diagram", err)
	}
	return &rec.Diagram, nil
}

// Put implements Store.
func (s *MongoStore) Put(ctx context.Context, d *diagram.Diagram) (*diagram.Diagram, error) {
	rec := mongoRecord{Diagram: *d.Clone(), UpdatedAt: s.now().UTC()}
	if rec.ID == "" {
		rec.ID = newID()
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, classify("put diagram", err)
	}
	return rec.Diagram.Clone(), nil
}

// Delete implements Store.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify("delete diagram", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// classify marks network and timeout failures as retryable.
func classify(op string, err error) error {
	err = fmt.Errorf("%s: %w", op, err)
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return cache.Retryable(err)
	}
	return err
}

var _ Store = (*MongoStore)(nil)
