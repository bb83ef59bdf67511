package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoApplyAttempts bounds the optimistic-concurrency retry loop in Apply.
const mongoApplyAttempts = 5

type mongoDocument struct {
	ID        string    `bson:"_id"`
	Rev       int64     `bson:"rev"`
	Body      []byte    `bson:"body"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStore persists documents in a single MongoDB collection, one document
// per id. Lacking client-held transactions on standalone deployments, Apply
// implements the read-modify-write as a compare-and-swap on a revision
// counter with bounded retries.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	now        func() time.Time
}

// OpenMongo connects to the deployment at uri and uses the "events"
// collection of the named database.
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect mongo: %v", ErrUnavailable, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: ping mongo: %v", ErrUnavailable, err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection("events"),
		now:        time.Now,
	}, nil
}

// Get returns the document body stored under id.
func (s *MongoStore) Get(ctx context.Context, id string) ([]byte, error) {
	doc, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.Body, nil
}

// Create inserts a new document, refusing to overwrite an existing one.
func (s *MongoStore) Create(ctx context.Context, id string, body []byte) error {
	_, err := s.collection.InsertOne(ctx, mongoDocument{
		ID:        id,
		Rev:       1,
		Body:      body,
		UpdatedAt: s.now().UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrExists
	}
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrUnavailable, id, err)
	}
	return nil
}

// Apply reads the document, runs mutate, and replaces the body guarded by
// the revision it read. A concurrent writer bumps the revision and fails the
// guard, in which case the whole cycle is retried against the fresh state.
func (s *MongoStore) Apply(ctx context.Context, id string, mutate Mutate) ([]byte, error) {
	for attempt := 0; attempt < mongoApplyAttempts; attempt++ {
		doc, err := s.fetch(ctx, id)
		if err != nil {
			return nil, err
		}

		next, err := mutate(doc.Body)
		if err != nil {
			return nil, err
		}

		result, err := s.collection.UpdateOne(ctx,
			bson.M{"_id": id, "rev": doc.Rev},
			bson.M{"$set": bson.M{"rev": doc.Rev + 1, "body": next, "updatedAt": s.now().UTC()}})
		if err != nil {
			return nil, fmt.Errorf("%w: update %s: %v", ErrUnavailable, id, err)
		}
		if result.ModifiedCount == 1 {
			return next, nil
		}
		// Revision moved underneath us; reread and try again.
	}
	return nil, fmt.Errorf("%w: update %s: retries exhausted", ErrUnavailable, id)
}

// Close disconnects from the deployment.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) fetch(ctx context.Context, id string) (mongoDocument, error) {
	var doc mongoDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return mongoDocument{}, ErrNotFound
	}
	if err != nil {
		return mongoDocument{}, fmt.Errorf("%w: get %s: %v", ErrUnavailable, id, err)
	}
	return doc, nil
}
