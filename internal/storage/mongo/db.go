// Package mongo stores admins and events in MongoDB.
package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	adminsCollection = "admins"
	eventsCollection = "events"
)

// Store owns the client connection and both collection repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	admins *AdminRepository
	events *EventRepository
}

// Connect dials uri, verifies the connection with a ping and ensures indexes.
// connectTimeout bounds the whole startup sequence.
func Connect(ctx context.Context, uri, database string, connectTimeout time.Duration) (*Store, error) {
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(connectTimeout))
	if err != nil {
		return nil, errors.Wrap(err, "connect mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongodb")
	}

	store := newStore(client, database)
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return store, nil
}

func newStore(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client: client,
		db:     db,
		admins: &AdminRepository{coll: db.Collection(adminsCollection)},
		events: &EventRepository{coll: db.Collection(eventsCollection)},
	}
}

// EnsureIndexes creates the unique email index on admins.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(adminsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return errors.Wrap(err, "create admins email index")
	}
	return nil
}

func (s *Store) Admins() *AdminRepository { return s.admins }

func (s *Store) Events() *EventRepository { return s.events }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.Wrap(err, "ping mongodb")
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
