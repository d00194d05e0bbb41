package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const databaseName = "heartsync"

// Store holds the Mongo client and the collection handles the handlers
// work against. It is created once at startup and passed down explicitly.
type Store struct {
	Client *mongo.Client

	Users         *mongo.Collection
	MatchRequests *mongo.Collection
	Chats         *mongo.Collection
	Reports       *mongo.Collection
	PushSubs      *mongo.Collection
}

// Connect dials MongoDB, pings it and returns the collection handles.
func Connect(ctx context.Context, uri string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(databaseName)
	store := &Store{
		Client:        client,
		Users:         db.Collection("users"),
		MatchRequests: db.Collection("matchrequests"),
		Chats:         db.Collection("chats"),
		Reports:       db.Collection("reports"),
		PushSubs:      db.Collection("push_subscriptions"),
	}

	log.Println("Connected to MongoDB successfully")
	return store, nil
}

// EnsureIndexes creates the uniqueness constraints the workflows rely on:
// one account per email, one request per ordered (from, to) pair and one
// chat per match.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.MatchRequests.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "from", Value: 1}, {Key: "to", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.Chats.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "matchId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = s.PushSubs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Disconnect tears down the client on shutdown.
func (s *Store) Disconnect(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.Client.Disconnect(ctx); err != nil {
		return err
	}

	log.Println("Disconnected from MongoDB")
	return nil
}
