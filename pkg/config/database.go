package config

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/nano-social/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DB holds the database connection
type DB struct {
	Mongo    *mongo.Client
	Database *mongo.Database
}

// InitDB connects to MongoDB and prepares the indexes the services rely on
func InitDB(cfg *Config) (*DB, error) {
	client, err := initMongo(cfg.MongoURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	db := &DB{Mongo: client, Database: client.Database(cfg.MongoDatabase)}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := EnsureIndexes(ctx, db.Database); err != nil {
		db.CloseDB()
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	l := logger.L()
	l.Info().Msg("Successfully connected to MongoDB!")
	return client, nil
}

// IndexModels returns the index definitions per collection. MongoDB allows a
// single text index per collection, so searchable fields share one.
func IndexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		"users": {
			{
				Keys: bson.D{
					{Key: "firstname", Value: "text"},
					{Key: "lastname", Value: "text"},
					{Key: "username", Value: "text"},
					{Key: "email", Value: "text"},
				},
				Options: options.Index().SetName("users_text"),
			},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("users_email")},
		},
		"posts": {
			{
				Keys: bson.D{
					{Key: "title", Value: "text"},
					{Key: "content", Value: "text"},
				},
				Options: options.Index().SetName("posts_text"),
			},
			{Keys: bson.D{{Key: "authorId", Value: 1}}, Options: options.Index().SetName("posts_author")},
			{Keys: bson.D{{Key: "tags", Value: 1}}, Options: options.Index().SetName("posts_tags")},
		},
		"likes": {
			{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "userId", Value: 1}}, Options: options.Index().SetName("likes_post_user")},
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetName("likes_user")},
		},
		"comments": {
			{Keys: bson.D{{Key: "postId", Value: 1}}, Options: options.Index().SetName("comments_post")},
		},
		"follows": {
			{Keys: bson.D{{Key: "followingId", Value: 1}}, Options: options.Index().SetName("follows_following")},
			{Keys: bson.D{{Key: "followerId", Value: 1}}, Options: options.Index().SetName("follows_follower")},
		},
		"notifications": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("notifications_user_status")},
		},
	}
}

// EnsureIndexes creates the indexes returned by IndexModels
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for collection, models := range IndexModels() {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s: %w", collection, err)
		}
	}
	return nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() {
	if db.Mongo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	l := logger.L()
	if err := db.Mongo.Disconnect(ctx); err != nil {
		l.Error().Err(err).Msg("Error closing MongoDB connection")
	} else {
		l.Info().Msg("MongoDB connection closed.")
	}
}
