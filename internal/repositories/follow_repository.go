package repositories

import (
	"context"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID primitive.ObjectID) error
	GetFollowerIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	GetFollowers(ctx context.Context, userID primitive.ObjectID, page models.Page) ([]models.Follow, error)
	CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error)
	GetFollowing(ctx context.Context, userID primitive.ObjectID, page models.Page) ([]models.Follow, error)
	CountFollowing(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// MongoFollowRepository implements FollowRepository for MongoDB
type MongoFollowRepository struct {
	collection *mongo.Collection
}

// NewMongoFollowRepository creates a new MongoFollowRepository
func NewMongoFollowRepository(db *mongo.Database) *MongoFollowRepository {
	return &MongoFollowRepository{collection: db.Collection(followsCollection)}
}

// CreateFollow inserts the edge. Duplicates and self-follows are stored as given.
func (r *MongoFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	follow.ID = primitive.NewObjectID()
	follow.FollowedDate = time.Now()
	_, err := r.collection.InsertOne(ctx, follow)
	return err
}

// DeleteFollow removes one matching edge if there is one
func (r *MongoFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"followerId": followerID, "followingId": followingID})
	return err
}

// GetFollowerIDs returns the account id of every follower of userID
func (r *MongoFollowRepository) GetFollowerIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	follows, err := r.find(ctx, mongo.Pipeline{{{Key: "$match", Value: bson.M{"followingId": userID}}}})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(follows))
	for _, f := range follows {
		ids = append(ids, f.FollowerID)
	}
	return ids, nil
}

func (r *MongoFollowRepository) GetFollowers(ctx context.Context, userID primitive.ObjectID, page models.Page) ([]models.Follow, error) {
	return r.find(ctx, concat(
		mongo.Pipeline{{{Key: "$match", Value: bson.M{"followingId": userID}}}},
		pageStages(page),
	))
}

func (r *MongoFollowRepository) CountFollowers(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"followingId": userID})
}

func (r *MongoFollowRepository) GetFollowing(ctx context.Context, userID primitive.ObjectID, page models.Page) ([]models.Follow, error) {
	return r.find(ctx, concat(
		mongo.Pipeline{{{Key: "$match", Value: bson.M{"followerId": userID}}}},
		pageStages(page),
	))
}

func (r *MongoFollowRepository) CountFollowing(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"followerId": userID})
}

func (r *MongoFollowRepository) find(ctx context.Context, pipeline mongo.Pipeline) ([]models.Follow, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var follows []models.Follow
	if err = cursor.All(ctx, &follows); err != nil {
		return nil, err
	}
	return follows, nil
}
