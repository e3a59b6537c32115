package repositories

import (
	"context"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TrendingLimit is how many posts the trends ranking returns
const TrendingLimit = 5

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateLike(ctx context.Context, like *models.Like) error
	DeleteLike(ctx context.Context, postID, userID primitive.ObjectID) error
	HasUserLikedPost(ctx context.Context, postID, userID primitive.ObjectID) (bool, error)
	GetLikesByPostID(ctx context.Context, postID primitive.ObjectID, page models.Page) ([]models.Like, error)
	CountLikesByPostID(ctx context.Context, postID primitive.ObjectID) (int64, error)
	GetLikedPosts(ctx context.Context, userID primitive.ObjectID, page models.Page) ([]models.Like, error)
	CountLikedPosts(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Trending(ctx context.Context, limit int64) ([]models.TrendingPost, error)
}

// MongoLikeRepository implements LikeRepository for MongoDB
type MongoLikeRepository struct {
	collection *mongo.Collection
}

// NewMongoLikeRepository creates a new MongoLikeRepository
func NewMongoLikeRepository(db *mongo.Database) *MongoLikeRepository {
	return &MongoLikeRepository{collection: db.Collection(likesCollection)}
}

func (r *MongoLikeRepository) CreateLike(ctx context.Context, like *models.Like) error {
	now := time.Now()
	like.ID = primitive.NewObjectID()
	like.CreatedAt = now
	like.LastModified = now
	_, err := r.collection.InsertOne(ctx, like)
	return err
}

// DeleteLike removes the (post, user) like if there is one
func (r *MongoLikeRepository) DeleteLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"postId": postID, "userId": userID})
	return err
}

func (r *MongoLikeRepository) HasUserLikedPost(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"postId": postID, "userId": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoLikeRepository) GetLikesByPostID(ctx context.Context, postID primitive.ObjectID, page models.Page) ([]models.Like, error) {
	pipeline := concat(
		mongo.Pipeline{{{Key: "$match", Value: bson.M{"postId": postID}}}},
		pageStages(page),
	)
	return r.aggregate(ctx, pipeline)
}

func (r *MongoLikeRepository) CountLikesByPostID(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"postId": postID})
}

// GetLikedPosts returns the user's likes with the liked post populated
func (r *MongoLikeRepository) GetLikedPosts(ctx context.Context, userID primitive.ObjectID, page models.Page) ([]models.Like, error) {
	pipeline := concat(
		mongo.Pipeline{{{Key: "$match", Value: bson.M{"userId": userID}}}},
		pageStages(page),
		lookupOne(postsCollection, "postId", "post", nil),
	)
	return r.aggregate(ctx, pipeline)
}

func (r *MongoLikeRepository) CountLikedPosts(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID})
}

// Trending ranks posts by like count, highest first
func (r *MongoLikeRepository) Trending(ctx context.Context, limit int64) ([]models.TrendingPost, error) {
	pipeline := concat(
		mongo.Pipeline{
			{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$postId"}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
			{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
			{{Key: "$limit", Value: limit}},
		},
		lookupOne(postsCollection, "_id", "post", nil),
	)
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trends []models.TrendingPost
	if err = cursor.All(ctx, &trends); err != nil {
		return nil, err
	}
	return trends, nil
}

func (r *MongoLikeRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.Like, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var likes []models.Like
	if err = cursor.All(ctx, &likes); err != nil {
		return nil, err
	}
	return likes, nil
}
