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

// PostFilter narrows post listings. Zero values match everything.
type PostFilter struct {
	AuthorID primitive.ObjectID
	Tag      string
}

func (f PostFilter) bson() bson.M {
	m := bson.M{}
	if !f.AuthorID.IsZero() {
		m["authorId"] = f.AuthorID
	}
	if f.Tag != "" {
		m["tags"] = f.Tag
	}
	return m
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	ListPosts(ctx context.Context, filter PostFilter, page models.Page) ([]models.Post, error)
	CountPosts(ctx context.Context, filter PostFilter) (int64, error)
	UpdatePost(ctx context.Context, id primitive.ObjectID, req *models.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, id primitive.ObjectID) error
	SearchPosts(ctx context.Context, keyword string, page models.Page) ([]models.Post, error)
	CountSearchPosts(ctx context.Context, keyword string) (int64, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection(postsCollection)}
}

// CreatePost stamps the post and inserts it
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	now := time.Now()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.LastModified = now
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID returns the post with its author populated
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	pipeline := concat(
		mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": id}}}},
		lookupCompactUser("authorId", "author"),
	)
	posts, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, ErrNotFound
	}
	return &posts[0], nil
}

// ListPosts returns one page of posts in natural order, authors populated
func (r *MongoPostRepository) ListPosts(ctx context.Context, filter PostFilter, page models.Page) ([]models.Post, error) {
	pipeline := concat(
		mongo.Pipeline{{{Key: "$match", Value: filter.bson()}}},
		pageStages(page),
		lookupCompactUser("authorId", "author"),
	)
	return r.aggregate(ctx, pipeline)
}

func (r *MongoPostRepository) CountPosts(ctx context.Context, filter PostFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, filter.bson())
}

// UpdatePost applies the non-nil fields and returns the updated document
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id primitive.ObjectID, req *models.UpdatePostRequest) (*models.Post, error) {
	set := bson.M{"lastModified": time.Now()}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Content != nil {
		set["content"] = *req.Content
	}
	if req.Tags != nil {
		set["tags"] = req.Tags
	}

	var post models.Post
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&post)
	if err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// DeletePost removes the post. Deleting a missing post is not an error.
func (r *MongoPostRepository) DeletePost(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// SearchPosts runs a full-text query over title and content ordered by relevance
func (r *MongoPostRepository) SearchPosts(ctx context.Context, keyword string, page models.Page) ([]models.Post, error) {
	pipeline := concat(
		mongo.Pipeline{{{Key: "$match", Value: textFilter(keyword)}}},
		textScoreStages(),
		pageStages(page),
		lookupCompactUser("authorId", "author"),
	)
	return r.aggregate(ctx, pipeline)
}

func (r *MongoPostRepository) CountSearchPosts(ctx context.Context, keyword string) (int64, error) {
	return r.collection.CountDocuments(ctx, textFilter(keyword))
}

func (r *MongoPostRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.Post, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}
