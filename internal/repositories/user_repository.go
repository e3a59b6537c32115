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

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, req *models.UpdateProfileRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	SearchUsers(ctx context.Context, name string, page models.Page) ([]models.UserCompact, error)
	CountSearchUsers(ctx context.Context, name string) (int64, error)
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection(usersCollection)}
}

// CreateUser stamps the user and inserts it. The password must already be hashed.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.LastModified = now
	_, err := r.collection.InsertOne(ctx, user)
	return err
}

func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// UpdateUser applies the non-nil fields and returns the updated account.
// A password in req must already be hashed.
func (r *MongoUserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, req *models.UpdateProfileRequest) (*models.User, error) {
	set := bson.M{"lastModified": time.Now()}
	fields := map[string]*string{
		"firstname": req.Firstname,
		"lastname":  req.Lastname,
		"username":  req.Username,
		"email":     req.Email,
		"password":  req.Password,
		"photo":     req.Photo,
	}
	for k, v := range fields {
		if v != nil {
			set[k] = *v
		}
	}

	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// DeleteUser removes the account document only; posts, likes and follows are kept
func (r *MongoUserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// SearchUsers runs a full-text query over names, username and email ordered by relevance
func (r *MongoUserRepository) SearchUsers(ctx context.Context, name string, page models.Page) ([]models.UserCompact, error) {
	pipeline := concat(
		mongo.Pipeline{{{Key: "$match", Value: textFilter(name)}}},
		textScoreStages(),
		pageStages(page),
		mongo.Pipeline{{{Key: "$project", Value: compactUserProjection}}},
	)
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.UserCompact
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MongoUserRepository) CountSearchUsers(ctx context.Context, name string) (int64, error) {
	return r.collection.CountDocuments(ctx, textFilter(name))
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}
