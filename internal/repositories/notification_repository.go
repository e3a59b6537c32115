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

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	GetByRecipientID(ctx context.Context, userID primitive.ObjectID, page models.Page) ([]models.Notification, error)
	CountByRecipientID(ctx context.Context, userID primitive.ObjectID) (int64, error)
	GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	DeleteNotification(ctx context.Context, id primitive.ObjectID) error
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection(notificationsCollection)}
}

// CreateNotification inserts an unread notification
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	n.Read = false
	_, err := r.collection.InsertOne(ctx, n)
	return err
}

// GetByRecipientID lists the user's notifications in natural order with the actor populated
func (r *MongoNotificationRepository) GetByRecipientID(ctx context.Context, userID primitive.ObjectID, page models.Page) ([]models.Notification, error) {
	pipeline := concat(
		mongo.Pipeline{{{Key: "$match", Value: bson.M{"userId": userID}}}},
		pageStages(page),
		lookupCompactUser("notificationBy", "actor"),
	)
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *MongoNotificationRepository) CountByRecipientID(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID})
}

func (r *MongoNotificationRepository) GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"userId": userID, "status": false})
}

// MarkAsRead sets the read flag and returns the updated document. It is idempotent.
func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var n models.Notification
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": true}}, opts).Decode(&n)
	if err != nil {
		return nil, notFound(err)
	}
	return &n, nil
}

// DeleteNotification removes the notification. Deleting a missing one is not an error.
func (r *MongoNotificationRepository) DeleteNotification(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
