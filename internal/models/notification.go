package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotificationPost      NotificationType = "post"
	NotificationComment   NotificationType = "comment"
	NotificationFollowing NotificationType = "following"
	NotificationLike      NotificationType = "like"
)

// Notification targets UserID and is caused by NotificationBy.
// Read is stored under "status" as the web client expects.
type Notification struct {
	ID             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID         primitive.ObjectID `json:"userId" bson:"userId"`
	NotificationBy primitive.ObjectID `json:"notificationBy" bson:"notificationBy"`
	LinkTo         string             `json:"linkTo" bson:"linkTo"`
	Type           NotificationType   `json:"type" bson:"type"`
	Read           bool               `json:"status" bson:"status"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`

	Actor *UserCompact `json:"actor,omitempty" bson:"actor,omitempty"`
}
