package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Like links one user to one post
type Like struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"userId" bson:"userId"`
	PostID       primitive.ObjectID `json:"postId" bson:"postId"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	LastModified time.Time          `json:"lastModified" bson:"lastModified"`

	Post *Post `json:"post,omitempty" bson:"post,omitempty"`
}
