package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Follow is a directed edge from FollowerID to FollowingID
type Follow struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	FollowerID   primitive.ObjectID `json:"followerId" bson:"followerId"`
	FollowingID  primitive.ObjectID `json:"followingId" bson:"followingId"`
	FollowedDate time.Time          `json:"followedDate" bson:"followedDate"`
}
