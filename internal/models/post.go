package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tags accepted on posts and by the category filter
var Tags = []string{"social", "science", "technology", "history", "research", "music", "movies"}

// Post represents a post stored in MongoDB
type Post struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	AuthorID     primitive.ObjectID `json:"authorId" bson:"authorId"`
	Title        string             `json:"title" bson:"title"`
	Content      string             `json:"content" bson:"content"`
	Tags         []string           `json:"tags" bson:"tags"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	LastModified time.Time          `json:"lastModified" bson:"lastModified"`

	// Populated by $lookup, never stored
	Author *UserCompact `json:"author,omitempty" bson:"author,omitempty"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string   `json:"title" validate:"required,min=5"`
	Content string   `json:"content" validate:"required,min=5"`
	Tags    []string `json:"tags" validate:"required,min=1,dive,oneof=social science technology history research music movies"`
}

// UpdatePostRequest is a partial CreatePostRequest
type UpdatePostRequest struct {
	Title   *string  `json:"title,omitempty" validate:"omitempty,min=5"`
	Content *string  `json:"content,omitempty" validate:"omitempty,min=5"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,min=1,dive,oneof=social science technology history research music movies"`
}

func (r *UpdatePostRequest) IsEmpty() bool {
	return r.Title == nil && r.Content == nil && r.Tags == nil
}

// TrendingPost is one row of the like-count ranking
type TrendingPost struct {
	PostID primitive.ObjectID `json:"_id" bson:"_id"`
	Count  int64              `json:"count" bson:"count"`
	Post   *Post              `json:"post,omitempty" bson:"post,omitempty"`
}
