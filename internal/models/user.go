package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account stored in the users collection
type User struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Firstname    string             `json:"firstname" bson:"firstname"`
	Lastname     string             `json:"lastname" bson:"lastname"`
	Username     string             `json:"username" bson:"username"`
	Email        string             `json:"email" bson:"email"`
	Password     string             `json:"-" bson:"password"` // bcrypt hash
	Photo        string             `json:"photo" bson:"photo"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	LastModified time.Time          `json:"lastModified" bson:"lastModified"`
}

// UserCompact is the public projection embedded in posts, likes and notifications
type UserCompact struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Firstname string             `json:"firstname" bson:"firstname"`
	Lastname  string             `json:"lastname" bson:"lastname"`
	Username  string             `json:"username,omitempty" bson:"username,omitempty"`
	Photo     string             `json:"photo,omitempty" bson:"photo,omitempty"`
}

func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Username:  u.Username,
		Photo:     u.Photo,
	}
}

// PublicProfile is another user's view of an account: no email, credential or modification time
type PublicProfile struct {
	ID        primitive.ObjectID `json:"_id"`
	Firstname string             `json:"firstname"`
	Lastname  string             `json:"lastname"`
	Username  string             `json:"username"`
	Photo     string             `json:"photo"`
	CreatedAt time.Time          `json:"createdAt"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Username:  u.Username,
		Photo:     u.Photo,
		CreatedAt: u.CreatedAt,
	}
}

type CreateUserRequest struct {
	Firstname string `json:"firstname" validate:"required,min=2,max=32"`
	Lastname  string `json:"lastname" validate:"required,min=2,max=32"`
	Username  string `json:"username" validate:"required,min=2,max=32"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	Photo     string `json:"photo"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is a partial CreateUserRequest; nil fields are left untouched
type UpdateProfileRequest struct {
	Firstname *string `json:"firstname,omitempty" validate:"omitempty,min=2,max=32"`
	Lastname  *string `json:"lastname,omitempty" validate:"omitempty,min=2,max=32"`
	Username  *string `json:"username,omitempty" validate:"omitempty,min=2,max=32"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=1"`
	Photo     *string `json:"photo,omitempty"`
}

func (r *UpdateProfileRequest) IsEmpty() bool {
	return r.Firstname == nil && r.Lastname == nil && r.Username == nil &&
		r.Email == nil && r.Password == nil && r.Photo == nil
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}
