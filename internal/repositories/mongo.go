package repositories

import (
	"errors"

	"github.com/anonto42/nano-social/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	usersCollection         = "users"
	postsCollection         = "posts"
	commentsCollection      = "comments"
	likesCollection         = "likes"
	followsCollection       = "follows"
	notificationsCollection = "notifications"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrInvalidID = errors.New("invalid id format")
)

// ParseID converts a hex string into an ObjectID
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

var compactUserProjection = bson.D{
	{Key: "_id", Value: 1},
	{Key: "firstname", Value: 1},
	{Key: "lastname", Value: 1},
	{Key: "username", Value: 1},
	{Key: "photo", Value: 1},
}

// pageStages applies the offset window in natural order
func pageStages(p models.Page) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$skip", Value: p.Skip()}},
		{{Key: "$limit", Value: p.Limit}},
	}
}

// lookupOne joins a single document from another collection into field as.
// Missing references leave the field absent.
func lookupOne(from, localField, as string, project bson.D) mongo.Pipeline {
	lookup := bson.D{
		{Key: "from", Value: from},
		{Key: "localField", Value: localField},
		{Key: "foreignField", Value: "_id"},
		{Key: "as", Value: as},
	}
	if project != nil {
		lookup = append(lookup, bson.E{Key: "pipeline", Value: bson.A{bson.D{{Key: "$project", Value: project}}}})
	}
	return mongo.Pipeline{
		{{Key: "$lookup", Value: lookup}},
		{{Key: "$unwind", Value: bson.D{{Key: "path", Value: "$" + as}, {Key: "preserveNullAndEmptyArrays", Value: true}}}},
	}
}

func lookupCompactUser(localField, as string) mongo.Pipeline {
	return lookupOne(usersCollection, localField, as, compactUserProjection)
}

func concat(parts ...mongo.Pipeline) mongo.Pipeline {
	var out mongo.Pipeline
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func textFilter(search string) bson.M {
	return bson.M{"$text": bson.M{"$search": search}}
}

func textScoreStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "score", Value: bson.D{{Key: "$meta", Value: "textScore"}}}}}},
	}
}
