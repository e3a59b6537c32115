// Package notifications turns social events into stored notifications and a
// best-effort live push to the recipient.
package notifications

import (
	"context"
	"fmt"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/realtime"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// Live channel event names
const (
	EventNewPost     = "new-post"
	EventNewFollower = "new-follower"
	EventNewComment  = "new-comment"
	EventNewLike     = "new-like"
)

// likeEvent is what like notifications are pushed as. Web clients listen for
// the follower event here, so EventNewLike is currently never emitted.
const likeEvent = EventNewFollower

// maxConcurrentWrites bounds the inserts in flight for one fan-out
const maxConcurrentWrites = 16

// PostLookup resolves the author of a post
type PostLookup interface {
	GetPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
}

// FanOutError reports a failed batch. Committed holds the records that were
// stored before the failure; they are not rolled back and were not pushed.
type FanOutError struct {
	Committed []models.Notification
	Err       error
}

func (e *FanOutError) Error() string {
	return fmt.Sprintf("notification fan-out failed after %d committed: %v", len(e.Committed), e.Err)
}

func (e *FanOutError) Unwrap() error { return e.Err }

type Notifier struct {
	store   repositories.NotificationRepository
	posts   PostLookup
	emitter realtime.Emitter
}

func NewNotifier(store repositories.NotificationRepository, posts PostLookup, emitter realtime.Emitter) *Notifier {
	return &Notifier{store: store, posts: posts, emitter: emitter}
}

// NewPostNotifyFollowers stores one post notification per follower, then
// pushes each stored record to its own recipient. If any insert fails the
// whole batch fails with a *FanOutError and nothing is pushed.
func (n *Notifier) NewPostNotifyFollowers(ctx context.Context, authorID primitive.ObjectID, followerIDs []primitive.ObjectID) ([]models.Notification, error) {
	records := make([]models.Notification, len(followerIDs))
	stored := make([]bool, len(followerIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentWrites)
	for i, followerID := range followerIDs {
		records[i] = models.Notification{
			UserID:         followerID,
			NotificationBy: authorID,
			LinkTo:         authorID.Hex(),
			Type:           models.NotificationPost,
		}
		g.Go(func() error {
			if err := n.store.CreateNotification(gctx, &records[i]); err != nil {
				return err
			}
			stored[i] = true
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		committed := make([]models.Notification, 0, len(records))
		for i := range records {
			if stored[i] {
				committed = append(committed, records[i])
			}
		}
		return nil, &FanOutError{Committed: committed, Err: err}
	}

	for i := range records {
		n.push(ctx, records[i].UserID, EventNewPost, &records[i])
	}
	return records, nil
}

// NewFollowerNotifyUser tells followingID that followerID now follows them
func (n *Notifier) NewFollowerNotifyUser(ctx context.Context, followingID, followerID primitive.ObjectID) (*models.Notification, error) {
	rec := &models.Notification{
		UserID:         followingID,
		NotificationBy: followerID,
		LinkTo:         followerID.Hex(),
		Type:           models.NotificationFollowing,
	}
	return n.notify(ctx, rec, EventNewFollower)
}

// NewCommentNotifyAuthor tells the author of postID that userID commented
func (n *Notifier) NewCommentNotifyAuthor(ctx context.Context, postID, userID primitive.ObjectID) (*models.Notification, error) {
	return n.notifyAuthor(ctx, postID, userID, models.NotificationComment, EventNewComment)
}

// NewLikeNotifyAuthor tells the author of postID that userID liked it
func (n *Notifier) NewLikeNotifyAuthor(ctx context.Context, postID, userID primitive.ObjectID) (*models.Notification, error) {
	return n.notifyAuthor(ctx, postID, userID, models.NotificationLike, likeEvent)
}

func (n *Notifier) notifyAuthor(ctx context.Context, postID, userID primitive.ObjectID, typ models.NotificationType, event string) (*models.Notification, error) {
	post, err := n.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("resolve post author: %w", err)
	}
	rec := &models.Notification{
		UserID:         post.AuthorID,
		NotificationBy: userID,
		LinkTo:         postID.Hex(),
		Type:           typ,
	}
	return n.notify(ctx, rec, event)
}

func (n *Notifier) notify(ctx context.Context, rec *models.Notification, event string) (*models.Notification, error) {
	if err := n.store.CreateNotification(ctx, rec); err != nil {
		return nil, err
	}
	n.push(ctx, rec.UserID, event, rec)
	return rec, nil
}

// push never fails the caller; a lost push is still readable from the store
func (n *Notifier) push(ctx context.Context, userID primitive.ObjectID, event string, rec *models.Notification) {
	if err := n.emitter.Emit(ctx, userID.Hex(), event, rec); err != nil {
		l := logger.Ctx(ctx)
		l.Warn().Err(err).Str(logger.FieldUserID, userID.Hex()).Str("event", event).Msg("live push failed")
	}
}
