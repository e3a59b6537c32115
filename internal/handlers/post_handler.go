package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/notifications"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// PostNotifier fans a new post out to the author's followers
type PostNotifier interface {
	NewPostNotifyFollowers(ctx context.Context, authorID primitive.ObjectID, followerIDs []primitive.ObjectID) ([]models.Notification, error)
}

// PostHandler handles the caller's own posts and single-post lookups
type PostHandler struct {
	postRepository   repositories.PostRepository
	followRepository repositories.FollowRepository
	notifier         PostNotifier
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, followRepo repositories.FollowRepository, notifier PostNotifier) *PostHandler {
	return &PostHandler{
		postRepository:   postRepo,
		followRepository: followRepo,
		notifier:         notifier,
	}
}

// RegisterOwnPostRoutes registers /users/posts routes; all require auth
func (h *PostHandler) RegisterOwnPostRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/posts", h.GetOwnPosts, auth)
	g.POST("/posts", h.CreatePost, auth)
	g.PATCH("/posts/:postId", h.UpdatePost, auth)
	g.DELETE("/posts/:postId", h.DeletePost, auth)
	g.GET("/:userId/posts", h.GetUserPosts)
}

// RegisterPostRoutes registers public single-post routes under /posts
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/post/:postId", h.GetPost)
}

// CreatePost stores the post and waits for the follower notifications.
// A failed fan-out is a 500 even though the post itself was stored.
func (h *PostHandler) CreatePost(c echo.Context) error {
	authorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	post := &models.Post{
		AuthorID: authorID,
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
	}

	var followerIDs []primitive.ObjectID
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.postRepository.CreatePost(gctx, post) })
	g.Go(func() (err error) {
		followerIDs, err = h.followRepository.GetFollowerIDs(gctx, authorID)
		return err
	})
	if err := g.Wait(); err != nil {
		return repoError(err, "Post not found")
	}

	if _, err := h.notifier.NewPostNotifyFollowers(ctx, authorID, followerIDs); err != nil {
		var fe *notifications.FanOutError
		if errors.As(err, &fe) {
			l := logger.Ctx(ctx)
			l.Error().Err(fe.Err).Str("post_id", post.ID.Hex()).Int("committed", len(fe.Committed)).
				Int("followers", len(followerIDs)).Msg("new post fan-out failed")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to notify followers").SetInternal(err)
	}

	return c.JSON(http.StatusCreated, post)
}

// GetOwnPosts lists the caller's posts
func (h *PostHandler) GetOwnPosts(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	return h.listByAuthor(c, userID, pageQuery(c, ownListLimit))
}

// GetUserPosts lists another user's posts
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	return h.listByAuthor(c, userID, pageQuery(c, defaultLimit))
}

func (h *PostHandler) listByAuthor(c echo.Context, authorID primitive.ObjectID, p models.Page) error {
	filter := repositories.PostFilter{AuthorID: authorID}
	page, err := countPage(c.Request().Context(), p,
		func(ctx context.Context) ([]models.Post, error) { return h.postRepository.ListPosts(ctx, filter, p) },
		func(ctx context.Context) (int64, error) { return h.postRepository.CountPosts(ctx, filter) },
	)
	if err != nil {
		return repoError(err, "Post not found")
	}
	return c.JSON(http.StatusOK, page)
}

// GetPost retrieves a post with its author
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := pathID(c, "postId")
	if err != nil {
		return err
	}
	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return repoError(err, "Post not found")
	}
	return c.JSON(http.StatusOK, post)
}

// UpdatePost applies a partial update. The caller is not checked against the author.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	if _, err := currentUserID(c); err != nil {
		return err
	}
	postID, err := pathID(c, "postId")
	if err != nil {
		return err
	}

	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.IsEmpty() {
		return echo.NewHTTPError(http.StatusBadRequest, noUpdateData)
	}

	post, err := h.postRepository.UpdatePost(c.Request().Context(), postID, &req)
	if err != nil {
		return repoError(err, "Post not found")
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost removes a post. The caller is not checked against the author.
func (h *PostHandler) DeletePost(c echo.Context) error {
	postID, err := pathID(c, "postId")
	if err != nil {
		return err
	}
	if err := h.postRepository.DeletePost(c.Request().Context(), postID); err != nil {
		return repoError(err, "Post not found")
	}
	return c.NoContent(http.StatusOK)
}
