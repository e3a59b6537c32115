package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LikeNotifier tells a post author about a new like
type LikeNotifier interface {
	NewLikeNotifyAuthor(ctx context.Context, postID, userID primitive.ObjectID) (*models.Notification, error)
}

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository repositories.LikeRepository
	notifier       LikeNotifier
	async          Async
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(likeRepo repositories.LikeRepository, notifier LikeNotifier) *LikeHandler {
	return &LikeHandler{likeRepository: likeRepo, notifier: notifier, async: goAsync}
}

// RegisterLikeRoutes registers the post like routes under /posts
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/post/:postId/likes", h.GetLikes)
	g.POST("/post/:postId/likes", h.LikePost, auth)
	g.DELETE("/post/:postId/likes", h.UnlikePost, auth)
}

// RegisterLikedPostRoutes registers the caller's liked posts under /users
func (h *LikeHandler) RegisterLikedPostRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/posts/like", h.GetLikedPosts, auth)
}

// LikePost records a like and notifies the author in the background. The
// duplicate check and the insert are separate queries.
func (h *LikeHandler) LikePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := pathID(c, "postId")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	liked, err := h.likeRepository.HasUserLikedPost(ctx, postID, userID)
	if err != nil {
		return repoError(err, "Post not found")
	}
	if liked {
		return echo.NewHTTPError(http.StatusBadRequest, "Already liked")
	}

	like := &models.Like{UserID: userID, PostID: postID}
	if err := h.likeRepository.CreateLike(ctx, like); err != nil {
		return repoError(err, "Post not found")
	}

	bg := detached(c)
	h.async(func() {
		_, err := h.notifier.NewLikeNotifyAuthor(bg, postID, userID)
		logAsyncError(bg, err, "like notification failed")
	})

	return c.JSON(http.StatusCreated, like)
}

// UnlikePost removes the caller's like; a missing like is not an error
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := pathID(c, "postId")
	if err != nil {
		return err
	}
	if err := h.likeRepository.DeleteLike(c.Request().Context(), postID, userID); err != nil {
		return repoError(err, "Like not found")
	}
	return c.NoContent(http.StatusOK)
}

// GetLikes lists the likes of a post
func (h *LikeHandler) GetLikes(c echo.Context) error {
	postID, err := pathID(c, "postId")
	if err != nil {
		return err
	}
	p := pageQuery(c, defaultLimit)
	page, err := countPage(c.Request().Context(), p,
		func(ctx context.Context) ([]models.Like, error) { return h.likeRepository.GetLikesByPostID(ctx, postID, p) },
		func(ctx context.Context) (int64, error) { return h.likeRepository.CountLikesByPostID(ctx, postID) },
	)
	if err != nil {
		return repoError(err, "Post not found")
	}
	return c.JSON(http.StatusOK, page)
}

// GetLikedPosts lists the caller's likes with the liked post attached
func (h *LikeHandler) GetLikedPosts(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	p := pageQuery(c, ownListLimit)
	page, err := countPage(c.Request().Context(), p,
		func(ctx context.Context) ([]models.Like, error) { return h.likeRepository.GetLikedPosts(ctx, userID, p) },
		func(ctx context.Context) (int64, error) { return h.likeRepository.CountLikedPosts(ctx, userID) },
	)
	if err != nil {
		return repoError(err, "Post not found")
	}
	return c.JSON(http.StatusOK, page)
}
