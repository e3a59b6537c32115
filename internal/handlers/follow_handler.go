package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FollowNotifier tells an account about a new follower
type FollowNotifier interface {
	NewFollowerNotifyUser(ctx context.Context, followingID, followerID primitive.ObjectID) (*models.Notification, error)
}

// FollowHandler handles follow-related HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	notifier         FollowNotifier
	async            Async
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, notifier FollowNotifier) *FollowHandler {
	return &FollowHandler{followRepository: followRepo, notifier: notifier, async: goAsync}
}

// RegisterFollowRoutes registers follow-related routes under /users
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/follow/:followingId", h.FollowUser, auth)
	g.DELETE("/follow/:followingId", h.UnfollowUser, auth)
	g.GET("/:userId/followers", h.GetFollowers)
	g.GET("/:userId/following", h.GetFollowing)
}

// FollowUser stores the edge and notifies the followed account in the
// background. Self-follows and repeated follows are stored as given.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	followerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	followingID, err := pathID(c, "followingId")
	if err != nil {
		return err
	}

	follow := &models.Follow{FollowerID: followerID, FollowingID: followingID}
	if err := h.followRepository.CreateFollow(c.Request().Context(), follow); err != nil {
		return repoError(err, "User not found")
	}

	bg := detached(c)
	h.async(func() {
		_, err := h.notifier.NewFollowerNotifyUser(bg, followingID, followerID)
		logAsyncError(bg, err, "follow notification failed")
	})

	return c.JSON(http.StatusCreated, follow)
}

// UnfollowUser removes the edge; a missing edge is not an error
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	followerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	followingID, err := pathID(c, "followingId")
	if err != nil {
		return err
	}
	if err := h.followRepository.DeleteFollow(c.Request().Context(), followerID, followingID); err != nil {
		return repoError(err, "Follow not found")
	}
	return c.NoContent(http.StatusOK)
}

// GetFollowers lists the edges pointing at :userId
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	p := pageQuery(c, defaultLimit)
	page, err := countPage(c.Request().Context(), p,
		func(ctx context.Context) ([]models.Follow, error) { return h.followRepository.GetFollowers(ctx, userID, p) },
		func(ctx context.Context) (int64, error) { return h.followRepository.CountFollowers(ctx, userID) },
	)
	if err != nil {
		return repoError(err, "User not found")
	}
	return c.JSON(http.StatusOK, page)
}

// GetFollowing lists the edges leaving :userId
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	p := pageQuery(c, defaultLimit)
	page, err := countPage(c.Request().Context(), p,
		func(ctx context.Context) ([]models.Follow, error) { return h.followRepository.GetFollowing(ctx, userID, p) },
		func(ctx context.Context) (int64, error) { return h.followRepository.CountFollowing(ctx, userID) },
	)
	if err != nil {
		return repoError(err, "User not found")
	}
	return c.JSON(http.StatusOK, page)
}
