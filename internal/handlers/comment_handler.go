package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentNotifier tells a post author about a new comment
type CommentNotifier interface {
	NewCommentNotifyAuthor(ctx context.Context, postID, userID primitive.ObjectID) (*models.Notification, error)
}

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	notifier          CommentNotifier
	async             Async
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, notifier CommentNotifier) *CommentHandler {
	return &CommentHandler{commentRepository: commentRepo, notifier: notifier, async: goAsync}
}

// RegisterCommentRoutes registers comment-related routes under /posts
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/post/:postId/comments", h.GetCommentsByPostID)
	g.POST("/post/:postId/comments", h.CreateComment, auth)
	g.PATCH("/post/:postId/comments/:commentId", h.UpdateComment, auth)
	g.DELETE("/post/:postId/comments/:commentId", h.DeleteComment, auth)
}

// CreateComment stores the comment and notifies the author in the background
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID, err := pathID(c, "postId")
	if err != nil {
		return err
	}

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	comment := &models.Comment{UserID: userID, PostID: postID, Content: req.Content}
	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return repoError(err, "Post not found")
	}

	bg := detached(c)
	h.async(func() {
		_, err := h.notifier.NewCommentNotifyAuthor(bg, postID, userID)
		logAsyncError(bg, err, "comment notification failed")
	})

	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPostID lists the comments of a post
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	postID, err := pathID(c, "postId")
	if err != nil {
		return err
	}
	p := pageQuery(c, defaultLimit)
	page, err := countPage(c.Request().Context(), p,
		func(ctx context.Context) ([]models.Comment, error) {
			return h.commentRepository.GetCommentsByPostID(ctx, postID, p)
		},
		func(ctx context.Context) (int64, error) { return h.commentRepository.CountCommentsByPostID(ctx, postID) },
	)
	if err != nil {
		return repoError(err, "Post not found")
	}
	return c.JSON(http.StatusOK, page)
}

// UpdateComment replaces the content. The caller is not checked against the commenter.
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	commentID, err := pathID(c, "commentId")
	if err != nil {
		return err
	}

	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.Content == nil {
		return echo.NewHTTPError(http.StatusBadRequest, noUpdateData)
	}

	comment, err := h.commentRepository.UpdateComment(c.Request().Context(), commentID, *req.Content)
	if err != nil {
		return repoError(err, "Comment not found")
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment. The caller is not checked against the commenter.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	commentID, err := pathID(c, "commentId")
	if err != nil {
		return err
	}
	if err := h.commentRepository.DeleteComment(c.Request().Context(), commentID); err != nil {
		return repoError(err, "Comment not found")
	}
	return c.NoContent(http.StatusOK)
}
