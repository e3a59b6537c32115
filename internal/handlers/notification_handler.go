package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

// NotificationHandler serves the caller's stored notifications
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepository: notifRepo}
}

// RegisterNotificationRoutes registers notification routes; the group must be protected
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("", h.GetNotifications)
	g.GET("/", h.GetNotifications)
	g.PATCH("/:notificationId", h.MarkAsRead)
	g.DELETE("/:notificationId", h.DeleteNotification)
}

// GetNotifications returns one page of the caller's notifications with the
// total and the unread count, each from its own query
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	p := pageQuery(c, defaultLimit)

	var (
		data          []models.Notification
		total, unread int64
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		data, err = h.notificationRepository.GetByRecipientID(ctx, userID, p)
		return err
	})
	g.Go(func() (err error) {
		total, err = h.notificationRepository.CountByRecipientID(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		unread, err = h.notificationRepository.GetUnreadCount(ctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return repoError(err, "Notification not found")
	}

	return c.JSON(http.StatusOK, models.NotificationPage{
		CountData: models.NewCountData(p, total, data),
		Unread:    unread,
	})
}

// MarkAsRead flags a notification as read. Ownership is not checked.
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	id, err := pathID(c, "notificationId")
	if err != nil {
		return err
	}
	n, err := h.notificationRepository.MarkAsRead(c.Request().Context(), id)
	if err != nil {
		return repoError(err, "Notification not found")
	}
	return c.JSON(http.StatusOK, n)
}

// DeleteNotification removes a notification. Ownership is not checked.
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	id, err := pathID(c, "notificationId")
	if err != nil {
		return err
	}
	if err := h.notificationRepository.DeleteNotification(c.Request().Context(), id); err != nil {
		return repoError(err, "Notification not found")
	}
	return c.NoContent(http.StatusOK)
}
