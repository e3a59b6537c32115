package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// UserHandler handles HTTP requests related to user accounts
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers the caller's profile routes and the public details route
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.GET("/profile", h.GetProfile, auth)
	g.PATCH("/profile", h.UpdateProfile, auth)
	g.DELETE("/profile", h.DeleteProfile, auth)
	g.GET("/:userId/details", h.GetUserDetails)
}

// GetProfile retrieves the authenticated user's own account
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return repoError(err, "User profile not found")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile applies a partial update. A new password is hashed before storing.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.IsEmpty() {
		return echo.NewHTTPError(http.StatusBadRequest, noUpdateData)
	}
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcryptCost)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
		}
		hashedPassword := string(hashed)
		req.Password = &hashedPassword
	}

	user, err := h.userRepository.UpdateUser(c.Request().Context(), userID, &req)
	if err != nil {
		return repoError(err, "User profile not found")
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteProfile removes the caller's account. Their content is kept.
func (h *UserHandler) DeleteProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if err := h.userRepository.DeleteUser(c.Request().Context(), userID); err != nil {
		return repoError(err, "User profile not found")
	}
	return c.NoContent(http.StatusOK)
}

// GetUserDetails returns another user's public profile
func (h *UserHandler) GetUserDetails(c echo.Context) error {
	userID, err := pathID(c, "userId")
	if err != nil {
		return err
	}
	user, err := h.userRepository.GetUserByID(c.Request().Context(), userID)
	if err != nil {
		return repoError(err, "User not found")
	}
	return c.JSON(http.StatusOK, user.Public())
}
