package handlers

import (
	"context"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// SearchHandler runs full-text queries against users and posts
type SearchHandler struct {
	userRepository repositories.UserRepository
	postRepository repositories.PostRepository
}

func NewSearchHandler(userRepo repositories.UserRepository, postRepo repositories.PostRepository) *SearchHandler {
	return &SearchHandler{userRepository: userRepo, postRepository: postRepo}
}

func (h *SearchHandler) RegisterSearchRoutes(g *echo.Group) {
	g.GET("/users", h.SearchUsers)
	g.GET("/posts", h.SearchPosts)
}

// SearchUsers matches ?name= against names, username and email
func (h *SearchHandler) SearchUsers(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	p := pageQuery(c, defaultLimit)
	page, err := countPage(c.Request().Context(), p,
		func(ctx context.Context) ([]models.UserCompact, error) { return h.userRepository.SearchUsers(ctx, name, p) },
		func(ctx context.Context) (int64, error) { return h.userRepository.CountSearchUsers(ctx, name) },
	)
	if err != nil {
		return repoError(err, "User not found")
	}
	return c.JSON(http.StatusOK, page)
}

// SearchPosts matches ?keyword= against post title and content
func (h *SearchHandler) SearchPosts(c echo.Context) error {
	keyword := c.QueryParam("keyword")
	if keyword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "keyword is required")
	}
	p := pageQuery(c, defaultLimit)
	page, err := countPage(c.Request().Context(), p,
		func(ctx context.Context) ([]models.Post, error) { return h.postRepository.SearchPosts(ctx, keyword, p) },
		func(ctx context.Context) (int64, error) { return h.postRepository.CountSearchPosts(ctx, keyword) },
	)
	if err != nil {
		return repoError(err, "Post not found")
	}
	return c.JSON(http.StatusOK, page)
}
