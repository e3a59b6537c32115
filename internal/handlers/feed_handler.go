package handlers

import (
	"context"
	"math/rand/v2"
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FeedHandler serves the public discovery listings
type FeedHandler struct {
	postRepository repositories.PostRepository
	likeRepository repositories.LikeRepository
	shuffle        func([]models.Post)
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(postRepo repositories.PostRepository, likeRepo repositories.LikeRepository) *FeedHandler {
	return &FeedHandler{
		postRepository: postRepo,
		likeRepository: likeRepo,
		shuffle:        shufflePosts,
	}
}

func shufflePosts(posts []models.Post) {
	rand.Shuffle(len(posts), func(i, j int) { posts[i], posts[j] = posts[j], posts[i] })
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
	g.GET("/filter", h.GetFiltered)
	g.GET("/trends", h.GetTrends)
}

// GetFeed returns one page of all posts in random order. The shuffle only
// reorders within the page.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	page, err := h.list(c, repositories.PostFilter{})
	if err != nil {
		return err
	}
	h.shuffle(page.Data)
	return c.JSON(http.StatusOK, page)
}

// GetFiltered lists posts tagged with ?category=
func (h *FeedHandler) GetFiltered(c echo.Context) error {
	category := c.QueryParam("category")
	if category == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "category is required")
	}
	page, err := h.list(c, repositories.PostFilter{Tag: category})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetTrends ranks the most liked posts
func (h *FeedHandler) GetTrends(c echo.Context) error {
	trends, err := h.likeRepository.Trending(c.Request().Context(), repositories.TrendingLimit)
	if err != nil {
		return repoError(err, "Post not found")
	}
	if trends == nil {
		trends = []models.TrendingPost{}
	}
	return c.JSON(http.StatusOK, trends)
}

func (h *FeedHandler) list(c echo.Context, filter repositories.PostFilter) (models.CountData[models.Post], error) {
	p := pageQuery(c, defaultLimit)
	page, err := countPage(c.Request().Context(), p,
		func(ctx context.Context) ([]models.Post, error) { return h.postRepository.ListPosts(ctx, filter, p) },
		func(ctx context.Context) (int64, error) { return h.postRepository.CountPosts(ctx, filter) },
	)
	if err != nil {
		return page, repoError(err, "Post not found")
	}
	return page, nil
}
