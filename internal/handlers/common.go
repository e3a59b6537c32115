package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPage  int64 = 1
	defaultLimit int64 = 1
	// listings of the caller's own posts and likes
	ownListLimit int64 = 5
)

const noUpdateData = "No data to be updated"

// Async runs fire-and-forget work after a response is decided
type Async func(func())

func goAsync(f func()) { go f() }

// detached keeps the request logger but outlives the request
func detached(c echo.Context) context.Context {
	return context.WithoutCancel(c.Request().Context())
}

// pageQuery reads ?page= and ?limit=. Values that are not positive integers
// fall back to the defaults; limit has no upper bound.
func pageQuery(c echo.Context, limit int64) models.Page {
	return models.Page{
		Page:  positiveInt(c.QueryParam("page"), defaultPage),
		Limit: positiveInt(c.QueryParam("limit"), limit),
	}
}

func positiveInt(raw string, fallback int64) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func pathID(c echo.Context, name string) (primitive.ObjectID, error) {
	id, err := repositories.ParseID(c.Param(name))
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

// currentUserID is the caller's account id as stored by the access guard
func currentUserID(c echo.Context) (primitive.ObjectID, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusUnauthorized, middleware.InvalidTokenMessage)
	}
	id, err := repositories.ParseID(user.ID)
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusUnauthorized, middleware.InvalidTokenMessage)
	}
	return id, nil
}

// repoError maps repository sentinels onto HTTP errors
func repoError(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, notFoundMsg)
	case errors.Is(err, repositories.ErrInvalidID):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}

// bindAndValidate decodes the body into req and runs the registered validator
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}

// countPage runs the page query and the total count concurrently
func countPage[T any](ctx context.Context, p models.Page,
	list func(context.Context) ([]T, error),
	count func(context.Context) (int64, error),
) (models.CountData[T], error) {
	var (
		data  []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data, err = list(gctx)
		return err
	})
	g.Go(func() (err error) {
		total, err = count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.CountData[T]{}, err
	}
	return models.NewCountData(p, total, data), nil
}

func logAsyncError(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}
	l := logger.Ctx(ctx)
	l.Error().Err(err).Msg(msg)
}
