package handlers_test

import (
	"net/http"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotifications_ReadStore(t *testing.T) {
	app := newTestApp(t)
	ada := app.signUp("ada")
	bob := app.signUp("bob")
	cyd := app.signUp("cyd")
	app.follow(bob, ada)
	app.follow(cyd, ada)
	app.waitNotifications(ada.ID, 2)

	rec := app.do(http.MethodGet, "/notifications?limit=10", nil, bearer(ada.Token))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[models.NotificationPage](t, rec)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, int64(2), page.Unread)
	require.Len(t, page.Data, 2)
	require.NotNil(t, page.Data[0].Actor)
	assert.Contains(t, []string{"bob", "cyd"}, page.Data[0].Actor.Username)

	first := page.Data[0].ID
	rec = app.do(http.MethodPatch, "/notifications/"+first.Hex(), nil, bearer(ada.Token))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Notification](t, rec).Read)

	page = decode[models.NotificationPage](t, app.do(http.MethodGet, "/notifications/", nil, bearer(ada.Token)))
	assert.Equal(t, int64(1), page.Limit)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, int64(1), page.Unread)
	assert.Len(t, page.Data, 1)

	assert.Equal(t, http.StatusOK, app.do(http.MethodDelete, "/notifications/"+first.Hex(), nil, bearer(ada.Token)).Code)
	page = decode[models.NotificationPage](t, app.do(http.MethodGet, "/notifications", nil, bearer(ada.Token)))
	assert.Equal(t, int64(1), page.Total)

	missing := "/notifications/" + primitive.NewObjectID().Hex()
	requireError(t, app.do(http.MethodPatch, missing, nil, bearer(ada.Token)), http.StatusNotFound, "Notification not found")
	requireError(t, app.do(http.MethodPatch, "/notifications/bad", nil, bearer(ada.Token)), http.StatusBadRequest, "Invalid notificationId")

	empty := decode[models.NotificationPage](t, app.do(http.MethodGet, "/notifications", nil, bearer(bob.Token)))
	assert.Zero(t, empty.Total)
	assert.NotNil(t, empty.Data)
}

func TestSearch(t *testing.T) {
	app := newTestApp(t)
	ada := app.signUp("ada")
	app.signUp("adam")
	app.signUp("bob")
	app.createPost(ada, "Quantum physics today", "science")
	app.createPost(ada, "Jazz standards", "music")

	users := decode[models.CountData[models.UserCompact]](t, app.do(http.MethodGet, "/search/users?name=ada&limit=10", nil))
	assert.Equal(t, int64(2), users.Total)
	assert.Len(t, users.Data, 2)
	assert.NotContains(t, app.do(http.MethodGet, "/search/users?name=ada", nil).Body.String(), "email")

	posts := decode[models.CountData[models.Post]](t, app.do(http.MethodGet, "/search/posts?keyword=quantum", nil))
	assert.Equal(t, int64(1), posts.Total)
	require.Len(t, posts.Data, 1)
	assert.Equal(t, "Quantum physics today", posts.Data[0].Title)

	requireError(t, app.do(http.MethodGet, "/search/users", nil), http.StatusBadRequest, "name is required")
	requireError(t, app.do(http.MethodGet, "/search/posts", nil), http.StatusBadRequest, "keyword is required")

	none := decode[models.CountData[models.Post]](t, app.do(http.MethodGet, "/search/posts?keyword=cooking", nil))
	assert.Zero(t, none.Total)
	assert.NotNil(t, none.Data)
}
