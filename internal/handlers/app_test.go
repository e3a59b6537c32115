package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/handlers"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/realtime"
	"github.com/anonto42/nano-social/backend/internal/router"
	"github.com/anonto42/nano-social/backend/internal/token"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

type push struct {
	userID string
	event  string
}

// recorder captures live pushes instead of delivering them
type recorder struct {
	mu     sync.Mutex
	pushes []push
}

func (r *recorder) Emit(_ context.Context, userID, event string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes = append(r.pushes, push{userID: userID, event: event})
	return nil
}

func (r *recorder) to(userID primitive.ObjectID) []push {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []push
	for _, p := range r.pushes {
		if p.userID == userID.Hex() {
			out = append(out, p)
		}
	}
	return out
}

type testApp struct {
	t      *testing.T
	db     *memDB
	e      *echo.Echo
	issuer *token.Issuer
	hub    *realtime.Hub
	pushes *recorder
}

func newTestApp(t *testing.T, opts ...func(*router.Dependencies)) *testApp {
	t.Helper()
	app := &testApp{
		t:      t,
		db:     newMemDB(),
		e:      echo.New(),
		issuer: token.NewIssuer(testSecret),
		hub:    realtime.NewHub(),
		pushes: &recorder{},
	}
	deps := router.Dependencies{
		Repos:    app.db.repos(),
		Issuer:   app.issuer,
		Hub:      app.hub,
		Emitter:  app.pushes,
		WSConfig: realtime.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	router.SetupMiddleware(app.e, zerolog.Nop())
	router.SetupRoutes(app.e, deps)
	t.Cleanup(app.hub.Close)
	return app
}

type reqOption func(*http.Request)

func bearer(tok string) reqOption {
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok) }
}

func withCookie(c *http.Cookie) reqOption {
	return func(r *http.Request) { r.AddCookie(c) }
}

func (a *testApp) do(method, path string, body any, opts ...reqOption) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// requireError checks the status and the rendered ErrorResponse
func requireError(t *testing.T, rec *httptest.ResponseRecorder, code int, message string) {
	t.Helper()
	require.Equal(t, code, rec.Code, rec.Body.String())
	body := decode[handlers.ErrorResponse](t, rec)
	require.Equal(t, code, body.StatusCode)
	require.Equal(t, message, body.Message)
}

func refreshCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == handlers.RefreshCookieName {
			return c
		}
	}
	return nil
}

type account struct {
	ID      primitive.ObjectID
	Email   string
	Token   string
	Refresh *http.Cookie
}

func signUpBody(username string) map[string]string {
	return map[string]string{
		"firstname": "Test",
		"lastname":  "User",
		"username":  username,
		"email":     username + "@example.com",
		"password":  "secret",
	}
}

func (a *testApp) signUp(username string) account {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/auth/signUp", signUpBody(username))
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return a.session(rec)
}

func (a *testApp) session(rec *httptest.ResponseRecorder) account {
	a.t.Helper()
	body := decode[handlers.TokenResponse](a.t, rec)
	payload, err := a.issuer.Validate(body.AccessToken)
	require.NoError(a.t, err)
	id, err := primitive.ObjectIDFromHex(payload.ID)
	require.NoError(a.t, err)
	return account{ID: id, Email: payload.Email, Token: body.AccessToken, Refresh: refreshCookie(rec)}
}

func (a *testApp) createPost(author account, title string, tags ...string) models.Post {
	a.t.Helper()
	if len(tags) == 0 {
		tags = []string{"social"}
	}
	rec := a.do(http.MethodPost, "/users/posts", map[string]any{
		"title":   title,
		"content": "Some content for " + title,
		"tags":    tags,
	}, bearer(author.Token))
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Post](a.t, rec)
}

func (a *testApp) follow(follower, target account) {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/users/follow/"+target.ID.Hex(), nil, bearer(follower.Token))
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
}

// waitNotifications blocks until userID has n stored notifications
func (a *testApp) waitNotifications(userID primitive.ObjectID, n int) []models.Notification {
	a.t.Helper()
	require.Eventually(a.t, func() bool {
		return len(a.db.notificationsFor(userID)) == n
	}, 2*time.Second, 5*time.Millisecond)
	return a.db.notificationsFor(userID)
}
