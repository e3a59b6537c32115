package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/token"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	RefreshCookieName = "refresh_token"
	bcryptCost        = 10

	msgUserExists       = "User is already Exist"
	msgInvalidLogin     = "Invalid email or password."
	msgRefreshNotFound  = "Token not found. Please login again."
	msgInvalidToken     = "Invalid token."
	msgFirebaseDisabled = "Firebase login is not configured"
)

// IDTokenVerifier is satisfied by *auth.Client
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// TokenResponse is returned by every endpoint that issues a session
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	issuer         *token.Issuer
	firebaseAuth   IDTokenVerifier
	cookieSecure   bool
	now            func() time.Time
}

// NewAuthHandler creates a new AuthHandler. firebaseAuth may be nil.
func NewAuthHandler(userRepo repositories.UserRepository, issuer *token.Issuer, firebaseAuth IDTokenVerifier, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		issuer:         issuer,
		firebaseAuth:   firebaseAuth,
		cookieSecure:   cookieSecure,
		now:            time.Now,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signUp", h.SignUp)
	g.POST("/login", h.Login)
	g.GET("/refresh", h.Refresh)
	g.DELETE("/logout", h.Logout)
	if h.firebaseAuth != nil {
		g.POST("/firebase-login", h.FirebaseLogin)
	}
}

// SignUp creates a local account and starts a session
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req models.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	_, err := h.userRepository.GetUserByEmail(ctx, req.Email)
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, msgUserExists)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return repoError(err, "User not found")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Username:  req.Username,
		Email:     req.Email,
		Password:  string(hashedPassword),
		Photo:     req.Photo,
	}
	if err := h.userRepository.CreateUser(ctx, user); err != nil {
		return repoError(err, "User not found")
	}

	return h.startSession(c, http.StatusCreated, user)
}

// Login checks email and password and starts a session
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidLogin)
		}
		return repoError(err, msgInvalidLogin)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidLogin)
	}

	return h.startSession(c, http.StatusOK, user)
}

// Refresh rotates the session from the refresh cookie. The presented
// refresh token is not revoked.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusNotFound, msgRefreshNotFound)
	}
	ctx := c.Request().Context()

	errNoAccount := errors.New("account not found")
	pair, err := h.issuer.Refresh(cookie.Value, func(p *token.Payload) (*token.Payload, error) {
		id, err := repositories.ParseID(p.ID)
		if err != nil {
			return nil, errNoAccount
		}
		user, err := h.userRepository.GetUserByID(ctx, id)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, errNoAccount
		}
		if err != nil {
			return nil, err
		}
		return &token.Payload{ID: user.ID.Hex(), Email: user.Email}, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, errNoAccount):
		return echo.NewHTTPError(http.StatusUnauthorized, msgInvalidToken)
	case errors.Is(err, token.ErrTokenExpired), errors.Is(err, token.ErrTokenInvalid):
		return echo.NewHTTPError(http.StatusUnauthorized, token.InvalidCredentialsMessage)
	default:
		return repoError(err, msgInvalidToken)
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(http.StatusOK, TokenResponse{AccessToken: pair.AccessToken})
}

// Logout clears the refresh cookie
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookieSecure,
	})
	return c.JSON(http.StatusOK, echo.Map{"status": "Success"})
}

// FirebaseLogin exchanges a Firebase ID token for a local session, creating
// the account on first login
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusNotFound, msgFirebaseDisabled)
	}

	var req models.FirebaseLoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()

	idToken, err := h.firebaseAuth.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, token.InvalidCredentialsMessage)
	}
	email, _ := idToken.Claims["email"].(string)
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Firebase account has no email")
	}

	user, err := h.userRepository.GetUserByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		user = firebaseUser(idToken, email)
		err = h.userRepository.CreateUser(ctx, user)
	}
	if err != nil {
		return repoError(err, "User not found")
	}

	return h.startSession(c, http.StatusOK, user)
}

// firebaseUser builds a passwordless account from the token claims
func firebaseUser(idToken *auth.Token, email string) *models.User {
	name, _ := idToken.Claims["name"].(string)
	photo, _ := idToken.Claims["picture"].(string)
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	username, _, _ := strings.Cut(email, "@")
	if first == "" {
		first = username
	}
	return &models.User{
		Firstname: first,
		Lastname:  strings.TrimSpace(last),
		Username:  username,
		Email:     email,
		Photo:     photo,
	}
}

func (h *AuthHandler) startSession(c echo.Context, status int, user *models.User) error {
	pair, err := h.issuer.GeneratePair(token.Payload{ID: user.ID.Hex(), Email: user.Email})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token").SetInternal(err)
	}
	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(status, TokenResponse{AccessToken: pair.AccessToken})
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, value string) {
	c.SetCookie(&http.Cookie{
		Name:     RefreshCookieName,
		Value:    value,
		Path:     "/",
		Expires:  h.now().Add(token.RefreshTTL),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
