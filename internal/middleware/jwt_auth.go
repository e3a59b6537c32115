package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/token"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// UserContextKey is where the guard stores the caller's token.Payload
const UserContextKey = "user"

// InvalidTokenMessage is returned for every rejected request
const InvalidTokenMessage = "Invalid token."

// TokenValidator is satisfied by *token.Issuer
type TokenValidator interface {
	Validate(tokenString string) (*token.Payload, error)
}

// JWTAuthMiddleware requires "Authorization: Bearer <token>" and stores the
// identity under UserContextKey. Missing, malformed and invalid tokens all
// produce the same 401.
func JWTAuthMiddleware(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, InvalidTokenMessage)
			}

			payload, err := validator.Validate(tokenString)
			if err != nil {
				l := logger.Ctx(c.Request().Context())
				l.Debug().Err(err).Msg("rejected bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, InvalidTokenMessage)
			}

			c.Set(UserContextKey, *payload)
			ctx := logger.WithLogger(c.Request().Context(), logger.Ctx(c.Request().Context()).With().Str(logger.FieldUserID, payload.ID).Logger())
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, tok, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || tok == "" {
		return "", false
	}
	return tok, true
}

// CurrentUser returns the identity stored by JWTAuthMiddleware
func CurrentUser(c echo.Context) (token.Payload, bool) {
	p, ok := c.Get(UserContextKey).(token.Payload)
	return p, ok
}
