package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// ErrorHandler renders errors as ErrorResponse. Server errors are logged
// with the request logger and their detail is not sent to the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if code < http.StatusInternalServerError {
			message = fmt.Sprint(he.Message)
		}
	}

	if code >= http.StatusInternalServerError {
		l := logger.Ctx(c.Request().Context())
		l.Error().Err(err).Int(logger.FieldStatus, code).Msg("request failed")
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, ErrorResponse{StatusCode: code, Message: message})
	}
	if writeErr != nil {
		l := logger.Ctx(c.Request().Context())
		l.Error().Err(writeErr).Msg("write error response")
	}
}
