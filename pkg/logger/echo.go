package logger

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const headerRequestID = "X-Request-ID"

// EchoMiddleware attaches a request-scoped logger to the request context and
// logs one line per completed request.
func EchoMiddleware(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			reqID := req.Header.Get(headerRequestID)
			if reqID == "" {
				reqID = uuid.New().String()
			}
			c.Response().Header().Set(headerRequestID, reqID)

			child := base.With().
				Str(FieldRequestID, reqID).
				Str(FieldMethod, req.Method).
				Str(FieldPath, req.URL.Path).
				Str(FieldClientIP, c.RealIP()).
				Logger()
			c.SetRequest(req.WithContext(WithLogger(req.Context(), child)))

			err := next(c)
			if err != nil {
				// Let Echo's error handler write the response so the status is known.
				c.Error(err)
			}

			child.Info().
				Int(FieldStatus, c.Response().Status).
				Int64(FieldLatency, time.Since(start).Milliseconds()).
				Msg("request completed")
			return nil
		}
	}
}
