package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoggerWithConfig attaches a request scoped zerolog logger to the request
// context and optionally logs every finished request.
func LoggerWithConfig(logRequests bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = res.Header().Get(echo.HeaderXRequestID)
			}

			l := log.With().Str("id", id).Logger()
			c.SetRequest(req.WithContext(l.WithContext(req.Context())))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			if !logRequests {
				return nil
			}

			level := zerolog.InfoLevel
			if res.Status >= 500 { //nolint:mnd // server errors
				level = zerolog.ErrorLevel
			}

			l.WithLevel(level).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("duration", time.Since(start)).
				Msg("Request")

			return nil
		}
	}
}

// RequestID is echo's request id middleware.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestID()
}
