package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"forge/logging"
)

// LoggerMiddleware logs one line per request:
// GET /api/latency -> 200 OK (3ms) from 127.0.0.1
func LoggerMiddleware() echo.MiddlewareFunc {
	log := logging.GetSubsystemLogger("http")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			path := req.URL.Path
			if req.URL.RawQuery != "" {
				path += "?" + req.URL.RawQuery
			}
			status := res.Status
			elapsed := time.Since(start)

			var event *zerolog.Event
			switch {
			case status >= 500:
				event = log.Error()
			case status >= 400:
				event = log.Warn()
			default:
				event = log.Info()
			}

			event.
				Str("method", req.Method).
				Str("path", path).
				Int("status", status).
				Dur("latency", elapsed).
				Str("ip", c.RealIP()).
				Msgf("%s %s -> %d %s (%dms)", req.Method, path, status, http.StatusText(status), elapsed.Milliseconds())

			return nil
		}
	}
}
