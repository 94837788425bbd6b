package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"forge/utils"
)

// Chain is the middleware stack the API server runs, outermost first.
func Chain(origins []string, versions utils.VersionConfig, ownCORSPaths ...string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		LoggerMiddleware(),
		middleware.Recover(),
		MetricsMiddleware(),
		CORSMiddleware(origins, ownCORSPaths...),
		ModelVersionMiddleware(versions),
	}
}
