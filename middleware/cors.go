package middleware

import (
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// CORSMiddleware allows the calculator pages to call the API from any
// origin unless origins are configured. Requests to ownPaths are passed
// through untouched; their handlers answer CORS themselves.
func CORSMiddleware(origins []string, ownPaths ...string) echo.MiddlewareFunc {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper: func(c echo.Context) bool {
			return slices.Contains(ownPaths, c.Request().URL.Path)
		},
		AllowOrigins: origins,
		AllowMethods: []string{
			echo.GET,
			echo.POST,
			echo.OPTIONS,
		},
		AllowHeaders: []string{
			echo.HeaderContentType,
		},
		ExposeHeaders: []string{
			HeaderModelVersion,
			HeaderModelVersionStatus,
		},
	})
}
