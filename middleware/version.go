package middleware

import (
	"github.com/labstack/echo/v4"

	"forge/utils"
)

const (
	HeaderModelVersion       = "X-Model-Version"
	HeaderModelVersionStatus = "X-Model-Version-Status"
)

// ModelVersionMiddleware advertises the latency model version and, when a
// client reports an older one, whether it is outdated or deprecated.
func ModelVersionMiddleware(cfg utils.VersionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(HeaderModelVersion, cfg.Current)

			if client := c.Request().Header.Get(HeaderModelVersion); client != "" {
				switch status := utils.CheckVersionStatus(client, cfg); status {
				case utils.VersionOutdated, utils.VersionDeprecated:
					h.Set(HeaderModelVersionStatus, status)
				}
			}
			return next(c)
		}
	}
}
