package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"forge/services"
)

// GetCacheStatus returns cache health and statistics
func (h *Handler) GetCacheStatus(c echo.Context) error {
	mode := h.Cache.GetCacheMode()

	return c.JSON(http.StatusOK, map[string]any{
		"mode":    string(mode),
		"healthy": mode == services.CacheModeRedis,
		"stats":   h.Cache.GetCacheStats(),
	})
}

// ClearCache drops cached exchange rates (admin endpoint)
func (h *Handler) ClearCache(c echo.Context) error {
	if err := h.Cache.ClearCache(); err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Cache cleared successfully",
	})
}
