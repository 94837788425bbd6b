package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// GetHealth returns OK
func (h *Handler) GetHealth(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// GetStatus returns backend status
func (h *Handler) GetStatus(c echo.Context) error {
	status := map[string]any{
		"status":        "running",
		"uptime":        time.Since(h.startedAt).Round(time.Second).String(),
		"modelVersion":  h.Cfg.Model.Version,
		"cacheMode":     string(h.Cache.GetCacheMode()),
		"ratesFallback": h.Rates.InFallback(),
		"mongodb":       h.Mongo.Enabled(),
		"discord":       h.Discord.Enabled(),
		"timestamp":     time.Now().UTC(),
	}
	if reason := h.Rates.LastError(); reason != "" {
		status["ratesError"] = reason
	}
	return c.JSON(http.StatusOK, status)
}
