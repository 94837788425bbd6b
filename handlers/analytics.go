package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	defaultDays  = 7
	maxDays      = 365
	defaultLimit = 50
	maxLimit     = 500
)

// GetRatingDistribution counts calculations per rating over ?days (default 7)
func (h *Handler) GetRatingDistribution(c echo.Context) error {
	days, err := queryInt(c, "days", defaultDays, maxDays)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, orEmpty(h.History.RatingDistribution(c.Request().Context(), days)))
}

// GetDailyStats aggregates calculations per UTC day over ?days (default 7)
func (h *Handler) GetDailyStats(c echo.Context) error {
	days, err := queryInt(c, "days", defaultDays, maxDays)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, orEmpty(h.History.DailyStats(c.Request().Context(), days)))
}

func (h *Handler) GetRateHistory(c echo.Context) error {
	limit, err := queryInt(c, "limit", defaultLimit, maxLimit)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, orEmpty(h.History.RecentRates(c.Request().Context(), limit)))
}

func (h *Handler) GetRecentCalculations(c echo.Context) error {
	limit, err := queryInt(c, "limit", defaultLimit, maxLimit)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, orEmpty(h.History.RecentCalculations(c.Request().Context(), limit)))
}

// orEmpty keeps JSON responses as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
