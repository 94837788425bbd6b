package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"forge/config"
	"forge/services"
)

// ExchangeRatesPath answers CORS itself and is exempt from the global CORS
// middleware.
const ExchangeRatesPath = "/api/exchange-rates"

type Handler struct {
	Cfg      *config.Config
	Cache    *services.CacheService
	Rates    *services.ExchangeService
	Latency  *services.LatencyService
	History  *services.HistoryService
	Detector *services.CurrencyDetector
	Mongo    *services.MongoDBService
	Discord  *services.DiscordBotService

	startedAt time.Time
}

func NewHandler(cfg *config.Config, cache *services.CacheService, rates *services.ExchangeService, latency *services.LatencyService, history *services.HistoryService, detector *services.CurrencyDetector) *Handler {
	return &Handler{
		Cfg:       cfg,
		Cache:     cache,
		Rates:     rates,
		Latency:   latency,
		History:   history,
		Detector:  detector,
		startedAt: time.Now(),
	}
}

// Register mounts every route on e.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.GetHealth)
	e.GET("/cache/status", h.GetCacheStatus)
	e.POST("/cache/clear", h.ClearCache)

	api := e.Group("/api")
	api.GET("/status", h.GetStatus)

	lat := api.Group("/latency")
	lat.POST("", h.CalculateLatency)
	lat.POST("/optimizations", h.GetOptimizations)
	lat.POST("/compare", h.CompareConfigs)
	lat.POST("/chart", h.GetChart)
	lat.GET("/tooltips/:component", h.GetTooltip)

	e.Any(ExchangeRatesPath, h.ExchangeRates)

	api.GET("/currency/convert", h.ConvertCurrency)
	api.GET("/currency/detect", h.DetectCurrency)

	api.GET("/analytics/ratings", h.GetRatingDistribution)
	api.GET("/analytics/daily", h.GetDailyStats)
	api.GET("/analytics/rates", h.GetRateHistory)
	api.GET("/history/recent", h.GetRecentCalculations)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// queryInt parses an optional integer query parameter. Missing values take
// def; values outside [1, max] are clamped.
func queryInt(c echo.Context, name string, def, max int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	if v < 1 {
		v = 1
	}
	if v > max {
		v = max
	}
	return v, nil
}
