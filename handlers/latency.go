package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"forge/latency"
	"forge/models"
)

type compareRequest struct {
	Before models.LatencyInput `json:"before"`
	After  models.LatencyInput `json:"after"`
}

func bindInput(c echo.Context) (models.LatencyInput, error) {
	var in models.LatencyInput
	if err := c.Bind(&in); err != nil {
		return in, err
	}
	return in, nil
}

// CalculateLatency runs the latency model. Any field may be omitted.
// ?optimizations=true adds suggestions to the response.
func (h *Handler) CalculateLatency(c echo.Context) error {
	withOptimizations := false
	if raw := c.QueryParam("optimizations"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "invalid optimizations flag")
		}
		withOptimizations = v
	}

	in, err := bindInput(c)
	if err != nil {
		return badRequest(c, "invalid latency configuration")
	}

	country := h.Detector.Country(c.RealIP())
	return c.JSON(http.StatusOK, h.Latency.Calculate(in, withOptimizations, country))
}

func (h *Handler) GetOptimizations(c echo.Context) error {
	in, err := bindInput(c)
	if err != nil {
		return badRequest(c, "invalid latency configuration")
	}
	return c.JSON(http.StatusOK, h.Latency.Optimizations(in))
}

// CompareConfigs expects {"before": {...}, "after": {...}}
func (h *Handler) CompareConfigs(c echo.Context) error {
	var req compareRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid comparison request")
	}
	return c.JSON(http.StatusOK, h.Latency.Compare(req.Before, req.After))
}

func (h *Handler) GetChart(c echo.Context) error {
	in, err := bindInput(c)
	if err != nil {
		return badRequest(c, "invalid latency configuration")
	}
	return c.JSON(http.StatusOK, h.Latency.Chart(in))
}

func (h *Handler) GetTooltip(c echo.Context) error {
	component := c.Param("component")
	tooltip := latency.ComponentTooltip(component)
	if tooltip == "" {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown component: " + component})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"component": component,
		"tooltip":   tooltip,
	})
}
