package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ExchangeRates serves the current USD-based rates. GET always answers
// 200; when the upstream is unavailable the body carries fallback rates
// with success=false.
func (h *Handler) ExchangeRates(c echo.Context) error {
	hdr := c.Response().Header()
	hdr.Set(echo.HeaderAccessControlAllowOrigin, "*")
	hdr.Set(echo.HeaderAccessControlAllowMethods, "GET, OPTIONS")
	hdr.Set(echo.HeaderAccessControlAllowHeaders, echo.HeaderContentType)

	switch c.Request().Method {
	case http.MethodOptions:
		return c.NoContent(http.StatusOK)
	case http.MethodGet:
	default:
		return c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
	}

	return c.JSON(http.StatusOK, h.Rates.GetRates(c.Request().Context()))
}
