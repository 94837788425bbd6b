package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"forge/models"
	"forge/services"
)

// ConvertCurrency converts ?amount between ?from and ?to (both default to
// USD) using the current rates.
func (h *Handler) ConvertCurrency(c echo.Context) error {
	amount, err := strconv.ParseFloat(c.QueryParam("amount"), 64)
	if err != nil {
		return badRequest(c, "invalid amount")
	}

	from, ok := currencyParam(c, "from")
	if !ok {
		return badRequest(c, "unsupported currency: "+c.QueryParam("from"))
	}
	to, ok := currencyParam(c, "to")
	if !ok {
		return badRequest(c, "unsupported currency: "+c.QueryParam("to"))
	}

	rates := h.Rates.GetRates(c.Request().Context())
	result := services.Convert(amount, from, to, rates.Rates)

	return c.JSON(http.StatusOK, models.Conversion{
		Amount:    amount,
		From:      from,
		To:        to,
		Result:    result,
		Rate:      services.Convert(1, from, to, rates.Rates),
		Formatted: services.FormatAmount(result, to),
		Source:    rates.Source,
	})
}

// DetectCurrency picks a display currency for the caller. An explicit
// ?currency= wins, then GeoIP, then Accept-Language.
func (h *Handler) DetectCurrency(c echo.Context) error {
	d := h.Detector.Detect(
		c.QueryParam("currency"),
		c.RealIP(),
		c.Request().Header.Get("Accept-Language"),
	)
	return c.JSON(http.StatusOK, d)
}

func currencyParam(c echo.Context, name string) (models.Currency, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return models.CurrencyUSD, true
	}
	return services.ParseCurrency(raw)
}
