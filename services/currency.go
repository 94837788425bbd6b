package services

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/language"

	"forge/models"
	"forge/utils"
)

var currencySymbols = map[models.Currency]string{
	models.CurrencyUSD: "$",
	models.CurrencyGBP: "£",
	models.CurrencyEUR: "€",
	models.CurrencyCAD: "C$",
	models.CurrencyAUD: "A$",
}

var eurozone = []string{
	"AT", "BE", "CY", "DE", "EE", "ES", "FI", "FR", "GR", "HR",
	"IE", "IT", "LT", "LU", "LV", "MT", "NL", "PT", "SI", "SK",
}

var euroLanguages = []string{"de", "fr", "es", "it", "nl", "pt"}

// TrackedCurrencies lists the currencies the rate service serves, in
// display order.
func TrackedCurrencies() []models.Currency {
	return []models.Currency{
		models.CurrencyUSD,
		models.CurrencyGBP,
		models.CurrencyEUR,
		models.CurrencyCAD,
		models.CurrencyAUD,
	}
}

// ParseCurrency accepts a tracked currency code in any case.
func ParseCurrency(s string) (models.Currency, bool) {
	c := models.Currency(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := currencySymbols[c]
	return c, ok
}

// rateOf returns units of c per USD. Unknown or unusable rates count as 1.
func rateOf(rates map[models.Currency]float64, c models.Currency) float64 {
	r := utils.LookupWithDefault(rates, c, 1.0)
	if r <= 0 || !utils.IsFinite(r) {
		return 1.0
	}
	return r
}

// ConvertFromUSD converts a USD amount into c.
func ConvertFromUSD(amount float64, c models.Currency, rates map[models.Currency]float64) float64 {
	return amount * rateOf(rates, c)
}

// ConvertToUSD converts an amount in c into USD.
func ConvertToUSD(amount float64, c models.Currency, rates map[models.Currency]float64) float64 {
	return amount / rateOf(rates, c)
}

// Convert converts between two currencies through USD.
func Convert(amount float64, from, to models.Currency, rates map[models.Currency]float64) float64 {
	return ConvertFromUSD(ConvertToUSD(amount, from, rates), to, rates)
}

// Symbol returns the display symbol for c, "$" when unknown.
func Symbol(c models.Currency) string {
	return utils.LookupWithDefault(currencySymbols, c, "$")
}

// FormatAmount renders amount with its currency symbol and two decimals.
func FormatAmount(amount float64, c models.Currency) string {
	return fmt.Sprintf("%s%.2f", Symbol(c), amount)
}

// CurrencyForCountry maps an ISO 3166 country code to the currency the
// site prices in.
func CurrencyForCountry(iso string) models.Currency {
	iso = strings.ToUpper(strings.TrimSpace(iso))
	switch {
	case iso == "GB":
		return models.CurrencyGBP
	case iso == "CA":
		return models.CurrencyCAD
	case iso == "AU":
		return models.CurrencyAUD
	case lo.Contains(eurozone, iso):
		return models.CurrencyEUR
	default:
		return models.CurrencyUSD
	}
}

// CurrencyForLanguage picks a currency from the most preferred tag of an
// Accept-Language header. An explicit region wins over the language, so fr-CA
// is CAD rather than EUR.
func CurrencyForLanguage(acceptLanguage string) (models.Currency, bool) {
	tag, ok := preferredLanguage(acceptLanguage)
	if !ok {
		return models.CurrencyUSD, false
	}

	if region, conf := tag.Region(); conf == language.Exact {
		switch region.String() {
		case "GB":
			return models.CurrencyGBP, true
		case "CA":
			return models.CurrencyCAD, true
		case "AU":
			return models.CurrencyAUD, true
		}
	}
	base, _ := tag.Base()
	if lo.Contains(euroLanguages, base.String()) {
		return models.CurrencyEUR, true
	}
	return models.CurrencyUSD, true
}

// anyLanguage is what ParseAcceptLanguage makes of the "*" wildcard.
var anyLanguage = language.MustParseBase("mul")

// preferredLanguage returns the highest weighted tag other than the
// wildcard. Tags come back from ParseAcceptLanguage sorted by q.
func preferredLanguage(header string) (language.Tag, bool) {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil {
		return language.Und, false
	}
	return lo.Find(tags, func(t language.Tag) bool {
		base, conf := t.Base()
		return conf == language.Exact && base != anyLanguage
	})
}

// CurrencyDetector resolves a client's preferred currency from, in order,
// an explicit preference, the GeoIP country of its address and its
// Accept-Language header.
type CurrencyDetector struct {
	geo *utils.GeoResolver
}

func NewCurrencyDetector(geo *utils.GeoResolver) *CurrencyDetector {
	return &CurrencyDetector{geo: geo}
}

func (d *CurrencyDetector) Detect(preference, clientIP, acceptLanguage string) models.CurrencyDetection {
	if c, ok := ParseCurrency(preference); ok {
		return detection(c, "", "preference")
	}

	if d != nil {
		if loc, ok := d.geo.Lookup(clientIP); ok {
			return detection(CurrencyForCountry(loc.CountryCode), loc.CountryCode, "geoip")
		}
	}

	if c, ok := CurrencyForLanguage(acceptLanguage); ok {
		return detection(c, "", "accept-language")
	}

	return detection(models.CurrencyUSD, "", "default")
}

// Country returns the ISO country of clientIP, or "" when it cannot be
// resolved.
func (d *CurrencyDetector) Country(clientIP string) string {
	if d == nil {
		return ""
	}
	loc, _ := d.geo.Lookup(clientIP)
	return loc.CountryCode
}

func detection(c models.Currency, country, method string) models.CurrencyDetection {
	return models.CurrencyDetection{
		Currency: c,
		Symbol:   Symbol(c),
		Country:  country,
		Method:   method,
	}
}
