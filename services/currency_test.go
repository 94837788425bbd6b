package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"forge/models"
)

var testRates = map[models.Currency]float64{
	models.CurrencyUSD: 1.0,
	models.CurrencyGBP: 0.78,
	models.CurrencyEUR: 0.85,
	models.CurrencyCAD: 1.35,
	models.CurrencyAUD: 1.48,
}

func TestConvert(t *testing.T) {
	assert.InDelta(t, 78.0, ConvertFromUSD(100, models.CurrencyGBP, testRates), 1e-9)
	assert.InDelta(t, 100.0, ConvertToUSD(135, models.CurrencyCAD, testRates), 1e-9)

	// unknown currency converts at 1:1
	assert.Equal(t, 50.0, ConvertFromUSD(50, "JPY", testRates))
	assert.Equal(t, 50.0, ConvertToUSD(50, "JPY", testRates))
	// a zero rate would divide by zero
	assert.Equal(t, 50.0, ConvertToUSD(50, models.CurrencyEUR, map[models.Currency]float64{models.CurrencyEUR: 0}))
}

func TestConvert_RoundTrip(t *testing.T) {
	for _, c := range TrackedCurrencies() {
		for _, amount := range []float64{0, 0.99, 4.99, 1234.56} {
			back := ConvertToUSD(ConvertFromUSD(amount, c, testRates), c, testRates)
			assert.InDelta(t, amount, back, 1e-9, "%s %.2f", c, amount)
		}
	}
}

func TestConvert_BetweenCurrencies(t *testing.T) {
	// 10 GBP -> USD -> EUR
	want := 10 / 0.78 * 0.85
	assert.InDelta(t, want, Convert(10, models.CurrencyGBP, models.CurrencyEUR, testRates), 1e-9)
	assert.InDelta(t, 10.0, Convert(10, models.CurrencyAUD, models.CurrencyAUD, testRates), 1e-9)
}

func TestSymbolAndFormat(t *testing.T) {
	assert.Equal(t, "£", Symbol(models.CurrencyGBP))
	assert.Equal(t, "C$", Symbol(models.CurrencyCAD))
	assert.Equal(t, "A$", Symbol(models.CurrencyAUD))
	assert.Equal(t, "$", Symbol("JPY"))

	assert.Equal(t, "€1234.50", FormatAmount(1234.5, models.CurrencyEUR))
	assert.Equal(t, "$0.00", FormatAmount(0, models.CurrencyUSD))
	assert.Equal(t, "£4.99", FormatAmount(4.989, models.CurrencyGBP))
}

func TestParseCurrency(t *testing.T) {
	c, ok := ParseCurrency(" gbp ")
	assert.True(t, ok)
	assert.Equal(t, models.CurrencyGBP, c)

	_, ok = ParseCurrency("JPY")
	assert.False(t, ok)
	_, ok = ParseCurrency("")
	assert.False(t, ok)
}

func TestCurrencyForCountry(t *testing.T) {
	tests := map[string]models.Currency{
		"GB": models.CurrencyGBP,
		"gb": models.CurrencyGBP,
		"CA": models.CurrencyCAD,
		"AU": models.CurrencyAUD,
		"DE": models.CurrencyEUR,
		"IE": models.CurrencyEUR,
		"US": models.CurrencyUSD,
		"JP": models.CurrencyUSD,
		"":   models.CurrencyUSD,
	}
	for iso, want := range tests {
		assert.Equal(t, want, CurrencyForCountry(iso), iso)
	}
}

func TestCurrencyForLanguage(t *testing.T) {
	tests := []struct {
		header string
		want   models.Currency
		ok     bool
	}{
		{"en-GB,en;q=0.9", models.CurrencyGBP, true},
		{"en-CA", models.CurrencyCAD, true},
		{"fr-CA,fr;q=0.8", models.CurrencyCAD, true},
		{"en-AU", models.CurrencyAUD, true},
		{"de-DE,de;q=0.9,en;q=0.8", models.CurrencyEUR, true},
		{"pt-BR", models.CurrencyEUR, true},
		{"en-US,en;q=0.9", models.CurrencyUSD, true},
		{"en;q=0.5,en-GB;q=0.9", models.CurrencyGBP, true},
		{"ja", models.CurrencyUSD, true},
		{"en_GB", models.CurrencyGBP, true},
		{"de;q=0.5, en-AU;q=0.9", models.CurrencyAUD, true},
		{"*;q=0.9, fr-CA;q=0.8", models.CurrencyCAD, true},
		{"EN-gb", models.CurrencyGBP, true},
		{"en", models.CurrencyUSD, true},
		{"fr", models.CurrencyEUR, true},
		{"en-GB;q=0, de", models.CurrencyEUR, true},
		{"not a tag!!", models.CurrencyUSD, false},
		{"", models.CurrencyUSD, false},
		{"*", models.CurrencyUSD, false},
	}
	for _, tt := range tests {
		got, ok := CurrencyForLanguage(tt.header)
		assert.Equal(t, tt.want, got, tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
	}
}

func TestCurrencyDetector(t *testing.T) {
	d := NewCurrencyDetector(nil)

	got := d.Detect("aud", "8.8.8.8", "en-GB")
	assert.Equal(t, models.CurrencyAUD, got.Currency)
	assert.Equal(t, "preference", got.Method)
	assert.Equal(t, "A$", got.Symbol)

	got = d.Detect("JPY", "127.0.0.1", "en-GB")
	assert.Equal(t, models.CurrencyGBP, got.Currency)
	assert.Equal(t, "accept-language", got.Method)

	got = d.Detect("", "", "")
	assert.Equal(t, models.CurrencyUSD, got.Currency)
	assert.Equal(t, "default", got.Method)
}
