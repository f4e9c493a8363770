package services

import (
	"math"

	"alfredoptarigan/cv-analyzer/internal/models"
)

// eurRates maps a currency code to its value expressed in EUR. The table
// is intentionally fixed: salary bands are coarse estimates and a live FX
// feed would suggest a precision the numbers don't have.
var eurRates = map[string]float64{
	"EUR": 1.0,
	"USD": 0.92,
	"GBP": 1.17,
	"CHF": 1.04,
	"SEK": 0.087,
	"NOK": 0.086,
	"DKK": 0.134,
	"PLN": 0.23,
	"CZK": 0.040,
	"RON": 0.20,
	"HUF": 0.0025,
	"CAD": 0.68,
	"AUD": 0.61,
	"INR": 0.011,
	"JPY": 0.0061,
	"BRL": 0.17,
	"IDR": 0.000057,
	"SGD": 0.69,
}

// rateFor returns the EUR value of one unit of the currency. Unknown
// currencies get a rate of 1 so conversion degrades to a no-op instead of
// failing the pipeline.
func rateFor(currency string) float64 {
	if rate, ok := eurRates[currency]; ok {
		return rate
	}
	return 1.0
}

// NormalizeSalaryCurrencies rescales the current-role salary band into the
// target role's currency so the two bands are directly comparable. Rate is
// fromRate/toRate through the EUR table; figures round to the nearest
// integer. Running it on an already-normalized plan is a no-op.
func NormalizeSalaryCurrencies(plan *models.CareerPlanResult) {
	if plan == nil {
		return
	}

	current := &plan.CurrentRoleMarket
	target := plan.TargetRoleMarket

	if current.Currency == target.Currency {
		return
	}

	rate := rateFor(current.Currency) / rateFor(target.Currency)

	current.Low = int(math.Round(float64(current.Low) * rate))
	current.Mid = int(math.Round(float64(current.Mid) * rate))
	current.High = int(math.Round(float64(current.High) * rate))
	current.Currency = target.Currency
}
