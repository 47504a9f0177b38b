// Package currency normalizes quoted amounts to USD using a fixed
// conversion table. Unknown codes are treated as USD so conversion
// never fails.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

var usdRates = map[string]decimal.Decimal{
	"USD": decimal.RequireFromString("1.0"),
	"INR": decimal.RequireFromString("0.012"),
	"CNY": decimal.RequireFromString("0.14"),
	"EUR": decimal.RequireFromString("1.10"),
	"GBP": decimal.RequireFromString("1.27"),
	"JPY": decimal.RequireFromString("0.0067"),
	"AED": decimal.RequireFromString("0.27"),
	"CAD": decimal.RequireFromString("0.72"),
	"AUD": decimal.RequireFromString("0.65"),
}

// ToUSD converts amount from the given 3-letter currency code to USD,
// rounded to 2 decimal places half-up.
func ToUSD(amount decimal.Decimal, code string) decimal.Decimal {
	rate, ok := usdRates[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		rate = usdRates["USD"]
	}
	return amount.Mul(rate).Round(2)
}

// RateTable renders the conversion table for embedding into the
// extraction prompt, one "CODE rate" pair per line.
func RateTable() string {
	order := []string{"USD", "INR", "CNY", "EUR", "GBP", "JPY", "AED", "CAD", "AUD"}
	lines := make([]string, 0, len(order))
	for _, code := range order {
		lines = append(lines, code+" = "+usdRates[code].String()+" USD")
	}
	return strings.Join(lines, "\n")
}
