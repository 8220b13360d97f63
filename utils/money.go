package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"CAD": "$",
	"USD": "$",
	"AUD": "$",
	"EUR": "€",
	"GBP": "£",
}

// FormatCents formats an amount in minor units as a display string like "$1,234.50 CAD".
// This is the only place where cents become a decimal amount.
func FormatCents(amount int64, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	neg := amount < 0
	if neg {
		amount = -amount
	}

	fixed := decimal.New(amount, -2).StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.Grow(len(fixed) + len(whole)/3 + 8)
	if neg {
		b.WriteString("-")
	}
	b.WriteString(currencySymbols[currency])

	// Insert separators from the left.
	rem := len(whole) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(whole[:rem])
	for i := rem; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)

	if currency != "" {
		b.WriteByte(' ')
		b.WriteString(currency)
	}
	return b.String()
}
