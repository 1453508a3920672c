package pages

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice converts a storefront price label into a decimal amount.
// Labels look like "€ 1.234,56", "1.234,56 €" or "ab € 19,90*"; currency
// symbols, thousands separators and annotation characters are stripped
// and the comma is treated as the decimal point.
func ParsePrice(label string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == ',' || r == '.' || r == '-':
			return r
		default:
			return -1
		}
	}, label)
	cleaned = strings.TrimRight(strings.TrimSpace(cleaned), "-")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("no numeric content in price label %q", label)
	}
	// German locale: dots group thousands, the comma separates decimals.
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing price label %q: %w", label, err)
	}
	return amount, nil
}

// FormatPrice renders an amount the way the storefront displays it,
// rounded to two decimal places with a comma separator.
func FormatPrice(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	return strings.Replace(fixed, ".", ",", 1) + " €"
}
