package pages

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  string
	}{
		{
			name:  "plain euro prefix",
			label: "€ 19,90",
			want:  "19.9",
		},
		{
			name:  "euro suffix",
			label: "1.234,56 €",
			want:  "1234.56",
		},
		{
			name:  "starting-at annotation",
			label: "ab € 7,50*",
			want:  "7.5",
		},
		{
			name:  "no decimals",
			label: "12 €",
			want:  "12",
		},
		{
			name:  "million with grouping",
			label: "1.000.000,00 €",
			want:  "1000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.label)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"parsed %s, want %s", got, tt.want)
		})
	}
}

func TestParsePriceRejectsEmptyLabel(t *testing.T) {
	_, err := ParsePrice("kostenlos")
	assert.Error(t, err)
}

func TestFormatPriceRoundTrip(t *testing.T) {
	// A formatted cart amount must parse back to the same value at two
	// decimal places.
	amounts := []string{"19.9", "1234.56", "0.01", "7"}
	for _, raw := range amounts {
		amount := decimal.RequireFromString(raw)
		formatted := FormatPrice(amount)
		parsed, err := ParsePrice(formatted)
		require.NoError(t, err)
		assert.True(t, parsed.Equal(amount.Round(2)),
			"round trip of %s via %q yielded %s", amount, formatted, parsed)
	}
}

func TestFormatPriceUsesComma(t *testing.T) {
	assert.Equal(t, "19,90 €", FormatPrice(decimal.RequireFromString("19.9")))
	assert.Equal(t, "12,00 €", FormatPrice(decimal.NewFromInt(12)))
}
