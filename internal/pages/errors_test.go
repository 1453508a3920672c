package pages

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{
			name: "page error keeps its kind",
			err:  &PageError{Kind: FailureSelectorNotFound, Page: "cart", Op: "click"},
			want: FailureSelectorNotFound,
		},
		{
			name: "wrapped page error",
			err:  fmt.Errorf("running scenario: %w", &PageError{Kind: FailureUnexpectedURL}),
			want: FailureUnexpectedURL,
		},
		{
			name: "bare deadline",
			err:  context.DeadlineExceeded,
			want: FailureTimeout,
		},
		{
			name: "bare cancellation",
			err:  context.Canceled,
			want: FailureCancelled,
		},
		{
			name: "unclassified error",
			err:  errors.New("boom"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestFailureReclassifiesContextCauses(t *testing.T) {
	err := failure("cart", "read totals", FailureSelectorNotFound,
		fmt.Errorf("waiting: %w", context.DeadlineExceeded), "")
	assert.Equal(t, FailureTimeout, err.Kind)

	err = failure("cart", "read totals", FailureSelectorNotFound, context.Canceled, "")
	assert.Equal(t, FailureCancelled, err.Kind)

	err = failure("cart", "read totals", FailureSelectorNotFound, errors.New("no node"), "missing")
	assert.Equal(t, FailureSelectorNotFound, err.Kind)
	assert.Contains(t, err.Error(), "cart")
	assert.Contains(t, err.Error(), "missing")
}

func TestExtractOrderNumber(t *testing.T) {
	text := "Vielen Dank für Ihre Bestellung! Ihre Bestellnummer: 10087. " +
		"Eine Bestätigung wurde an test@example.com gesendet."
	assert.Equal(t, "10087", ExtractOrderNumber(text))

	assert.Equal(t, "", ExtractOrderNumber("Bestellung Nr. 123"), "runs below five digits do not count")
	assert.Equal(t, "1234567", ExtractOrderNumber("ref 1234567 und 99999"))
}

func TestOrderIDFromURL(t *testing.T) {
	assert.Equal(t, "a1b2c3",
		OrderIDFromURL("https://shop.example/checkout/finish?orderId=a1b2c3"))
	assert.Equal(t, "o-9",
		OrderIDFromURL("https://shop.example/checkout/finish?order=o-9&x=1"))
	assert.Equal(t, "", OrderIDFromURL("https://shop.example/checkout/finish"))
	assert.Equal(t, "", OrderIDFromURL("://bad"))
}
