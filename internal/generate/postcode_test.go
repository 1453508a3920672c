package generate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopharness/internal/contract"
	"shopharness/internal/taxonomy"
)

func newStore(t *testing.T) *contract.Store {
	t.Helper()
	validator, err := contract.NewValidator()
	require.NoError(t, err)
	store, err := contract.NewStore(t.TempDir(), validator)
	require.NoError(t, err)
	return store
}

func TestPostcodeCasesCoverEveryRangeBoundary(t *testing.T) {
	store := newStore(t)
	rules := taxonomy.DefaultRuleSet()

	generated, err := PostcodeCases(rules, store, Options{
		Author: "qa-harness",
		Date:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// Two boundary cases per rule: AT has three carriers, DE has two.
	assert.Len(t, generated, 10)

	// Every generated postcode resolves to exactly the rule it came from.
	for _, c := range generated {
		var entry contract.TestDataEntry
		for _, e := range c.TestData {
			if e.Type() == "postcode_case" {
				entry = e
			}
		}
		require.NotNil(t, entry, "%s lacks a postcode_case entry", c.TestID)

		rule, err := rules.Evaluate(entry.StringField("country"), entry.StringField("postcode"))
		require.NoError(t, err)
		assert.Equal(t, entry.StringField("carrier_code"), rule.CarrierCode)
		assert.Equal(t, entry.StringField("expected_label"), rule.Label)
	}
}

func TestPostcodeCasesValidateAndReload(t *testing.T) {
	store := newStore(t)
	_, err := PostcodeCases(taxonomy.DefaultRuleSet(), store, Options{
		Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// Save validates, so a reload must yield every contract back.
	loaded, err := store.LoadAll()
	require.NoError(t, err)
	assert.Len(t, loaded.Contracts, 10)

	first := loaded.ByID("TC-SHIP-001")
	require.NotNil(t, first)
	assert.Equal(t, "shipping", first.FunctionalArea)
	assert.Equal(t, "Ship001", first.Automation.Frameworks["browser"].Callable)
	assert.Equal(t, contract.AutomationAutomated, first.Automation.Status)
	assert.Equal(t, []string{"AT"}, first.Channels())
}

func TestPostcodeCasesRestrictedToCountry(t *testing.T) {
	store := newStore(t)
	generated, err := PostcodeCases(taxonomy.DefaultRuleSet(), store, Options{
		Countries: []string{"DE"},
		Date:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Len(t, generated, 4)
	for _, c := range generated {
		assert.Equal(t, []string{"DE"}, c.Channels())
	}
}
