// Package generate derives contracts from the taxonomy and writes them to
// the contract store.
package generate

import (
	"fmt"
	"time"

	"shopharness/internal/contract"
	"shopharness/internal/taxonomy"
	"shopharness/pkg/logging"
)

// Options configure contract generation.
type Options struct {
	Author string
	// Date stamps last_modified; zero means today.
	Date time.Time
	// Countries restricts generation; empty means every country of the
	// rule set.
	Countries []string
}

// PostcodeCases generates one contract per (country, carrier, range
// boundary) and saves each to the store. The boundary postcodes are the
// exact edges of every rule, so the generated suite proves both ends of
// every range resolve to the right carrier.
func PostcodeCases(rules *taxonomy.RuleSet, store *contract.Store, opts Options) ([]*contract.Contract, error) {
	if err := rules.CheckDisjoint(); err != nil {
		return nil, err
	}
	if opts.Author == "" {
		opts.Author = "qa-harness"
	}
	if opts.Date.IsZero() {
		opts.Date = time.Now()
	}

	countries := opts.Countries
	if len(countries) == 0 {
		countries = rules.Countries()
	}

	var generated []*contract.Contract
	ordinal := 0
	for _, country := range countries {
		for _, rule := range rules.ByCountry(country) {
			for _, postcode := range []string{rule.PostcodeMin, rule.PostcodeMax} {
				ordinal++
				c := postcodeContract(rule, country, postcode, ordinal, opts)
				if err := store.Save(c); err != nil {
					return generated, fmt.Errorf("saving %s: %w", c.TestID, err)
				}
				generated = append(generated, c)
			}
		}
	}
	logging.Info("generate", "wrote %d postcode contracts to %s", len(generated), store.Dir())
	return generated, nil
}

// postcodeContract assembles one boundary test case.
func postcodeContract(rule taxonomy.PostcodeRule, country, postcode string, ordinal int, opts Options) *contract.Contract {
	testID := fmt.Sprintf("TC-SHIP-%03d", ordinal)
	return &contract.Contract{
		SchemaVersion:  contract.CurrentSchemaVersion,
		TestID:         testID,
		Name:           fmt.Sprintf("Shipping carrier for %s postcode %s", country, postcode),
		Category:       "shipping",
		Priority:       contract.PriorityP1,
		FunctionalArea: "shipping",
		Status:         contract.StatusImplemented,
		Author:         opts.Author,
		LastModified:   opts.Date.Format("2006-01-02"),
		Description: fmt.Sprintf(
			"Postcode %s in %s lies at the edge of the %s range (%s-%s) and must resolve to %q.",
			postcode, country, rule.CarrierCode, rule.PostcodeMin, rule.PostcodeMax, rule.Label),
		Preconditions: []string{
			"Storefront is reachable",
			"Freight-class test product is in stock",
		},
		Steps: []contract.Step{
			{Ordinal: 1, Action: "Add the freight-class test product to the cart",
				Expected: "The product appears in the cart"},
			{Ordinal: 2, Action: fmt.Sprintf("Register as guest with postcode %s in %s", postcode, country),
				Expected: "The checkout confirm step is reached"},
			{Ordinal: 3, Action: "Read the offered shipping methods",
				Expected: fmt.Sprintf("The list contains %q", rule.Label)},
		},
		Automation: contract.AutomationMapping{
			Frameworks: map[string]*contract.FrameworkRef{
				"browser": {File: "internal/engine/scenarios/shipping.go", Callable: "Ship001"},
			},
			Manual: true,
			Status: contract.AutomationAutomated,
		},
		TestData: []contract.TestDataEntry{
			{"type": "channel", "name": country},
			{"type": "product_ref", "ref": "product_freight"},
			{
				"type":           "postcode_case",
				"country":        country,
				"postcode":       postcode,
				"carrier_code":   rule.CarrierCode,
				"expected_label": rule.Label,
			},
		},
		Tags: []string{"shipping", "generated"},
	}
}
