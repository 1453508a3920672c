// Package scenarios holds the runnable browser scenarios contracts bind to
// through their automation mapping. Importing the package registers every
// callable with the engine.
package scenarios

import (
	"fmt"

	"shopharness/internal/contract"
	"shopharness/internal/engine"
	"shopharness/internal/pages"
)

// productPaths resolves the symbolic product refs of contract test data to
// storefront detail paths.
var productPaths = map[string]string{
	"product_default": "/detail/SW10001",
	"product_second":  "/detail/SW10002",
	"product_freight": "/detail/SW10178",
	"product_bulky":   "/detail/SW10239",
	"product_promo":   "/detail/SW10410",
}

// productPath resolves a ref, defaulting to the standard test product when
// the contract names none.
func productPath(ref string) (string, error) {
	if ref == "" {
		return productPaths["product_default"], nil
	}
	path, ok := productPaths[ref]
	if !ok {
		return "", fmt.Errorf("unknown product ref %q", ref)
	}
	return path, nil
}

// firstEntry returns the first test_data entry of the given type, nil when
// the contract carries none.
func firstEntry(c *contract.Contract, entryType string) contract.TestDataEntry {
	for _, entry := range c.TestData {
		if entry.Type() == entryType {
			return entry
		}
	}
	return nil
}

// contractProductPath reads the first product_ref entry of a contract and
// resolves it.
func contractProductPath(c *contract.Contract) (string, error) {
	entry := firstEntry(c, "product_ref")
	if entry == nil {
		return productPath("")
	}
	return productPath(entry.StringField("ref"))
}

// defaultAddress is the placeholder guest address scenarios use when the
// contract supplies none.
func defaultAddress(c *contract.Contract) pages.Address {
	addr := pages.Address{
		Salutation:   "Herr",
		FirstName:    "Max",
		LastName:     "Mustermann",
		Email:        "qa-harness@example.com",
		Street:       "Teststraße 1",
		Postcode:     "1010",
		City:         "Wien",
		CountryLabel: "Österreich",
	}
	entry := firstEntry(c, "address")
	if entry == nil {
		return addr
	}
	set := func(dst *string, field string) {
		if v := entry.StringField(field); v != "" {
			*dst = v
		}
	}
	set(&addr.Salutation, "salutation")
	set(&addr.FirstName, "first_name")
	set(&addr.LastName, "last_name")
	set(&addr.Email, "email")
	set(&addr.Street, "street")
	set(&addr.Postcode, "postcode")
	set(&addr.City, "city")
	set(&addr.CountryLabel, "country_label")
	return addr
}

// scenarioError wraps infrastructure errors that carry no verdict.
func scenarioError(op string, err error) error {
	return &engine.ScenarioError{Op: op, Err: err}
}
