package massorder

import (
	"fmt"
	"hash/fnv"
	"time"

	"shopharness/internal/pages"
	"shopharness/internal/taxonomy"
)

// Customer is one entry of the registered-customer pool.
type Customer struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Order is one scheduled checkout run.
type Order struct {
	// Ordinal is the one-based position in the campaign.
	Ordinal int
	Type    ScenarioType
	Address pages.Address
	// Customer is set for registered scenarios with a non-empty pool.
	Customer *Customer
	// ProductPaths are the storefront detail paths to add before checkout.
	ProductPaths []string
}

// SynthesizeAddress builds the deterministic per-order guest address. Email
// and surname incorporate the campaign timestamp and the order ordinal so
// every order is traceable in the shop backend; city and postcode are drawn
// uniformly from the country pool, keyed by the ordinal so a re-run with
// the same timestamp reproduces the same address.
func SynthesizeAddress(profile taxonomy.CountryProfile, stamp time.Time, ordinal int) pages.Address {
	tag := fmt.Sprintf("%s-%04d", stamp.UTC().Format("20060102-150405"), ordinal)

	city := taxonomy.CityFixture{City: "Wien", Postcode: "1010"}
	if len(profile.Cities) > 0 {
		h := fnv.New32a()
		fmt.Fprintf(h, "%s/%d", profile.Code, ordinal)
		city = profile.Cities[int(h.Sum32())%len(profile.Cities)]
	}

	return pages.Address{
		Salutation:   "Herr",
		FirstName:    "Lasttest",
		LastName:     "Besteller-" + tag,
		Email:        fmt.Sprintf("masstest+%s@example.com", tag),
		Street:       fmt.Sprintf("Teststraße %d", ordinal),
		Postcode:     city.Postcode,
		City:         city.City,
		CountryLabel: profile.CountryLabel(),
	}
}

// pickCustomer rotates through the pool by ordinal. The pool is read-only
// during a campaign; two concurrent orders may share a customer.
func pickCustomer(pool []Customer, ordinal int) *Customer {
	if len(pool) == 0 {
		return nil
	}
	return &pool[ordinal%len(pool)]
}
