package taxonomy

import (
	"fmt"
	"sort"
	"strings"

	"shopharness/internal/contract"
)

// CityFixture is one city of a country's address pool.
type CityFixture struct {
	City     string `yaml:"city"`
	Postcode string `yaml:"postcode"`
}

// CountryProfile describes one storefront country: its URL path prefix, the
// address fixture pool mass runs draw from, and the payment aliases the
// country permits.
type CountryProfile struct {
	Code           string        `yaml:"code"`
	PathPrefix     string        `yaml:"path_prefix"`
	Cities         []CityFixture `yaml:"cities"`
	PaymentAliases []string      `yaml:"payment_aliases"`
}

// DefaultCountryProfiles returns the built-in country table.
func DefaultCountryProfiles() map[string]CountryProfile {
	return map[string]CountryProfile{
		"AT": {
			Code:       "AT",
			PathPrefix: "/",
			Cities: []CityFixture{
				{City: "Wien", Postcode: "1010"},
				{City: "Graz", Postcode: "8010"},
				{City: "Linz", Postcode: "4020"},
				{City: "Salzburg", Postcode: "5020"},
				{City: "Innsbruck", Postcode: "6020"},
			},
			PaymentAliases: []string{"invoice", "prepayment", "credit_card", "paypal"},
		},
		"DE": {
			Code:       "DE",
			PathPrefix: "/de-de/",
			Cities: []CityFixture{
				{City: "Berlin", Postcode: "10115"},
				{City: "Hamburg", Postcode: "20095"},
				{City: "München", Postcode: "80331"},
				{City: "Köln", Postcode: "50667"},
			},
			PaymentAliases: []string{"invoice", "prepayment", "paypal"},
		},
		"CH": {
			Code:       "CH",
			PathPrefix: "/de-ch/",
			Cities: []CityFixture{
				{City: "Zürich", Postcode: "8001"},
				{City: "Bern", Postcode: "3011"},
				{City: "Basel", Postcode: "4051"},
			},
			PaymentAliases: []string{"prepayment", "credit_card"},
		},
	}
}

// countryLabels are the localized option texts the storefront's country
// select renders.
var countryLabels = map[string]string{
	"AT": "Österreich",
	"DE": "Deutschland",
	"CH": "Schweiz",
}

// CountryLabel returns the localized label of the profile's country as the
// storefront renders it in address forms.
func (p CountryProfile) CountryLabel() string {
	if label, ok := countryLabels[p.Code]; ok {
		return label
	}
	return p.Code
}

// StorefrontBase joins the shop base URL with the country's path prefix,
// yielding the root every navigation of that country starts from.
func (p CountryProfile) StorefrontBase(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	prefix := strings.Trim(p.PathPrefix, "/")
	if prefix == "" {
		return base
	}
	return base + "/" + prefix
}

// ProfileFor returns the profile of a country code.
func ProfileFor(profiles map[string]CountryProfile, code string) (CountryProfile, error) {
	profile, ok := profiles[code]
	if !ok {
		codes := make([]string, 0, len(profiles))
		for c := range profiles {
			codes = append(codes, c)
		}
		sort.Strings(codes)
		return CountryProfile{}, &contract.InputError{
			Source: "country profiles",
			Issues: []contract.Issue{{Path: code, Message: fmt.Sprintf("unknown country, configured: %v", codes)}},
		}
	}
	return profile, nil
}
