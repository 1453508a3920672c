package taxonomy

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"shopharness/internal/contract"
)

// PostcodeRule maps an inclusive postcode range of one country to the
// carrier that serves it and the display label the storefront must offer.
// Range bounds are zero-padded strings of equal width and compared
// lexicographically.
type PostcodeRule struct {
	Country     string `yaml:"country"`
	Carrier     string `yaml:"carrier"`
	CarrierCode string `yaml:"carrier_code"`
	PostcodeMin string `yaml:"postcode_min"`
	PostcodeMax string `yaml:"postcode_max"`
	Label       string `yaml:"label"`
}

// Contains reports whether the rule's range covers the postcode. The
// postcode is left-padded to the range width before comparison.
func (r PostcodeRule) Contains(postcode string) bool {
	padded := padPostcode(postcode, len(r.PostcodeMin))
	return padded >= r.PostcodeMin && padded <= r.PostcodeMax
}

func padPostcode(postcode string, width int) string {
	if len(postcode) >= width {
		return postcode
	}
	return strings.Repeat("0", width-len(postcode)) + postcode
}

// RuleSet is the loaded postcode rule table.
type RuleSet struct {
	Rules []PostcodeRule `yaml:"rules"`
}

// LoadRuleSet reads a rule file and verifies the per-country disjointness
// invariant.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &contract.EnvironmentError{Op: "read postcode rules", Err: err}
	}
	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, &contract.InputError{Source: path, Err: err}
	}
	if err := set.CheckDisjoint(); err != nil {
		return nil, err
	}
	return &set, nil
}

// DefaultRuleSet returns the built-in Austrian and German carrier table used
// when no rule file is configured.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{Rules: []PostcodeRule{
		{Country: "AT", Carrier: "Fink Spedition", CarrierCode: "FINK", PostcodeMin: "1000", PostcodeMax: "2699", Label: "Spedition Fink"},
		{Country: "AT", Carrier: "Gebrüder Weiss", CarrierCode: "GW", PostcodeMin: "2700", PostcodeMax: "5999", Label: "Spedition Gebrüder Weiss"},
		{Country: "AT", Carrier: "LKW Walter", CarrierCode: "LKWW", PostcodeMin: "6000", PostcodeMax: "9999", Label: "Spedition LKW Walter"},
		{Country: "DE", Carrier: "Dachser", CarrierCode: "DACH", PostcodeMin: "01000", PostcodeMax: "49999", Label: "Spedition Dachser"},
		{Country: "DE", Carrier: "Schenker", CarrierCode: "SCHE", PostcodeMin: "50000", PostcodeMax: "99999", Label: "Spedition Schenker"},
	}}
}

// CheckDisjoint verifies that no two carriers of the same country claim an
// overlapping range. An overlap is a data error, not a test failure.
func (s *RuleSet) CheckDisjoint() error {
	byCountry := map[string][]PostcodeRule{}
	for _, rule := range s.Rules {
		byCountry[rule.Country] = append(byCountry[rule.Country], rule)
	}

	var issues []contract.Issue
	countries := make([]string, 0, len(byCountry))
	for country := range byCountry {
		countries = append(countries, country)
	}
	sort.Strings(countries)

	for _, country := range countries {
		rules := byCountry[country]
		sorted := make([]PostcodeRule, len(rules))
		copy(sorted, rules)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].PostcodeMin < sorted[j].PostcodeMin })
		for i := 1; i < len(sorted); i++ {
			if sorted[i].PostcodeMin <= sorted[i-1].PostcodeMax {
				issues = append(issues, contract.Issue{
					Path: country,
					Message: fmt.Sprintf("carrier %s range %s-%s overlaps carrier %s range %s-%s",
						sorted[i-1].CarrierCode, sorted[i-1].PostcodeMin, sorted[i-1].PostcodeMax,
						sorted[i].CarrierCode, sorted[i].PostcodeMin, sorted[i].PostcodeMax),
				})
			}
		}
	}
	if len(issues) > 0 {
		return &contract.InputError{Source: "postcode rules", Issues: issues}
	}
	return nil
}

// Evaluate finds the unique rule covering (country, postcode) and returns
// it. Zero matches reports an uncovered postcode, two or more report an
// overlap; both are input errors.
func (s *RuleSet) Evaluate(country, postcode string) (*PostcodeRule, error) {
	var matches []PostcodeRule
	for _, rule := range s.Rules {
		if rule.Country == country && rule.Contains(postcode) {
			matches = append(matches, rule)
		}
	}
	switch len(matches) {
	case 0:
		return nil, &contract.InputError{
			Source: "postcode rules",
			Issues: []contract.Issue{{Path: country, Message: fmt.Sprintf("uncovered postcode %s", postcode)}},
		}
	case 1:
		rule := matches[0]
		return &rule, nil
	default:
		codes := make([]string, len(matches))
		for i, m := range matches {
			codes[i] = m.CarrierCode
		}
		return nil, &contract.InputError{
			Source: "postcode rules",
			Issues: []contract.Issue{{Path: country, Message: fmt.Sprintf("postcode %s matched by %d carriers: %s", postcode, len(matches), strings.Join(codes, ", "))}},
		}
	}
}

// Countries lists the countries with at least one rule, sorted.
func (s *RuleSet) Countries() []string {
	seen := map[string]bool{}
	var countries []string
	for _, rule := range s.Rules {
		if !seen[rule.Country] {
			seen[rule.Country] = true
			countries = append(countries, rule.Country)
		}
	}
	sort.Strings(countries)
	return countries
}

// ByCountry returns the rules of one country in range order.
func (s *RuleSet) ByCountry(country string) []PostcodeRule {
	var rules []PostcodeRule
	for _, rule := range s.Rules {
		if rule.Country == country {
			rules = append(rules, rule)
		}
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].PostcodeMin < rules[j].PostcodeMin })
	return rules
}
