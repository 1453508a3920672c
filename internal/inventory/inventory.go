// Package inventory reads the human-maintained test inventory file,
// cross-checks it against itself and the contract store, and renders a
// status report.
package inventory

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"shopharness/internal/contract"
)

// Category is one declared test area of the inventory.
type Category struct {
	// Count is the declared number of tests: a single integer ("4") or an
	// inclusive range ("2-5").
	Count       string `yaml:"count"`
	Implemented int    `yaml:"implemented"`
	Priority    string `yaml:"priority"`
	Description string `yaml:"description"`
}

// TestEntry is one test the inventory tracks.
type TestEntry struct {
	ID        string   `yaml:"id"`
	Category  string   `yaml:"category"`
	Status    string   `yaml:"status"`
	Countries []string `yaml:"countries"`
}

// Inventory is the parsed inventory file.
type Inventory struct {
	// TotalImplemented is the declared top-level count of implemented
	// tests; validation checks it against the test list.
	TotalImplemented int                 `yaml:"total_implemented"`
	Categories       map[string]Category `yaml:"categories"`
	Tests            []TestEntry         `yaml:"tests"`
}

// Load reads and parses an inventory file.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &contract.EnvironmentError{Op: "read inventory", Err: err}
	}
	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, &contract.InputError{Source: path, Err: err}
	}
	return &inv, nil
}

// Validation is the outcome of a cross-check: hard issues fail the
// synthesis, warnings only show up in the report.
type Validation struct {
	Issues   []contract.Issue
	Warnings []string
}

// OK reports whether the inventory passed without hard issues.
func (v *Validation) OK() bool { return len(v.Issues) == 0 }

// countBounds parses a declared count: "4" yields [4,4], "2-5" yields
// [2,5].
func countBounds(declared string) (min, max int, err error) {
	declared = strings.TrimSpace(declared)
	if lo, hi, ok := strings.Cut(declared, "-"); ok {
		min, err = strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return 0, 0, fmt.Errorf("bad range %q", declared)
		}
		max, err = strconv.Atoi(strings.TrimSpace(hi))
		if err != nil || max < min {
			return 0, 0, fmt.Errorf("bad range %q", declared)
		}
		return min, max, nil
	}
	n, err := strconv.Atoi(declared)
	if err != nil {
		return 0, 0, fmt.Errorf("bad count %q", declared)
	}
	return n, n, nil
}

// Validate cross-checks the inventory: unique identifiers, declared
// categories, the top-level and per-category implemented tallies (statuses
// implemented, passing and failing count), and per-category totals (exact
// for single integers, inclusive for ranges). Unused categories and
// missing-status categories without tests produce warnings.
func (inv *Inventory) Validate() *Validation {
	v := &Validation{}
	addIssue := func(path, format string, args ...interface{}) {
		v.Issues = append(v.Issues, contract.Issue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	seen := map[string]bool{}
	perCategory := map[string]int{}
	implementedPerCategory := map[string]int{}
	implemented := 0
	for _, test := range inv.Tests {
		if seen[test.ID] {
			addIssue(test.ID, "duplicate test identifier")
		}
		seen[test.ID] = true

		if _, declared := inv.Categories[test.Category]; !declared {
			addIssue(test.ID, "category %q is not declared", test.Category)
		}
		perCategory[test.Category]++
		if test.Status == "implemented" || test.Status == "passing" || test.Status == "failing" {
			implemented++
			implementedPerCategory[test.Category]++
		}
	}

	if implemented != inv.TotalImplemented {
		addIssue("total_implemented", "declared %d implemented tests, found %d",
			inv.TotalImplemented, implemented)
	}

	names := make([]string, 0, len(inv.Categories))
	for name := range inv.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		category := inv.Categories[name]
		min, max, err := countBounds(category.Count)
		if err != nil {
			addIssue("categories."+name+".count", "%v", err)
			continue
		}
		actual := perCategory[name]
		if actual < min || actual > max {
			addIssue("categories."+name, "declares %s tests, found %d", category.Count, actual)
		}
		if category.Implemented != implementedPerCategory[name] {
			addIssue("categories."+name+".implemented", "declares %d implemented tests, found %d",
				category.Implemented, implementedPerCategory[name])
		}
		if actual == 0 {
			if strings.EqualFold(category.Priority, "missing") || min == 0 {
				v.Warnings = append(v.Warnings, fmt.Sprintf("category %q has no tests yet", name))
			} else {
				v.Warnings = append(v.Warnings, fmt.Sprintf("category %q is declared but unused", name))
			}
		}
	}

	sort.Slice(v.Issues, func(i, j int) bool { return v.Issues[i].Path < v.Issues[j].Path })
	return v
}

// CrossCheckStore warns about tests the inventory tracks that have no
// contract in the store, and contracts the inventory does not track.
func (inv *Inventory) CrossCheckStore(contracts []*contract.Contract) []string {
	var warnings []string

	inStore := map[string]bool{}
	for _, c := range contracts {
		inStore[c.TestID] = true
	}
	tracked := map[string]bool{}
	for _, test := range inv.Tests {
		tracked[test.ID] = true
		if !inStore[test.ID] && test.Status != "missing" {
			warnings = append(warnings, fmt.Sprintf("inventory lists %s but the store has no contract", test.ID))
		}
	}
	for _, c := range contracts {
		if !tracked[c.TestID] {
			warnings = append(warnings, fmt.Sprintf("store holds %s but the inventory does not track it", c.TestID))
		}
	}
	sort.Strings(warnings)
	return warnings
}
