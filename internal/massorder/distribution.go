// Package massorder schedules many concurrent checkout runs against a
// storefront and aggregates the outcome into campaign statistics.
package massorder

import (
	"fmt"
	"sort"

	"shopharness/internal/contract"
)

// ScenarioType names one shape of checkout a campaign can drive.
type ScenarioType string

const (
	GuestPost         ScenarioType = "guest_post"
	GuestFreight      ScenarioType = "guest_freight"
	RegisteredPost    ScenarioType = "registered_post"
	RegisteredFreight ScenarioType = "registered_freight"
	MultiProduct      ScenarioType = "multi_product"
)

// scenarioTypes is the closed set, in report order.
var scenarioTypes = []ScenarioType{
	GuestPost, GuestFreight, RegisteredPost, RegisteredFreight, MultiProduct,
}

// ScenarioTypes returns the closed set of scenario types in report order.
func ScenarioTypes() []ScenarioType {
	return append([]ScenarioType{}, scenarioTypes...)
}

// Registered reports whether the scenario type needs a pooled customer.
func (t ScenarioType) Registered() bool {
	return t == RegisteredPost || t == RegisteredFreight
}

// guestFallback maps a registered scenario to its guest equivalent, used
// when the customer pool is empty.
func (t ScenarioType) guestFallback() ScenarioType {
	switch t {
	case RegisteredPost:
		return GuestPost
	case RegisteredFreight:
		return GuestFreight
	default:
		return t
	}
}

// Distribution assigns an order count to each scenario type.
type Distribution map[ScenarioType]int

// DefaultDistribution spreads a total across the scenario types, weighting
// the plain guest checkout highest.
func DefaultDistribution(total int) Distribution {
	if total <= 0 {
		return Distribution{}
	}
	dist := Distribution{
		GuestPost:         total * 4 / 10,
		GuestFreight:      total * 2 / 10,
		RegisteredPost:    total * 2 / 10,
		RegisteredFreight: total / 10,
		MultiProduct:      total / 10,
	}
	// Rounding remainder goes to the plain guest checkout.
	assigned := 0
	for _, n := range dist {
		assigned += n
	}
	dist[GuestPost] += total - assigned
	return dist
}

// Validate rejects unknown scenario types and negative counts.
func (d Distribution) Validate() error {
	var issues []contract.Issue
	known := map[ScenarioType]bool{}
	for _, t := range scenarioTypes {
		known[t] = true
	}
	for t, n := range d {
		if !known[t] {
			issues = append(issues, contract.Issue{
				Path: string(t), Message: "unknown scenario type"})
		}
		if n < 0 {
			issues = append(issues, contract.Issue{
				Path: string(t), Message: fmt.Sprintf("negative count %d", n)})
		}
	}
	if len(issues) > 0 {
		sort.Slice(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
		return &contract.InputError{Source: "mass order distribution", Issues: issues}
	}
	return nil
}

// Total sums the order counts.
func (d Distribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// orders expands the distribution into a flat, deterministic task list:
// scenario types in report order, counts consecutive.
func (d Distribution) orders() []ScenarioType {
	tasks := make([]ScenarioType, 0, d.Total())
	for _, t := range scenarioTypes {
		for i := 0; i < d[t]; i++ {
			tasks = append(tasks, t)
		}
	}
	return tasks
}
