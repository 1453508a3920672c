package migrate

import "strings"

// stateKeywords is the closed list of phrases that mark an expected behavior
// as state-describing. A behavior matching any of these seeds a
// postcondition during the v1 to v2 migration. Keep this list next to the
// migration step; the step's semantics depend on it.
var stateKeywords = []string{
	"is displayed",
	"is shown",
	"is visible",
	"remains",
	"contains",
	"exists",
	"is empty",
	"is logged in",
	"is created",
	"stays",
}

// isStateDescribing reports whether a behavior phrase describes an observable
// end state rather than a step observation.
func isStateDescribing(behavior string) bool {
	lower := strings.ToLower(behavior)
	for _, keyword := range stateKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// categoryDefaults carries the stock values injected for a category when a
// v1 contract does not supply its own.
type categoryDefaults struct {
	// StockExpected fills step observations no behavior covers.
	StockExpected string
	// Preconditions are merged before the author's own entries.
	Preconditions []string
	// Cleanup is merged before the author's own entries.
	Cleanup []string
}

var defaultsByCategory = map[string]categoryDefaults{
	"cart": {
		StockExpected: "The action completes and the cart reflects the change",
		Preconditions: []string{"Cart is empty", "Shop frontend is reachable"},
		Cleanup:       []string{"Clear the cart"},
	},
	"checkout": {
		StockExpected: "The checkout advances without validation errors",
		Preconditions: []string{"Cart contains at least one product", "Shop frontend is reachable"},
		Cleanup:       []string{"Clear the cart"},
	},
	"account": {
		StockExpected: "The account page reflects the change",
		Preconditions: []string{"Shop frontend is reachable"},
		Cleanup:       []string{"Log out"},
	},
	"wishlist": {
		StockExpected: "The wishlist reflects the change",
		Preconditions: []string{"Shop frontend is reachable"},
		Cleanup:       []string{"Clear the wishlist"},
	},
	"search": {
		StockExpected: "The result list matches the query",
		Preconditions: []string{"Shop frontend is reachable"},
	},
	"shipping": {
		StockExpected: "The expected shipping option is offered",
		Preconditions: []string{"Cart contains at least one product", "Shop frontend is reachable"},
		Cleanup:       []string{"Clear the cart"},
	},
}

// genericDefaults apply when a category has no entry of its own.
var genericDefaults = categoryDefaults{
	StockExpected: "The action completes without errors",
	Preconditions: []string{"Shop frontend is reachable"},
}

func defaultsFor(category string) categoryDefaults {
	if d, ok := defaultsByCategory[strings.ToLower(category)]; ok {
		return d
	}
	return genericDefaults
}

// functionalAreaByPrefix maps the area token of a test identifier
// (TC-<AREA>-<NNN>) to the functional_area value introduced in v2.2.
var functionalAreaByPrefix = map[string]string{
	"CART":     "cart",
	"CHECK":    "checkout",
	"CHECKOUT": "checkout",
	"LOGIN":    "account",
	"ACCOUNT":  "account",
	"REG":      "account",
	"WISH":     "wishlist",
	"SEARCH":   "search",
	"SHIP":     "shipping",
	"PAY":      "checkout",
	"ORDER":    "checkout",
}

// functionalAreaForID derives the functional area from a TC-<AREA>-<NNN>
// identifier, falling back to the lowercased area token.
func functionalAreaForID(testID string) string {
	parts := strings.Split(testID, "-")
	if len(parts) < 3 {
		return "general"
	}
	if area, ok := functionalAreaByPrefix[parts[1]]; ok {
		return area
	}
	return strings.ToLower(parts[1])
}

// productRefs maps raw catalog product identifiers to the symbolic tokens
// the fixture table resolves at run time.
var productRefs = map[string]string{
	"SW10001": "product_default",
	"SW10002": "product_second",
	"SW10178": "product_freight",
	"SW10239": "product_bulky",
	"SW10410": "product_promo",
}

// refForProductID resolves a raw product id to its symbolic token. Unknown
// ids get a deterministic sku_ token so the migration stays total.
func refForProductID(id string) string {
	if ref, ok := productRefs[id]; ok {
		return ref
	}
	return "sku_" + strings.ToLower(id)
}
