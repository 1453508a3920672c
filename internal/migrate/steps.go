package migrate

import (
	"fmt"
	"sort"
	"strings"
)

// Options tune value injection during migration.
type Options struct {
	// Author is written into contracts that predate the author field.
	Author string
	// Date is the last_modified value injected for such contracts,
	// formatted YYYY-MM-DD.
	Date string
}

func (o Options) withDefaults() Options {
	if o.Author == "" {
		o.Author = "qa-archive"
	}
	if o.Date == "" {
		o.Date = "1970-01-01"
	}
	return o
}

// Step is one pure transition between adjacent schema versions.
type Step struct {
	From  string
	To    string
	Apply func(doc map[string]interface{}, opts Options) (map[string]interface{}, error)
}

// Steps is the ordered migration chain. A full migration composes the
// applicable suffix of this list.
var Steps = []Step{
	{From: "1", To: "2.0.0", Apply: stepV1toV2},
	{From: "2.0.0", To: "2.2.0", Apply: stepV2toV22},
	{From: "2.2.0", To: "3.0.0", Apply: stepV22toV30},
}

// stepV1toV2 lifts a legacy contract to v2.0.0.
//
// The flat expected_behavior list is distributed onto the steps: behaviors
// describing an end state become postconditions, the remaining behaviors
// fill the trailing steps that lack an expected observation, and any earlier
// uncovered step receives the category's stock text. Preconditions and
// cleanup are merged from the category defaults table (defaults first,
// author entries deduplicated after). Raw product ids become symbolic refs,
// an automation block is computed from the identifier prefix and lifecycle
// status, and the legacy expected_behavior field is removed.
func stepV1toV2(doc map[string]interface{}, opts Options) (map[string]interface{}, error) {
	opts = opts.withDefaults()
	out := cloneDocument(doc)

	out["schema_version"] = "2.0.0"
	if _, ok := out["author"].(string); !ok {
		out["author"] = opts.Author
	}
	if _, ok := out["last_modified"].(string); !ok {
		out["last_modified"] = opts.Date
	}

	category, _ := out["category"].(string)
	defaults := defaultsFor(category)

	behaviors := stringSlice(out["expected_behavior"])
	var stateBehaviors, actionBehaviors []string
	for _, b := range behaviors {
		if isStateDescribing(b) {
			stateBehaviors = append(stateBehaviors, b)
		} else {
			actionBehaviors = append(actionBehaviors, b)
		}
	}

	steps := mapSlice(out["steps"])
	var emptyIdx []int
	for i, step := range steps {
		if expected, _ := step["expected"].(string); expected == "" {
			emptyIdx = append(emptyIdx, i)
		}
	}

	// The last k action behaviors cover the last k uncovered steps.
	k := len(actionBehaviors)
	if k > len(emptyIdx) {
		k = len(emptyIdx)
	}
	for i := 0; i < k; i++ {
		stepIdx := emptyIdx[len(emptyIdx)-k+i]
		steps[stepIdx]["expected"] = actionBehaviors[len(actionBehaviors)-k+i]
	}
	for _, stepIdx := range emptyIdx[:len(emptyIdx)-k] {
		steps[stepIdx]["expected"] = defaults.StockExpected
	}

	if len(stateBehaviors) > 0 {
		out["postconditions"] = interfaceSlice(appendUnique(stringSlice(out["postconditions"]), stateBehaviors...))
	}

	out["preconditions"] = interfaceSlice(mergeDefaultsFirst(defaults.Preconditions, stringSlice(out["preconditions"])))
	if cleanup := mergeDefaultsFirst(defaults.Cleanup, stringSlice(out["cleanup"])); len(cleanup) > 0 {
		out["cleanup"] = interfaceSlice(cleanup)
	}

	rewriteProductRefs(out)

	testID, _ := out["test_id"].(string)
	status, _ := out["status"].(string)
	out["automation"] = computeAutomation(testID, status)

	delete(out, "expected_behavior")

	for i, step := range steps {
		if expected, _ := step["expected"].(string); expected == "" {
			return nil, fmt.Errorf("step %d has no expected observation after distribution", i+1)
		}
	}
	return out, nil
}

// stepV2toV22 adds the functional_area field derived from the identifier
// prefix. Serialization places it directly after priority.
func stepV2toV22(doc map[string]interface{}, _ Options) (map[string]interface{}, error) {
	out := cloneDocument(doc)
	out["schema_version"] = "2.2.0"
	if _, ok := out["functional_area"].(string); !ok {
		testID, _ := out["test_id"].(string)
		out["functional_area"] = functionalAreaForID(testID)
	}
	return out, nil
}

// stepV22toV30 turns the test_data object into the v3 heterogeneous entry
// list and moves scope.channels into it, one channel entry per country in
// the original order. Contracts without scope.channels get no channel
// entries synthesized.
func stepV22toV30(doc map[string]interface{}, _ Options) (map[string]interface{}, error) {
	out := cloneDocument(doc)
	out["schema_version"] = "3.0.0"

	var entries []interface{}

	if scope, ok := out["scope"].(map[string]interface{}); ok {
		for _, channel := range stringSlice(scope["channels"]) {
			entries = append(entries, map[string]interface{}{"type": "channel", "name": channel})
		}
		delete(scope, "channels")
		if len(scope) == 0 {
			delete(out, "scope")
		}
	}

	switch data := out["test_data"].(type) {
	case []interface{}:
		// Already a v3 list; keep its entries after any channels.
		entries = append(entries, data...)
	case map[string]interface{}:
		entries = append(entries, testDataObjectToEntries(data)...)
	}

	if entries == nil {
		entries = []interface{}{}
	}
	out["test_data"] = entries
	return out, nil
}

// testDataObjectToEntries flattens the v2 test_data object into typed
// entries: products first, then the remaining keys in sorted order.
func testDataObjectToEntries(data map[string]interface{}) []interface{} {
	var entries []interface{}

	for _, product := range mapSlice(data["products"]) {
		entry := map[string]interface{}{"type": "product_ref"}
		if ref, ok := product["ref"].(string); ok {
			entry["ref"] = ref
		}
		if qty, ok := product["quantity"]; ok {
			entry["quantity"] = qty
		}
		entries = append(entries, entry)
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		if key != "products" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		switch value := data[key].(type) {
		case string:
			entry := map[string]interface{}{"type": key}
			if key == "promo_code" {
				entry["code"] = value
			} else {
				entry["value"] = value
			}
			entries = append(entries, entry)
		case map[string]interface{}:
			entry := map[string]interface{}{"type": key}
			for field, fieldValue := range value {
				entry[field] = fieldValue
			}
			entries = append(entries, entry)
		default:
			entries = append(entries, map[string]interface{}{"type": key, "value": value})
		}
	}
	return entries
}

// computeAutomation derives the v2 automation block from the identifier
// prefix and the lifecycle status. Implemented contracts point at the
// browser scenario file of their functional area.
func computeAutomation(testID, status string) map[string]interface{} {
	automation := map[string]interface{}{
		"browser": nil,
		"manual":  true,
		"status":  "planned",
	}
	switch status {
	case "implemented", "passing", "failing":
		area := functionalAreaForID(testID)
		automation["browser"] = map[string]interface{}{
			"file":     "internal/engine/scenarios/" + area + ".go",
			"callable": callableForID(testID),
		}
		automation["status"] = "automated"
	}
	return automation
}

// callableForID derives the scenario callable name: TC-CART-001 -> Cart001.
func callableForID(testID string) string {
	parts := strings.Split(testID, "-")
	if len(parts) < 3 {
		return testID
	}
	area := strings.ToLower(parts[1])
	return strings.ToUpper(area[:1]) + area[1:] + parts[2]
}

// rewriteProductRefs replaces test_data.products[*].id with symbolic ref
// tokens.
func rewriteProductRefs(doc map[string]interface{}) {
	data, ok := doc["test_data"].(map[string]interface{})
	if !ok {
		return
	}
	for _, product := range mapSlice(data["products"]) {
		id, ok := product["id"].(string)
		if !ok {
			continue
		}
		product["ref"] = refForProductID(id)
		delete(product, "id")
	}
}

// mergeDefaultsFirst merges default entries before the author's own,
// deduplicating exact matches.
func mergeDefaultsFirst(defaults, authored []string) []string {
	return appendUnique(append([]string{}, defaults...), authored...)
}

func appendUnique(base []string, extra ...string) []string {
	seen := map[string]bool{}
	for _, v := range base {
		seen[v] = true
	}
	for _, v := range extra {
		if !seen[v] {
			base = append(base, v)
			seen[v] = true
		}
	}
	return base
}

// interfaceSlice converts strings to the JSON-decoded shape the schema
// validator accepts.
func interfaceSlice(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func stringSlice(value interface{}) []string {
	raw, ok := value.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func mapSlice(value interface{}) []map[string]interface{} {
	raw, ok := value.([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}

// cloneDocument deep-copies a document so steps stay pure.
func cloneDocument(doc map[string]interface{}) map[string]interface{} {
	return cloneValue(doc).(map[string]interface{})
}

func cloneValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			out[key] = cloneValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}
