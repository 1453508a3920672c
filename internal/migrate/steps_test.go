package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopharness/internal/contract"
)

func docFromJSON(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	doc, err := contract.DecodeDocument([]byte(raw))
	require.NoError(t, err)
	return doc
}

const legacyCartContract = `{
  "test_id": "TC-CART-003",
  "name": "Add two products",
  "category": "cart",
  "priority": "P1",
  "status": "implemented",
  "description": "Adds products and checks the cart state.",
  "steps": [
    {"step": 1, "action": "Open the first product page and add it"},
    {"step": 2, "action": "Open the second product page and add it"}
  ],
  "expected_behavior": [
    "Cart icon is displayed in the header",
    "Cart total remains consistent with the line items",
    "Both products appear in the cart overview"
  ],
  "test_data": {
    "products": [
      {"id": "SW10001", "quantity": 1},
      {"id": "SW10002", "quantity": 2}
    ]
  }
}`

func TestV1ToV2DistributesBehaviors(t *testing.T) {
	doc := docFromJSON(t, legacyCartContract)

	out, err := stepV1toV2(doc, Options{Author: "qa-team", Date: "2026-01-15"})
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", out["schema_version"])
	assert.Equal(t, "qa-team", out["author"])
	assert.Equal(t, "2026-01-15", out["last_modified"])

	steps := mapSlice(out["steps"])
	require.Len(t, steps, 2)
	// Only one behavior is a step observation; it covers the last empty
	// slot, the earlier slot falls back to the category stock text.
	assert.Equal(t, defaultsByCategory["cart"].StockExpected, steps[0]["expected"])
	assert.Equal(t, "Both products appear in the cart overview", steps[1]["expected"])

	// State-describing behaviors become postconditions, in order.
	assert.Equal(t,
		[]string{"Cart icon is displayed in the header", "Cart total remains consistent with the line items"},
		stringSlice(out["postconditions"]))

	_, hasLegacy := out["expected_behavior"]
	assert.False(t, hasLegacy, "expected_behavior must be removed")
}

func TestV1ToV2MergesCategoryDefaults(t *testing.T) {
	doc := docFromJSON(t, legacyCartContract)
	doc["preconditions"] = []interface{}{"Cart is empty", "Customer speaks German"}

	out, err := stepV1toV2(doc, Options{})
	require.NoError(t, err)

	// Defaults first, author entries deduplicated after.
	assert.Equal(t,
		[]string{"Cart is empty", "Shop frontend is reachable", "Customer speaks German"},
		stringSlice(out["preconditions"]))
	assert.Equal(t, []string{"Clear the cart"}, stringSlice(out["cleanup"]))
}

func TestV1ToV2RewritesProductRefs(t *testing.T) {
	doc := docFromJSON(t, legacyCartContract)

	out, err := stepV1toV2(doc, Options{})
	require.NoError(t, err)

	data := out["test_data"].(map[string]interface{})
	products := mapSlice(data["products"])
	require.Len(t, products, 2)
	assert.Equal(t, "product_default", products[0]["ref"])
	assert.Equal(t, "product_second", products[1]["ref"])
	_, hasID := products[0]["id"]
	assert.False(t, hasID)
}

func TestV1ToV2ComputesAutomation(t *testing.T) {
	doc := docFromJSON(t, legacyCartContract)

	out, err := stepV1toV2(doc, Options{})
	require.NoError(t, err)

	automation := out["automation"].(map[string]interface{})
	assert.Equal(t, "automated", automation["status"])
	ref := automation["browser"].(map[string]interface{})
	assert.Equal(t, "internal/engine/scenarios/cart.go", ref["file"])
	assert.Equal(t, "Cart003", ref["callable"])

	// A contract that is only defined gets no framework reference.
	defined := docFromJSON(t, legacyCartContract)
	defined["status"] = "defined"
	out, err = stepV1toV2(defined, Options{})
	require.NoError(t, err)
	automation = out["automation"].(map[string]interface{})
	assert.Nil(t, automation["browser"])
	assert.Equal(t, "planned", automation["status"])
}

func TestV1ToV2PreservesExplicitExpected(t *testing.T) {
	doc := docFromJSON(t, `{
  "test_id": "TC-WISH-002",
  "name": "Wishlist add",
  "category": "wishlist",
  "priority": "P2",
  "status": "defined",
  "description": "",
  "steps": [
    {"step": 1, "action": "Open product", "expected": "Product page loads"},
    {"step": 2, "action": "Click the wishlist toggle"}
  ],
  "expected_behavior": ["Product can be added"]
}`)

	out, err := stepV1toV2(doc, Options{})
	require.NoError(t, err)
	steps := mapSlice(out["steps"])
	assert.Equal(t, "Product page loads", steps[0]["expected"])
	assert.Equal(t, "Product can be added", steps[1]["expected"])
}

func TestV2ToV22AddsFunctionalArea(t *testing.T) {
	doc := map[string]interface{}{
		"schema_version": "2.0.0",
		"test_id":        "TC-LOGIN-004",
	}
	out, err := stepV2toV22(doc, Options{})
	require.NoError(t, err)
	assert.Equal(t, "2.2.0", out["schema_version"])
	assert.Equal(t, "account", out["functional_area"])

	// An already-present area is kept.
	doc["functional_area"] = "custom"
	out, err = stepV2toV22(doc, Options{})
	require.NoError(t, err)
	assert.Equal(t, "custom", out["functional_area"])
}

func TestV22ToV30MovesChannels(t *testing.T) {
	doc := docFromJSON(t, `{
  "schema_version": "2.2.0",
  "test_id": "TC-CART-003",
  "scope": {"channels": ["AT", "DE", "CH"]},
  "test_data": {
    "products": [{"ref": "product_default", "quantity": 1}],
    "promo_code": "SOMMER10"
  }
}`)

	out, err := stepV22toV30(doc, Options{})
	require.NoError(t, err)
	assert.Equal(t, "3.0.0", out["schema_version"])
	_, hasScope := out["scope"]
	assert.False(t, hasScope)

	entries := out["test_data"].([]interface{})
	require.Len(t, entries, 5)
	assert.Equal(t, map[string]interface{}{"type": "channel", "name": "AT"}, entries[0])
	assert.Equal(t, map[string]interface{}{"type": "channel", "name": "DE"}, entries[1])
	assert.Equal(t, map[string]interface{}{"type": "channel", "name": "CH"}, entries[2])
	product := entries[3].(map[string]interface{})
	assert.Equal(t, "product_ref", product["type"])
	assert.Equal(t, "product_default", product["ref"])
	promo := entries[4].(map[string]interface{})
	assert.Equal(t, "promo_code", promo["type"])
	assert.Equal(t, "SOMMER10", promo["code"])
}

func TestV22ToV30WithoutChannels(t *testing.T) {
	doc := docFromJSON(t, `{
  "schema_version": "2.2.0",
  "test_id": "TC-CART-003",
  "test_data": {"products": [{"ref": "product_default"}]}
}`)

	out, err := stepV22toV30(doc, Options{})
	require.NoError(t, err)
	entries := out["test_data"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, "product_ref", entries[0].(map[string]interface{})["type"])
}

func TestStepsArePure(t *testing.T) {
	doc := docFromJSON(t, legacyCartContract)
	before := cloneDocument(doc)

	_, err := stepV1toV2(doc, Options{})
	require.NoError(t, err)
	assert.Equal(t, before, doc, "input document must not be mutated")
}

func TestFunctionalAreaForID(t *testing.T) {
	cases := map[string]string{
		"TC-CART-001":  "cart",
		"TC-CHECK-010": "checkout",
		"TC-WISH-004":  "wishlist",
		"TC-SHIP-002":  "shipping",
		"TC-XYZQ-001":  "xyzq",
		"garbage":      "general",
	}
	for id, want := range cases {
		assert.Equal(t, want, functionalAreaForID(id), id)
	}
}
