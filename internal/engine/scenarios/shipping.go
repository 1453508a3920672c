package scenarios

import (
	"context"
	"errors"
	"strings"

	"shopharness/internal/engine"
	"shopharness/internal/taxonomy"
)

func init() {
	engine.Register("Ship001", Ship001)
}

// Ship001 runs a postcode shipping case: register as guest with the
// contract's postcode and verify the confirm step offers the carrier label
// the rule set assigns to that postcode.
func Ship001(ctx context.Context, env *engine.Env) error {
	entry := firstEntry(env.Contract, "postcode_case")
	if entry == nil {
		return scenarioError("read test data", errors.New("contract carries no postcode_case entry"))
	}
	country := entry.StringField("country")
	postcode := entry.StringField("postcode")
	if country == "" || postcode == "" {
		return scenarioError("read test data", errors.New("postcode_case entry lacks country or postcode"))
	}

	expected := entry.StringField("expected_label")
	if expected == "" {
		rule, err := taxonomy.DefaultRuleSet().Evaluate(country, postcode)
		if err != nil {
			return err
		}
		expected = rule.Label
	}

	profile, err := taxonomy.ProfileFor(taxonomy.DefaultCountryProfiles(), country)
	if err != nil {
		return scenarioError("resolve country profile", err)
	}

	path, err := contractProductPath(env.Contract)
	if err != nil {
		return scenarioError("resolve product", err)
	}
	product := newProductPage(env)
	if err := product.Open(path); err != nil {
		return err
	}
	if err := product.AddToCart(1); err != nil {
		return err
	}
	env.StepLog.Record(1, "add product to cart", "ok", "")

	addr := defaultAddress(env.Contract)
	addr.Postcode = postcode
	if len(profile.Cities) > 0 {
		addr.City = profile.Cities[0].City
	}
	addr.CountryLabel = profile.CountryLabel()
	register := newRegisterPage(env)
	if err := register.RegisterAsGuest(addr); err != nil {
		return err
	}
	env.StepLog.Record(2, "register as guest with postcode "+postcode, "ok", "")

	confirm := newConfirmPage(env)
	labels, err := confirm.ShippingLabels()
	if err != nil {
		return err
	}
	for _, label := range labels {
		if strings.Contains(label, expected) {
			env.StepLog.Record(3, "verify carrier label", "ok", label)
			return nil
		}
	}
	return engine.Failf(3, "shipping method "+expected+" offered",
		"offered methods: %s", strings.Join(labels, ", "))
}
