package scenarios

import (
	"context"

	"shopharness/internal/engine"
)

func init() {
	engine.Register("Cart001", Cart001)
	engine.Register("Cart002", Cart002)
	engine.Register("Cart003", Cart003)
}

// Cart001 adds the contract's product to the cart and verifies it appears
// as a line item with the right quantity.
func Cart001(ctx context.Context, env *engine.Env) error {
	path, err := contractProductPath(env.Contract)
	if err != nil {
		return scenarioError("resolve product", err)
	}

	product := newProductPage(env)
	if err := product.Open(path); err != nil {
		return err
	}
	env.StepLog.Record(1, "open product "+path, "ok", "")
	if err := product.AddToCart(1); err != nil {
		return err
	}
	env.StepLog.Record(2, "add to cart", "ok", "")

	cart := newCartPage(env)
	if err := cart.Open(); err != nil {
		return err
	}
	items, err := cart.LineItems()
	if err != nil {
		return err
	}
	if len(items) != 1 {
		return engine.Failf(3, "exactly one line item in the cart", "%d line items", len(items))
	}
	if items[0].Quantity != 1 {
		return engine.Failf(3, "line item quantity 1", "quantity %d", items[0].Quantity)
	}
	env.StepLog.Record(3, "verify cart contents", "ok", items[0].Name)
	return nil
}

// Cart002 changes the quantity of a cart line item and verifies the line
// total follows the unit price.
func Cart002(ctx context.Context, env *engine.Env) error {
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

	cart := newCartPage(env)
	if err := cart.Open(); err != nil {
		return err
	}
	if err := cart.ChangeQuantity(0, 3); err != nil {
		return err
	}
	env.StepLog.Record(2, "set quantity to 3", "ok", "")

	items, err := cart.LineItems()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return engine.Failf(3, "cart still holds the line item", "cart is empty")
	}
	item := items[0]
	if item.Quantity != 3 {
		return engine.Failf(3, "quantity 3", "quantity %d", item.Quantity)
	}
	expectedTotal := item.UnitPrice.Mul(three)
	if !item.Total.Equal(expectedTotal) {
		return engine.Failf(3, "line total "+expectedTotal.String(), "line total %s", item.Total)
	}
	env.StepLog.Record(3, "verify recalculated total", "ok", item.Total.String())
	return nil
}

// Cart003 applies the contract's promotion code, verifies the discount is
// visible, removes it again and verifies the totals return to their prior
// values.
func Cart003(ctx context.Context, env *engine.Env) error {
	promo := firstEntry(env.Contract, "promo_code")
	code := "QA-TEST"
	if promo != nil {
		if v := promo.StringField("code"); v != "" {
			code = v
		}
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

	cart := newCartPage(env)
	if err := cart.Open(); err != nil {
		return err
	}
	before, err := cart.Totals()
	if err != nil {
		return err
	}

	if err := cart.ApplyPromoCode(code); err != nil {
		return err
	}
	env.StepLog.Record(2, "apply promo code "+code, "ok", "")
	discounted, err := cart.Totals()
	if err != nil {
		return err
	}
	if !discounted.GrandTotal.LessThan(before.GrandTotal) {
		return engine.Failf(2, "grand total below "+before.GrandTotal.String(),
			"grand total %s", discounted.GrandTotal)
	}

	if err := cart.RemovePromoCode(); err != nil {
		return err
	}
	env.StepLog.Record(3, "remove promo code", "ok", "")
	after, err := cart.Totals()
	if err != nil {
		return err
	}
	if !after.GrandTotal.Equal(before.GrandTotal) {
		return engine.Failf(3, "grand total restored to "+before.GrandTotal.String(),
			"grand total %s", after.GrandTotal)
	}
	return nil
}
