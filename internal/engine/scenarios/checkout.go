package scenarios

import (
	"context"
	"errors"

	"shopharness/internal/engine"
	"shopharness/internal/pages"
)

func init() {
	engine.Register("Checkout001", Checkout001)
	engine.Register("Checkout002", Checkout002)
}

// paymentAlias reads the contract's payment alias, defaulting to invoice.
func paymentAlias(env *engine.Env) string {
	if entry := firstEntry(env.Contract, "payment"); entry != nil {
		if alias := entry.StringField("alias"); alias != "" {
			return alias
		}
	}
	return "invoice"
}

// Checkout001 drives a full guest checkout with the contract's product and
// payment method and verifies an order number is issued.
func Checkout001(ctx context.Context, env *engine.Env) error {
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

	register := newRegisterPage(env)
	if err := register.RegisterAsGuest(defaultAddress(env.Contract)); err != nil {
		return err
	}
	env.StepLog.Record(2, "register as guest", "ok", "")

	confirm := newConfirmPage(env)
	alias := paymentAlias(env)
	if err := confirm.SelectPayment(alias); err != nil {
		return err
	}
	env.StepLog.Record(3, "select payment "+alias, "ok", "")
	if err := confirm.AcceptTerms(); err != nil {
		return err
	}
	receipt, err := confirm.PlaceOrder()
	if err != nil {
		return err
	}
	if receipt.OrderNumber == "" {
		return engine.Failf(4, "finish page shows an order number", "no order number found")
	}
	env.StepLog.Record(4, "place order", "ok", receipt.OrderNumber)
	return nil
}

// Checkout002 verifies the empty-cart guard: navigating straight to the
// confirm step without a cart must redirect away.
func Checkout002(ctx context.Context, env *engine.Env) error {
	confirm := newConfirmPage(env)
	err := confirm.Open()
	if err == nil {
		return engine.Failf(1, "redirect away from confirm with an empty cart",
			"confirm step rendered")
	}
	var pageErr *pages.PageError
	if errors.As(err, &pageErr) && pageErr.Kind == pages.FailureUnexpectedURL {
		env.StepLog.Record(1, "open confirm with empty cart", "redirected", pageErr.Detail)
		return nil
	}
	return err
}
