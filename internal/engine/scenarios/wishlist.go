package scenarios

import (
	"context"

	"shopharness/internal/engine"
)

func init() {
	engine.Register("Wish001", Wish001)
}

// Wish001 puts the contract's product on the wishlist, moves it to the
// cart and verifies it left the wishlist.
func Wish001(ctx context.Context, env *engine.Env) error {
	path, err := contractProductPath(env.Contract)
	if err != nil {
		return scenarioError("resolve product", err)
	}

	product := newProductPage(env)
	if err := product.Open(path); err != nil {
		return err
	}
	if err := product.ToggleWishlist(); err != nil {
		return err
	}
	env.StepLog.Record(1, "add to wishlist", "ok", "")

	wishlist := newWishlistPage(env)
	if err := wishlist.Open(); err != nil {
		return err
	}
	items, err := wishlist.Items()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return engine.Failf(2, "wishlist holds the product", "wishlist is empty")
	}
	env.StepLog.Record(2, "verify wishlist", "ok", items[0])

	if err := wishlist.MoveToCart(0); err != nil {
		return err
	}
	env.StepLog.Record(3, "move to cart", "ok", "")

	cart := newCartPage(env)
	if err := cart.Open(); err != nil {
		return err
	}
	lineItems, err := cart.LineItems()
	if err != nil {
		return err
	}
	if len(lineItems) == 0 {
		return engine.Failf(3, "cart holds the moved product", "cart is empty")
	}
	return nil
}
