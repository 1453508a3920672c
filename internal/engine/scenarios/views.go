package scenarios

import (
	"github.com/shopspring/decimal"

	"shopharness/internal/engine"
	"shopharness/internal/pages"
)

var three = decimal.NewFromInt(3)

func newProductPage(env *engine.Env) *pages.ProductPage {
	return pages.NewProductPage(env.Session, env.BaseURL)
}

func newCartPage(env *engine.Env) *pages.CartPage {
	return pages.NewCartPage(env.Session, env.BaseURL)
}

func newRegisterPage(env *engine.Env) *pages.RegisterPage {
	return pages.NewRegisterPage(env.Session, env.BaseURL)
}

func newConfirmPage(env *engine.Env) *pages.ConfirmPage {
	return pages.NewConfirmPage(env.Session, env.BaseURL, env.Taxonomy)
}

func newAccountPage(env *engine.Env) *pages.AccountPage {
	return pages.NewAccountPage(env.Session, env.BaseURL)
}

func newWishlistPage(env *engine.Env) *pages.WishlistPage {
	return pages.NewWishlistPage(env.Session, env.BaseURL)
}
