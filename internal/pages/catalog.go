package pages

import (
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"

	"shopharness/internal/browser"
)

// ProductPage drives a single product detail page.
type ProductPage struct {
	Page
}

// NewProductPage binds a product view to a session.
func NewProductPage(session *browser.Session, baseURL string) *ProductPage {
	return &ProductPage{Page: newPage(session, baseURL, "product")}
}

// Open navigates to a product path, e.g. "/detail/sw10001".
func (p *ProductPage) Open(path string) error {
	if err := p.Navigate(path); err != nil {
		return err
	}
	return p.WaitVisible(".product-detail-buy")
}

// Name reads the displayed product title.
func (p *ProductPage) Name() (string, error) {
	return p.Text("h1.product-detail-name")
}

// Price reads the displayed unit price as a decimal.
func (p *ProductPage) Price() (decimal.Decimal, error) {
	label, err := p.Text(".product-detail-price")
	if err != nil {
		return decimal.Zero, err
	}
	amount, parseErr := ParsePrice(label)
	if parseErr != nil {
		return decimal.Zero, &PageError{Kind: FailureValidation, Page: p.name,
			Op: "read price", Detail: parseErr.Error()}
	}
	return amount, nil
}

// AddToCart sets the quantity and submits the buy form. The offcanvas cart
// opening confirms the item was accepted.
func (p *ProductPage) AddToCart(quantity int) error {
	if quantity < 1 {
		return &PageError{Kind: FailureValidation, Page: p.name, Op: "add to cart",
			Detail: fmt.Sprintf("quantity %d is below 1", quantity)}
	}
	if quantity > 1 {
		qtyValue := fmt.Sprintf("%d", quantity)
		// Newer storefronts render a number input, older ones a select.
		if err := p.Fill(".product-detail-quantity-input", qtyValue); err != nil {
			sel := fmt.Sprintf(`.product-detail-quantity-select option[value="%d"]`, quantity)
			err = p.session.Run(p.session.Opts().ElementTimeout,
				chromedp.SetAttributeValue(sel, "selected", "selected", chromedp.ByQuery))
			if err != nil {
				return failure(p.name, "set quantity", FailureSelectorNotFound, err, "")
			}
		}
	}
	if err := p.Click(".btn-buy"); err != nil {
		return err
	}
	return p.WaitVisible(".offcanvas .cart-item, .offcanvas-cart .cart-item")
}

// ToggleWishlist clicks the wishlist heart on the detail page.
func (p *ProductPage) ToggleWishlist() error {
	return p.Click(".product-wishlist-action, .product-detail-wishlist .product-wishlist-btn")
}
