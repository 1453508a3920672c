package pages

import (
	"fmt"

	"github.com/chromedp/chromedp"

	"shopharness/internal/browser"
)

// WishlistPage drives the wishlist overview.
type WishlistPage struct {
	Page
}

// NewWishlistPage binds the wishlist view to a session.
func NewWishlistPage(session *browser.Session, baseURL string) *WishlistPage {
	return &WishlistPage{Page: newPage(session, baseURL, "wishlist")}
}

// Open navigates to the wishlist.
func (p *WishlistPage) Open() error {
	if err := p.Navigate("/wishlist"); err != nil {
		return err
	}
	return p.WaitVisible(".cms-listing-row, .wishlist-listing, .wishlist-page")
}

// Items enumerates the product names on the wishlist.
func (p *WishlistPage) Items() ([]string, error) {
	var names []string
	err := p.session.Run(p.session.Opts().ElementTimeout,
		chromedp.Evaluate(`Array.from(document.querySelectorAll('.product-box .product-name'))
			.map(el => el.textContent.trim())`, &names))
	if err != nil {
		return nil, failure(p.name, "enumerate items", FailureSelectorNotFound, err, "")
	}
	return names, nil
}

// Remove deletes the wishlist entry at the given index.
func (p *WishlistPage) Remove(index int) error {
	selector := fmt.Sprintf(
		".product-box:nth-of-type(%d) .product-wishlist-remove, .product-box:nth-of-type(%d) .product-wishlist-btn",
		index+1, index+1)
	return p.Click(selector)
}

// MoveToCart adds the wishlist entry at the given index to the cart.
func (p *WishlistPage) MoveToCart(index int) error {
	selector := fmt.Sprintf(".product-box:nth-of-type(%d) .btn-buy", index+1)
	if err := p.Click(selector); err != nil {
		return err
	}
	return p.WaitVisible(".offcanvas .cart-item, .offcanvas-cart .cart-item")
}
