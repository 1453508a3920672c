package pages

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/shopspring/decimal"

	"shopharness/internal/browser"
)

// LineItem is one row of the cart table.
type LineItem struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// CartTotals are the summary amounts of the cart page.
type CartTotals struct {
	Subtotal   decimal.Decimal
	Shipping   decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
}

// CartPage drives the cart overview.
type CartPage struct {
	Page
}

// NewCartPage binds the cart view to a session.
func NewCartPage(session *browser.Session, baseURL string) *CartPage {
	return &CartPage{Page: newPage(session, baseURL, "cart")}
}

// Open navigates to the cart page.
func (p *CartPage) Open() error {
	if err := p.Navigate("/checkout/cart"); err != nil {
		return err
	}
	return p.WaitVisible(".checkout, .cart-main, .is-ctl-checkout")
}

// rawLineItem mirrors what the extraction script returns per row.
type rawLineItem struct {
	Name      string `json:"name"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Total     string `json:"total"`
}

// LineItems enumerates the cart rows with parsed amounts.
func (p *CartPage) LineItems() ([]LineItem, error) {
	var raw []rawLineItem
	err := p.session.Run(p.session.Opts().ElementTimeout,
		chromedp.Evaluate(`Array.from(document.querySelectorAll('.cart-item, .line-item')).map(row => ({
			name: (row.querySelector('.cart-item-label, .line-item-label')?.textContent || '').trim(),
			quantity: (row.querySelector('.cart-item-quantity input, .line-item-quantity input')?.value
				|| row.querySelector('.cart-item-quantity select, .line-item-quantity select')?.value || '1').trim(),
			unitPrice: (row.querySelector('.cart-item-unit-price, .line-item-unit-price')?.textContent || '').trim(),
			total: (row.querySelector('.cart-item-total-price, .line-item-total-price')?.textContent || '').trim(),
		}))`, &raw))
	if err != nil {
		return nil, failure(p.name, "enumerate line items", FailureSelectorNotFound, err, "")
	}

	items := make([]LineItem, 0, len(raw))
	for _, r := range raw {
		qty, convErr := strconv.Atoi(strings.TrimSpace(r.Quantity))
		if convErr != nil {
			qty = 1
		}
		unit, unitErr := ParsePrice(r.UnitPrice)
		total, totalErr := ParsePrice(r.Total)
		if unitErr != nil || totalErr != nil {
			return nil, &PageError{Kind: FailureValidation, Page: p.name,
				Op: "enumerate line items",
				Detail: fmt.Sprintf("unparseable price in row %q (unit %q, total %q)",
					r.Name, r.UnitPrice, r.Total)}
		}
		items = append(items, LineItem{Name: r.Name, Quantity: qty, UnitPrice: unit, Total: total})
	}
	return items, nil
}

// ChangeQuantity sets a new quantity on the line item at the given index
// and waits for the cart to recalculate.
func (p *CartPage) ChangeQuantity(index, quantity int) error {
	selector := fmt.Sprintf(
		".cart-item:nth-of-type(%d) .cart-item-quantity input, .line-item:nth-of-type(%d) .line-item-quantity input",
		index+1, index+1)
	if err := p.Fill(selector, strconv.Itoa(quantity)); err != nil {
		return err
	}
	err := p.session.Run(p.session.Opts().ElementTimeout,
		chromedp.SendKeys(selector, "\n", chromedp.ByQuery))
	if err != nil {
		return failure(p.name, "submit quantity change", FailureSelectorNotFound, err, "")
	}
	return p.WaitVisible(".checkout-aside-summary-total, .checkout-aside-summary-value")
}

// RemoveItem deletes the line item at the given index.
func (p *CartPage) RemoveItem(index int) error {
	selector := fmt.Sprintf(
		".cart-item:nth-of-type(%d) .cart-item-remove-button, .line-item:nth-of-type(%d) .line-item-remove-button",
		index+1, index+1)
	return p.Click(selector)
}

// Totals reads the summary amounts. Shipping and tax default to zero when
// the storefront does not render the row.
func (p *CartPage) Totals() (CartTotals, error) {
	var raw struct {
		Subtotal   string `json:"subtotal"`
		Shipping   string `json:"shipping"`
		Tax        string `json:"tax"`
		GrandTotal string `json:"grandTotal"`
	}
	err := p.session.Run(p.session.Opts().ElementTimeout,
		chromedp.Evaluate(`(() => {
			const text = sel => (document.querySelector(sel)?.textContent || '').trim();
			return {
				subtotal: text('.checkout-aside-summary-value.subtotal, dd.col-5.checkout-aside-summary-value'),
				shipping: text('.checkout-aside-summary-value.shipping'),
				tax: text('.checkout-aside-summary-value.tax'),
				grandTotal: text('.checkout-aside-summary-total .checkout-aside-summary-value, .checkout-aside-summary-value.total'),
			};
		})()`, &raw))
	if err != nil {
		return CartTotals{}, failure(p.name, "read totals", FailureSelectorNotFound, err, "")
	}

	parse := func(label string) (decimal.Decimal, error) {
		if strings.TrimSpace(label) == "" {
			return decimal.Zero, nil
		}
		return ParsePrice(label)
	}

	var totals CartTotals
	var parseErr error
	if totals.Subtotal, parseErr = parse(raw.Subtotal); parseErr == nil {
		if totals.Shipping, parseErr = parse(raw.Shipping); parseErr == nil {
			if totals.Tax, parseErr = parse(raw.Tax); parseErr == nil {
				totals.GrandTotal, parseErr = parse(raw.GrandTotal)
			}
		}
	}
	if parseErr != nil {
		return CartTotals{}, &PageError{Kind: FailureValidation, Page: p.name,
			Op: "read totals", Detail: parseErr.Error()}
	}
	return totals, nil
}

// ApplyPromoCode enters a promotion code and submits it.
func (p *CartPage) ApplyPromoCode(code string) error {
	if err := p.Fill("#addPromotionInput", code); err != nil {
		return err
	}
	if err := p.Click("#addPromotion"); err != nil {
		return err
	}
	return p.WaitVisible(".cart-item-promotion, .line-item-promotion")
}

// RemovePromoCode deletes the promotion line item from the cart.
func (p *CartPage) RemovePromoCode() error {
	return p.Click(".cart-item-promotion .cart-item-remove-button, .line-item-promotion .line-item-remove-button")
}

// ProceedToCheckout follows the begin-checkout button. An empty cart stays
// on the cart page, which surfaces as an unexpected-URL failure.
func (p *CartPage) ProceedToCheckout() error {
	if err := p.Click(".begin-checkout-btn"); err != nil {
		return err
	}
	loc, err := p.CurrentURL()
	if err != nil {
		return err
	}
	if strings.Contains(loc, "/checkout/cart") {
		return &PageError{Kind: FailureUnexpectedURL, Page: p.name,
			Op: "proceed to checkout", Detail: "still on cart page, cart may be empty"}
	}
	return nil
}
