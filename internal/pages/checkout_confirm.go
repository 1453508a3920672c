package pages

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/chromedp/chromedp"

	"shopharness/internal/browser"
	"shopharness/internal/taxonomy"
	"shopharness/pkg/logging"
)

// orderNumberPattern matches the first run of five or more digits in the
// finish-page text.
var orderNumberPattern = regexp.MustCompile(`\d{5,}`)

// OrderReceipt is what the finish page yields after a placed order.
type OrderReceipt struct {
	// OrderNumber is the human-facing number printed on the page.
	OrderNumber string
	// OrderID is the technical identifier from the finish URL query.
	OrderID string
}

// ConfirmPage drives the checkout confirm step up to the placed order.
type ConfirmPage struct {
	Page
	taxonomy *taxonomy.PaymentTaxonomy
}

// NewConfirmPage binds the confirm view to a session. The taxonomy resolves
// payment aliases to display labels; nil means labels are used verbatim.
func NewConfirmPage(session *browser.Session, baseURL string, tax *taxonomy.PaymentTaxonomy) *ConfirmPage {
	return &ConfirmPage{Page: newPage(session, baseURL, "checkout-confirm"), taxonomy: tax}
}

// Open navigates to the confirm step. Without a cart or a completed
// register step the storefront redirects away, which is reported as an
// unexpected-URL failure.
func (p *ConfirmPage) Open() error {
	if err := p.Navigate("/checkout/confirm"); err != nil {
		return err
	}
	loc, err := p.CurrentURL()
	if err != nil {
		return err
	}
	if !strings.Contains(loc, "/checkout/confirm") {
		return &PageError{Kind: FailureUnexpectedURL, Page: p.name, Op: "open",
			Detail: fmt.Sprintf("redirected to %s", loc)}
	}
	return nil
}

// PaymentLabels reads every payment method label offered on the page, in
// display order.
func (p *ConfirmPage) PaymentLabels() ([]string, error) {
	var labels []string
	err := p.session.Run(p.session.Opts().ElementTimeout,
		chromedp.Evaluate(`(() => {
			const seen = [];
			for (const sel of [
				'.payment-method .payment-method-label',
				'.payment-method label',
				'label[for^="paymentMethod"]',
			]) {
				const found = Array.from(document.querySelectorAll(sel))
					.map(el => el.textContent.trim())
					.filter(t => t.length > 0);
				if (found.length > 0) { return found; }
				seen.push(sel);
			}
			return [];
		})()`, &labels))
	if err != nil {
		return nil, failure(p.name, "read payment labels", FailureSelectorNotFound, err, "")
	}
	return labels, nil
}

// SelectPayment chooses a payment method by stable alias or display label.
// The label is searched in a prioritized list of containers; every strategy
// must fail before the selection counts as not found.
func (p *ConfirmPage) SelectPayment(aliasOrLabel string) error {
	label := aliasOrLabel
	if p.taxonomy != nil {
		resolved, err := p.taxonomy.Resolve(aliasOrLabel)
		if err == nil {
			label = resolved
		}
	}
	logging.Debug("pages", "selecting payment %q (resolved from %q)", label, aliasOrLabel)

	// Strategies in priority order: the payment-method row containing the
	// label, the label element of a radio, and finally any radio whose
	// ancestor carries the text.
	script := fmt.Sprintf(`(() => {
		const label = %q;
		const radios = Array.from(document.querySelectorAll('input[type="radio"][name="paymentMethodId"], input[type="radio"][id^="paymentMethod"]'));

		const rows = Array.from(document.querySelectorAll('.payment-method'));
		for (const row of rows) {
			if (row.textContent.includes(label)) {
				const radio = row.querySelector('input[type="radio"]');
				if (radio) { radio.click(); return { strategy: 'payment-method-row', radios: radios.length }; }
			}
		}

		for (const lab of document.querySelectorAll('label[for^="paymentMethod"]')) {
			if (lab.textContent.trim() === label || lab.textContent.includes(label)) {
				const radio = document.getElementById(lab.htmlFor);
				if (radio) { radio.click(); return { strategy: 'label-for-radio', radios: radios.length }; }
			}
		}

		for (const radio of radios) {
			let el = radio.parentElement;
			for (let depth = 0; el && depth < 4; depth++, el = el.parentElement) {
				if (el.textContent.includes(label)) {
					radio.click();
					return { strategy: 'radio-ancestor-text', radios: radios.length };
				}
			}
		}

		return { strategy: '', radios: radios.length };
	})()`, label)

	var outcome struct {
		Strategy string `json:"strategy"`
		Radios   int    `json:"radios"`
	}
	err := p.session.Run(p.session.Opts().ElementTimeout, chromedp.Evaluate(script, &outcome))
	if err != nil {
		return failure(p.name, "select payment", FailureSelectorNotFound, err, "")
	}
	if outcome.Strategy == "" {
		var aliases []string
		if p.taxonomy != nil {
			aliases = p.taxonomy.AliasTokens()
		}
		return &PageError{Kind: FailureSelectorNotFound, Page: p.name, Op: "select payment",
			Detail: fmt.Sprintf("input %q resolved to label %q; %d payment radios on page; known aliases: %s",
				aliasOrLabel, label, outcome.Radios, strings.Join(aliases, ", "))}
	}
	logging.Debug("pages", "payment selected via %s", outcome.Strategy)
	return nil
}

// ShippingLabels reads every shipping method label offered on the confirm
// step, in display order.
func (p *ConfirmPage) ShippingLabels() ([]string, error) {
	var labels []string
	err := p.session.Run(p.session.Opts().ElementTimeout,
		chromedp.Evaluate(`Array.from(document.querySelectorAll('.shipping-method .shipping-method-label, label[for^="shippingMethod"]'))
			.map(el => el.textContent.trim()).filter(t => t.length > 0)`, &labels))
	if err != nil {
		return nil, failure(p.name, "read shipping labels", FailureSelectorNotFound, err, "")
	}
	return labels, nil
}

// AcceptTerms ticks the terms-of-service checkbox.
func (p *ConfirmPage) AcceptTerms() error {
	err := p.session.Run(p.session.Opts().ElementTimeout,
		chromedp.Evaluate(`(() => {
			const box = document.querySelector('#tos, input[name="tos"]');
			if (!box) { return false; }
			if (!box.checked) { box.click(); }
			return true;
		})()`, nil))
	if err != nil {
		return failure(p.name, "accept terms", FailureSelectorNotFound, err, "")
	}
	return nil
}

// PlaceOrder submits the order and waits for the finish page, then reads
// the order number from the page text and the order identifier from the
// URL query.
func (p *ConfirmPage) PlaceOrder() (*OrderReceipt, error) {
	if err := p.Click("#confirmFormSubmit, .confirm-order button[type='submit']"); err != nil {
		return nil, err
	}

	err := p.session.Run(p.session.Opts().FinishTimeout,
		chromedp.WaitVisible(".finish-header, .checkout-finish", chromedp.ByQuery))
	if err != nil {
		loc, locErr := p.CurrentURL()
		if locErr == nil && !strings.Contains(loc, "/checkout/finish") {
			return nil, &PageError{Kind: FailureUnexpectedURL, Page: p.name,
				Op: "place order", Detail: fmt.Sprintf("expected finish page, on %s", loc)}
		}
		return nil, failure(p.name, "place order", FailureTimeout, err, "finish page not reached")
	}

	var bodyText string
	if err := p.session.Run(p.session.Opts().ElementTimeout,
		chromedp.Text("body", &bodyText, chromedp.ByQuery)); err != nil {
		return nil, failure(p.name, "read finish page", FailureSelectorNotFound, err, "")
	}

	receipt := &OrderReceipt{OrderNumber: ExtractOrderNumber(bodyText)}
	if loc, locErr := p.CurrentURL(); locErr == nil {
		receipt.OrderID = OrderIDFromURL(loc)
	}
	if receipt.OrderNumber == "" {
		return receipt, &PageError{Kind: FailureValidation, Page: p.name,
			Op: "place order", Detail: "finish page shows no order number"}
	}
	return receipt, nil
}

// ExtractOrderNumber returns the first run of five or more digits in the
// given text, or "" when none occurs.
func ExtractOrderNumber(text string) string {
	return orderNumberPattern.FindString(text)
}

// OrderIDFromURL pulls the order identifier from a finish URL's query.
func OrderIDFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	for _, key := range []string{"orderId", "order"} {
		if v := parsed.Query().Get(key); v != "" {
			return v
		}
	}
	return ""
}
