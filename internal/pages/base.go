package pages

import (
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"

	"shopharness/internal/browser"
	"shopharness/pkg/logging"
)

// Page is the shared base of every storefront view. It carries the session
// and the base URL; a concrete view adds the selectors and actions of its
// screen.
type Page struct {
	session *browser.Session
	baseURL string
	name    string
}

func newPage(session *browser.Session, baseURL, name string) Page {
	return Page{
		session: session,
		baseURL: strings.TrimRight(baseURL, "/"),
		name:    name,
	}
}

// URL builds an absolute storefront URL from a path.
func (p *Page) URL(path string) string {
	if path == "" || path == "/" {
		return p.baseURL + "/"
	}
	return p.baseURL + "/" + strings.TrimLeft(path, "/")
}

// Navigate loads a storefront path and dismisses the cookie consent layer
// if it appears.
func (p *Page) Navigate(path string) error {
	target := p.URL(path)
	logging.Debug("pages", "navigating to %s", target)
	err := p.session.Run(p.session.Opts().NavigationTimeout,
		chromedp.Navigate(target),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		return failure(p.name, "navigate "+target, FailureTimeout, err, "")
	}
	p.DismissConsent()
	return nil
}

// CurrentURL returns the browser's current location.
func (p *Page) CurrentURL() (string, error) {
	var loc string
	err := p.session.Run(browser.DefaultShortWait, chromedp.Location(&loc))
	if err != nil {
		return "", failure(p.name, "read location", FailureTimeout, err, "")
	}
	return loc, nil
}

// consentStrategy is one way of finding the accept-all button of a cookie
// consent layer. Storefront deployments differ in which banner they ship.
type consentStrategy struct {
	name string
	run  func() (bool, error)
}

// DismissConsent clicks the accept-all button of the cookie layer. Absence
// of the layer is not a failure; a run may land on a page where it was
// already dismissed.
func (p *Page) DismissConsent() {
	clickQuery := func(selector string) func() (bool, error) {
		return func() (bool, error) {
			err := p.session.Run(browser.DefaultShortWait,
				chromedp.Click(selector, chromedp.ByQuery))
			return err == nil, err
		}
	}

	strategies := []consentStrategy{
		{
			name: "offcanvas-button",
			run:  clickQuery(`.js-cookie-permission-button button[type="submit"]`),
		},
		{
			name: "accept-all-button",
			run:  clickQuery(`button.js-cookie-accept-all-button`),
		},
		{
			// Consent managers such as Usercentrics render inside a
			// closed shadow root; the button is only reachable by
			// script inside the host root.
			name: "script-inside-host-root",
			run: func() (bool, error) {
				var clicked bool
				err := p.session.Run(browser.DefaultShortWait, chromedp.Evaluate(
					`(() => {
						const host = document.querySelector('#usercentrics-root');
						if (!host || !host.shadowRoot) { return false; }
						const btn = host.shadowRoot.querySelector('[data-testid="uc-accept-all-button"]');
						if (!btn) { return false; }
						btn.click();
						return true;
					})()`, &clicked))
				return clicked, err
			},
		},
	}

	for _, strategy := range strategies {
		if dismissed, _ := strategy.run(); dismissed {
			logging.Debug("pages", "cookie consent dismissed via %s", strategy.name)
			return
		}
	}
	logging.Debug("pages", "no cookie consent layer found")
}

// WaitVisible waits for an element under the element timeout.
func (p *Page) WaitVisible(selector string) error {
	err := p.session.Run(p.session.Opts().ElementTimeout,
		chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err != nil {
		return failure(p.name, "wait for "+selector, FailureSelectorNotFound, err,
			fmt.Sprintf("element %q did not become visible", selector))
	}
	return nil
}

// Click waits for an element and clicks it.
func (p *Page) Click(selector string) error {
	err := p.session.Run(p.session.Opts().ElementTimeout,
		chromedp.Click(selector, chromedp.ByQuery))
	if err != nil {
		return failure(p.name, "click "+selector, FailureSelectorNotFound, err, "")
	}
	return nil
}

// Fill clears a form field and types a value into it.
func (p *Page) Fill(selector, value string) error {
	err := p.session.Run(p.session.Opts().ElementTimeout,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery))
	if err != nil {
		return failure(p.name, "fill "+selector, FailureSelectorNotFound, err, "")
	}
	return nil
}

// Text reads the trimmed text content of an element.
func (p *Page) Text(selector string) (string, error) {
	var text string
	err := p.session.Run(p.session.Opts().ElementTimeout,
		chromedp.Text(selector, &text, chromedp.ByQuery))
	if err != nil {
		return "", failure(p.name, "read text of "+selector, FailureSelectorNotFound, err, "")
	}
	return strings.TrimSpace(text), nil
}

// SelectByLabel picks a <select> option by its visible, localized label.
func (p *Page) SelectByLabel(selector, label string) error {
	script := fmt.Sprintf(
		`(() => {
			const sel = document.querySelector(%q);
			if (!sel) { return "no-select"; }
			for (const opt of sel.options) {
				if (opt.textContent.trim() === %q) {
					sel.value = opt.value;
					sel.dispatchEvent(new Event('change', { bubbles: true }));
					return "ok";
				}
			}
			return "no-option";
		})()`, selector, label)

	var outcome string
	err := p.session.Run(p.session.Opts().ElementTimeout,
		chromedp.Evaluate(script, &outcome))
	if err != nil {
		return failure(p.name, "select "+selector, FailureSelectorNotFound, err, "")
	}
	switch outcome {
	case "ok":
		return nil
	case "no-select":
		return &PageError{Kind: FailureSelectorNotFound, Page: p.name,
			Op: "select " + selector, Detail: "select element not found"}
	default:
		return &PageError{Kind: FailureSelectorNotFound, Page: p.name,
			Op:     "select " + selector,
			Detail: fmt.Sprintf("no option with label %q", label)}
	}
}

// hasValidationError reports whether the storefront itself flagged a form
// error on the current page.
func (p *Page) hasValidationError() bool {
	var count int
	err := p.session.Run(browser.DefaultShortWait,
		chromedp.Evaluate(`document.querySelectorAll('.invalid-feedback, .alert-danger').length`, &count))
	return err == nil && count > 0
}
