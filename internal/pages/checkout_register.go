package pages

import (
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"

	"shopharness/internal/browser"
)

// Address is the billing address of a checkout run.
type Address struct {
	Salutation string
	FirstName  string
	LastName   string
	Email      string
	Street     string
	Postcode   string
	City       string
	// CountryLabel is the localized option text, e.g. "Österreich".
	CountryLabel string
}

// RegisterPage drives the checkout register step, covering the guest flow.
type RegisterPage struct {
	Page
}

// NewRegisterPage binds the register view to a session.
func NewRegisterPage(session *browser.Session, baseURL string) *RegisterPage {
	return &RegisterPage{Page: newPage(session, baseURL, "checkout-register")}
}

// Open navigates to the register step.
func (p *RegisterPage) Open() error {
	if err := p.Navigate("/checkout/register"); err != nil {
		return err
	}
	return p.WaitVisible(".register-form, form[action*='register']")
}

// SwitchToGuest ticks the guest checkbox so no account is created.
func (p *RegisterPage) SwitchToGuest() error {
	var checked bool
	err := p.session.Run(p.session.Opts().ElementTimeout,
		chromedp.Evaluate(`(() => {
			const box = document.querySelector('#personalGuest, input[name="guest"]');
			if (!box) { return false; }
			if (!box.checked) {
				box.click();
			}
			return true;
		})()`, &checked))
	if err != nil {
		return failure(p.name, "switch to guest", FailureSelectorNotFound, err, "")
	}
	if !checked {
		return &PageError{Kind: FailureSelectorNotFound, Page: p.name,
			Op: "switch to guest", Detail: "guest checkbox not found"}
	}
	return nil
}

// FillPersonalData enters salutation, name and email.
func (p *RegisterPage) FillPersonalData(addr Address) error {
	salutation := addr.Salutation
	if salutation == "" {
		salutation = "Herr"
	}
	if err := p.SelectByLabel("#personalSalutation", salutation); err != nil {
		return err
	}
	if err := p.Fill("#personalFirstName", addr.FirstName); err != nil {
		return err
	}
	if err := p.Fill("#personalLastName", addr.LastName); err != nil {
		return err
	}
	return p.Fill("#personalMail", addr.Email)
}

// FillBillingAddress enters street, postcode, city and picks the country
// by its localized label.
func (p *RegisterPage) FillBillingAddress(addr Address) error {
	if err := p.Fill("#billingAddressAddressStreet", addr.Street); err != nil {
		return err
	}
	if err := p.Fill("#billingAddressAddressZipcode", addr.Postcode); err != nil {
		return err
	}
	if err := p.Fill("#billingAddressAddressCity", addr.City); err != nil {
		return err
	}
	return p.SelectByLabel("#billingAddressAddressCountry", addr.CountryLabel)
}

// AcceptPrivacy ticks the data-protection checkbox when the storefront
// renders one.
func (p *RegisterPage) AcceptPrivacy() error {
	err := p.session.Run(browser.DefaultShortWait,
		chromedp.Evaluate(`(() => {
			const box = document.querySelector('#acceptedDataProtection');
			if (box && !box.checked) { box.click(); }
			return true;
		})()`, nil))
	if err != nil {
		return failure(p.name, "accept privacy", FailureSelectorNotFound, err, "")
	}
	return nil
}

// Continue submits the register form and waits for the confirm step URL.
func (p *RegisterPage) Continue() error {
	if err := p.Click(".register-submit button[type='submit'], button.btn-primary[type='submit']"); err != nil {
		return err
	}
	err := p.session.Run(p.session.Opts().NavigationTimeout,
		chromedp.WaitVisible(".is-ctl-checkout.is-act-confirmpage, .confirm-tos", chromedp.ByQuery))
	if err != nil {
		loc, locErr := p.CurrentURL()
		if locErr == nil && !strings.Contains(loc, "/checkout/confirm") {
			detail := fmt.Sprintf("expected confirm step, still on %s", loc)
			if p.hasValidationError() {
				return &PageError{Kind: FailureValidation, Page: p.name,
					Op: "continue to confirm", Detail: detail + " with form errors"}
			}
			return &PageError{Kind: FailureUnexpectedURL, Page: p.name,
				Op: "continue to confirm", Detail: detail}
		}
		return failure(p.name, "continue to confirm", FailureTimeout, err, "")
	}
	return nil
}

// RegisterAsGuest combines the whole guest register step.
func (p *RegisterPage) RegisterAsGuest(addr Address) error {
	if err := p.Open(); err != nil {
		return err
	}
	if err := p.SwitchToGuest(); err != nil {
		return err
	}
	if err := p.FillPersonalData(addr); err != nil {
		return err
	}
	if err := p.FillBillingAddress(addr); err != nil {
		return err
	}
	if err := p.AcceptPrivacy(); err != nil {
		return err
	}
	return p.Continue()
}
