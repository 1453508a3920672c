package pages

import (
	"fmt"
	"strings"

	"shopharness/internal/browser"
)

// AccountPage drives login, registration and the account dashboard.
type AccountPage struct {
	Page
}

// NewAccountPage binds the account view to a session.
func NewAccountPage(session *browser.Session, baseURL string) *AccountPage {
	return &AccountPage{Page: newPage(session, baseURL, "account")}
}

// OpenLogin navigates to the login form.
func (p *AccountPage) OpenLogin() error {
	if err := p.Navigate("/account/login"); err != nil {
		return err
	}
	return p.WaitVisible(".login-form, form.login-form, #loginMail")
}

// Login submits credentials. Success is defined as leaving the login URL
// after the submit; staying on it means the storefront rejected the
// credentials.
func (p *AccountPage) Login(email, password string) error {
	if err := p.OpenLogin(); err != nil {
		return err
	}
	if err := p.Fill("#loginMail", email); err != nil {
		return err
	}
	if err := p.Fill("#loginPassword", password); err != nil {
		return err
	}
	if err := p.Click(".login-submit button[type='submit']"); err != nil {
		return err
	}

	loc, err := p.CurrentURL()
	if err != nil {
		return err
	}
	if strings.Contains(loc, "/account/login") {
		detail := "still on login page"
		if msg, msgErr := p.Text(".alert-danger"); msgErr == nil && msg != "" {
			detail = fmt.Sprintf("still on login page: %s", msg)
		}
		return &PageError{Kind: FailureUnexpectedURL, Page: p.name,
			Op: "login " + email, Detail: detail}
	}
	return nil
}

// Register creates a full customer account from the given address.
func (p *AccountPage) Register(addr Address, password string) error {
	if err := p.Navigate("/account/register"); err != nil {
		return err
	}
	reg := RegisterPage{Page: newPage(p.session, p.baseURL, "account-register")}
	if err := reg.FillPersonalData(addr); err != nil {
		return err
	}
	if err := p.Fill("#personalPassword", password); err != nil {
		return err
	}
	if err := reg.FillBillingAddress(addr); err != nil {
		return err
	}
	if err := reg.AcceptPrivacy(); err != nil {
		return err
	}
	if err := p.Click(".register-submit button[type='submit']"); err != nil {
		return err
	}

	loc, err := p.CurrentURL()
	if err != nil {
		return err
	}
	if strings.Contains(loc, "/account/register") {
		return &PageError{Kind: FailureValidation, Page: p.name,
			Op: "register " + addr.Email, Detail: "registration form did not submit"}
	}
	return nil
}

// Greeting reads the dashboard welcome line, e.g. "Hallo Max Mustermann".
func (p *AccountPage) Greeting() (string, error) {
	if err := p.Navigate("/account"); err != nil {
		return "", err
	}
	return p.Text(".account-welcome, .account-overview h1")
}

// AddAddress creates an additional address book entry.
func (p *AccountPage) AddAddress(addr Address) error {
	if err := p.Navigate("/account/address/create"); err != nil {
		return err
	}
	salutation := addr.Salutation
	if salutation == "" {
		salutation = "Herr"
	}
	if err := p.SelectByLabel("#addresspersonalSalutation", salutation); err != nil {
		return err
	}
	if err := p.Fill("#addresspersonalFirstName", addr.FirstName); err != nil {
		return err
	}
	if err := p.Fill("#addresspersonalLastName", addr.LastName); err != nil {
		return err
	}
	if err := p.Fill("#addressAddressStreet", addr.Street); err != nil {
		return err
	}
	if err := p.Fill("#addressAddressZipcode", addr.Postcode); err != nil {
		return err
	}
	if err := p.Fill("#addressAddressCity", addr.City); err != nil {
		return err
	}
	if err := p.SelectByLabel("#addressAddressCountry", addr.CountryLabel); err != nil {
		return err
	}
	return p.Click(".address-form-submit, button[type='submit'].address-form-submit")
}

// DeleteAddress removes the address book entry at the given index.
func (p *AccountPage) DeleteAddress(index int) error {
	if err := p.Navigate("/account/address"); err != nil {
		return err
	}
	selector := fmt.Sprintf(".address-card:nth-of-type(%d) .address-action-delete", index+1)
	if err := p.Click(selector); err != nil {
		return err
	}
	// The storefront asks for confirmation in a modal.
	return p.Click(".address-delete-confirm, .modal .btn-primary")
}

// Logout ends the session.
func (p *AccountPage) Logout() error {
	return p.Navigate("/account/logout")
}
