package massorder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shopharness/internal/browser"
	"shopharness/internal/engine"
	"shopharness/internal/pages"
	"shopharness/internal/taxonomy"
	"shopharness/pkg/logging"
)

// BrowserOrderFunc builds the production OrderFunc: every call derives a
// fresh isolated session from the fleet, drives the order's checkout shape
// and folds any failure into the result. All navigation starts at the
// campaign country's storefront root.
func BrowserOrderFunc(fleet *browser.Browser, baseURL string, profile taxonomy.CountryProfile, tax *taxonomy.PaymentTaxonomy, paymentAlias string) OrderFunc {
	base := profile.StorefrontBase(baseURL)
	return func(ctx context.Context, order Order) *engine.RunResult {
		result := &engine.RunResult{
			RunID:      uuid.NewString(),
			ContractID: string(order.Type),
			Started:    time.Now().UTC(),
		}
		finish := func(outcome engine.Outcome, err error) *engine.RunResult {
			result.Finished = time.Now().UTC()
			result.Duration = result.Finished.Sub(result.Started)
			result.Outcome = outcome
			if err != nil {
				result.SetErr(err)
				result.Message = err.Error()
				if kind := pages.Classify(err); kind != "" {
					result.ErrorClass = string(kind)
				} else {
					result.ErrorClass = "order-error"
				}
			}
			return result
		}

		session, err := fleet.NewSession(ctx)
		if err != nil {
			return finish(engine.OutcomeErrored, err)
		}
		defer session.Close()

		receipt, err := placeOrder(ctx, session, base, tax, paymentAlias, order)
		if err != nil {
			outcome := engine.OutcomeErrored
			switch pages.Classify(err) {
			case pages.FailureValidation, pages.FailureUnexpectedURL:
				outcome = engine.OutcomeFailed
			}
			return finish(outcome, err)
		}
		result.OrderNumber = receipt.OrderNumber
		result.OrderID = receipt.OrderID
		logging.Debug("massorder", "order %04d (%s) placed: %s",
			order.Ordinal, order.Type, receipt.OrderNumber)
		return finish(engine.OutcomePassed, nil)
	}
}

// placeOrder drives one checkout: optional login, cart filling, register
// step for guests, payment, order placement.
func placeOrder(ctx context.Context, session *browser.Session, baseURL string, tax *taxonomy.PaymentTaxonomy, paymentAlias string, order Order) (*pages.OrderReceipt, error) {
	if order.Customer != nil {
		account := pages.NewAccountPage(session, baseURL)
		if err := account.Login(order.Customer.Email, order.Customer.Password); err != nil {
			return nil, err
		}
	}

	product := pages.NewProductPage(session, baseURL)
	for _, path := range order.ProductPaths {
		if err := product.Open(path); err != nil {
			return nil, err
		}
		if err := product.AddToCart(1); err != nil {
			return nil, err
		}
	}

	if order.Customer == nil {
		register := pages.NewRegisterPage(session, baseURL)
		if err := register.RegisterAsGuest(order.Address); err != nil {
			return nil, err
		}
	} else {
		cart := pages.NewCartPage(session, baseURL)
		if err := cart.Open(); err != nil {
			return nil, err
		}
		if err := cart.ProceedToCheckout(); err != nil {
			return nil, err
		}
	}

	confirm := pages.NewConfirmPage(session, baseURL, tax)
	if err := confirm.SelectPayment(paymentAlias); err != nil {
		return nil, err
	}
	if err := confirm.AcceptTerms(); err != nil {
		return nil, err
	}
	return confirm.PlaceOrder()
}
