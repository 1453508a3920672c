// Package discovery walks a storefront per country, reads the actually
// offered payment-method labels and folds them back into the taxonomy
// file. The taxonomy on disk is the stable contract; the selectors used to
// read labels are heuristic and live with the page views.
package discovery

import (
	"context"
	"fmt"

	"shopharness/internal/browser"
	"shopharness/internal/contract"
	"shopharness/internal/pages"
	"shopharness/internal/taxonomy"
	"shopharness/pkg/logging"
)

// LabelReader obtains the ordered payment labels a storefront country
// offers. The production reader drives a browser; tests substitute a fake.
type LabelReader interface {
	ReadLabels(ctx context.Context, profile taxonomy.CountryProfile) ([]string, error)
}

// Discoverer runs one extraction pass and updates the taxonomy.
type Discoverer struct {
	reader   LabelReader
	profiles map[string]taxonomy.CountryProfile
}

// New creates a discoverer over a label reader.
func New(reader LabelReader, profiles map[string]taxonomy.CountryProfile) *Discoverer {
	return &Discoverer{reader: reader, profiles: profiles}
}

// Run walks every requested country, then rewrites the taxonomy file:
// a byte-exact backup first, then the merged state. Existing aliases are
// never deleted; labels without a known alias get a derived token.
func (d *Discoverer) Run(ctx context.Context, countries []string, taxonomyPath string) (map[string][]string, error) {
	observed := map[string][]string{}
	for _, country := range countries {
		profile, err := taxonomy.ProfileFor(d.profiles, country)
		if err != nil {
			return observed, err
		}
		logging.Info("discovery", "reading payment labels for %s", country)
		labels, err := d.reader.ReadLabels(ctx, profile)
		if err != nil {
			return observed, fmt.Errorf("reading labels for %s: %w", country, err)
		}
		if len(labels) == 0 {
			return observed, &contract.EnvironmentError{
				Op:  "discover " + country,
				Err: fmt.Errorf("storefront offered no payment labels"),
			}
		}
		logging.Info("discovery", "%s offers %d payment methods", country, len(labels))
		observed[country] = labels
	}

	tax, err := taxonomy.LoadPaymentTaxonomy(taxonomyPath)
	if err != nil {
		return observed, err
	}
	for country, labels := range observed {
		tax.MergeObservation(country, labels)
	}
	if err := tax.Save(taxonomyPath); err != nil {
		return observed, err
	}
	logging.Info("discovery", "taxonomy updated at %s", taxonomyPath)
	return observed, nil
}

// BrowserLabelReader reads labels by driving a real checkout up to the
// confirm step with placeholder guest data.
type BrowserLabelReader struct {
	Fleet       *browser.Browser
	BaseURL     string
	ProductPath string
}

// ReadLabels adds the test product, registers as guest and reads the
// payment labels off the confirm step. Navigation starts at the country's
// storefront root, so a DE walk drives /de-de/ rather than the default
// country's paths.
func (r *BrowserLabelReader) ReadLabels(ctx context.Context, profile taxonomy.CountryProfile) ([]string, error) {
	session, err := r.Fleet.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	base := profile.StorefrontBase(r.BaseURL)
	product := pages.NewProductPage(session, base)
	if err := product.Open(r.ProductPath); err != nil {
		return nil, err
	}
	if err := product.AddToCart(1); err != nil {
		return nil, err
	}

	addr := pages.Address{
		Salutation:   "Herr",
		FirstName:    "Discovery",
		LastName:     "Probe",
		Email:        "discovery-probe@example.com",
		Street:       "Teststraße 1",
		CountryLabel: profile.CountryLabel(),
	}
	if len(profile.Cities) > 0 {
		addr.City = profile.Cities[0].City
		addr.Postcode = profile.Cities[0].Postcode
	}
	register := pages.NewRegisterPage(session, base)
	if err := register.RegisterAsGuest(addr); err != nil {
		return nil, err
	}

	confirm := pages.NewConfirmPage(session, base, nil)
	return confirm.PaymentLabels()
}
