package cmd

import (
	"context"

	"shopharness/internal/browser"
	"shopharness/internal/config"
	"shopharness/internal/contract"
	"shopharness/internal/taxonomy"
)

// loadConfig resolves the layered configuration from the global flags.
func loadConfig() (*config.Config, error) {
	return config.Load(flagConfigPath)
}

// openStore opens the contract store named by the global flag.
func openStore() (*contract.Store, error) {
	validator, err := contract.NewValidator()
	if err != nil {
		return nil, err
	}
	return contract.NewStore(flagStoreDir, validator)
}

// buildTaxonomy assembles the payment taxonomy from the resolved
// configuration.
func buildTaxonomy(cfg *config.Config) *taxonomy.PaymentTaxonomy {
	tax := taxonomy.NewPaymentTaxonomy()
	for country, labels := range cfg.Settings.PaymentMethods {
		tax.Methods[country] = append([]string{}, labels...)
	}
	for alias, label := range cfg.Settings.PaymentMethodAliases {
		tax.Aliases[alias] = label
	}
	return tax
}

// countryProfiles returns the built-in country table with path prefixes
// overridden from the configuration's country_paths map.
func countryProfiles(cfg *config.Config) map[string]taxonomy.CountryProfile {
	profiles := taxonomy.DefaultCountryProfiles()
	for country, prefix := range cfg.Settings.CountryPaths {
		profile, ok := profiles[country]
		if !ok {
			profile = taxonomy.CountryProfile{Code: country}
		}
		profile.PathPrefix = prefix
		profiles[country] = profile
	}
	return profiles
}

// buildFleet creates the browser allocator from the configuration.
func buildFleet(ctx context.Context, cfg *config.Config) *browser.Browser {
	return browser.New(ctx, browser.Options{
		Headless:          cfg.Settings.IsHeadless(),
		SlowMo:            cfg.Settings.SlowMo(),
		BasicAuthUser:     cfg.Secrets.BasicAuthUser,
		BasicAuthPassword: cfg.Secrets.BasicAuthPass,
	})
}
