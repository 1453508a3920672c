package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopharness/internal/config"
)

func TestCountryProfilesAppliesConfiguredPaths(t *testing.T) {
	cfg := &config.Config{}
	cfg.Settings.CountryPaths = map[string]string{
		"DE": "/de-de-b2b/",
		"FR": "/fr-fr/",
	}

	profiles := countryProfiles(cfg)

	// Configured prefixes win over the built-in table; the rest of the
	// profile survives.
	assert.Equal(t, "/de-de-b2b/", profiles["DE"].PathPrefix)
	assert.NotEmpty(t, profiles["DE"].Cities)

	// Unconfigured countries keep their defaults.
	assert.Equal(t, "/", profiles["AT"].PathPrefix)

	// A configured country outside the built-in table becomes a minimal
	// profile.
	require.Contains(t, profiles, "FR")
	assert.Equal(t, "FR", profiles["FR"].Code)
	assert.Equal(t, "/fr-fr/", profiles["FR"].PathPrefix)
}
