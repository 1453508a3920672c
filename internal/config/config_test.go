package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopharness/internal/contract"
)

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	return path
}

func TestLoadDefaultsOnly(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Profile)
	assert.Equal(t, "http://localhost:8000", cfg.Settings.BaseURL)
	assert.Equal(t, 5, cfg.Settings.ParallelWorkers)
	assert.True(t, cfg.Settings.IsHeadless())
	assert.Equal(t, 3*time.Minute, cfg.Settings.Timeout())
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
base_url: https://shop.example
timeout: 60000
parallel_workers: 8
payment_method_aliases:
  invoice: Rechnung
country_paths:
  CH: /de-ch/
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example", cfg.Settings.BaseURL)
	assert.Equal(t, time.Minute, cfg.Settings.Timeout())
	assert.Equal(t, 8, cfg.Settings.ParallelWorkers)
	assert.Equal(t, "Rechnung", cfg.Settings.PaymentMethodAliases["invoice"])
	// File layers merge into the defaults instead of replacing them.
	assert.Equal(t, "/de-ch/", cfg.Settings.CountryPaths["CH"])
	assert.Equal(t, "/de-de/", cfg.Settings.CountryPaths["DE"])
}

func TestLoadProfileOverride(t *testing.T) {
	path := writeConfig(t, `
base_url: https://base.example
profiles:
  staging:
    base_url: https://staging.example
    headless: false
  production:
    base_url: https://shop.example
`)

	t.Run("default profile is staging", func(t *testing.T) {
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://staging.example", cfg.Settings.BaseURL)
		assert.False(t, cfg.Settings.IsHeadless())
	})

	t.Run("TEST_PROFILE selects another profile", func(t *testing.T) {
		t.Setenv("TEST_PROFILE", "production")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.Profile)
		assert.Equal(t, "https://shop.example", cfg.Settings.BaseURL)
		assert.True(t, cfg.Settings.IsHeadless(), "production does not override headless")
	})
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `base_url: https://file.example`)
	t.Setenv("SHOP_BASE_URL", "https://env.example")
	t.Setenv("SHOP_PARALLEL_WORKERS", "12")
	t.Setenv("SHOP_HEADLESS", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example", cfg.Settings.BaseURL)
	assert.Equal(t, 12, cfg.Settings.ParallelWorkers)
	assert.False(t, cfg.Settings.IsHeadless())
}

func TestSecretsComeFromEnvironment(t *testing.T) {
	t.Setenv("SHOP_CUSTOMER_EMAIL", "pool@example.com")
	t.Setenv("SHOP_CUSTOMER_PASSWORD", "secret")
	t.Setenv("SHOP_BASIC_AUTH_USER", "staging")
	t.Setenv("SHOP_BASIC_AUTH_PASSWORD", "gate")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "pool@example.com", cfg.Secrets.CustomerEmail)
	assert.Equal(t, "secret", cfg.Secrets.CustomerPassword)
	assert.Equal(t, "staging", cfg.Secrets.BasicAuthUser)
	assert.Equal(t, "gate", cfg.Secrets.BasicAuthPass)
}

func TestLoadRejectsBadEnvValues(t *testing.T) {
	t.Setenv("SHOP_TIMEOUT_MS", "soon")
	_, err := Load("")
	var inputErr *contract.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "SHOP_TIMEOUT_MS", inputErr.Issues[0].Path)
}

func TestLoadMissingFileIsEnvironmentError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var envErr *contract.EnvironmentError
	require.ErrorAs(t, err, &envErr)
}
