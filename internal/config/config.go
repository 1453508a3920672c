// Package config loads the harness configuration through layered
// resolution: built-in defaults, then the YAML file, then the profile
// selected by TEST_PROFILE, then environment variables. Secrets come from
// the environment only, with an optional .env file filling gaps.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"shopharness/internal/contract"
	"shopharness/pkg/logging"
)

// DefaultProfile is used when TEST_PROFILE is unset.
const DefaultProfile = "staging"

// Settings are the profile-scoped options of the harness.
type Settings struct {
	BaseURL string `yaml:"base_url"`
	// TimeoutMS bounds one contract run, in milliseconds.
	TimeoutMS       int   `yaml:"timeout"`
	ParallelWorkers int   `yaml:"parallel_workers"`
	Headless        *bool `yaml:"headless"`
	// SlowMoMS pauses after every browser action, in milliseconds.
	SlowMoMS int `yaml:"slow_mo"`
	// CountryPaths maps country code to the storefront path prefix.
	CountryPaths map[string]string `yaml:"country_paths"`
	// PaymentMethods is the per-country label list, ground truth from
	// discovery.
	PaymentMethods map[string][]string `yaml:"payment_methods"`
	// PaymentMethodAliases maps stable tokens to display labels.
	PaymentMethodAliases map[string]string `yaml:"payment_method_aliases"`
}

// Secrets are credentials, never read from the YAML file.
type Secrets struct {
	CustomerEmail    string
	CustomerPassword string
	AdminUser        string
	AdminPassword    string
	BasicAuthUser    string
	BasicAuthPass    string
}

// Config is the fully resolved configuration.
type Config struct {
	Profile  string
	Settings Settings
	Secrets  Secrets
}

// file is the on-disk shape: base settings plus named profile overrides.
type file struct {
	Settings `yaml:",inline"`
	Profiles map[string]Settings `yaml:"profiles"`
}

// defaults returns the built-in base settings.
func defaults() Settings {
	headless := true
	return Settings{
		BaseURL:         "http://localhost:8000",
		TimeoutMS:       int(3 * time.Minute / time.Millisecond),
		ParallelWorkers: 5,
		Headless:        &headless,
		CountryPaths: map[string]string{
			"AT": "/",
			"DE": "/de-de/",
		},
		PaymentMethodAliases: map[string]string{},
		PaymentMethods:       map[string][]string{},
	}
}

// Load resolves the configuration. The path may be empty, in which case
// only defaults, the profile and the environment apply. A missing .env
// file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Warn("config", "reading .env: %v", err)
	}

	settings := defaults()

	var f file
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &contract.EnvironmentError{Op: "read config file", Err: err}
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, &contract.InputError{Source: path, Err: err}
		}
		settings.merge(f.Settings)
	}

	profile := os.Getenv("TEST_PROFILE")
	if profile == "" {
		profile = DefaultProfile
	}
	if override, ok := f.Profiles[profile]; ok {
		settings.merge(override)
	} else if path != "" && profile != DefaultProfile {
		logging.Warn("config", "profile %q not in %s, using base settings", profile, path)
	}

	if err := settings.applyEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Profile:  profile,
		Settings: settings,
		Secrets: Secrets{
			CustomerEmail:    os.Getenv("SHOP_CUSTOMER_EMAIL"),
			CustomerPassword: os.Getenv("SHOP_CUSTOMER_PASSWORD"),
			AdminUser:        os.Getenv("SHOP_ADMIN_USER"),
			AdminPassword:    os.Getenv("SHOP_ADMIN_PASSWORD"),
			BasicAuthUser:    os.Getenv("SHOP_BASIC_AUTH_USER"),
			BasicAuthPass:    os.Getenv("SHOP_BASIC_AUTH_PASSWORD"),
		},
	}
	logging.Debug("config", "resolved profile %q, base URL %s", profile, settings.BaseURL)
	return cfg, nil
}

// merge overlays non-zero values of another settings layer.
func (s *Settings) merge(layer Settings) {
	if layer.BaseURL != "" {
		s.BaseURL = layer.BaseURL
	}
	if layer.TimeoutMS > 0 {
		s.TimeoutMS = layer.TimeoutMS
	}
	if layer.ParallelWorkers > 0 {
		s.ParallelWorkers = layer.ParallelWorkers
	}
	if layer.Headless != nil {
		s.Headless = layer.Headless
	}
	if layer.SlowMoMS > 0 {
		s.SlowMoMS = layer.SlowMoMS
	}
	for country, p := range layer.CountryPaths {
		s.CountryPaths[country] = p
	}
	for country, labels := range layer.PaymentMethods {
		s.PaymentMethods[country] = labels
	}
	for alias, label := range layer.PaymentMethodAliases {
		s.PaymentMethodAliases[alias] = label
	}
}

// applyEnv overlays SHOP_* environment variables onto the settings.
func (s *Settings) applyEnv() error {
	if v := os.Getenv("SHOP_BASE_URL"); v != "" {
		s.BaseURL = v
	}
	intVars := []struct {
		name string
		dst  *int
	}{
		{"SHOP_TIMEOUT_MS", &s.TimeoutMS},
		{"SHOP_PARALLEL_WORKERS", &s.ParallelWorkers},
		{"SHOP_SLOW_MO_MS", &s.SlowMoMS},
	}
	for _, iv := range intVars {
		raw := os.Getenv(iv.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return &contract.InputError{
				Source: "environment",
				Issues: []contract.Issue{{Path: iv.name, Message: fmt.Sprintf("not an integer: %q", raw)}},
			}
		}
		*iv.dst = n
	}
	if raw := os.Getenv("SHOP_HEADLESS"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return &contract.InputError{
				Source: "environment",
				Issues: []contract.Issue{{Path: "SHOP_HEADLESS", Message: fmt.Sprintf("not a boolean: %q", raw)}},
			}
		}
		s.Headless = &b
	}
	return nil
}

// Timeout returns the per-contract timeout as a duration.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// SlowMo returns the per-action pause as a duration.
func (s Settings) SlowMo() time.Duration {
	return time.Duration(s.SlowMoMS) * time.Millisecond
}

// IsHeadless resolves the headless flag, defaulting to true.
func (s Settings) IsHeadless() bool {
	return s.Headless == nil || *s.Headless
}
