package taxonomy

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"shopharness/internal/contract"
)

// BackupSuffix is appended to the pre-write copy of the taxonomy file.
const BackupSuffix = ".backup"

// PaymentTaxonomy is the ground-truth mapping between stable English alias
// tokens and the payment-method labels the storefront renders, plus the
// ordered label list observed per country.
type PaymentTaxonomy struct {
	// Methods holds the ordered display labels per country, as observed on
	// the storefront's confirm page.
	Methods map[string][]string `yaml:"payment_methods"`
	// Aliases maps a stable token (invoice, paypal, ...) to the display
	// label. Only the discovery pass writes new entries.
	Aliases map[string]string `yaml:"payment_method_aliases"`
}

// NewPaymentTaxonomy returns an empty taxonomy ready for discovery.
func NewPaymentTaxonomy() *PaymentTaxonomy {
	return &PaymentTaxonomy{
		Methods: map[string][]string{},
		Aliases: map[string]string{},
	}
}

// LoadPaymentTaxonomy reads the taxonomy file. A missing file yields an
// empty taxonomy; discovery creates it.
func LoadPaymentTaxonomy(path string) (*PaymentTaxonomy, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewPaymentTaxonomy(), nil
	}
	if err != nil {
		return nil, &contract.EnvironmentError{Op: "read payment taxonomy", Err: err}
	}
	tax := NewPaymentTaxonomy()
	if err := yaml.Unmarshal(data, tax); err != nil {
		return nil, &contract.InputError{Source: path, Err: err}
	}
	return tax, nil
}

// Resolve turns an alias token or an already-resolved display label into
// the display label. Unknown inputs that are not labels fail with the list
// of known aliases.
func (t *PaymentTaxonomy) Resolve(aliasOrLabel string) (string, error) {
	if label, ok := t.Aliases[aliasOrLabel]; ok {
		return label, nil
	}
	for _, labels := range t.Methods {
		for _, label := range labels {
			if label == aliasOrLabel {
				return label, nil
			}
		}
	}
	return "", &contract.InputError{
		Source: "payment taxonomy",
		Issues: []contract.Issue{{
			Path:    aliasOrLabel,
			Message: fmt.Sprintf("unknown payment alias; known aliases: %s", strings.Join(t.AliasTokens(), ", ")),
		}},
	}
}

// AliasTokens lists the known alias tokens, sorted.
func (t *PaymentTaxonomy) AliasTokens() []string {
	tokens := make([]string, 0, len(t.Aliases))
	for token := range t.Aliases {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// knownLabelAliases maps well-known storefront labels to their stable
// tokens. Discovery consults this dictionary before deriving a token.
var knownLabelAliases = map[string]string{
	"Rechnung":                "invoice",
	"Kauf auf Rechnung":       "invoice",
	"Kreditkarte":             "credit_card",
	"PayPal":                  "paypal",
	"Vorkasse":                "prepayment",
	"Vorauszahlung":           "prepayment",
	"Nachnahme":               "cash_on_delivery",
	"Sofortüberweisung":       "sofort",
	"Lastschrift":             "direct_debit",
	"SEPA-Lastschrift":        "direct_debit",
	"Barzahlung bei Abholung": "cash_on_pickup",
}

// TokenForLabel returns the stable token for a display label: the fixed
// dictionary first, then a deterministic derivation for unknown labels.
func TokenForLabel(label string) string {
	if token, ok := knownLabelAliases[label]; ok {
		return token
	}
	return DeriveToken(label)
}

// umlautReplacer folds German umlauts and sharp-s to ASCII.
var umlautReplacer = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue",
	"Ä", "ae", "Ö", "oe", "Ü", "ue",
	"ß", "ss",
)

// DeriveToken derives a stable token from an unknown display label:
// lowercase, umlauts and sharp-s folded to ASCII, spaces to underscores.
// The derivation is deterministic, so repeated discovery runs agree.
func DeriveToken(label string) string {
	token := umlautReplacer.Replace(label)
	token = strings.ToLower(token)
	token = strings.Join(strings.Fields(token), "_")
	return token
}

// MergeObservation records the labels observed for a country and extends
// the alias map without deleting prior entries. Existing aliases win over
// newly derived ones.
func (t *PaymentTaxonomy) MergeObservation(country string, labels []string) {
	t.Methods[country] = append([]string{}, labels...)
	for _, label := range labels {
		token := TokenForLabel(label)
		if _, exists := t.Aliases[token]; !exists {
			t.Aliases[token] = label
		}
	}
}

// Save writes the taxonomy file. When the file already exists, a byte-exact
// backup with the .backup suffix is written first; the write itself is
// atomic, so the file on disk is always valid YAML.
func (t *PaymentTaxonomy) Save(path string) error {
	if prior, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(path+BackupSuffix, prior, 0644); err != nil {
			return &contract.EnvironmentError{Op: "write taxonomy backup", Err: err}
		}
	} else if !os.IsNotExist(err) {
		return &contract.EnvironmentError{Op: "read prior taxonomy", Err: err}
	}

	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	return contract.WriteFileAtomic(path, data)
}
