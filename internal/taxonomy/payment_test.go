package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopharness/internal/contract"
)

func TestResolveAliasAndLabel(t *testing.T) {
	tax := NewPaymentTaxonomy()
	tax.Aliases["invoice"] = "Rechnung"
	tax.Methods["AT"] = []string{"Rechnung", "Vorkasse"}

	label, err := tax.Resolve("invoice")
	require.NoError(t, err)
	assert.Equal(t, "Rechnung", label)

	// A display label passes through unchanged.
	label, err = tax.Resolve("Vorkasse")
	require.NoError(t, err)
	assert.Equal(t, "Vorkasse", label)
}

func TestResolveUnknownAliasListsKnownOnes(t *testing.T) {
	tax := NewPaymentTaxonomy()
	tax.Aliases["invoice"] = "Rechnung"
	tax.Aliases["paypal"] = "PayPal"

	_, err := tax.Resolve("bitcoin")
	var inputErr *contract.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Contains(t, inputErr.Error(), "invoice, paypal")
}

func TestAliasRoundTrip(t *testing.T) {
	tax := NewPaymentTaxonomy()
	tax.MergeObservation("AT", []string{"Rechnung", "Kreditkarte", "Sofortüberweisung"})

	for token, label := range tax.Aliases {
		resolved, err := tax.Resolve(token)
		require.NoError(t, err)
		assert.Equal(t, label, resolved)
	}
}

func TestDeriveToken(t *testing.T) {
	cases := map[string]string{
		"Rechnung":            "rechnung",
		"Kauf auf Ziel":       "kauf_auf_ziel",
		"Sofortüberweisung":   "sofortueberweisung",
		"Größenzuschlag  Süd": "groessenzuschlag_sued",
		"Barzahlung":          "barzahlung",
	}
	for label, want := range cases {
		assert.Equal(t, want, DeriveToken(label), label)
		// Deterministic on repeat.
		assert.Equal(t, DeriveToken(label), DeriveToken(label))
	}
}

func TestTokenForLabelPrefersDictionary(t *testing.T) {
	assert.Equal(t, "invoice", TokenForLabel("Rechnung"))
	assert.Equal(t, "sofort", TokenForLabel("Sofortüberweisung"))
	// Unknown labels fall back to derivation.
	assert.Equal(t, "kauf_auf_ziel", TokenForLabel("Kauf auf Ziel"))
}

func TestMergeObservationKeepsPriorAliases(t *testing.T) {
	tax := NewPaymentTaxonomy()
	tax.Aliases["invoice"] = "Kauf auf Rechnung"

	tax.MergeObservation("DE", []string{"Rechnung", "PayPal"})

	// The prior mapping survives; the new label does not replace it.
	assert.Equal(t, "Kauf auf Rechnung", tax.Aliases["invoice"])
	assert.Equal(t, "PayPal", tax.Aliases["paypal"])
	assert.Equal(t, []string{"Rechnung", "PayPal"}, tax.Methods["DE"])
}

func TestSaveWritesBackupOfPriorState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")

	tax := NewPaymentTaxonomy()
	tax.MergeObservation("AT", []string{"Rechnung"})
	require.NoError(t, tax.Save(path))
	// First save of a new file leaves no backup behind.
	_, err := os.Stat(path + BackupSuffix)
	assert.True(t, os.IsNotExist(err))

	prior, err := os.ReadFile(path)
	require.NoError(t, err)

	tax.MergeObservation("DE", []string{"Rechnung", "PayPal"})
	require.NoError(t, tax.Save(path))

	backup, err := os.ReadFile(path + BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, prior, backup, "backup must be byte-identical to the pre-run state")

	reloaded, err := LoadPaymentTaxonomy(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rechnung", "PayPal"}, reloaded.Methods["DE"])
	assert.Equal(t, "Rechnung", reloaded.Aliases["invoice"])
}

func TestLoadMissingFileYieldsEmptyTaxonomy(t *testing.T) {
	tax, err := LoadPaymentTaxonomy(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, tax.Methods)
	assert.Empty(t, tax.Aliases)
}
