package scenarios

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopharness/internal/contract"
	"shopharness/internal/engine"
)

func TestEveryMigratedCallableIsRegistered(t *testing.T) {
	// Contracts produced by the schema migrator reference these callables.
	for _, callable := range []string{
		"Cart001", "Cart002", "Cart003",
		"Checkout001", "Checkout002",
		"Account001", "Login001", "Login002",
		"Wish001", "Ship001",
	} {
		_, ok := engine.Lookup(callable)
		assert.True(t, ok, "callable %s is not registered", callable)
	}
}

func TestProductPathResolution(t *testing.T) {
	path, err := productPath("")
	require.NoError(t, err)
	assert.Equal(t, "/detail/SW10001", path)

	path, err = productPath("product_freight")
	require.NoError(t, err)
	assert.Equal(t, "/detail/SW10178", path)

	_, err = productPath("product_ghost")
	assert.Error(t, err)
}

func TestContractProductPath(t *testing.T) {
	c := &contract.Contract{TestData: []contract.TestDataEntry{
		{"type": "channel", "name": "AT"},
		{"type": "product_ref", "ref": "product_promo"},
	}}
	path, err := contractProductPath(c)
	require.NoError(t, err)
	assert.Equal(t, "/detail/SW10410", path)

	// Without a product entry the default product applies.
	path, err = contractProductPath(&contract.Contract{})
	require.NoError(t, err)
	assert.Equal(t, "/detail/SW10001", path)
}

func TestDefaultAddressOverrides(t *testing.T) {
	addr := defaultAddress(&contract.Contract{})
	assert.Equal(t, "Wien", addr.City)
	assert.Equal(t, "Österreich", addr.CountryLabel)

	c := &contract.Contract{TestData: []contract.TestDataEntry{
		{"type": "address", "city": "Berlin", "postcode": "10115", "country_label": "Deutschland"},
	}}
	addr = defaultAddress(c)
	assert.Equal(t, "Berlin", addr.City)
	assert.Equal(t, "10115", addr.Postcode)
	assert.Equal(t, "Deutschland", addr.CountryLabel)
	assert.Equal(t, "Max", addr.FirstName, "unset fields keep their defaults")
}
