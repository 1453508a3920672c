// Package taxonomy holds the static ground-truth tables of the harness: the
// postcode-range to carrier rules, the payment-method alias map per country,
// and the country profiles with their URL prefixes and address fixture
// pools.
//
// The taxonomy file on disk is the stable contract between the harness and
// the storefront. Only the discovery pass writes it, and always under a
// byte-exact backup of the previous state.
package taxonomy
