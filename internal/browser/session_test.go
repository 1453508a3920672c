package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopharness/internal/contract"
)

// A dead allocator context makes the header injection fail without a real
// Chrome; the error must carry the environment class so campaign runners
// abort instead of burning through every order.
func TestNewSessionBasicAuthFailureIsEnvironmentError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := New(ctx, Options{
		BasicAuthUser:     "qa",
		BasicAuthPassword: "secret",
	})
	defer b.Close()

	sess, err := b.NewSession(context.Background())
	require.Error(t, err)
	assert.Nil(t, sess)

	var envErr *contract.EnvironmentError
	assert.ErrorAs(t, err, &envErr)
	assert.Contains(t, err.Error(), "enable basic auth")
}
