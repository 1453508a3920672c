package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopharness/internal/browser"
	"shopharness/internal/contract"
	"shopharness/internal/pages"
)

func automatedContract(callable string) *contract.Contract {
	return &contract.Contract{
		SchemaVersion: contract.CurrentSchemaVersion,
		TestID:        "TC-CART-001",
		Status:        contract.StatusImplemented,
		Automation: contract.AutomationMapping{
			Frameworks: map[string]*contract.FrameworkRef{
				BrowserFramework: {File: "internal/engine/scenarios/cart.go", Callable: callable},
			},
			Status: contract.AutomationAutomated,
		},
	}
}

func TestCaptureArtifactsRecordsTracePath(t *testing.T) {
	dir := t.TempDir()
	e := New(nil, Options{ArtifactDir: dir})

	env := &Env{
		Contract: automatedContract("traceOnlyScenario"),
		StepLog:  browser.NewStepLog("TC-CART-001"),
	}
	env.StepLog.Record(1, "navigate", "ok", "")
	result := newRunResult("TC-CART-001")

	// A passing run writes the trace only; no screenshot is attempted.
	e.captureArtifacts(nil, env, result, nil)

	require.NotEmpty(t, result.Artifacts.Trace)
	_, err := os.Stat(result.Artifacts.Trace)
	assert.NoError(t, err)
	assert.Empty(t, result.Artifacts.Screenshot)
}

func TestRegisterAndLookup(t *testing.T) {
	Register("testOnlyScenario", func(ctx context.Context, env *Env) error { return nil })

	fn, ok := Lookup("testOnlyScenario")
	assert.True(t, ok)
	assert.NotNil(t, fn)

	_, ok = Lookup("neverRegistered")
	assert.False(t, ok)

	assert.Contains(t, RegisteredCallables(), "testOnlyScenario")
	assert.Panics(t, func() {
		Register("testOnlyScenario", func(ctx context.Context, env *Env) error { return nil })
	})
}

func TestBind(t *testing.T) {
	Register("boundScenario", func(ctx context.Context, env *Env) error { return nil })
	e := New(nil, Options{})

	t.Run("resolves registered callable", func(t *testing.T) {
		fn, reason := e.bind(automatedContract("boundScenario"))
		require.NotNil(t, fn)
		assert.Empty(t, reason)
	})

	t.Run("skips deprecated contracts", func(t *testing.T) {
		c := automatedContract("boundScenario")
		c.Status = contract.StatusDeprecated
		fn, reason := e.bind(c)
		assert.Nil(t, fn)
		assert.Contains(t, reason, "deprecated")
	})

	t.Run("skips missing browser reference", func(t *testing.T) {
		c := automatedContract("boundScenario")
		c.Automation.Frameworks[BrowserFramework] = nil
		fn, reason := e.bind(c)
		assert.Nil(t, fn)
		assert.Contains(t, reason, "no browser automation reference")
	})

	t.Run("skips unregistered callable", func(t *testing.T) {
		fn, reason := e.bind(automatedContract("ghostScenario"))
		assert.Nil(t, fn)
		assert.Contains(t, reason, "ghostScenario")
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		outcome  Outcome
		errClass string
	}{
		{
			name:     "assertion failure",
			err:      Failf(2, "cart holds one item", "cart is empty"),
			outcome:  OutcomeFailed,
			errClass: "assertion",
		},
		{
			name:     "wrapped assertion failure",
			err:      fmt.Errorf("scenario: %w", &ScenarioFailure{Step: 1}),
			outcome:  OutcomeFailed,
			errClass: "assertion",
		},
		{
			name:     "scenario error",
			err:      &ScenarioError{Op: "resolve product", Err: errors.New("unknown ref")},
			outcome:  OutcomeErrored,
			errClass: "scenario-error",
		},
		{
			name:     "page validation failure",
			err:      &pages.PageError{Kind: pages.FailureValidation},
			outcome:  OutcomeFailed,
			errClass: "validation-error-on-page",
		},
		{
			name:     "unexpected URL",
			err:      &pages.PageError{Kind: pages.FailureUnexpectedURL},
			outcome:  OutcomeFailed,
			errClass: "unexpected-url",
		},
		{
			name:     "selector not found",
			err:      &pages.PageError{Kind: pages.FailureSelectorNotFound},
			outcome:  OutcomeErrored,
			errClass: "selector-not-found",
		},
		{
			name:     "timeout",
			err:      &pages.PageError{Kind: pages.FailureTimeout},
			outcome:  OutcomeErrored,
			errClass: "timeout",
		},
		{
			name:     "unclassified",
			err:      errors.New("boom"),
			outcome:  OutcomeErrored,
			errClass: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, class := classify(tt.err)
			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.errClass, class)
		})
	}
}

func TestFailedStep(t *testing.T) {
	assert.Equal(t, 3, failedStep(Failf(3, "x", "y")))
	assert.Equal(t, 0, failedStep(errors.New("boom")))
}

func TestRetryAllowed(t *testing.T) {
	c := automatedContract("any")
	assert.False(t, retryAllowed(c), "no orchestration block")

	c.Orchestration = &contract.Orchestration{RetryCount: 0}
	assert.False(t, retryAllowed(c))

	c.Orchestration.RetryCount = 1
	assert.True(t, retryAllowed(c))
}

func TestRunSkipsUnrunnableContracts(t *testing.T) {
	e := New(nil, Options{})
	c := automatedContract("neverRegisteredScenario")

	result := e.Run(context.Background(), c)
	assert.Equal(t, OutcomeSkipped, result.Outcome)
	assert.Equal(t, c.TestID, result.ContractID)
	assert.NotEmpty(t, result.RunID)
	assert.False(t, result.Started.IsZero())
	assert.False(t, result.Finished.IsZero())
}

func TestScenarioFailureMessage(t *testing.T) {
	err := Failf(2, "quantity 3", "quantity %d", 1)
	assert.Contains(t, err.Error(), "step 2")
	assert.Contains(t, err.Error(), `"quantity 3"`)
	assert.Contains(t, err.Error(), `"quantity 1"`)

	post := &ScenarioFailure{Expected: "cart empty", Observed: "one item"}
	assert.Contains(t, post.Error(), "postcondition")
}
