package engine

import (
	"errors"
	"fmt"

	"shopharness/internal/pages"
)

// ScenarioFailure means the storefront did something the contract forbids:
// an expectation was judged and came out wrong. It maps to outcome
// "failed".
type ScenarioFailure struct {
	// Step is the one-based ordinal of the failing step, zero when the
	// failure is a postcondition.
	Step     int
	Expected string
	Observed string
}

func (f *ScenarioFailure) Error() string {
	if f.Step > 0 {
		return fmt.Sprintf("step %d failed: expected %q, observed %q", f.Step, f.Expected, f.Observed)
	}
	return fmt.Sprintf("postcondition failed: expected %q, observed %q", f.Expected, f.Observed)
}

// Failf raises a ScenarioFailure for a step.
func Failf(step int, expected, observedFormat string, args ...interface{}) error {
	return &ScenarioFailure{Step: step, Expected: expected, Observed: fmt.Sprintf(observedFormat, args...)}
}

// ScenarioError means the run broke without a verdict: the scenario could
// not drive the storefront far enough to judge anything. It maps to
// outcome "errored".
type ScenarioError struct {
	Op  string
	Err error
}

func (e *ScenarioError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ScenarioError) Unwrap() error { return e.Err }

// classify maps a scenario error to an outcome and an error-class string.
// Page failures that carry a verdict (the storefront rendered the wrong
// thing, or landed on the wrong page) count as failed; everything that
// prevented a verdict counts as errored.
func classify(err error) (Outcome, string) {
	var sf *ScenarioFailure
	if errors.As(err, &sf) {
		return OutcomeFailed, "assertion"
	}
	var se *ScenarioError
	if errors.As(err, &se) {
		return OutcomeErrored, "scenario-error"
	}

	switch kind := pages.Classify(err); kind {
	case pages.FailureValidation, pages.FailureUnexpectedURL:
		return OutcomeFailed, string(kind)
	case "":
		return OutcomeErrored, "unknown"
	default:
		return OutcomeErrored, string(kind)
	}
}

// failedStep extracts the failing step ordinal, zero when the error does
// not point at one.
func failedStep(err error) int {
	var sf *ScenarioFailure
	if errors.As(err, &sf) {
		return sf.Step
	}
	return 0
}
