package engine

import (
	"time"

	"github.com/google/uuid"

	"shopharness/internal/browser"
)

// Outcome classifies how a single contract run ended.
type Outcome string

const (
	// OutcomePassed means the scenario completed and every assertion held.
	OutcomePassed Outcome = "passed"
	// OutcomeFailed means the storefront behaved differently than the
	// contract expects.
	OutcomeFailed Outcome = "failed"
	// OutcomeSkipped means the contract was not runnable (no automation
	// binding or deprecated).
	OutcomeSkipped Outcome = "skipped"
	// OutcomeErrored means the run broke before an assertion could be
	// judged: timeouts, missing selectors, cancellation.
	OutcomeErrored Outcome = "errored"
)

// RunResult captures one execution of one contract.
type RunResult struct {
	RunID      string        `json:"run_id"`
	ContractID string        `json:"contract_id"`
	Outcome    Outcome       `json:"outcome"`
	Started    time.Time     `json:"started"`
	Finished   time.Time     `json:"finished"`
	Duration   time.Duration `json:"duration"`
	// OrderNumber is set for checkout scenarios that placed an order.
	OrderNumber string `json:"order_number,omitempty"`
	OrderID     string `json:"order_id,omitempty"`
	// FailedStep is the one-based step ordinal a failure points at, zero
	// when unknown.
	FailedStep int `json:"failed_step,omitempty"`
	// ErrorClass is the failure classification, empty on a pass.
	ErrorClass string `json:"error_class,omitempty"`
	Message    string `json:"message,omitempty"`
	// Retried is true when the run is the second attempt after an errored
	// first one.
	Retried bool `json:"retried,omitempty"`
	// Artifacts names the files captured for the run.
	Artifacts browser.ArtifactSet `json:"artifacts"`

	// err is the raw scenario error, kept for classification by callers.
	err error
}

// Err returns the raw error of a non-passing run, nil otherwise.
func (r *RunResult) Err() error { return r.err }

// SetErr attaches the raw error so callers can classify it later.
func (r *RunResult) SetErr(err error) { r.err = err }

func newRunResult(contractID string) *RunResult {
	return &RunResult{
		RunID:      uuid.NewString(),
		ContractID: contractID,
		Started:    time.Now().UTC(),
	}
}

func (r *RunResult) finish(outcome Outcome) {
	r.Finished = time.Now().UTC()
	r.Duration = r.Finished.Sub(r.Started)
	r.Outcome = outcome
}

// Passed is a convenience predicate for report code.
func (r *RunResult) Passed() bool { return r.Outcome == OutcomePassed }
