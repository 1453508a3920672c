package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"shopharness/internal/browser"
	"shopharness/internal/contract"
	"shopharness/internal/taxonomy"
	"shopharness/pkg/logging"
)

// BrowserFramework is the framework key of contracts this engine can run.
const BrowserFramework = "browser"

// DefaultContractTimeout bounds a single contract run including its retry.
const DefaultContractTimeout = 3 * time.Minute

// Env is everything a scenario needs to drive the storefront. One Env
// serves one run; the session is exclusive to it.
type Env struct {
	Session  *browser.Session
	BaseURL  string
	Taxonomy *taxonomy.PaymentTaxonomy
	Contract *contract.Contract
	StepLog  *browser.StepLog
}

// ScenarioFunc is a runnable scenario bound to a contract.
type ScenarioFunc func(ctx context.Context, env *Env) error

var (
	registryMu sync.RWMutex
	registry   = map[string]ScenarioFunc{}
)

// Register binds a callable name to a scenario implementation. Scenario
// packages call this from init; a duplicate name is a programming error.
func Register(callable string, fn ScenarioFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[callable]; exists {
		panic(fmt.Sprintf("scenario %q registered twice", callable))
	}
	registry[callable] = fn
}

// Lookup resolves a callable name to its scenario, if any.
func Lookup(callable string) (ScenarioFunc, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[callable]
	return fn, ok
}

// RegisteredCallables lists every bound scenario name, sorted.
func RegisteredCallables() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Options configure an Engine.
type Options struct {
	BaseURL  string
	Taxonomy *taxonomy.PaymentTaxonomy
	// ArtifactDir receives screenshots and step traces; empty disables
	// artifact capture.
	ArtifactDir string
	// ContractTimeout bounds one contract run.
	ContractTimeout time.Duration
}

// Engine runs contracts against a storefront through the page views.
type Engine struct {
	browser *browser.Browser
	opts    Options
}

// New creates an engine over a browser fleet.
func New(b *browser.Browser, opts Options) *Engine {
	if opts.ContractTimeout == 0 {
		opts.ContractTimeout = DefaultContractTimeout
	}
	return &Engine{browser: b, opts: opts}
}

// Run executes one contract and always returns a result; errors are folded
// into the result's outcome. A contract whose automation mapping has no
// browser reference, or whose status is deprecated, is skipped. An errored
// first attempt is re-run once when the contract's orchestration allows a
// retry; a failed attempt is final.
func (e *Engine) Run(ctx context.Context, c *contract.Contract) *RunResult {
	result := newRunResult(c.TestID)

	fn, skipReason := e.bind(c)
	if fn == nil {
		result.Message = skipReason
		result.finish(OutcomeSkipped)
		logging.Info("engine", "skipping %s: %s", c.TestID, skipReason)
		return result
	}

	e.attempt(ctx, c, fn, result)

	if result.Outcome == OutcomeErrored && retryAllowed(c) && ctx.Err() == nil {
		logging.Info("engine", "%s errored (%s), retrying once", c.TestID, result.Message)
		retried := newRunResult(c.TestID)
		retried.Retried = true
		e.attempt(ctx, c, fn, retried)
		return retried
	}
	return result
}

// bind resolves the contract's browser automation reference to a registered
// scenario. A nil return means skip, with the reason.
func (e *Engine) bind(c *contract.Contract) (ScenarioFunc, string) {
	if c.Status == contract.StatusDeprecated {
		return nil, "contract is deprecated"
	}
	ref := c.Automation.Frameworks[BrowserFramework]
	if ref == nil {
		return nil, "no browser automation reference"
	}
	fn, ok := Lookup(ref.Callable)
	if !ok {
		return nil, fmt.Sprintf("callable %q is not registered", ref.Callable)
	}
	return fn, ""
}

// attempt drives a single run: session, preconditions, scenario, cleanup.
func (e *Engine) attempt(ctx context.Context, c *contract.Contract, fn ScenarioFunc, result *RunResult) {
	runCtx, cancel := context.WithTimeout(ctx, e.opts.ContractTimeout)
	defer cancel()

	session, err := e.browser.NewSession(runCtx)
	if err != nil {
		result.err = err
		result.Message = err.Error()
		result.ErrorClass = "session"
		result.finish(OutcomeErrored)
		return
	}
	defer session.Close()

	env := &Env{
		Session:  session,
		BaseURL:  e.opts.BaseURL,
		Taxonomy: e.opts.Taxonomy,
		Contract: c,
		StepLog:  browser.NewStepLog(c.TestID),
	}

	logging.Info("engine", "running %s (%s)", c.TestID, c.Name)
	runErr := fn(runCtx, env)
	e.captureArtifacts(session, env, result, runErr)

	if runErr == nil {
		result.finish(OutcomePassed)
		logging.Info("engine", "%s passed in %s", c.TestID, result.Duration.Round(time.Millisecond))
		return
	}

	outcome, class := classify(runErr)
	result.err = runErr
	result.ErrorClass = class
	result.Message = runErr.Error()
	result.FailedStep = failedStep(runErr)
	result.finish(outcome)
	logging.Warn("engine", "%s %s: %s", c.TestID, outcome, runErr)
}

// captureArtifacts writes the step trace always and a screenshot on any
// non-pass, as far as the session still allows.
func (e *Engine) captureArtifacts(session *browser.Session, env *Env, result *RunResult, runErr error) {
	if e.opts.ArtifactDir == "" {
		return
	}
	if path, err := env.StepLog.Write(e.opts.ArtifactDir); err == nil {
		result.Artifacts.Trace = path
	} else {
		logging.Warn("engine", "writing step trace for %s: %v", env.Contract.TestID, err)
	}
	if runErr == nil {
		return
	}
	if path, err := session.CaptureScreenshot(e.opts.ArtifactDir, env.Contract.TestID); err == nil {
		result.Artifacts.Screenshot = path
	} else {
		logging.Warn("engine", "capturing screenshot for %s: %v", env.Contract.TestID, err)
	}
}

func retryAllowed(c *contract.Contract) bool {
	return c.Orchestration != nil && c.Orchestration.RetryCount > 0
}

// RunAll executes a list of contracts sequentially and reports per-contract
// results. InputError and EnvironmentError abort; everything else is folded
// into results.
func (e *Engine) RunAll(ctx context.Context, contracts []*contract.Contract) ([]*RunResult, error) {
	results := make([]*RunResult, 0, len(contracts))
	for _, c := range contracts {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result := e.Run(ctx, c)
		results = append(results, result)

		var envErr *contract.EnvironmentError
		if errors.As(result.Err(), &envErr) {
			return results, envErr
		}
	}
	return results, nil
}
