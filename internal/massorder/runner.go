package massorder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"shopharness/internal/contract"
	"shopharness/internal/engine"
	"shopharness/internal/taxonomy"
	"shopharness/pkg/logging"
)

// DefaultWorkers caps concurrent browser contexts when the campaign does
// not configure its own width.
const DefaultWorkers = 5

// OrderFunc drives one order to completion in its own isolated browsing
// context and reports the outcome. The production implementation lives in
// order.go; tests substitute their own.
type OrderFunc func(ctx context.Context, order Order) *engine.RunResult

// Options configure a campaign.
type Options struct {
	// Workers is the concurrency cap W.
	Workers int
	// Deadline bounds the whole campaign; zero means no deadline.
	Deadline time.Duration
	// Profile supplies the address fixture pool.
	Profile taxonomy.CountryProfile
	// Customers is the registered-customer pool, may be empty.
	Customers []Customer
	// ProductPaths are the detail paths orders add; multi-product orders
	// use all of them, the rest only the first.
	ProductPaths []string
	// Stamp keys address synthesis; zero means time.Now.
	Stamp time.Time
}

// Runner fans a distribution of checkout orders out over W concurrent
// workers.
type Runner struct {
	place OrderFunc
	opts  Options
}

// NewRunner builds a campaign runner over an order implementation.
func NewRunner(place OrderFunc, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}
	return &Runner{place: place, opts: opts}
}

// Run executes the whole distribution and returns the campaign report.
// Individual order failures never abort the campaign; an EnvironmentError
// from any order cancels the remainder and is returned alongside the
// partial report.
func (r *Runner) Run(ctx context.Context, dist Distribution) (*Report, error) {
	if err := dist.Validate(); err != nil {
		return nil, err
	}
	if len(r.opts.ProductPaths) == 0 {
		return nil, &contract.InputError{
			Source: "mass order options",
			Issues: []contract.Issue{{Path: "product_paths", Message: "no products configured"}},
		}
	}

	runCtx := ctx
	cancel := context.CancelFunc(func() {})
	if r.opts.Deadline > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.opts.Deadline)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	tasks := dist.orders()
	logging.Info("massorder", "starting campaign: %d orders, %d workers", len(tasks), r.opts.Workers)

	var (
		sem     = semaphore.NewWeighted(int64(r.opts.Workers))
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]*engine.RunResult, 0, len(tasks))
		envErr  error
	)
	started := time.Now()

	for i, scenarioType := range tasks {
		ordinal := i + 1
		order := r.buildOrder(scenarioType, ordinal)

		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := sem.Acquire(runCtx, 1); err != nil {
				result := cancelledResult(order, err)
				mu.Lock()
				results = append(results, result)
				mu.Unlock()
				return
			}
			defer sem.Release(1)

			result := r.place(runCtx, order)

			mu.Lock()
			results = append(results, result)
			var ee *contract.EnvironmentError
			if errors.As(result.Err(), &ee) && envErr == nil {
				envErr = ee
				logging.Error("massorder", ee, "environment broken, cancelling campaign")
				cancel()
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	wall := time.Since(started)
	report := Aggregate(results, wall)
	logging.Info("massorder", "campaign done: %d/%d succeeded in %s",
		report.Successes, report.Total, wall.Round(time.Second))
	return report, envErr
}

// buildOrder assembles the task for one ordinal, applying the guest
// fallback when a registered scenario finds no pooled customer.
func (r *Runner) buildOrder(scenarioType ScenarioType, ordinal int) Order {
	order := Order{
		Ordinal:      ordinal,
		Type:         scenarioType,
		Address:      SynthesizeAddress(r.opts.Profile, r.opts.Stamp, ordinal),
		ProductPaths: r.opts.ProductPaths[:1],
	}
	if scenarioType == MultiProduct {
		order.ProductPaths = r.opts.ProductPaths
	}
	if scenarioType.Registered() {
		order.Customer = pickCustomer(r.opts.Customers, ordinal)
		if order.Customer == nil {
			order.Type = scenarioType.guestFallback()
		}
	}
	return order
}

// cancelledResult records an order that never got a worker slot.
func cancelledResult(order Order, cause error) *engine.RunResult {
	result := &engine.RunResult{
		RunID:      fmt.Sprintf("order-%04d", order.Ordinal),
		ContractID: string(order.Type),
		Started:    time.Now().UTC(),
		ErrorClass: "cancelled",
		Message:    fmt.Sprintf("campaign deadline reached before start: %v", cause),
	}
	result.Finished = result.Started
	result.Outcome = engine.OutcomeErrored
	return result
}
