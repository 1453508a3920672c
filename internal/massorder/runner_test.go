package massorder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopharness/internal/contract"
	"shopharness/internal/engine"
	"shopharness/internal/taxonomy"
)

func testProfile() taxonomy.CountryProfile {
	profiles := taxonomy.DefaultCountryProfiles()
	return profiles["AT"]
}

// instantSuccess is an OrderFunc that always passes.
func instantSuccess(ctx context.Context, order Order) *engine.RunResult {
	r := &engine.RunResult{
		ContractID: string(order.Type),
		Started:    time.Now().UTC(),
		Outcome:    engine.OutcomePassed,
		Duration:   10 * time.Millisecond,
	}
	r.Finished = r.Started.Add(r.Duration)
	return r
}

func TestCampaignBreakdownSums(t *testing.T) {
	dist := Distribution{GuestPost: 10, GuestFreight: 5, MultiProduct: 2}
	runner := NewRunner(instantSuccess, Options{
		Workers:      4,
		Profile:      testProfile(),
		ProductPaths: []string{"/detail/SW10001", "/detail/SW10002"},
	})

	report, err := runner.Run(context.Background(), dist)
	require.NoError(t, err)

	assert.Equal(t, 17, report.Total)
	assert.Equal(t, 17, report.Successes)
	assert.Equal(t, 10, report.ByType[GuestPost].Total)
	assert.Equal(t, 5, report.ByType[GuestFreight].Total)
	assert.Equal(t, 2, report.ByType[MultiProduct].Total)
	assert.InDelta(t, 1.0, report.SuccessRate, 0.0001)
	assert.LessOrEqual(t, len(report.ErrorSamples), 20)
}

func TestConcurrencyBound(t *testing.T) {
	const workers = 4
	var live, peak int64
	var mu sync.Mutex

	counting := func(ctx context.Context, order Order) *engine.RunResult {
		now := atomic.AddInt64(&live, 1)
		mu.Lock()
		if now > peak {
			peak = now
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&live, -1)
		return instantSuccess(ctx, order)
	}

	runner := NewRunner(counting, Options{
		Workers:      workers,
		Profile:      testProfile(),
		ProductPaths: []string{"/detail/SW10001"},
	})
	report, err := runner.Run(context.Background(), Distribution{GuestPost: 30})
	require.NoError(t, err)
	assert.Equal(t, 30, report.Total)

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, int64(workers), "more than W orders ran at once")
}

func TestEnvironmentErrorAbortsCampaign(t *testing.T) {
	var started int64
	broken := func(ctx context.Context, order Order) *engine.RunResult {
		n := atomic.AddInt64(&started, 1)
		r := &engine.RunResult{ContractID: string(order.Type), Started: time.Now().UTC()}
		if n == 3 {
			r.SetErr(&contract.EnvironmentError{Op: "reach storefront", Err: errors.New("connection refused")})
			r.Outcome = engine.OutcomeErrored
			r.ErrorClass = "environment"
			r.Finished = r.Started
			return r
		}
		select {
		case <-ctx.Done():
			r.Outcome = engine.OutcomeErrored
			r.ErrorClass = "cancelled"
			r.Message = ctx.Err().Error()
		case <-time.After(50 * time.Millisecond):
			r.Outcome = engine.OutcomePassed
		}
		r.Finished = time.Now().UTC()
		return r
	}

	runner := NewRunner(broken, Options{
		Workers:      2,
		Profile:      testProfile(),
		ProductPaths: []string{"/detail/SW10001"},
	})
	report, err := runner.Run(context.Background(), Distribution{GuestPost: 12})

	var envErr *contract.EnvironmentError
	require.ErrorAs(t, err, &envErr)
	assert.Equal(t, 12, report.Total, "every order produces a result entry")
	assert.GreaterOrEqual(t, report.Failures, 3)

	cancelled := 0
	for _, sample := range report.ErrorSamples {
		if sample.ErrorClass == "cancelled" {
			cancelled++
		}
	}
	assert.Greater(t, cancelled, 0, "not-yet-started orders must record cancellation")
}

func TestRegisteredFallsBackToGuestWithoutPool(t *testing.T) {
	var seen []ScenarioType
	var mu sync.Mutex
	record := func(ctx context.Context, order Order) *engine.RunResult {
		mu.Lock()
		seen = append(seen, order.Type)
		assert.Nil(t, order.Customer)
		mu.Unlock()
		return instantSuccess(ctx, order)
	}

	runner := NewRunner(record, Options{
		Workers:      2,
		Profile:      testProfile(),
		ProductPaths: []string{"/detail/SW10001"},
	})
	_, err := runner.Run(context.Background(), Distribution{RegisteredPost: 2, RegisteredFreight: 1})
	require.NoError(t, err)

	for _, scenarioType := range seen {
		assert.False(t, scenarioType.Registered(), "pool is empty, %s must fall back", scenarioType)
	}
}

func TestCustomerPoolRotation(t *testing.T) {
	pool := []Customer{
		{Email: "a@example.com"},
		{Email: "b@example.com"},
		{Email: "c@example.com"},
	}
	assert.Equal(t, "b@example.com", pickCustomer(pool, 1).Email)
	assert.Equal(t, "a@example.com", pickCustomer(pool, 3).Email)
	assert.Equal(t, "b@example.com", pickCustomer(pool, 4).Email)
	assert.Nil(t, pickCustomer(nil, 0))
}

func TestSynthesizeAddressDeterminism(t *testing.T) {
	profile := testProfile()
	stamp := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

	first := SynthesizeAddress(profile, stamp, 7)
	second := SynthesizeAddress(profile, stamp, 7)
	assert.Equal(t, first, second, "same stamp and ordinal must reproduce the address")

	other := SynthesizeAddress(profile, stamp, 8)
	assert.NotEqual(t, first.Email, other.Email)
	assert.NotEqual(t, first.LastName, other.LastName)

	assert.Contains(t, first.Email, "20260504-120000-0007")
	assert.True(t, strings.HasPrefix(first.LastName, "Besteller-"))
	assert.Equal(t, "Österreich", first.CountryLabel)

	// City and postcode come from the pool as a pair.
	found := false
	for _, city := range profile.Cities {
		if city.City == first.City && city.Postcode == first.Postcode {
			found = true
		}
	}
	assert.True(t, found, "city %s/%s not in the pool", first.City, first.Postcode)
}

func TestDistributionValidate(t *testing.T) {
	assert.NoError(t, Distribution{GuestPost: 1}.Validate())

	err := Distribution{"mystery": 1, GuestPost: -2}.Validate()
	var inputErr *contract.InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Len(t, inputErr.Issues, 2)
}

func TestDefaultDistributionCoversTotal(t *testing.T) {
	for _, total := range []int{1, 5, 17, 100} {
		dist := DefaultDistribution(total)
		assert.Equal(t, total, dist.Total(), "total %d", total)
	}
	assert.Equal(t, 0, DefaultDistribution(0).Total())
}

func TestAggregateStatistics(t *testing.T) {
	mk := func(outcome engine.Outcome, d time.Duration, class string) *engine.RunResult {
		return &engine.RunResult{
			ContractID: string(GuestPost),
			Outcome:    outcome,
			Duration:   d,
			ErrorClass: class,
			Message:    "m",
		}
	}

	results := []*engine.RunResult{
		mk(engine.OutcomePassed, 2*time.Second, ""),
		mk(engine.OutcomePassed, 4*time.Second, ""),
		mk(engine.OutcomeFailed, 9*time.Second, "assertion"),
	}
	for i := 0; i < 25; i++ {
		results = append(results, mk(engine.OutcomeErrored, 0, fmt.Sprintf("e%d", i)))
	}

	report := Aggregate(results, 2*time.Minute)
	assert.Equal(t, 28, report.Total)
	assert.Equal(t, 2, report.Successes)
	assert.Equal(t, 26, report.Failures)
	assert.Equal(t, 2*time.Second, report.MinDuration)
	assert.Equal(t, 3*time.Second, report.MeanDuration)
	assert.Equal(t, 4*time.Second, report.MaxDuration)
	assert.InDelta(t, 1.0, report.Throughput, 0.0001, "2 successes in 2 minutes")
	assert.Len(t, report.ErrorSamples, maxErrorSamples)
	assert.Equal(t, 26, report.ErrorsTotal)
}
