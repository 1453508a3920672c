package massorder

import (
	"time"

	"shopharness/internal/engine"
)

// maxErrorSamples bounds the error detail kept in a report; further errors
// are counted only.
const maxErrorSamples = 20

// TypeStats is the per-scenario-type slice of a campaign report.
type TypeStats struct {
	Total     int `json:"total"`
	Successes int `json:"successes"`
}

// ErrorSample is one recorded order failure.
type ErrorSample struct {
	ContractID string `json:"contract_id"`
	ErrorClass string `json:"error_class"`
	Message    string `json:"message"`
}

// Report aggregates a finished campaign.
type Report struct {
	Total       int     `json:"total"`
	Successes   int     `json:"successes"`
	Failures    int     `json:"failures"`
	SuccessRate float64 `json:"success_rate"`
	// Duration statistics cover successful orders only.
	MinDuration  time.Duration `json:"min_duration"`
	MeanDuration time.Duration `json:"mean_duration"`
	MaxDuration  time.Duration `json:"max_duration"`
	// Throughput is successful orders per minute of wall-clock time.
	Throughput float64       `json:"throughput"`
	WallClock  time.Duration `json:"wall_clock"`

	ByType       map[ScenarioType]TypeStats `json:"by_type"`
	ErrorSamples []ErrorSample              `json:"error_samples,omitempty"`
	ErrorsTotal  int                        `json:"errors_total"`

	Results []*engine.RunResult `json:"results"`
}

// Aggregate computes the campaign report from individual order results.
// Partial result lists (after cancellation) aggregate the same way.
func Aggregate(results []*engine.RunResult, wall time.Duration) *Report {
	report := &Report{
		Total:     len(results),
		WallClock: wall,
		ByType:    map[ScenarioType]TypeStats{},
		Results:   results,
	}

	var totalSuccessDuration time.Duration
	for _, r := range results {
		stats := report.ByType[ScenarioType(r.ContractID)]
		stats.Total++

		if r.Passed() {
			report.Successes++
			stats.Successes++
			totalSuccessDuration += r.Duration
			if report.MinDuration == 0 || r.Duration < report.MinDuration {
				report.MinDuration = r.Duration
			}
			if r.Duration > report.MaxDuration {
				report.MaxDuration = r.Duration
			}
		} else {
			report.Failures++
			report.ErrorsTotal++
			if len(report.ErrorSamples) < maxErrorSamples {
				report.ErrorSamples = append(report.ErrorSamples, ErrorSample{
					ContractID: r.ContractID,
					ErrorClass: r.ErrorClass,
					Message:    r.Message,
				})
			}
		}
		report.ByType[ScenarioType(r.ContractID)] = stats
	}

	if report.Total > 0 {
		report.SuccessRate = float64(report.Successes) / float64(report.Total)
	}
	if report.Successes > 0 {
		report.MeanDuration = totalSuccessDuration / time.Duration(report.Successes)
	}
	if wall > 0 {
		report.Throughput = float64(report.Successes) * 60 / wall.Seconds()
	}
	return report
}
