// Package report renders run results and campaign statistics as terminal
// tables.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"shopharness/internal/engine"
	"shopharness/internal/massorder"
)

// outcomeColors maps run outcomes to their terminal color.
var outcomeColors = map[engine.Outcome]text.Colors{
	engine.OutcomePassed:  {text.FgGreen},
	engine.OutcomeFailed:  {text.FgRed},
	engine.OutcomeSkipped: {text.FgYellow},
	engine.OutcomeErrored: {text.FgHiRed},
}

// WriteRunResults renders one row per contract run.
func WriteRunResults(w io.Writer, results []*engine.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.Style().Format.Footer = text.FormatDefault
	t.AppendHeader(table.Row{"Contract", "Outcome", "Duration", "Order", "Detail"})

	passed := 0
	for _, r := range results {
		outcome := string(r.Outcome)
		if colors, ok := outcomeColors[r.Outcome]; ok {
			outcome = colors.Sprint(outcome)
		}
		detail := r.Message
		if r.FailedStep > 0 {
			detail = fmt.Sprintf("step %d: %s", r.FailedStep, r.Message)
		}
		t.AppendRow(table.Row{
			r.ContractID, outcome, r.Duration.Round(time.Millisecond), r.OrderNumber, detail,
		})
		if r.Passed() {
			passed++
		}
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d/%d passed", passed, len(results)), "", "", ""})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Detail", WidthMax: 72},
	})
	t.Render()
}

// WriteCampaignReport renders the aggregate of a mass order campaign.
func WriteCampaignReport(w io.Writer, report *massorder.Report) {
	summary := table.NewWriter()
	summary.SetOutputMirror(w)
	summary.AppendHeader(table.Row{"Metric", "Value"})
	summary.AppendRows([]table.Row{
		{"Orders", report.Total},
		{"Successes", report.Successes},
		{"Failures", report.Failures},
		{"Success rate", fmt.Sprintf("%.1f%%", report.SuccessRate*100)},
		{"Min duration", report.MinDuration.Round(time.Millisecond)},
		{"Mean duration", report.MeanDuration.Round(time.Millisecond)},
		{"Max duration", report.MaxDuration.Round(time.Millisecond)},
		{"Throughput", fmt.Sprintf("%.1f orders/min", report.Throughput)},
		{"Wall clock", report.WallClock.Round(time.Second)},
	})
	summary.Render()

	byType := table.NewWriter()
	byType.SetOutputMirror(w)
	byType.AppendHeader(table.Row{"Scenario type", "Orders", "Successes"})
	for _, scenarioType := range massorder.ScenarioTypes() {
		stats, ok := report.ByType[scenarioType]
		if !ok {
			continue
		}
		byType.AppendRow(table.Row{scenarioType, stats.Total, stats.Successes})
	}
	byType.Render()

	if len(report.ErrorSamples) > 0 {
		samples := table.NewWriter()
		samples.SetOutputMirror(w)
		samples.AppendHeader(table.Row{"Scenario", "Class", "Message"})
		for _, sample := range report.ErrorSamples {
			samples.AppendRow(table.Row{sample.ContractID, sample.ErrorClass, sample.Message})
		}
		if report.ErrorsTotal > len(report.ErrorSamples) {
			samples.AppendFooter(table.Row{"", "",
				fmt.Sprintf("%d further errors not shown", report.ErrorsTotal-len(report.ErrorSamples))})
		}
		samples.SetColumnConfigs([]table.ColumnConfig{
			{Name: "Message", WidthMax: 72},
		})
		samples.Render()
	}
}
