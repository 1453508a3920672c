package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"shopharness/internal/contract"
	"shopharness/internal/massorder"
	"shopharness/internal/report"
	"shopharness/internal/taxonomy"
)

func newMassOrderCmd() *cobra.Command {
	var (
		flagTotal        int
		flagWorkers      int
		flagCountry      string
		flagDeadline     time.Duration
		flagDistribution []string
		flagPayment      string
		flagProducts     []string
	)

	cmd := &cobra.Command{
		Use:   "massorder",
		Short: "Schedule a mass order campaign",
		Long: `Massorder fans many checkout runs out over parallel isolated browser
contexts and aggregates the outcome. The distribution across scenario types
is either derived from --total or given explicitly with --distribution
entries like guest_post=10.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			profile, err := taxonomy.ProfileFor(countryProfiles(cfg), flagCountry)
			if err != nil {
				return err
			}

			dist, err := parseDistribution(flagDistribution, flagTotal)
			if err != nil {
				return err
			}

			workers := flagWorkers
			if workers <= 0 {
				workers = cfg.Settings.ParallelWorkers
			}

			fleet := buildFleet(cmd.Context(), cfg)
			defer fleet.Close()

			var customers []massorder.Customer
			if cfg.Secrets.CustomerEmail != "" {
				customers = append(customers, massorder.Customer{
					Email:    cfg.Secrets.CustomerEmail,
					Password: cfg.Secrets.CustomerPassword,
				})
			}

			runner := massorder.NewRunner(
				massorder.BrowserOrderFunc(fleet, cfg.Settings.BaseURL, profile, buildTaxonomy(cfg), flagPayment),
				massorder.Options{
					Workers:      workers,
					Deadline:     flagDeadline,
					Profile:      profile,
					Customers:    customers,
					ProductPaths: flagProducts,
				})

			s := spinner.New(spinner.CharSets[14], 120*time.Millisecond,
				spinner.WithWriter(os.Stderr))
			s.Suffix = fmt.Sprintf(" placing %d orders with %d workers", dist.Total(), workers)
			s.Start()
			campaign, err := runner.Run(cmd.Context(), dist)
			s.Stop()

			if campaign != nil {
				report.WriteCampaignReport(os.Stdout, campaign)
			}
			if err != nil {
				return err
			}
			if campaign.Successes < campaign.Total {
				return fmt.Errorf("%d of %d orders did not complete",
					campaign.Total-campaign.Successes, campaign.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&flagTotal, "total", 10, "total orders when no explicit distribution is given")
	cmd.Flags().IntVar(&flagWorkers, "workers", 0, "concurrency cap, defaults to parallel_workers from config")
	cmd.Flags().StringVar(&flagCountry, "country", "AT", "storefront country the campaign targets")
	cmd.Flags().DurationVar(&flagDeadline, "deadline", 0, "overall campaign deadline, 0 for none")
	cmd.Flags().StringSliceVar(&flagDistribution, "distribution", nil, "explicit counts per scenario type, e.g. guest_post=10")
	cmd.Flags().StringVar(&flagPayment, "payment", "invoice", "payment alias every order uses")
	cmd.Flags().StringSliceVar(&flagProducts, "products", []string{"/detail/SW10001", "/detail/SW10002"}, "product detail paths orders add")
	return cmd
}

// parseDistribution turns key=value flags into a Distribution, or derives
// the default spread from the total.
func parseDistribution(entries []string, total int) (massorder.Distribution, error) {
	if len(entries) == 0 {
		return massorder.DefaultDistribution(total), nil
	}
	dist := massorder.Distribution{}
	var issues []contract.Issue
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			issues = append(issues, contract.Issue{Path: entry, Message: "expected scenario_type=count"})
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			issues = append(issues, contract.Issue{Path: entry, Message: "count is not an integer"})
			continue
		}
		dist[massorder.ScenarioType(key)] = n
	}
	if len(issues) > 0 {
		return nil, &contract.InputError{Source: "distribution flags", Issues: issues}
	}
	return dist, dist.Validate()
}
