package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shopharness/internal/contract"
	"shopharness/internal/engine"
	_ "shopharness/internal/engine/scenarios"
	"shopharness/internal/report"
)

func newRunCmd() *cobra.Command {
	var (
		flagTag       string
		flagArtifacts string
	)

	cmd := &cobra.Command{
		Use:   "run [test-id...]",
		Short: "Run contracts against the storefront",
		Long: `Run executes contracts from the store through the headless browser.
Without arguments every dispatchable contract runs; test identifiers or
--tag restrict the selection.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore()
			if err != nil {
				return err
			}
			loaded, err := store.LoadAll()
			if err != nil {
				return err
			}

			selected, err := selectContracts(loaded, args, flagTag)
			if err != nil {
				return err
			}

			fleet := buildFleet(cmd.Context(), cfg)
			defer fleet.Close()

			e := engine.New(fleet, engine.Options{
				BaseURL:         cfg.Settings.BaseURL,
				Taxonomy:        buildTaxonomy(cfg),
				ArtifactDir:     flagArtifacts,
				ContractTimeout: cfg.Settings.Timeout(),
			})
			results, err := e.RunAll(cmd.Context(), selected)
			report.WriteRunResults(os.Stdout, results)
			if err != nil {
				return err
			}

			for _, r := range results {
				if r.Outcome == engine.OutcomeFailed || r.Outcome == engine.OutcomeErrored {
					return fmt.Errorf("%d contracts did not pass", countNotPassed(results))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagTag, "tag", "", "run only contracts carrying this tag")
	cmd.Flags().StringVar(&flagArtifacts, "artifacts", "artifacts", "directory for screenshots and traces")
	return cmd
}

// selectContracts narrows the loaded store to explicit identifiers or a
// tag. Unknown identifiers are a data error.
func selectContracts(loaded *contract.LoadResult, ids []string, tag string) ([]*contract.Contract, error) {
	if len(ids) > 0 {
		var selected []*contract.Contract
		var issues []contract.Issue
		for _, id := range ids {
			c := loaded.ByID(id)
			if c == nil {
				issues = append(issues, contract.Issue{Path: id, Message: "no such contract in the store"})
				continue
			}
			selected = append(selected, c)
		}
		if len(issues) > 0 {
			return nil, &contract.InputError{Source: "run arguments", Issues: issues}
		}
		return selected, nil
	}
	if tag != "" {
		selected := loaded.Tagged(tag)
		if len(selected) == 0 {
			return nil, &contract.InputError{
				Source: "run arguments",
				Issues: []contract.Issue{{Path: tag, Message: "no contracts carry this tag"}},
			}
		}
		return selected, nil
	}
	return loaded.Contracts, nil
}

func countNotPassed(results []*engine.RunResult) int {
	n := 0
	for _, r := range results {
		if r.Outcome == engine.OutcomeFailed || r.Outcome == engine.OutcomeErrored {
			n++
		}
	}
	return n
}
