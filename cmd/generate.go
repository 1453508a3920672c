package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shopharness/internal/generate"
	"shopharness/internal/taxonomy"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate contracts from taxonomy data",
	}
	cmd.AddCommand(newGeneratePostcodeCasesCmd())
	return cmd
}

func newGeneratePostcodeCasesCmd() *cobra.Command {
	var (
		flagCountries []string
		flagRules     string
		flagAuthor    string
	)

	cmd := &cobra.Command{
		Use:   "postcode-cases",
		Short: "Generate boundary contracts for every postcode shipping rule",
		Long: `Postcode-cases writes one contract per (country, carrier, range
boundary) into the contract store, so both edges of every carrier range are
covered by a runnable test.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			rules := taxonomy.DefaultRuleSet()
			if flagRules != "" {
				rules, err = taxonomy.LoadRuleSet(flagRules)
				if err != nil {
					return err
				}
			}

			generated, err := generate.PostcodeCases(rules, store, generate.Options{
				Author:    flagAuthor,
				Countries: flagCountries,
			})
			if err != nil {
				return err
			}
			for _, c := range generated {
				fmt.Fprintf(os.Stdout, "WROTE %s (%s)\n", c.TestID, c.Name)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&flagCountries, "countries", nil, "restrict generation to these countries")
	cmd.Flags().StringVar(&flagRules, "rules", "", "postcode rule file, built-in rules when empty")
	cmd.Flags().StringVar(&flagAuthor, "author", "qa-harness", "author stamped on generated contracts")
	return cmd
}
