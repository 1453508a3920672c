package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"shopharness/internal/contract"
	"shopharness/internal/inventory"
)

func newInventoryCmd() *cobra.Command {
	var (
		flagMarkdown string
		flagHTML     string
	)

	cmd := &cobra.Command{
		Use:   "inventory <file>",
		Short: "Validate the test inventory and render a status report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := inventory.Load(args[0])
			if err != nil {
				return err
			}

			v := inv.Validate()

			// Cross-check against the store when it exists; a missing
			// store only suppresses those warnings.
			if store, err := openStore(); err == nil {
				if loaded, err := store.LoadAll(); err == nil {
					v.Warnings = append(v.Warnings, inv.CrossCheckStore(loaded.Contracts)...)
				}
			}

			markdown := inv.RenderMarkdown(v)
			if flagMarkdown != "" {
				if err := contract.WriteFileAtomic(flagMarkdown, []byte(markdown)); err != nil {
					return err
				}
			} else {
				fmt.Fprint(os.Stdout, markdown)
			}
			if flagHTML != "" {
				if err := contract.WriteFileAtomic(flagHTML, []byte(inv.RenderHTML(v))); err != nil {
					return err
				}
			}

			if !v.OK() {
				return &contract.InputError{Source: args[0], Issues: v.Issues}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagMarkdown, "markdown", "", "write the Markdown report to a file instead of stdout")
	cmd.Flags().StringVar(&flagHTML, "html", "", "additionally write an HTML report")
	return cmd
}
