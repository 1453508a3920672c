package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"shopharness/internal/discovery"
)

func newDiscoverCmd() *cobra.Command {
	var (
		flagCountries []string
		flagTaxonomy  string
		flagProduct   string
	)

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Read the live payment taxonomy off the storefront",
		Long: `Discover walks the checkout of each country up to the confirm step,
reads the payment-method labels the storefront actually offers and merges
them into the taxonomy file. The pre-run state is kept as a byte-exact
.backup copy; existing aliases are never deleted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fleet := buildFleet(cmd.Context(), cfg)
			defer fleet.Close()

			reader := &discovery.BrowserLabelReader{
				Fleet:       fleet,
				BaseURL:     cfg.Settings.BaseURL,
				ProductPath: flagProduct,
			}
			d := discovery.New(reader, countryProfiles(cfg))

			observed, err := d.Run(cmd.Context(), flagCountries, flagTaxonomy)
			if err != nil {
				return err
			}
			for country, labels := range observed {
				fmt.Fprintf(os.Stdout, "%s: %s\n", country, strings.Join(labels, ", "))
			}
			fmt.Fprintf(os.Stdout, "taxonomy written to %s\n", flagTaxonomy)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&flagCountries, "countries", []string{"AT", "DE"}, "countries to walk")
	cmd.Flags().StringVar(&flagTaxonomy, "taxonomy", "taxonomy/payment.yaml", "taxonomy file to update")
	cmd.Flags().StringVar(&flagProduct, "product", "/detail/SW10001", "product path used to fill the cart")
	return cmd
}
