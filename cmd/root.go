package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"shopharness/internal/contract"
	"shopharness/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeFailure indicates at least one contract run failed.
	ExitCodeFailure = 1
	// ExitCodeUsage indicates bad input data or a broken environment:
	// invalid contracts, unknown aliases, unreachable storefront.
	ExitCodeUsage = 2
)

var (
	flagConfigPath string
	flagStoreDir   string
	flagLogLevel   string
)

// rootCmd is the entry point of the harness CLI.
var rootCmd = &cobra.Command{
	Use:   "shopharness",
	Short: "Contract-driven QA harness for the storefront",
	Long: `shopharness runs declarative test contracts against a storefront:
it validates and migrates the contract store, drives checkout flows through
a headless browser, discovers the live payment taxonomy and schedules mass
order campaigns.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(flagLogLevel)
		if err != nil {
			return err
		}
		logging.Init(level, os.Stderr)
		return nil
	},
}

// SetVersion sets the version for the root command, injected at build
// time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the CLI and maps error types onto exit codes.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "shopharness version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps the error taxonomy onto exit codes: data and
// environment problems are distinguishable from test failures in scripts.
func getExitCode(err error) int {
	var inputErr *contract.InputError
	if errors.As(err, &inputErr) {
		return ExitCodeUsage
	}
	var envErr *contract.EnvironmentError
	if errors.As(err, &envErr) {
		return ExitCodeUsage
	}
	return ExitCodeFailure
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to the harness config file")
	rootCmd.PersistentFlags().StringVar(&flagStoreDir, "store", "contracts", "contract store directory")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newDiscoverCmd())
	rootCmd.AddCommand(newMassOrderCmd())
	rootCmd.AddCommand(newInventoryCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newVersionCmd())
}
