package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"shopharness/internal/contract"
	"shopharness/pkg/logging"
)

func newValidateCmd() *cobra.Command {
	var (
		flagWatch  bool
		flagBundle string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every contract in the store",
		Long: `Validate checks each contract file against the schema of its declared
version and reports every violation, not just the first. With --watch the
store is re-validated whenever a contract file changes; with --bundle a
sorted aggregate of the store is written after a clean validation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			if err := validateStore(store); err != nil {
				if !flagWatch {
					return err
				}
				fmt.Fprintf(os.Stderr, "%v\n", err)
			} else if flagBundle != "" {
				if err := store.WriteBundle(flagBundle); err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "bundle written to %s\n", flagBundle)
			}

			if !flagWatch {
				return nil
			}
			return watchStore(cmd, store)
		},
	}

	cmd.Flags().BoolVar(&flagWatch, "watch", false, "re-validate when contract files change")
	cmd.Flags().StringVar(&flagBundle, "bundle", "", "write an aggregated bundle after clean validation")
	return cmd
}

// validateStore validates every file and prints the verdict per contract.
func validateStore(store *contract.Store) error {
	loaded, err := store.LoadAll()
	if err != nil {
		return err
	}
	for _, q := range loaded.Quarantined {
		fmt.Fprintf(os.Stdout, "QUARANTINED %s (schema %s, migrate first)\n", q.TestID, q.Version)
	}
	fmt.Fprintf(os.Stdout, "OK: %d contracts valid at schema %s\n",
		len(loaded.Contracts), contract.CurrentSchemaVersion)
	return nil
}

// watchStore re-validates on every write to a contract file. Editor saves
// arrive as bursts of events, so changes are debounced briefly.
func watchStore(cmd *cobra.Command, store *contract.Store) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &contract.EnvironmentError{Op: "create file watcher", Err: err}
	}
	defer watcher.Close()

	if err := watcher.Add(store.Dir()); err != nil {
		return &contract.EnvironmentError{Op: "watch " + store.Dir(), Err: err}
	}
	logging.Info("validate", "watching %s", store.Dir())

	var (
		debounce = time.NewTimer(0)
		dirty    bool
	)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".json") ||
				!event.Op.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logging.Debug("validate", "%s changed", filepath.Base(event.Name))
			dirty = true
			debounce.Reset(250 * time.Millisecond)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("validate", "watcher: %v", err)
		case <-debounce.C:
			if !dirty {
				continue
			}
			dirty = false
			if err := validateStore(store); err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
			}
		}
	}
}
