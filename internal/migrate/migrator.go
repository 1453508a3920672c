package migrate

import (
	"encoding/json"
	"fmt"
	"os"

	"shopharness/internal/contract"
	"shopharness/pkg/logging"
)

// BackupSuffix is appended to the pre-migration copy of a rewritten file.
const BackupSuffix = ".backup"

// Migrator composes migration steps and validates every intermediate
// document against its schema revision.
type Migrator struct {
	validator *contract.Validator
	opts      Options
}

// New creates a migrator.
func New(validator *contract.Validator, opts Options) *Migrator {
	return &Migrator{validator: validator, opts: opts}
}

// Plan returns the steps needed to lift a document from one version to
// another. An empty plan means the document is already at the target.
func Plan(from, to string) ([]Step, error) {
	if from == to {
		return nil, nil
	}
	start := -1
	for i, step := range Steps {
		if step.From == from {
			start = i
			break
		}
	}
	if start == -1 {
		return nil, fmt.Errorf("no migration path from version %q", from)
	}
	var plan []Step
	for _, step := range Steps[start:] {
		plan = append(plan, step)
		if step.To == to {
			return plan, nil
		}
	}
	return nil, fmt.Errorf("no migration path from version %q to %q", from, to)
}

// Apply lifts a document to the target version, validating the output of
// every step. Applying to a document already at the target is the identity.
func (m *Migrator) Apply(doc map[string]interface{}, target string) (map[string]interface{}, error) {
	from := contract.DocumentVersion(doc)
	plan, err := Plan(from, target)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return doc, nil
	}

	testID, _ := doc["test_id"].(string)
	current := doc
	for _, step := range plan {
		next, err := step.Apply(current, m.opts)
		if err != nil {
			return nil, fmt.Errorf("migrate %s from %s to %s: %w", testID, step.From, step.To, err)
		}
		if issues := m.validator.ValidateDocumentAt(next, step.To); len(issues) > 0 {
			return nil, &contract.InputError{
				Source: fmt.Sprintf("%s (migrated to %s)", testID, step.To),
				Issues: issues,
			}
		}
		current = next
	}
	return current, nil
}

// FileResult describes what happened to one store file.
type FileResult struct {
	Path        string
	TestID      string
	FromVersion string
	Err         error
}

// Summary aggregates a store migration.
type Summary struct {
	Migrated []FileResult
	Skipped  []FileResult
	Failed   []FileResult
}

// MigrateStore lifts every non-current contract file of the store to the
// current schema version. Each rewritten file first gets a byte-exact
// .backup copy; the rewrite itself is atomic. Failures are collected per
// file, never aborting the pass.
func (m *Migrator) MigrateStore(store *contract.Store) (*Summary, error) {
	files, err := store.Files()
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, path := range files {
		result := m.migrateFile(store, path)
		switch {
		case result.Err != nil:
			logging.Error("migrate", result.Err, "migration failed for %s", path)
			summary.Failed = append(summary.Failed, result)
		case result.FromVersion == contract.CurrentSchemaVersion:
			summary.Skipped = append(summary.Skipped, result)
		default:
			logging.Info("migrate", "migrated %s from %s to %s", result.TestID, result.FromVersion, contract.CurrentSchemaVersion)
			summary.Migrated = append(summary.Migrated, result)
		}
	}
	return summary, nil
}

func (m *Migrator) migrateFile(store *contract.Store, path string) FileResult {
	result := FileResult{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Err = &contract.EnvironmentError{Op: "read contract file", Err: err}
		return result
	}
	doc, err := contract.DecodeDocument(data)
	if err != nil {
		result.Err = &contract.InputError{Source: path, Err: err}
		return result
	}
	result.TestID, _ = doc["test_id"].(string)
	result.FromVersion = contract.DocumentVersion(doc)

	if issues := m.validator.ValidateDocument(doc); len(issues) > 0 {
		result.Err = &contract.InputError{Source: path, Issues: issues}
		return result
	}
	if result.FromVersion == contract.CurrentSchemaVersion {
		return result
	}

	migrated, err := m.Apply(doc, contract.CurrentSchemaVersion)
	if err != nil {
		result.Err = err
		return result
	}

	// Round-trip through the typed contract for the byte-stable encoding.
	encoded, err := json.Marshal(migrated)
	if err != nil {
		result.Err = err
		return result
	}
	c, err := contract.Decode(encoded)
	if err != nil {
		result.Err = &contract.InputError{Source: path, Err: err}
		return result
	}
	final, err := c.Encode()
	if err != nil {
		result.Err = err
		return result
	}

	if err := os.WriteFile(path+BackupSuffix, data, 0644); err != nil {
		result.Err = &contract.EnvironmentError{Op: "write migration backup", Err: err}
		return result
	}
	if err := contract.WriteFileAtomic(path, final); err != nil {
		result.Err = err
		return result
	}
	return result
}
