package contract

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"shopharness/pkg/logging"
)

// DecodeDocument parses raw contract bytes into an untyped document, the
// form the migrator and the schema validator work on.
func DecodeDocument(data []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// QuarantinedFile records a contract file that cannot be dispatched because
// its schema version is not current.
type QuarantinedFile struct {
	Path    string
	TestID  string
	Version string
}

// LoadResult is the outcome of reading a whole store directory.
type LoadResult struct {
	// Contracts are the dispatchable contracts at the current schema version,
	// sorted by test identifier.
	Contracts []*Contract
	// Quarantined lists files awaiting migration.
	Quarantined []QuarantinedFile
}

// ByID returns the contract with the given identifier, or nil.
func (r *LoadResult) ByID(testID string) *Contract {
	for _, c := range r.Contracts {
		if c.TestID == testID {
			return c
		}
	}
	return nil
}

// Tagged returns the contracts carrying the given tag.
func (r *LoadResult) Tagged(tag string) []*Contract {
	var out []*Contract
	for _, c := range r.Contracts {
		for _, t := range c.Tags {
			if t == tag {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Store is a directory of one-contract-per-file JSON documents.
type Store struct {
	dir       string
	validator *Validator
}

// NewStore opens a contract store rooted at dir.
func NewStore(dir string, validator *Validator) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &EnvironmentError{Op: "open contract store", Err: err}
	}
	if !info.IsDir() {
		return nil, &EnvironmentError{Op: "open contract store", Err: fmt.Errorf("%s is not a directory", dir)}
	}
	return &Store{dir: dir, validator: validator}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// Files lists the contract files of the store in lexical order. Bundles and
// backups are excluded; a bundle is an aggregate output, not a source.
func (s *Store) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, ".json") {
			return nil
		}
		if strings.HasSuffix(name, ".backup") || strings.HasPrefix(name, "bundle") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, &EnvironmentError{Op: "walk contract store", Err: err}
	}
	sort.Strings(files)
	return files, nil
}

// LoadAll reads every contract file, validates each against the schema of
// its declared version, and fails on duplicate identifiers. Contracts at a
// non-current schema version are quarantined, not returned.
func (s *Store) LoadAll() (*LoadResult, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}

	result := &LoadResult{}
	seen := map[string]string{} // test_id -> file

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &EnvironmentError{Op: "read contract file", Err: err}
		}
		doc, err := DecodeDocument(data)
		if err != nil {
			return nil, &InputError{Source: path, Err: err}
		}

		testID, _ := doc["test_id"].(string)
		if prior, dup := seen[testID]; dup {
			return nil, &InputError{
				Source: path,
				Issues: []Issue{{Path: "test_id", Message: fmt.Sprintf("duplicate identifier %q, already defined in %s", testID, prior)}},
			}
		}
		seen[testID] = path

		if issues := s.validator.ValidateDocument(doc); len(issues) > 0 {
			return nil, &InputError{Source: path, Issues: issues}
		}

		version := DocumentVersion(doc)
		if version != CurrentSchemaVersion {
			logging.Warn("store", "quarantining %s: schema version %s, current is %s", path, version, CurrentSchemaVersion)
			result.Quarantined = append(result.Quarantined, QuarantinedFile{Path: path, TestID: testID, Version: version})
			continue
		}

		c, err := Decode(data)
		if err != nil {
			return nil, &InputError{Source: path, Err: err}
		}
		result.Contracts = append(result.Contracts, c)
	}

	sort.Slice(result.Contracts, func(i, j int) bool {
		return result.Contracts[i].TestID < result.Contracts[j].TestID
	})

	logging.Info("store", "loaded %d contracts, %d quarantined", len(result.Contracts), len(result.Quarantined))
	return result, nil
}

// Save validates the contract and writes it atomically with byte-stable
// encoding. The file name is derived from the identifier.
func (s *Store) Save(c *Contract) error {
	issues, err := s.validator.ValidateContract(c)
	if err != nil {
		return &InputError{Source: c.TestID, Err: err}
	}
	if len(issues) > 0 {
		return &InputError{Source: c.TestID, Issues: issues}
	}

	data, err := c.Encode()
	if err != nil {
		return &InputError{Source: c.TestID, Err: err}
	}
	return WriteFileAtomic(s.PathFor(c.TestID), data)
}

// PathFor returns the canonical file path for a contract identifier.
func (s *Store) PathFor(testID string) string {
	return filepath.Join(s.dir, strings.ToLower(testID)+".json")
}

// WriteBundle aggregates the dispatchable contracts into a single document,
// sorted by identifier, and writes it atomically.
func (s *Store) WriteBundle(path string) error {
	result, err := s.LoadAll()
	if err != nil {
		return err
	}
	bundle := struct {
		SchemaVersion string      `json:"schema_version"`
		Count         int         `json:"count"`
		Contracts     []*Contract `json:"contracts"`
	}{
		SchemaVersion: CurrentSchemaVersion,
		Count:         len(result.Contracts),
		Contracts:     result.Contracts,
	}
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, append(data, '\n'))
}

// WriteFileAtomic writes data via a temporary file and rename, so readers
// never observe a torn contract file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &EnvironmentError{Op: "create temp file", Err: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &EnvironmentError{Op: "write temp file", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &EnvironmentError{Op: "close temp file", Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &EnvironmentError{Op: "rename temp file", Err: err}
	}
	return nil
}
