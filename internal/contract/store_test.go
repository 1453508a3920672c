package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	validator, err := NewValidator()
	require.NoError(t, err)
	store, err := NewStore(t.TempDir(), validator)
	require.NoError(t, err)
	return store
}

func TestSaveAndLoadAll(t *testing.T) {
	store := newTestStore(t)

	c := sampleContract()
	require.NoError(t, store.Save(c))

	result, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, result.Contracts, 1)
	assert.Empty(t, result.Quarantined)
	assert.Equal(t, "TC-CART-001", result.Contracts[0].TestID)
}

func TestSaveIsByteStableOnDisk(t *testing.T) {
	store := newTestStore(t)
	c := sampleContract()

	require.NoError(t, store.Save(c))
	first, err := os.ReadFile(store.PathFor(c.TestID))
	require.NoError(t, err)

	require.NoError(t, store.Save(c))
	second, err := os.ReadFile(store.PathFor(c.TestID))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLoadAllFailsOnDuplicateIdentifier(t *testing.T) {
	store := newTestStore(t)
	c := sampleContract()
	require.NoError(t, store.Save(c))

	// Same identifier under a different file name.
	data, err := c.Encode()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "copy.json"), data, 0644))

	_, err = store.LoadAll()
	require.Error(t, err)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Contains(t, inputErr.Error(), "duplicate identifier")
}

func TestLoadAllQuarantinesOldVersions(t *testing.T) {
	store := newTestStore(t)

	legacy := []byte(`{
  "test_id": "TC-LOGIN-004",
  "name": "Login with valid credentials",
  "category": "account",
  "priority": "P1",
  "status": "implemented",
  "description": "",
  "steps": [{"step": 1, "action": "Open login page"}]
}
`)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "tc-login-004.json"), legacy, 0644))
	require.NoError(t, store.Save(sampleContract()))

	result, err := store.LoadAll()
	require.NoError(t, err)
	assert.Len(t, result.Contracts, 1)
	require.Len(t, result.Quarantined, 1)
	assert.Equal(t, "TC-LOGIN-004", result.Quarantined[0].TestID)
	assert.Equal(t, LegacySchemaVersion, result.Quarantined[0].Version)
}

func TestLoadAllReportsEveryViolation(t *testing.T) {
	store := newTestStore(t)

	broken := []byte(`{
  "schema_version": "3.0.0",
  "test_id": "not-a-valid-id",
  "name": "",
  "category": "cart",
  "priority": "P9",
  "functional_area": "cart",
  "status": "passing",
  "author": "qa-team",
  "last_modified": "2026-04-12",
  "description": "",
  "preconditions": [],
  "steps": [{"step": 1, "action": "A", "expected": ""}],
  "automation": {"browser": null, "manual": true, "status": "planned"},
  "test_data": []
}
`)
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "broken.json"), broken, 0644))

	_, err := store.LoadAll()
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	// test_id pattern, empty name, bad priority, empty expected: all reported.
	assert.GreaterOrEqual(t, len(inputErr.Issues), 4)

	paths := make([]string, 0, len(inputErr.Issues))
	for _, issue := range inputErr.Issues {
		paths = append(paths, issue.Path)
	}
	assert.Contains(t, paths, "/test_id")
	assert.Contains(t, paths, "/steps/0/expected")
}

func TestSaveRejectsIncoherentAutomation(t *testing.T) {
	store := newTestStore(t)
	c := sampleContract()
	c.Automation.Status = AutomationPlanned // references are non-null

	err := store.Save(c)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Contains(t, inputErr.Error(), "derived status")
}

func TestWriteBundle(t *testing.T) {
	store := newTestStore(t)
	first := sampleContract()
	second := sampleContract()
	second.TestID = "TC-CART-002"
	second.Name = "Second case"
	require.NoError(t, store.Save(second))
	require.NoError(t, store.Save(first))

	bundlePath := filepath.Join(t.TempDir(), "bundle.json")
	require.NoError(t, store.WriteBundle(bundlePath))

	data, err := os.ReadFile(bundlePath)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `"count": 2`)
	// Sorted by identifier regardless of save order.
	assert.Less(t, indexOf(text, "TC-CART-001"), indexOf(text, "TC-CART-002"))
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestValidatorUnknownVersion(t *testing.T) {
	validator, err := NewValidator()
	require.NoError(t, err)

	issues := validator.ValidateDocument(map[string]interface{}{"schema_version": "9.9.9"})
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "unknown schema version")
}
