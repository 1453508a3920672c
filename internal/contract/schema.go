package contract

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// errorPrinter renders schema violation messages.
var errorPrinter = message.NewPrinter(language.English)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// schemaBaseURL is the resolution base for cross-schema references.
const schemaBaseURL = "https://shopharness.dev/schemas/"

// LegacySchemaVersion is the implied version of contracts authored before the
// schema_version field existed.
const LegacySchemaVersion = "1"

// schemaFiles maps a declared schema version to its embedded schema file.
var schemaFiles = map[string]string{
	LegacySchemaVersion: "contract-v1.schema.json",
	"2.0.0":             "contract-v2.0.0.schema.json",
	"2.2.0":             "contract-v2.2.0.schema.json",
	"3.0.0":             "contract-v3.0.0.schema.json",
}

// Issue is a single path-qualified validation violation.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// Validator validates contract documents against the schema of their
// declared version. Compile once, validate many; the validator is safe for
// concurrent use after construction.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles every embedded schema revision.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	for _, file := range schemaFiles {
		raw, err := schemaFS.ReadFile("schemas/" + file)
		if err != nil {
			return nil, fmt.Errorf("read embedded schema %s: %w", file, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse embedded schema %s: %w", file, err)
		}
		if err := compiler.AddResource(schemaBaseURL+file, doc); err != nil {
			return nil, fmt.Errorf("register schema %s: %w", file, err)
		}
	}

	v := &Validator{schemas: map[string]*jsonschema.Schema{}}
	for version, file := range schemaFiles {
		sch, err := compiler.Compile(schemaBaseURL + file)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", file, err)
		}
		v.schemas[version] = sch
	}
	return v, nil
}

// KnownVersions lists the schema versions the validator understands, sorted.
func (v *Validator) KnownVersions() []string {
	versions := make([]string, 0, len(v.schemas))
	for version := range v.schemas {
		versions = append(versions, version)
	}
	sort.Strings(versions)
	return versions
}

// DocumentVersion extracts the declared schema version of a raw document,
// defaulting to the legacy version when the field is absent.
func DocumentVersion(doc map[string]interface{}) string {
	if version, ok := doc["schema_version"].(string); ok && version != "" {
		return version
	}
	return LegacySchemaVersion
}

// ValidateDocument validates a raw document against the schema of its
// declared version. It returns every violation, not just the first.
func (v *Validator) ValidateDocument(doc map[string]interface{}) []Issue {
	return v.ValidateDocumentAt(doc, DocumentVersion(doc))
}

// ValidateDocumentAt validates a raw document against a specific schema
// version.
func (v *Validator) ValidateDocumentAt(doc map[string]interface{}, version string) []Issue {
	sch, ok := v.schemas[version]
	if !ok {
		return []Issue{{Path: "schema_version", Message: fmt.Sprintf("unknown schema version %q", version)}}
	}

	err := sch.Validate(normalizeForSchema(doc))
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []Issue{{Message: err.Error()}}
	}
	return flattenValidationError(verr)
}

// ValidateContract validates a typed contract at the current schema version.
func (v *Validator) ValidateContract(c *Contract) ([]Issue, error) {
	data, err := c.Encode()
	if err != nil {
		return nil, err
	}
	doc, err := DecodeDocument(data)
	if err != nil {
		return nil, err
	}
	issues := v.ValidateDocumentAt(doc, CurrentSchemaVersion)
	if !c.Automation.Coherent() {
		issues = append(issues, Issue{
			Path:    "automation/status",
			Message: fmt.Sprintf("status %q does not match derived status %q", c.Automation.Status, c.Automation.DeriveStatus()),
		})
	}
	return issues, nil
}

// flattenValidationError collects the leaf causes of a validation error as
// path-qualified issues.
func flattenValidationError(verr *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			issues = append(issues, Issue{
				Path:    instancePath(e.InstanceLocation),
				Message: e.ErrorKind.LocalizedString(errorPrinter),
			})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return issues
}

func instancePath(location []string) string {
	if len(location) == 0 {
		return ""
	}
	path := ""
	for _, seg := range location {
		path += "/" + seg
	}
	return path
}

// normalizeForSchema converts typed values that may appear when a document
// was produced in-process (ints from migrations, for example) into the
// interface shapes the schema validator expects.
func normalizeForSchema(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, val := range v {
			out[key] = normalizeForSchema(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = normalizeForSchema(val)
		}
		return out
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return v
	}
}
