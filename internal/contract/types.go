package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// CurrentSchemaVersion is the schema revision the store requires before a
// contract may be dispatched.
const CurrentSchemaVersion = "3.0.0"

// Priority ranks a contract from P0 (must never break) to P3 (nice to have).
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// LifecycleStatus tracks where a contract is in its life.
type LifecycleStatus string

const (
	StatusDefined     LifecycleStatus = "defined"
	StatusImplemented LifecycleStatus = "implemented"
	StatusPassing     LifecycleStatus = "passing"
	StatusFailing     LifecycleStatus = "failing"
	StatusDeprecated  LifecycleStatus = "deprecated"
)

// AutomationStatus is derived from the framework references of an
// AutomationMapping.
type AutomationStatus string

const (
	AutomationAutomated AutomationStatus = "automated"
	AutomationPlanned   AutomationStatus = "planned"
	AutomationManual    AutomationStatus = "manual"
)

// Step is one imperative action of a contract with its required observation.
type Step struct {
	// Ordinal is the one-based step number.
	Ordinal int `json:"step"`
	// Action is the imperative instruction ("Add product X to the cart").
	Action string `json:"action"`
	// Expected is the observation that must hold after the action.
	Expected string `json:"expected"`
	// Selector is an advisory hint only; page abstractions own the
	// authoritative selector vocabulary.
	Selector string `json:"selector,omitempty"`
}

// FrameworkRef points at the runnable implementation of a contract for one
// automation framework: a file plus a callable inside it.
type FrameworkRef struct {
	File     string `json:"file"`
	Callable string `json:"callable"`
}

// AutomationMapping binds a contract to at most one runnable implementation
// per framework. The JSON shape is framework-keyed with two reserved keys,
// "manual" and "status":
//
//	{"browser": {"file": "...", "callable": "..."}, "manual": false, "status": "automated"}
//
// A null framework value means "no implementation for this framework".
type AutomationMapping struct {
	// Frameworks maps framework name to its reference; a nil entry is an
	// explicit null in the file.
	Frameworks map[string]*FrameworkRef
	// Manual records whether the contract can be executed by hand.
	Manual bool
	// Status is derived: automated iff any framework reference is non-nil.
	Status AutomationStatus
}

// DeriveStatus computes the automation status from the mapping's references.
func (a AutomationMapping) DeriveStatus() AutomationStatus {
	for _, ref := range a.Frameworks {
		if ref != nil {
			return AutomationAutomated
		}
	}
	if a.Manual {
		return AutomationManual
	}
	return AutomationPlanned
}

// Coherent reports whether the stored status matches the derived one. The
// stored status may be "planned" where the derived one is "manual"; both are
// legal for a mapping without framework references.
func (a AutomationMapping) Coherent() bool {
	derived := a.DeriveStatus()
	if derived == AutomationAutomated {
		return a.Status == AutomationAutomated
	}
	return a.Status == AutomationPlanned || a.Status == AutomationManual
}

// automationReservedKeys are the non-framework keys of the automation block.
var automationReservedKeys = map[string]bool{"manual": true, "status": true}

// MarshalJSON writes framework keys in sorted order followed by the reserved
// keys, so the automation block is byte-stable.
func (a AutomationMapping) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(a.Frameworks))
	for name := range a.Frameworks {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, name := range names {
		key, _ := json.Marshal(name)
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(a.Frameworks[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
		buf.WriteByte(',')
	}
	fmt.Fprintf(&buf, `"manual":%t,"status":%q}`, a.Manual, a.Status)
	return buf.Bytes(), nil
}

// UnmarshalJSON treats every non-reserved key as a framework reference.
func (a *AutomationMapping) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Frameworks = map[string]*FrameworkRef{}
	for key, val := range raw {
		switch {
		case key == "manual":
			if err := json.Unmarshal(val, &a.Manual); err != nil {
				return fmt.Errorf("automation.manual: %w", err)
			}
		case key == "status":
			if err := json.Unmarshal(val, &a.Status); err != nil {
				return fmt.Errorf("automation.status: %w", err)
			}
		case automationReservedKeys[key]:
			// unreachable, kept for clarity when reserved keys grow
		default:
			var ref *FrameworkRef
			if err := json.Unmarshal(val, &ref); err != nil {
				return fmt.Errorf("automation.%s: %w", key, err)
			}
			a.Frameworks[key] = ref
		}
	}
	return nil
}

// TestDataEntry is one typed entry of a contract's heterogeneous test_data
// list. Well-known types are "channel", "product_ref", "promo_code",
// "address" and "postcode_case"; unknown types round-trip verbatim.
//
// encoding/json marshals maps with sorted keys, which keeps unknown entries
// byte-stable without this package knowing their shape.
type TestDataEntry map[string]interface{}

// Type returns the entry's discriminator, or "" when absent.
func (e TestDataEntry) Type() string {
	t, _ := e["type"].(string)
	return t
}

// StringField returns a string-valued field of the entry.
func (e TestDataEntry) StringField(name string) string {
	v, _ := e[name].(string)
	return v
}

// Well-known test_data entry types.
const (
	DataTypeChannel      = "channel"
	DataTypeProductRef   = "product_ref"
	DataTypePromoCode    = "promo_code"
	DataTypeAddress      = "address"
	DataTypePostcodeCase = "postcode_case"
)

// Orchestration carries run-policy knobs of a contract. RetryCount is
// interpreted as at most one re-run, and only for runs that errored (not for
// runs that failed their expectations).
type Orchestration struct {
	RetryCount int `json:"retry_count"`
}

// Contract is a declarative test case at the current schema version.
type Contract struct {
	SchemaVersion  string            `json:"schema_version"`
	TestID         string            `json:"test_id"`
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	Priority       Priority          `json:"priority"`
	FunctionalArea string            `json:"functional_area"`
	Status         LifecycleStatus   `json:"status"`
	Author         string            `json:"author"`
	LastModified   string            `json:"last_modified"`
	Description    string            `json:"description"`
	Preconditions  []string          `json:"preconditions"`
	Steps          []Step            `json:"steps"`
	Postconditions []string          `json:"postconditions,omitempty"`
	Cleanup        []string          `json:"cleanup,omitempty"`
	Automation     AutomationMapping `json:"automation"`
	Orchestration  *Orchestration    `json:"orchestration,omitempty"`
	TestData       []TestDataEntry   `json:"test_data"`
	Tags           []string          `json:"tags,omitempty"`

	// Extra holds top-level fields the current schema does not know about.
	// They are preserved verbatim and re-emitted after the known fields.
	Extra map[string]json.RawMessage `json:"-"`
}

// knownContractKeys are the top-level keys owned by the Contract struct.
var knownContractKeys = map[string]bool{
	"schema_version": true, "test_id": true, "name": true, "category": true,
	"priority": true, "functional_area": true, "status": true, "author": true,
	"last_modified": true, "description": true, "preconditions": true,
	"steps": true, "postconditions": true, "cleanup": true, "automation": true,
	"orchestration": true, "test_data": true, "tags": true,
}

// contractAlias avoids marshal/unmarshal recursion.
type contractAlias Contract

// UnmarshalJSON decodes the known fields and stashes everything else in
// Extra for forward compatibility.
func (c *Contract) UnmarshalJSON(data []byte) error {
	var alias contractAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key := range raw {
		if knownContractKeys[key] {
			delete(raw, key)
		}
	}
	if len(raw) == 0 {
		raw = nil
	}
	*c = Contract(alias)
	c.Extra = raw
	return nil
}

// MarshalJSON emits the known fields in schema order followed by the Extra
// fields in sorted key order.
func (c Contract) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(contractAlias(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return base, nil
	}

	keys := make([]string, 0, len(c.Extra))
	for key := range c.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1]) // drop closing brace
	for _, key := range keys {
		buf.WriteByte(',')
		enc, _ := json.Marshal(key)
		buf.Write(enc)
		buf.WriteByte(':')
		buf.Write(c.Extra[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Channels returns the country codes the contract applies to, in test_data
// order.
func (c *Contract) Channels() []string {
	var channels []string
	for _, entry := range c.TestData {
		if entry.Type() == DataTypeChannel {
			if name := entry.StringField("name"); name != "" {
				channels = append(channels, name)
			}
		}
	}
	return channels
}

// Encode produces the byte-stable file representation: two-space indented
// JSON, UTF-8, trailing newline.
func (c *Contract) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode contract %s: %w", c.TestID, err)
	}
	return append(data, '\n'), nil
}

// Decode parses a single contract document.
func Decode(data []byte) (*Contract, error) {
	var c Contract
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
