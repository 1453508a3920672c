package contract

import (
	"fmt"
	"strings"
)

// InputError marks malformed or inconsistent input: an unparseable contract,
// a duplicate identifier, a schema violation. The CLI maps it to exit code 2.
type InputError struct {
	// Source is the file or identifier the error belongs to.
	Source string
	// Issues are the individual violations; always complete, never truncated
	// to the first.
	Issues []Issue
	// Err is an optional underlying cause.
	Err error
}

func (e *InputError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid input %s", e.Source)
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	for _, issue := range e.Issues {
		fmt.Fprintf(&sb, "\n  %s", issue)
	}
	return sb.String()
}

func (e *InputError) Unwrap() error { return e.Err }

// EnvironmentError marks a broken execution environment: unreachable
// storefront, missing files, failed basic auth. The CLI maps it to exit
// code 2, and the mass runner aborts a campaign on it.
type EnvironmentError struct {
	Op  string
	Err error
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("environment error during %s: %v", e.Op, e.Err)
}

func (e *EnvironmentError) Unwrap() error { return e.Err }
