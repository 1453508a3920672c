package pages

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// FailureKind classifies a page-level failure.
type FailureKind string

const (
	// FailureSelectorNotFound means no resolution strategy located the
	// element within its timeout.
	FailureSelectorNotFound FailureKind = "selector-not-found"
	// FailureUnexpectedURL means the browser ended up on a different page
	// than the flow requires.
	FailureUnexpectedURL FailureKind = "unexpected-url"
	// FailureValidation means the storefront itself surfaced a form
	// validation error.
	FailureValidation FailureKind = "validation-error-on-page"
	// FailureTimeout means a navigation or wait exceeded its deadline.
	FailureTimeout FailureKind = "timeout"
	// FailureCancelled means the run was cancelled from outside.
	FailureCancelled FailureKind = "cancelled"
)

// PageError is the typed failure every page action raises.
type PageError struct {
	Kind   FailureKind
	Page   string
	Op     string
	Detail string
	Err    error
}

func (e *PageError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s failed (%s)", e.Page, e.Op, e.Kind)
	if e.Detail != "" {
		fmt.Fprintf(&sb, ": %s", e.Detail)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *PageError) Unwrap() error { return e.Err }

// failure wraps a low-level browser error into a PageError, classifying
// deadline and cancellation causes.
func failure(page, op string, kind FailureKind, err error, detail string) *PageError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = FailureTimeout
	case errors.Is(err, context.Canceled):
		kind = FailureCancelled
	}
	return &PageError{Kind: kind, Page: page, Op: op, Detail: detail, Err: err}
}

// Classify returns the failure kind of an error, or "" when it is not a
// page failure.
func Classify(err error) FailureKind {
	var pageErr *PageError
	if errors.As(err, &pageErr) {
		return pageErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	if errors.Is(err, context.Canceled) {
		return FailureCancelled
	}
	return ""
}
