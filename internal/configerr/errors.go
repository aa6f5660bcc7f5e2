// Package configerr defines the typed errors reported by the plan
// composition pass. Every error is a deterministic configuration defect
// detected synchronously during normalization or merging: none are
// retryable, and each carries the offending key (role, shortcode, constraint
// name or file) so the author can find the defect without reading the plan
// internals.
package configerr

import (
	"errors"
	"fmt"
)

// Reason classifies a composition error.
type Reason string

const (
	// ReasonConfigConflict indicates that mutually exclusive IAM modes were
	// combined, such as a full-authority policy alongside any other binding
	// shape.
	ReasonConfigConflict Reason = "ConfigConflict"

	// ReasonUnknownShortcode indicates a symbolic service identity reference
	// that is not in the service agent table and was never registered.
	ReasonUnknownShortcode Reason = "UnknownShortcode"

	// ReasonInvalidPolicyRule indicates a malformed organization policy rule,
	// such as a rule carrying more than one of enforce, allow and deny.
	ReasonInvalidPolicyRule Reason = "InvalidPolicyRule"

	// ReasonDuplicatePolicyKey indicates the same constraint declared by two
	// inputs whose overlap the merge precedence does not cover, such as two
	// factory files in the same directory.
	ReasonDuplicatePolicyKey Reason = "DuplicatePolicyKey"
)

// Error is a composition error tied to a specific configuration key.
type Error struct {
	Reason  Reason
	Key     string
	Message string

	// Err optionally carries the underlying cause.
	Err error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %q", e.Reason, e.Key)
	}
	return fmt.Sprintf("%s: %q: %s", e.Reason, e.Key, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewConfigConflict returns an error for mutually exclusive IAM modes
// combined under the given key.
func NewConfigConflict(key, message string) *Error {
	return &Error{Reason: ReasonConfigConflict, Key: key, Message: message}
}

// NewUnknownShortcode returns an error for an unresolvable symbolic service
// identity reference.
func NewUnknownShortcode(shortcode string) *Error {
	return &Error{Reason: ReasonUnknownShortcode, Key: shortcode,
		Message: "not present in the service agent table"}
}

// NewInvalidPolicyRule returns an error for a malformed rule in the named
// constraint.
func NewInvalidPolicyRule(constraint, message string) *Error {
	return &Error{Reason: ReasonInvalidPolicyRule, Key: constraint, Message: message}
}

// NewDuplicatePolicyKey returns an error for a constraint declared more than
// once by inputs with no defined precedence.
func NewDuplicatePolicyKey(constraint, message string) *Error {
	return &Error{Reason: ReasonDuplicatePolicyKey, Key: constraint, Message: message}
}

// ReasonForError extracts the Reason from any error produced by this
// package, or "" when the error is of a different kind.
func ReasonForError(err error) Reason {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Reason
	}
	return ""
}

func IsConfigConflict(err error) bool     { return ReasonForError(err) == ReasonConfigConflict }
func IsUnknownShortcode(err error) bool   { return ReasonForError(err) == ReasonUnknownShortcode }
func IsInvalidPolicyRule(err error) bool  { return ReasonForError(err) == ReasonInvalidPolicyRule }
func IsDuplicatePolicyKey(err error) bool { return ReasonForError(err) == ReasonDuplicatePolicyKey }
