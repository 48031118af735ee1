// Package ferrors provides the kind-tagged error type the Plan Engine
// raises at its hard boundaries: pattern compilation, config loading,
// plan-generation failure, and unclassified I/O. Everywhere else, the
// engine prefers converting a condition into Warning/Conflict data on
// a PlanNode rather than raising an error.
//
// Named ferrors to avoid shadowing the stdlib errors package the rest
// of the module already imports, and extended with a Kind so callers
// can branch on the taxonomy with errors.As instead of string
// matching.
package ferrors

import (
	"errors"
	"fmt"
)

// Kind names a taxonomy entry in the engine's error classification.
// It is not a type name in the Go sense — every Kind is carried by
// the single Error type.
type Kind string

const (
	KindPattern              Kind = "pattern"
	KindConfig               Kind = "config"
	KindScan                 Kind = "scan"
	KindPlanValidation       Kind = "plan_validation"
	KindPermissionDenied     Kind = "permission_denied"
	KindLongPathNotSupported Kind = "long_path_not_supported"
	KindOneDriveOffline      Kind = "one_drive_offline"
	KindInsufficientSpace    Kind = "insufficient_space"
	KindIO                   Kind = "io"
)

// Error wraps an underlying cause with a Kind and, when relevant, the
// offending path — user-visible messages always name the offending
// path.
type Error struct {
	Kind  Kind
	Path  string
	Cause error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs a Kind-tagged error from a format string.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Cause: fmt.Errorf(format, args...)}
}

// Wrap attaches a Kind and optional path to an existing error.
func Wrap(kind Kind, path string, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Path: path, Cause: cause}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}

// CombineErrors folds a slice of possibly-nil errors into one (or
// nil).
func CombineErrors(errs []error) error {
	var nonNil []error
	for _, err := range errs {
		if err != nil {
			nonNil = append(nonNil, err)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		return fmt.Errorf("multiple errors occurred: %v", nonNil)
	}
}
