// Package errors defines the closed set of error kinds the engine core can
// report, and a single Result-style Error type used uniformly by
// internal/store, internal/expr, internal/pipeline, and internal/engine.
package errors

import (
	"fmt"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

// Kind is the closed set of error kinds an operation can report.
type Kind string

const (
	NotFound         Kind = "NOT_FOUND"
	AlreadyExists    Kind = "ALREADY_EXISTS"
	NotRemovable     Kind = "NOT_REMOVABLE"
	InvalidName      Kind = "INVALID_NAME"
	NoKeyColumn      Kind = "NO_KEY_COLUMN"
	InvalidArgument  Kind = "INVALID_ARGUMENT"
	InvalidOperation Kind = "INVALID_OPERATION"
	InvalidOperand   Kind = "INVALID_OPERAND"
	NoMemory         Kind = "NO_MEMORY"
	NotSupportedYet  Kind = "NOT_SUPPORTED_YET"
	Broken           Kind = "BROKEN"
)

// Error is the engine's single error shape. Every fallible operation
// returns one of these (wrapped in the standard `error` interface), never
// an out-parameter/success-flag pair.
type Error struct {
	Kind    Kind
	Message string

	// Context, filled in where relevant.
	Name   string // table/column/index name involved
	RowID  int64  // row id involved, when applicable
	HasRow bool

	// IncidentID correlates a BROKEN invariant failure with logs; unset
	// for all other kinds.
	IncidentID string

	cause error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Name != "" {
		msg += fmt.Sprintf(" (name=%q)", e.Name)
	}
	if e.HasRow {
		msg += fmt.Sprintf(" (row=%d)", e.RowID)
	}
	if e.IncidentID != "" {
		msg += fmt.Sprintf(" (incident=%s)", e.IncidentID)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// Is reports whether target is an *Error with the same Kind.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// New builds a plain Error of the given kind. Kind Broken additionally
// captures a stack trace and an incident id.
func New(kind Kind, format string, args ...interface{}) *Error {
	e := &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
	if kind == Broken {
		e.IncidentID = uuid.NewString()
		e.cause = pkgerrors.WithStack(fmt.Errorf("%s", e.Message))
	}
	return e
}

// WithName attaches a name (table/column/index) to the error and returns it.
func (e *Error) WithName(name string) *Error {
	e.Name = name
	return e
}

// WithRow attaches a row id to the error and returns it.
func (e *Error) WithRow(rowID int64) *Error {
	e.RowID = rowID
	e.HasRow = true
	return e
}

// Wrap wraps an underlying error as a BROKEN invariant failure, capturing
// a stack trace and an incident id for correlation. Used only for bugs —
// conditions that should be impossible if the rest of the engine is
// correct.
func Wrap(cause error, format string, args ...interface{}) *Error {
	return &Error{
		Kind:       Broken,
		Message:    fmt.Sprintf(format, args...),
		IncidentID: uuid.NewString(),
		cause:      pkgerrors.WithStack(cause),
	}
}

// Of reports the Kind of err if it is (or wraps) an *Error.
func Of(err error) (Kind, bool) {
	var e *Error
	if pkgerrors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := Of(err)
	return ok && k == kind
}
