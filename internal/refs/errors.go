package refs

import (
	"errors"
	"strconv"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrReference matches every resolution failure.
	ErrReference = errors.New("reference error")

	// ErrExternalRef indicates a $ref that does not start with the local fragment marker.
	ErrExternalRef = errors.New("external reference")

	// ErrUnresolvable indicates a local $ref whose pointer designates no node.
	ErrUnresolvable = errors.New("unresolvable reference")

	// ErrReferenceLoop indicates a chain of $ref objects that refer back to themselves.
	ErrReferenceLoop = errors.New("reference loop")
)

// Error describes a $ref that could not be resolved.
type Error struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// Ref is the raw reference string.
	Ref string
	// Pointer locates the referencing node within the document.
	Pointer string
	// Message provides additional context about the failure.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

func (e *Error) Error() string {
	msg := "$ref " + strconv.Quote(e.Ref)
	if e.Pointer != "" {
		msg += " at " + e.Pointer
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is ErrReference or the error's Kind.
func (e *Error) Is(target error) bool {
	return target == ErrReference || (e.Kind != nil && target == e.Kind)
}
