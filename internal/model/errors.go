package model

import "errors"

// Sentinel errors for use with errors.Is. Every *Error carries one of them
// as its Kind.
var (
	ErrVersion        = errors.New("unsupported document version")
	ErrStructure      = errors.New("malformed document")
	ErrPathTemplate   = errors.New("malformed path template")
	ErrSchemaType     = errors.New("unknown schema type")
	ErrParameter      = errors.New("parameter contract violation")
	ErrPathMismatch   = errors.New("path parameter mismatch")
	ErrSecurity       = errors.New("unresolvable security scheme")
	ErrResponseStatus = errors.New("malformed response status")
	ErrEncoding       = errors.New("invalid encoding")
)

// Error is a fatal modeling failure. Pointer locates the offending node as a
// local JSON pointer ("#/paths/~1pets/get").
type Error struct {
	Kind    error
	Pointer string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := "model"
	if e.Pointer != "" {
		msg += " " + e.Pointer
	}
	msg += ": "
	if e.Message != "" {
		msg += e.Message
	} else if e.Kind != nil {
		msg += e.Kind.Error()
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool { return e.Kind != nil && target == e.Kind }

func newError(kind error, pointer, message string) *Error {
	return &Error{Kind: kind, Pointer: pointer, Message: message}
}
