package cli

import (
	"errors"
	"fmt"

	"github.com/olydis/openapi3-normalizer/internal/model"
	"github.com/olydis/openapi3-normalizer/internal/refs"
	"github.com/olydis/openapi3-normalizer/internal/spec"
)

var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg   string
	cause error
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Unwrap() error { return e.cause }

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

// describeError turns loader, resolver and modeler failures into usage errors
// carrying the document location and pointer. Other errors pass through.
func describeError(err error, location string) error {
	var (
		se *spec.SpecError
		re *refs.Error
		me *model.Error
	)
	var msg, pointer string
	switch {
	case errors.As(err, &se):
		msg = fmt.Sprintf("spec: %s", se.Message)
		if se.Location != "" {
			location = se.Location
		}
		pointer = se.JSONPointer
	case errors.As(err, &re):
		msg = err.Error()
		pointer = re.Pointer
	case errors.As(err, &me):
		msg = err.Error()
		pointer = me.Pointer
	default:
		return err
	}
	if location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, location)
	}
	if pointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, pointer)
	}
	return usageError{msg: msg, cause: err}
}
