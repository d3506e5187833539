package coerce

import (
	"errors"
	"fmt"
)

var (
	// ErrSerializerNotFound is returned when no serializer knows a named type.
	ErrSerializerNotFound = errors.New("serializer not found")
	ErrInvalidBool        = errors.New("not a boolean")
	ErrInvalidNumber      = errors.New("not a number")
	ErrInvalidDate        = errors.New("not a date in " + DateLayout + " form")
	ErrTooManyValues      = errors.New("more than one value for a scalar type")
	ErrMissingKey         = errors.New("map value has no key")
	ErrUnexpectedKey      = errors.New("keyed value for a non-map type")
	ErrNestedMap          = errors.New("maps of maps are not supported")
	ErrInvalidType        = errors.New("invalid type descriptor")
)

// CoercionError reports a literal that could not be converted to its
// declared type.
type CoercionError struct {
	Target TypeDescriptor
	Raw    string
	Err    error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %q to %s: %v", e.Raw, e.Target, e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }
