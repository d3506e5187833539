package dispatch

import (
	"errors"
	"fmt"
)

// Phase is a step of a single dispatch call.
type Phase int

const (
	PhaseResolveClass Phase = iota
	PhaseValidateSource
	PhaseGetInstance
	PhaseBuildArguments
	PhaseExecute
	PhaseReturn
)

func (p Phase) String() string {
	switch p {
	case PhaseResolveClass:
		return "resolve_class"
	case PhaseValidateSource:
		return "validate_source"
	case PhaseGetInstance:
		return "get_instance"
	case PhaseBuildArguments:
		return "build_arguments"
	case PhaseExecute:
		return "execute"
	case PhaseReturn:
		return "return"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ErrInvalidSourceIdentifier is returned for a blank class identifier.
var ErrInvalidSourceIdentifier = errors.New("invalid source identifier")

// Error is returned by Dispatch for every failure it produces itself. The
// phase records how far the call got.
type Error struct {
	Phase Phase
	Class string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dispatch %q: %s: %v", e.Class, e.Phase, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// MissingRequiredArgumentError names a required argument that was absent
// or nil.
type MissingRequiredArgumentError struct {
	Name string
}

func (e *MissingRequiredArgumentError) Error() string {
	return fmt.Sprintf("missing required argument %q", e.Name)
}

// ExecutionError wraps a failure raised by the executable.
type ExecutionError struct {
	Class string
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("rule %s failed: %v", e.Class, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
