// Package dispatch runs rule executables by class identifier.
//
// A call moves through resolve_class, validate_source, get_instance,
// build_arguments, execute and return. Failures are reported as *Error with
// the phase that produced them. Nothing is retried here.
//
// Dispatch has no timeout of its own: an executable that never returns
// blocks its caller. Callers that need a deadline must enforce it around
// the call.
package dispatch
