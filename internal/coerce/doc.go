// Package coerce turns literal string tokens, as written in declarations, into
// typed values for a declared target type.
//
// Scalars (string, bool, integer, long, date) are handled directly. Every other
// named type is delegated to a pluggable Serializers implementation. Collection
// targets coerce each token against the element type; map targets pair each
// literal key with a value coerced against the element type.
package coerce
