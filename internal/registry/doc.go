// Package registry holds the process-wide mapping from class identifiers to
// rule executables.
//
// Modules register a Factory per class at startup. The first GetOrCreate for
// a class constructs its instance; every later caller, concurrent or not,
// observes that same instance for the rest of the process lifetime.
// Instances are never evicted. Construction failures are returned to the
// caller that triggered them and are not cached, so a later call retries.
package registry
