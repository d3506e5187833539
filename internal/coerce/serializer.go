package coerce

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Serializers converts a literal into a value of a named, non-scalar type.
type Serializers interface {
	ParseStringToType(typeName, literal string) (any, error)
}

// ParseFunc parses one literal for a named type.
type ParseFunc func(literal string) (any, error)

// SerializerRegistry is a concurrency-safe Serializers keyed by type name.
// Lookups are case-insensitive.
type SerializerRegistry struct {
	mu      sync.RWMutex
	parsers map[string]ParseFunc
}

// NewSerializerRegistry returns an empty registry.
func NewSerializerRegistry() *SerializerRegistry {
	return &SerializerRegistry{parsers: make(map[string]ParseFunc)}
}

// DefaultSerializers returns a registry preloaded with numeric and duration
// parsers.
func DefaultSerializers() *SerializerRegistry {
	r := NewSerializerRegistry()
	r.Register("double", parseNumber)
	r.Register("float", parseNumber)
	r.Register("number", parseNumber)
	r.Register("duration", parseDuration)
	return r
}

// Register adds or replaces the parser for typeName.
func (r *SerializerRegistry) Register(typeName string, fn ParseFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[strings.ToLower(typeName)] = fn
}

// Names returns the registered type names in sorted order.
func (r *SerializerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseStringToType implements Serializers.
func (r *SerializerRegistry) ParseStringToType(typeName, literal string) (any, error) {
	r.mu.RLock()
	fn, ok := r.parsers[strings.ToLower(typeName)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSerializerNotFound, typeName)
	}
	return fn(literal)
}

func parseNumber(literal string) (any, error) {
	v, err := convert.Convert(cty.StringVal(strings.TrimSpace(literal)), cty.Number)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
	}
	var f float64
	if err := gocty.FromCtyValue(v, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
	}
	return f, nil
}

func parseDuration(literal string) (any, error) {
	return time.ParseDuration(strings.TrimSpace(literal))
}
