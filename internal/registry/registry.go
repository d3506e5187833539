package registry

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/metrics"
	"github.com/specialistvlad/extforge/internal/rule"
)

var (
	ErrClassNotFound  = errors.New("class not registered")
	ErrDuplicateClass = errors.New("class already registered")
	ErrNotExecutable  = errors.New("type does not implement rule.Executable")
	ErrEmptyClass     = errors.New("class identifier is empty")
	errNilInstance    = errors.New("factory returned a nil executable")
)

// ConstructionError reports a factory that failed or panicked.
type ConstructionError struct {
	Class string
	Err   error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("construct %s: %v", e.Class, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// Factory builds a fresh executable for one class.
type Factory func() (rule.Executable, error)

// Module is the interface that extension packages implement to register
// their classes.
type Module interface {
	Register(r *Registry)
}

type slot struct {
	mu      sync.Mutex
	factory Factory
}

// Registry maps class identifiers to lazily constructed singletons.
type Registry struct {
	mu        sync.RWMutex
	slots     map[string]*slot
	instances sync.Map
	metrics   *metrics.Metrics
}

// Option configures a Registry.
type Option func(*Registry)

// WithMetrics counts constructions on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{slots: make(map[string]*slot)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRegistry = sync.OnceValue(func() *Registry { return New() })

// Default returns the process-wide registry. It is created on first use and
// never torn down.
func Default() *Registry {
	return defaultRegistry()
}

// Register binds class to factory.
func (r *Registry) Register(class string, factory Factory) error {
	class = strings.TrimSpace(class)
	if class == "" {
		return ErrEmptyClass
	}
	if factory == nil {
		return fmt.Errorf("class %q: nil factory", class)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.slots[class]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateClass, class)
	}
	r.slots[class] = &slot{factory: factory}
	return nil
}

// MustRegister is Register that panics on error, for use inside
// Module.Register.
func (r *Registry) MustRegister(class string, factory Factory) {
	if err := r.Register(class, factory); err != nil {
		panic(err)
	}
}

// RegisterType registers the type of v under its class name. Instances are
// built with the zero value of the type; a pointer to it must implement
// rule.Executable. If it also implements rule.Initializer, Init runs after
// construction.
func (r *Registry) RegisterType(v any) (string, error) {
	if v == nil {
		return "", ErrNotExecutable
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if !reflect.PointerTo(t).Implements(reflect.TypeOf((*rule.Executable)(nil)).Elem()) {
		return "", fmt.Errorf("%w: %s", ErrNotExecutable, t)
	}

	class := rule.ClassName(v)
	err := r.Register(class, func() (rule.Executable, error) {
		inst := reflect.New(t).Interface()
		if in, ok := inst.(rule.Initializer); ok {
			if err := in.Init(); err != nil {
				return nil, err
			}
		}
		return inst.(rule.Executable), nil
	})
	return class, err
}

// MustRegisterType is RegisterType that panics on error.
func (r *Registry) MustRegisterType(v any) string {
	class, err := r.RegisterType(v)
	if err != nil {
		panic(err)
	}
	return class
}

// GetOrCreate returns the instance for class, constructing it on first use.
// Concurrent callers for the same class wait for a single construction;
// callers for other classes are not blocked.
func (r *Registry) GetOrCreate(ctx context.Context, class string) (rule.Executable, error) {
	if inst, ok := r.instances.Load(class); ok {
		return inst.(rule.Executable), nil
	}

	r.mu.RLock()
	s, ok := r.slots[class]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrClassNotFound, class)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if inst, ok := r.instances.Load(class); ok {
		return inst.(rule.Executable), nil
	}

	inst, err := construct(class, s.factory)
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Rule construction failed.", "class", class, "error", err)
		return nil, err
	}
	r.instances.Store(class, inst)
	r.metrics.InstanceCreated(class)
	ctxlog.FromContext(ctx).Debug("Rule instance created.", "class", class)
	return inst, nil
}

func construct(class string, factory Factory) (inst rule.Executable, err error) {
	defer func() {
		if p := recover(); p != nil {
			inst = nil
			err = &ConstructionError{Class: class, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	inst, err = factory()
	if err != nil {
		return nil, &ConstructionError{Class: class, Err: err}
	}
	if inst == nil {
		return nil, &ConstructionError{Class: class, Err: errNilInstance}
	}
	return inst, nil
}

// Has reports whether class is registered.
func (r *Registry) Has(class string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.slots[class]
	return ok
}

// Classes returns the registered class identifiers in sorted order.
func (r *Registry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.slots))
	for class := range r.slots {
		out = append(out, class)
	}
	sort.Strings(out)
	return out
}
