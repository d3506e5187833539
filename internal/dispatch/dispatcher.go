package dispatch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/specialistvlad/extforge/internal/coerce"
	"github.com/specialistvlad/extforge/internal/ctxlog"
	"github.com/specialistvlad/extforge/internal/metrics"
	"github.com/specialistvlad/extforge/internal/model"
	"github.com/specialistvlad/extforge/internal/rule"
)

// Instances resolves class identifiers to shared executables.
// *registry.Registry implements it.
type Instances interface {
	GetOrCreate(ctx context.Context, class string) (rule.Executable, error)
	Classes() []string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithEngine sets the coercion engine used to bind string arguments.
func WithEngine(e *coerce.Engine) Option {
	return func(d *Dispatcher) { d.engine = e }
}

// WithMetrics records every dispatch on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithAlias lets callers dispatch by a compiled rule name instead of the
// class identifier.
func WithAlias(name, class string) Option {
	return func(d *Dispatcher) { d.aliases[strings.TrimSpace(name)] = strings.TrimSpace(class) }
}

// Dispatcher runs executables from an Instances source. It is safe for
// concurrent use; calls for the same class share one instance and are not
// serialized.
type Dispatcher struct {
	instances  Instances
	engine     *coerce.Engine
	metrics    *metrics.Metrics
	aliases    map[string]string
	signatures sync.Map
}

// New creates a Dispatcher over instances.
func New(instances Instances, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		instances: instances,
		aliases:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.engine == nil {
		d.engine = coerce.NewEngine()
	}
	return d
}

// Dispatch runs the executable registered for class with the given
// argument bag and returns its result. Keys in bag that the executable does
// not declare are passed through untouched.
func (d *Dispatcher) Dispatch(ctx context.Context, class string, bag map[string]any) (result any, err error) {
	start := time.Now()

	// resolve_class
	class = strings.TrimSpace(class)
	resolved := d.resolve(class)
	ctx = ctxlog.With(ctx, "class", resolved, "invocation_id", uuid.NewString())
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Dispatch started.", "arguments", len(bag))
	defer func() {
		d.metrics.ObserveDispatch(resolved, metrics.Outcome(err), time.Since(start))
		if err != nil {
			logger.Debug("Dispatch failed.", "error", err, "took", time.Since(start))
			return
		}
		logger.Debug("Dispatch finished.", "took", time.Since(start))
	}()

	// validate_source
	if class == "" || strings.TrimSpace(resolved) == "" {
		return nil, &Error{Phase: PhaseValidateSource, Class: class, Err: ErrInvalidSourceIdentifier}
	}

	// get_instance
	inst, err := d.instances.GetOrCreate(ctx, resolved)
	if err != nil {
		return nil, &Error{Phase: PhaseGetInstance, Class: resolved, Err: err}
	}

	// build_arguments
	sig, err := d.signature(ctx, resolved, inst)
	if err != nil {
		return nil, &Error{Phase: PhaseBuildArguments, Class: resolved, Err: err}
	}
	args, err := d.bind(sig, bag)
	if err != nil {
		return nil, &Error{Phase: PhaseBuildArguments, Class: resolved, Err: err}
	}

	// execute
	result, err = execute(ctx, inst, args)
	if err != nil {
		if de, ok := err.(*Error); ok {
			return nil, de
		}
		return nil, &Error{Phase: PhaseExecute, Class: resolved, Err: &ExecutionError{Class: resolved, Err: err}}
	}

	// return
	return result, nil
}

func (d *Dispatcher) resolve(class string) string {
	if to, ok := d.aliases[class]; ok {
		return to
	}
	return class
}

func (d *Dispatcher) bind(sig []model.ArgumentDeclaration, bag map[string]any) (*rule.Arguments, error) {
	values := make(map[string]any, len(bag))
	for k, v := range bag {
		values[k] = v
	}

	for _, arg := range sig {
		if arg.Direction == model.DirectionReturn {
			continue
		}
		v, ok := values[arg.Name]
		if !ok || isNil(v) {
			if arg.Required {
				return nil, &MissingRequiredArgumentError{Name: arg.Name}
			}
			continue
		}
		s, isString := v.(string)
		if !isString || !narrower(arg.Type) {
			continue
		}
		coerced, err := d.engine.Coerce(s, arg.Type)
		if errors.Is(err, coerce.ErrSerializerNotFound) {
			// Host object types without a serializer reach the rule as sent.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", arg.Name, err)
		}
		values[arg.Name] = coerced
	}
	return rule.NewArguments(values, d.engine), nil
}

// isNil reports whether v is nil or a typed nil such as a nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// narrower reports whether t is a scalar type that a string argument must
// be coerced to.
func narrower(t coerce.TypeDescriptor) bool {
	return t.IsScalar() && t.Kind != coerce.KindString && t.Kind != coerce.KindAny
}

func execute(ctx context.Context, inst rule.Executable, args *rule.Arguments) (result any, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = nil
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return inst.Execute(ctx, args)
}

// Classes lists the dispatchable class identifiers.
func (d *Dispatcher) Classes() []string {
	return d.instances.Classes()
}

// Describe returns the argument signature of class, constructing its
// instance if needed.
func (d *Dispatcher) Describe(ctx context.Context, class string) ([]model.ArgumentDeclaration, error) {
	class = d.resolve(strings.TrimSpace(class))
	inst, err := d.instances.GetOrCreate(ctx, class)
	if err != nil {
		return nil, &Error{Phase: PhaseGetInstance, Class: class, Err: err}
	}
	sig, err := d.signature(ctx, class, inst)
	if err != nil {
		return nil, &Error{Phase: PhaseBuildArguments, Class: class, Err: err}
	}
	return append([]model.ArgumentDeclaration(nil), sig...), nil
}

// Verify constructs every registered class and checks its signature.
// All failures are reported together.
func (d *Dispatcher) Verify(ctx context.Context) error {
	var errs []error
	for _, class := range d.instances.Classes() {
		if _, err := d.Describe(ctx, class); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("registry verification failed: %w", errors.Join(errs...))
	}
	return nil
}
