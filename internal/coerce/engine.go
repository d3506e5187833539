package coerce

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DateLayout is the only accepted date literal format (MM/dd/yyyy HH:mm:ss).
	DateLayout = "01/02/2006 15:04:05"
	// NowLiteral coerces to the engine clock's current instant, truncated to
	// DatePrecision.
	NowLiteral = "now"
	// DatePrecision is the resolution the host stores dates at.
	DatePrecision = time.Millisecond
)

// Literal is one declared value: an optional map key plus its raw tokens.
type Literal struct {
	Key    string
	HasKey bool
	Values []string
}

// Value builds an unkeyed literal.
func Value(tokens ...string) Literal {
	return Literal{Values: tokens}
}

// Entry builds a keyed literal for a map attribute.
func Entry(key string, tokens ...string) Literal {
	return Literal{Key: key, HasKey: true, Values: tokens}
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the instant source used for the "now" literal.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSerializers replaces the serializer used for named types.
func WithSerializers(s Serializers) Option {
	return func(e *Engine) { e.serializers = s }
}

// WithLocation sets the zone used to interpret date literals.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

// Engine converts literal tokens into typed values. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	now         func() time.Time
	serializers Serializers
	loc         *time.Location
}

// NewEngine returns an engine using the wall clock, the local zone and the
// default serializers unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:         time.Now,
		serializers: DefaultSerializers(),
		loc:         time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pinned returns a copy of e whose clock is frozen at the current instant,
// so every "now" in one pass coerces to the same value.
func (e *Engine) Pinned() *Engine {
	at := e.now().Truncate(DatePrecision)
	cp := *e
	cp.now = func() time.Time { return at }
	return &cp
}

// Serializers returns the serializer the engine delegates named types to.
func (e *Engine) Serializers() Serializers {
	return e.serializers
}

// Coerce converts a single token to a scalar target type.
func (e *Engine) Coerce(raw string, target TypeDescriptor) (any, error) {
	v, err := e.coerceScalar(raw, target)
	if err != nil {
		return nil, &CoercionError{Target: target, Raw: raw, Err: err}
	}
	return v, nil
}

func (e *Engine) coerceScalar(raw string, target TypeDescriptor) (any, error) {
	switch target.Kind {
	case KindString, KindAny:
		return raw, nil
	case KindBool:
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, ErrInvalidBool
	case KindInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
		}
		return int(n), nil
	case KindLong:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNumber, err)
		}
		return n, nil
	case KindDate:
		s := strings.TrimSpace(raw)
		if s == NowLiteral {
			return e.now().Truncate(DatePrecision), nil
		}
		t, err := time.ParseInLocation(DateLayout, s, e.loc)
		if err != nil {
			return nil, ErrInvalidDate
		}
		return t, nil
	case KindOther:
		if e.serializers == nil {
			return nil, fmt.Errorf("%w: %q", ErrSerializerNotFound, target.Name)
		}
		return e.serializers.ParseStringToType(target.Name, raw)
	case KindList, KindSet, KindMap:
		return nil, fmt.Errorf("%w: %s is not a scalar", ErrInvalidType, target)
	default:
		return nil, ErrInvalidType
	}
}

// CoerceLiterals converts the declared literals of one attribute into a value
// of the target type. It returns nil when no token was declared.
//
// Collections coerce every token in declaration order; sets drop repeated
// values. Maps coerce each entry against the element type and the last entry
// written for a key wins.
func (e *Engine) CoerceLiterals(lits []Literal, target TypeDescriptor) (any, error) {
	if target.IsMap() {
		return e.coerceMap(lits, target)
	}
	var tokens []string
	for _, lit := range lits {
		if lit.HasKey {
			return nil, &CoercionError{Target: target, Raw: lit.Key, Err: ErrUnexpectedKey}
		}
		tokens = append(tokens, lit.Values...)
	}
	return e.coerceTokens(tokens, target)
}

func (e *Engine) coerceMap(lits []Literal, target TypeDescriptor) (any, error) {
	elem := target.Element()
	if elem.IsMap() {
		return nil, &CoercionError{Target: target, Err: ErrNestedMap}
	}

	var out map[string]any
	for _, lit := range lits {
		if !lit.HasKey {
			return nil, &CoercionError{Target: target, Raw: strings.Join(lit.Values, ","), Err: ErrMissingKey}
		}
		v, err := e.coerceTokens(lit.Values, elem)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[lit.Key] = v
	}
	if out == nil {
		return nil, nil
	}
	return out, nil
}

func (e *Engine) coerceTokens(tokens []string, target TypeDescriptor) (any, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	switch {
	case target.IsMap():
		return nil, &CoercionError{Target: target, Raw: tokens[0], Err: ErrMissingKey}
	case target.IsCollection():
		elem := target.Element()
		if !elem.IsScalar() {
			return nil, &CoercionError{Target: target, Raw: tokens[0], Err: ErrInvalidType}
		}
		out := make([]any, 0, len(tokens))
		seen := make(map[string]struct{})
		for _, tok := range tokens {
			v, err := e.Coerce(tok, elem)
			if err != nil {
				return nil, err
			}
			if target.Kind == KindSet {
				k := identity(v)
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
			}
			out = append(out, v)
		}
		return out, nil
	default:
		if len(tokens) > 1 {
			return nil, &CoercionError{Target: target, Raw: strings.Join(tokens, ","), Err: ErrTooManyValues}
		}
		return e.Coerce(tokens[0], target)
	}
}

// identity keys a coerced value for set de-duplication.
func identity(v any) string {
	if t, ok := v.(time.Time); ok {
		return "time:" + strconv.FormatInt(t.UnixNano(), 10)
	}
	return fmt.Sprintf("%T:%v", v, v)
}
