package rule

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/specialistvlad/extforge/internal/coerce"
)

// ErrArgumentNotFound is returned by accessors for a name not in the bag.
var ErrArgumentNotFound = errors.New("argument not found")

// TypeMismatchError reports an argument whose value cannot be read as the
// requested type.
type TypeMismatchError struct {
	Name string
	Want string
	Got  string
	Err  error
}

func (e *TypeMismatchError) Error() string {
	msg := fmt.Sprintf("argument %q: want %s, got %s", e.Name, e.Want, e.Got)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TypeMismatchError) Unwrap() error { return e.Err }

// Arguments is the read-only argument bag handed to an executable.
type Arguments struct {
	values map[string]any
	engine *coerce.Engine
}

// NewArguments copies values into a new bag. String values are coerced
// with engine when read as a narrower type.
func NewArguments(values map[string]any, engine *coerce.Engine) *Arguments {
	if engine == nil {
		engine = coerce.NewEngine()
	}
	cp := make(map[string]any, len(values))
	for k, v := range values {
		cp[k] = v
	}
	return &Arguments{values: cp, engine: engine}
}

// Len returns the number of arguments.
func (a *Arguments) Len() int { return len(a.values) }

// Names returns the argument names in sorted order.
func (a *Arguments) Names() []string {
	names := make([]string, 0, len(a.values))
	for k := range a.values {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is present, even with a nil value.
func (a *Arguments) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// Raw returns the untyped value of name.
func (a *Arguments) Raw(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Get reads name as T, converting compatible representations.
func Get[T any](a *Arguments, name string) (T, error) {
	var zero T
	v, ok := a.values[name]
	if !ok {
		return zero, fmt.Errorf("%w: %q", ErrArgumentNotFound, name)
	}
	if tv, ok := v.(T); ok {
		return tv, nil
	}

	target := reflect.TypeOf((*T)(nil)).Elem()
	rv, err := a.convert(v, target)
	if err != nil {
		return zero, &TypeMismatchError{Name: name, Want: target.String(), Got: fmt.Sprintf("%T", v), Err: err}
	}
	return rv.Interface().(T), nil
}

// String reads name as a string.
func (a *Arguments) String(name string) (string, error) {
	return Get[string](a, name)
}

// Bool reads name as a bool.
func (a *Arguments) Bool(name string) (bool, error) {
	return Get[bool](a, name)
}

// Int reads name as an int.
func (a *Arguments) Int(name string) (int, error) {
	return Get[int](a, name)
}

// Int64 reads name as an int64.
func (a *Arguments) Int64(name string) (int64, error) {
	return Get[int64](a, name)
}

// Float64 reads name as a float64.
func (a *Arguments) Float64(name string) (float64, error) {
	return Get[float64](a, name)
}

// Time reads name as a time.Time. String values use the date literal form.
func (a *Arguments) Time(name string) (time.Time, error) {
	return Get[time.Time](a, name)
}

// Map reads name as a string-keyed map.
func (a *Arguments) Map(name string) (map[string]any, error) {
	return Get[map[string]any](a, name)
}

// List reads name as a list.
func (a *Arguments) List(name string) ([]any, error) {
	return Get[[]any](a, name)
}

// Bind copies arguments into the `arg`-tagged fields of the struct dst
// points to. Absent arguments leave their fields untouched.
func (a *Arguments) Bind(dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a non-nil pointer to a struct, got %T", dst)
	}
	sv := rv.Elem()
	st := sv.Type()

	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		tag, ok := f.Tag.Lookup("arg")
		if !ok || !f.IsExported() {
			continue
		}
		name := strings.TrimSpace(strings.Split(tag, ",")[0])
		if name == "" {
			name = lowerFirst(f.Name)
		}

		v, present := a.values[name]
		if !present {
			continue
		}
		converted, err := a.convert(v, f.Type)
		if err != nil {
			return &TypeMismatchError{Name: name, Want: f.Type.String(), Got: fmt.Sprintf("%T", v), Err: err}
		}
		sv.Field(i).Set(converted)
	}
	return nil
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
