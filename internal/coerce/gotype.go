package coerce

import (
	"fmt"
	"reflect"
	"time"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// FromGoType derives the descriptor of a Go field or argument type.
func FromGoType(t reflect.Type) (TypeDescriptor, error) {
	if t == nil {
		return AnyType, nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case timeType:
		return DateType, nil
	case durationType:
		return OtherType("duration"), nil
	}

	switch t.Kind() {
	case reflect.String:
		return StringType, nil
	case reflect.Bool:
		return BoolType, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint8, reflect.Uint16:
		return IntegerType, nil
	case reflect.Int64, reflect.Uint32:
		return LongType, nil
	case reflect.Float32, reflect.Float64:
		return OtherType("double"), nil
	case reflect.Interface:
		return AnyType, nil
	case reflect.Slice, reflect.Array:
		elem, err := FromGoType(t.Elem())
		if err != nil {
			return TypeDescriptor{}, err
		}
		return ListOf(elem), nil
	case reflect.Map:
		if t.Key().Kind() != reflect.String {
			return TypeDescriptor{}, fmt.Errorf("%w: map key must be a string, got %s", ErrInvalidType, t.Key())
		}
		if t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0 {
			key, err := FromGoType(t.Key())
			if err != nil {
				return TypeDescriptor{}, err
			}
			return SetOf(key), nil
		}
		elem, err := FromGoType(t.Elem())
		if err != nil {
			return TypeDescriptor{}, err
		}
		return MapOf(elem), nil
	case reflect.Struct:
		return OtherType(t.Name()), nil
	default:
		return TypeDescriptor{}, fmt.Errorf("%w: unsupported Go type %s", ErrInvalidType, t)
	}
}
