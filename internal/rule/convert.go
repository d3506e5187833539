package rule

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/specialistvlad/extforge/internal/coerce"
)

var (
	anyMapType   = reflect.TypeOf(map[string]any(nil))
	anySliceType = reflect.TypeOf([]any(nil))
)

// convert returns a value assignable to target built from v. Strings read
// as scalars go through the coercion engine; numbers convert between Go
// numeric kinds when lossless; everything else round-trips through cty.
func (a *Arguments) convert(v any, target reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(target), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(target) {
		return rv, nil
	}
	if target.Kind() == reflect.Pointer {
		inner, err := a.convert(v, target.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(target.Elem())
		p.Elem().Set(inner)
		return p, nil
	}
	if rv.Kind() == target.Kind() && isBasic(rv.Kind()) && rv.Type().ConvertibleTo(target) {
		return rv.Convert(target), nil
	}

	if s, ok := v.(string); ok {
		td, err := coerce.FromGoType(target)
		if err == nil && td.IsScalar() && td.Kind != coerce.KindString && td.Kind != coerce.KindAny {
			coerced, err := a.engine.Coerce(s, td)
			if err != nil {
				return reflect.Value{}, err
			}
			if _, still := coerced.(string); !still {
				return a.convert(coerced, target)
			}
		}
	}

	if isNumber(rv.Kind()) && isNumber(target.Kind()) {
		return convertNumber(rv, target)
	}

	switch {
	case target == anyMapType && rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return reflect.ValueOf(out), nil
	case target == anySliceType && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array):
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return reflect.ValueOf(out), nil
	}

	return convertCty(v, target)
}

func convertNumber(rv reflect.Value, target reflect.Type) (reflect.Value, error) {
	if isFloat(rv.Kind()) && !isFloat(target.Kind()) {
		if f := rv.Float(); f != math.Trunc(f) {
			return reflect.Value{}, fmt.Errorf("%v is not a whole number", f)
		}
	}
	out := rv.Convert(target)
	if isFloat(target.Kind()) {
		return out, nil
	}
	if back := out.Convert(rv.Type()); back.Interface() != rv.Interface() {
		return reflect.Value{}, fmt.Errorf("%v overflows %s", rv.Interface(), target)
	}
	return out, nil
}

func convertCty(v any, target reflect.Type) (reflect.Value, error) {
	ty, err := gocty.ImpliedType(reflect.Zero(target).Interface())
	if err != nil {
		return reflect.Value{}, fmt.Errorf("no conversion to %s: %w", target, err)
	}
	val, err := toCty(v)
	if err != nil {
		return reflect.Value{}, err
	}
	converted, err := convert.Convert(val, ty)
	if err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(target)
	if err := gocty.FromCtyValue(converted, out.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return out.Elem(), nil
}

// toCty lifts a native value, as produced by JSON decoding or the coercion
// engine, into cty.
func toCty(v any) (cty.Value, error) {
	switch x := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return x, nil
	case string:
		return cty.StringVal(x), nil
	case bool:
		return cty.BoolVal(x), nil
	case int:
		return cty.NumberIntVal(int64(x)), nil
	case int32:
		return cty.NumberIntVal(int64(x)), nil
	case int64:
		return cty.NumberIntVal(x), nil
	case float32:
		return cty.NumberFloatVal(float64(x)), nil
	case float64:
		return cty.NumberFloatVal(x), nil
	case time.Time:
		return cty.StringVal(x.Format(time.RFC3339)), nil
	case []any:
		if len(x) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(x))
		for i, e := range x {
			ev, err := toCty(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		if len(x) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(x))
		for k, e := range x {
			ev, err := toCty(e)
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", k, err)
			}
			attrs[k] = ev
		}
		return cty.ObjectVal(attrs), nil
	default:
		ty, err := gocty.ImpliedType(v)
		if err != nil {
			return cty.NilVal, err
		}
		return gocty.ToCtyValue(v, ty)
	}
}

func isBasic(k reflect.Kind) bool {
	return k == reflect.String || k == reflect.Bool || isNumber(k)
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}
