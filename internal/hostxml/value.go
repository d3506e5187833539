package hostxml

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"
)

// ErrUnsupportedValue is returned for Go values with no host encoding.
var ErrUnsupportedValue = errors.New("value has no host XML encoding")

// ValueElement encodes a native value. A nil value encodes to nil.
func ValueElement(v any) (*Element, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return NewElement("String").SetText(x), nil
	case bool:
		return NewElement("Boolean").SetText(strconv.FormatBool(x)), nil
	case int:
		return NewElement("Integer").SetText(strconv.Itoa(x)), nil
	case int32:
		return NewElement("Integer").SetText(strconv.FormatInt(int64(x), 10)), nil
	case int64:
		return NewElement("Long").SetText(strconv.FormatInt(x, 10)), nil
	case float64:
		return NewElement("Double").SetText(strconv.FormatFloat(x, 'g', -1, 64)), nil
	case float32:
		return NewElement("Double").SetText(strconv.FormatFloat(float64(x), 'g', -1, 32)), nil
	case time.Duration:
		return NewElement("Duration").SetText(strconv.FormatInt(int64(x), 10)), nil
	case time.Time:
		return NewElement("Date").SetText(strconv.FormatInt(x.UnixMilli(), 10)), nil
	case map[string]any:
		return MapElement(x)
	case []any:
		return listElement(x)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return listElement(items)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return MapElement(m)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
}

func listElement(items []any) (*Element, error) {
	list := NewElement("List")
	for i, item := range items {
		child, err := ValueElement(item)
		if err != nil {
			return nil, fmt.Errorf("list item %d: %w", i, err)
		}
		list.Add(child)
	}
	return list, nil
}

// MapElement encodes m with entries sorted by key. String values are
// written inline on the entry; nil values are skipped.
func MapElement(m map[string]any) (*Element, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := NewElement("Map")
	for _, k := range keys {
		v := m[k]
		if v == nil {
			continue
		}
		entry := NewElement("entry").Attr("key", k)
		if s, ok := v.(string); ok {
			entry.Attr("value", s)
			out.Add(entry)
			continue
		}
		child, err := ValueElement(v)
		if err != nil {
			return nil, fmt.Errorf("map entry %q: %w", k, err)
		}
		out.Add(entry.Add(NewElement("value").Add(child)))
	}
	return out, nil
}
