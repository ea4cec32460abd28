package seal

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/agayevhuseyn/seal-sub000/internal/value"
)

// hostPtrLabel is the label of pointers created for Go values with no SEAL
// counterpart.
const hostPtrLabel = "host"

var valueType = reflect.TypeOf(value.Value{})

// Marshaller converts between Go values and SEAL values.
type Marshaller struct {
	// wrap turns a Go func into a callable builtin.
	wrap func(name string, fn reflect.Value) value.Value
}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to a SEAL value owned by the caller.
func (m *Marshaller) ToValue(val interface{}) (value.Value, error) {
	if val == nil {
		return value.Null(), nil
	}
	if v, ok := val.(value.Value); ok {
		return v.Retain(), nil
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return value.Int(int64(v.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return value.Float(v.Float()), nil
	case reflect.Bool:
		return value.Bool(v.Bool()), nil
	case reflect.String:
		return value.NewString(v.String()), nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return value.Null(), nil
		}
		return m.sliceToList(v)
	case reflect.Map:
		if v.IsNil() {
			return value.Null(), nil
		}
		return m.goMapToMap(v)
	case reflect.Func:
		if v.IsNil() {
			return value.Null(), nil
		}
		if m.wrap == nil {
			return value.Null(), fmt.Errorf("cannot convert func without a VM")
		}
		return m.wrap("<host>", v), nil
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return value.Null(), nil
		}
	}
	return value.NewPtr(val, hostPtrLabel), nil
}

func (m *Marshaller) sliceToList(v reflect.Value) (value.Value, error) {
	items := make([]value.Value, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		item, err := m.ToValue(v.Index(i).Interface())
		if err != nil {
			value.ReleaseAll(items)
			return value.Null(), fmt.Errorf("index %d: %w", i, err)
		}
		items = append(items, item)
	}
	return value.NewList(items), nil
}

// goMapToMap inserts keys in sorted order so the SEAL map iterates
// deterministically.
func (m *Marshaller) goMapToMap(v reflect.Value) (value.Value, error) {
	if v.Type().Key().Kind() != reflect.String {
		return value.Null(), fmt.Errorf("map keys must be strings, got %s", v.Type().Key())
	}
	keys := make([]string, 0, v.Len())
	for _, k := range v.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	out := value.NewMap()
	for _, k := range keys {
		item, err := m.ToValue(v.MapIndex(reflect.ValueOf(k).Convert(v.Type().Key())).Interface())
		if err == nil {
			if err = out.AsMap().Set(k, item); err != nil {
				item.Release()
			}
		}
		if err != nil {
			out.Release()
			return value.Null(), fmt.Errorf("key %q: %w", k, err)
		}
	}
	return out, nil
}

// FromValue converts a SEAL value to a Go value. When target is non-nil the
// result is assignable to it; otherwise ints become int64, lists
// []interface{} and maps map[string]interface{}.
func (m *Marshaller) FromValue(v value.Value, target reflect.Type) (interface{}, error) {
	if target == valueType {
		return v, nil
	}
	if target != nil && target.Kind() == reflect.Interface && target.NumMethod() == 0 {
		target = nil
	}

	var out interface{}
	switch v.Kind {
	case value.KindNull:
		if target != nil {
			return reflect.Zero(target).Interface(), nil
		}
		return nil, nil
	case value.KindInt:
		out = v.AsInt()
	case value.KindFloat:
		out = v.AsFloat()
	case value.KindBool:
		out = v.AsBool()
	case value.KindString:
		out = v.AsString()
	case value.KindList:
		return m.listToSlice(v.AsList(), target)
	case value.KindMap:
		return m.mapToGoMap(v.AsMap(), target)
	case value.KindPtr:
		out = v.AsPtr().Data
	default:
		return nil, fmt.Errorf("cannot convert %s to a Go value", v.TypeName())
	}
	if target == nil {
		return out, nil
	}
	return convert(out, target, v.TypeName())
}

func convert(x interface{}, target reflect.Type, from string) (interface{}, error) {
	rv := reflect.ValueOf(x)
	if rv.Type().AssignableTo(target) {
		return x, nil
	}
	if isNumeric(rv.Kind()) && isNumeric(target.Kind()) {
		return rv.Convert(target).Interface(), nil
	}
	if rv.Kind() == reflect.String && target.Kind() == reflect.String {
		return rv.Convert(target).Interface(), nil
	}
	return nil, fmt.Errorf("cannot use %s as %s", from, target)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func (m *Marshaller) listToSlice(l *value.List, target reflect.Type) (interface{}, error) {
	if target == nil {
		out := make([]interface{}, l.Len())
		for i, item := range l.Items() {
			x, err := m.FromValue(item, nil)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = x
		}
		return out, nil
	}
	if target.Kind() != reflect.Slice {
		return nil, fmt.Errorf("cannot use list as %s", target)
	}
	out := reflect.MakeSlice(target, l.Len(), l.Len())
	for i, item := range l.Items() {
		x, err := m.FromValue(item, target.Elem())
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		setValue(out.Index(i), x)
	}
	return out.Interface(), nil
}

func (m *Marshaller) mapToGoMap(mp *value.Map, target reflect.Type) (interface{}, error) {
	if target == nil {
		target = reflect.TypeOf(map[string]interface{}{})
	}
	if target.Kind() != reflect.Map || target.Key().Kind() != reflect.String {
		return nil, fmt.Errorf("cannot use map as %s", target)
	}
	out := reflect.MakeMapWithSize(target, mp.Len())
	var err error
	mp.Range(func(k string, item value.Value) bool {
		var x interface{}
		if x, err = m.FromValue(item, target.Elem()); err != nil {
			err = fmt.Errorf("key %q: %w", k, err)
			return false
		}
		elem := reflect.New(target.Elem()).Elem()
		setValue(elem, x)
		out.SetMapIndex(reflect.ValueOf(k).Convert(target.Key()), elem)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out.Interface(), nil
}

// setValue stores x into dst, leaving the zero value for nil.
func setValue(dst reflect.Value, x interface{}) {
	if x == nil {
		return
	}
	dst.Set(reflect.ValueOf(x))
}
