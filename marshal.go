package bodyenc

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Marshaler is the interface implemented by types that can marshal themselves
// into a form value.
type Marshaler interface {
	MarshalForm() (string, error)
}

// EncodeToString is a convenience function that returns the form encoding of v
// as a string.
func EncodeToString(v interface{}) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Marshal returns the application/x-www-form-urlencoded encoding of v, which
// must be a struct or a string-keyed map. Nested structures render as bracket
// paths (address[city]=...), slices as repeated empty-index keys (tags[]=...).
// Keys are encoded in sorted order, values of one key in traversal order, so
// the output is deterministic.
func Marshal(v interface{}) ([]byte, error) {
	if v == nil {
		return []byte{}, nil
	}

	// Dereference pointer if needed.
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return []byte{}, nil
		}
		rv = rv.Elem()
	}

	// Ensure the top-level value is a struct or map.
	if rv.Kind() != reflect.Struct && rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("bodyenc: top-level value must be struct or map")
	}

	// Ensure map keys are strings.
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("bodyenc: map keys must be strings")
	}

	var pairs Pairs
	if err := marshalValue(&pairs, nil, rv); err != nil {
		return nil, err
	}

	// Map traversal order is not deterministic in Go, so order by rendered
	// key; the stable sort keeps a repeated key's values in traversal order.
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })

	return EncodeForm(pairs), nil
}

func marshalValue(out *Pairs, path []string, v reflect.Value) error {
	// Handle nil pointers early to avoid dereferencing them.
	if v.Kind() == reflect.Pointer && v.IsNil() {
		return nil
	}

	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	// Handle custom Marshaler first.
	if m, ok := asMarshaler(v); ok {
		return marshaler(out, path, m)
	}

	// Dispatch based on the kind of the value.
	switch v.Kind() {
	case reflect.Struct:
		return marshalStruct(out, path, v)
	case reflect.Map:
		return marshalMap(out, path, v)
	case reflect.Slice, reflect.Array:
		return marshalSlice(out, path, v)
	case reflect.Interface:
		if !v.IsNil() {
			return marshalValue(out, path, v.Elem())
		}
		return nil
	default:
		return marshalScalar(out, path, v)
	}
}

func marshaler(out *Pairs, path []string, m Marshaler) error {
	s, err := m.MarshalForm()
	if err != nil {
		return err
	}
	*out = append(*out, Pair{Key: renderPath(path), Value: s})
	return nil
}

func marshalStruct(out *Pairs, path []string, v reflect.Value) error {
	tags := tags(v)
	for i := 0; i < v.NumField(); i++ {
		tag := tags[i]
		if tag.Ignore {
			continue
		}
		fv := v.Field(i)
		if tag.Omit && isEmptyValue(fv) {
			continue
		}
		if tag.Name == "" {
			continue
		}
		if err := marshalValue(out, append(path, tag.Name), fv); err != nil {
			return err
		}
	}
	return nil
}

func marshalMap(out *Pairs, path []string, v reflect.Value) error {
	for _, k := range v.MapKeys() {
		mv := v.MapIndex(k)
		if !mv.IsValid() || (mv.Kind() == reflect.Interface && mv.IsNil()) {
			continue
		}
		if err := marshalValue(out, append(path, k.String()), mv); err != nil {
			return err
		}
	}
	return nil
}

func marshalSlice(out *Pairs, path []string, v reflect.Value) error {
	for i := 0; i < v.Len(); i++ {
		elem := v.Index(i)
		if !elem.IsValid() || (elem.Kind() == reflect.Interface && elem.IsNil()) {
			continue
		}
		if err := marshalValue(out, append(path, ""), elem); err != nil {
			return err
		}
	}
	return nil
}

func marshalScalar(out *Pairs, path []string, v reflect.Value) error {
	*out = append(*out, Pair{Key: renderPath(path), Value: renderScalar(v)})
	return nil
}

func asMarshaler(v reflect.Value) (Marshaler, bool) {
	if v.CanAddr() {
		if m, ok := v.Addr().Interface().(Marshaler); ok {
			return m, true
		}
	}
	if m, ok := v.Interface().(Marshaler); ok {
		return m, true
	}
	return nil, false
}

func renderPath(path []string) string {
	var b strings.Builder
	b.WriteString(path[0])
	for _, p := range path[1:] {
		if p == "" {
			b.WriteString("[]")
		} else {
			b.WriteString("[")
			b.WriteString(p)
			b.WriteString("]")
		}
	}
	return b.String()
}

func renderScalar(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, v.Type().Bits())
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	default:
		panic("bodyenc: unsupported type: " + v.Type().String())
	}
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}
