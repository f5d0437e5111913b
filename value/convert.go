package value

import (
	"encoding"
	"reflect"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"
)

// DefaultClass is the class tag given to records built from anonymous structs
const DefaultClass = "stdClass"

// tagName is the struct tag consulted by From and Decode
const tagName = "serial"

// ErrUnsupportedType is returned by From for Go values with no Value representation
var ErrUnsupportedType = errors.New("value: unsupported Go type")

var textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()

// From converts a native Go value into a Value.
//
// Structs become records whose class is the Go type name and whose fields are the exported
// struct fields in declaration order; a `serial:"name"` tag renames a field and `serial:"-"`
// skips it. Maps must have string keys; their entries are sorted by key.
func From(x any) (Value, error) {
	if v, ok := x.(Value); ok {
		return v, nil
	}
	return fromReflect(reflect.ValueOf(x), 0)
}

// MustFrom is like From but panics on error. Intended for tests and literals.
func MustFrom(x any) Value {
	v, err := From(x)
	if err != nil {
		panic(err)
	}
	return v
}

const maxConvertDepth = 512

func fromReflect(rv reflect.Value, depth int) (Value, error) {
	if depth > maxConvertDepth {
		return Value{}, errors.Wrapf(ErrUnsupportedType, "nesting deeper than %d", maxConvertDepth)
	}
	if !rv.IsValid() {
		return NullValue(), nil
	}
	if rv.Type() == reflect.TypeOf(Value{}) {
		return rv.Interface().(Value), nil
	}
	if rv.Kind() != reflect.Pointer && rv.Kind() != reflect.Interface && rv.Type().Implements(textMarshalerType) && rv.CanInterface() {
		text, err := rv.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return Value{}, errors.WithSecondaryError(ErrUnsupportedType, err)
		}
		return StringValue(string(text)), nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return NullValue(), nil
		}
		return fromReflect(rv.Elem(), depth+1)
	case reflect.Bool:
		return BoolValue(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntValue(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > 1<<63-1 {
			return Value{}, errors.Wrapf(ErrUnsupportedType, "%d overflows int64", u)
		}
		return IntValue(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return FloatValue(rv.Float()), nil
	case reflect.String:
		return StringValue(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.Kind() == reflect.Slice {
				if rv.IsNil() {
					return NullValue(), nil
				}
				return BytesValue(rv.Bytes()), nil
			}
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return BytesValue(b), nil
		}
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return NullValue(), nil
		}
		items := make([]Value, rv.Len())
		for i := range items {
			item, err := fromReflect(rv.Index(i), depth+1)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return Value{kind: List, items: items}, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, errors.Wrapf(ErrUnsupportedType, "map key type %s", rv.Type().Key())
		}
		if rv.IsNil() {
			return NullValue(), nil
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			item, err := fromReflect(rv.MapIndex(k), depth+1)
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: k.String(), Value: item})
		}
		return Value{kind: Map, entries: entries}, nil
	case reflect.Struct:
		return fromStruct(rv, depth)
	}
	return Value{}, errors.Wrapf(ErrUnsupportedType, "%s", rv.Type())
}

func fromStruct(rv reflect.Value, depth int) (Value, error) {
	class := rv.Type().Name()
	if class == "" {
		class = DefaultClass
	}

	s := structs.New(rv.Interface())
	s.TagName = tagName

	fields := make([]Entry, 0, rv.NumField())
	for _, f := range s.Fields() {
		if !f.IsExported() {
			continue
		}
		name := f.Name()
		if tag := f.Tag(tagName); tag != "" {
			if tag == "-" {
				continue
			}
			name = tag
		}
		item, err := fromReflect(reflect.ValueOf(f.Value()), depth+1)
		if err != nil {
			return Value{}, err
		}
		fields = append(fields, Entry{Key: name, Value: item})
	}
	return RecordValue(class, fields...), nil
}

// Interface converts v into plain Go values: nil, bool, int64, float64, string, []byte,
// []any and map[string]any. Records lose their class tag.
func (v Value) Interface() any {
	switch v.kind {
	case Bool:
		return v.b
	case Int:
		return v.i
	case Float:
		return v.f
	case String:
		return v.s
	case Bytes:
		return BytesValue(v.raw).raw
	case List:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case Map, Record:
		out := make(map[string]any, len(v.entries))
		for _, e := range v.entries {
			out[e.Key] = e.Value.Interface()
		}
		return out
	}
	return nil
}

// Decode stores v into out, which must be a non-nil pointer. Struct fields are matched by
// their `serial` tag or, failing that, case-insensitively by name.
func Decode(v Value, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: tagName,
		Result:  out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(v.Interface())
}
