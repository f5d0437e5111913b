// Package value defines the dynamically typed payload exchanged with serializer backends.
//
// A Value is an immutable tagged variant. Backends pattern-match on Kind rather than
// inspecting arbitrary Go types, which keeps the set of representable shapes closed.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value
type Kind uint8

const (
	Null Kind = iota
	Bool
	Int
	Float
	String
	Bytes
	List
	Map
	Record
)

var kindNames = [...]string{
	Null:   "null",
	Bool:   "bool",
	Int:    "int",
	Float:  "float",
	String: "string",
	Bytes:  "bytes",
	List:   "list",
	Map:    "map",
	Record: "record",
}

// String returns the lower-case kind name
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Entry is one key/value pair of a Map, or one named field of a Record
type Entry struct {
	Key   string
	Value Value
}

// Value is a serializable payload. The zero Value is Null.
type Value struct {
	kind    Kind
	b       bool
	i       int64
	f       float64
	s       string
	raw     []byte
	items   []Value
	entries []Entry
}

// NullValue returns the null Value
func NullValue() Value { return Value{} }

// BoolValue wraps a boolean
func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// IntValue wraps a signed integer
func IntValue(i int64) Value { return Value{kind: Int, i: i} }

// FloatValue wraps a float
func FloatValue(f float64) Value { return Value{kind: Float, f: f} }

// StringValue wraps a string
func StringValue(s string) Value { return Value{kind: String, s: s} }

// BytesValue wraps an opaque byte slice. The slice is copied.
func BytesValue(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: Bytes, raw: cp}
}

// ListValue builds an ordered list
func ListValue(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: List, items: cp}
}

// MapValue builds an ordered mapping. A later entry replaces an earlier one with the same key
// while keeping the earlier position.
func MapValue(entries ...Entry) Value {
	return Value{kind: Map, entries: dedupe(entries)}
}

// RecordValue builds an object-like record with a class tag and named fields
func RecordValue(class string, fields ...Entry) Value {
	return Value{kind: Record, s: class, entries: dedupe(fields)}
}

// E is shorthand for building an Entry
func E(key string, v Value) Entry { return Entry{Key: key, Value: v} }

func dedupe(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if pos, ok := index[e.Key]; ok {
			out[pos].Value = e.Value
			continue
		}
		index[e.Key] = len(out)
		out = append(out, e)
	}
	return out
}

// Kind returns the variant tag
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null
func (v Value) IsNull() bool { return v.kind == Null }

// Bool returns the boolean payload and whether v is a Bool
func (v Value) Bool() (bool, bool) { return v.b, v.kind == Bool }

// Int returns the integer payload and whether v is an Int
func (v Value) Int() (int64, bool) { return v.i, v.kind == Int }

// Float returns the float payload and whether v is a Float
func (v Value) Float() (float64, bool) { return v.f, v.kind == Float }

// Str returns the string payload and whether v is a String
func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.s, true
}

// Raw returns the byte payload and whether v is Bytes. The returned slice must not be modified.
func (v Value) Raw() ([]byte, bool) {
	if v.kind != Bytes {
		return nil, false
	}
	return v.raw, true
}

// Items returns the list elements, or nil when v is not a List. The slice must not be modified.
func (v Value) Items() []Value {
	if v.kind != List {
		return nil
	}
	return v.items
}

// Entries returns the entries of a Map or the fields of a Record in insertion order.
// The slice must not be modified.
func (v Value) Entries() []Entry {
	if v.kind != Map && v.kind != Record {
		return nil
	}
	return v.entries
}

// Class returns the class tag of a Record, or "" for other kinds
func (v Value) Class() string {
	if v.kind != Record {
		return ""
	}
	return v.s
}

// Len returns the number of elements of a List, entries of a Map or fields of a Record,
// the byte length of String and Bytes, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case String:
		return len(v.s)
	case Bytes:
		return len(v.raw)
	case List:
		return len(v.items)
	case Map, Record:
		return len(v.entries)
	}
	return 0
}

// Get looks up a key of a Map or a field of a Record
func (v Value) Get(key string) (Value, bool) {
	for _, e := range v.Entries() {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// String renders v for diagnostics. It is not a wire format.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.kind {
	case Null:
		sb.WriteString("null")
	case Bool:
		sb.WriteString(strconv.FormatBool(v.b))
	case Int:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case Float:
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case String:
		sb.WriteString(strconv.Quote(v.s))
	case Bytes:
		fmt.Fprintf(sb, "bytes(%x)", v.raw)
	case List:
		sb.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.write(sb)
		}
		sb.WriteByte(']')
	case Map, Record:
		if v.kind == Record {
			sb.WriteString(v.s)
		}
		sb.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(e.Key))
			sb.WriteString(": ")
			e.Value.write(sb)
		}
		sb.WriteByte('}')
	}
}

// IsFinite reports whether a Float holds neither NaN nor an infinity. Other kinds are finite.
func (v Value) IsFinite() bool {
	if v.kind != Float {
		return true
	}
	return !math.IsNaN(v.f) && !math.IsInf(v.f, 0)
}
