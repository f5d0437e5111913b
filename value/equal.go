package value

import (
	"math"
)

// Equal reports strict structural equality. Kinds and class tags must match, lists are
// compared in order, and Map and Record entries are compared as key sets.
// Two NaN floats are equal.
func Equal(a, b Value) bool {
	return compare(a, b, false)
}

// Equivalent reports structural equality for formats that cannot carry every Value shape.
// A Record matches a Map with the same entries regardless of class, an Int matches a Float
// with the same numeric value, String matches Bytes with the same content, and an empty List
// matches an empty Map.
func Equivalent(a, b Value) bool {
	return compare(a, b, true)
}

func compare(a, b Value, loose bool) bool {
	if loose {
		a, b = normalize(a), normalize(b)
	}
	if a.kind != b.kind {
		if loose {
			return crossKindEqual(a, b)
		}
		return false
	}

	switch a.kind {
	case Null:
		return true
	case Bool:
		return a.b == b.b
	case Int:
		return a.i == b.i
	case Float:
		if math.IsNaN(a.f) && math.IsNaN(b.f) {
			return true
		}
		return a.f == b.f
	case String:
		return a.s == b.s
	case Bytes:
		return string(a.raw) == string(b.raw)
	case List:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !compare(a.items[i], b.items[i], loose) {
				return false
			}
		}
		return true
	case Map, Record:
		if a.kind == Record && a.s != b.s {
			return false
		}
		return entriesEqual(a.entries, b.entries, loose)
	}
	return false
}

func entriesEqual(a, b []Entry, loose bool) bool {
	if len(a) != len(b) {
		return false
	}
	index := make(map[string]Value, len(b))
	for _, e := range b {
		index[e.Key] = e.Value
	}
	for _, e := range a {
		other, ok := index[e.Key]
		if !ok || !compare(e.Value, other, loose) {
			return false
		}
	}
	return true
}

// normalize folds the kinds Equivalent treats as interchangeable
func normalize(v Value) Value {
	switch v.kind {
	case Record:
		return Value{kind: Map, entries: v.entries}
	case Bytes:
		return Value{kind: String, s: string(v.raw)}
	}
	return v
}

func crossKindEqual(a, b Value) bool {
	switch {
	case a.kind == List && b.kind == Map:
		return len(a.items) == 0 && len(b.entries) == 0
	case a.kind == Map && b.kind == List:
		return len(a.entries) == 0 && len(b.items) == 0
	case a.kind == Int && b.kind == Float:
		return float64(a.i) == b.f && int64(b.f) == a.i
	case a.kind == Float && b.kind == Int:
		return float64(b.i) == a.f && int64(a.f) == b.i
	}
	return false
}
