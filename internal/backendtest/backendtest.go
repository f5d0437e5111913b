// Package backendtest holds the behavior every serializer backend must share, written
// as testify assertions so each backend package can run it from its own tests.
package backendtest

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/value"
)

// Capabilities describes which shapes a backend carries exactly
type Capabilities struct {
	// PreservesClass is true when records keep their class tag
	PreservesClass bool
	// Bytes is true when Bytes values come back as Bytes
	Bytes bool
	// NonFinite is true when NaN and infinities can be encoded
	NonFinite bool
	// LargeInts is true when integers beyond 2^53 are exact
	LargeInts bool
}

// Primitives returns scalar values every backend must round-trip
func Primitives() map[string]value.Value {
	return map[string]value.Value{
		"null":         value.NullValue(),
		"true":         value.BoolValue(true),
		"false":        value.BoolValue(false),
		"zero":         value.IntValue(0),
		"positive int": value.IntValue(42),
		"negative int": value.IntValue(-1),
		"int32 range":  value.IntValue(math.MaxInt32 + 1),
		"float":        value.FloatValue(1.5),
		"small float":  value.FloatValue(-0.000123),
		"empty string": value.StringValue(""),
		"string":       value.StringValue("foo"),
		"unicode":      value.StringValue("héllo, 世界"),
		"quote string": value.StringValue(`say "hi";`),
	}
}

// Sample returns a nested value covering lists, maps and records
func Sample() value.Value {
	return value.MapValue(
		value.E("id", value.IntValue(7)),
		value.E("name", value.StringValue("widget")),
		value.E("tags", value.ListValue(value.StringValue("a"), value.StringValue("b"))),
		value.E("price", value.FloatValue(9.75)),
		value.E("owner", value.RecordValue("User",
			value.E("login", value.StringValue("mjay")),
			value.E("active", value.BoolValue(true)),
		)),
		value.E("none", value.NullValue()),
	)
}

// NestedRecordDepth is how deep the NestedRecords case nests records. Formats that spend
// several nesting levels on one record must still decode what they encoded.
const NestedRecordDepth = 300

// Run exercises the shared behavior of adapter a
func Run(t *testing.T, a interfaces.Adapter, caps Capabilities) {
	t.Helper()

	t.Run("Primitives", func(t *testing.T) {
		for name, v := range Primitives() {
			t.Run(name, func(t *testing.T) {
				AssertRoundTrip(t, a, v, true)
			})
		}
	})

	t.Run("Scenarios", func(t *testing.T) {
		AssertRoundTrip(t, a, value.StringValue("test"), true)
		AssertRoundTrip(t, a, value.BoolValue(false), true)
		AssertRoundTrip(t, a, value.NullValue(), true)
		AssertRoundTrip(t, a, value.IntValue(100), true)
		AssertRoundTrip(t, a, value.IntValue(0), true)
		AssertRoundTrip(t, a, value.RecordValue(value.DefaultClass), false)

		_, err := a.Unserialize([]byte("\x00\x01\r\n"))
		AssertKind(t, err, interfaces.KindMalformedInput)
	})

	t.Run("Lists", func(t *testing.T) {
		AssertRoundTrip(t, a, value.ListValue(), true)
		AssertRoundTrip(t, a, value.ListValue(value.IntValue(1), value.StringValue("two"), value.NullValue()), true)
		AssertRoundTrip(t, a, value.ListValue(value.ListValue(value.ListValue(value.BoolValue(false)))), true)
	})

	t.Run("Nested", func(t *testing.T) {
		AssertRoundTrip(t, a, Sample(), caps.PreservesClass)
	})

	t.Run("EmptyRecord", func(t *testing.T) {
		v := value.RecordValue(value.DefaultClass)
		data, err := a.Serialize(v)
		require.NoError(t, err)
		got, err := a.Unserialize(data)
		require.NoError(t, err)
		if caps.PreservesClass {
			assert.True(t, value.Equal(v, got), "got %s", got)
		} else {
			assert.True(t, value.Equivalent(v, got), "got %s", got)
		}
	})

	t.Run("Bytes", func(t *testing.T) {
		v := value.BytesValue([]byte{0x00, 0x01, 0xff, 'a'})
		if !caps.Bytes {
			if data, err := a.Serialize(v); err == nil {
				got, err := a.Unserialize(data)
				require.NoError(t, err)
				assert.True(t, value.Equivalent(v, got), "got %s", got)
			} else {
				AssertKind(t, err, interfaces.KindUnsupportedValue)
			}
			return
		}
		AssertRoundTrip(t, a, v, true)
	})

	t.Run("NonFinite", func(t *testing.T) {
		for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			v := value.FloatValue(f)
			if caps.NonFinite {
				AssertRoundTrip(t, a, v, true)
				continue
			}
			_, err := a.Serialize(v)
			AssertKind(t, err, interfaces.KindUnsupportedValue)
		}
	})

	t.Run("LargeInts", func(t *testing.T) {
		for _, i := range []int64{math.MaxInt64, math.MinInt64, 1<<53 + 1} {
			v := value.IntValue(i)
			if caps.LargeInts {
				AssertRoundTrip(t, a, v, true)
				continue
			}
			_, err := a.Serialize(v)
			AssertKind(t, err, interfaces.KindUnsupportedValue)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		first, err := a.Serialize(Sample())
		require.NoError(t, err)
		second, err := a.Serialize(Sample())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("GarbageInput", func(t *testing.T) {
		_, err := a.Unserialize([]byte("\x00\x01\r\n"))
		AssertKind(t, err, interfaces.KindMalformedInput)
		assert.Contains(t, err.Error(), "unserialization failed")
		assert.Contains(t, err.Error(), a.Name())
	})

	t.Run("EmptyInput", func(t *testing.T) {
		_, err := a.Unserialize(nil)
		AssertKind(t, err, interfaces.KindMalformedInput)
	})

	t.Run("TrailingBytes", func(t *testing.T) {
		data, err := a.Serialize(Sample())
		require.NoError(t, err)
		_, err = a.Unserialize(append(append([]byte{}, data...), 0x00))
		AssertKind(t, err, interfaces.KindMalformedInput)
	})

	t.Run("Truncated", func(t *testing.T) {
		data, err := a.Serialize(Sample())
		require.NoError(t, err)
		_, err = a.Unserialize(data[:len(data)-1])
		AssertKind(t, err, interfaces.KindMalformedInput)
	})

	t.Run("NestedRecords", func(t *testing.T) {
		v := value.IntValue(1)
		for i := 0; i < NestedRecordDepth; i++ {
			v = value.RecordValue("Node", value.E("next", v))
		}
		AssertRoundTrip(t, a, v, caps.PreservesClass)
	})

	t.Run("TooDeep", func(t *testing.T) {
		v := value.IntValue(1)
		for i := 0; i < 600; i++ {
			v = value.ListValue(v)
		}
		_, err := a.Serialize(v)
		AssertKind(t, err, interfaces.KindUnsupportedValue)
	})
}

// RunOptions checks option map handling of a backend constructor
func RunOptions(t *testing.T, newFn interfaces.Constructor) {
	t.Helper()

	t.Run("NilOptions", func(t *testing.T) {
		a, err := newFn(nil)
		require.NoError(t, err)
		assert.NotNil(t, a)
	})

	t.Run("UnknownOption", func(t *testing.T) {
		a, err := newFn(map[string]any{"no_such_option": true})
		AssertKind(t, err, interfaces.KindConfiguration)
		assert.Nil(t, a)
	})
}

// AssertRoundTrip serializes v, unserializes the result and compares it with v, strictly
// when exact is set and with value.Equivalent otherwise
func AssertRoundTrip(t *testing.T, a interfaces.Adapter, v value.Value, exact bool) {
	t.Helper()

	data, err := a.Serialize(v)
	require.NoError(t, err, "serialize %s", v)
	got, err := a.Unserialize(data)
	require.NoError(t, err, "unserialize %s", v)

	if exact {
		assert.True(t, value.Equal(v, got), "want %s, got %s", v, got)
	} else {
		assert.True(t, value.Equivalent(v, got), "want %s, got %s", v, got)
	}
}

// AssertKind checks that err is an *interfaces.Error of the given kind that also matches
// the kind's sentinel
func AssertKind(t *testing.T, err error, kind interfaces.Kind) {
	t.Helper()

	require.Error(t, err)
	var typed *interfaces.Error
	require.True(t, errors.As(err, &typed), "error %v is %T, want *interfaces.Error", err, err)
	assert.Equal(t, kind, typed.Kind, "error: %v", err)

	sentinels := map[interfaces.Kind]error{
		interfaces.KindExtensionUnavailable: interfaces.ErrExtensionUnavailable,
		interfaces.KindMalformedInput:       interfaces.ErrMalformedInput,
		interfaces.KindUnsupportedValue:     interfaces.ErrUnsupportedValue,
		interfaces.KindConfiguration:        interfaces.ErrConfiguration,
	}
	assert.True(t, errors.Is(err, sentinels[kind]), "error %v does not match sentinel for %s", err, kind)
}
