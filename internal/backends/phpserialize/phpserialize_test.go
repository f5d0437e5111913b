package phpserialize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/internal/backendtest"
	"github.com/MichaelAJay/go-serial/value"
)

func newAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewWithOptions(DefaultOptions())
	require.NoError(t, err)
	return a
}

func TestConformance(t *testing.T) {
	backendtest.Run(t, newAdapter(t), backendtest.Capabilities{
		PreservesClass: true,
		Bytes:          false,
		NonFinite:      true,
		LargeInts:      true,
	})
}

func TestOptions(t *testing.T) {
	backendtest.RunOptions(t, New)

	t.Run("NonPositiveDepth", func(t *testing.T) {
		_, err := New(map[string]any{"max_depth": 0})
		backendtest.AssertKind(t, err, interfaces.KindConfiguration)
	})

	t.Run("ShallowDepth", func(t *testing.T) {
		a, err := New(map[string]any{"max_depth": 1})
		require.NoError(t, err)

		_, err = a.Serialize(value.ListValue(value.ListValue(value.ListValue())))
		backendtest.AssertKind(t, err, interfaces.KindUnsupportedValue)

		_, err = a.Unserialize([]byte("a:1:{i:0;a:1:{i:0;a:0:{}}}"))
		backendtest.AssertKind(t, err, interfaces.KindMalformedInput)
	})
}

func TestWireFormat(t *testing.T) {
	a := newAdapter(t)

	tests := []struct {
		name string
		in   value.Value
		want string
	}{
		{"null", value.NullValue(), "N;"},
		{"true", value.BoolValue(true), "b:1;"},
		{"false", value.BoolValue(false), "b:0;"},
		{"int", value.IntValue(-12), "i:-12;"},
		{"float", value.FloatValue(0.5), "d:0.5;"},
		{"integral float", value.FloatValue(3), "d:3;"},
		{"nan", value.FloatValue(math.NaN()), "d:NAN;"},
		{"inf", value.FloatValue(math.Inf(1)), "d:INF;"},
		{"negative inf", value.FloatValue(math.Inf(-1)), "d:-INF;"},
		{"string", value.StringValue("héllo"), `s:6:"héllo";`},
		{"list", value.ListValue(value.StringValue("a"), value.IntValue(2)), `a:2:{i:0;s:1:"a";i:1;i:2;}`},
		{"map", value.MapValue(value.E("k", value.BoolValue(true))), `a:1:{s:1:"k";b:1;}`},
		{"record", value.RecordValue("stdClass", value.E("foo", value.IntValue(1))), `O:8:"stdClass":1:{s:3:"foo";i:1;}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := a.Serialize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			got, err := a.Unserialize(data)
			require.NoError(t, err)
			assert.True(t, value.Equal(tt.in, got), "got %s", got)
		})
	}
}

func TestArrays(t *testing.T) {
	a := newAdapter(t)

	t.Run("SparseIntKeysBecomeMap", func(t *testing.T) {
		got, err := a.Unserialize([]byte(`a:2:{i:0;s:1:"a";i:5;s:1:"b";}`))
		require.NoError(t, err)
		assert.Equal(t, value.Map, got.Kind())
		v, ok := got.Get("5")
		require.True(t, ok)
		assert.True(t, value.Equal(value.StringValue("b"), v))
	})

	t.Run("StringKeysStayMap", func(t *testing.T) {
		v := value.MapValue(value.E("0", value.IntValue(1)), value.E("1", value.IntValue(2)))
		backendtest.AssertRoundTrip(t, a, v, true)
	})

	t.Run("EmptyMapBecomesEmptyList", func(t *testing.T) {
		got, err := a.Unserialize([]byte("a:0:{}"))
		require.NoError(t, err)
		assert.Equal(t, value.List, got.Kind())
		assert.True(t, value.Equivalent(value.MapValue(), got))
	})

	t.Run("DuplicateKey", func(t *testing.T) {
		_, err := a.Unserialize([]byte(`a:2:{i:0;N;i:0;N;}`))
		backendtest.AssertKind(t, err, interfaces.KindMalformedInput)
	})

	t.Run("FloatKey", func(t *testing.T) {
		_, err := a.Unserialize([]byte(`a:1:{d:0.5;N;}`))
		backendtest.AssertKind(t, err, interfaces.KindMalformedInput)
	})
}

func TestMalformed(t *testing.T) {
	a := newAdapter(t)

	for _, in := range []string{
		"X;",
		"N",
		"b:2;",
		"i:;",
		"i:12",
		"i:99999999999999999999;",
		"d:abc;",
		"d:0x1p-2;",
		"d:inf;",
		"d:NaN;",
		"d:+Inf;",
		"d:1_0;",
		"d:;",
		"d:1e;",
		`s:5:"abc";`,
		`s:1:"abc";`,
		`s:-1:"";`,
		`a:1:{i:0;N;`,
		`a:2:{i:0;N;}`,
		`O:0:"":0:{}`,
		`O:3:"Foo":1:{i:0;N;`,
		`r:1;`,
		`R:1;`,
		`C:3:"Foo":0:{}`,
		`E:7:"Foo:Bar";`,
		"N;N;",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := a.Unserialize([]byte(in))
			backendtest.AssertKind(t, err, interfaces.KindMalformedInput)
		})
	}
}

func TestRecordWithoutClass(t *testing.T) {
	_, err := newAdapter(t).Serialize(value.RecordValue(""))
	backendtest.AssertKind(t, err, interfaces.KindUnsupportedValue)
}

func TestBytesBecomeString(t *testing.T) {
	a := newAdapter(t)
	data, err := a.Serialize(value.BytesValue([]byte{0xff, 0x00}))
	require.NoError(t, err)
	assert.Equal(t, "s:2:\"\xff\x00\";", string(data))

	got, err := a.Unserialize(data)
	require.NoError(t, err)
	assert.Equal(t, value.String, got.Kind())
}

func TestReadsPHPFloatLiterals(t *testing.T) {
	a := newAdapter(t)

	tests := []struct {
		in   string
		want float64
	}{
		{"d:1.0E+25;", 1e25},
		{"d:-0.5;", -0.5},
		{"d:.5;", 0.5},
		{"d:5.;", 5},
		{"d:+2;", 2},
		{"d:1e-3;", 0.001},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := a.Unserialize([]byte(tt.in))
			require.NoError(t, err)
			f, ok := got.Float()
			require.True(t, ok)
			assert.Equal(t, tt.want, f)
		})
	}
}
