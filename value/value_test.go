package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	t.Run("zero value is null", func(t *testing.T) {
		var v Value
		assert.True(t, v.IsNull())
		assert.Equal(t, Null, v.Kind())
	})

	t.Run("accessors report kind", func(t *testing.T) {
		b, ok := BoolValue(true).Bool()
		assert.True(t, ok)
		assert.True(t, b)

		_, ok = IntValue(1).Float()
		assert.False(t, ok)

		s, ok := StringValue("x").Str()
		assert.True(t, ok)
		assert.Equal(t, "x", s)

		_, ok = BytesValue([]byte("x")).Str()
		assert.False(t, ok)
	})

	t.Run("bytes are copied", func(t *testing.T) {
		src := []byte("abc")
		v := BytesValue(src)
		src[0] = 'z'

		raw, ok := v.Raw()
		require.True(t, ok)
		assert.Equal(t, []byte("abc"), raw)
	})

	t.Run("later duplicate key wins in place", func(t *testing.T) {
		v := MapValue(E("a", IntValue(1)), E("b", IntValue(2)), E("a", IntValue(3)))
		require.Equal(t, 2, v.Len())
		assert.Equal(t, "a", v.Entries()[0].Key)

		got, ok := v.Get("a")
		require.True(t, ok)
		assert.True(t, Equal(IntValue(3), got))
	})

	t.Run("record class", func(t *testing.T) {
		v := RecordValue("User", E("id", IntValue(1)))
		assert.Equal(t, "User", v.Class())
		assert.Equal(t, "", MapValue().Class())
	})
}

func TestString(t *testing.T) {
	v := MapValue(
		E("list", ListValue(IntValue(1), FloatValue(2.5), NullValue())),
		E("rec", RecordValue("P", E("b", BoolValue(false)))),
		E("raw", BytesValue([]byte{0xab})),
	)
	assert.Equal(t, `{"list": [1, 2.5, null], "rec": P{"b": false}, "raw": bytes(ab)}`, v.String())
}

func TestIsFinite(t *testing.T) {
	assert.True(t, FloatValue(1).IsFinite())
	assert.False(t, FloatValue(math.NaN()).IsFinite())
	assert.False(t, FloatValue(math.Inf(-1)).IsFinite())
	assert.True(t, StringValue("NaN").IsFinite())
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name       string
		a, b       Value
		equal      bool
		equivalent bool
	}{
		{"same ints", IntValue(1), IntValue(1), true, true},
		{"int and float", IntValue(2), FloatValue(2), false, true},
		{"int and fractional float", IntValue(2), FloatValue(2.5), false, false},
		{"nan", FloatValue(math.NaN()), FloatValue(math.NaN()), true, true},
		{"string and bytes", StringValue("ab"), BytesValue([]byte("ab")), false, true},
		{"record and map", RecordValue("X", E("a", IntValue(1))), MapValue(E("a", IntValue(1))), false, true},
		{"records with different classes", RecordValue("X"), RecordValue("Y"), false, true},
		{"map order", MapValue(E("a", NullValue()), E("b", NullValue())), MapValue(E("b", NullValue()), E("a", NullValue())), true, true},
		{"list order", ListValue(IntValue(1), IntValue(2)), ListValue(IntValue(2), IntValue(1)), false, false},
		{"empty list and map", ListValue(), MapValue(), false, true},
		{"non-empty list and map", ListValue(IntValue(1)), MapValue(E("0", IntValue(1))), false, false},
		{"null and false", NullValue(), BoolValue(false), false, false},
		{"missing key", MapValue(E("a", NullValue())), MapValue(E("b", NullValue())), false, false},
		{"nested loose", ListValue(RecordValue("A", E("x", IntValue(1)))), ListValue(MapValue(E("x", FloatValue(1)))), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, Equal(tt.a, tt.b), "Equal")
			assert.Equal(t, tt.equal, Equal(tt.b, tt.a), "Equal reversed")
			assert.Equal(t, tt.equivalent, Equivalent(tt.a, tt.b), "Equivalent")
			assert.Equal(t, tt.equivalent, Equivalent(tt.b, tt.a), "Equivalent reversed")
		})
	}
}
