package msgpack

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/internal/backendtest"
	"github.com/MichaelAJay/go-serial/value"
)

func newAdapter(t *testing.T, opts Options) *Adapter {
	t.Helper()
	a, err := NewWithOptions(opts)
	require.NoError(t, err)
	return a
}

var caps = backendtest.Capabilities{PreservesClass: true, Bytes: true, NonFinite: true, LargeInts: true}

func TestConformance(t *testing.T) {
	backendtest.Run(t, newAdapter(t, Options{}), caps)
}

func TestConformanceCompressed(t *testing.T) {
	backendtest.AssertRoundTrip(t, newAdapter(t, Options{Compress: true}), backendtest.Sample(), true)
}

func TestOptions(t *testing.T) {
	backendtest.RunOptions(t, New)

	t.Run("WrongType", func(t *testing.T) {
		_, err := New(map[string]any{"compress": "yes"})
		backendtest.AssertKind(t, err, interfaces.KindConfiguration)
	})
}

func TestReadsPlainMsgpack(t *testing.T) {
	a := newAdapter(t, Options{})

	// payloads produced by another msgpack encoder decode without the record extension
	data, err := msgpack.Marshal(map[string]any{"a": int64(1), "b": []any{"x", true}})
	require.NoError(t, err)

	got, err := a.Unserialize(data)
	require.NoError(t, err)

	want := value.MapValue(
		value.E("a", value.IntValue(1)),
		value.E("b", value.ListValue(value.StringValue("x"), value.BoolValue(true))),
	)
	assert.True(t, value.Equal(want, got), "got %s", got)
}

func TestIntegerKeys(t *testing.T) {
	a := newAdapter(t, Options{})

	data, err := msgpack.Marshal(map[int]string{0: "zero", 1: "one"})
	require.NoError(t, err)

	got, err := a.Unserialize(data)
	require.NoError(t, err)
	zero, ok := got.Get("0")
	require.True(t, ok)
	assert.True(t, value.Equal(value.StringValue("zero"), zero))
}

func TestRecordKeepsClass(t *testing.T) {
	a := newAdapter(t, Options{})
	v := value.RecordValue("App\\Model\\User", value.E("id", value.IntValue(3)))

	data, err := a.Serialize(v)
	require.NoError(t, err)
	got, err := a.Unserialize(data)
	require.NoError(t, err)

	assert.Equal(t, value.Record, got.Kind())
	assert.Equal(t, "App\\Model\\User", got.Class())
}

func TestRejectsUnknownExtension(t *testing.T) {
	a := newAdapter(t, Options{})
	// fixext1, type 9, one payload byte
	_, err := a.Unserialize([]byte{0xd4, 0x09, 0x00})
	backendtest.AssertKind(t, err, interfaces.KindMalformedInput)
}

func TestRejectsDuplicateKeys(t *testing.T) {
	a := newAdapter(t, Options{})
	// {"a": 1, "a": 2}
	_, err := a.Unserialize([]byte{0x82, 0xa1, 'a', 0x01, 0xa1, 'a', 0x02})
	backendtest.AssertKind(t, err, interfaces.KindMalformedInput)
}

func TestCompactFloats(t *testing.T) {
	plain := newAdapter(t, Options{})
	compact := newAdapter(t, Options{CompactFloats: true})

	tests := []struct {
		name string
		f    float64
		size int
	}{
		{"half", 0.5, 5},
		{"integral", 2.0, 5},
		{"negative zero", math.Copysign(0, -1), 5},
		{"infinity", math.Inf(1), 5},
		{"not float32 exact", 0.1, 9},
		{"beyond float32 range", 1e300, 9},
		{"nan", math.NaN(), 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := value.FloatValue(tt.f)

			short, err := compact.Serialize(v)
			require.NoError(t, err)
			assert.Len(t, short, tt.size)

			long, err := plain.Serialize(v)
			require.NoError(t, err)
			assert.Len(t, long, 9)

			for _, data := range [][]byte{short, long} {
				got, err := compact.Unserialize(data)
				require.NoError(t, err)
				assert.Equal(t, value.Float, got.Kind())
				assert.True(t, value.Equal(v, got), "want %s, got %s", v, got)
			}
		})
	}
}

func TestConformanceCompactFloats(t *testing.T) {
	backendtest.Run(t, newAdapter(t, Options{CompactFloats: true}), caps)
}

func TestCompressedRejectsPlainInput(t *testing.T) {
	a := newAdapter(t, Options{Compress: true})
	data, err := newAdapter(t, Options{}).Serialize(backendtest.Sample())
	require.NoError(t, err)

	_, err = a.Unserialize(data)
	backendtest.AssertKind(t, err, interfaces.KindMalformedInput)
}
