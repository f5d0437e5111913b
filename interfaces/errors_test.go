package interfaces

import (
	"fmt"
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMatchesOnlyItsSentinel(t *testing.T) {
	sentinels := map[Kind]error{
		KindExtensionUnavailable: ErrExtensionUnavailable,
		KindMalformedInput:       ErrMalformedInput,
		KindUnsupportedValue:     ErrUnsupportedValue,
		KindConfiguration:        ErrConfiguration,
	}

	for kind, sentinel := range sentinels {
		t.Run(kind.String(), func(t *testing.T) {
			err := NewError(kind, "msgpack", OpSerialize, io.EOF)
			assert.True(t, errors.Is(err, sentinel))
			assert.True(t, errors.Is(err, io.EOF))

			for other, otherSentinel := range sentinels {
				if other != kind {
					assert.False(t, errors.Is(err, otherSentinel), "%s matched %s", kind, other)
				}
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := Malformed("json", errors.New("unexpected end of input"))
	assert.Equal(t, "serial: json: unserialization failed: unexpected end of input", err.Error())

	err = NewError(KindExtensionUnavailable, "json", OpCreate, nil)
	assert.Equal(t, "serial: json: extension unavailable", err.Error())

	err = Unsupported("protobuf", errors.New("binary data"))
	assert.Equal(t, "serial: protobuf: serialization failed: binary data", err.Error())

	err = Errorf(KindConfiguration, "cbor", OpCreate, "unknown key %q", "x")
	assert.Equal(t, `serial: cbor: invalid configuration: unknown key "x"`, err.Error())
}

func TestNormalize(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Normalize("json", OpSerialize, nil))
	})

	t.Run("typed error passes through", func(t *testing.T) {
		orig := Unsupported("gob", io.ErrShortWrite)
		got := Normalize("other", OpUnserialize, orig)
		assert.Same(t, orig, got)
	})

	t.Run("wrapped typed error is unwrapped", func(t *testing.T) {
		orig := Malformed("cbor", io.EOF)
		got := Normalize("cbor", OpUnserialize, fmt.Errorf("context: %w", orig))
		assert.Same(t, orig, got)
	})

	t.Run("fills missing backend", func(t *testing.T) {
		got := Normalize("msgpack", OpSerialize, &Error{Kind: KindUnsupportedValue, Err: io.EOF})
		var typed *Error
		require.True(t, errors.As(got, &typed))
		assert.Equal(t, "msgpack", typed.Backend)
		assert.Equal(t, OpSerialize, typed.Op)
	})

	t.Run("shared error is not mutated", func(t *testing.T) {
		shared := &Error{Kind: KindMalformedInput, Err: io.EOF}

		first := Normalize("json", OpUnserialize, shared)
		second := Normalize("cbor", OpUnserialize, shared)

		var a, b *Error
		require.True(t, errors.As(first, &a))
		require.True(t, errors.As(second, &b))
		assert.Equal(t, "json", a.Backend)
		assert.Equal(t, "cbor", b.Backend)
		assert.Empty(t, shared.Backend)
		assert.Empty(t, shared.Op)
		assert.True(t, errors.Is(second, io.EOF))
	})

	tests := []struct {
		op   Op
		want Kind
	}{
		{OpSerialize, KindUnsupportedValue},
		{OpUnserialize, KindMalformedInput},
		{OpCreate, KindConfiguration},
	}
	for _, tt := range tests {
		t.Run("library error on "+string(tt.op), func(t *testing.T) {
			got := Normalize("msgpack", tt.op, io.ErrUnexpectedEOF)
			kind, ok := KindOf(got)
			require.True(t, ok)
			assert.Equal(t, tt.want, kind)
			assert.True(t, errors.Is(got, io.ErrUnexpectedEOF))
		})
	}
}

func TestKindOf(t *testing.T) {
	_, ok := KindOf(io.EOF)
	assert.False(t, ok)

	kind, ok := KindOf(errors.Wrap(Malformed("php", io.EOF), "outer"))
	assert.True(t, ok)
	assert.Equal(t, KindMalformedInput, kind)

	assert.Equal(t, "unknown", Kind(99).String())
}
