package common

import (
	"testing"

	"github.com/MichaelAJay/go-serializer"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelAJay/go-serial/interfaces"
)

type testOptions struct {
	Enabled bool   `option:"enabled"`
	Level   int    `option:"level"`
	Mode    string `option:"mode"`
}

func TestDecodeOptions(t *testing.T) {
	t.Run("EmptyKeepsDefaults", func(t *testing.T) {
		opts := testOptions{Level: 3}
		require.NoError(t, DecodeOptions("test", nil, &opts))
		assert.Equal(t, testOptions{Level: 3}, opts)
	})

	t.Run("DecodesKnownKeys", func(t *testing.T) {
		opts := testOptions{Level: 3}
		require.NoError(t, DecodeOptions("test", map[string]any{"enabled": true, "mode": "fast"}, &opts))
		assert.Equal(t, testOptions{Enabled: true, Level: 3, Mode: "fast"}, opts)
	})

	t.Run("RejectsUnknownKeys", func(t *testing.T) {
		var opts testOptions
		err := DecodeOptions("test", map[string]any{"bogus": 1}, &opts)
		require.Error(t, err)
		assert.True(t, errors.Is(err, interfaces.ErrConfiguration))
		assert.Contains(t, err.Error(), "serial: test: invalid configuration")
	})

	t.Run("RejectsWrongTypes", func(t *testing.T) {
		var opts testOptions
		err := DecodeOptions("test", map[string]any{"enabled": "true"}, &opts)
		assert.True(t, errors.Is(err, interfaces.ErrConfiguration))
	})
}

func TestCompressor(t *testing.T) {
	c, err := NewCompressor()
	require.NoError(t, err)

	payload := []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	first := c.Compress(payload)
	second := c.Compress(payload)
	assert.Equal(t, first, second)
	assert.Less(t, len(first), len(payload))

	out, err := c.Decompress(first)
	require.NoError(t, err)
	assert.Equal(t, payload, out)

	_, err = c.Decompress([]byte("plain"))
	assert.Error(t, err)
}

func TestLimits(t *testing.T) {
	assert.NoError(t, CheckDepth(MaxDepth, MaxDepth))
	assert.ErrorIs(t, CheckDepth(MaxDepth+1, MaxDepth), ErrTooDeep)

	assert.Equal(t, 0, Prealloc(-1, 10))
	assert.Equal(t, 5, Prealloc(5, 10))
	assert.Equal(t, 10, Prealloc(1<<30, 10))
}

func TestGetSerializer(t *testing.T) {
	for _, format := range []serializer.Format{serializer.JSON, serializer.Binary, serializer.Msgpack} {
		s, err := GetSerializer(format)
		require.NoError(t, err, format)
		assert.NotNil(t, s)
	}
}
