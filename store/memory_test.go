package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/internal/backends/msgpack"
	"github.com/MichaelAJay/go-serial/store"
	"github.com/MichaelAJay/go-serial/testutil"
	"github.com/MichaelAJay/go-serial/value"
)

func newMsgpack(t *testing.T) *msgpack.Adapter {
	t.Helper()
	a, err := msgpack.NewWithOptions(msgpack.Options{})
	require.NoError(t, err)
	return a
}

func sampleValue() value.Value {
	return value.RecordValue("Session",
		value.E("user", value.StringValue("ada")),
		value.E("roles", value.ListValue(value.StringValue("admin"))),
		value.E("expires", value.IntValue(1700000000)),
	)
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewMemoryStore(newMsgpack(t))
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "session", sampleValue()))

	got, ok, err := s.Get(ctx, "session")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, value.Equal(sampleValue(), got), "got %s", got)

	require.NoError(t, s.Delete(ctx, "session"))
	_, ok, err = s.Get(ctx, "session")
	require.NoError(t, err)
	assert.False(t, ok)

	// deleting an absent key is fine
	assert.NoError(t, s.Delete(ctx, "session"))
}

func TestMemoryStoreTTL(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewMemoryStore(newMsgpack(t), store.WithTTL(20*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "k", value.IntValue(1)))
	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(50 * time.Millisecond)

	_, ok, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreKeyPrefix(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewMemoryStore(newMsgpack(t), store.WithKeyPrefix("a:"))
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "k", value.StringValue("v")))
	got, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, value.Equal(value.StringValue("v"), got))
}

func TestMemoryStoreErrors(t *testing.T) {
	_, err := store.NewMemoryStore(nil)
	assert.ErrorIs(t, err, store.ErrNoSerializer)

	s, err := store.NewMemoryStore(newMsgpack(t))
	require.NoError(t, err)

	ctx := context.Background()
	assert.ErrorIs(t, s.Put(ctx, "", value.NullValue()), store.ErrInvalidKey)
	_, _, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, store.ErrInvalidKey)
	assert.ErrorIs(t, s.Delete(ctx, ""), store.ErrInvalidKey)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, s.Put(canceled, "k", value.NullValue()), store.ErrContextCanceled)
	_, _, err = s.Get(canceled, "k")
	assert.ErrorIs(t, err, store.ErrContextCanceled)
	assert.ErrorIs(t, s.Delete(canceled, "k"), store.ErrContextCanceled)
}

func TestMemoryStoreSerializerErrors(t *testing.T) {
	ctx := context.Background()
	mock := testutil.NewMockAdapter("mock")
	boom := interfaces.Unsupported("mock", nil)
	mock.OnSerializeCallback = func(value.Value) ([]byte, error) { return nil, boom }

	s, err := store.NewMemoryStore(mock)
	require.NoError(t, err)

	err = s.Put(ctx, "k", value.IntValue(1))
	assert.Same(t, boom, err)
	assert.ErrorIs(t, err, interfaces.ErrUnsupportedValue)
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewMemoryStore(newMsgpack(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := value.IntValue(int64(i))
			assert.NoError(t, s.Put(ctx, "shared", v))
			_, ok, err := s.Get(ctx, "shared")
			assert.NoError(t, err)
			assert.True(t, ok)
		}(i)
	}
	wg.Wait()
}
