package store_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/MichaelAJay/go-logger"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelAJay/go-serial/internal/backends/cbor"
	"github.com/MichaelAJay/go-serial/store"
	"github.com/MichaelAJay/go-serial/value"
)

// newTestRedisClient connects with REDIS_* settings and skips the test when Redis is down
func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	options := store.LoadRedisOptionsFromEnv()
	client := store.NewRedisClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Skipping test: Cannot connect to Redis at %s: %v", options.Address, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewRedisStoreValidation(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer client.Close()

	_, err := store.NewRedisStore(nil, newMsgpack(t))
	assert.ErrorIs(t, err, store.ErrNoClient)

	_, err = store.NewRedisStore(client, nil)
	assert.ErrorIs(t, err, store.ErrNoSerializer)

	s, err := store.NewRedisStore(client, newMsgpack(t))
	require.NoError(t, err)

	ctx := context.Background()
	assert.ErrorIs(t, s.Put(ctx, "", value.NullValue()), store.ErrInvalidKey)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = s.Get(canceled, "k")
	assert.ErrorIs(t, err, store.ErrContextCanceled)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	client := newTestRedisClient(t)
	ctx := context.Background()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.DebugLevel, Output: &buf})

	adapters := map[string]func() (store.Store, error){
		"msgpack": func() (store.Store, error) {
			return store.NewRedisStore(client, newMsgpack(t), store.WithKeyPrefix("serial-test:msgpack:"), store.WithLogger(log))
		},
		"cbor": func() (store.Store, error) {
			a, err := cbor.NewWithOptions(cbor.Options{Compress: true})
			if err != nil {
				return nil, err
			}
			return store.NewRedisStore(client, a, store.WithKeyPrefix("serial-test:cbor:"), store.WithLogger(log))
		},
	}

	for name, build := range adapters {
		t.Run(name, func(t *testing.T) {
			s, err := build()
			require.NoError(t, err)

			require.NoError(t, s.Put(ctx, "session", sampleValue()))
			defer s.Delete(ctx, "session")

			got, ok, err := s.Get(ctx, "session")
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, value.Equal(sampleValue(), got), "got %s", got)

			require.NoError(t, s.Delete(ctx, "session"))
			_, ok, err = s.Get(ctx, "session")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRedisStoreTTL(t *testing.T) {
	client := newTestRedisClient(t)
	ctx := context.Background()

	s, err := store.NewRedisStore(client, newMsgpack(t), store.WithTTL(time.Second))
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "ttl", value.IntValue(1)))
	ttl, err := client.TTL(ctx, "serial:ttl").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Second)

	require.NoError(t, s.Delete(ctx, "ttl"))
}

func TestRedisStoreDecodeError(t *testing.T) {
	client := newTestRedisClient(t)
	ctx := context.Background()

	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.DebugLevel, Output: &buf})

	s, err := store.NewRedisStore(client, newMsgpack(t), store.WithLogger(log))
	require.NoError(t, err)

	require.NoError(t, client.Set(ctx, "serial:garbage", []byte{0xc1}, 0).Err())
	defer client.Del(ctx, "serial:garbage")

	_, ok, err := s.Get(ctx, "garbage")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, buf.String(), "Store decode error")
}

func TestRedisStoreContainer(t *testing.T) {
	rc := startRedisContainer(t)
	ctx := context.Background()

	s, err := store.NewRedisStore(rc.Client, newMsgpack(t), store.WithKeyPrefix("container:"))
	require.NoError(t, err)

	values := map[string]value.Value{
		"record": sampleValue(),
		"list":   value.ListValue(value.IntValue(1), value.NullValue(), value.BytesValue([]byte{0, 1})),
		"map":    value.MapValue(value.E("nested", value.MapValue(value.E("x", value.FloatValue(1.5))))),
	}
	for key, v := range values {
		require.NoError(t, s.Put(ctx, key, v))
	}
	for key, want := range values {
		got, ok, err := s.Get(ctx, key)
		require.NoError(t, err)
		require.True(t, ok, key)
		assert.True(t, value.Equal(want, got), "%s: got %s", key, got)
	}

	keys, err := rc.Client.Keys(ctx, "container:*").Result()
	require.NoError(t, err)
	assert.Len(t, keys, len(values))
}
