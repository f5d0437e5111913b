package store

import (
	"context"

	"github.com/MichaelAJay/go-logger"
	"github.com/go-redis/redis/v8"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/value"
)

const defaultKeyPrefix = "serial:"

// redisStore implements Store on top of a Redis client
type redisStore struct {
	client     redis.UniversalClient
	serializer interfaces.Adapter
	options    Options
}

// NewRedisStore creates a store backed by Redis. Keys are prefixed with "serial:" unless
// WithKeyPrefix says otherwise.
func NewRedisStore(client redis.UniversalClient, s interfaces.Adapter, opts ...Option) (Store, error) {
	if client == nil {
		return nil, ErrNoClient
	}
	if s == nil {
		return nil, ErrNoSerializer
	}
	return &redisStore{
		client:     client,
		serializer: s,
		options:    applyOptions(Options{KeyPrefix: defaultKeyPrefix}, opts...),
	}, nil
}

func (r *redisStore) formatKey(key string) string {
	return r.options.KeyPrefix + key
}

// Put encodes v and stores it with SET
func (r *redisStore) Put(ctx context.Context, key string, v value.Value) error {
	if err := checkCall(ctx, key); err != nil {
		return err
	}

	data, err := r.serializer.Serialize(v)
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.formatKey(key), data, r.options.TTL).Err(); err != nil {
		r.logError("Store put error", key, err)
		return err
	}
	return nil
}

// Get fetches key with GET and decodes it
func (r *redisStore) Get(ctx context.Context, key string) (value.Value, bool, error) {
	if err := checkCall(ctx, key); err != nil {
		return value.Value{}, false, err
	}

	data, err := r.client.Get(ctx, r.formatKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return value.Value{}, false, nil
		}
		r.logError("Store get error", key, err)
		return value.Value{}, false, err
	}

	v, err := r.serializer.Unserialize(data)
	if err != nil {
		r.logError("Store decode error", key, err)
		return value.Value{}, false, err
	}
	return v, true, nil
}

// Delete removes key with DEL
func (r *redisStore) Delete(ctx context.Context, key string) error {
	if err := checkCall(ctx, key); err != nil {
		return err
	}

	if err := r.client.Del(ctx, r.formatKey(key)).Err(); err != nil {
		r.logError("Store delete error", key, err)
		return err
	}
	return nil
}

func (r *redisStore) logError(msg, key string, err error) {
	if r.options.Logger == nil {
		return
	}
	r.options.Logger.Error(msg,
		logger.Field{Key: "key", Value: key},
		logger.Field{Key: "backend", Value: r.serializer.Name()},
		logger.Field{Key: "error", Value: err.Error()})
}
