package store

import (
	"os"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// Default configuration values
const (
	defaultRedisAddr     = "127.0.0.1:6379"
	defaultRedisPassword = ""
	defaultRedisDB       = 0
	defaultRedisPoolSize = 10
)

// Environment variable names
const (
	envRedisAddr     = "REDIS_ADDR"
	envRedisPassword = "REDIS_PASSWORD"
	envRedisDB       = "REDIS_DB"
	envRedisPoolSize = "REDIS_POOL_SIZE"
)

// RedisOptions represents connection options for a Redis store
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	PoolSize int
}

// RedisClientFactory builds the client used by NewRedisClient. Tests may replace it.
var RedisClientFactory = redis.NewClient

// LoadRedisOptionsFromEnv reads REDIS_ADDR, REDIS_PASSWORD, REDIS_DB and REDIS_POOL_SIZE.
// An unset variable, or a number that does not parse, falls back to the package default
// (127.0.0.1:6379, no password, DB 0, pool of 10).
func LoadRedisOptionsFromEnv() *RedisOptions {
	return &RedisOptions{
		Address:  envOr(envRedisAddr, defaultRedisAddr, asString),
		Password: envOr(envRedisPassword, defaultRedisPassword, asString),
		DB:       envOr(envRedisDB, defaultRedisDB, strconv.Atoi),
		PoolSize: envOr(envRedisPoolSize, defaultRedisPoolSize, strconv.Atoi),
	}
}

// NewRedisClient creates a client from options. nil options are loaded from the environment.
func NewRedisClient(options *RedisOptions) *redis.Client {
	if options == nil {
		options = LoadRedisOptionsFromEnv()
	}
	return RedisClientFactory(&redis.Options{
		Addr:     options.Address,
		Password: options.Password,
		DB:       options.DB,
		PoolSize: options.PoolSize,
	})
}

// envOr parses the variable named key. A set but empty string is kept as is.
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func asString(s string) (string, error) { return s, nil }
