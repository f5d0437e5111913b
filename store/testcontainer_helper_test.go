package store_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

// defaultRedisImage is the Redis image started for container tests
const defaultRedisImage = "redis:7.2"

// redisContainer is a throwaway Redis server and a client connected to it
type redisContainer struct {
	Container *tcredis.RedisContainer
	Client    *redis.Client
}

// startRedisContainer starts a Redis container for the test and registers its cleanup.
// The test is skipped in -short mode and when no container runtime is available.
func startRedisContainer(t *testing.T, customizers ...testcontainers.ContainerCustomizer) *redisContainer {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}

	ctx := context.Background()
	opts := append([]testcontainers.ContainerCustomizer{tcredis.WithLogLevel(tcredis.LogLevelNotice)}, customizers...)

	container, err := tcredis.Run(ctx, defaultRedisImage, opts...)
	if err != nil {
		t.Skipf("Skipping test: Cannot start Redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("Warning: failed to terminate Redis container: %v", err)
		}
	})

	connectionString, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	t.Logf("Redis container started, connection: %s", maskConnectionString(connectionString))

	options, err := redis.ParseURL(connectionString)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}
	client := redis.NewClient(options)
	t.Cleanup(func() { client.Close() })

	if err := pingWithRetry(ctx, client, 3); err != nil {
		t.Fatalf("Failed to connect to Redis container: %v", err)
	}

	return &redisContainer{Container: container, Client: client}
}

// pingWithRetry pings Redis with a growing backoff
func pingWithRetry(ctx context.Context, client *redis.Client, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		ctxTimeout, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := client.Ping(ctxTimeout).Err()
		cancel()

		if err == nil {
			return nil
		}

		lastErr = err
		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
		}
	}
	return fmt.Errorf("failed to connect after %d retries: %w", maxRetries, lastErr)
}

// maskConnectionString hides credentials in a redis:// URL
func maskConnectionString(connStr string) string {
	if i := strings.LastIndex(connStr, "@"); i >= 0 {
		return "redis://***@" + connStr[i+1:]
	}
	return connStr
}
