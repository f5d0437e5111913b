package store

import (
	"context"
	"time"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/internal/sync"
	"github.com/MichaelAJay/go-serial/value"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// memoryStore keeps encoded values in a map
type memoryStore struct {
	serializer interfaces.Adapter
	options    Options
	entries    map[string]memoryEntry
	mu         sync.RWMutex
}

// NewMemoryStore creates an in-process store that keeps the encoded bytes of each value
func NewMemoryStore(s interfaces.Adapter, opts ...Option) (Store, error) {
	if s == nil {
		return nil, ErrNoSerializer
	}
	return &memoryStore{
		serializer: s,
		options:    applyOptions(Options{}, opts...),
		entries:    make(map[string]memoryEntry),
	}, nil
}

// Put encodes v and stores it
func (m *memoryStore) Put(ctx context.Context, key string, v value.Value) error {
	if err := checkCall(ctx, key); err != nil {
		return err
	}

	data, err := m.serializer.Serialize(v)
	if err != nil {
		return err
	}

	entry := memoryEntry{data: data}
	if m.options.TTL > 0 {
		entry.expiresAt = time.Now().Add(m.options.TTL)
	}

	m.mu.Lock()
	m.entries[m.options.KeyPrefix+key] = entry
	m.mu.Unlock()
	return nil
}

// Get decodes the value stored under key
func (m *memoryStore) Get(ctx context.Context, key string) (value.Value, bool, error) {
	if err := checkCall(ctx, key); err != nil {
		return value.Value{}, false, err
	}

	m.mu.RLock()
	entry, ok := m.entries[m.options.KeyPrefix+key]
	m.mu.RUnlock()

	if !ok {
		return value.Value{}, false, nil
	}
	if entry.expired(time.Now()) {
		m.mu.Lock()
		// re-check so a concurrent Put is not lost
		if current, ok := m.entries[m.options.KeyPrefix+key]; ok && current.expired(time.Now()) {
			delete(m.entries, m.options.KeyPrefix+key)
		}
		m.mu.Unlock()
		return value.Value{}, false, nil
	}

	v, err := m.serializer.Unserialize(entry.data)
	if err != nil {
		return value.Value{}, false, err
	}
	return v, true, nil
}

// Delete removes key
func (m *memoryStore) Delete(ctx context.Context, key string) error {
	if err := checkCall(ctx, key); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.entries, m.options.KeyPrefix+key)
	m.mu.Unlock()
	return nil
}
