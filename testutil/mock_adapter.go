package testutil

import (
	"strconv"
	"sync"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/value"
)

// MockAdapter is an in-memory interfaces.Adapter for tests.
//
// By default Serialize hands out opaque tokens and Unserialize resolves them, so values
// round-trip exactly. The callbacks override either side.
type MockAdapter struct {
	name                  string
	values                map[string]value.Value
	serializeCalls        int
	unserializeCalls      int
	OnSerializeCallback   func(v value.Value) ([]byte, error)
	OnUnserializeCallback func(data []byte) (value.Value, error)
	mu                    sync.RWMutex
}

var _ interfaces.Adapter = (*MockAdapter)(nil)

// NewMockAdapter creates a mock adapter reporting name
func NewMockAdapter(name string) *MockAdapter {
	return &MockAdapter{
		name:   name,
		values: make(map[string]value.Value),
	}
}

// Name implements Adapter.
func (m *MockAdapter) Name() string {
	return m.name
}

// Serialize implements Adapter.
func (m *MockAdapter) Serialize(v value.Value) ([]byte, error) {
	m.mu.Lock()
	m.serializeCalls++
	m.mu.Unlock()

	if m.OnSerializeCallback != nil {
		return m.OnSerializeCallback(v)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	token := "mock:" + strconv.Itoa(len(m.values))
	m.values[token] = v
	return []byte(token), nil
}

// Unserialize implements Adapter.
func (m *MockAdapter) Unserialize(data []byte) (value.Value, error) {
	m.mu.Lock()
	m.unserializeCalls++
	m.mu.Unlock()

	if m.OnUnserializeCallback != nil {
		return m.OnUnserializeCallback(data)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[string(data)]
	if !ok {
		return value.Value{}, interfaces.Errorf(interfaces.KindMalformedInput, m.name, interfaces.OpUnserialize,
			"unknown token %q", data)
	}
	return v, nil
}

// SerializeCalls returns how many times Serialize was called
func (m *MockAdapter) SerializeCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.serializeCalls
}

// UnserializeCalls returns how many times Unserialize was called
func (m *MockAdapter) UnserializeCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unserializeCalls
}

// Descriptor returns a registry descriptor that always yields this adapter
func (m *MockAdapter) Descriptor() interfaces.Descriptor {
	return interfaces.Descriptor{
		Name:        m.name,
		Description: "mock adapter",
		New: func(map[string]any) (interfaces.Adapter, error) {
			return m, nil
		},
	}
}
