package serial

import (
	"github.com/MichaelAJay/go-serial/internal/sync"
)

// Manager defines the interface for managing named serializer instances
type Manager interface {
	// Get returns the serializer for the named backend, creating it on first use.
	// Options only take effect when the serializer is created.
	Get(name string, options ...Option) (*Serializer, error)

	// RegisterBackend adds a backend to the manager's registry
	RegisterBackend(d Descriptor) error

	// Serializers returns all serializer instances created so far
	Serializers() map[string]*Serializer

	// Reset drops every cached serializer instance
	Reset()
}

// manager implements the Manager interface
type manager struct {
	registry    *Registry
	base        []Option
	serializers map[string]*Serializer
	mu          sync.RWMutex
}

// NewManager creates a new serializer manager.
// The manager owns a registry preloaded with the built-in backends, so RegisterBackend does
// not affect DefaultRegistry. options are applied to every serializer it creates, before the
// options given to Get.
func NewManager(options ...Option) Manager {
	return &manager{
		registry:    newDefaultRegistry(),
		base:        options,
		serializers: make(map[string]*Serializer),
	}
}

// Get returns a named serializer instance with specified options
func (m *manager) Get(name string, options ...Option) (*Serializer, error) {
	m.mu.RLock()
	s, exists := m.serializers[name]
	m.mu.RUnlock()

	if exists {
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if s, exists = m.serializers[name]; exists {
		return s, nil
	}

	opts := make([]Option, 0, len(m.base)+len(options)+1)
	opts = append(opts, WithRegistry(m.registry))
	opts = append(opts, m.base...)
	opts = append(opts, options...)

	s, err := New(name, opts...)
	if err != nil {
		return nil, err
	}

	m.serializers[name] = s
	return s, nil
}

// RegisterBackend registers a new backend
func (m *manager) RegisterBackend(d Descriptor) error {
	return m.registry.Register(d)
}

// Serializers returns all created serializer instances
func (m *manager) Serializers() map[string]*Serializer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	serializers := make(map[string]*Serializer, len(m.serializers))
	for k, v := range m.serializers {
		serializers[k] = v
	}
	return serializers
}

// Reset drops all cached instances
func (m *manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name := range m.serializers {
		delete(m.serializers, name)
	}
}
