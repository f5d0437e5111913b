package serial

import (
	"sort"

	"github.com/samber/lo"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/internal/sync"
)

// Registry maps backend names to descriptors and builds adapter instances
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]Descriptor
}

var _ Creator = (*Registry)(nil)

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{descriptors: make(map[string]Descriptor)}
}

// Register adds a backend. Empty names, nil constructors and duplicate names are rejected
// with a configuration error.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return interfaces.Errorf(interfaces.KindConfiguration, "registry", interfaces.OpCreate, "backend name is empty")
	}
	if d.New == nil {
		return interfaces.Errorf(interfaces.KindConfiguration, d.Name, interfaces.OpCreate, "backend has no constructor")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.descriptors[d.Name]; exists {
		return interfaces.Errorf(interfaces.KindConfiguration, d.Name, interfaces.OpCreate, "backend %q already registered", d.Name)
	}
	r.descriptors[d.Name] = d
	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Create builds an adapter for the named backend.
//
// Unknown names and rejected options fail with ErrConfiguration. A backend whose Check
// fails is reported with ErrExtensionUnavailable before its constructor runs. On error no
// adapter is returned.
func (r *Registry) Create(name string, options map[string]any) (Adapter, error) {
	d, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	if err := d.Available(); err != nil {
		return nil, interfaces.NewError(interfaces.KindExtensionUnavailable, name, interfaces.OpCreate, err)
	}

	adapter, err := d.New(options)
	if err != nil {
		return nil, interfaces.Normalize(name, interfaces.OpCreate, err)
	}
	if adapter == nil {
		return nil, interfaces.Errorf(interfaces.KindConfiguration, name, interfaces.OpCreate, "constructor returned no adapter")
	}
	return adapter, nil
}

// Available reports whether the named backend can be constructed in this build, without
// constructing it
func (r *Registry) Available(name string) error {
	d, err := r.lookup(name)
	if err != nil {
		return err
	}
	if err := d.Available(); err != nil {
		return interfaces.NewError(interfaces.KindExtensionUnavailable, name, interfaces.OpCreate, err)
	}
	return nil
}

// Describe returns the descriptor registered under name
func (r *Registry) Describe(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.descriptors[name]
	return d, ok
}

// Names returns the registered backend names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := lo.Keys(r.descriptors)
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// AvailableNames returns the sorted names of backends whose Check passes
func (r *Registry) AvailableNames() []string {
	return lo.Filter(r.Names(), func(name string, _ int) bool {
		return r.Available(name) == nil
	})
}

func (r *Registry) lookup(name string) (Descriptor, error) {
	r.mu.RLock()
	d, ok := r.descriptors[name]
	r.mu.RUnlock()

	if !ok {
		return Descriptor{}, interfaces.Errorf(interfaces.KindConfiguration, name, interfaces.OpCreate,
			"unknown backend %q", name)
	}
	return d, nil
}
