package interfaces

import (
	"github.com/MichaelAJay/go-serial/value"
)

// Adapter defines the contract every serializer backend implements
type Adapter interface {
	// Serialize encodes v into the backend's wire format
	Serialize(v value.Value) ([]byte, error)

	// Unserialize decodes data produced by Serialize
	Unserialize(data []byte) (value.Value, error)

	// Name returns the backend identifier used in errors, logs and metrics
	Name() string
}

// Constructor builds an adapter from options already checked by the registry.
// raw holds the caller's option map; backends decode it into their own options struct.
type Constructor func(raw map[string]any) (Adapter, error)

// Descriptor describes a backend to the registry
type Descriptor struct {
	// Name is the registry key, e.g. "msgpack"
	Name string

	// Description is a one-line human readable summary
	Description string

	// PreservesClass reports whether records keep their class tag across a round-trip.
	// Backends that do not return maps in place of records.
	PreservesClass bool

	// Deterministic reports whether equal values always encode to identical bytes
	Deterministic bool

	// Check reports whether the codec support the backend needs is present in this build.
	// A nil Check means the backend is always available.
	Check func() error

	// New constructs an adapter instance
	New Constructor
}

// Available runs Check
func (d Descriptor) Available() error {
	if d.Check == nil {
		return nil
	}
	return d.Check()
}

// Middleware wraps an adapter with cross-cutting behavior such as logging or metrics
type Middleware func(next Adapter) Adapter

// Creator resolves adapters by backend name
type Creator interface {
	Create(name string, options map[string]any) (Adapter, error)
}
