// Package serial provides a uniform serialize/unserialize facade over interchangeable
// encoding backends: MessagePack, JSON, CBOR, PHP serialize, gob and protobuf.
//
// A Serializer is resolved by backend name through a Registry and forwards every call to
// the backend adapter unchanged. All failures are *Error values classified by Kind.
package serial

import (
	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/middleware"
	"github.com/MichaelAJay/go-serial/value"
)

// Serializer is the single entry point dispatching to one configured backend.
// It is safe for concurrent use when the underlying adapter is.
type Serializer struct {
	adapter Adapter
	backend string
}

var _ Adapter = (*Serializer)(nil)

// New resolves the named backend and returns a Serializer bound to it.
//
// The backend comes from the registry given with WithRegistry, or DefaultRegistry.
// Options given with WithOptions are handed to the backend constructor; unknown keys fail
// with ErrConfiguration.
func New(name string, opts ...Option) (*Serializer, error) {
	o := interfaces.Apply(opts...)

	var registry Creator = DefaultRegistry
	if o.Registry != nil {
		registry = o.Registry
	}

	adapter, err := registry.Create(name, o.BackendOptions)
	if err != nil {
		return nil, interfaces.Normalize(name, interfaces.OpCreate, err)
	}
	return wrap(adapter, o), nil
}

// Wrap returns a Serializer around an existing adapter. Registry and backend options
// are ignored; logging, metrics and middleware options apply.
func Wrap(adapter Adapter, opts ...Option) *Serializer {
	return wrap(adapter, interfaces.Apply(opts...))
}

func wrap(adapter Adapter, o *Options) *Serializer {
	name := adapter.Name()

	// user middleware is outermost, then metrics, then logging closest to the backend
	stack := append([]Middleware{}, o.Middleware...)
	if o.Metrics != nil {
		stack = append(stack, middleware.NewMetricsMiddleware(o.Metrics))
	}
	if o.Logger != nil {
		stack = append(stack, middleware.NewLoggingMiddleware(o.Logger))
	}

	return &Serializer{
		adapter: middleware.Chain(adapter, stack...),
		backend: name,
	}
}

// Name returns the backend name
func (s *Serializer) Name() string { return s.backend }

// Backend returns the backend name
func (s *Serializer) Backend() string { return s.backend }

// Adapter returns the adapter the Serializer dispatches to, including middleware
func (s *Serializer) Adapter() Adapter { return s.adapter }

// Serialize encodes v with the active backend. The backend's error is returned as-is.
func (s *Serializer) Serialize(v value.Value) ([]byte, error) {
	return s.adapter.Serialize(v)
}

// Unserialize decodes data with the active backend. The backend's error is returned as-is.
func (s *Serializer) Unserialize(data []byte) (value.Value, error) {
	return s.adapter.Unserialize(data)
}

// SerializeAny converts a native Go value with value.From and serializes it.
// Go values with no Value representation fail with ErrUnsupportedValue.
func (s *Serializer) SerializeAny(x any) ([]byte, error) {
	v, err := value.From(x)
	if err != nil {
		return nil, interfaces.Unsupported(s.backend, err)
	}
	return s.adapter.Serialize(v)
}

// UnserializeInto decodes data and stores the result in out, which must be a non-nil
// pointer. A decoded value that does not fit out fails with ErrUnsupportedValue.
func (s *Serializer) UnserializeInto(data []byte, out any) error {
	v, err := s.adapter.Unserialize(data)
	if err != nil {
		return err
	}
	if err := value.Decode(v, out); err != nil {
		return interfaces.NewError(interfaces.KindUnsupportedValue, s.backend, interfaces.OpUnserialize, err)
	}
	return nil
}
