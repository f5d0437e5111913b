// Package phpserialize implements a backend compatible with PHP's serialize() and
// unserialize() text format.
//
// Supported tokens are N, b, i, d, s, a and O. References (r, R), custom serialization (C)
// and enums (E) are rejected on decode because the value model is a tree.
//
// Lists are written as arrays with integer keys 0..n-1 and come back as lists; any other
// array comes back as a map with its keys in string form. Bytes are written as PHP strings
// and decode as strings. An empty array always decodes as an empty list.
package phpserialize

import (
	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/internal/common"
	"github.com/MichaelAJay/go-serial/value"
)

// Name is the registry name of this backend
const Name = "phpserialize"

// Options configures the PHP serialize backend
type Options struct {
	// MaxDepth bounds array and object nesting on both encode and decode
	MaxDepth int `option:"max_depth"`
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{MaxDepth: common.MaxDepth}
}

// Adapter implements interfaces.Adapter for the PHP serialize format
type Adapter struct {
	opts Options
}

var _ interfaces.Adapter = (*Adapter)(nil)

// Descriptor describes the backend to the registry
func Descriptor() interfaces.Descriptor {
	return interfaces.Descriptor{
		Name:           Name,
		Description:    "PHP serialize() compatible text encoding",
		PreservesClass: true,
		Deterministic:  true,
		New:            New,
	}
}

// New creates an adapter from an option map
func New(raw map[string]any) (interfaces.Adapter, error) {
	opts := DefaultOptions()
	if err := common.DecodeOptions(Name, raw, &opts); err != nil {
		return nil, err
	}
	return NewWithOptions(opts)
}

// NewWithOptions creates an adapter from typed options
func NewWithOptions(opts Options) (*Adapter, error) {
	if opts.MaxDepth <= 0 {
		return nil, interfaces.Errorf(interfaces.KindConfiguration, Name, interfaces.OpCreate,
			"max_depth must be positive, got %d", opts.MaxDepth)
	}
	return &Adapter{opts: opts}, nil
}

// Name returns "phpserialize"
func (a *Adapter) Name() string { return Name }

// Serialize encodes v in PHP serialize() format
func (a *Adapter) Serialize(v value.Value) ([]byte, error) {
	e := &encoder{maxDepth: a.opts.MaxDepth}
	if err := e.encode(v, 0); err != nil {
		return nil, interfaces.Unsupported(Name, err)
	}
	return e.buf, nil
}

// Unserialize decodes exactly one PHP serialized value
func (a *Adapter) Unserialize(data []byte) (value.Value, error) {
	if len(data) == 0 {
		return value.Value{}, interfaces.Malformed(Name, common.ErrEmptyInput)
	}
	d := &decoder{data: data, maxDepth: a.opts.MaxDepth}
	v, err := d.decode(0)
	if err != nil {
		return value.Value{}, interfaces.Malformed(Name, err)
	}
	if d.pos != len(d.data) {
		return value.Value{}, interfaces.Malformed(Name, d.errorf("%d trailing bytes after value", len(d.data)-d.pos))
	}
	return v, nil
}
