// Package gob implements the Go-native binary backend on top of go-serializer's gob
// serializer.
//
// The value tree is mapped onto a recursive node struct so gob never has to register
// interface types. Unserialize accepts only the canonical encoding Serialize produces:
// the decoded tree is re-encoded and must reproduce the input exactly, which also rejects
// trailing bytes.
package gob

import (
	"bytes"

	"github.com/MichaelAJay/go-serializer"
	"github.com/cockroachdb/errors"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/internal/common"
	"github.com/MichaelAJay/go-serial/value"
)

// Name is the registry name of this backend
const Name = "gob"

// Options configures the gob backend
type Options struct {
	// Compress wraps the payload in a zstd frame
	Compress bool `option:"compress"`
}

// node is the wire form of a value.Value
type node struct {
	Kind  uint8
	Bool  bool
	Int   int64
	Float float64
	Str   string
	Raw   []byte
	Items []node
	Keys  []string
}

// Adapter implements interfaces.Adapter for gob
type Adapter struct {
	codec      serializer.Serializer
	compressor *common.Compressor
}

var _ interfaces.Adapter = (*Adapter)(nil)

// Descriptor describes the backend to the registry
func Descriptor() interfaces.Descriptor {
	return interfaces.Descriptor{
		Name:           Name,
		Description:    "Go gob binary encoding via go-serializer",
		PreservesClass: true,
		Deterministic:  true,
		New:            New,
	}
}

// New creates an adapter from an option map
func New(raw map[string]any) (interfaces.Adapter, error) {
	var opts Options
	if err := common.DecodeOptions(Name, raw, &opts); err != nil {
		return nil, err
	}
	return NewWithOptions(opts)
}

// NewWithOptions creates an adapter from typed options
func NewWithOptions(opts Options) (*Adapter, error) {
	codec, err := common.GetSerializer(serializer.Binary)
	if err != nil {
		return nil, interfaces.NewError(interfaces.KindExtensionUnavailable, Name, interfaces.OpCreate, err)
	}
	a := &Adapter{codec: codec}
	if opts.Compress {
		c, err := common.NewCompressor()
		if err != nil {
			return nil, interfaces.NewError(interfaces.KindConfiguration, Name, interfaces.OpCreate, err)
		}
		a.compressor = c
	}
	return a, nil
}

// Name returns "gob"
func (a *Adapter) Name() string { return Name }

// Serialize encodes v with gob
func (a *Adapter) Serialize(v value.Value) ([]byte, error) {
	n, err := toNode(v, 0)
	if err != nil {
		return nil, interfaces.Unsupported(Name, err)
	}
	out, err := a.codec.Serialize(n)
	if err != nil {
		return nil, interfaces.Unsupported(Name, err)
	}
	if a.compressor != nil {
		out = a.compressor.Compress(out)
	}
	return out, nil
}

// Unserialize decodes a gob payload produced by Serialize
func (a *Adapter) Unserialize(data []byte) (value.Value, error) {
	if len(data) == 0 {
		return value.Value{}, interfaces.Malformed(Name, common.ErrEmptyInput)
	}
	if a.compressor != nil {
		plain, err := a.compressor.Decompress(data)
		if err != nil {
			return value.Value{}, interfaces.Malformed(Name, err)
		}
		data = plain
	}

	var n node
	if err := a.codec.Deserialize(data, &n); err != nil {
		return value.Value{}, interfaces.Malformed(Name, err)
	}
	v, err := fromNode(n, 0)
	if err != nil {
		return value.Value{}, interfaces.Malformed(Name, err)
	}

	canonical, err := a.codec.Serialize(n)
	if err != nil {
		return value.Value{}, interfaces.Malformed(Name, err)
	}
	if !bytes.Equal(canonical, data) {
		if len(data) > len(canonical) && bytes.HasPrefix(data, canonical) {
			return value.Value{}, interfaces.Malformed(Name, errors.Newf("%d trailing bytes after value", len(data)-len(canonical)))
		}
		return value.Value{}, interfaces.Malformed(Name, errors.New("payload is not in canonical form"))
	}
	return v, nil
}

func toNode(v value.Value, depth int) (node, error) {
	if depth > common.MaxDepth {
		return node{}, common.ErrTooDeep
	}

	n := node{Kind: uint8(v.Kind())}
	switch v.Kind() {
	case value.Null:
	case value.Bool:
		n.Bool, _ = v.Bool()
	case value.Int:
		n.Int, _ = v.Int()
	case value.Float:
		n.Float, _ = v.Float()
	case value.String:
		n.Str, _ = v.Str()
	case value.Bytes:
		n.Raw, _ = v.Raw()
	case value.List:
		items := v.Items()
		n.Items = make([]node, len(items))
		for i, item := range items {
			child, err := toNode(item, depth+1)
			if err != nil {
				return node{}, err
			}
			n.Items[i] = child
		}
	case value.Map, value.Record:
		if v.Kind() == value.Record {
			n.Str = v.Class()
		}
		entries := v.Entries()
		n.Keys = make([]string, len(entries))
		n.Items = make([]node, len(entries))
		for i, e := range entries {
			child, err := toNode(e.Value, depth+1)
			if err != nil {
				return node{}, err
			}
			n.Keys[i] = e.Key
			n.Items[i] = child
		}
	default:
		return node{}, errors.Newf("unknown kind %s", v.Kind())
	}
	return n, nil
}

func fromNode(n node, depth int) (value.Value, error) {
	if err := common.CheckDepth(depth, common.MaxDepth); err != nil {
		return value.Value{}, err
	}

	switch value.Kind(n.Kind) {
	case value.Null:
		return value.NullValue(), nil
	case value.Bool:
		return value.BoolValue(n.Bool), nil
	case value.Int:
		return value.IntValue(n.Int), nil
	case value.Float:
		return value.FloatValue(n.Float), nil
	case value.String:
		return value.StringValue(n.Str), nil
	case value.Bytes:
		return value.BytesValue(n.Raw), nil
	case value.List:
		items := make([]value.Value, len(n.Items))
		for i, child := range n.Items {
			item, err := fromNode(child, depth+1)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = item
		}
		return value.ListValue(items...), nil
	case value.Map, value.Record:
		if len(n.Keys) != len(n.Items) {
			return value.Value{}, errors.Newf("%d keys for %d values", len(n.Keys), len(n.Items))
		}
		entries := make([]value.Entry, len(n.Keys))
		seen := make(map[string]struct{}, len(n.Keys))
		for i, key := range n.Keys {
			if _, dup := seen[key]; dup {
				return value.Value{}, errors.Newf("duplicate key %q", key)
			}
			seen[key] = struct{}{}
			item, err := fromNode(n.Items[i], depth+1)
			if err != nil {
				return value.Value{}, err
			}
			entries[i] = value.Entry{Key: key, Value: item}
		}
		if value.Kind(n.Kind) == value.Record {
			return value.RecordValue(n.Str, entries...), nil
		}
		return value.MapValue(entries...), nil
	}
	return value.Value{}, errors.Newf("unknown kind tag %d", n.Kind)
}
