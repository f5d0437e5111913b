// Package cbor implements the compact binary backend with fxamacker/cbor.
//
// Encoding follows the RFC 8949 core deterministic profile. Records are wrapped in tag 27
// (generic serialised object) as [class, fields], so class identity is preserved. Map entries
// come back sorted by key rather than in insertion order.
package cbor

import (
	"math"
	"reflect"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/fxamacker/cbor/v2"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/internal/common"
	"github.com/MichaelAJay/go-serial/value"
)

// Name is the registry name of this backend
const Name = "cbor"

// RecordTag is the CBOR tag number used for records
const RecordTag = 27

// A record costs three CBOR levels (tag, array, map) for one Value level. The decoder allows
// enough for records all the way down and leaves the Value depth limit to fromTree.
const maxNestedLevels = 3*common.MaxDepth + 4

// Options configures the CBOR backend
type Options struct {
	// Compress wraps the payload in a zstd frame
	Compress bool `option:"compress"`
}

// Adapter implements interfaces.Adapter for CBOR
type Adapter struct {
	enc        cbor.EncMode
	dec        cbor.DecMode
	compressor *common.Compressor
}

var _ interfaces.Adapter = (*Adapter)(nil)

// Descriptor describes the backend to the registry
func Descriptor() interfaces.Descriptor {
	return interfaces.Descriptor{
		Name:           Name,
		Description:    "CBOR compact binary encoding (RFC 8949, core deterministic)",
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
	enc, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, interfaces.NewError(interfaces.KindConfiguration, Name, interfaces.OpCreate, err)
	}
	dec, err := cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels: maxNestedLevels,
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		return nil, interfaces.NewError(interfaces.KindConfiguration, Name, interfaces.OpCreate, err)
	}

	a := &Adapter{enc: enc, dec: dec}
	if opts.Compress {
		c, err := common.NewCompressor()
		if err != nil {
			return nil, interfaces.NewError(interfaces.KindConfiguration, Name, interfaces.OpCreate, err)
		}
		a.compressor = c
	}
	return a, nil
}

// Name returns "cbor"
func (a *Adapter) Name() string { return Name }

// Serialize encodes v as CBOR
func (a *Adapter) Serialize(v value.Value) ([]byte, error) {
	tree, err := toTree(v, 0)
	if err != nil {
		return nil, interfaces.Unsupported(Name, err)
	}
	out, err := a.enc.Marshal(tree)
	if err != nil {
		return nil, interfaces.Unsupported(Name, err)
	}
	if a.compressor != nil {
		out = a.compressor.Compress(out)
	}
	return out, nil
}

// Unserialize decodes exactly one CBOR data item
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

	var tree any
	if err := a.dec.Unmarshal(data, &tree); err != nil {
		return value.Value{}, interfaces.Malformed(Name, err)
	}
	v, err := fromTree(tree, 0)
	if err != nil {
		return value.Value{}, interfaces.Malformed(Name, err)
	}
	return v, nil
}

func toTree(v value.Value, depth int) (any, error) {
	if depth > common.MaxDepth {
		return nil, common.ErrTooDeep
	}

	switch v.Kind() {
	case value.Null:
		return nil, nil
	case value.Bool:
		b, _ := v.Bool()
		return b, nil
	case value.Int:
		i, _ := v.Int()
		return i, nil
	case value.Float:
		f, _ := v.Float()
		return f, nil
	case value.String:
		s, _ := v.Str()
		return s, nil
	case value.Bytes:
		b, _ := v.Raw()
		return b, nil
	case value.List:
		items := v.Items()
		out := make([]any, len(items))
		for i, item := range items {
			t, err := toTree(item, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	case value.Map:
		return entriesTree(v.Entries(), depth)
	case value.Record:
		fields, err := entriesTree(v.Entries(), depth)
		if err != nil {
			return nil, err
		}
		return cbor.Tag{Number: RecordTag, Content: []any{v.Class(), fields}}, nil
	}
	return nil, errors.Newf("unknown kind %s", v.Kind())
}

func entriesTree(entries []value.Entry, depth int) (map[string]any, error) {
	out := make(map[string]any, len(entries))
	for _, e := range entries {
		t, err := toTree(e.Value, depth+1)
		if err != nil {
			return nil, err
		}
		out[e.Key] = t
	}
	return out, nil
}

func fromTree(t any, depth int) (value.Value, error) {
	if err := common.CheckDepth(depth, common.MaxDepth); err != nil {
		return value.Value{}, err
	}

	switch x := t.(type) {
	case nil:
		return value.NullValue(), nil
	case bool:
		return value.BoolValue(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return value.Value{}, errors.Newf("integer %d overflows int64", x)
		}
		return value.IntValue(int64(x)), nil
	case int64:
		return value.IntValue(x), nil
	case float64:
		return value.FloatValue(x), nil
	case string:
		return value.StringValue(x), nil
	case []byte:
		return value.BytesValue(x), nil
	case []any:
		items := make([]value.Value, len(x))
		for i, item := range x {
			v, err := fromTree(item, depth+1)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = v
		}
		return value.ListValue(items...), nil
	case map[string]any:
		entries, err := entriesFromTree(x, depth)
		if err != nil {
			return value.Value{}, err
		}
		return value.MapValue(entries...), nil
	case cbor.Tag:
		return recordFromTag(x, depth)
	}
	return value.Value{}, errors.Newf("unsupported CBOR item %T", t)
}

func entriesFromTree(m map[string]any, depth int) ([]value.Entry, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]value.Entry, len(keys))
	for i, k := range keys {
		v, err := fromTree(m[k], depth+1)
		if err != nil {
			return nil, err
		}
		entries[i] = value.Entry{Key: k, Value: v}
	}
	return entries, nil
}

func recordFromTag(tag cbor.Tag, depth int) (value.Value, error) {
	if tag.Number != RecordTag {
		return value.Value{}, errors.Newf("unsupported tag %d", tag.Number)
	}
	body, ok := tag.Content.([]any)
	if !ok || len(body) != 2 {
		return value.Value{}, errors.New("record tag content must be [class, fields]")
	}
	class, ok := body[0].(string)
	if !ok {
		return value.Value{}, errors.Newf("record class is %T, want string", body[0])
	}
	fields, ok := body[1].(map[string]any)
	if !ok {
		return value.Value{}, errors.Newf("record fields are %T, want map", body[1])
	}
	entries, err := entriesFromTree(fields, depth)
	if err != nil {
		return value.Value{}, err
	}
	return value.RecordValue(class, entries...), nil
}
