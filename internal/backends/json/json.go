// Package json implements the JSON text backend with a choice of encoding engines.
//
// JSON has no class tags, no binary strings and no non-finite numbers. Records are written as
// plain objects and come back as maps; Bytes, NaN and infinities are rejected on encode.
// Object keys are written in sorted order so output is deterministic.
package json

import (
	"bytes"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/internal/common"
	"github.com/MichaelAJay/go-serial/value"
)

// Name is the registry name of this backend
const Name = "json"

// Options configures the JSON backend
type Options struct {
	// Engine selects the JSON library: "go-json" (default), "sonic" or "jsoniter"
	Engine string `option:"engine"`
	// EscapeHTML escapes <, > and & inside strings. Defaults to true.
	EscapeHTML bool `option:"escape_html"`
	// Pretty indents output with two spaces
	Pretty bool `option:"pretty"`
}

// DefaultOptions returns the options used when none are given
func DefaultOptions() Options {
	return Options{
		Engine:     EngineGoJSON,
		EscapeHTML: true,
	}
}

// Adapter implements interfaces.Adapter for JSON
type Adapter struct {
	opts   Options
	engine engine
}

var _ interfaces.Adapter = (*Adapter)(nil)

// Descriptor describes the backend to the registry
func Descriptor() interfaces.Descriptor {
	return interfaces.Descriptor{
		Name:           Name,
		Description:    "JSON text encoding (go-json, sonic or jsoniter engine)",
		PreservesClass: false,
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

// NewWithOptions creates an adapter from typed options. Selecting the sonic engine on a
// platform sonic does not support fails with ExtensionUnavailable.
func NewWithOptions(opts Options) (*Adapter, error) {
	if opts.Engine == "" {
		opts.Engine = EngineGoJSON
	}

	var eng engine
	switch opts.Engine {
	case EngineGoJSON:
		eng = newGoJSONEngine(opts)
	case EngineJSONIter:
		eng = newJSONIterEngine(opts)
	case EngineSonic:
		e, err := newSonicEngine(opts)
		if err != nil {
			return nil, interfaces.NewError(interfaces.KindExtensionUnavailable, Name, interfaces.OpCreate, err)
		}
		eng = e
	default:
		return nil, interfaces.Errorf(interfaces.KindConfiguration, Name, interfaces.OpCreate,
			"unknown engine %q, want one of %s, %s, %s", opts.Engine, EngineGoJSON, EngineSonic, EngineJSONIter)
	}

	return &Adapter{opts: opts, engine: eng}, nil
}

// Name returns "json"
func (a *Adapter) Name() string { return Name }

// Engine returns the configured engine name
func (a *Adapter) Engine() string { return a.opts.Engine }

// Serialize encodes v as a JSON document
func (a *Adapter) Serialize(v value.Value) ([]byte, error) {
	tree, err := toTree(v, 0)
	if err != nil {
		return nil, interfaces.Unsupported(Name, err)
	}
	out, err := a.engine.marshal(tree)
	if err != nil {
		return nil, interfaces.Unsupported(Name, err)
	}
	return out, nil
}

// Unserialize decodes exactly one JSON document
func (a *Adapter) Unserialize(data []byte) (value.Value, error) {
	if len(data) == 0 {
		return value.Value{}, interfaces.Malformed(Name, common.ErrEmptyInput)
	}
	// raw control characters are never valid JSON text, and NUL doubles as an end marker
	// inside some engines
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return value.Value{}, interfaces.Malformed(Name, errors.Newf("NUL byte at offset %d", i))
	}
	if !a.engine.valid(data) {
		var discard any
		if err := a.engine.unmarshal(data, &discard); err != nil {
			return value.Value{}, interfaces.Malformed(Name, err)
		}
		return value.Value{}, interfaces.Malformed(Name, errors.New("invalid JSON document"))
	}

	var tree any
	if err := a.engine.unmarshal(data, &tree); err != nil {
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
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.Newf("JSON cannot represent %v", f)
		}
		return f, nil
	case value.String:
		s, _ := v.Str()
		return s, nil
	case value.Bytes:
		return nil, errors.New("JSON cannot represent binary data")
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
	case value.Map, value.Record:
		entries := v.Entries()
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
	return nil, errors.Newf("unknown kind %s", v.Kind())
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
	case string:
		return value.StringValue(x), nil
	case float64:
		return value.FloatValue(x), nil
	case int64:
		return value.IntValue(x), nil
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
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]value.Entry, len(keys))
		for i, k := range keys {
			v, err := fromTree(x[k], depth+1)
			if err != nil {
				return value.Value{}, err
			}
			entries[i] = value.Entry{Key: k, Value: v}
		}
		return value.MapValue(entries...), nil
	}

	// Each engine has its own number literal type; all of them are string kinds.
	if rv := reflect.ValueOf(t); rv.Kind() == reflect.String {
		return parseNumber(rv.String())
	}
	return value.Value{}, errors.Newf("unexpected decoded type %T", t)
}

// parseNumber keeps integer literals exact. Literals with a fraction or exponent, and
// integers beyond the int64 range, become floats.
func parseNumber(lit string) (value.Value, error) {
	if !strings.ContainsAny(lit, ".eE") {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return value.IntValue(i), nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return value.Value{}, errors.Wrapf(err, "number literal %q", lit)
	}
	return value.FloatValue(f), nil
}
