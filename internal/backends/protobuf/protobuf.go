// Package protobuf implements a backend that encodes values as google.protobuf.Value
// messages from the well-known struct types.
//
// structpb has a single number type (double), no bytes and no class tags. Integers beyond
// 2^53 and non-finite floats cannot be carried and are rejected, as are Bytes. Records
// travel as plain structs and come back as maps. Integral numbers decode as Int.
package protobuf

import (
	"math"
	"sort"

	"github.com/cockroachdb/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/internal/common"
	"github.com/MichaelAJay/go-serial/value"
)

// Name is the registry name of this backend
const Name = "protobuf"

// maxSafeInt is the largest integer a double holds exactly
const maxSafeInt = 1 << 53

// Options configures the protobuf backend. It currently has no settings.
type Options struct{}

// Adapter implements interfaces.Adapter for protobuf
type Adapter struct {
	marshal   proto.MarshalOptions
	unmarshal proto.UnmarshalOptions
}

var _ interfaces.Adapter = (*Adapter)(nil)

// Descriptor describes the backend to the registry
func Descriptor() interfaces.Descriptor {
	return interfaces.Descriptor{
		Name:           Name,
		Description:    "Protocol Buffers google.protobuf.Value encoding",
		PreservesClass: false,
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
func NewWithOptions(Options) (*Adapter, error) {
	return &Adapter{
		marshal: proto.MarshalOptions{Deterministic: true},
		unmarshal: proto.UnmarshalOptions{
			DiscardUnknown: false,
			RecursionLimit: common.MaxDepth * 2,
		},
	}, nil
}

// Name returns "protobuf"
func (a *Adapter) Name() string { return Name }

// Serialize encodes v as a google.protobuf.Value
func (a *Adapter) Serialize(v value.Value) ([]byte, error) {
	msg, err := toProto(v, 0)
	if err != nil {
		return nil, interfaces.Unsupported(Name, err)
	}
	out, err := a.marshal.Marshal(msg)
	if err != nil {
		return nil, interfaces.Unsupported(Name, err)
	}
	return out, nil
}

// Unserialize decodes a google.protobuf.Value message
func (a *Adapter) Unserialize(data []byte) (value.Value, error) {
	if len(data) == 0 {
		return value.Value{}, interfaces.Malformed(Name, common.ErrEmptyInput)
	}
	msg := &structpb.Value{}
	if err := a.unmarshal.Unmarshal(data, msg); err != nil {
		return value.Value{}, interfaces.Malformed(Name, err)
	}
	if len(msg.ProtoReflect().GetUnknown()) > 0 {
		return value.Value{}, interfaces.Malformed(Name, errors.New("message carries unknown fields"))
	}
	v, err := fromProto(msg, 0)
	if err != nil {
		return value.Value{}, interfaces.Malformed(Name, err)
	}
	return v, nil
}

func toProto(v value.Value, depth int) (*structpb.Value, error) {
	if depth > common.MaxDepth {
		return nil, common.ErrTooDeep
	}

	switch v.Kind() {
	case value.Null:
		return structpb.NewNullValue(), nil
	case value.Bool:
		b, _ := v.Bool()
		return structpb.NewBoolValue(b), nil
	case value.Int:
		i, _ := v.Int()
		if i > maxSafeInt || i < -maxSafeInt {
			return nil, errors.Newf("integer %d cannot be represented exactly as a double", i)
		}
		return structpb.NewNumberValue(float64(i)), nil
	case value.Float:
		f, _ := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.Newf("protobuf Value cannot represent %v", f)
		}
		return structpb.NewNumberValue(f), nil
	case value.String:
		s, _ := v.Str()
		return structpb.NewStringValue(s), nil
	case value.Bytes:
		return nil, errors.New("protobuf Value cannot represent binary data")
	case value.List:
		items := v.Items()
		list := &structpb.ListValue{Values: make([]*structpb.Value, len(items))}
		for i, item := range items {
			pv, err := toProto(item, depth+1)
			if err != nil {
				return nil, err
			}
			list.Values[i] = pv
		}
		return structpb.NewListValue(list), nil
	case value.Map, value.Record:
		entries := v.Entries()
		st := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(entries))}
		for _, e := range entries {
			pv, err := toProto(e.Value, depth+1)
			if err != nil {
				return nil, err
			}
			st.Fields[e.Key] = pv
		}
		return structpb.NewStructValue(st), nil
	}
	return nil, errors.Newf("unknown kind %s", v.Kind())
}

func fromProto(pv *structpb.Value, depth int) (value.Value, error) {
	if err := common.CheckDepth(depth, common.MaxDepth); err != nil {
		return value.Value{}, err
	}

	switch k := pv.GetKind().(type) {
	case nil:
		return value.Value{}, errors.New("value has no kind set")
	case *structpb.Value_NullValue:
		return value.NullValue(), nil
	case *structpb.Value_BoolValue:
		return value.BoolValue(k.BoolValue), nil
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f == math.Trunc(f) && math.Abs(f) <= maxSafeInt {
			return value.IntValue(int64(f)), nil
		}
		return value.FloatValue(f), nil
	case *structpb.Value_StringValue:
		return value.StringValue(k.StringValue), nil
	case *structpb.Value_ListValue:
		list := k.ListValue.GetValues()
		items := make([]value.Value, len(list))
		for i, item := range list {
			v, err := fromProto(item, depth+1)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = v
		}
		return value.ListValue(items...), nil
	case *structpb.Value_StructValue:
		fields := k.StructValue.GetFields()
		keys := make([]string, 0, len(fields))
		for key := range fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		entries := make([]value.Entry, len(keys))
		for i, key := range keys {
			v, err := fromProto(fields[key], depth+1)
			if err != nil {
				return value.Value{}, err
			}
			entries[i] = value.Entry{Key: key, Value: v}
		}
		return value.MapValue(entries...), nil
	}
	return value.Value{}, errors.Newf("unexpected kind %T", pv.GetKind())
}
