// Package msgpack implements the MessagePack backend on top of vmihailenco/msgpack.
//
// Records travel as extension type 1 whose payload is a two element array holding the
// class name and a map of fields, so class identity survives a round-trip.
package msgpack

import (
	"bytes"
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/MichaelAJay/go-serial/interfaces"
	"github.com/MichaelAJay/go-serial/internal/common"
	"github.com/MichaelAJay/go-serial/value"
)

// Name is the registry name of this backend
const Name = "msgpack"

// RecordExtID is the msgpack extension type used for records
const RecordExtID int8 = 1

// Options configures the msgpack backend
type Options struct {
	// Compress wraps the payload in a zstd frame
	Compress bool `option:"compress"`
	// CompactFloats encodes floats that a float32 holds exactly in 5 bytes instead of 9.
	// They still decode as floats.
	CompactFloats bool `option:"compact_floats"`
}

// Adapter implements interfaces.Adapter for MessagePack
type Adapter struct {
	opts       Options
	compressor *common.Compressor
}

var _ interfaces.Adapter = (*Adapter)(nil)

// Descriptor describes the backend to the registry
func Descriptor() interfaces.Descriptor {
	return interfaces.Descriptor{
		Name:           Name,
		Description:    "MessagePack binary encoding",
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
	a := &Adapter{opts: opts}
	if opts.Compress {
		c, err := common.NewCompressor()
		if err != nil {
			return nil, interfaces.NewError(interfaces.KindConfiguration, Name, interfaces.OpCreate, err)
		}
		a.compressor = c
	}
	return a, nil
}

// Name returns "msgpack"
func (a *Adapter) Name() string { return Name }

// Serialize encodes v as MessagePack
func (a *Adapter) Serialize(v value.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := a.encode(&buf, a.newEncoder(&buf), v, 0); err != nil {
		return nil, interfaces.Normalize(Name, interfaces.OpSerialize, err)
	}
	out := buf.Bytes()
	if a.compressor != nil {
		out = a.compressor.Compress(out)
	}
	return out, nil
}

func (a *Adapter) newEncoder(buf *bytes.Buffer) *msgpack.Encoder {
	enc := msgpack.NewEncoder(buf)
	enc.UseCompactInts(true)
	return enc
}

func (a *Adapter) encode(buf *bytes.Buffer, enc *msgpack.Encoder, v value.Value, depth int) error {
	if depth > common.MaxDepth {
		return interfaces.Unsupported(Name, common.ErrTooDeep)
	}

	switch v.Kind() {
	case value.Null:
		return enc.EncodeNil()
	case value.Bool:
		b, _ := v.Bool()
		return enc.EncodeBool(b)
	case value.Int:
		i, _ := v.Int()
		return enc.EncodeInt(i)
	case value.Float:
		f, _ := v.Float()
		if a.opts.CompactFloats && float64(float32(f)) == f {
			return enc.EncodeFloat32(float32(f))
		}
		return enc.EncodeFloat64(f)
	case value.String:
		s, _ := v.Str()
		return enc.EncodeString(s)
	case value.Bytes:
		b, _ := v.Raw()
		return enc.EncodeBytes(b)
	case value.List:
		items := v.Items()
		if err := enc.EncodeArrayLen(len(items)); err != nil {
			return err
		}
		for _, item := range items {
			if err := a.encode(buf, enc, item, depth+1); err != nil {
				return err
			}
		}
		return nil
	case value.Map:
		return a.encodeEntries(buf, enc, v.Entries(), depth)
	case value.Record:
		// the extension length must be known up front, so the body is encoded separately
		var body bytes.Buffer
		bodyEnc := a.newEncoder(&body)
		if err := bodyEnc.EncodeArrayLen(2); err != nil {
			return err
		}
		if err := bodyEnc.EncodeString(v.Class()); err != nil {
			return err
		}
		if err := a.encodeEntries(&body, bodyEnc, v.Entries(), depth); err != nil {
			return err
		}
		if err := enc.EncodeExtHeader(RecordExtID, body.Len()); err != nil {
			return err
		}
		_, err := buf.Write(body.Bytes())
		return err
	}
	return interfaces.Unsupported(Name, errors.Newf("unknown kind %s", v.Kind()))
}

func (a *Adapter) encodeEntries(buf *bytes.Buffer, enc *msgpack.Encoder, entries []value.Entry, depth int) error {
	if err := enc.EncodeMapLen(len(entries)); err != nil {
		return err
	}
	for _, e := range entries {
		if err := enc.EncodeString(e.Key); err != nil {
			return err
		}
		if err := a.encode(buf, enc, e.Value, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Unserialize decodes a single MessagePack value. Trailing bytes are rejected.
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

	r := bytes.NewReader(data)
	d := &decoder{r: r, dec: msgpack.NewDecoder(r)}
	v, err := d.decode(0)
	if err != nil {
		return value.Value{}, interfaces.Normalize(Name, interfaces.OpUnserialize, err)
	}
	if r.Len() > 0 {
		return value.Value{}, interfaces.Malformed(Name, errors.Newf("%d trailing bytes after value", r.Len()))
	}
	return v, nil
}

// decoder walks the msgpack stream one code at a time.
// msgpack.Decoder reads straight from a *bytes.Reader without buffering, so r.Len()
// always reflects the unread input.
type decoder struct {
	r   *bytes.Reader
	dec *msgpack.Decoder
}

func (d *decoder) decode(depth int) (value.Value, error) {
	if err := common.CheckDepth(depth, common.MaxDepth); err != nil {
		return value.Value{}, err
	}

	c, err := d.dec.PeekCode()
	if err != nil {
		return value.Value{}, err
	}

	switch {
	case c == msgpcode.Nil:
		return value.NullValue(), d.dec.DecodeNil()
	case c == msgpcode.False || c == msgpcode.True:
		b, err := d.dec.DecodeBool()
		return value.BoolValue(b), err
	case c == msgpcode.Uint64:
		u, err := d.dec.DecodeUint64()
		if err != nil {
			return value.Value{}, err
		}
		if u > math.MaxInt64 {
			return value.Value{}, errors.Newf("integer %d overflows int64", u)
		}
		return value.IntValue(int64(u)), nil
	case msgpcode.IsFixedNum(c), c == msgpcode.Uint8, c == msgpcode.Uint16, c == msgpcode.Uint32,
		c == msgpcode.Int8, c == msgpcode.Int16, c == msgpcode.Int32, c == msgpcode.Int64:
		i, err := d.dec.DecodeInt64()
		return value.IntValue(i), err
	case c == msgpcode.Float || c == msgpcode.Double:
		f, err := d.dec.DecodeFloat64()
		return value.FloatValue(f), err
	case msgpcode.IsString(c):
		s, err := d.dec.DecodeString()
		return value.StringValue(s), err
	case msgpcode.IsBin(c):
		b, err := d.dec.DecodeBytes()
		return value.BytesValue(b), err
	case msgpcode.IsFixedArray(c), c == msgpcode.Array16, c == msgpcode.Array32:
		return d.decodeList(depth)
	case msgpcode.IsFixedMap(c), c == msgpcode.Map16, c == msgpcode.Map32:
		entries, err := d.decodeEntries(depth)
		if err != nil {
			return value.Value{}, err
		}
		return value.MapValue(entries...), nil
	case msgpcode.IsExt(c):
		return d.decodeRecord(depth)
	}
	return value.Value{}, errors.Newf("unexpected code 0x%02x", c)
}

func (d *decoder) decodeList(depth int) (value.Value, error) {
	n, err := d.dec.DecodeArrayLen()
	if err != nil {
		return value.Value{}, err
	}
	if n < 0 {
		return value.NullValue(), nil
	}
	items := make([]value.Value, 0, common.Prealloc(n, d.r.Len()))
	for i := 0; i < n; i++ {
		item, err := d.decode(depth + 1)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, item)
	}
	return value.ListValue(items...), nil
}

func (d *decoder) decodeEntries(depth int) ([]value.Entry, error) {
	n, err := d.dec.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	entries := make([]value.Entry, 0, common.Prealloc(n, d.r.Len()/2))
	seen := make(map[string]struct{}, cap(entries))
	for i := 0; i < n; i++ {
		key, err := d.decodeKey(depth)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[key]; dup {
			return nil, errors.Newf("duplicate map key %q", key)
		}
		seen[key] = struct{}{}
		item, err := d.decode(depth + 1)
		if err != nil {
			return nil, err
		}
		entries = append(entries, value.Entry{Key: key, Value: item})
	}
	return entries, nil
}

// decodeKey accepts string keys and the integer keys other msgpack producers use for
// list-like maps
func (d *decoder) decodeKey(depth int) (string, error) {
	k, err := d.decode(depth + 1)
	if err != nil {
		return "", err
	}
	switch k.Kind() {
	case value.String:
		s, _ := k.Str()
		return s, nil
	case value.Int:
		i, _ := k.Int()
		return strconv.FormatInt(i, 10), nil
	}
	return "", errors.Newf("map key of kind %s", k.Kind())
}

func (d *decoder) decodeRecord(depth int) (value.Value, error) {
	id, n, err := d.dec.DecodeExtHeader()
	if err != nil {
		return value.Value{}, err
	}
	if id != RecordExtID {
		return value.Value{}, errors.Newf("unknown extension type %d", id)
	}
	if n > d.r.Len() {
		return value.Value{}, errors.Newf("extension length %d exceeds remaining %d bytes", n, d.r.Len())
	}
	start := d.r.Len()

	size, err := d.dec.DecodeArrayLen()
	if err != nil {
		return value.Value{}, err
	}
	if size != 2 {
		return value.Value{}, errors.Newf("record body has %d elements, want 2", size)
	}
	class, err := d.dec.DecodeString()
	if err != nil {
		return value.Value{}, err
	}
	fields, err := d.decodeEntries(depth)
	if err != nil {
		return value.Value{}, err
	}
	if consumed := start - d.r.Len(); consumed != n {
		return value.Value{}, errors.Newf("record body is %d bytes, header says %d", consumed, n)
	}
	return value.RecordValue(class, fields...), nil
}
