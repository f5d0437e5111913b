package phpserialize

import (
	"math"
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/MichaelAJay/go-serial/internal/common"
	"github.com/MichaelAJay/go-serial/value"
)

type decoder struct {
	data     []byte
	pos      int
	maxDepth int
}

func (d *decoder) errorf(format string, args ...any) error {
	return errors.Wrapf(errors.Newf(format, args...), "offset %d", d.pos)
}

func (d *decoder) decode(depth int) (value.Value, error) {
	if err := common.CheckDepth(depth, d.maxDepth); err != nil {
		return value.Value{}, err
	}
	if d.pos >= len(d.data) {
		return value.Value{}, d.errorf("unexpected end of input")
	}

	tag := d.data[d.pos]
	switch tag {
	case 'N':
		d.pos++
		if err := d.expect(';'); err != nil {
			return value.Value{}, err
		}
		return value.NullValue(), nil
	case 'b':
		lit, err := d.scalar()
		if err != nil {
			return value.Value{}, err
		}
		switch lit {
		case "0":
			return value.BoolValue(false), nil
		case "1":
			return value.BoolValue(true), nil
		}
		return value.Value{}, d.errorf("invalid boolean %q", lit)
	case 'i':
		lit, err := d.scalar()
		if err != nil {
			return value.Value{}, err
		}
		i, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			return value.Value{}, errors.Wrapf(err, "integer at offset %d", d.pos)
		}
		return value.IntValue(i), nil
	case 'd':
		lit, err := d.scalar()
		if err != nil {
			return value.Value{}, err
		}
		f, err := parseFloat(lit)
		if err != nil {
			return value.Value{}, errors.Wrapf(err, "float at offset %d", d.pos)
		}
		return value.FloatValue(f), nil
	case 's':
		d.pos++
		if err := d.expect(':'); err != nil {
			return value.Value{}, err
		}
		s, err := d.quoted()
		if err != nil {
			return value.Value{}, err
		}
		if err := d.expect(';'); err != nil {
			return value.Value{}, err
		}
		return value.StringValue(s), nil
	case 'a':
		return d.decodeArray(depth)
	case 'O':
		return d.decodeObject(depth)
	case 'r', 'R':
		return value.Value{}, d.errorf("references are not supported")
	case 'C':
		return value.Value{}, d.errorf("custom serialized objects are not supported")
	case 'E':
		return value.Value{}, d.errorf("enums are not supported")
	}
	return value.Value{}, d.errorf("unexpected token 0x%02x", tag)
}

// scalar reads "<tag>:<literal>;" and returns the literal
func (d *decoder) scalar() (string, error) {
	d.pos++
	if err := d.expect(':'); err != nil {
		return "", err
	}
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] != ';' {
		d.pos++
	}
	if d.pos >= len(d.data) {
		return "", d.errorf("unterminated scalar")
	}
	lit := string(d.data[start:d.pos])
	d.pos++
	if lit == "" {
		return "", d.errorf("empty scalar")
	}
	return lit, nil
}

// quoted reads `<len>:"<len bytes>"`
func (d *decoder) quoted() (string, error) {
	n, err := d.length(':')
	if err != nil {
		return "", err
	}
	if err := d.expect('"'); err != nil {
		return "", err
	}
	if n > len(d.data)-d.pos {
		return "", d.errorf("string length %d exceeds remaining %d bytes", n, len(d.data)-d.pos)
	}
	s := string(d.data[d.pos : d.pos+n])
	d.pos += n
	if err := d.expect('"'); err != nil {
		return "", err
	}
	return s, nil
}

// length reads a non-negative decimal followed by term
func (d *decoder) length(term byte) (int, error) {
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] >= '0' && d.data[d.pos] <= '9' {
		d.pos++
	}
	if d.pos == start {
		return 0, d.errorf("expected length")
	}
	n, err := strconv.Atoi(string(d.data[start:d.pos]))
	if err != nil {
		return 0, errors.Wrapf(err, "length at offset %d", start)
	}
	if err := d.expect(term); err != nil {
		return 0, err
	}
	return n, nil
}

func (d *decoder) expect(b byte) error {
	if d.pos >= len(d.data) {
		return d.errorf("unexpected end of input, want %q", b)
	}
	if d.data[d.pos] != b {
		return d.errorf("found %q, want %q", d.data[d.pos], b)
	}
	d.pos++
	return nil
}

func (d *decoder) decodeArray(depth int) (value.Value, error) {
	d.pos++
	if err := d.expect(':'); err != nil {
		return value.Value{}, err
	}
	n, err := d.length(':')
	if err != nil {
		return value.Value{}, err
	}
	if err := d.expect('{'); err != nil {
		return value.Value{}, err
	}

	// each element needs at least "i:0;N;"
	capacity := common.Prealloc(n, (len(d.data)-d.pos)/6)
	entries := make([]value.Entry, 0, capacity)
	items := make([]value.Value, 0, capacity)
	seen := make(map[string]struct{}, capacity)
	sequential := true

	for i := 0; i < n; i++ {
		key, isInt, err := d.decodeKey(depth)
		if err != nil {
			return value.Value{}, err
		}
		if _, dup := seen[key]; dup {
			return value.Value{}, d.errorf("duplicate array key %q", key)
		}
		seen[key] = struct{}{}
		if !isInt || key != strconv.Itoa(i) {
			sequential = false
		}

		item, err := d.decode(depth + 1)
		if err != nil {
			return value.Value{}, err
		}
		entries = append(entries, value.Entry{Key: key, Value: item})
		if sequential {
			items = append(items, item)
		}
	}
	if err := d.expect('}'); err != nil {
		return value.Value{}, err
	}

	if sequential {
		return value.ListValue(items...), nil
	}
	return value.MapValue(entries...), nil
}

func (d *decoder) decodeObject(depth int) (value.Value, error) {
	d.pos++
	if err := d.expect(':'); err != nil {
		return value.Value{}, err
	}
	class, err := d.quoted()
	if err != nil {
		return value.Value{}, err
	}
	if class == "" {
		return value.Value{}, d.errorf("object without a class name")
	}
	if err := d.expect(':'); err != nil {
		return value.Value{}, err
	}
	n, err := d.length(':')
	if err != nil {
		return value.Value{}, err
	}
	if err := d.expect('{'); err != nil {
		return value.Value{}, err
	}

	fields := make([]value.Entry, 0, common.Prealloc(n, (len(d.data)-d.pos)/6))
	seen := make(map[string]struct{}, cap(fields))
	for i := 0; i < n; i++ {
		key, _, err := d.decodeKey(depth)
		if err != nil {
			return value.Value{}, err
		}
		if _, dup := seen[key]; dup {
			return value.Value{}, d.errorf("duplicate property %q", key)
		}
		seen[key] = struct{}{}
		item, err := d.decode(depth + 1)
		if err != nil {
			return value.Value{}, err
		}
		fields = append(fields, value.Entry{Key: key, Value: item})
	}
	if err := d.expect('}'); err != nil {
		return value.Value{}, err
	}
	return value.RecordValue(class, fields...), nil
}

// decodeKey reads an array key, which PHP restricts to integers and strings
func (d *decoder) decodeKey(depth int) (string, bool, error) {
	if d.pos >= len(d.data) {
		return "", false, d.errorf("unexpected end of input, want key")
	}
	if t := d.data[d.pos]; t != 'i' && t != 's' {
		return "", false, d.errorf("array key must be int or string, found %q", t)
	}
	k, err := d.decode(depth + 1)
	if err != nil {
		return "", false, err
	}
	if i, ok := k.Int(); ok {
		return strconv.FormatInt(i, 10), true, nil
	}
	s, _ := k.Str()
	return s, false, nil
}

// floatLiteral is the decimal form PHP writes for a double. strconv alone would also take
// hex floats, underscores and spelled-out infinities.
var floatLiteral = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

func parseFloat(lit string) (float64, error) {
	switch lit {
	case "NAN":
		return math.NaN(), nil
	case "INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	}
	if !floatLiteral.MatchString(lit) {
		return 0, errors.Newf("invalid float literal %q", lit)
	}
	return strconv.ParseFloat(lit, 64)
}
