package phpserialize

import (
	"math"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/MichaelAJay/go-serial/internal/common"
	"github.com/MichaelAJay/go-serial/value"
)

type encoder struct {
	buf      []byte
	maxDepth int
}

func (e *encoder) encode(v value.Value, depth int) error {
	if depth > e.maxDepth {
		return common.ErrTooDeep
	}

	switch v.Kind() {
	case value.Null:
		e.buf = append(e.buf, "N;"...)
	case value.Bool:
		b, _ := v.Bool()
		if b {
			e.buf = append(e.buf, "b:1;"...)
		} else {
			e.buf = append(e.buf, "b:0;"...)
		}
	case value.Int:
		i, _ := v.Int()
		e.writeInt(i)
	case value.Float:
		f, _ := v.Float()
		e.buf = append(e.buf, "d:"...)
		e.buf = append(e.buf, formatFloat(f)...)
		e.buf = append(e.buf, ';')
	case value.String:
		s, _ := v.Str()
		e.writeString(s)
	case value.Bytes:
		b, _ := v.Raw()
		e.writeString(string(b))
	case value.List:
		items := v.Items()
		e.buf = append(e.buf, "a:"...)
		e.buf = strconv.AppendInt(e.buf, int64(len(items)), 10)
		e.buf = append(e.buf, ":{"...)
		for i, item := range items {
			e.writeInt(int64(i))
			if err := e.encode(item, depth+1); err != nil {
				return err
			}
		}
		e.buf = append(e.buf, '}')
	case value.Map:
		e.buf = append(e.buf, "a:"...)
		return e.writeEntries(v.Entries(), depth)
	case value.Record:
		class := v.Class()
		if class == "" {
			return errors.New("record without a class name")
		}
		e.buf = append(e.buf, "O:"...)
		e.buf = strconv.AppendInt(e.buf, int64(len(class)), 10)
		e.buf = append(e.buf, ":\""...)
		e.buf = append(e.buf, class...)
		e.buf = append(e.buf, "\":"...)
		return e.writeEntries(v.Entries(), depth)
	default:
		return errors.Newf("unknown kind %s", v.Kind())
	}
	return nil
}

// writeEntries writes "<n>:{key value ...}" with string keys
func (e *encoder) writeEntries(entries []value.Entry, depth int) error {
	e.buf = strconv.AppendInt(e.buf, int64(len(entries)), 10)
	e.buf = append(e.buf, ":{"...)
	for _, entry := range entries {
		e.writeString(entry.Key)
		if err := e.encode(entry.Value, depth+1); err != nil {
			return err
		}
	}
	e.buf = append(e.buf, '}')
	return nil
}

func (e *encoder) writeInt(i int64) {
	e.buf = append(e.buf, "i:"...)
	e.buf = strconv.AppendInt(e.buf, i, 10)
	e.buf = append(e.buf, ';')
}

func (e *encoder) writeString(s string) {
	e.buf = append(e.buf, "s:"...)
	e.buf = strconv.AppendInt(e.buf, int64(len(s)), 10)
	e.buf = append(e.buf, ":\""...)
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, "\";"...)
}

// formatFloat matches PHP's serialize_precision=-1 output for the special values and
// uses the shortest round-tripping representation otherwise
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	return strconv.FormatFloat(f, 'G', -1, 64)
}
