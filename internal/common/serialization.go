package common

import (
	"github.com/MichaelAJay/go-serializer"
	"github.com/cockroachdb/errors"
)

// GetSerializer returns a go-serializer instance for the given format.
//
// Supported formats:
// - JSON: reflection based encoding/json
// - Binary (Gob): Go-native, fast, not cross-language compatible
// - MessagePack: reflection based msgpack
//
// Backends that need full control of the wire layout walk the value tree themselves;
// this helper is for those that delegate whole-struct encoding.
func GetSerializer(format serializer.Format) (serializer.Serializer, error) {
	switch format {
	case serializer.JSON:
		return serializer.NewJSONSerializer(), nil
	case serializer.Binary:
		return serializer.NewGobSerializer(), nil
	case serializer.Msgpack:
		return serializer.NewMsgpackSerializer(), nil
	default:
		return nil, errors.Newf("unsupported serializer format: %s", format)
	}
}
