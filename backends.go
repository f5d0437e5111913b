package serial

import (
	cborbackend "github.com/MichaelAJay/go-serial/internal/backends/cbor"
	gobbackend "github.com/MichaelAJay/go-serial/internal/backends/gob"
	jsonbackend "github.com/MichaelAJay/go-serial/internal/backends/json"
	msgpackbackend "github.com/MichaelAJay/go-serial/internal/backends/msgpack"
	phpbackend "github.com/MichaelAJay/go-serial/internal/backends/phpserialize"
	protobackend "github.com/MichaelAJay/go-serial/internal/backends/protobuf"
)

// Backend names accepted by New and Registry.Create
const (
	MsgPack      = msgpackbackend.Name
	JSON         = jsonbackend.Name
	CBOR         = cborbackend.Name
	PHPSerialize = phpbackend.Name
	Gob          = gobbackend.Name
	Protobuf     = protobackend.Name
)

// JSON engines selectable with the "engine" option
const (
	EngineGoJSON   = jsonbackend.EngineGoJSON
	EngineSonic    = jsonbackend.EngineSonic
	EngineJSONIter = jsonbackend.EngineJSONIter
)

// DefaultRegistry holds every built-in backend
var DefaultRegistry = newDefaultRegistry()

// Descriptors returns the descriptors of the built-in backends
func Descriptors() []Descriptor {
	return []Descriptor{
		msgpackbackend.Descriptor(),
		jsonbackend.Descriptor(),
		cborbackend.Descriptor(),
		phpbackend.Descriptor(),
		gobbackend.Descriptor(),
		protobackend.Descriptor(),
	}
}

func newDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range Descriptors() {
		r.MustRegister(d)
	}
	return r
}

// SonicAvailable reports whether the sonic JSON engine can be used on this platform
func SonicAvailable() bool {
	return jsonbackend.SonicAvailable()
}
