package json

import (
	"bytes"
	"io"

	"github.com/goccy/go-json"
	jsoniter "github.com/json-iterator/go"
)

// Engine names accepted by the "engine" option
const (
	EngineGoJSON   = "go-json"
	EngineSonic    = "sonic"
	EngineJSONIter = "jsoniter"
)

// engine is the slice of a JSON library the adapter needs. Decoding must keep numbers as
// number literals so integers survive without passing through float64.
type engine interface {
	marshal(v any) ([]byte, error)
	valid(data []byte) bool
	unmarshal(data []byte, v *any) error
}

type goJSONEngine struct {
	encodeOptions []json.EncodeOptionFunc
	pretty        bool
}

func newGoJSONEngine(opts Options) engine {
	e := &goJSONEngine{pretty: opts.Pretty}
	if !opts.EscapeHTML {
		e.encodeOptions = append(e.encodeOptions, json.DisableHTMLEscape())
	}
	return e
}

func (e *goJSONEngine) marshal(v any) ([]byte, error) {
	if e.pretty {
		return json.MarshalIndentWithOption(v, "", "  ", e.encodeOptions...)
	}
	return json.MarshalWithOption(v, e.encodeOptions...)
}

func (e *goJSONEngine) valid(data []byte) bool {
	return json.Valid(data)
}

func (e *goJSONEngine) unmarshal(data []byte, v *any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

type jsoniterEngine struct {
	api    jsoniter.API
	pretty bool
}

func newJSONIterEngine(opts Options) engine {
	return &jsoniterEngine{
		api: jsoniter.Config{
			EscapeHTML:  opts.EscapeHTML,
			SortMapKeys: true,
			UseNumber:   true,
		}.Froze(),
		pretty: opts.Pretty,
	}
}

func (e *jsoniterEngine) marshal(v any) ([]byte, error) {
	if e.pretty {
		return e.api.MarshalIndent(v, "", "  ")
	}
	return e.api.Marshal(v)
}

// valid skips one document and requires the input to end after it. API.Valid cannot be
// used: a bare number runs into the end of input and is reported as io.EOF.
func (e *jsoniterEngine) valid(data []byte) bool {
	iter := e.api.BorrowIterator(data)
	defer e.api.ReturnIterator(iter)

	iter.Skip()
	if iter.Error != nil && iter.Error != io.EOF {
		return false
	}
	return iter.WhatIsNext() == jsoniter.InvalidValue && iter.Error == io.EOF
}

func (e *jsoniterEngine) unmarshal(data []byte, v *any) error {
	return e.api.Unmarshal(data, v)
}
