//go:build amd64 && (linux || windows || darwin)

package json

import (
	"github.com/bytedance/sonic"
)

// SonicAvailable reports whether the sonic engine is compiled into this build
func SonicAvailable() bool { return true }

type sonicEngine struct {
	api    sonic.API
	pretty bool
}

func newSonicEngine(opts Options) (engine, error) {
	return &sonicEngine{
		api: sonic.Config{
			EscapeHTML:  opts.EscapeHTML,
			SortMapKeys: true,
			UseNumber:   true,
			CopyString:  true,
		}.Froze(),
		pretty: opts.Pretty,
	}, nil
}

func (e *sonicEngine) marshal(v any) ([]byte, error) {
	if e.pretty {
		return e.api.MarshalIndent(v, "", "  ")
	}
	return e.api.Marshal(v)
}

func (e *sonicEngine) valid(data []byte) bool {
	return e.api.Valid(data)
}

func (e *sonicEngine) unmarshal(data []byte, v *any) error {
	return e.api.Unmarshal(data, v)
}
