//go:build !amd64 || (amd64 && !(linux || windows || darwin))

package json

import (
	"github.com/cockroachdb/errors"
)

// SonicAvailable reports whether the sonic engine is compiled into this build
func SonicAvailable() bool { return false }

func newSonicEngine(Options) (engine, error) {
	return nil, errors.New("sonic requires amd64 on linux, windows or darwin")
}
