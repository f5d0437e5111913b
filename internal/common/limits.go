package common

import (
	"github.com/cockroachdb/errors"
)

// MaxDepth is the deepest container nesting backends accept on decode
const MaxDepth = 512

// ErrTooDeep is the cause reported when decoding exceeds MaxDepth
var ErrTooDeep = errors.Newf("nesting exceeds %d levels", MaxDepth)

// ErrEmptyInput is the cause reported when Unserialize receives no bytes
var ErrEmptyInput = errors.New("empty input")

// CheckDepth returns ErrTooDeep when depth is beyond limit
func CheckDepth(depth, limit int) error {
	if depth > limit {
		return ErrTooDeep
	}
	return nil
}

// Prealloc caps a length read from a wire header before it is used as a slice capacity.
// Each element needs at least one byte of input, so a header promising more elements than
// there are bytes left is clamped to the remaining length.
func Prealloc(declared, remaining int) int {
	if declared < 0 {
		return 0
	}
	if declared > remaining {
		return remaining
	}
	return declared
}
