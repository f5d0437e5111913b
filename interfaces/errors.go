package interfaces

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind classifies every failure a backend can report
type Kind uint8

const (
	// KindExtensionUnavailable means the codec support a backend needs is missing
	KindExtensionUnavailable Kind = iota + 1
	// KindMalformedInput means bytes handed to Unserialize are not valid for the format
	KindMalformedInput
	// KindUnsupportedValue means a Value shape cannot be represented by the format
	KindUnsupportedValue
	// KindConfiguration means construction options were rejected
	KindConfiguration
)

// Op names the adapter operation an error came from
type Op string

const (
	OpSerialize   Op = "serialize"
	OpUnserialize Op = "unserialize"
	OpCreate      Op = "create"
)

// Sentinel errors, one per Kind. Every *Error matches exactly one of them with errors.Is.
var (
	ErrExtensionUnavailable = errors.New("serial: extension unavailable")
	ErrMalformedInput       = errors.New("serial: unserialization failed")
	ErrUnsupportedValue     = errors.New("serial: serialization failed")
	ErrConfiguration        = errors.New("serial: invalid configuration")
)

// String returns the short kind name used in logs and metric labels
func (k Kind) String() string {
	switch k {
	case KindExtensionUnavailable:
		return "extension_unavailable"
	case KindMalformedInput:
		return "malformed_input"
	case KindUnsupportedValue:
		return "unsupported_value"
	case KindConfiguration:
		return "configuration_error"
	}
	return "unknown"
}

func (k Kind) sentinel() error {
	switch k {
	case KindExtensionUnavailable:
		return ErrExtensionUnavailable
	case KindMalformedInput:
		return ErrMalformedInput
	case KindUnsupportedValue:
		return ErrUnsupportedValue
	case KindConfiguration:
		return ErrConfiguration
	}
	return nil
}

func (k Kind) phrase() string {
	switch k {
	case KindExtensionUnavailable:
		return "extension unavailable"
	case KindMalformedInput:
		return "unserialization failed"
	case KindUnsupportedValue:
		return "serialization failed"
	case KindConfiguration:
		return "invalid configuration"
	}
	return "failed"
}

// Error is the only error type adapters return. Err holds the library-level cause.
type Error struct {
	Kind    Kind
	Backend string
	Op      Op
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("serial: %s: %s", e.Backend, e.Kind.phrase())
	}
	return fmt.Sprintf("serial: %s: %s: %v", e.Backend, e.Kind.phrase(), e.Err)
}

// Is matches the sentinel of the error's kind
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error of the given kind around cause
func NewError(kind Kind, backend string, op Op, cause error) *Error {
	return &Error{Kind: kind, Backend: backend, Op: op, Err: cause}
}

// Errorf builds an *Error of the given kind with a formatted cause
func Errorf(kind Kind, backend string, op Op, format string, args ...any) *Error {
	return NewError(kind, backend, op, errors.Newf(format, args...))
}

// Malformed reports a decode failure for backend
func Malformed(backend string, cause error) *Error {
	return NewError(KindMalformedInput, backend, OpUnserialize, cause)
}

// Unsupported reports an encode failure for backend
func Unsupported(backend string, cause error) *Error {
	return NewError(KindUnsupportedValue, backend, OpSerialize, cause)
}

// Normalize maps any error raised while running op on backend into an *Error.
// nil stays nil and a complete *Error is returned unchanged. An *Error missing its backend or
// op comes back as a filled-in copy.
// Otherwise unserialize failures become MalformedInput, serialize failures UnsupportedValue
// and construction failures ConfigurationError.
func Normalize(backend string, op Op, err error) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		if typed.Backend != "" && typed.Op != "" {
			return typed
		}
		// fill a copy; the caller's error may be shared
		cp := *typed
		if cp.Backend == "" {
			cp.Backend = backend
		}
		if cp.Op == "" {
			cp.Op = op
		}
		return &cp
	}

	kind := KindConfiguration
	switch op {
	case OpSerialize:
		kind = KindUnsupportedValue
	case OpUnserialize:
		kind = KindMalformedInput
	}
	return NewError(kind, backend, op, err)
}

// KindOf reports the Kind of err, if err carries one
func KindOf(err error) (Kind, bool) {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind, true
	}
	return 0, false
}
