package serial

//go:generate go run tools/generate_exports.go

import (
	"github.com/MichaelAJay/go-serial/interfaces"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

type (
	Constructor = interfaces.Constructor
	Descriptor  = interfaces.Descriptor
	Option      = interfaces.Option
	Options     = interfaces.Options
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	KindConfiguration        = interfaces.KindConfiguration
	KindExtensionUnavailable = interfaces.KindExtensionUnavailable
	KindMalformedInput       = interfaces.KindMalformedInput
	KindUnsupportedValue     = interfaces.KindUnsupportedValue
	OpCreate                 = interfaces.OpCreate
	OpSerialize              = interfaces.OpSerialize
	OpUnserialize            = interfaces.OpUnserialize
)

// =============================================================================
// ERRORS
// =============================================================================

type (
	Error = interfaces.Error
	Kind  = interfaces.Kind
	Op    = interfaces.Op
)

var (
	ErrConfiguration        = interfaces.ErrConfiguration
	ErrExtensionUnavailable = interfaces.ErrExtensionUnavailable
	ErrMalformedInput       = interfaces.ErrMalformedInput
	ErrUnsupportedValue     = interfaces.ErrUnsupportedValue
	Errorf                  = interfaces.Errorf
	KindOf                  = interfaces.KindOf
	Malformed               = interfaces.Malformed
	NewError                = interfaces.NewError
	Normalize               = interfaces.Normalize
	Unsupported             = interfaces.Unsupported
)

// =============================================================================
// FUNCTIONS
// =============================================================================

var (
	Apply          = interfaces.Apply
	WithLogger     = interfaces.WithLogger
	WithMetrics    = interfaces.WithMetrics
	WithMiddleware = interfaces.WithMiddleware
	WithOption     = interfaces.WithOption
	WithOptions    = interfaces.WithOptions
	WithRegistry   = interfaces.WithRegistry
)

// =============================================================================
// INTERFACES
// =============================================================================

type (
	Adapter    = interfaces.Adapter
	Creator    = interfaces.Creator
	Middleware = interfaces.Middleware
)

// =============================================================================
// COMPILE-TIME VALIDATION
// =============================================================================

// Ensure re-exported types maintain compatibility

var (
	_ Option = interfaces.WithRegistry(nil)
	_ Option = interfaces.WithOptions(nil)
	_ Option = interfaces.WithOption("", nil)
	_ Kind   = interfaces.KindConfiguration
	_ Kind   = interfaces.KindExtensionUnavailable
	_ Kind   = interfaces.KindMalformedInput
	_ Kind   = interfaces.KindUnsupportedValue
)
