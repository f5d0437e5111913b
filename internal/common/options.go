package common

import (
	"github.com/mitchellh/mapstructure"

	"github.com/MichaelAJay/go-serial/interfaces"
)

// DecodeOptions decodes the caller's option map into target, a pointer to the backend's
// options struct pre-filled with defaults.
//
// Decoding Rules:
// 1. A nil or empty map leaves the defaults untouched
// 2. Keys are matched against `option` struct tags; unknown keys are rejected
// 3. Values must already have the field's type, except that any integer or float kind
//    converts to a numeric field. Strings are never parsed into numbers or booleans.
//
// Every failure is reported as a ConfigurationError for backend.
func DecodeOptions(backend string, raw map[string]any, target any) error {
	if len(raw) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "option",
		ErrorUnused: true,
		Result:      target,
	})
	if err != nil {
		return interfaces.NewError(interfaces.KindConfiguration, backend, interfaces.OpCreate, err)
	}
	if err := dec.Decode(raw); err != nil {
		return interfaces.NewError(interfaces.KindConfiguration, backend, interfaces.OpCreate, err)
	}
	return nil
}
