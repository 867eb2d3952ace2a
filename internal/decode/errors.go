package decode

import (
	"fmt"

	"github.com/pkg/errors"
)

// UnsupportedExtensionError is returned when a syntactically valid Wasm
// byte sequence requires a post-MVP extension this decoder does not
// implement.
type UnsupportedExtensionError struct {
	Extension WasmExtension
}

func (e *UnsupportedExtensionError) Error() string {
	return fmt.Sprintf(
		"this module uses a WebAssembly extension that is not supported: %s\nsee %s for more information",
		e.Extension.Name(), e.Extension.URL(),
	)
}

// unsupported builds an UnsupportedExtensionError, wrapped with the call
// site's message for debugging context.
func unsupported(ext WasmExtension, context string) error {
	return errors.WithMessage(&UnsupportedExtensionError{Extension: ext}, context)
}

// IndexError reports that an index read from the binary (a function,
// table, memory, global, type, or local index) falls outside the bounds
// of its target vector.
type IndexError struct {
	Kind  string
	Index uint32
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s index out of bounds: %d", e.Kind, e.Index)
}

func indexError(kind string, idx uint32) error {
	return &IndexError{Kind: kind, Index: idx}
}

// structural wraps err as a structural decode error (malformed bytes that
// no valid Wasm 1.0 module could produce), attaching context describing
// which construct failed to decode.
func structural(context string, err error) error {
	return errors.WithMessage(err, context)
}

// structuralf is structural with a formatted message and no underlying
// cause (used for violations detected purely by inspecting already-decoded
// values, e.g. "duplicate type section").
func structuralf(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}
