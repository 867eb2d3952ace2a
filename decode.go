// Package wasmdecode parses a WebAssembly 1.0 (MVP) binary module into a
// typed, cross-linked intermediate representation plus a side table of
// byte offsets, for tools that need to inspect or re-derive positions in
// the original binary (symbolication, diagnostics, binary rewriting).
package wasmdecode

import (
	"github.com/sirupsen/logrus"

	"github.com/tetratelabs/wasmdecode/internal/decode"
	"github.com/tetratelabs/wasmdecode/ir"
)

// options configures a single ParseModuleWithOffsets call, which starts
// from a discard-everything logger before applying any Option, since most
// callers don't want decoder diagnostics mixed into their own log stream
// unless they ask for it. The zero value's logger is nil.
type options struct {
	log *logrus.Logger
}

// Option configures ParseModuleWithOffsets. The functional-options shape
// mirrors the rest of this codebase's configuration surface (see
// internal/config), keeping callers from having to thread a growing
// struct of mostly-zero fields.
type Option func(*options)

// WithLogger routes the decoder's diagnostic output (currently limited to
// a warning when a module's name section is malformed and is kept as raw
// data instead) through log, instead of discarding it.
func WithLogger(log *logrus.Logger) Option {
	return func(o *options) { o.log = log }
}

// ParseModuleWithOffsets parses data as a Wasm 1.0 binary module,
// returning its decoded IR and an offset table mapping IR entities back
// to byte positions in data. An error is either a structural decode
// failure (data is not a valid Wasm 1.0 module), an
// *UnsupportedExtensionError (data is well-formed but requires a
// post-MVP feature), or an *IndexError (data references an out-of-bounds
// type, function, table, memory or global).
func ParseModuleWithOffsets(data []byte, opts ...Option) (*ir.Module, *ir.Offsets, error) {
	o := &options{log: discardLogger()}
	for _, opt := range opts {
		opt(o)
	}
	return decode.DecodeModule(data, o.log)
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(discardWriter{})
	return log
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// UnsupportedExtensionError re-exports decode.UnsupportedExtensionError so
// callers can type-assert against it without importing the internal
// package directly.
type UnsupportedExtensionError = decode.UnsupportedExtensionError

// IndexError re-exports decode.IndexError so callers can type-assert
// against it without importing the internal package directly.
type IndexError = decode.IndexError

// Extension re-exports decode.WasmExtension, the enumeration of post-MVP
// proposals this decoder recognizes but refuses to lower.
type Extension = decode.WasmExtension
