package decode

import (
	"github.com/sirupsen/logrus"

	"github.com/tetratelabs/wasmdecode/ir"
)

// DecodeModule is the internal package's entry point, wrapped by the
// public wasmdecode.ParseModuleWithOffsets.
func DecodeModule(data []byte, log *logrus.Logger) (*ir.Module, *ir.Offsets, error) {
	return decodeModule(data, log)
}
