package wasmdecode_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	wasmdecode "github.com/tetratelabs/wasmdecode"
)

var emptyModule = []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}

// oneTrivialFunctionModule declares a single () -> () function whose body
// is just `end`; it has no export section.
var oneTrivialFunctionModule = []byte{
	0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00, // header
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00, // type section: 1 type, () -> ()
	0x03, 0x02, 0x01, 0x00, // function section: 1 function, type 0
	0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b, // code section: 1 body, 0 locals, `end`
}

// simdInstructionModule is structurally valid except its one function body
// opens with the SIMD prefix byte.
var simdInstructionModule = []byte{
	0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00,
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
	0x03, 0x02, 0x01, 0x00,
	0x0a, 0x04, 0x01, 0x02, 0x00, 0xfd,
}

func TestDecodeEmptyModule(t *testing.T) {
	mod, offsets, err := wasmdecode.ParseModuleWithOffsets(emptyModule)
	require.NoError(t, err)
	require.Empty(t, mod.Types)
	require.Empty(t, mod.Functions)
	require.Empty(t, offsets.Sections)
}

func TestDecodeTrivialFunction(t *testing.T) {
	mod, offsets, err := wasmdecode.ParseModuleWithOffsets(oneTrivialFunctionModule)
	require.NoError(t, err)
	require.Len(t, mod.Functions, 1)
	require.NotNil(t, mod.Functions[0].Code)
	require.Len(t, offsets.FunctionsCode, 1)
}

func TestDecodeRejectsSimdWithNamedExtension(t *testing.T) {
	_, _, err := wasmdecode.ParseModuleWithOffsets(simdInstructionModule)
	require.Error(t, err)
	var extErr *wasmdecode.UnsupportedExtensionError
	require.ErrorAs(t, err, &extErr)
	require.Equal(t, "SIMD", extErr.Extension.Name())
}

func TestDecodeTruncatedModuleIsStructuralError(t *testing.T) {
	truncated := emptyModule[:6]
	_, _, err := wasmdecode.ParseModuleWithOffsets(truncated)
	require.Error(t, err)

	var extErr *wasmdecode.UnsupportedExtensionError
	require.NotErrorAs(t, err, &extErr, "a truncated header is a structural error, not an unsupported-extension one")
}

func TestDecodeIsDeterministic(t *testing.T) {
	mod1, _, err := wasmdecode.ParseModuleWithOffsets(oneTrivialFunctionModule)
	require.NoError(t, err)
	mod2, _, err := wasmdecode.ParseModuleWithOffsets(oneTrivialFunctionModule)
	require.NoError(t, err)
	require.Equal(t, mod1, mod2)
}
