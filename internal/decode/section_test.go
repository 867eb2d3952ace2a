package decode

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wasmdecode/ir"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(discardLogOutput{})
	return log
}

type discardLogOutput struct{}

func (discardLogOutput) Write(p []byte) (int, error) { return len(p), nil }

func TestDecodeTrivialEmptyModule(t *testing.T) {
	mod, offsets, err := decodeModule(moduleBytes(), testLogger())
	require.NoError(t, err)
	require.Empty(t, mod.Types)
	require.Empty(t, mod.Functions)
	require.Empty(t, mod.Tables)
	require.Empty(t, mod.Memories)
	require.Empty(t, mod.Globals)
	require.Nil(t, mod.Start)
	require.Empty(t, offsets.Sections)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	bad := []byte{0x00, 0x61, 0x73, 0x6d + 1, 0x01, 0x00, 0x00, 0x00}
	_, _, err := decodeModule(bad, testLogger())
	require.Error(t, err)
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	bad := []byte{0x00, 'a', 's', 'm', 0x02, 0x00, 0x00, 0x00}
	_, _, err := decodeModule(bad, testLogger())
	require.Error(t, err)
}

func TestDecodeRejectsOutOfOrderSections(t *testing.T) {
	typeSec := section(1, vec(funcType(nil, nil)))
	importSec := section(2, u32(0))
	// Function (3) before Import (2) violates canonical order.
	mod := moduleBytes(typeSec, section(3, u32(0)), importSec)
	_, _, err := decodeModule(mod, testLogger())
	require.Error(t, err)
}

// i32AddOneFunction builds a module defining one function of type () -> i32
// whose body computes 41 + 1 via i32.add, exercising type, function and
// code sections together plus an export.
func i32AddOneFunction(t *testing.T) []byte {
	t.Helper()
	i32b := byte(ir.ValTypeI32)
	typeSec := section(1, vec(funcType(nil, []byte{i32b})))
	funcSec := section(3, vec(u32(0)))
	exportSec := section(7, vec(append(name("addOne"), exportKindFunc, 0)))
	body := append([]byte{opI32Const}, i32(41)...)
	body = append(body, opI32Const)
	body = append(body, i32(1)...)
	body = append(body, opI32Add, opEnd)
	codeSec := section(10, vec(code(nil, body)))
	return moduleBytes(typeSec, funcSec, exportSec, codeSec)
}

func TestDecodeSimpleFunction(t *testing.T) {
	mod, offsets, err := decodeModule(i32AddOneFunction(t), testLogger())
	require.NoError(t, err)
	require.Len(t, mod.Types, 1)
	require.Len(t, mod.Functions, 1)
	fn := mod.Functions[0]
	require.False(t, fn.IsImported())
	require.NotNil(t, fn.Code)
	require.Equal(t, []string{"addOne"}, fn.Export)
	require.Equal(t, ir.OpConstI32, fn.Code.Body[0].Op)
	require.Equal(t, int32(41), fn.Code.Body[0].ConstI32)
	require.Equal(t, ir.OpNumeric, fn.Code.Body[2].Op)
	require.Equal(t, ir.NumericOpI32Add, fn.Code.Body[2].NumericOp)
	require.Equal(t, ir.OpEnd, fn.Code.Body[3].Op)
	require.Len(t, offsets.FunctionsCode, 1)
	require.Equal(t, ir.Index(0), offsets.FunctionsCode[0].FuncIdx)
}

func TestDecodeRejectsSimd(t *testing.T) {
	typeSec := section(1, vec(funcType(nil, nil)))
	funcSec := section(3, vec(u32(0)))
	body := []byte{opPrefixSimd, opEnd}
	codeSec := section(10, vec(code(nil, body)))
	mod := moduleBytes(typeSec, funcSec, codeSec)

	_, _, err := decodeModule(mod, testLogger())
	require.Error(t, err)
	var extErr *UnsupportedExtensionError
	require.ErrorAs(t, err, &extErr)
	require.Equal(t, ExtensionSimd, extErr.Extension)
}

func TestDecodeImportedFunctionPrecedesDefined(t *testing.T) {
	typeSec := section(1, vec(funcType(nil, nil)))
	importEntry := append(name("env"), name("log")...)
	importEntry = append(importEntry, importKindFunc)
	importEntry = append(importEntry, u32(0)...)
	importSec := section(2, vec(importEntry))
	funcSec := section(3, vec(u32(0)))
	codeSec := section(10, vec(code(nil, []byte{opEnd})))
	mod := moduleBytes(typeSec, importSec, funcSec, codeSec)

	decoded, _, err := decodeModule(mod, testLogger())
	require.NoError(t, err)
	require.Len(t, decoded.Functions, 2)
	require.True(t, decoded.Functions[0].IsImported())
	require.False(t, decoded.Functions[1].IsImported())
	require.Equal(t, 1, decoded.ImportedFunctionCount())
}

func TestDecodeNameSection(t *testing.T) {
	typeSec := section(1, vec(funcType(nil, nil)))
	funcSec := section(3, vec(u32(0)))
	codeSec := section(10, vec(code(nil, []byte{opEnd})))

	moduleNameSub := append([]byte{nameSubsectionModule}, u32(uint32(len(name("demo"))))...)
	moduleNameSub = append(moduleNameSub, name("demo")...)

	funcNamesPayload := vec([]byte{})
	_ = funcNamesPayload
	fnMap := append(u32(1), append(u32(0), name("main")...)...)
	funcNameSub := append([]byte{nameSubsectionFunction}, u32(uint32(len(fnMap)))...)
	funcNameSub = append(funcNameSub, fnMap...)

	namePayload := append(name("name"), moduleNameSub...)
	namePayload = append(namePayload, funcNameSub...)
	nameSec := section(0, namePayload)

	mod := moduleBytes(typeSec, funcSec, codeSec, nameSec)
	decoded, _, err := decodeModule(mod, testLogger())
	require.NoError(t, err)
	require.NotNil(t, decoded.Name)
	require.Equal(t, "demo", *decoded.Name)
	require.NotNil(t, decoded.Functions[0].Name)
	require.Equal(t, "main", *decoded.Functions[0].Name)
}

func TestDecodeMalformedNameSectionDegrades(t *testing.T) {
	typeSec := section(1, vec(funcType(nil, nil)))
	funcSec := section(3, vec(u32(0)))
	codeSec := section(10, vec(code(nil, []byte{opEnd})))

	// Truncated module-name subsection: claims a name but supplies no bytes.
	badSub := append([]byte{nameSubsectionModule}, u32(10)...)
	namePayload := append(name("name"), badSub...)
	nameSec := section(0, namePayload)

	mod := moduleBytes(typeSec, funcSec, codeSec, nameSec)
	decoded, _, err := decodeModule(mod, testLogger())
	require.NoError(t, err, "a malformed name section must not abort the decode")
	require.Nil(t, decoded.Name)
	require.Len(t, decoded.CustomSections, 1)
	require.Equal(t, "name", decoded.CustomSections[0].Name)
}

func TestDecodeRejectsDataCountSection(t *testing.T) {
	mod := moduleBytes(section(12, u32(0)))
	_, _, err := decodeModule(mod, testLogger())
	require.Error(t, err)
	var extErr *UnsupportedExtensionError
	require.ErrorAs(t, err, &extErr)
	require.Equal(t, ExtensionBulkMemoryOperations, extErr.Extension)
}

func TestDecodeRejectsUnknownSectionIDWithoutPanicking(t *testing.T) {
	mod := moduleBytes(section(13, nil))
	require.NotPanics(t, func() {
		_, _, err := decodeModule(mod, testLogger())
		require.Error(t, err)
	})
}

func TestDecodeRejectsPassiveElementSegment(t *testing.T) {
	typeSec := section(1, vec(funcType(nil, nil)))
	funcSec := section(3, vec(u32(0)))
	tableSec := section(4, vec(append([]byte{wireTypeFuncref, 0x00}, u32(1)...)))
	codeSec := section(10, vec(code(nil, []byte{opEnd})))

	// flags=1 (passive): elemkind byte + vec(funcidx), no offset expression.
	elemEntry := append(u32(1), elemKindFuncref)
	elemEntry = append(elemEntry, vec(u32(0))...)
	elemSec := section(9, vec(elemEntry))

	mod := moduleBytes(typeSec, funcSec, tableSec, elemSec, codeSec)
	_, _, err := decodeModule(mod, testLogger())
	require.Error(t, err)
	var extErr *UnsupportedExtensionError
	require.ErrorAs(t, err, &extErr)
	require.Equal(t, ExtensionBulkMemoryOperations, extErr.Extension)
}

func TestDecodeAcceptsExplicitTableActiveElementSegment(t *testing.T) {
	typeSec := section(1, vec(funcType(nil, nil)))
	funcSec := section(3, vec(u32(0)))
	tableSec := section(4, vec(append([]byte{wireTypeFuncref, 0x00}, u32(1)...)))
	codeSec := section(10, vec(code(nil, []byte{opEnd})))

	offsetExpr := append([]byte{opI32Const}, i32(0)...)
	offsetExpr = append(offsetExpr, opEnd)

	// flags=2 (active, explicit table): tableidx, offset expr, elemkind, funcidx vec.
	elemEntry := append(u32(2), u32(0)...)
	elemEntry = append(elemEntry, offsetExpr...)
	elemEntry = append(elemEntry, elemKindFuncref)
	elemEntry = append(elemEntry, vec(u32(0))...)
	elemSec := section(9, vec(elemEntry))

	mod := moduleBytes(typeSec, funcSec, tableSec, elemSec, codeSec)
	decoded, _, err := decodeModule(mod, testLogger())
	require.NoError(t, err)
	require.Len(t, decoded.Tables[0].Elements, 1)
	require.Equal(t, []ir.Index{0}, decoded.Tables[0].Elements[0].Functions)
}

func TestDecodeRejectsPassiveDataSegment(t *testing.T) {
	typeSec := section(1, vec(funcType(nil, nil)))
	funcSec := section(3, vec(u32(0)))
	memSec := section(5, vec([]byte{0x00, 0x01}))
	codeSec := section(10, vec(code(nil, []byte{opEnd})))

	// flags=1 (passive): vec(byte) only, no memory index or offset.
	dataEntry := append(u32(1), vec([]byte{0x01})...)
	dataSec := section(11, vec(dataEntry))

	mod := moduleBytes(typeSec, funcSec, memSec, dataSec, codeSec)
	_, _, err := decodeModule(mod, testLogger())
	require.Error(t, err)
	var extErr *UnsupportedExtensionError
	require.ErrorAs(t, err, &extErr)
	require.Equal(t, ExtensionBulkMemoryOperations, extErr.Extension)
}

func TestDecodeNameSectionRejectsOutOfRangeFunctionIndex(t *testing.T) {
	typeSec := section(1, vec(funcType(nil, nil)))
	funcSec := section(3, vec(u32(0)))
	codeSec := section(10, vec(code(nil, []byte{opEnd})))

	// Names function index 5, but the module only declares one function.
	fnMap := append(u32(1), append(u32(5), name("ghost")...)...)
	funcNameSub := append([]byte{nameSubsectionFunction}, u32(uint32(len(fnMap)))...)
	funcNameSub = append(funcNameSub, fnMap...)
	namePayload := append(name("name"), funcNameSub...)
	nameSec := section(0, namePayload)

	mod := moduleBytes(typeSec, funcSec, codeSec, nameSec)
	_, _, err := decodeModule(mod, testLogger())
	require.Error(t, err)
	var idxErr *IndexError
	require.ErrorAs(t, err, &idxErr)
	require.Equal(t, "function", idxErr.Kind)
}

func TestDecodeRejectsLoadWithExplicitNonZeroMemoryIndex(t *testing.T) {
	typeSec := section(1, vec(funcType(nil, nil)))
	funcSec := section(3, vec(u32(0)))
	memSec := section(5, vec([]byte{0x00, 0x01}))

	// i32.load with the memidx flag bit set and an explicit memory index 1.
	body := []byte{opI32Load}
	body = append(body, u32(0x40)...)
	body = append(body, u32(1)...) // explicit memory index
	body = append(body, u32(0)...) // offset
	body = append(body, opEnd)
	codeSec := section(10, vec(code(nil, body)))

	mod := moduleBytes(typeSec, funcSec, memSec, codeSec)
	_, _, err := decodeModule(mod, testLogger())
	require.Error(t, err)
	var extErr *UnsupportedExtensionError
	require.ErrorAs(t, err, &extErr)
	require.Equal(t, ExtensionMultiMemory, extErr.Extension)
}

func TestDecodeActiveElementAndData(t *testing.T) {
	i32b := byte(ir.ValTypeI32)
	typeSec := section(1, vec(funcType(nil, nil)))
	funcSec := section(3, vec(u32(0)))
	tableSec := section(4, vec(append([]byte{wireTypeFuncref, 0x00}, u32(1)...)))
	memSec := section(5, vec([]byte{0x00, 0x01}))

	offsetExpr := append([]byte{opI32Const}, i32(0)...)
	offsetExpr = append(offsetExpr, opEnd)
	elemSec := section(9, vec(append(append(u32(0), offsetExpr...), vec(u32(0))...)))

	dataBytes := []byte("hi")
	dataPayload := append(u32(0), offsetExpr...)
	dataPayload = append(dataPayload, u32(uint32(len(dataBytes)))...)
	dataPayload = append(dataPayload, dataBytes...)
	dataSec := section(11, vec(dataPayload))

	codeSec := section(10, vec(code(nil, []byte{opEnd})))

	mod := moduleBytes(typeSec, funcSec, tableSec, memSec, elemSec, codeSec, dataSec)
	decoded, _, err := decodeModule(mod, testLogger())
	require.NoError(t, err)
	require.Len(t, decoded.Tables[0].Elements, 1)
	require.Equal(t, []ir.Index{0}, decoded.Tables[0].Elements[0].Functions)
	require.Len(t, decoded.Memories[0].Data, 1)
	require.Equal(t, []byte("hi"), decoded.Memories[0].Data[0].Bytes)
	_ = i32b
}
