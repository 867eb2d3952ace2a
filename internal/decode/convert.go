package decode

import (
	"math"

	"github.com/tetratelabs/wasmdecode/ir"
)

// Wire-level byte tags not already covered by ir.ValType / ir.ElemType:
// these only ever appear as rejected extensions, so they have no home in
// the ir package itself.
const (
	wireTypeFuncref   = 0x70
	wireTypeExternref = 0x6f
	wireTypeV128      = 0x7b
	wireTypeExnref    = 0x68
	wireTypeFunc      = 0x60
	wireTypeEmptyBlock = 0x40
)

// convertValType maps a wire-level value-type byte to ir.ValType,
// rejecting any type that belongs to a post-MVP extension.
func convertValType(b byte) (ir.ValType, error) {
	switch b {
	case byte(ir.ValTypeI32):
		return ir.ValTypeI32, nil
	case byte(ir.ValTypeI64):
		return ir.ValTypeI64, nil
	case byte(ir.ValTypeF32):
		return ir.ValTypeF32, nil
	case byte(ir.ValTypeF64):
		return ir.ValTypeF64, nil
	case wireTypeV128:
		return 0, unsupported(ExtensionSimd, "value type")
	case wireTypeFuncref, wireTypeExternref:
		return 0, unsupported(ExtensionReferenceTypes, "value type")
	case wireTypeExnref:
		return 0, unsupported(ExtensionExceptionHandling, "value type")
	default:
		return 0, structuralf("invalid value type: %#x", b)
	}
}

// convertElemType maps a wire-level element-type byte to ir.ElemType.
func convertElemType(b byte) (ir.ElemType, error) {
	switch b {
	case wireTypeFuncref:
		return ir.ElemTypeFuncref, nil
	case wireTypeExternref:
		return 0, unsupported(ExtensionReferenceTypes, "table element type")
	case wireTypeExnref:
		return 0, unsupported(ExtensionExceptionHandling, "table element type")
	default:
		return 0, structuralf("invalid element type: %#x", b)
	}
}

// convertBlockTypeValue maps the decoded signed-33-bit block type value to
// an ir.BlockType: -0x40 is the empty signature, -1..-4 are the encoded
// value types, and any non-negative value is a type-section index (a
// multi-value block signature), which this decoder rejects.
func convertBlockTypeValue(v int64) (ir.BlockType, error) {
	if v >= 0 {
		return ir.BlockType{}, unsupported(ExtensionMultiValue, "block type referencing a function type")
	}
	switch v {
	case -0x40:
		return ir.EmptyBlockType, nil
	case -(0x80 - int64(ir.ValTypeI32)):
		return ir.ResultBlockType(ir.ValTypeI32), nil
	case -(0x80 - int64(ir.ValTypeI64)):
		return ir.ResultBlockType(ir.ValTypeI64), nil
	case -(0x80 - int64(ir.ValTypeF32)):
		return ir.ResultBlockType(ir.ValTypeF32), nil
	case -(0x80 - int64(ir.ValTypeF64)):
		return ir.ResultBlockType(ir.ValTypeF64), nil
	default:
		// The low 7 bits of a negative one-byte varint equal the wire
		// value-type byte directly; decode it the same way convertValType
		// would, to get a consistent error for reftype/v128/exnref block
		// results.
		b := byte(v & 0x7f)
		switch b {
		case wireTypeV128:
			return ir.BlockType{}, unsupported(ExtensionSimd, "block type")
		case wireTypeFuncref, wireTypeExternref:
			return ir.BlockType{}, unsupported(ExtensionReferenceTypes, "block type")
		case wireTypeExnref:
			return ir.BlockType{}, unsupported(ExtensionExceptionHandling, "block type")
		default:
			return ir.BlockType{}, structuralf("invalid block type: %d", v)
		}
	}
}

// convertLimits maps a decoded (hasMax, min, max) triple to ir.Limits.
func convertLimits(min uint32, hasMax bool, max uint32) ir.Limits {
	l := ir.Limits{Min: min}
	if hasMax {
		m := max
		l.Max = &m
	}
	return l
}

// convertMemoryType builds an ir.MemoryType, rejecting the memory64
// extension's 64-bit limits flag.
func convertMemoryType(limits ir.Limits, memory64 bool) (ir.MemoryType, error) {
	if memory64 {
		return ir.MemoryType{}, unsupported(ExtensionMemory64, "memory type")
	}
	return ir.MemoryType{Limits: limits}, nil
}

// convertTableType builds an ir.TableType from a decoded element-type byte
// and limits.
func convertTableType(elemTypeByte byte, limits ir.Limits) (ir.TableType, error) {
	et, err := convertElemType(elemTypeByte)
	if err != nil {
		return ir.TableType{}, structural("table type", err)
	}
	return ir.TableType{ElemType: et, Limits: limits}, nil
}

// convertGlobalType builds an ir.GlobalType from a decoded value type and
// mutability flag.
func convertGlobalType(vt ir.ValType, mut bool) ir.GlobalType {
	m := ir.MutabilityConst
	if mut {
		m = ir.MutabilityVar
	}
	return ir.GlobalType{ValType: vt, Mutability: m}
}

// convertMemarg builds an ir.Memarg from a decoded alignment exponent,
// wire-encoded memory index and offset. memIdx comes from the multi-memory
// proposal's flag bit in the alignment field (see decodeMemarg); an MVP
// module always decodes it as 0, so any other value means the module
// targets that extension. offset is rejected when it doesn't fit u32: the
// memory64 proposal widens this field, and the MVP encoding never produces
// such a value on its own, so seeing one here means the module targets
// that extension too.
func convertMemarg(alignExp, memIdx uint32, offset uint64) (ir.Memarg, error) {
	if memIdx != 0 {
		return ir.Memarg{}, unsupported(ExtensionMultiMemory, "memory immediate with non-zero memory index")
	}
	if offset > math.MaxUint32 {
		return ir.Memarg{}, unsupported(ExtensionMemory64, "memory immediate offset")
	}
	return ir.Memarg{AlignExp: uint8(alignExp), Offset: uint32(offset)}, nil
}
