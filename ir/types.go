// Package ir is the in-memory intermediate representation produced by the
// Wasm decoder: a fully typed Module, cross-linked by numeric index, plus
// the primitive value types that make it up.
//
// The wire-level byte values for ValType, ElemType and section tags are
// reused directly as the IR's constant values (as wazero's api.ValueType
// does), since Wasm's value-type encoding is already a small, stable,
// one-byte enumeration and carrying it through avoids a redundant mapping
// table.
package ir

import "fmt"

// Index is a zero-based index into one of a Module's vectors (types,
// functions, tables, memories, globals, locals, labels).
type Index = uint32

// ValType is one of the four MVP value types.
type ValType byte

const (
	ValTypeI32 ValType = 0x7f
	ValTypeI64 ValType = 0x7e
	ValTypeF32 ValType = 0x7d
	ValTypeF64 ValType = 0x7c
)

func (v ValType) String() string {
	switch v {
	case ValTypeI32:
		return "i32"
	case ValTypeI64:
		return "i64"
	case ValTypeF32:
		return "f32"
	case ValTypeF64:
		return "f64"
	default:
		return fmt.Sprintf("valtype(%#x)", byte(v))
	}
}

// BlockType is the MVP block signature: either no result, or exactly one
// result value type. A full FuncType-as-blocktype reference is rejected by
// the decoder (it requires the MultiValue extension) and therefore never
// appears here.
type BlockType struct {
	HasResult bool
	Result    ValType
}

// EmptyBlockType is the block signature `() -> ()`.
var EmptyBlockType = BlockType{}

// ResultBlockType builds a single-result block signature.
func ResultBlockType(v ValType) BlockType {
	return BlockType{HasResult: true, Result: v}
}

// FunctionType is a function signature. In the MVP, |Results| <= 1.
type FunctionType struct {
	Params  []ValType
	Results []ValType
}

func (f FunctionType) String() string {
	return fmt.Sprintf("%v -> %v", f.Params, f.Results)
}

// Equal reports whether f and o declare the same parameter and result
// types.
func (f FunctionType) Equal(o FunctionType) bool {
	if len(f.Params) != len(o.Params) || len(f.Results) != len(o.Results) {
		return false
	}
	for i, p := range f.Params {
		if p != o.Params[i] {
			return false
		}
	}
	for i, r := range f.Results {
		if r != o.Results[i] {
			return false
		}
	}
	return true
}

// Limits is the (initial, optional maximum) pair shared by MemoryType and
// TableType.
type Limits struct {
	Min uint32
	Max *uint32
}

// MemoryType declares a linear memory's size limits, in units of 64KiB
// pages.
type MemoryType struct {
	Limits Limits
}

// ElemType is a table's element type. MVP only allows funcref.
type ElemType byte

const ElemTypeFuncref ElemType = 0x70

// TableType declares a table's element type and size limits.
type TableType struct {
	ElemType ElemType
	Limits   Limits
}

// Mutability distinguishes constant globals from mutable ones.
type Mutability byte

const (
	MutabilityConst Mutability = 0x00
	MutabilityVar   Mutability = 0x01
)

// GlobalType declares a global's value type and mutability.
type GlobalType struct {
	ValType    ValType
	Mutability Mutability
}

// Memarg is the (alignment, offset) immediate carried by every memory
// load/store instruction.
type Memarg struct {
	AlignExp uint8
	Offset   uint32
}

// F32 wraps a 32-bit float by its raw IEEE-754 bit pattern so that two
// constants with identical bits (including any NaN payload) compare equal
// under ==, instead of using Go's float32 equality (where NaN != NaN).
type F32 struct{ Bits uint32 }

// F64 wraps a 64-bit float by its raw IEEE-754 bit pattern, for the same
// reason as F32.
type F64 struct{ Bits uint64 }
