package ir

// Op identifies the shape of an Instr. Opcodes that share an operand shape
// (the two memory ops, the ~120 numeric ops, local/global get-set-tee) are
// collapsed into one Op each, with a secondary op enum (LoadOp, StoreOp,
// NumericOp, LocalOp, GlobalOp) distinguishing the specific instruction —
// this keeps the dispatch table in the lowerer shallow while still giving
// every MVP opcode an exhaustively-matchable representation.
type Op uint8

const (
	OpUnreachable Op = iota
	OpNop
	OpBlock
	OpLoop
	OpIf
	OpElse
	OpEnd
	OpBr
	OpBrIf
	OpBrTable
	OpReturn
	OpCall
	OpCallIndirect
	OpDrop
	OpSelect
	OpLocal  // LocalOp distinguishes get/set/tee
	OpGlobal // GlobalOp distinguishes get/set
	OpLoad
	OpStore
	OpMemorySize
	OpMemoryGrow
	OpConstI32
	OpConstI64
	OpConstF32
	OpConstF64
	OpNumeric
)

// LocalOp distinguishes the three local-variable instructions.
type LocalOp uint8

const (
	LocalOpGet LocalOp = iota
	LocalOpSet
	LocalOpTee
)

// GlobalOp distinguishes the two global-variable instructions.
type GlobalOp uint8

const (
	GlobalOpGet GlobalOp = iota
	GlobalOpSet
)

// LoadOp enumerates the MVP memory load instructions.
type LoadOp uint8

const (
	LoadOpI32Load LoadOp = iota
	LoadOpI64Load
	LoadOpF32Load
	LoadOpF64Load
	LoadOpI32Load8S
	LoadOpI32Load8U
	LoadOpI32Load16S
	LoadOpI32Load16U
	LoadOpI64Load8S
	LoadOpI64Load8U
	LoadOpI64Load16S
	LoadOpI64Load16U
	LoadOpI64Load32S
	LoadOpI64Load32U
)

// StoreOp enumerates the MVP memory store instructions.
type StoreOp uint8

const (
	StoreOpI32Store StoreOp = iota
	StoreOpI64Store
	StoreOpF32Store
	StoreOpF64Store
	StoreOpI32Store8
	StoreOpI32Store16
	StoreOpI64Store8
	StoreOpI64Store16
	StoreOpI64Store32
)

// NumericOp enumerates every MVP numeric instruction that isn't a typed
// constant: comparisons, arithmetic, bitwise ops, shifts, rotates,
// conversions and reinterpretations.
type NumericOp uint8

const (
	NumericOpI32Eqz NumericOp = iota
	NumericOpI32Eq
	NumericOpI32Ne
	NumericOpI32LtS
	NumericOpI32LtU
	NumericOpI32GtS
	NumericOpI32GtU
	NumericOpI32LeS
	NumericOpI32LeU
	NumericOpI32GeS
	NumericOpI32GeU
	NumericOpI64Eqz
	NumericOpI64Eq
	NumericOpI64Ne
	NumericOpI64LtS
	NumericOpI64LtU
	NumericOpI64GtS
	NumericOpI64GtU
	NumericOpI64LeS
	NumericOpI64LeU
	NumericOpI64GeS
	NumericOpI64GeU
	NumericOpF32Eq
	NumericOpF32Ne
	NumericOpF32Lt
	NumericOpF32Gt
	NumericOpF32Le
	NumericOpF32Ge
	NumericOpF64Eq
	NumericOpF64Ne
	NumericOpF64Lt
	NumericOpF64Gt
	NumericOpF64Le
	NumericOpF64Ge
	NumericOpI32Clz
	NumericOpI32Ctz
	NumericOpI32Popcnt
	NumericOpI32Add
	NumericOpI32Sub
	NumericOpI32Mul
	NumericOpI32DivS
	NumericOpI32DivU
	NumericOpI32RemS
	NumericOpI32RemU
	NumericOpI32And
	NumericOpI32Or
	NumericOpI32Xor
	NumericOpI32Shl
	NumericOpI32ShrS
	NumericOpI32ShrU
	NumericOpI32Rotl
	NumericOpI32Rotr
	NumericOpI64Clz
	NumericOpI64Ctz
	NumericOpI64Popcnt
	NumericOpI64Add
	NumericOpI64Sub
	NumericOpI64Mul
	NumericOpI64DivS
	NumericOpI64DivU
	NumericOpI64RemS
	NumericOpI64RemU
	NumericOpI64And
	NumericOpI64Or
	NumericOpI64Xor
	NumericOpI64Shl
	NumericOpI64ShrS
	NumericOpI64ShrU
	NumericOpI64Rotl
	NumericOpI64Rotr
	NumericOpF32Abs
	NumericOpF32Neg
	NumericOpF32Ceil
	NumericOpF32Floor
	NumericOpF32Trunc
	NumericOpF32Nearest
	NumericOpF32Sqrt
	NumericOpF32Add
	NumericOpF32Sub
	NumericOpF32Mul
	NumericOpF32Div
	NumericOpF32Min
	NumericOpF32Max
	NumericOpF32Copysign
	NumericOpF64Abs
	NumericOpF64Neg
	NumericOpF64Ceil
	NumericOpF64Floor
	NumericOpF64Trunc
	NumericOpF64Nearest
	NumericOpF64Sqrt
	NumericOpF64Add
	NumericOpF64Sub
	NumericOpF64Mul
	NumericOpF64Div
	NumericOpF64Min
	NumericOpF64Max
	NumericOpF64Copysign
	NumericOpI32WrapI64
	NumericOpI32TruncF32S
	NumericOpI32TruncF32U
	NumericOpI32TruncF64S
	NumericOpI32TruncF64U
	NumericOpI64ExtendI32S
	NumericOpI64ExtendI32U
	NumericOpI64TruncF32S
	NumericOpI64TruncF32U
	NumericOpI64TruncF64S
	NumericOpI64TruncF64U
	NumericOpF32ConvertI32S
	NumericOpF32ConvertI32U
	NumericOpF32ConvertI64S
	NumericOpF32ConvertI64U
	NumericOpF32DemoteF64
	NumericOpF64ConvertI32S
	NumericOpF64ConvertI32U
	NumericOpF64ConvertI64S
	NumericOpF64ConvertI64U
	NumericOpF64PromoteF32
	NumericOpI32ReinterpretF32
	NumericOpI64ReinterpretF64
	NumericOpF32ReinterpretI32
	NumericOpF64ReinterpretI64
)

// Instr is a single lowered instruction. Only the fields relevant to Op
// are populated; this mirrors the "shared-shape variants" design called
// out for the instruction IR: Load/Store carry an op + Memarg, Numeric
// carries just an op, Local/Global carry an op + index.
type Instr struct {
	Op Op

	// OpBlock, OpLoop, OpIf
	Block BlockType

	// OpBr, OpBrIf: the target label. OpBrTable: the default label.
	Label Index

	// OpBrTable: the ordered list of non-default target labels.
	Targets []Index

	// OpCall: the called function. OpCallIndirect: the table holding the
	// indirect call target.
	FuncIdx  Index
	TableIdx Index

	// OpCallIndirect: the expected callee signature.
	TypeIdx Index

	// OpLocal
	LocalOp  LocalOp
	LocalIdx Index

	// OpGlobal
	GlobalOp  GlobalOp
	GlobalIdx Index

	// OpLoad / OpStore
	LoadOp  LoadOp
	StoreOp StoreOp
	Memarg  Memarg

	// OpNumeric
	NumericOp NumericOp

	// OpConstI32 / OpConstI64 / OpConstF32 / OpConstF64
	ConstI32 int32
	ConstI64 int64
	ConstF32 F32
	ConstF64 F64
}

// Unreachable constructs an `unreachable` instruction.
func Unreachable() Instr { return Instr{Op: OpUnreachable} }

// Nop constructs a `nop` instruction.
func Nop() Instr { return Instr{Op: OpNop} }

// End constructs an `end` instruction.
func End() Instr { return Instr{Op: OpEnd} }

// Block constructs a `block` instruction with the given signature.
func Block(bt BlockType) Instr { return Instr{Op: OpBlock, Block: bt} }

// Loop constructs a `loop` instruction with the given signature.
func Loop(bt BlockType) Instr { return Instr{Op: OpLoop, Block: bt} }

// If constructs an `if` instruction with the given signature.
func If(bt BlockType) Instr { return Instr{Op: OpIf, Block: bt} }

// Else constructs an `else` instruction.
func Else() Instr { return Instr{Op: OpElse} }

// Br constructs a `br` instruction targeting label.
func Br(label Index) Instr { return Instr{Op: OpBr, Label: label} }

// BrIf constructs a `br_if` instruction targeting label.
func BrIf(label Index) Instr { return Instr{Op: OpBrIf, Label: label} }

// BrTable constructs a `br_table` instruction.
func BrTable(targets []Index, defaultLabel Index) Instr {
	return Instr{Op: OpBrTable, Targets: targets, Label: defaultLabel}
}

// Return constructs a `return` instruction.
func Return() Instr { return Instr{Op: OpReturn} }

// Call constructs a `call` instruction.
func Call(funcIdx Index) Instr { return Instr{Op: OpCall, FuncIdx: funcIdx} }

// CallIndirect constructs a `call_indirect` instruction.
func CallIndirect(typeIdx, tableIdx Index) Instr {
	return Instr{Op: OpCallIndirect, TypeIdx: typeIdx, TableIdx: tableIdx}
}

// Drop constructs a `drop` instruction.
func Drop() Instr { return Instr{Op: OpDrop} }

// Select constructs a `select` instruction.
func Select() Instr { return Instr{Op: OpSelect} }

// LocalGet, LocalSet and LocalTee construct the three local-variable
// instructions.
func LocalGet(idx Index) Instr { return Instr{Op: OpLocal, LocalOp: LocalOpGet, LocalIdx: idx} }
func LocalSet(idx Index) Instr { return Instr{Op: OpLocal, LocalOp: LocalOpSet, LocalIdx: idx} }
func LocalTee(idx Index) Instr { return Instr{Op: OpLocal, LocalOp: LocalOpTee, LocalIdx: idx} }

// GlobalGet and GlobalSet construct the two global-variable instructions.
func GlobalGet(idx Index) Instr { return Instr{Op: OpGlobal, GlobalOp: GlobalOpGet, GlobalIdx: idx} }
func GlobalSet(idx Index) Instr { return Instr{Op: OpGlobal, GlobalOp: GlobalOpSet, GlobalIdx: idx} }

// Load constructs a typed memory load instruction.
func Load(op LoadOp, m Memarg) Instr { return Instr{Op: OpLoad, LoadOp: op, Memarg: m} }

// Store constructs a typed memory store instruction.
func Store(op StoreOp, m Memarg) Instr { return Instr{Op: OpStore, StoreOp: op, Memarg: m} }

// MemorySize constructs a `memory.size` instruction (always memory 0 in
// the MVP).
func MemorySize() Instr { return Instr{Op: OpMemorySize} }

// MemoryGrow constructs a `memory.grow` instruction (always memory 0 in
// the MVP).
func MemoryGrow() Instr { return Instr{Op: OpMemoryGrow} }

// ConstI32 constructs an `i32.const` instruction.
func ConstI32(v int32) Instr { return Instr{Op: OpConstI32, ConstI32: v} }

// ConstI64 constructs an `i64.const` instruction.
func ConstI64(v int64) Instr { return Instr{Op: OpConstI64, ConstI64: v} }

// ConstF32 constructs an `f32.const` instruction from a raw bit pattern.
func ConstF32(bits uint32) Instr { return Instr{Op: OpConstF32, ConstF32: F32{Bits: bits}} }

// ConstF64 constructs an `f64.const` instruction from a raw bit pattern.
func ConstF64(bits uint64) Instr { return Instr{Op: OpConstF64, ConstF64: F64{Bits: bits}} }

// Numeric constructs a numeric instruction carrying no operands beyond its
// op code.
func Numeric(op NumericOp) Instr { return Instr{Op: OpNumeric, NumericOp: op} }
