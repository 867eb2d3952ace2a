package decode

import "github.com/tetratelabs/wasmdecode/ir"

// decodeExpr lowers one Wasm expression — a function body, or the constant
// initializer of a global, element, or data segment — into an ir.Instr
// sequence. Expressions are delimited structurally, not by length: decoding
// continues until the `end` that closes the expression's own implicit
// block is consumed, tracking nested block/loop/if the same way.
//
// types resolves the type index of call_indirect's signature; every other
// index in a lowered instruction is stored as decoded, unchecked, since
// resolving it requires knowledge (live function/table/global counts) this
// decoder intentionally leaves to a later validation pass.
func decodeExpr(r *reader, types *typeTable) ([]ir.Instr, error) {
	var instrs []ir.Instr
	depth := 0
	for {
		op, err := r.byte()
		if err != nil {
			return nil, structural("instruction opcode", err)
		}
		instr, delta, err := decodeOneInstr(r, types, op)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, instr)
		depth += delta
		if depth < 0 {
			return instrs, nil
		}
	}
}

// decodeOneInstr decodes a single instruction starting after its opcode
// byte has already been consumed, returning the lowered instruction and
// the block-nesting depth delta it contributes (+1 for block/loop/if, -1
// for end, 0 otherwise).
func decodeOneInstr(r *reader, types *typeTable, op byte) (ir.Instr, int, error) {
	switch op {
	case opUnreachable:
		return ir.Unreachable(), 0, nil
	case opNop:
		return ir.Nop(), 0, nil
	case opBlock, opLoop, opIf:
		raw, err := r.i33()
		if err != nil {
			return ir.Instr{}, 0, structural("block type", err)
		}
		bt, err := convertBlockTypeValue(raw)
		if err != nil {
			return ir.Instr{}, 0, err
		}
		switch op {
		case opBlock:
			return ir.Block(bt), 1, nil
		case opLoop:
			return ir.Loop(bt), 1, nil
		default:
			return ir.If(bt), 1, nil
		}
	case opElse:
		return ir.Else(), 0, nil
	case opEnd:
		return ir.End(), -1, nil
	case opBr:
		label, err := r.u32()
		if err != nil {
			return ir.Instr{}, 0, structural("br label", err)
		}
		return ir.Br(label), 0, nil
	case opBrIf:
		label, err := r.u32()
		if err != nil {
			return ir.Instr{}, 0, structural("br_if label", err)
		}
		return ir.BrIf(label), 0, nil
	case opBrTable:
		return decodeBrTable(r)
	case opReturn:
		return ir.Return(), 0, nil
	case opCall:
		idx, err := r.u32()
		if err != nil {
			return ir.Instr{}, 0, structural("call function index", err)
		}
		return ir.Call(idx), 0, nil
	case opCallIndirect:
		typeIdx, err := r.u32()
		if err != nil {
			return ir.Instr{}, 0, structural("call_indirect type index", err)
		}
		if _, err := types.get(typeIdx); err != nil {
			return ir.Instr{}, 0, structural("call_indirect type index", err)
		}
		reserved, err := r.byte()
		if err != nil {
			return ir.Instr{}, 0, structural("call_indirect table index", err)
		}
		if reserved != 0 {
			return ir.Instr{}, 0, unsupported(ExtensionReferenceTypes, "call_indirect on a non-zero table")
		}
		return ir.CallIndirect(typeIdx, 0), 0, nil
	case opDrop:
		return ir.Drop(), 0, nil
	case opSelect:
		return ir.Select(), 0, nil
	case opLocalGet:
		idx, err := r.u32()
		return ir.LocalGet(idx), 0, structural("local.get index", err)
	case opLocalSet:
		idx, err := r.u32()
		return ir.LocalSet(idx), 0, structural("local.set index", err)
	case opLocalTee:
		idx, err := r.u32()
		return ir.LocalTee(idx), 0, structural("local.tee index", err)
	case opGlobalGet:
		idx, err := r.u32()
		return ir.GlobalGet(idx), 0, structural("global.get index", err)
	case opGlobalSet:
		idx, err := r.u32()
		return ir.GlobalSet(idx), 0, structural("global.set index", err)
	case opMemorySize:
		reserved, err := r.byte()
		if err != nil {
			return ir.Instr{}, 0, structural("memory.size reserved byte", err)
		}
		if reserved != 0 {
			return ir.Instr{}, 0, unsupported(ExtensionMultiMemory, "memory.size on a non-zero memory")
		}
		return ir.MemorySize(), 0, nil
	case opMemoryGrow:
		reserved, err := r.byte()
		if err != nil {
			return ir.Instr{}, 0, structural("memory.grow reserved byte", err)
		}
		if reserved != 0 {
			return ir.Instr{}, 0, unsupported(ExtensionMultiMemory, "memory.grow on a non-zero memory")
		}
		return ir.MemoryGrow(), 0, nil
	case opI32Const:
		v, err := r.i32()
		return ir.ConstI32(v), 0, structural("i32.const", err)
	case opI64Const:
		v, err := r.i64()
		return ir.ConstI64(v), 0, structural("i64.const", err)
	case opF32Const:
		bits, err := r.f32()
		return ir.ConstF32(bits), 0, structural("f32.const", err)
	case opF64Const:
		bits, err := r.f64()
		return ir.ConstF64(bits), 0, structural("f64.const", err)
	case opI32Extend8S, opI32Extend16S, opI64Extend8S, opI64Extend16S, opI64Extend32S:
		return ir.Instr{}, 0, unsupported(ExtensionSignExtensionOps, "instruction")
	case opRefNull, opRefIsNull, opRefFunc:
		return ir.Instr{}, 0, unsupported(ExtensionReferenceTypes, "instruction")
	case opPrefixTrunc:
		return decodeTruncPrefix(r)
	case opPrefixSimd:
		return ir.Instr{}, 0, unsupported(ExtensionSimd, "instruction")
	case opPrefixAtomic:
		return ir.Instr{}, 0, unsupported(ExtensionThreadsAtomics, "instruction")
	}

	if numOp, ok := numericOpFor(op); ok {
		return ir.Numeric(numOp), 0, nil
	}
	if loadOp, ok := loadOpFor(op); ok {
		return decodeLoad(r, loadOp)
	}
	if storeOp, ok := storeOpFor(op); ok {
		return decodeStore(r, storeOp)
	}

	return ir.Instr{}, 0, structuralf("unknown opcode: %#x", op)
}

func decodeBrTable(r *reader) (ir.Instr, int, error) {
	count, err := r.u32()
	if err != nil {
		return ir.Instr{}, 0, structural("br_table target count", err)
	}
	targets := make([]ir.Index, 0, count)
	for i := uint32(0); i < count; i++ {
		t, err := r.u32()
		if err != nil {
			return ir.Instr{}, 0, structural("br_table target", err)
		}
		targets = append(targets, t)
	}
	def, err := r.u32()
	if err != nil {
		return ir.Instr{}, 0, structural("br_table default target", err)
	}
	return ir.BrTable(targets, def), 0, nil
}

func decodeLoad(r *reader, op ir.LoadOp) (ir.Instr, int, error) {
	align, memIdx, offset, err := decodeMemarg(r)
	if err != nil {
		return ir.Instr{}, 0, err
	}
	m, err := convertMemarg(align, memIdx, offset)
	if err != nil {
		return ir.Instr{}, 0, err
	}
	return ir.Load(op, m), 0, nil
}

func decodeStore(r *reader, op ir.StoreOp) (ir.Instr, int, error) {
	align, memIdx, offset, err := decodeMemarg(r)
	if err != nil {
		return ir.Instr{}, 0, err
	}
	m, err := convertMemarg(align, memIdx, offset)
	if err != nil {
		return ir.Instr{}, 0, err
	}
	return ir.Store(op, m), 0, nil
}

// memargMemIdxFlag is the multi-memory proposal's bit in the alignment
// field signaling that an explicit memory index immediately follows,
// instead of the implicit memory 0 every MVP load/store targets.
const memargMemIdxFlag = 0x40

// decodeMemarg reads a load/store instruction's (align, [memidx], offset)
// immediate. offset is read wide (u64) rather than u32 so an
// over-width value seen in the wild decodes successfully here and is
// diagnosed by convertMemarg as the memory64 extension, rather than
// failing earlier as a generic varint overflow.
func decodeMemarg(r *reader) (align, memIdx uint32, offset uint64, err error) {
	flags, err := r.u32()
	if err != nil {
		return 0, 0, 0, structural("memarg alignment", err)
	}
	align = flags
	if flags&memargMemIdxFlag != 0 {
		align = flags &^ memargMemIdxFlag
		memIdx, err = r.u32()
		if err != nil {
			return 0, 0, 0, structural("memarg memory index", err)
		}
	}
	offset, err = r.u64()
	if err != nil {
		return 0, 0, 0, structural("memarg offset", err)
	}
	return align, memIdx, offset, nil
}

// decodeTruncPrefix handles the 0xfc prefix byte, shared by the
// non-trapping float-to-int conversions (sub-opcodes 0-7) and the bulk
// memory operations (sub-opcodes 8 and up) proposals. This decoder
// supports neither, but still parses the sub-opcode so the error names
// the right extension.
func decodeTruncPrefix(r *reader) (ir.Instr, int, error) {
	sub, err := r.u32()
	if err != nil {
		return ir.Instr{}, 0, structural("0xfc sub-opcode", err)
	}
	if sub <= 7 {
		return ir.Instr{}, 0, unsupported(ExtensionNontrappingFloatToInt, "instruction")
	}
	return ir.Instr{}, 0, unsupported(ExtensionBulkMemoryOperations, "instruction")
}

func numericOpFor(op byte) (ir.NumericOp, bool) {
	switch op {
	case opI32Eqz:
		return ir.NumericOpI32Eqz, true
	case opI32Eq:
		return ir.NumericOpI32Eq, true
	case opI32Ne:
		return ir.NumericOpI32Ne, true
	case opI32LtS:
		return ir.NumericOpI32LtS, true
	case opI32LtU:
		return ir.NumericOpI32LtU, true
	case opI32GtS:
		return ir.NumericOpI32GtS, true
	case opI32GtU:
		return ir.NumericOpI32GtU, true
	case opI32LeS:
		return ir.NumericOpI32LeS, true
	case opI32LeU:
		return ir.NumericOpI32LeU, true
	case opI32GeS:
		return ir.NumericOpI32GeS, true
	case opI32GeU:
		return ir.NumericOpI32GeU, true
	case opI64Eqz:
		return ir.NumericOpI64Eqz, true
	case opI64Eq:
		return ir.NumericOpI64Eq, true
	case opI64Ne:
		return ir.NumericOpI64Ne, true
	case opI64LtS:
		return ir.NumericOpI64LtS, true
	case opI64LtU:
		return ir.NumericOpI64LtU, true
	case opI64GtS:
		return ir.NumericOpI64GtS, true
	case opI64GtU:
		return ir.NumericOpI64GtU, true
	case opI64LeS:
		return ir.NumericOpI64LeS, true
	case opI64LeU:
		return ir.NumericOpI64LeU, true
	case opI64GeS:
		return ir.NumericOpI64GeS, true
	case opI64GeU:
		return ir.NumericOpI64GeU, true
	case opF32Eq:
		return ir.NumericOpF32Eq, true
	case opF32Ne:
		return ir.NumericOpF32Ne, true
	case opF32Lt:
		return ir.NumericOpF32Lt, true
	case opF32Gt:
		return ir.NumericOpF32Gt, true
	case opF32Le:
		return ir.NumericOpF32Le, true
	case opF32Ge:
		return ir.NumericOpF32Ge, true
	case opF64Eq:
		return ir.NumericOpF64Eq, true
	case opF64Ne:
		return ir.NumericOpF64Ne, true
	case opF64Lt:
		return ir.NumericOpF64Lt, true
	case opF64Gt:
		return ir.NumericOpF64Gt, true
	case opF64Le:
		return ir.NumericOpF64Le, true
	case opF64Ge:
		return ir.NumericOpF64Ge, true
	case opI32Clz:
		return ir.NumericOpI32Clz, true
	case opI32Ctz:
		return ir.NumericOpI32Ctz, true
	case opI32Popcnt:
		return ir.NumericOpI32Popcnt, true
	case opI32Add:
		return ir.NumericOpI32Add, true
	case opI32Sub:
		return ir.NumericOpI32Sub, true
	case opI32Mul:
		return ir.NumericOpI32Mul, true
	case opI32DivS:
		return ir.NumericOpI32DivS, true
	case opI32DivU:
		return ir.NumericOpI32DivU, true
	case opI32RemS:
		return ir.NumericOpI32RemS, true
	case opI32RemU:
		return ir.NumericOpI32RemU, true
	case opI32And:
		return ir.NumericOpI32And, true
	case opI32Or:
		return ir.NumericOpI32Or, true
	case opI32Xor:
		return ir.NumericOpI32Xor, true
	case opI32Shl:
		return ir.NumericOpI32Shl, true
	case opI32ShrS:
		return ir.NumericOpI32ShrS, true
	case opI32ShrU:
		return ir.NumericOpI32ShrU, true
	case opI32Rotl:
		return ir.NumericOpI32Rotl, true
	case opI32Rotr:
		return ir.NumericOpI32Rotr, true
	case opI64Clz:
		return ir.NumericOpI64Clz, true
	case opI64Ctz:
		return ir.NumericOpI64Ctz, true
	case opI64Popcnt:
		return ir.NumericOpI64Popcnt, true
	case opI64Add:
		return ir.NumericOpI64Add, true
	case opI64Sub:
		return ir.NumericOpI64Sub, true
	case opI64Mul:
		return ir.NumericOpI64Mul, true
	case opI64DivS:
		return ir.NumericOpI64DivS, true
	case opI64DivU:
		return ir.NumericOpI64DivU, true
	case opI64RemS:
		return ir.NumericOpI64RemS, true
	case opI64RemU:
		return ir.NumericOpI64RemU, true
	case opI64And:
		return ir.NumericOpI64And, true
	case opI64Or:
		return ir.NumericOpI64Or, true
	case opI64Xor:
		return ir.NumericOpI64Xor, true
	case opI64Shl:
		return ir.NumericOpI64Shl, true
	case opI64ShrS:
		return ir.NumericOpI64ShrS, true
	case opI64ShrU:
		return ir.NumericOpI64ShrU, true
	case opI64Rotl:
		return ir.NumericOpI64Rotl, true
	case opI64Rotr:
		return ir.NumericOpI64Rotr, true
	case opF32Abs:
		return ir.NumericOpF32Abs, true
	case opF32Neg:
		return ir.NumericOpF32Neg, true
	case opF32Ceil:
		return ir.NumericOpF32Ceil, true
	case opF32Floor:
		return ir.NumericOpF32Floor, true
	case opF32Trunc:
		return ir.NumericOpF32Trunc, true
	case opF32Nearest:
		return ir.NumericOpF32Nearest, true
	case opF32Sqrt:
		return ir.NumericOpF32Sqrt, true
	case opF32Add:
		return ir.NumericOpF32Add, true
	case opF32Sub:
		return ir.NumericOpF32Sub, true
	case opF32Mul:
		return ir.NumericOpF32Mul, true
	case opF32Div:
		return ir.NumericOpF32Div, true
	case opF32Min:
		return ir.NumericOpF32Min, true
	case opF32Max:
		return ir.NumericOpF32Max, true
	case opF32Copysign:
		return ir.NumericOpF32Copysign, true
	case opF64Abs:
		return ir.NumericOpF64Abs, true
	case opF64Neg:
		return ir.NumericOpF64Neg, true
	case opF64Ceil:
		return ir.NumericOpF64Ceil, true
	case opF64Floor:
		return ir.NumericOpF64Floor, true
	case opF64Trunc:
		return ir.NumericOpF64Trunc, true
	case opF64Nearest:
		return ir.NumericOpF64Nearest, true
	case opF64Sqrt:
		return ir.NumericOpF64Sqrt, true
	case opF64Add:
		return ir.NumericOpF64Add, true
	case opF64Sub:
		return ir.NumericOpF64Sub, true
	case opF64Mul:
		return ir.NumericOpF64Mul, true
	case opF64Div:
		return ir.NumericOpF64Div, true
	case opF64Min:
		return ir.NumericOpF64Min, true
	case opF64Max:
		return ir.NumericOpF64Max, true
	case opF64Copysign:
		return ir.NumericOpF64Copysign, true
	case opI32WrapI64:
		return ir.NumericOpI32WrapI64, true
	case opI32TruncF32S:
		return ir.NumericOpI32TruncF32S, true
	case opI32TruncF32U:
		return ir.NumericOpI32TruncF32U, true
	case opI32TruncF64S:
		return ir.NumericOpI32TruncF64S, true
	case opI32TruncF64U:
		return ir.NumericOpI32TruncF64U, true
	case opI64ExtendI32S:
		return ir.NumericOpI64ExtendI32S, true
	case opI64ExtendI32U:
		return ir.NumericOpI64ExtendI32U, true
	case opI64TruncF32S:
		return ir.NumericOpI64TruncF32S, true
	case opI64TruncF32U:
		return ir.NumericOpI64TruncF32U, true
	case opI64TruncF64S:
		return ir.NumericOpI64TruncF64S, true
	case opI64TruncF64U:
		return ir.NumericOpI64TruncF64U, true
	case opF32ConvertI32S:
		return ir.NumericOpF32ConvertI32S, true
	case opF32ConvertI32U:
		return ir.NumericOpF32ConvertI32U, true
	case opF32ConvertI64S:
		return ir.NumericOpF32ConvertI64S, true
	case opF32ConvertI64U:
		return ir.NumericOpF32ConvertI64U, true
	case opF32DemoteF64:
		return ir.NumericOpF32DemoteF64, true
	case opF64ConvertI32S:
		return ir.NumericOpF64ConvertI32S, true
	case opF64ConvertI32U:
		return ir.NumericOpF64ConvertI32U, true
	case opF64ConvertI64S:
		return ir.NumericOpF64ConvertI64S, true
	case opF64ConvertI64U:
		return ir.NumericOpF64ConvertI64U, true
	case opF64PromoteF32:
		return ir.NumericOpF64PromoteF32, true
	case opI32ReinterpretF32:
		return ir.NumericOpI32ReinterpretF32, true
	case opI64ReinterpretF64:
		return ir.NumericOpI64ReinterpretF64, true
	case opF32ReinterpretI32:
		return ir.NumericOpF32ReinterpretI32, true
	case opF64ReinterpretI64:
		return ir.NumericOpF64ReinterpretI64, true
	default:
		return 0, false
	}
}

func loadOpFor(op byte) (ir.LoadOp, bool) {
	switch op {
	case opI32Load:
		return ir.LoadOpI32Load, true
	case opI64Load:
		return ir.LoadOpI64Load, true
	case opF32Load:
		return ir.LoadOpF32Load, true
	case opF64Load:
		return ir.LoadOpF64Load, true
	case opI32Load8S:
		return ir.LoadOpI32Load8S, true
	case opI32Load8U:
		return ir.LoadOpI32Load8U, true
	case opI32Load16S:
		return ir.LoadOpI32Load16S, true
	case opI32Load16U:
		return ir.LoadOpI32Load16U, true
	case opI64Load8S:
		return ir.LoadOpI64Load8S, true
	case opI64Load8U:
		return ir.LoadOpI64Load8U, true
	case opI64Load16S:
		return ir.LoadOpI64Load16S, true
	case opI64Load16U:
		return ir.LoadOpI64Load16U, true
	case opI64Load32S:
		return ir.LoadOpI64Load32S, true
	case opI64Load32U:
		return ir.LoadOpI64Load32U, true
	default:
		return 0, false
	}
}

func storeOpFor(op byte) (ir.StoreOp, bool) {
	switch op {
	case opI32Store:
		return ir.StoreOpI32Store, true
	case opI64Store:
		return ir.StoreOpI64Store, true
	case opF32Store:
		return ir.StoreOpF32Store, true
	case opF64Store:
		return ir.StoreOpF64Store, true
	case opI32Store8:
		return ir.StoreOpI32Store8, true
	case opI32Store16:
		return ir.StoreOpI32Store16, true
	case opI64Store8:
		return ir.StoreOpI64Store8, true
	case opI64Store16:
		return ir.StoreOpI64Store16, true
	case opI64Store32:
		return ir.StoreOpI64Store32, true
	default:
		return 0, false
	}
}
