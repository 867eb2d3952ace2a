package ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wasmdecode/ir"
)

func TestInstrConstructorsSetOp(t *testing.T) {
	require.Equal(t, ir.OpUnreachable, ir.Unreachable().Op)
	require.Equal(t, ir.OpNop, ir.Nop().Op)
	require.Equal(t, ir.OpEnd, ir.End().Op)
	require.Equal(t, ir.OpReturn, ir.Return().Op)
	require.Equal(t, ir.OpDrop, ir.Drop().Op)
	require.Equal(t, ir.OpSelect, ir.Select().Op)
}

func TestBlockInstrsCarrySignature(t *testing.T) {
	bt := ir.ResultBlockType(ir.ValTypeI32)
	require.Equal(t, bt, ir.Block(bt).Block)
	require.Equal(t, bt, ir.Loop(bt).Block)
	require.Equal(t, bt, ir.If(bt).Block)
}

func TestBranchInstrs(t *testing.T) {
	br := ir.Br(3)
	require.Equal(t, ir.Index(3), br.Label)

	brTable := ir.BrTable([]ir.Index{1, 2, 3}, 9)
	require.Equal(t, []ir.Index{1, 2, 3}, brTable.Targets)
	require.Equal(t, ir.Index(9), brTable.Label)
}

func TestCallInstrs(t *testing.T) {
	call := ir.Call(5)
	require.Equal(t, ir.Index(5), call.FuncIdx)

	ci := ir.CallIndirect(2, 0)
	require.Equal(t, ir.Index(2), ci.TypeIdx)
	require.Equal(t, ir.Index(0), ci.TableIdx)
}

func TestLocalAndGlobalInstrs(t *testing.T) {
	require.Equal(t, ir.LocalOpGet, ir.LocalGet(1).LocalOp)
	require.Equal(t, ir.LocalOpSet, ir.LocalSet(1).LocalOp)
	require.Equal(t, ir.LocalOpTee, ir.LocalTee(1).LocalOp)
	require.Equal(t, ir.GlobalOpGet, ir.GlobalGet(1).GlobalOp)
	require.Equal(t, ir.GlobalOpSet, ir.GlobalSet(1).GlobalOp)
}

func TestLoadStoreInstrsCarryMemarg(t *testing.T) {
	m := ir.Memarg{AlignExp: 2, Offset: 16}
	load := ir.Load(ir.LoadOpI32Load, m)
	require.Equal(t, m, load.Memarg)
	require.Equal(t, ir.LoadOpI32Load, load.LoadOp)

	store := ir.Store(ir.StoreOpI64Store, m)
	require.Equal(t, m, store.Memarg)
	require.Equal(t, ir.StoreOpI64Store, store.StoreOp)
}

func TestConstInstrs(t *testing.T) {
	require.Equal(t, int32(-1), ir.ConstI32(-1).ConstI32)
	require.Equal(t, int64(-1), ir.ConstI64(-1).ConstI64)
	require.Equal(t, ir.F32{Bits: 0x40490fdb}, ir.ConstF32(0x40490fdb).ConstF32)
	require.Equal(t, ir.F64{Bits: 0x400921fb54442d18}, ir.ConstF64(0x400921fb54442d18).ConstF64)
}

func TestNumericInstr(t *testing.T) {
	n := ir.Numeric(ir.NumericOpI32Add)
	require.Equal(t, ir.OpNumeric, n.Op)
	require.Equal(t, ir.NumericOpI32Add, n.NumericOp)
}
