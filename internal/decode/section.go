package decode

import (
	"github.com/sirupsen/logrus"
	"github.com/tetratelabs/wasmdecode/ir"
)

var magic = [4]byte{0x00, 'a', 's', 'm'}

const mvpVersion uint32 = 1

// codeEntry is one still-undecoded function body, staged by the section
// dispatcher for code.go's parallel pass.
type codeEntry struct {
	funcIdx ir.Index
	offset  uint32
	body    []byte
}

// moduleDecoder carries the state threaded through a single decode of one
// module: the IR under construction, the type table, the accumulating
// offset table, and the raw code bodies staged for parallel decoding.
type moduleDecoder struct {
	mod     *ir.Module
	types   typeTable
	offsets ir.Offsets
	log     *logrus.Logger

	pendingCode []codeEntry
	sectionSeen [12]bool
}

// decodeModule parses a complete Wasm binary module, returning the
// decoded IR and its byte-offset side table.
func decodeModule(data []byte, log *logrus.Logger) (*ir.Module, *ir.Offsets, error) {
	r := newReader(data)

	var gotMagic [4]byte
	for i := range gotMagic {
		b, err := r.byte()
		if err != nil {
			return nil, nil, structural("magic header", err)
		}
		gotMagic[i] = b
	}
	if gotMagic != magic {
		return nil, nil, structuralf("not a Wasm module: bad magic header %v", gotMagic)
	}
	version, err := r.u32LE()
	if err != nil {
		return nil, nil, structural("version header", err)
	}
	if version != mvpVersion {
		return nil, nil, structuralf("unsupported binary version: %d", version)
	}

	d := &moduleDecoder{mod: &ir.Module{}, log: log}

	lastTag := -1
	for !r.atEnd() {
		id, err := r.byte()
		if err != nil {
			return nil, nil, structural("section id", err)
		}
		size, err := r.u32()
		if err != nil {
			return nil, nil, structural("section size", err)
		}
		sectionOffset := r.offset()
		payload, err := r.sub(size)
		if err != nil {
			return nil, nil, structural("section payload", err)
		}

		tag := ir.SectionTag(id)
		if id != byte(ir.SectionTagCustom) {
			if id == byte(ir.SectionTagDataCount) {
				return nil, nil, unsupported(ExtensionBulkMemoryOperations, "data count section")
			}
			if int(id) >= len(d.sectionSeen) {
				return nil, nil, structuralf("unknown section id: %d", id)
			}
			if int(id) <= lastTag {
				return nil, nil, structuralf("section %s out of canonical order", tag)
			}
			if d.sectionSeen[id] {
				return nil, nil, structuralf("duplicate %s section", tag)
			}
			d.sectionSeen[id] = true
			lastTag = int(id)
		}

		name, err := d.decodeSection(tag, payload, sectionOffset)
		if err != nil {
			return nil, nil, structural("section "+tag.String(), err)
		}
		d.recordSectionOffset(tag, name, sectionOffset)
	}

	if err := decodeCode(d); err != nil {
		return nil, nil, err
	}

	return d.mod, &d.offsets, nil
}

// decodeSection dispatches one section's payload to its decoder. It
// returns the custom section's name when id is SectionTagCustom, for the
// caller to fold into the section's offset-table identity.
func (d *moduleDecoder) decodeSection(tag ir.SectionTag, payload *reader, offset uint32) (string, error) {
	switch tag {
	case ir.SectionTagCustom:
		return d.decodeCustomSection(payload, tag)
	case ir.SectionTagType:
		return "", d.decodeTypeSection(payload)
	case ir.SectionTagImport:
		return "", d.decodeImportSection(payload)
	case ir.SectionTagFunction:
		return "", d.decodeFunctionSection(payload)
	case ir.SectionTagTable:
		return "", d.decodeTableSection(payload)
	case ir.SectionTagMemory:
		return "", d.decodeMemorySection(payload)
	case ir.SectionTagGlobal:
		return "", d.decodeGlobalSection(payload)
	case ir.SectionTagExport:
		return "", d.decodeExportSection(payload)
	case ir.SectionTagStart:
		return "", d.decodeStartSection(payload)
	case ir.SectionTagElement:
		return "", d.decodeElementSection(payload)
	case ir.SectionTagCode:
		return "", d.decodeCodeSectionHeader(payload)
	case ir.SectionTagData:
		return "", d.decodeDataSection(payload)
	default:
		return "", structuralf("unknown section id: %d", tag)
	}
}

func (d *moduleDecoder) decodeCustomSection(payload *reader, _ ir.SectionTag) (string, error) {
	name, err := payload.name()
	if err != nil {
		return "", structural("custom section name", err)
	}
	rest, err := payload.bytes(uint32(payload.len()))
	if err != nil {
		return name, structural("custom section body", err)
	}
	if name == "name" {
		if names, ok := decodeNameSection(rest, d.log); ok {
			if err := d.applyNames(names); err != nil {
				return name, err
			}
			return name, nil
		}
	}
	var after *ir.SectionTag
	if last := d.lastStandardSectionSeen(); last >= 0 {
		t := ir.SectionTag(last)
		after = &t
	}
	d.mod.CustomSections = append(d.mod.CustomSections, ir.RawCustomSection{
		Name:  name,
		Bytes: rest,
		After: after,
	})
	return name, nil
}

func (d *moduleDecoder) lastStandardSectionSeen() int {
	for i := len(d.sectionSeen) - 1; i >= 1; i-- {
		if d.sectionSeen[i] {
			return i
		}
	}
	return -1
}

// applyNames folds a successfully decoded name section into the module.
// Unlike a malformed name section (which degrades to a RawCustomSection,
// see decodeNameSection), a name section that is well-formed but names a
// function index outside the module's function vector is a decode error:
// the bytes are valid, but the reference they make is not.
func (d *moduleDecoder) applyNames(n *decodedNames) error {
	d.mod.Name = n.module
	for idx, name := range n.functions {
		if int(idx) >= len(d.mod.Functions) {
			return indexError("function", idx)
		}
		nm := name
		d.mod.Functions[idx].Name = &nm
	}
	for idx, locals := range n.locals {
		if int(idx) >= len(d.mod.Functions) {
			return indexError("function", idx)
		}
		d.mod.Functions[idx].LocalNames = locals
	}
	return nil
}

func (d *moduleDecoder) decodeTypeSection(r *reader) error {
	count, err := r.u32()
	if err != nil {
		return structural("type count", err)
	}
	if err := d.types.setCapacity(count); err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		form, err := r.byte()
		if err != nil {
			return structural("function type form", err)
		}
		if form != wireTypeFunc {
			return structuralf("invalid function type form: %#x", form)
		}
		params, err := decodeValTypeVec(r)
		if err != nil {
			return structural("function type params", err)
		}
		results, err := decodeValTypeVec(r)
		if err != nil {
			return structural("function type results", err)
		}
		if len(results) > 1 {
			return unsupported(ExtensionMultiValue, "function type with more than one result")
		}
		if err := d.types.add(ir.FunctionType{Params: params, Results: results}); err != nil {
			return err
		}
	}
	d.mod.Types = d.types.types
	return nil
}

func decodeValTypeVec(r *reader) ([]ir.ValType, error) {
	count, err := r.u32()
	if err != nil {
		return nil, structural("count", err)
	}
	out := make([]ir.ValType, 0, count)
	for i := uint32(0); i < count; i++ {
		b, err := r.byte()
		if err != nil {
			return nil, structural("value type", err)
		}
		vt, err := convertValType(b)
		if err != nil {
			return nil, err
		}
		out = append(out, vt)
	}
	return out, nil
}

const (
	importKindFunc   byte = 0
	importKindTable  byte = 1
	importKindMemory byte = 2
	importKindGlobal byte = 3
)

func (d *moduleDecoder) decodeImportSection(r *reader) error {
	count, err := r.u32()
	if err != nil {
		return structural("import count", err)
	}
	for i := uint32(0); i < count; i++ {
		mod, err := r.name()
		if err != nil {
			return structural("import module name", err)
		}
		field, err := r.name()
		if err != nil {
			return structural("import field name", err)
		}
		imp := &ir.Import{Module: mod, Field: field}
		kind, err := r.byte()
		if err != nil {
			return structural("import kind", err)
		}
		switch kind {
		case importKindFunc:
			typeIdx, err := r.u32()
			if err != nil {
				return structural("imported function type index", err)
			}
			ft, err := d.types.get(typeIdx)
			if err != nil {
				return structural("imported function type index", err)
			}
			d.mod.Functions = append(d.mod.Functions, ir.Function{Type: ft, Import: imp})
		case importKindTable:
			tt, err := decodeTableType(r)
			if err != nil {
				return structural("imported table type", err)
			}
			d.mod.Tables = append(d.mod.Tables, ir.Table{Type: tt, Import: imp})
		case importKindMemory:
			mt, err := decodeMemoryType(r)
			if err != nil {
				return structural("imported memory type", err)
			}
			d.mod.Memories = append(d.mod.Memories, ir.Memory{Type: mt, Import: imp})
		case importKindGlobal:
			gt, err := decodeGlobalType(r)
			if err != nil {
				return structural("imported global type", err)
			}
			d.mod.Globals = append(d.mod.Globals, ir.Global{Type: gt, Import: imp})
		default:
			return structuralf("invalid import kind: %#x", kind)
		}
	}
	return nil
}

func decodeLimits(r *reader) (ir.Limits, error) {
	flag, err := r.byte()
	if err != nil {
		return ir.Limits{}, structural("limits flag", err)
	}
	if flag&0x04 != 0 {
		return ir.Limits{}, unsupported(ExtensionMemory64, "limits")
	}
	if flag&0x02 != 0 {
		return ir.Limits{}, unsupported(ExtensionThreadsAtomics, "shared memory limits")
	}
	switch flag {
	case 0x00:
		min, err := r.u32()
		if err != nil {
			return ir.Limits{}, structural("limits minimum", err)
		}
		return ir.Limits{Min: min}, nil
	case 0x01:
		min, err := r.u32()
		if err != nil {
			return ir.Limits{}, structural("limits minimum", err)
		}
		max, err := r.u32()
		if err != nil {
			return ir.Limits{}, structural("limits maximum", err)
		}
		return convertLimits(min, true, max), nil
	default:
		return ir.Limits{}, structuralf("invalid limits flag: %#x", flag)
	}
}

func decodeTableType(r *reader) (ir.TableType, error) {
	elemByte, err := r.byte()
	if err != nil {
		return ir.TableType{}, structural("table element type", err)
	}
	limits, err := decodeLimits(r)
	if err != nil {
		return ir.TableType{}, err
	}
	return convertTableType(elemByte, limits)
}

func decodeMemoryType(r *reader) (ir.MemoryType, error) {
	limits, err := decodeLimits(r)
	if err != nil {
		return ir.MemoryType{}, err
	}
	return convertMemoryType(limits, false)
}

func decodeGlobalType(r *reader) (ir.GlobalType, error) {
	vtByte, err := r.byte()
	if err != nil {
		return ir.GlobalType{}, structural("global value type", err)
	}
	vt, err := convertValType(vtByte)
	if err != nil {
		return ir.GlobalType{}, err
	}
	mutByte, err := r.byte()
	if err != nil {
		return ir.GlobalType{}, structural("global mutability", err)
	}
	if mutByte > 1 {
		return ir.GlobalType{}, structuralf("invalid global mutability: %#x", mutByte)
	}
	return convertGlobalType(vt, mutByte == 1), nil
}

func (d *moduleDecoder) decodeFunctionSection(r *reader) error {
	count, err := r.u32()
	if err != nil {
		return structural("function count", err)
	}
	for i := uint32(0); i < count; i++ {
		typeIdx, err := r.u32()
		if err != nil {
			return structural("function type index", err)
		}
		ft, err := d.types.get(typeIdx)
		if err != nil {
			return structural("function type index", err)
		}
		d.mod.Functions = append(d.mod.Functions, ir.Function{Type: ft})
	}
	return nil
}

func (d *moduleDecoder) decodeTableSection(r *reader) error {
	count, err := r.u32()
	if err != nil {
		return structural("table count", err)
	}
	for i := uint32(0); i < count; i++ {
		tt, err := decodeTableType(r)
		if err != nil {
			return structural("table type", err)
		}
		d.mod.Tables = append(d.mod.Tables, ir.Table{Type: tt})
	}
	return nil
}

func (d *moduleDecoder) decodeMemorySection(r *reader) error {
	count, err := r.u32()
	if err != nil {
		return structural("memory count", err)
	}
	for i := uint32(0); i < count; i++ {
		mt, err := decodeMemoryType(r)
		if err != nil {
			return structural("memory type", err)
		}
		d.mod.Memories = append(d.mod.Memories, ir.Memory{Type: mt})
	}
	return nil
}

func (d *moduleDecoder) decodeGlobalSection(r *reader) error {
	count, err := r.u32()
	if err != nil {
		return structural("global count", err)
	}
	for i := uint32(0); i < count; i++ {
		gt, err := decodeGlobalType(r)
		if err != nil {
			return structural("global type", err)
		}
		init, err := decodeExpr(r, &d.types)
		if err != nil {
			return structural("global init expression", err)
		}
		d.mod.Globals = append(d.mod.Globals, ir.Global{Type: gt, Init: init})
	}
	return nil
}

const (
	exportKindFunc   byte = 0
	exportKindTable  byte = 1
	exportKindMemory byte = 2
	exportKindGlobal byte = 3
)

func (d *moduleDecoder) decodeExportSection(r *reader) error {
	count, err := r.u32()
	if err != nil {
		return structural("export count", err)
	}
	for i := uint32(0); i < count; i++ {
		name, err := r.name()
		if err != nil {
			return structural("export name", err)
		}
		kind, err := r.byte()
		if err != nil {
			return structural("export kind", err)
		}
		idx, err := r.u32()
		if err != nil {
			return structural("export index", err)
		}
		switch kind {
		case exportKindFunc:
			if int(idx) >= len(d.mod.Functions) {
				return indexError("function", idx)
			}
			d.mod.Functions[idx].Export = append(d.mod.Functions[idx].Export, name)
		case exportKindTable:
			if int(idx) >= len(d.mod.Tables) {
				return indexError("table", idx)
			}
			d.mod.Tables[idx].Export = append(d.mod.Tables[idx].Export, name)
		case exportKindMemory:
			if int(idx) >= len(d.mod.Memories) {
				return indexError("memory", idx)
			}
			d.mod.Memories[idx].Export = append(d.mod.Memories[idx].Export, name)
		case exportKindGlobal:
			if int(idx) >= len(d.mod.Globals) {
				return indexError("global", idx)
			}
			d.mod.Globals[idx].Export = append(d.mod.Globals[idx].Export, name)
		default:
			return structuralf("invalid export kind: %#x", kind)
		}
	}
	return nil
}

func (d *moduleDecoder) decodeStartSection(r *reader) error {
	idx, err := r.u32()
	if err != nil {
		return structural("start function index", err)
	}
	if int(idx) >= len(d.mod.Functions) {
		return indexError("function", idx)
	}
	d.mod.Start = &idx
	return nil
}

// elemKindFuncref is the only elemkind value bulk memory's encoding
// defines for a reference-types-free module: an explicit-table or
// passive/declarative element segment still carries this byte, naming the
// element type the way the table-type byte does.
const elemKindFuncref byte = 0x00

// decodeElementSection reads the element segment vector using the bulk
// memory proposal's flags-prefixed encoding, which is what the Wasm Core
// 1.0 binary format actually specifies (flags=0 happens to be byte
// identical to the pre-bulk-memory draft's implicit-table-0 form, which is
// why a decoder that ignores the flag still "works" for that one case).
// Only active segments targeting a table by funcidx (flags 0x00 and 0x02)
// are supported; passive and declarative segments, and any segment using
// expression-encoded elements, are rejected as the extension that
// introduced them.
func (d *moduleDecoder) decodeElementSection(r *reader) error {
	count, err := r.u32()
	if err != nil {
		return structural("element segment count", err)
	}
	for i := uint32(0); i < count; i++ {
		flags, err := r.u32()
		if err != nil {
			return structural("element segment flags", err)
		}
		switch {
		case flags == 4 || flags == 5 || flags == 6 || flags == 7:
			return unsupported(ExtensionReferenceTypes, "element segment using expression-encoded elements")
		case flags == 1 || flags == 3:
			return unsupported(ExtensionBulkMemoryOperations, "passive or declarative element segment")
		case flags != 0 && flags != 2:
			return structuralf("invalid element segment flags: %d", flags)
		}

		var tableIdx ir.Index
		if flags == 2 {
			tableIdx, err = r.u32()
			if err != nil {
				return structural("element table index", err)
			}
		}
		if int(tableIdx) >= len(d.mod.Tables) {
			return indexError("table", tableIdx)
		}

		offset, err := decodeExpr(r, &d.types)
		if err != nil {
			return structural("element offset expression", err)
		}

		if flags == 2 {
			elemKind, err := r.byte()
			if err != nil {
				return structural("element kind", err)
			}
			if elemKind != elemKindFuncref {
				return unsupported(ExtensionReferenceTypes, "element segment with non-funcref element kind")
			}
		}

		fcount, err := r.u32()
		if err != nil {
			return structural("element function count", err)
		}
		funcs := make([]ir.Index, 0, fcount)
		for j := uint32(0); j < fcount; j++ {
			fi, err := r.u32()
			if err != nil {
				return structural("element function index", err)
			}
			funcs = append(funcs, fi)
		}
		d.mod.Tables[tableIdx].Elements = append(d.mod.Tables[tableIdx].Elements, ir.Element{
			Offset:    offset,
			Functions: funcs,
		})
	}
	return nil
}

// decodeDataSection reads the data segment vector using the bulk memory
// proposal's flags-prefixed encoding (see decodeElementSection). Only
// active segments (flags 0x00 and 0x02) are supported; passive segments
// are rejected as the extension that introduced them.
func (d *moduleDecoder) decodeDataSection(r *reader) error {
	count, err := r.u32()
	if err != nil {
		return structural("data segment count", err)
	}
	for i := uint32(0); i < count; i++ {
		flags, err := r.u32()
		if err != nil {
			return structural("data segment flags", err)
		}
		switch flags {
		case 1:
			return unsupported(ExtensionBulkMemoryOperations, "passive data segment")
		case 0, 2:
		default:
			return structuralf("invalid data segment flags: %d", flags)
		}

		var memIdx ir.Index
		if flags == 2 {
			memIdx, err = r.u32()
			if err != nil {
				return structural("data memory index", err)
			}
		}
		if int(memIdx) >= len(d.mod.Memories) {
			return indexError("memory", memIdx)
		}
		offset, err := decodeExpr(r, &d.types)
		if err != nil {
			return structural("data offset expression", err)
		}
		n, err := r.u32()
		if err != nil {
			return structural("data length", err)
		}
		bytes, err := r.bytes(n)
		if err != nil {
			return structural("data bytes", err)
		}
		d.mod.Memories[memIdx].Data = append(d.mod.Memories[memIdx].Data, ir.Data{
			Offset: offset,
			Bytes:  bytes,
		})
	}
	return nil
}

// decodeCodeSectionHeader stages each function body's raw bytes for
// code.go's parallel pass; it does not lower any instructions itself.
func (d *moduleDecoder) decodeCodeSectionHeader(r *reader) error {
	count, err := r.u32()
	if err != nil {
		return structural("code count", err)
	}
	importedFuncs := d.mod.ImportedFunctionCount()
	if int(count) != len(d.mod.Functions)-importedFuncs {
		return structuralf("code section has %d bodies but function section declared %d", count, len(d.mod.Functions)-importedFuncs)
	}
	for i := uint32(0); i < count; i++ {
		size, err := r.u32()
		if err != nil {
			return structural("function body size", err)
		}
		bodyOffset := r.offset()
		body, err := r.bytes(size)
		if err != nil {
			return structural("function body", err)
		}
		d.pendingCode = append(d.pendingCode, codeEntry{
			funcIdx: ir.Index(importedFuncs) + i,
			offset:  bodyOffset,
			body:    body,
		})
	}
	return nil
}
