package ir

// Import names the two-level (module, field) origin of an imported
// entity.
type Import struct {
	Module string
	Field  string
}

// Local is one declared local variable slot in a function body (the
// decoder expands the code section's run-length-encoded local groups into
// one Local per slot).
type Local struct {
	Type ValType
}

// Code is a present function body: its locals (beyond the implicit
// parameter locals) and its lowered instruction sequence, terminated by an
// `end` instruction.
type Code struct {
	Locals []Local
	Body   []Instr
}

// Function is a module function, either imported (Import != nil, Code ==
// nil) or defined in this module (Import == nil, Code != nil) — never
// both, never neither, once decoding completes.
type Function struct {
	Type   FunctionType
	Import *Import
	Code   *Code

	Export []string
	Name   *string
	// LocalNames maps a local index (parameters first, then declared
	// locals, matching the local index space used by local.get/set/tee)
	// to its debug name, as attached by the name section.
	LocalNames map[Index]string
}

// IsImported reports whether f originates from the import section.
func (f *Function) IsImported() bool { return f.Import != nil }

// Element is one active element segment, populating a table starting at
// the index produced by evaluating Offset with a sequence of function
// indices.
type Element struct {
	Offset    []Instr
	Functions []Index
}

// Table is a module table, either imported or defined in this module.
// Active element segments referencing this table (by its index in
// Module.Tables) are appended to Elements regardless of import origin,
// since a table's identity — not its origin — is what element segments
// address.
type Table struct {
	Type   TableType
	Import *Import

	Elements []Element
	Export   []string
}

func (t *Table) IsImported() bool { return t.Import != nil }

// Data is one active data segment, copying Bytes into a memory starting at
// the i32 produced by evaluating Offset.
type Data struct {
	Offset []Instr
	Bytes  []byte
}

// Memory is a module linear memory, either imported or defined in this
// module. Active data segments referencing this memory are appended to
// Data regardless of import origin (see Table's analogous note).
type Memory struct {
	Type   MemoryType
	Import *Import

	Data   []Data
	Export []string
}

func (m *Memory) IsImported() bool { return m.Import != nil }

// Global is a module global variable. Imported globals carry no Init
// expression (their value is supplied by the host at instantiation time);
// module-defined globals are always initialized by a constant expression
// decoded from the global section.
type Global struct {
	Type   GlobalType
	Import *Import

	Init   []Instr
	Export []string
}

func (g *Global) IsImported() bool { return g.Import != nil }

// SectionTag identifies a standard section kind, using the Wasm binary
// format's own one-byte section ids.
type SectionTag byte

const (
	SectionTagCustom   SectionTag = 0
	SectionTagType     SectionTag = 1
	SectionTagImport   SectionTag = 2
	SectionTagFunction SectionTag = 3
	SectionTagTable    SectionTag = 4
	SectionTagMemory   SectionTag = 5
	SectionTagGlobal   SectionTag = 6
	SectionTagExport   SectionTag = 7
	SectionTagStart    SectionTag = 8
	SectionTagElement  SectionTag = 9
	SectionTagCode     SectionTag = 10
	SectionTagData     SectionTag = 11
	// SectionTagDataCount is the bulk-memory proposal's section, predicting
	// the data segment count ahead of the code section. This decoder never
	// populates a section carrying this tag: it is rejected as an
	// unsupported extension before dispatch (see decodeModule).
	SectionTagDataCount SectionTag = 12
)

func (t SectionTag) String() string {
	switch t {
	case SectionTagCustom:
		return "custom"
	case SectionTagType:
		return "type"
	case SectionTagImport:
		return "import"
	case SectionTagFunction:
		return "function"
	case SectionTagTable:
		return "table"
	case SectionTagMemory:
		return "memory"
	case SectionTagGlobal:
		return "global"
	case SectionTagExport:
		return "export"
	case SectionTagStart:
		return "start"
	case SectionTagElement:
		return "element"
	case SectionTagCode:
		return "code"
	case SectionTagData:
		return "data"
	case SectionTagDataCount:
		return "data count"
	default:
		return "unknown"
	}
}

// RawCustomSection preserves a custom section's undecoded bytes and its
// position relative to the standard sections, so downstream tooling can
// round-trip custom-section placement without the decoder understanding
// its contents. The "name" custom section is the one exception when it
// parses cleanly: its module/function/local name subsections are decoded
// into Module.Name, Function.Name and Function.LocalNames instead of
// appearing here. A malformed name section degrades to a RawCustomSection
// like any other, rather than aborting the decode.
type RawCustomSection struct {
	Name    string
	Bytes   []byte
	// After names the last standard section tag seen before this custom
	// section, or nil if it precedes every standard section.
	After *SectionTag
}

// Module is the root decoded aggregate: every entity vector is ordered
// with imported entries preceding module-defined ones, and cross-linked
// by the numeric indices used in the original binary.
type Module struct {
	Types     []FunctionType
	Functions []Function
	Tables    []Table
	Memories  []Memory
	Globals   []Global

	// Start is the module's designated entry function, if any.
	Start *Index

	CustomSections []RawCustomSection

	// Name is the module's debug name, from the name section's module
	// name subsection.
	Name *string
}

// ImportedFunctionCount returns how many of m.Functions were declared in
// the import section (and therefore precede every module-defined
// function, per the decoder's ordering invariant).
func (m *Module) ImportedFunctionCount() int {
	n := 0
	for i := range m.Functions {
		if m.Functions[i].IsImported() {
			n++
		}
	}
	return n
}
