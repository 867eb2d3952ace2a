package ir

// SectionID identifies a recorded section occurrence. For a custom
// section, CustomName disambiguates it from any other custom section in
// the same module (the source this decoder's section-offset design is
// modeled on collapses all custom sections into one discriminant; this
// redesign keys on the section's name instead so a module with several
// distinct custom sections gets distinct offset entries).
type SectionID struct {
	Tag        SectionTag
	CustomName string
}

// SectionOffset records where one section occurrence began in the source
// buffer: the byte immediately after the section's id and LEB128 size,
// before its item count.
type SectionOffset struct {
	ID     SectionID
	Offset uint32
}

// FuncOffset records where one function body began in the source buffer:
// the first byte after the body's LEB128 size prefix, i.e. the start of
// its locals declaration.
type FuncOffset struct {
	FuncIdx Index
	Offset  uint32
}

// Offsets is the side-table produced alongside a Module, recording byte
// offsets for downstream tooling (symbolication, binary rewriting,
// diagnostics) that needs to map back from IR entities to source bytes.
type Offsets struct {
	Sections      []SectionOffset
	FunctionsCode []FuncOffset
}
