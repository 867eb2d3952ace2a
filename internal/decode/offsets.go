package decode

import "github.com/tetratelabs/wasmdecode/ir"

// recordSectionOffset appends one section occurrence to the offsets
// table. Called once per section header the dispatcher consumes, custom
// sections included.
func (d *moduleDecoder) recordSectionOffset(tag ir.SectionTag, customName string, offset uint32) {
	d.offsets.Sections = append(d.offsets.Sections, ir.SectionOffset{
		ID:     ir.SectionID{Tag: tag, CustomName: customName},
		Offset: offset,
	})
}

// recordFunctionOffset appends one function body's offset to the offsets
// table. Called from code.go's splice step, once per decoded body.
func (d *moduleDecoder) recordFunctionOffset(funcIdx ir.Index, offset uint32) {
	d.offsets.FunctionsCode = append(d.offsets.FunctionsCode, ir.FuncOffset{
		FuncIdx: funcIdx,
		Offset:  offset,
	})
}
