package decode

import "github.com/tetratelabs/wasmdecode/ir"

// typeTable tracks the module's function-type vector through its three
// valid states: absent (no type section seen yet), sized (the section's
// count prefix has been read and a capacity reserved), and populated
// (entries are being appended one at a time as the section's items
// decode). Every other section that references a type index reads
// through get, which is only valid once the table is sized.
type typeTable struct {
	types []ir.FunctionType
	// seen distinguishes "absent" from "sized with capacity 0": a module
	// with an empty type section still satisfies any function section
	// that declares zero functions.
	seen bool
}

// setCapacity transitions the table from absent to sized. It is an error
// to call this more than once: the type section may appear at most once
// per module.
func (t *typeTable) setCapacity(count uint32) error {
	if t.seen {
		return structuralf("duplicate type section")
	}
	t.seen = true
	t.types = make([]ir.FunctionType, 0, count)
	return nil
}

// add appends a decoded function type. The table must already be sized.
func (t *typeTable) add(ft ir.FunctionType) error {
	if !t.seen {
		return structuralf("type entry decoded before type section was sized")
	}
	t.types = append(t.types, ft)
	return nil
}

// get resolves a type index against the table. It is an error to resolve
// any index before the type section has been sized, even if the module
// ultimately has no type section at all: a reference to type index 0 in
// a module with no type section is always out of bounds.
func (t *typeTable) get(idx ir.Index) (ir.FunctionType, error) {
	if !t.seen {
		return ir.FunctionType{}, structuralf("missing type section")
	}
	if int(idx) >= len(t.types) {
		return ir.FunctionType{}, indexError("type", idx)
	}
	return t.types[idx], nil
}

// count returns the number of type entries decoded so far.
func (t *typeTable) count() int { return len(t.types) }
