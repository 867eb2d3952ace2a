package decode

import (
	"github.com/sirupsen/logrus"
	"github.com/tetratelabs/wasmdecode/ir"
)

const (
	nameSubsectionModule   byte = 0
	nameSubsectionFunction byte = 1
	nameSubsectionLocal    byte = 2
)

// decodedNames holds the three name-section subsections this decoder
// understands. A name section carrying only some of them is normal: tools
// commonly emit just the function-name subsection.
type decodedNames struct {
	module    *string
	functions map[ir.Index]string
	locals    map[ir.Index]map[ir.Index]string
}

// decodeNameSection parses the custom "name" section's payload. Per
// SPEC_FULL.md's name-section contract, any malformed byte anywhere in the
// section degrades the whole section to a RawCustomSection rather than
// aborting the module decode: names are debugging aids, not load-bearing
// structure, so a tool that mis-encoded them shouldn't cost the caller the
// rest of a perfectly decodable module. log records why, at Warn, naming
// the one place in the core decoder that writes to the ambient logger.
func decodeNameSection(payload []byte, log *logrus.Logger) (*decodedNames, bool) {
	names, err := tryDecodeNameSection(payload)
	if err != nil {
		log.WithError(err).Warn("malformed name section, keeping it as raw custom section data")
		return nil, false
	}
	return names, true
}

func tryDecodeNameSection(payload []byte) (*decodedNames, error) {
	r := newReader(payload)
	out := &decodedNames{}
	for !r.atEnd() {
		id, err := r.byte()
		if err != nil {
			return nil, structural("name subsection id", err)
		}
		size, err := r.u32()
		if err != nil {
			return nil, structural("name subsection size", err)
		}
		body, err := r.bytes(size)
		if err != nil {
			return nil, structural("name subsection body", err)
		}
		sub := newReader(body)
		switch id {
		case nameSubsectionModule:
			name, err := sub.name()
			if err != nil {
				return nil, structural("module name", err)
			}
			out.module = &name
		case nameSubsectionFunction:
			m, err := decodeNameMap(sub)
			if err != nil {
				return nil, structural("function names", err)
			}
			out.functions = m
		case nameSubsectionLocal:
			locals, err := decodeIndirectNameMap(sub)
			if err != nil {
				return nil, structural("local names", err)
			}
			out.locals = locals
		default:
			// Unknown subsection ids are skipped, not rejected: the name
			// section is explicitly open to future subsections.
			continue
		}
		if !sub.atEnd() {
			return nil, structuralf("trailing bytes in name subsection %d", id)
		}
	}
	return out, nil
}

// decodeNameMap parses the (idx, name) association used by both the
// function-name subsection and the outer map of the local-name
// subsection.
func decodeNameMap(r *reader) (map[ir.Index]string, error) {
	count, err := r.u32()
	if err != nil {
		return nil, structural("name map count", err)
	}
	out := make(map[ir.Index]string, count)
	for i := uint32(0); i < count; i++ {
		idx, err := r.u32()
		if err != nil {
			return nil, structural("name map index", err)
		}
		name, err := r.name()
		if err != nil {
			return nil, structural("name map value", err)
		}
		out[idx] = name
	}
	return out, nil
}

func decodeIndirectNameMap(r *reader) (map[ir.Index]map[ir.Index]string, error) {
	count, err := r.u32()
	if err != nil {
		return nil, structural("indirect name map count", err)
	}
	out := make(map[ir.Index]map[ir.Index]string, count)
	for i := uint32(0); i < count; i++ {
		idx, err := r.u32()
		if err != nil {
			return nil, structural("indirect name map index", err)
		}
		inner, err := decodeNameMap(r)
		if err != nil {
			return nil, err
		}
		out[idx] = inner
	}
	return out, nil
}
