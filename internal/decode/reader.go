package decode

import (
	"bytes"
	"io"

	"github.com/tetratelabs/wasmdecode/internal/leb128"
)

// reader wraps a bytes.Reader with the primitive reads every section
// decoder needs, plus byte-offset tracking so callers can record
// ir.Offsets entries without re-deriving position from bytes consumed.
type reader struct {
	buf *bytes.Reader
	// base is the offset of buf's first byte within the original module
	// buffer, so offset() reports positions relative to that buffer
	// rather than to whatever sub-slice a caller handed this reader.
	base uint32
}

func newReader(b []byte) *reader {
	return &reader{buf: bytes.NewReader(b)}
}

// offset returns the current read position relative to the original
// module buffer.
func (r *reader) offset() uint32 {
	return r.base + uint32(r.buf.Size()-int64(r.buf.Len()))
}

func (r *reader) len() int { return r.buf.Len() }

func (r *reader) byte() (byte, error) {
	b, err := r.buf.ReadByte()
	if err != nil {
		return 0, structural("byte", err)
	}
	return b, nil
}

func (r *reader) bytes(n uint32) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(r.buf, out); err != nil {
		return nil, structural("byte slice", err)
	}
	return out, nil
}

func (r *reader) u32() (uint32, error) {
	v, _, err := leb128.DecodeUint32(r.buf)
	if err != nil {
		return 0, structural("u32", err)
	}
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	v, _, err := leb128.DecodeUint64(r.buf)
	if err != nil {
		return 0, structural("u64", err)
	}
	return v, nil
}

func (r *reader) i32() (int32, error) {
	v, _, err := leb128.DecodeInt32(r.buf)
	if err != nil {
		return 0, structural("i32", err)
	}
	return v, nil
}

func (r *reader) i64() (int64, error) {
	v, _, err := leb128.DecodeInt64(r.buf)
	if err != nil {
		return 0, structural("i64", err)
	}
	return v, nil
}

// i33 decodes the signed-33-bit encoding used for block types.
func (r *reader) i33() (int64, error) {
	v, _, err := leb128.DecodeInt33AsInt64(r.buf)
	if err != nil {
		return 0, structural("i33", err)
	}
	return v, nil
}

// f32 reads the four raw, little-endian bytes of an f32.const immediate.
func (r *reader) f32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, structural("f32", err)
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// f64 reads the eight raw, little-endian bytes of an f64.const immediate.
func (r *reader) f64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, structural("f64", err)
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// name reads a length-prefixed UTF-8 string, the encoding used for import
// module/field names, export names, and name-section entries.
func (r *reader) name() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", structural("name length", err)
	}
	b, err := r.bytes(n)
	if err != nil {
		return "", structural("name bytes", err)
	}
	return string(b), nil
}

// atEnd reports whether the reader has consumed every byte.
func (r *reader) atEnd() bool { return r.buf.Len() == 0 }

// sub slices off the next n bytes as an independent reader, whose offset()
// values continue to report positions relative to the original module
// buffer.
func (r *reader) sub(n uint32) (*reader, error) {
	start := r.offset()
	b, err := r.bytes(n)
	if err != nil {
		return nil, err
	}
	return &reader{buf: bytes.NewReader(b), base: start}, nil
}

// u32LE reads a raw little-endian uint32 (used only for the 4-byte binary
// format version field, which is not LEB128-encoded).
func (r *reader) u32LE() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}
