// Package leb128 implements the variable-length integer encoding used
// throughout the WebAssembly binary format.
//
// See https://webassembly.github.io/spec/core/binary/values.html#integers
package leb128

import (
	"errors"
	"io"
)

const (
	maxVarintLen32 = 5
	maxVarintLen33 = 5
	maxVarintLen64 = 10
)

var (
	// errOverflow32 is returned when a LEB128-encoded value does not fit
	// a 32-bit integer.
	errOverflow32 = errors.New("leb128: overflows a 32-bit integer")
	// errOverflow33 is returned when a signed LEB128-encoded value does
	// not fit a 33-bit integer (used for block types).
	errOverflow33 = errors.New("leb128: overflows a 33-bit integer")
	// errOverflow64 is returned when a LEB128-encoded value does not fit
	// a 64-bit integer.
	errOverflow64 = errors.New("leb128: overflows a 64-bit integer")
	// errTooManyBytes is returned when more continuation bytes are seen
	// than the target width could ever need.
	errTooManyBytes = errors.New("leb128: invalid: too many bytes read for a variable integer")
)

type byteReader interface {
	io.Reader
	io.ByteReader
}

func asByteReader(r io.Reader) byteReader {
	if br, ok := r.(byteReader); ok {
		return br
	}
	return &oneByteReader{r: r}
}

// oneByteReader adapts an io.Reader without ReadByte into a byteReader,
// reading a single byte at a time. The decoder's hot path (bytes.Reader
// over the full module buffer) already implements io.ByteReader, so this
// path only matters for exotic callers.
type oneByteReader struct {
	r   io.Reader
	buf [1]byte
}

func (o *oneByteReader) Read(p []byte) (int, error) { return o.r.Read(p) }

func (o *oneByteReader) ReadByte() (byte, error) {
	_, err := io.ReadFull(o.r, o.buf[:])
	return o.buf[0], err
}

// DecodeUint32 decodes an unsigned 32-bit LEB128 integer from r, returning
// the value and the number of bytes consumed.
func DecodeUint32(r io.Reader) (uint32, uint64, error) {
	br := asByteReader(r)
	var result uint32
	var shift uint32
	var read uint64
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		read++
		if shift == 28 && (b&0xf0) != 0 && (b&0xf0) != 0x70 {
			// more than 5 bytes, or the top nibble doesn't fit in 32 bits.
			return 0, 0, errOverflow32
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			if shift == 28 && (b&0xf0) != 0 {
				return 0, 0, errOverflow32
			}
			return result, read, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, 0, errTooManyBytes
		}
	}
}

// DecodeUint64 decodes an unsigned 64-bit LEB128 integer from r.
func DecodeUint64(r io.Reader) (uint64, uint64, error) {
	br := asByteReader(r)
	var result uint64
	var shift uint32
	var read uint64
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		read++
		if shift == 63 && (b&0xfe) != 0 {
			return 0, 0, errOverflow64
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, read, nil
		}
		shift += 7
		if shift >= 70 {
			return 0, 0, errTooManyBytes
		}
	}
}

// DecodeInt32 decodes a signed 32-bit LEB128 integer from r.
func DecodeInt32(r io.Reader) (int32, uint64, error) {
	br := asByteReader(r)
	var result int32
	var shift uint32
	var read uint64
	var b byte
	var err error
	for {
		b, err = br.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		read++
		result |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift >= 35 {
			return 0, 0, errTooManyBytes
		}
	}
	if shift < 32 && b&0x40 != 0 {
		result |= -1 << shift
	}
	if shift == 35 {
		// Fifth byte: only its low 4 bits carry value bits; the rest must
		// repeat bit 31, the sign bit.
		if hi := b & 0x70; (b&0x08 == 0 && hi != 0) || (b&0x08 != 0 && hi != 0x70) {
			return 0, 0, errOverflow32
		}
	}
	return result, read, nil
}

// DecodeInt64 decodes a signed 64-bit LEB128 integer from r.
func DecodeInt64(r io.Reader) (int64, uint64, error) {
	br := asByteReader(r)
	var result int64
	var shift uint32
	var read uint64
	var b byte
	var err error
	for {
		b, err = br.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		read++
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift >= 70 {
			return 0, 0, errTooManyBytes
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	if shift == 70 {
		// Tenth byte: only its low bit carries a value bit; the rest must
		// repeat bit 63, the sign bit.
		if hi := b & 0x7e; (b&0x01 == 0 && hi != 0) || (b&0x01 != 0 && hi != 0x7e) {
			return 0, 0, errOverflow64
		}
	}
	return result, read, nil
}

// DecodeInt33AsInt64 decodes a signed 33-bit LEB128 integer (the encoding
// used for Wasm block types, which overload a signed varint to carry
// either a negative valtype tag or a non-negative type index) and widens
// it to int64.
func DecodeInt33AsInt64(r io.Reader) (int64, uint64, error) {
	br := asByteReader(r)
	var result int64
	var shift uint32
	var read uint64
	var b byte
	var err error
	for {
		b, err = br.ReadByte()
		if err != nil {
			return 0, 0, err
		}
		read++
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift >= 35 {
			return 0, 0, errTooManyBytes
		}
	}
	if shift == 35 {
		// Fifth byte: its low 5 bits carry value bits 28-32; the rest must
		// repeat bit 32, the sign bit.
		if hi := b & 0x60; (b&0x10 == 0 && hi != 0) || (b&0x10 != 0 && hi != 0x60) {
			return 0, 0, errOverflow33
		}
		if b&0x10 != 0 {
			result |= -1 << shift
		}
	} else if b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, read, nil
}

// LoadUint32 decodes an unsigned 32-bit LEB128 integer directly from a
// byte slice without allocating an io.Reader.
func LoadUint32(buf []byte) (uint32, uint64, error) {
	var result uint32
	var shift uint32
	for i, b := range buf {
		if shift == 28 && (b&0xf0) != 0 && (b&0xf0) != 0x70 {
			return 0, 0, errOverflow32
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			if shift == 28 && (b&0xf0) != 0 {
				return 0, 0, errOverflow32
			}
			return result, uint64(i + 1), nil
		}
		shift += 7
		if shift >= 35 {
			return 0, 0, errTooManyBytes
		}
	}
	return 0, 0, io.EOF
}

// LoadUint64 decodes an unsigned 64-bit LEB128 integer directly from a
// byte slice.
func LoadUint64(buf []byte) (uint64, uint64, error) {
	var result uint64
	var shift uint32
	for i, b := range buf {
		if shift == 63 && (b&0xfe) != 0 {
			return 0, 0, errOverflow64
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, uint64(i + 1), nil
		}
		shift += 7
		if shift >= 70 {
			return 0, 0, errTooManyBytes
		}
	}
	return 0, 0, io.EOF
}

// LoadInt32 decodes a signed 32-bit LEB128 integer directly from a byte
// slice.
func LoadInt32(buf []byte) (int32, uint64, error) {
	var result int32
	var shift uint32
	for i, b := range buf {
		result |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 32 && b&0x40 != 0 {
				result |= -1 << shift
			}
			if shift == 35 {
				// Fifth byte: only its low 4 bits carry value bits; the
				// rest must repeat bit 31, the sign bit.
				if hi := b & 0x70; (b&0x08 == 0 && hi != 0) || (b&0x08 != 0 && hi != 0x70) {
					return 0, 0, errOverflow32
				}
			}
			return result, uint64(i + 1), nil
		}
		if shift >= 35 {
			return 0, 0, errTooManyBytes
		}
	}
	return 0, 0, io.EOF
}

// LoadInt64 decodes a signed 64-bit LEB128 integer directly from a byte
// slice.
func LoadInt64(buf []byte) (int64, uint64, error) {
	var result int64
	var shift uint32
	for i, b := range buf {
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			if shift < 64 && b&0x40 != 0 {
				result |= -1 << shift
			}
			if shift == 70 {
				// Tenth byte: only its low bit carries a value bit; the
				// rest must repeat bit 63, the sign bit.
				if hi := b & 0x7e; (b&0x01 == 0 && hi != 0) || (b&0x01 != 0 && hi != 0x7e) {
					return 0, 0, errOverflow64
				}
			}
			return result, uint64(i + 1), nil
		}
		if shift >= 70 {
			return 0, 0, errTooManyBytes
		}
	}
	return 0, 0, io.EOF
}

// EncodeUint32 encodes v as an unsigned LEB128 integer. It exists
// primarily so tests can build binary fixtures without hand-computing
// varint bytes.
func EncodeUint32(v uint32) []byte {
	return EncodeUint64(uint64(v))
}

// EncodeUint64 encodes v as an unsigned LEB128 integer.
func EncodeUint64(v uint64) []byte {
	buf := make([]byte, 0, maxVarintLen64)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf = append(buf, b|0x80)
		} else {
			buf = append(buf, b)
			return buf
		}
	}
}

// EncodeInt32 encodes v as a signed LEB128 integer.
func EncodeInt32(v int32) []byte {
	return EncodeInt64(int64(v))
}

// EncodeInt64 encodes v as a signed LEB128 integer.
func EncodeInt64(v int64) []byte {
	buf := make([]byte, 0, maxVarintLen64)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		if (v == 0 && !signBitSet) || (v == -1 && signBitSet) {
			buf = append(buf, b)
			return buf
		}
		buf = append(buf, b|0x80)
	}
}
