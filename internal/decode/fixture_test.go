package decode

import "github.com/tetratelabs/wasmdecode/internal/leb128"

// The helpers in this file build minimal Wasm 1.0 binaries byte-by-byte,
// so tests can pin down exact decoder behavior without depending on a
// wasm toolchain.

func u32(v uint32) []byte { return leb128.EncodeUint32(v) }
func i32(v int32) []byte  { return leb128.EncodeInt32(v) }
func i64(v int64) []byte  { return leb128.EncodeInt64(v) }

func vec(items ...[]byte) []byte {
	out := u32(uint32(len(items)))
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

func name(s string) []byte {
	return append(u32(uint32(len(s))), []byte(s)...)
}

func section(id byte, payload []byte) []byte {
	out := []byte{id}
	out = append(out, u32(uint32(len(payload)))...)
	out = append(out, payload...)
	return out
}

func moduleBytes(sections ...[]byte) []byte {
	out := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

// funcType builds a type-section entry: the 0x60 form byte plus param and
// result value-type vectors.
func funcType(params, results []byte) []byte {
	out := []byte{wireTypeFunc}
	out = append(out, vec(byteItems(params)...)...)
	out = append(out, vec(byteItems(results)...)...)
	return out
}

func byteItems(bs []byte) [][]byte {
	out := make([][]byte, len(bs))
	for i, b := range bs {
		out[i] = []byte{b}
	}
	return out
}

// code builds one code-section entry (size prefix + locals + body).
func code(localGroups [][2]byte, body []byte) []byte {
	payload := u32(uint32(len(localGroups)))
	for _, g := range localGroups {
		payload = append(payload, u32(uint32(g[0]))...)
		payload = append(payload, g[1])
	}
	payload = append(payload, body...)
	return append(u32(uint32(len(payload))), payload...)
}
