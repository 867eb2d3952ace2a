package decode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tetratelabs/wasmdecode/ir"
)

func TestTryDecodeNameSectionAllSubsections(t *testing.T) {
	moduleSub := append([]byte{nameSubsectionModule}, u32(uint32(len(name("demo"))))...)
	moduleSub = append(moduleSub, name("demo")...)

	fnMap := append(u32(1), append(u32(2), name("start")...)...)
	fnSub := append([]byte{nameSubsectionFunction}, u32(uint32(len(fnMap)))...)
	fnSub = append(fnSub, fnMap...)

	localInner := append(u32(1), append(u32(0), name("x")...)...)
	localOuter := append(u32(1), append(u32(2), localInner...)...)
	localSub := append([]byte{nameSubsectionLocal}, u32(uint32(len(localOuter)))...)
	localSub = append(localSub, localOuter...)

	payload := append(moduleSub, fnSub...)
	payload = append(payload, localSub...)

	names, err := tryDecodeNameSection(payload)
	require.NoError(t, err)
	require.NotNil(t, names.module)
	require.Equal(t, "demo", *names.module)
	require.Equal(t, "start", names.functions[2])
	require.Equal(t, "x", names.locals[2][0])
}

func TestTryDecodeNameSectionSkipsUnknownSubsection(t *testing.T) {
	unknown := append([]byte{0x7f}, u32(3)...)
	unknown = append(unknown, []byte{0xaa, 0xbb, 0xcc}...)

	names, err := tryDecodeNameSection(unknown)
	require.NoError(t, err)
	require.Nil(t, names.module)
	require.Nil(t, names.functions)
}

func TestTryDecodeNameSectionRejectsTrailingBytes(t *testing.T) {
	moduleSub := append([]byte{nameSubsectionModule}, u32(uint32(len(name("demo"))+1))...)
	moduleSub = append(moduleSub, name("demo")...)
	moduleSub = append(moduleSub, 0x00)

	_, err := tryDecodeNameSection(moduleSub)
	require.Error(t, err)
}

func TestDecodeNameSectionLogsAndDegradesOnError(t *testing.T) {
	truncated := []byte{nameSubsectionFunction, 0x05, 0x01}
	names, ok := decodeNameSection(truncated, testLogger())
	require.False(t, ok)
	require.Nil(t, names)
}

func TestDecodeNameMapEmpty(t *testing.T) {
	r := newReader(u32(0))
	m, err := decodeNameMap(r)
	require.NoError(t, err)
	require.Empty(t, m)
	require.IsType(t, map[ir.Index]string{}, m)
}
