package eventio

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeHeaderWords appends a type/version/flags word, id word, and length
// word (plus extension word when needed) to buf, the same three/four-word
// layout DecodeHeader expects.
func writeHeaderWords(buf *bytes.Buffer, recType uint32, version uint16, extended, onlySub bool, id uint32, length int64) {
	var typeWord uint32
	typeWord |= recType & (1<<typeLen - 1)
	if extended {
		typeWord |= 1 << extPos
	}
	typeWord |= uint32(version) << versionPos

	var lengthWord uint32
	if onlySub {
		lengthWord |= 1 << onlySubObjectsPos
	}

	low := length
	var ext uint32
	if extended {
		ext = uint32(low >> lengthLen)
		low &= 1<<lengthLen - 1
	}
	lengthWord |= uint32(low)

	binary.Write(buf, binary.LittleEndian, typeWord)
	binary.Write(buf, binary.LittleEndian, id)
	binary.Write(buf, binary.LittleEndian, lengthWord)
	if extended {
		binary.Write(buf, binary.LittleEndian, ext)
	}
}

func newByteSourceFromBuf(buf *bytes.Buffer) *ByteSource {
	b := buf.Bytes()
	return NewByteSource(bytes.NewReader(b), int64(len(b)))
}

func TestDecodeHeaderTopLevel(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(syncMarkerLE[:])
	writeHeaderWords(&buf, 2000, 3, false, false, 42, 8)
	buf.Write(make([]byte, 8))

	source := newByteSourceFromBuf(&buf)
	h, err := DecodeHeader(source, true, -1)
	require.NoError(t, err)
	require.Equal(t, uint32(2000), h.Type)
	require.Equal(t, uint16(3), h.Version)
	require.False(t, h.Extended)
	require.False(t, h.Only_sub_objects)
	require.Equal(t, uint32(42), h.Id)
	require.Equal(t, int64(8), h.Length)
	require.Equal(t, 0, h.Level)
	require.Equal(t, int64(4), h.First_byte)
	require.Equal(t, int64(16), h.Data_field_first_byte)
}

func TestDecodeHeaderExtendedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(syncMarkerLE[:])
	length := int64(1)<<31 + 5
	writeHeaderWords(&buf, 10, 0, true, false, 1, length)

	source := newByteSourceFromBuf(&buf)
	h, err := DecodeHeader(source, true, -1)
	require.NoError(t, err)
	require.True(t, h.Extended)
	require.Equal(t, length, h.Length)
	require.Equal(t, int64(20), h.Data_field_first_byte)
}

func TestDecodeHeaderBadSync(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00})
	source := newByteSourceFromBuf(&buf)
	_, err := DecodeHeader(source, true, -1)
	require.ErrorIs(t, err, ErrBadSync)
}

func TestDecodeHeaderUnsupportedEndian(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(syncMarkerBE[:])
	source := newByteSourceFromBuf(&buf)
	_, err := DecodeHeader(source, true, -1)
	require.ErrorIs(t, err, ErrUnsupportedEndian)
}

func TestDecodeHeaderTruncatedSync(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xd4, 0x1f})
	source := newByteSourceFromBuf(&buf)
	_, err := DecodeHeader(source, true, -1)
	require.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeHeaderNestedInheritsLevel(t *testing.T) {
	var buf bytes.Buffer
	writeHeaderWords(&buf, 2011, 0, false, false, 7, 4)
	buf.Write(make([]byte, 4))

	source := newByteSourceFromBuf(&buf)
	h, err := DecodeHeader(source, false, 2)
	require.NoError(t, err)
	require.Equal(t, 3, h.Level)
	pos, err := source.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, int64(12), pos) // sanity: no seek side effects beyond reads
}
