package eventio

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildNestedFixture constructs a minimal stream: one top-level
// only-sub-objects record of type 2010 containing two flat children (a
// 4-byte type-9001 record and an 8-byte type-9002 record).
func buildNestedFixture(t *testing.T) *ByteSource {
	t.Helper()

	var children bytes.Buffer
	writeHeaderWords(&children, 9001, 0, false, false, 1, 4)
	children.Write([]byte{1, 2, 3, 4})
	writeHeaderWords(&children, 9002, 0, false, false, 2, 8)
	children.Write(bytes.Repeat([]byte{0xAB}, 8))

	var buf bytes.Buffer
	buf.Write(syncMarkerLE[:])
	writeHeaderWords(&buf, 2010, 0, false, true, 99, int64(children.Len()))
	buf.Write(children.Bytes())

	return newByteSourceFromBuf(&buf)
}

func TestBuildObjectIndexNested(t *testing.T) {
	source := buildNestedFixture(t)
	idx, err := buildObjectIndex(source, noopWarnFunc)
	require.NoError(t, err)
	require.Equal(t, 1, idx.Len())

	top := idx.Objects[0]
	require.True(t, top.Header.Only_sub_objects)
	require.Len(t, top.Children, 2)
	require.Equal(t, uint32(9001), top.Children[0].Header.Type)
	require.Equal(t, uint32(9002), top.Children[1].Header.Type)
	require.Equal(t, 1, top.Children[0].Header.Level)
}

func TestObjectViewReadsPayload(t *testing.T) {
	source := buildNestedFixture(t)
	idx, err := buildObjectIndex(source, noopWarnFunc)
	require.NoError(t, err)

	child := idx.Objects[0].Children[0]
	view := child.View()
	buf := make([]byte, 4)
	n, err := view.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte{1, 2, 3, 4}, buf)
}

func TestObjectDigestIdempotent(t *testing.T) {
	source := buildNestedFixture(t)
	idx, err := buildObjectIndex(source, noopWarnFunc)
	require.NoError(t, err)

	child := idx.Objects[0].Children[1]
	d1, err := child.Digest()
	require.NoError(t, err)
	d2, err := child.Digest()
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}

func TestObjectIndexPeekNext(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(syncMarkerLE[:])
	writeHeaderWords(&buf, 100, 0, false, false, 1, 0)
	buf.Write(syncMarkerLE[:])
	writeHeaderWords(&buf, 200, 0, false, false, 2, 0)

	source := newByteSourceFromBuf(&buf)
	idx, err := buildObjectIndex(source, noopWarnFunc)
	require.NoError(t, err)

	peeked, ok := idx.PeekNext()
	require.True(t, ok)
	require.Equal(t, uint32(100), peeked.Header.Type)

	next, ok := idx.Next()
	require.True(t, ok)
	require.Same(t, peeked, next)

	peeked2, ok := idx.PeekNext()
	require.True(t, ok)
	require.Equal(t, uint32(200), peeked2.Header.Type)
}

func TestBuildObjectIndexTruncatedTrailingRecord(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(syncMarkerLE[:])
	writeHeaderWords(&buf, 100, 0, false, false, 1, 0)
	buf.Write([]byte{0x01, 0x02}) // short trailing header

	var warnings []Warning
	source := newByteSourceFromBuf(&buf)
	idx, err := buildObjectIndex(source, func(w Warning) { warnings = append(warnings, w) })
	require.NoError(t, err)
	require.Equal(t, 1, idx.Len())
	require.Len(t, warnings, 1)
	require.Equal(t, WarnTruncated, warnings[0].Kind)
}
