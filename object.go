package eventio

import (
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Object is a single decoded record: its header, the ByteSource it borrows
// from (shared, never mutated except via the scoped read primitive), and,
// for only-sub-objects records, the tree of children built at index time.
type Object struct {
	Header   Header
	source   *ByteSource
	Children []*Object
}

// View returns a bounded window over the Object's own payload, with an
// independent cursor starting at 0.
func (o *Object) View() *ObjectView {
	return &ObjectView{source: o.source, header: o.Header}
}

// Digest computes a content hash of the Object's raw payload bytes. It
// exists to let idempotence tests compare repeated decodes cheaply without
// holding two full buffers side by side.
func (o *Object) Digest() (uint64, error) {
	buf, err := o.source.readFromPosition(o.Header.Data_field_first_byte, int(o.Header.Length))
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(buf), nil
}

func (o *Object) String() string {
	return fmt.Sprintf("Object[type=%d](id=%d, length=%d, first_byte=%d, level=%d)",
		o.Header.Type, o.Header.Id, o.Header.Length, o.Header.First_byte, o.Header.Level)
}

// ObjectView holds a bounded {source, header, cursor} window into a
// record's payload, in the payload coordinate system (0 .. Length). It
// implements io.Reader and io.Seeker so decoders can read through it with
// encoding/binary directly.
type ObjectView struct {
	source *ByteSource
	header Header
	cursor int64
}

// Len reports the total payload length of the window.
func (v *ObjectView) Len() int64 { return v.header.Length }

// Tell reports the current cursor position within the window.
func (v *ObjectView) Tell() int64 { return v.cursor }

// Read clamps n to the bytes remaining in the window and performs a
// scoped read against the underlying source, advancing the cursor.
func (v *ObjectView) Read(p []byte) (int, error) {
	remaining := v.header.Length - v.cursor
	if remaining <= 0 {
		return 0, io.EOF
	}

	n := int64(len(p))
	if n > remaining {
		n = remaining
	}

	buf, err := v.source.readFromPosition(v.header.Data_field_first_byte+v.cursor, int(n))
	if err != nil {
		return 0, err
	}
	copy(p, buf)
	v.cursor += int64(len(buf))
	if len(buf) < len(p) {
		return len(buf), io.EOF
	}
	return len(buf), nil
}

// Seek repositions the cursor. whence=SeekEnd resolves relative to the
// window's Length, matching the file-like seek every Object exposed in the
// source this reads like, now made unambiguous by a dedicated type.
func (v *ObjectView) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = v.cursor + offset
	case io.SeekEnd:
		target = v.header.Length + offset
	default:
		return 0, fmt.Errorf("eventio: invalid whence %d", whence)
	}
	if target < 0 {
		return 0, fmt.Errorf("eventio: negative seek")
	}
	v.cursor = target
	return v.cursor, nil
}

// ObjectIndex enumerates top-level objects in file order, building the
// nested tree for only-sub-objects records eagerly (headers only; payloads
// stay lazily decoded), per the framing/payload separation that makes the
// reader tolerant of unknown or version-mismatched record types.
type ObjectIndex struct {
	source  *ByteSource
	Objects []*Object
	warn    WarnFunc
	pos     int
}

// buildObjectIndex seeks to 0 and repeatedly reads a header, records it,
// and advances by the header's length to skip the payload. A short or
// malformed read at a top-level boundary is tolerated with a WarnTruncated
// warning and stops traversal; everything decoded up to that point remains
// valid. A failure on the very first record is fatal, since no valid
// framing has been established yet.
func buildObjectIndex(source *ByteSource, warn WarnFunc) (*ObjectIndex, error) {
	idx := &ObjectIndex{source: source, warn: warn}

	if _, err := source.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	for {
		startPos, err := source.tell()
		if err != nil {
			return nil, err
		}
		if startPos >= source.Size() {
			break
		}

		hdr, err := DecodeHeader(source, true, -1)
		if err != nil {
			if startPos == 0 {
				return nil, err
			}
			warn(Warning{
				Kind:    WarnTruncated,
				Message: fmt.Sprintf("truncated record at offset %d: %v", startPos, err),
				Offset:  startPos,
			})
			break
		}

		obj := &Object{Header: hdr, source: source}
		if hdr.Only_sub_objects {
			obj.Children = buildChildren(source, hdr, warn)
		}
		idx.Objects = append(idx.Objects, obj)

		if _, err := source.Seek(hdr.Data_field_first_byte+hdr.Length, io.SeekStart); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// buildChildren recurses within an only-sub-objects record's payload
// window, decoding the concatenation of complete child records it
// contains. Children inherit the parent's endianness and carry no sync
// word of their own.
func buildChildren(source *ByteSource, parent Header, warn WarnFunc) []*Object {
	var children []*Object
	end := parent.Data_field_first_byte + parent.Length

	if _, err := source.Seek(parent.Data_field_first_byte, io.SeekStart); err != nil {
		return children
	}

	for {
		pos, err := source.tell()
		if err != nil || pos >= end {
			break
		}

		hdr, err := DecodeHeader(source, false, parent.Level)
		if err != nil {
			warn(Warning{
				Kind:    WarnTruncated,
				Message: fmt.Sprintf("truncated child record at offset %d: %v", pos, err),
				Offset:  pos,
			})
			break
		}

		obj := &Object{Header: hdr, source: source}
		if hdr.Only_sub_objects {
			obj.Children = buildChildren(source, hdr, warn)
		}
		children = append(children, obj)

		if _, err := source.Seek(hdr.Data_field_first_byte+hdr.Length, io.SeekStart); err != nil {
			break
		}
	}

	return children
}

// Next returns the next top-level Object in file order and advances the
// index's cursor, or (nil, false) at end of stream.
func (idx *ObjectIndex) Next() (*Object, bool) {
	if idx.pos >= len(idx.Objects) {
		return nil, false
	}
	o := idx.Objects[idx.pos]
	idx.pos++
	return o, true
}

// PeekNext returns the next top-level Object without advancing the index,
// an O(1) header-only lookahead used by the mc_events iterator. It never
// performs a second read of the underlying bytes.
func (idx *ObjectIndex) PeekNext() (*Object, bool) {
	if idx.pos >= len(idx.Objects) {
		return nil, false
	}
	return idx.Objects[idx.pos], true
}

// Len reports the number of top-level objects in the index.
func (idx *ObjectIndex) Len() int {
	return len(idx.Objects)
}

// String renders the index the way a very long file listing should:
// eliding the middle once there are more than 8 top-level objects.
func (idx *ObjectIndex) String() string {
	n := len(idx.Objects)
	if n <= 8 {
		return formatObjects(idx.Objects)
	}
	head := formatObjects(idx.Objects[:4])
	tail := formatObjects(idx.Objects[n-4:])
	return fmt.Sprintf("[%s, ... (%d more) ..., %s]", head, n-8, tail)
}

func formatObjects(objs []*Object) string {
	s := ""
	for i, o := range objs {
		if i > 0 {
			s += ", "
		}
		s += o.String()
	}
	return s
}

// errTruncatedPayload is returned by decoders that hit end-of-window
// before consuming every field their layout requires.
var errTruncatedPayload = errors.New("eventio: payload shorter than decoder's fixed layout")
