package eventio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Bit positions and widths for the type/version/flags word and the length
// word, named after the wire format they decode (see the record layout in
// the external interfaces section of the specification this module reads).
const (
	typeLen    = 16
	typePos    = 0
	userPos    = 16
	extPos     = 17
	versionPos = 20
	versionLen = 12

	onlySubObjectsPos = 30
	lengthLen         = 30

	extensionLen = 12
)

func bitsFromPos(word uint32, pos, n uint) uint32 {
	mask := uint32(1)<<n - 1
	return (word >> pos) & mask
}

func bitFromPos(word uint32, pos uint) bool {
	return (word>>pos)&1 == 1
}

// Header is a decoded record descriptor: the framing metadata that
// precedes every record's payload, independent of whether the record sits
// at the top level or nested inside an only-sub-objects parent.
type Header struct {
	Type     uint32
	Version  uint16
	User     bool
	Extended bool

	Only_sub_objects bool
	Length           int64
	Id               uint32

	First_byte             int64
	Data_field_first_byte int64
	Level                  int
}

var (
	syncMarkerLE = [4]byte{0xd4, 0x1f, 0x8a, 0x37}
	syncMarkerBE = [4]byte{0x37, 0x8a, 0x1f, 0xd4}
)

// readSync consumes the 4-byte top-level sync word, identifying the
// stream's byte order. It must only be called at level 0.
func readSync(b *ByteSource) error {
	var buf [4]byte
	n, err := io.ReadFull(b, buf[:])
	if n < 4 {
		return fmt.Errorf("%w: sync word", ErrTruncated)
	}
	if err != nil {
		return err
	}

	switch buf {
	case syncMarkerLE:
		return nil
	case syncMarkerBE:
		return ErrUnsupportedEndian
	default:
		return ErrBadSync
	}
}

// DecodeHeader reads one record header from b's current position. At
// toplevel it first consumes and validates the 4-byte sync word; at
// nested levels, endianness and level are inherited from the parent
// (level = parentLevel + 1) and no sync word is present.
func DecodeHeader(b *ByteSource, toplevel bool, parentLevel int) (Header, error) {
	var h Header

	if toplevel {
		if err := readSync(b); err != nil {
			return h, err
		}
		h.Level = 0
	} else {
		h.Level = parentLevel + 1
	}

	firstByte, err := b.tell()
	if err != nil {
		return h, err
	}
	h.First_byte = firstByte

	var words [3]uint32
	if err := binary.Read(b, binary.LittleEndian, &words); err != nil {
		return h, fmt.Errorf("%w: record header", ErrTruncated)
	}

	typeWord, idWord, lengthWord := words[0], words[1], words[2]

	h.Type = bitsFromPos(typeWord, typePos, typeLen)
	h.User = bitFromPos(typeWord, userPos)
	h.Extended = bitFromPos(typeWord, extPos)
	h.Version = uint16(bitsFromPos(typeWord, versionPos, versionLen))

	h.Id = idWord

	h.Only_sub_objects = bitFromPos(lengthWord, onlySubObjectsPos)
	length := int64(bitsFromPos(lengthWord, 0, lengthLen))

	if h.Extended {
		var extWord uint32
		if err := binary.Read(b, binary.LittleEndian, &extWord); err != nil {
			return h, fmt.Errorf("%w: length extension word", ErrTruncated)
		}
		extension := int64(bitsFromPos(extWord, 0, extensionLen))
		length += extension << lengthLen
	}
	h.Length = length

	dataPos, err := b.tell()
	if err != nil {
		return h, err
	}
	h.Data_field_first_byte = dataPos

	return h, nil
}
