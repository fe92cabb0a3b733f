package eventio

import (
	"encoding/binary"
	"fmt"
)

// Shared primitive readers used by every payload decoder. Each decoder
// reads through an Object's own ObjectView cursor and never mutates
// absolute positions observed by the index (see ObjectView), and every
// decoder re-seeks to 0 at entry so it is idempotent when re-invoked.

func readUint32(v *ObjectView) (uint32, error) {
	var x uint32
	if err := binary.Read(v, binary.LittleEndian, &x); err != nil {
		return 0, fmt.Errorf("%w: uint32", errTruncatedPayload)
	}
	return x, nil
}

func readInt32(v *ObjectView) (int32, error) {
	var x int32
	if err := binary.Read(v, binary.LittleEndian, &x); err != nil {
		return 0, fmt.Errorf("%w: int32", errTruncatedPayload)
	}
	return x, nil
}

func readUint16(v *ObjectView) (uint16, error) {
	var x uint16
	if err := binary.Read(v, binary.LittleEndian, &x); err != nil {
		return 0, fmt.Errorf("%w: uint16", errTruncatedPayload)
	}
	return x, nil
}

func readFloat32(v *ObjectView) (float32, error) {
	var x float32
	if err := binary.Read(v, binary.LittleEndian, &x); err != nil {
		return 0, fmt.Errorf("%w: float32", errTruncatedPayload)
	}
	return x, nil
}

func readFloat32Array(v *ObjectView, n int32) ([]float32, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative array length", errTruncatedPayload)
	}
	out := make([]float32, n)
	if n == 0 {
		return out, nil
	}
	if err := binary.Read(v, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("%w: float32 array of %d", errTruncatedPayload, n)
	}
	return out, nil
}

func readInt32Array(v *ObjectView, n int32) ([]int32, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative array length", errTruncatedPayload)
	}
	out := make([]int32, n)
	if n == 0 {
		return out, nil
	}
	if err := binary.Read(v, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("%w: int32 array of %d", errTruncatedPayload, n)
	}
	return out, nil
}

func readUint32Array(v *ObjectView, n int32) ([]uint32, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative array length", errTruncatedPayload)
	}
	out := make([]uint32, n)
	if n == 0 {
		return out, nil
	}
	if err := binary.Read(v, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("%w: uint32 array of %d", errTruncatedPayload, n)
	}
	return out, nil
}

// readString reads a length-prefixed string: an unsigned 16-bit length
// followed by that many raw bytes, the wire format every string field in
// this stream uses (run header target/observer, history command lines).
func readString(v *ObjectView) (string, error) {
	n, err := readUint16(v)
	if err != nil {
		return "", fmt.Errorf("%w: string length", err)
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := v.Read(buf); err != nil {
		return "", fmt.Errorf("%w: string body of %d bytes", errTruncatedPayload, n)
	}
	return string(buf), nil
}

// readTimestampedString reads the common History-child layout: a
// little-endian int32 Unix timestamp followed by a length-prefixed
// string.
func readTimestampedString(v *ObjectView) (int64, string, error) {
	ts, err := readInt32(v)
	if err != nil {
		return 0, "", fmt.Errorf("%w: timestamp", err)
	}
	text, err := readString(v)
	if err != nil {
		return 0, "", err
	}
	return int64(ts), text, nil
}
