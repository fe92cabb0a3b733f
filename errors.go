package eventio

import (
	"errors"
	"fmt"
)

// Sentinel errors for the closed taxonomy of framing and assembly failures.
// These are the errors that abort construction or propagate to the caller
// of a per-event iterator; conditions that should not abort iteration are
// reported as Warning values instead (see WarnFunc).
var (
	ErrNotEventIO          = errors.New("eventio: not an EventIO stream")
	ErrUnsupportedEndian   = errors.New("eventio: big-endian streams are not supported")
	ErrBadSync             = errors.New("eventio: sync word corrupt")
	ErrTruncated           = errors.New("eventio: short read")
	ErrUnsupportedVersion  = errors.New("eventio: unsupported record version")
	ErrTelescopeIdMismatch = errors.New("eventio: telescope id in type and id word do not match")
	ErrUnexpectedChildType = errors.New("eventio: unexpected child record type")
	ErrNoTrackingPositions = errors.New("eventio: telescope event has no matching tracking position")
)

// WarningKind classifies a non-fatal condition surfaced through WarnFunc.
type WarningKind int

const (
	// WarnTruncated indicates a short read at a top-level record boundary;
	// iteration stops gracefully and everything decoded so far remains valid.
	WarnTruncated WarningKind = iota
	// WarnUnknownObject indicates a record type absent from the TypeRegistry;
	// the record is retained opaquely and iteration continues.
	WarnUnknownObject
	// WarnUnexpectedNesting indicates a grandchild record appeared in a slot
	// the grammar did not expect (CalibrationPhotoelectrons nesting, mostly).
	WarnUnexpectedNesting
)

// Warning is a non-fatal condition handed to a caller-supplied WarnFunc
// rather than returned as an error, per the propagation policy in the
// error handling design: truncation and unknown types must not abort an
// otherwise healthy stream.
type Warning struct {
	Kind    WarningKind
	Message string
	Offset  int64
}

func (w Warning) String() string {
	return w.Message
}

// WarnFunc receives every Warning raised while reading a stream.
type WarnFunc func(Warning)

func noopWarnFunc(Warning) {}

// errTelescopeIdMismatch wraps ErrTelescopeIdMismatch with the two
// disagreeing telescope ids, one recovered from the record's type and one
// redundantly packed into its id word.
func errTelescopeIdMismatch(recordType, id uint32, fromType, fromId uint16) error {
	return fmt.Errorf("%w: type=%d id=%d telescope(type)=%d telescope(id)=%d",
		ErrTelescopeIdMismatch, recordType, id, fromType, fromId)
}
