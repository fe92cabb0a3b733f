package eventio

import (
	"io"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// HistoryEntry is a single decoded History (type 70) child record: either
// a HistoryCommandLine or a HistoryConfig, distinguished by Kind, each
// carrying a Unix timestamp and a line of text, per the supplemented
// History-child decoding this module adds over the upstream's opaque
// History container.
type HistoryEntry struct {
	Kind      string // "command_line" or "config"
	Timestamp int64  // seconds since the Unix epoch
	Text      string
	JulianDay float64
}

// newHistoryEntry derives a Julian Day from ts, the same calendar
// conversion job the (superseded) decode/params.go draft used the julian
// package for when deriving a reference time from an embedded timestamp.
func newHistoryEntry(kind string, ts int64, text string) HistoryEntry {
	t := time.Unix(ts, 0).UTC()
	jd := julian.TimeToJD(t)
	return HistoryEntry{
		Kind:      kind,
		Timestamp: ts,
		Text:      text,
		JulianDay: float64(jd),
	}
}

// decodeHistoryCommandLine decodes a HistoryCommandLine (type 71) child:
// a little-endian int32 timestamp followed by a length-prefixed string.
func decodeHistoryCommandLine(v *ObjectView) (HistoryEntry, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return HistoryEntry{}, err
	}
	ts, text, err := readTimestampedString(v)
	if err != nil {
		return HistoryEntry{}, err
	}
	return newHistoryEntry("command_line", ts, text), nil
}

// decodeHistoryConfig decodes a HistoryConfig (type 72) child: identical
// wire layout to HistoryCommandLine, distinguished only by its type id.
func decodeHistoryConfig(v *ObjectView) (HistoryEntry, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return HistoryEntry{}, err
	}
	ts, text, err := readTimestampedString(v)
	if err != nil {
		return HistoryEntry{}, err
	}
	return newHistoryEntry("config", ts, text), nil
}
