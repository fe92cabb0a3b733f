package eventio

import (
	"github.com/samber/lo"
)

// IndexStats summarises an ObjectIndex the same way FileInfo.QInfo reports
// on a ping sequence: counts per top-level record type and the set of
// telescope ids the stream's tracking/telescope-event type ranges
// encode, useful for a quick sanity check before driving the full
// assembler over a large file.
type IndexStats struct {
	RecordCounts  map[uint32]int
	TelescopeIds  []uint16
	TotalObjects  int
	DuplicateType []uint32
}

// Stats walks every top-level object once (no payload decoding) and
// tallies per-type counts and the union of telescope ids discovered
// through the tracking/telescope-event numeric ranges.
func (idx *ObjectIndex) Stats() IndexStats {
	counts := make(map[uint32]int)
	var typesSeen []uint32
	var telIds []uint16

	for _, o := range idx.Objects {
		counts[o.Header.Type]++
		typesSeen = append(typesSeen, o.Header.Type)
		if telId, ok := TelescopeIdFromType(o.Header.Type); ok {
			telIds = append(telIds, telId)
		}
	}

	return IndexStats{
		RecordCounts:  counts,
		TelescopeIds:  lo.Uniq(telIds),
		TotalObjects:  len(idx.Objects),
		DuplicateType: lo.FindDuplicates(typesSeen),
	}
}
