package eventio

import "io"

// Tracking-position record id bits: besides the telescope id redundantly
// packed into the low bits, bit 8 and bit 9 of the id word flag which of
// the raw/corrected azimuth-altitude pairs the payload actually carries.
const (
	trackingHasRawBit = 1 << 8
	trackingHasCorBit = 1 << 9
)

// TrackingPosition (type 2100-range): a telescope's pointing direction at
// one instant, as raw (uncorrected) and/or pointing-model-corrected
// azimuth/altitude pairs depending on the flag bits in its id word.
type TrackingPosition struct {
	TelescopeId uint16
	HasRaw      bool
	HasCor      bool
	AzimuthRaw  float32
	AltitudeRaw float32
	AzimuthCor  float32
	AltitudeCor float32
}

// idToTelescopeId recovers the telescope id redundantly packed into a
// tracking record's id word, independent of the type-encoded one, so the
// two can be cross-checked.
func idToTelescopeId(id uint32) uint16 {
	return uint16((id & 0xff) | ((id & 0x3f000000) >> 16))
}

// decodeTrackingPosition decodes a TrackingPosition payload. The telescope
// id is derived from the record's type and cross-checked against the id
// redundantly packed into the id word; a mismatch between the two
// indicates a corrupt or mis-framed stream.
func decodeTrackingPosition(header Header, v *ObjectView) (TrackingPosition, error) {
	telId := TelescopeIdFromTrackingType(header.Type)
	if fromId := idToTelescopeId(header.Id); fromId != telId {
		return TrackingPosition{}, errTelescopeIdMismatch(header.Type, header.Id, telId, fromId)
	}

	if err := checkVersion(header.Type, header.Version, trackingVersionTag{}); err != nil {
		return TrackingPosition{}, err
	}

	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return TrackingPosition{}, err
	}

	tp := TrackingPosition{
		TelescopeId: telId,
		HasRaw:      header.Id&trackingHasRawBit != 0,
		HasCor:      header.Id&trackingHasCorBit != 0,
	}

	if tp.HasRaw {
		az, err := readFloat32(v)
		if err != nil {
			return TrackingPosition{}, err
		}
		alt, err := readFloat32(v)
		if err != nil {
			return TrackingPosition{}, err
		}
		tp.AzimuthRaw, tp.AltitudeRaw = az, alt
	}

	if tp.HasCor {
		az, err := readFloat32(v)
		if err != nil {
			return TrackingPosition{}, err
		}
		alt, err := readFloat32(v)
		if err != nil {
			return TrackingPosition{}, err
		}
		tp.AzimuthCor, tp.AltitudeCor = az, alt
	}

	return tp, nil
}
