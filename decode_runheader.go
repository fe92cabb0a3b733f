package eventio

import (
	"io"
)

// RunHeader is the one-shot per-run header (type 2000): run identity,
// telescope count and ids, plus the free-text target/observer fields the
// upstream reads as two null/length-terminated strings after the fixed
// part of the layout.
type RunHeader struct {
	RunId            int32
	ObservationMode  int32
	NTelescopes      int32
	TelescopeIds     []int32
	Target           string
	Observer         string
}

// decodeRunHeader decodes a RunHeader payload. The record id carries the
// run id directly, per the upstream's `self.run_id = self.header.id`.
func decodeRunHeader(header Header, v *ObjectView) (RunHeader, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return RunHeader{}, err
	}

	var rh RunHeader
	rh.RunId = int32(header.Id)

	mode, err := readInt32(v)
	if err != nil {
		return RunHeader{}, err
	}
	rh.ObservationMode = mode

	nTel, err := readInt32(v)
	if err != nil {
		return RunHeader{}, err
	}
	rh.NTelescopes = nTel

	ids, err := readInt32Array(v, nTel)
	if err != nil {
		return RunHeader{}, err
	}
	rh.TelescopeIds = ids

	target, err := readString(v)
	if err != nil {
		return RunHeader{}, err
	}
	rh.Target = target

	observer, err := readString(v)
	if err != nil {
		return RunHeader{}, err
	}
	rh.Observer = observer

	return rh, nil
}

// MCRunHeader is the Monte Carlo run header (type 2001): its layout is
// version-dispatched upstream, raising an error on a version absent from
// the version map. This module's decoder implements the common leading
// fields every known version shares and gates on version the same way.
type MCRunHeader struct {
	Version           uint16
	ShowerProgId      int32
	ShowerProgVersion int32
	ObservationHeight float32
	EnergyRangeMin    float32
	EnergyRangeMax    float32
	EnergySlope       float32
}

func decodeMCRunHeader(header Header, v *ObjectView) (MCRunHeader, error) {
	if err := checkVersion(header.Type, header.Version, mcRunHeaderVersionTag{}); err != nil {
		return MCRunHeader{}, err
	}
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return MCRunHeader{}, err
	}

	progId, err := readInt32(v)
	if err != nil {
		return MCRunHeader{}, err
	}
	progVers, err := readInt32(v)
	if err != nil {
		return MCRunHeader{}, err
	}
	height, err := readFloat32(v)
	if err != nil {
		return MCRunHeader{}, err
	}
	energyMin, err := readFloat32(v)
	if err != nil {
		return MCRunHeader{}, err
	}
	energyMax, err := readFloat32(v)
	if err != nil {
		return MCRunHeader{}, err
	}
	energySlope, err := readFloat32(v)
	if err != nil {
		return MCRunHeader{}, err
	}

	return MCRunHeader{
		Version:           header.Version,
		ShowerProgId:       progId,
		ShowerProgVersion:  progVers,
		ObservationHeight:  height,
		EnergyRangeMin:     energyMin,
		EnergyRangeMax:     energyMax,
		EnergySlope:        energySlope,
	}, nil
}

// InputCard holds the CORSIKA input-card text verbatim; parsing its
// contents into individual directives is out of scope (the framing layer
// only needs to dispatch to it and hand back the raw text).
type InputCard struct {
	Text string
}

func decodeInputCard(v *ObjectView) (InputCard, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return InputCard{}, err
	}
	buf := make([]byte, v.Len())
	n, err := io.ReadFull(v, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return InputCard{}, err
	}
	return InputCard{Text: string(buf[:n])}, nil
}

// AtmosphericProfile holds the raw atmospheric-density-profile bytes; its
// numeric layout is a histogram/profile format out of scope for this
// module (see the purpose and scope boundary).
type AtmosphericProfile struct {
	Raw []byte
}

func decodeAtmosphericProfile(v *ObjectView) (AtmosphericProfile, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return AtmosphericProfile{}, err
	}
	buf := make([]byte, v.Len())
	n, err := io.ReadFull(v, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return AtmosphericProfile{}, err
	}
	return AtmosphericProfile{Raw: buf[:n]}, nil
}

// HistoryMeta carries free-form key/value metadata keyed to either the
// global run (Id == -1) or a single telescope (Id == telescope id), per
// the assembler's dispatch rule for this record.
type HistoryMeta struct {
	Id     int32
	Fields map[string]string
}

func decodeHistoryMeta(header Header, v *ObjectView) (HistoryMeta, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return HistoryMeta{}, err
	}

	hm := HistoryMeta{Id: int32(header.Id), Fields: map[string]string{}}

	count, err := readInt32(v)
	if err != nil {
		return HistoryMeta{}, err
	}

	for i := int32(0); i < count; i++ {
		key, err := readString(v)
		if err != nil {
			return HistoryMeta{}, err
		}
		value, err := readString(v)
		if err != nil {
			return HistoryMeta{}, err
		}
		hm.Fields[key] = value
	}

	return hm, nil
}
