package eventio

import "io"

// MCShower (type 2020): the primary-particle shower parameters shared by
// every reuse of a single CORSIKA-simulated shower. Filed under its
// record id, a shower id distinct from the per-reuse MCEvent ids that
// follow it.
type MCShower struct {
	ShowerId    uint32
	PrimaryId   int32
	Zenith      float32
	Azimuth     float32
	TotalEnergy float32
	XMax        float32
	HMax        float32
}

func decodeMCShower(header Header, v *ObjectView) (MCShower, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return MCShower{}, err
	}
	primaryId, err := readInt32(v)
	if err != nil {
		return MCShower{}, err
	}
	zenith, err := readFloat32(v)
	if err != nil {
		return MCShower{}, err
	}
	azimuth, err := readFloat32(v)
	if err != nil {
		return MCShower{}, err
	}
	totalEnergy, err := readFloat32(v)
	if err != nil {
		return MCShower{}, err
	}
	xmax, err := readFloat32(v)
	if err != nil {
		return MCShower{}, err
	}
	hmax, err := readFloat32(v)
	if err != nil {
		return MCShower{}, err
	}
	return MCShower{
		ShowerId:    header.Id,
		PrimaryId:   primaryId,
		Zenith:      zenith,
		Azimuth:     azimuth,
		TotalEnergy: totalEnergy,
		XMax:        xmax,
		HMax:        hmax,
	}, nil
}

// MCEvent (type 2021): one simulated reuse of a shower, carrying the core
// position this particular reuse landed the shower axis at, and the
// reuse counter distinguishing it from siblings sharing the same shower.
type MCEvent struct {
	EventId uint32
	Reuse   int32
	CoreX   float32
	CoreY   float32
}

func decodeMCEvent(header Header, v *ObjectView) (MCEvent, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return MCEvent{}, err
	}
	reuse, err := readInt32(v)
	if err != nil {
		return MCEvent{}, err
	}
	coreX, err := readFloat32(v)
	if err != nil {
		return MCEvent{}, err
	}
	coreY, err := readFloat32(v)
	if err != nil {
		return MCEvent{}, err
	}
	return MCEvent{
		EventId: header.Id,
		Reuse:   reuse,
		CoreX:   coreX,
		CoreY:   coreY,
	}, nil
}

// MCPhotoelectronSum (type 2026): one scalar photoelectron-yield total per
// telescope, a cheap summary counterpart to the full per-pixel
// PhotoElectrons records nested inside TelescopeData.
type MCPhotoelectronSum struct {
	EventId       uint32
	TelescopeSums map[uint16]float32
}

func decodeMCPhotoelectronSum(header Header, v *ObjectView) (MCPhotoelectronSum, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return MCPhotoelectronSum{}, err
	}
	n, err := readInt32(v)
	if err != nil {
		return MCPhotoelectronSum{}, err
	}
	telIds, err := readUint32Array(v, n)
	if err != nil {
		return MCPhotoelectronSum{}, err
	}
	sums, err := readFloat32Array(v, n)
	if err != nil {
		return MCPhotoelectronSum{}, err
	}

	out := MCPhotoelectronSum{EventId: header.Id, TelescopeSums: make(map[uint16]float32, n)}
	for i, telId := range telIds {
		out.TelescopeSums[uint16(telId)] = sums[i]
	}
	return out, nil
}
