package eventio

import "io"

// PhotonBunch is one row of a Photons record: a weighted bundle of
// Cherenkov photons reaching the telescope aperture together, as the
// air-shower simulation produces them before camera-level digitisation.
type PhotonBunch struct {
	X         float32
	Y         float32
	Cx        float32
	Cy        float32
	Time      float32
	Zem       float32
	Photons   float32
	Lambda    float32
	Scattered int32
}

// decodePhotonBunches reads a Photons (type 1205) payload: a count
// followed by that many fixed-width bunch rows.
func decodePhotonBunches(v *ObjectView) ([]PhotonBunch, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	n, err := readInt32(v)
	if err != nil {
		return nil, err
	}
	out := make([]PhotonBunch, n)
	for i := int32(0); i < n; i++ {
		row, err := readFloat32Array(v, 9)
		if err != nil {
			return nil, err
		}
		out[i] = PhotonBunch{
			X: row[0], Y: row[1], Cx: row[2], Cy: row[3],
			Time: row[4], Zem: row[5], Photons: row[6], Lambda: row[7],
			Scattered: int32(row[8]),
		}
	}
	return out, nil
}

// EmitterInfo is a decoded Emitter (type 1206) record: simulator-specific
// metadata about the light source a Photons block came from, carried
// opaquely since its internal structure varies by simulator and is not
// needed to assemble events.
type EmitterInfo struct {
	TelescopeId uint16
	Raw         []byte
}

func decodeEmitter(header Header, v *ObjectView) (EmitterInfo, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return EmitterInfo{}, err
	}
	buf := make([]byte, v.Len())
	if _, err := io.ReadFull(v, buf); err != nil {
		return EmitterInfo{}, err
	}
	return EmitterInfo{TelescopeId: uint16(header.Id), Raw: buf}, nil
}

// PhotoElectrons (type 1207): per-photoelectron arrival time and
// amplitude produced by the camera's photon-detection simulation for one
// telescope, nested inside that telescope's TelescopeData block.
type PhotoElectrons struct {
	TelescopeId uint16
	Times       []float32
	Amplitudes  []float32
}

func decodePhotoElectrons(header Header, v *ObjectView) (PhotoElectrons, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return PhotoElectrons{}, err
	}
	n, err := readInt32(v)
	if err != nil {
		return PhotoElectrons{}, err
	}
	times, err := readFloat32Array(v, n)
	if err != nil {
		return PhotoElectrons{}, err
	}
	amplitudes, err := readFloat32Array(v, n)
	if err != nil {
		return PhotoElectrons{}, err
	}
	return PhotoElectrons{TelescopeId: uint16(header.Id), Times: times, Amplitudes: amplitudes}, nil
}

// TelescopeDataResult is the outcome of parsing one TelescopeData
// (type 1204) object: the per-telescope photon bunches, optional emitter
// metadata, and photoelectron records it nested, keyed by telescope id.
type TelescopeDataResult struct {
	EventId        uint32
	Photons        map[uint16][]PhotonBunch
	Emitter        map[uint16]EmitterInfo
	PhotoElectrons map[uint16]PhotoElectrons
}

// parseTelescopeData decodes a TelescopeData object's children. Emitter
// metadata is kept only when its raw payload is non-empty, mirroring the
// upstream's treatment of an empty Emitter as "none".
func parseTelescopeData(obj *Object) (TelescopeDataResult, error) {
	res := TelescopeDataResult{
		EventId:        obj.Header.Id,
		Photons:        map[uint16][]PhotonBunch{},
		Emitter:        map[uint16]EmitterInfo{},
		PhotoElectrons: map[uint16]PhotoElectrons{},
	}

	for _, child := range obj.Children {
		switch child.Header.Type {
		case RecordPhotoElectrons:
			pe, err := decodePhotoElectrons(child.Header, child.View())
			if err != nil {
				return res, err
			}
			res.PhotoElectrons[pe.TelescopeId] = pe
		case RecordPhotons:
			bunches, err := decodePhotonBunches(child.View())
			if err != nil {
				return res, err
			}
			res.Photons[uint16(child.Header.Id)] = bunches
		case RecordEmitter:
			em, err := decodeEmitter(child.Header, child.View())
			if err != nil {
				return res, err
			}
			if len(em.Raw) > 0 {
				res.Emitter[em.TelescopeId] = em
			}
		default:
			// unrecognised grandchild: skipped silently
		}
	}

	return res, nil
}
