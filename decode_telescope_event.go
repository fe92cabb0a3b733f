package eventio

import (
	"fmt"
	"io"
)

// TelescopeEventHeader (type 2011): must be the first child of every
// TelescopeEvent, carrying the global trigger count and trigger time that
// every other grandchild in the same TelescopeEvent is implicitly
// relative to.
type TelescopeEventHeader struct {
	TelescopeId uint16
	GlobalCount uint32
	TriggerTime float64
}

func decodeTelescopeEventHeader(telId uint16, v *ObjectView) (TelescopeEventHeader, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return TelescopeEventHeader{}, err
	}
	count, err := readUint32(v)
	if err != nil {
		return TelescopeEventHeader{}, err
	}
	seconds, err := readInt32(v)
	if err != nil {
		return TelescopeEventHeader{}, err
	}
	nanoseconds, err := readInt32(v)
	if err != nil {
		return TelescopeEventHeader{}, err
	}
	return TelescopeEventHeader{
		TelescopeId: telId,
		GlobalCount: count,
		TriggerTime: float64(seconds) + float64(nanoseconds)*1e-9,
	}, nil
}

// ADCSums (type 2012): per-pixel, per-gain integrated charge.
type ADCSums struct {
	NPixels int32
	NGains  int32
	Sums    []int32
}

func decodeADCSums(v *ObjectView) (ADCSums, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return ADCSums{}, err
	}
	nGains, err := readInt32(v)
	if err != nil {
		return ADCSums{}, err
	}
	nPixels, err := readInt32(v)
	if err != nil {
		return ADCSums{}, err
	}
	sums, err := readInt32Array(v, nGains*nPixels)
	if err != nil {
		return ADCSums{}, err
	}
	return ADCSums{NPixels: nPixels, NGains: nGains, Sums: sums}, nil
}

// ADCSamples (type 2013): per-pixel, per-gain waveform samples.
type ADCSamples struct {
	NPixels  int32
	NGains   int32
	NSamples int32
	Samples  []int32
}

func decodeADCSamples(v *ObjectView) (ADCSamples, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return ADCSamples{}, err
	}
	nGains, err := readInt32(v)
	if err != nil {
		return ADCSamples{}, err
	}
	nPixels, err := readInt32(v)
	if err != nil {
		return ADCSamples{}, err
	}
	nSamples, err := readInt32(v)
	if err != nil {
		return ADCSamples{}, err
	}
	samples, err := readInt32Array(v, nGains*nPixels*nSamples)
	if err != nil {
		return ADCSamples{}, err
	}
	return ADCSamples{NPixels: nPixels, NGains: nGains, NSamples: nSamples, Samples: samples}, nil
}

// ImageParameters (type 2014): Hillas-style moments of a calibrated image.
type ImageParameters struct {
	Size     float32
	CentroidX float32
	CentroidY float32
	Length   float32
	Width    float32
}

func decodeImageParameters(v *ObjectView) (ImageParameters, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return ImageParameters{}, err
	}
	size, err := readFloat32(v)
	if err != nil {
		return ImageParameters{}, err
	}
	cx, err := readFloat32(v)
	if err != nil {
		return ImageParameters{}, err
	}
	cy, err := readFloat32(v)
	if err != nil {
		return ImageParameters{}, err
	}
	length, err := readFloat32(v)
	if err != nil {
		return ImageParameters{}, err
	}
	width, err := readFloat32(v)
	if err != nil {
		return ImageParameters{}, err
	}
	return ImageParameters{Size: size, CentroidX: cx, CentroidY: cy, Length: length, Width: width}, nil
}

// PixelTiming (type 2016): per-pixel pulse-arrival times from the
// calibrated waveform.
type PixelTiming struct {
	NPixels   int32
	PeakTimes []float32
}

func decodePixelTiming(v *ObjectView) (PixelTiming, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return PixelTiming{}, err
	}
	n, err := readInt32(v)
	if err != nil {
		return PixelTiming{}, err
	}
	times, err := readFloat32Array(v, n)
	if err != nil {
		return PixelTiming{}, err
	}
	return PixelTiming{NPixels: n, PeakTimes: times}, nil
}

// PixelTriggerTimes (type 2017): per-pixel trigger-level timing, distinct
// from the calibrated PixelTiming above.
type PixelTriggerTimes struct {
	NPixels      int32
	TriggerTimes []float32
}

func decodePixelTriggerTimes(v *ObjectView) (PixelTriggerTimes, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return PixelTriggerTimes{}, err
	}
	n, err := readInt32(v)
	if err != nil {
		return PixelTriggerTimes{}, err
	}
	times, err := readFloat32Array(v, n)
	if err != nil {
		return PixelTriggerTimes{}, err
	}
	return PixelTriggerTimes{NPixels: n, TriggerTimes: times}, nil
}

// PixelList (type 2027): a named subset of pixel indices (e.g. an image
// mask), keyed by the code carried in its id word since a single
// TelescopeEvent may carry more than one.
type PixelList struct {
	Code         int32
	PixelIndices []int32
}

func decodePixelList(header Header, v *ObjectView) (PixelList, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return PixelList{}, err
	}
	n, err := readInt32(v)
	if err != nil {
		return PixelList{}, err
	}
	indices, err := readInt32Array(v, n)
	if err != nil {
		return PixelList{}, err
	}
	return PixelList{Code: int32(header.Id), PixelIndices: indices}, nil
}

// AuxTrace is a decoded AuxiliaryAnalogTrace (type 2018) or
// AuxiliaryDigitalTrace (type 2019): an auxiliary waveform keyed by its
// record id, Kind distinguishing which of the two it came from.
type AuxTrace struct {
	Id      uint32
	Kind    string // "analog" or "digital"
	Samples []int32
}

func decodeAuxTrace(header Header, kind string, v *ObjectView) (AuxTrace, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return AuxTrace{}, err
	}
	n, err := readInt32(v)
	if err != nil {
		return AuxTrace{}, err
	}
	samples, err := readInt32Array(v, n)
	if err != nil {
		return AuxTrace{}, err
	}
	return AuxTrace{Id: header.Id, Kind: kind, Samples: samples}, nil
}

// TelescopeEvent is one telescope's slice of an ArrayEvent: its header
// plus whichever grandchild record types that particular event actually
// carried. Unknown grandchild types are skipped silently, per the
// array-event grammar's tolerance for forward-compatible additions.
type TelescopeEvent struct {
	TelescopeId           uint16
	Header                TelescopeEventHeader
	ADCSums               *ADCSums
	ADCSamples            *ADCSamples
	ImageParameters       *ImageParameters
	PixelTiming           *PixelTiming
	PixelTriggerTimes     *PixelTriggerTimes
	PixelLists            map[int32]PixelList
	AuxAnalogTraces       map[uint32]AuxTrace
	AuxDigitalTraces      map[uint32]AuxTrace
}

// parseTelescopeEvent decodes one TelescopeEvent object. Its first child
// must be a TelescopeEventHeader; anything else there is a framing error,
// not a tolerable gap.
func parseTelescopeEvent(obj *Object) (TelescopeEvent, error) {
	telId := TelescopeIdFromTelescopeEventType(obj.Header.Type)
	te := TelescopeEvent{
		TelescopeId:      telId,
		PixelLists:       map[int32]PixelList{},
		AuxAnalogTraces:  map[uint32]AuxTrace{},
		AuxDigitalTraces: map[uint32]AuxTrace{},
	}

	if len(obj.Children) == 0 || obj.Children[0].Header.Type != RecordTelescopeEventHeader {
		return te, fmt.Errorf("%w: telescope event %d must open with a TelescopeEventHeader", ErrUnexpectedChildType, telId)
	}
	hdr, err := decodeTelescopeEventHeader(telId, obj.Children[0].View())
	if err != nil {
		return te, err
	}
	te.Header = hdr

	for _, child := range obj.Children[1:] {
		switch child.Header.Type {
		case RecordADCSums:
			s, err := decodeADCSums(child.View())
			if err != nil {
				return te, err
			}
			te.ADCSums = &s
		case RecordADCSamples:
			s, err := decodeADCSamples(child.View())
			if err != nil {
				return te, err
			}
			te.ADCSamples = &s
		case RecordImageParameters:
			s, err := decodeImageParameters(child.View())
			if err != nil {
				return te, err
			}
			te.ImageParameters = &s
		case RecordPixelTiming:
			s, err := decodePixelTiming(child.View())
			if err != nil {
				return te, err
			}
			te.PixelTiming = &s
		case RecordPixelTriggerTimes:
			s, err := decodePixelTriggerTimes(child.View())
			if err != nil {
				return te, err
			}
			te.PixelTriggerTimes = &s
		case RecordPixelList:
			pl, err := decodePixelList(child.Header, child.View())
			if err != nil {
				return te, err
			}
			te.PixelLists[pl.Code] = pl
		case RecordAuxAnalogTrace:
			at, err := decodeAuxTrace(child.Header, "analog", child.View())
			if err != nil {
				return te, err
			}
			te.AuxAnalogTraces[at.Id] = at
		case RecordAuxDigitalTrace:
			at, err := decodeAuxTrace(child.Header, "digital", child.View())
			if err != nil {
				return te, err
			}
			te.AuxDigitalTraces[at.Id] = at
		default:
			// unrecognised grandchild: skipped silently
		}
	}

	return te, nil
}

// StereoReconstruction (type 2015): array-level geometric reconstruction
// derived from two or more triggered telescopes, supplementing the
// upstream's per-telescope image parameters.
type StereoReconstruction struct {
	CoreX   float32
	CoreY   float32
	Zenith  float32
	Azimuth float32
}

func decodeStereoReconstruction(v *ObjectView) (StereoReconstruction, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return StereoReconstruction{}, err
	}
	coreX, err := readFloat32(v)
	if err != nil {
		return StereoReconstruction{}, err
	}
	coreY, err := readFloat32(v)
	if err != nil {
		return StereoReconstruction{}, err
	}
	zenith, err := readFloat32(v)
	if err != nil {
		return StereoReconstruction{}, err
	}
	azimuth, err := readFloat32(v)
	if err != nil {
		return StereoReconstruction{}, err
	}
	return StereoReconstruction{CoreX: coreX, CoreY: coreY, Zenith: zenith, Azimuth: azimuth}, nil
}
