package eventio

import (
	"fmt"
	"io"
)

// TriggerInformation (type 2009): must be the first child of every
// ArrayEvent, naming which telescopes participated in the trigger. Its
// own record id is the authoritative event id for the ArrayEvent it
// opens.
type TriggerInformation struct {
	EventId      uint32
	TelescopeIds []uint16
}

func decodeTriggerInformation(header Header, v *ObjectView) (TriggerInformation, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return TriggerInformation{}, err
	}
	n, err := readInt32(v)
	if err != nil {
		return TriggerInformation{}, err
	}
	ids, err := readUint32Array(v, n)
	if err != nil {
		return TriggerInformation{}, err
	}
	telIds := make([]uint16, len(ids))
	for i, id := range ids {
		telIds[i] = uint16(id)
	}
	return TriggerInformation{EventId: header.Id, TelescopeIds: telIds}, nil
}

// ArrayEvent (type 2010) is the fully assembled record this reader's
// public iterators yield: the trigger information plus every telescope's
// event data and tracking position, keyed by telescope id, and whatever
// optional array-level reconstruction accompanied them. A positive
// EventId came from an ordinary ArrayEvent; a negative one is the id of
// a CalibrationEvent's single child, negated so data and calibration
// events never collide in a combined index.
type ArrayEvent struct {
	EventId           int64
	IsCalibration     bool
	CalibrationType   uint32
	Trigger           TriggerInformation
	TelescopeEvents   map[uint16]TelescopeEvent
	TrackingPositions map[uint16]TrackingPosition
	Stereo            *StereoReconstruction

	MCShower         *MCShower
	MCEvent          *MCEvent
	Photons          map[uint16][]PhotonBunch
	Emitter          map[uint16]EmitterInfo
	PhotoElectrons   map[uint16]PhotoElectrons
	PhotoElectronSum *MCPhotoelectronSum

	CameraMonitorings map[uint16]CameraMonitoring
	LaserCalibrations map[uint16]LaserCalibration
	PixelMonitorings  map[uint16]PixelMonitoring
}

// parseArrayEvent decodes an ArrayEvent object's children per the
// array-event grammar: a single leading TriggerInformation, then any
// interleaving of TelescopeEvent and TrackingPosition children, with an
// optional trailing StereoReconstruction. When allowed is non-nil, only
// telescopes present in it are kept, and a (nil, nil) result means the
// event had no surviving telescopes after filtering and should not be
// yielded.
func parseArrayEvent(obj *Object, allowed map[uint16]bool) (*ArrayEvent, error) {
	if len(obj.Children) == 0 || obj.Children[0].Header.Type != RecordTriggerInformation {
		return nil, fmt.Errorf("%w: array event must open with TriggerInformation", ErrUnexpectedChildType)
	}
	trigger, err := decodeTriggerInformation(obj.Children[0].Header, obj.Children[0].View())
	if err != nil {
		return nil, err
	}

	ae := &ArrayEvent{
		EventId:           int64(trigger.EventId),
		Trigger:           trigger,
		TelescopeEvents:   map[uint16]TelescopeEvent{},
		TrackingPositions: map[uint16]TrackingPosition{},
	}

	for _, child := range obj.Children[1:] {
		switch {
		case isTelescopeEventType(child.Header.Type):
			telId := TelescopeIdFromTelescopeEventType(child.Header.Type)
			if allowed != nil && !allowed[telId] {
				continue
			}
			te, err := parseTelescopeEvent(child)
			if err != nil {
				return nil, err
			}
			ae.TelescopeEvents[telId] = te
		case isTrackingType(child.Header.Type):
			tp, err := decodeTrackingPosition(child.Header, child.View())
			if err != nil {
				return nil, err
			}
			if allowed != nil && !allowed[tp.TelescopeId] {
				continue
			}
			ae.TrackingPositions[tp.TelescopeId] = tp
		case child.Header.Type == RecordStereoReconstruction:
			st, err := decodeStereoReconstruction(child.View())
			if err != nil {
				return nil, err
			}
			ae.Stereo = &st
		default:
			// unrecognised grandchild: skipped silently
		}
	}

	for telId := range ae.TelescopeEvents {
		if _, ok := ae.TrackingPositions[telId]; !ok {
			return nil, fmt.Errorf("%w: telescope %d", ErrNoTrackingPositions, telId)
		}
	}

	if allowed != nil && len(ae.TelescopeEvents) == 0 {
		return nil, nil
	}

	return ae, nil
}
