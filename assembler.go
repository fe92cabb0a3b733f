package eventio

import "fmt"

// TelescopeDescription collects the seven per-telescope description
// records (§4.7's description septet). Every telescope named in the run
// header must have all seven filed in before public iteration begins.
type TelescopeDescription struct {
	CameraSettings         *CameraSettings
	CameraOrganization     *CameraOrganization
	PixelSettings          *PixelSettings
	DisabledPixels         *DisabledPixels
	CameraSoftwareSettings *CameraSoftwareSettings
	DriveSettings          *DriveSettings
	PointingCorrection     *PointingCorrection
}

func (d *TelescopeDescription) complete() bool {
	return d.CameraSettings != nil &&
		d.CameraOrganization != nil &&
		d.PixelSettings != nil &&
		d.DisabledPixels != nil &&
		d.CameraSoftwareSettings != nil &&
		d.DriveSettings != nil &&
		d.PointingCorrection != nil
}

// MCEventRecord is what NextMCEvent yields: a pre-array-event Monte Carlo
// event optionally paired with the TelescopeData the assembler found by
// peeking one object ahead.
type MCEventRecord struct {
	Event          MCEvent
	Photons        map[uint16][]PhotonBunch
	Emitter        map[uint16]EmitterInfo
	PhotoElectrons map[uint16]PhotoElectrons
}

// Assembler is the stateful consumer that turns the flat object stream
// into domain-level array events and Monte Carlo events. It owns the
// ObjectIndex and every piece of rolling and cumulative state described
// in the specification's event-assembly state machine.
type Assembler struct {
	source *ByteSource
	index  *ObjectIndex
	warn   WarnFunc

	allowedTelescopes map[uint16]bool
	skipCalibration   bool

	Header              *RunHeader
	MCRunHeaders        []MCRunHeader
	InputCards          []InputCard
	AtmosphericProfiles []AtmosphericProfile
	History             []HistoryEntry
	GlobalMeta          map[string]string
	TelescopeMeta       map[int32]map[string]string

	NTelescopes           int32
	TelescopeDescriptions map[uint16]*TelescopeDescription

	CameraMonitorings map[uint16]CameraMonitoring
	LaserCalibrations map[uint16]LaserCalibration
	PixelMonitorings  map[uint16]PixelMonitoring

	currentMCShower         *MCShower
	currentMCEvent          *MCEvent
	currentArrayEvent       *ArrayEvent
	currentCalibrationEvent *ArrayEvent
	currentPhotoelectronSum *MCPhotoelectronSum
	currentTelescopeData    *TelescopeDataResult
	currentCalibrationPE    map[uint16]PhotoElectrons

	ready bool
}

// OpenOption configures an Assembler at construction time.
type OpenOption func(*Assembler)

// WithAllowedTelescopes restricts event assembly to the given telescope
// ids: array events whose trigger telescopes are entirely outside this
// set are never yielded, and per-telescope records outside it are
// dropped silently.
func WithAllowedTelescopes(ids []uint16) OpenOption {
	return func(a *Assembler) {
		m := make(map[uint16]bool, len(ids))
		for _, id := range ids {
			m[id] = true
		}
		a.allowedTelescopes = m
	}
}

// WithSkipCalibration disables CalibrationEvent assembly entirely; the
// records are still traversed and skipped, but never yielded.
func WithSkipCalibration(skip bool) OpenOption {
	return func(a *Assembler) { a.skipCalibration = skip }
}

// WithWarnFunc installs fn to receive every non-fatal Warning raised
// while reading the stream. The default is a no-op.
func WithWarnFunc(fn WarnFunc) OpenOption {
	return func(a *Assembler) {
		if fn != nil {
			a.warn = fn
		}
	}
}

// Open opens path, builds its object index, and drives dispatch until the
// header-readiness gate opens (or the stream ends) before returning, so
// the run header and telescope descriptions are in place as soon as Open
// returns.
func Open(path string, opts ...OpenOption) (*Assembler, error) {
	source, err := openByteSource(path)
	if err != nil {
		return nil, err
	}
	return newAssembler(source, opts...)
}

// newAssembler builds an Assembler directly over an already-constructed
// ByteSource, the common path Open funnels through after resolving a
// file path to bytes; also used directly by tests that assemble a
// fixture in memory without touching disk.
func newAssembler(source *ByteSource, opts ...OpenOption) (*Assembler, error) {
	a := &Assembler{
		source:                source,
		warn:                  noopWarnFunc,
		GlobalMeta:            map[string]string{},
		TelescopeMeta:         map[int32]map[string]string{},
		TelescopeDescriptions: map[uint16]*TelescopeDescription{},
		CameraMonitorings:     map[uint16]CameraMonitoring{},
		LaserCalibrations:     map[uint16]LaserCalibration{},
		PixelMonitorings:      map[uint16]PixelMonitoring{},
	}
	for _, opt := range opts {
		opt(a)
	}

	idx, err := buildObjectIndex(source, a.warn)
	if err != nil {
		return nil, err
	}
	a.index = idx

	if err := a.ensureReady(); err != nil {
		return nil, err
	}

	return a, nil
}

// descriptionFor returns (creating if necessary) the in-progress
// TelescopeDescription for telId.
func (a *Assembler) descriptionFor(telId uint16) *TelescopeDescription {
	d, ok := a.TelescopeDescriptions[telId]
	if !ok {
		d = &TelescopeDescription{}
		a.TelescopeDescriptions[telId] = d
	}
	return d
}

// dispatch applies one top-level Object's side effect to the assembler's
// state, in the priority order the specification lays out for the
// record types it names.
func (a *Assembler) dispatch(o *Object) error {
	switch o.Header.Type {
	case RecordMCEvent:
		ev, err := decodeMCEvent(o.Header, o.View())
		if err != nil {
			return err
		}
		a.currentMCEvent = &ev

	case RecordMCShower:
		sh, err := decodeMCShower(o.Header, o.View())
		if err != nil {
			return err
		}
		a.currentMCShower = &sh

	case RecordArrayEvent:
		ae, err := parseArrayEvent(o, a.allowedTelescopes)
		if err != nil {
			return err
		}
		a.currentArrayEvent = ae

	case RecordTelescopeData:
		td, err := parseTelescopeData(o)
		if err != nil {
			return err
		}
		a.currentTelescopeData = &td

	case RecordMCPhotoelectronSum:
		s, err := decodeMCPhotoelectronSum(o.Header, o.View())
		if err != nil {
			return err
		}
		a.currentPhotoelectronSum = &s

	case RecordCameraMonitoring:
		cm, err := decodeCameraMonitoring(o.Header, o.View())
		if err != nil {
			return err
		}
		telId := uint16(cm.TelescopeId)
		a.CameraMonitorings[telId] = mergeCameraMonitoring(a.CameraMonitorings[telId], cm)

	case RecordLaserCalibration:
		lc, err := decodeLaserCalibration(o.Header, o.View())
		if err != nil {
			return err
		}
		telId := uint16(lc.TelescopeId)
		a.LaserCalibrations[telId] = mergeLaserCalibration(a.LaserCalibrations[telId], lc)

	case RecordPixelMonitoring:
		pm, err := decodePixelMonitoring(o.Header, o.View())
		if err != nil {
			return err
		}
		telId := uint16(pm.TelescopeId)
		a.PixelMonitorings[telId] = mergePixelMonitoring(a.PixelMonitorings[telId], pm)

	case RecordCameraSettings, RecordCameraOrganization, RecordPixelSettings, RecordDisabledPixels,
		RecordCameraSoftwareSettings, RecordDriveSettings, RecordPointingCorrection:
		return a.dispatchDescription(o)

	case RecordRunHeader:
		rh, err := decodeRunHeader(o.Header, o.View())
		if err != nil {
			return err
		}
		a.Header = &rh
		a.NTelescopes = rh.NTelescopes

	case RecordMCRunHeader:
		mh, err := decodeMCRunHeader(o.Header, o.View())
		if err != nil {
			return err
		}
		a.MCRunHeaders = append(a.MCRunHeaders, mh)

	case RecordInputCard:
		ic, err := decodeInputCard(o.View())
		if err != nil {
			return err
		}
		a.InputCards = append(a.InputCards, ic)

	case RecordAtmosphericProfile:
		ap, err := decodeAtmosphericProfile(o.View())
		if err != nil {
			return err
		}
		a.AtmosphericProfiles = append(a.AtmosphericProfiles, ap)

	case RecordHistory:
		return a.dispatchHistory(o)

	case RecordHistoryMeta:
		hm, err := decodeHistoryMeta(o.Header, o.View())
		if err != nil {
			return err
		}
		if hm.Id == -1 {
			for k, v := range hm.Fields {
				a.GlobalMeta[k] = v
			}
		} else {
			m, ok := a.TelescopeMeta[hm.Id]
			if !ok {
				m = map[string]string{}
				a.TelescopeMeta[hm.Id] = m
			}
			for k, v := range hm.Fields {
				m[k] = v
			}
		}

	case RecordCalibrationEvent:
		return a.dispatchCalibrationEvent(o)

	case RecordCalibrationPhotoelectrons:
		return a.dispatchCalibrationPhotoelectrons(o)

	default:
		a.warn(Warning{
			Kind:    WarnUnknownObject,
			Message: fmt.Sprintf("unknown record type %d at offset %d", o.Header.Type, o.Header.First_byte),
			Offset:  o.Header.First_byte,
		})
	}

	return nil
}

func (a *Assembler) dispatchDescription(o *Object) error {
	switch o.Header.Type {
	case RecordCameraSettings:
		d, err := decodeCameraSettings(o.Header, o.View())
		if err != nil {
			return err
		}
		a.descriptionFor(uint16(d.TelescopeId)).CameraSettings = &d
	case RecordCameraOrganization:
		d, err := decodeCameraOrganization(o.Header, o.View())
		if err != nil {
			return err
		}
		a.descriptionFor(uint16(d.TelescopeId)).CameraOrganization = &d
	case RecordPixelSettings:
		d, err := decodePixelSettings(o.Header, o.View())
		if err != nil {
			return err
		}
		a.descriptionFor(uint16(d.TelescopeId)).PixelSettings = &d
	case RecordDisabledPixels:
		d, err := decodeDisabledPixels(o.Header, o.View())
		if err != nil {
			return err
		}
		a.descriptionFor(uint16(d.TelescopeId)).DisabledPixels = &d
	case RecordCameraSoftwareSettings:
		d, err := decodeCameraSoftwareSettings(o.Header, o.View())
		if err != nil {
			return err
		}
		a.descriptionFor(uint16(d.TelescopeId)).CameraSoftwareSettings = &d
	case RecordDriveSettings:
		d, err := decodeDriveSettings(o.Header, o.View())
		if err != nil {
			return err
		}
		a.descriptionFor(uint16(d.TelescopeId)).DriveSettings = &d
	case RecordPointingCorrection:
		d, err := decodePointingCorrection(o.Header, o.View())
		if err != nil {
			return err
		}
		a.descriptionFor(uint16(d.TelescopeId)).PointingCorrection = &d
	}
	return nil
}

func (a *Assembler) dispatchHistory(o *Object) error {
	for _, child := range o.Children {
		switch child.Header.Type {
		case RecordHistoryCommandLine:
			e, err := decodeHistoryCommandLine(child.View())
			if err != nil {
				return err
			}
			a.History = append(a.History, e)
		case RecordHistoryConfig:
			e, err := decodeHistoryConfig(child.View())
			if err != nil {
				return err
			}
			a.History = append(a.History, e)
		default:
			a.warn(Warning{
				Kind:    WarnUnknownObject,
				Message: fmt.Sprintf("unknown history child type %d at offset %d", child.Header.Type, child.Header.First_byte),
				Offset:  child.Header.First_byte,
			})
		}
	}
	return nil
}

// dispatchCalibrationEvent applies the telescope filter to the single
// child array-event directly (via parseArrayEvent's allowed parameter)
// rather than re-checking a rolling current_array_event slot, which is
// what the upstream does and gets wrong when the active branch is
// actually the calibration one.
func (a *Assembler) dispatchCalibrationEvent(o *Object) error {
	if a.skipCalibration {
		return nil
	}
	if len(o.Children) != 1 {
		return fmt.Errorf("%w: calibration event at offset %d must have exactly one child array-event", ErrUnexpectedChildType, o.Header.First_byte)
	}

	child := o.Children[0]
	ae, err := parseArrayEvent(child, a.allowedTelescopes)
	if err != nil {
		return err
	}
	if ae == nil {
		return nil
	}

	ae.EventId = -int64(child.Header.Id)
	ae.IsCalibration = true
	ae.CalibrationType = o.Header.Type

	if a.currentCalibrationPE != nil {
		ae.PhotoElectrons = a.currentCalibrationPE
		a.currentCalibrationPE = nil
	}

	a.currentCalibrationEvent = ae
	return nil
}

func (a *Assembler) dispatchCalibrationPhotoelectrons(o *Object) error {
	if len(o.Children) != 1 || o.Children[0].Header.Type != RecordTelescopeData {
		a.warn(Warning{
			Kind:    WarnUnexpectedNesting,
			Message: fmt.Sprintf("calibration photoelectrons at offset %d did not nest a single TelescopeData child", o.Header.First_byte),
			Offset:  o.Header.First_byte,
		})
		return nil
	}

	td, err := parseTelescopeData(o.Children[0])
	if err != nil {
		return err
	}
	if a.currentCalibrationPE == nil {
		a.currentCalibrationPE = map[uint16]PhotoElectrons{}
	}
	for telId, pe := range td.PhotoElectrons {
		a.currentCalibrationPE[telId] = pe
	}
	return nil
}

// step pulls and dispatches the next top-level object. ok is false at
// end of stream.
func (a *Assembler) step() (ok bool, err error) {
	obj, ok := a.index.Next()
	if !ok {
		return false, nil
	}
	if err := a.dispatch(obj); err != nil {
		return true, err
	}
	return true, nil
}

// anyEventSeen reports whether any of the header-readiness triggers have
// fired: an mc_shower, an array event (data or calibration), or a
// non-empty laser-calibration or camera-monitoring map.
func (a *Assembler) anyEventSeen() bool {
	return a.currentMCShower != nil ||
		a.currentArrayEvent != nil ||
		a.currentCalibrationEvent != nil ||
		len(a.LaserCalibrations) > 0 ||
		len(a.CameraMonitorings) > 0
}

// descriptionsComplete reports whether every telescope named in the run
// header has all seven description records filed in.
func (a *Assembler) descriptionsComplete() bool {
	if a.Header == nil {
		return false
	}
	for _, id := range a.Header.TelescopeIds {
		d, ok := a.TelescopeDescriptions[uint16(id)]
		if !ok || !d.complete() {
			return false
		}
	}
	return true
}

// ensureReady drives dispatch until the header-readiness gate opens (or
// the stream ends first), after which public iteration may begin. It is
// idempotent: once ready, subsequent calls are no-ops.
func (a *Assembler) ensureReady() error {
	if a.ready {
		return nil
	}
	for {
		if a.anyEventSeen() && a.descriptionsComplete() {
			a.ready = true
			return nil
		}
		ok, err := a.step()
		if err != nil {
			return err
		}
		if !ok {
			a.ready = true
			return nil
		}
	}
}

func snapshotCameraMonitorings(all map[uint16]CameraMonitoring, triggered map[uint16]TelescopeEvent) map[uint16]CameraMonitoring {
	out := make(map[uint16]CameraMonitoring, len(triggered))
	for telId := range triggered {
		if cm, ok := all[telId]; ok {
			out[telId] = cm
		}
	}
	return out
}

func snapshotLaserCalibrations(all map[uint16]LaserCalibration, triggered map[uint16]TelescopeEvent) map[uint16]LaserCalibration {
	out := make(map[uint16]LaserCalibration, len(triggered))
	for telId := range triggered {
		if lc, ok := all[telId]; ok {
			out[telId] = lc
		}
	}
	return out
}

func snapshotPixelMonitorings(all map[uint16]PixelMonitoring, triggered map[uint16]TelescopeEvent) map[uint16]PixelMonitoring {
	out := make(map[uint16]PixelMonitoring, len(triggered))
	for telId := range triggered {
		if pm, ok := all[telId]; ok {
			out[telId] = pm
		}
	}
	return out
}

// stampDataEvent merges rolling mc-shower/mc-event/telescope-data/
// photoelectron-sum state into ae, but only when the rolling state's
// event id agrees with ae's, and takes per-telescope snapshots of the
// cumulative monitoring maps restricted to the telescopes that actually
// triggered.
func (a *Assembler) stampDataEvent(ae *ArrayEvent) {
	if a.currentMCShower != nil && int64(a.currentMCShower.ShowerId) == ae.EventId {
		sh := *a.currentMCShower
		ae.MCShower = &sh
	}
	if a.currentMCEvent != nil && int64(a.currentMCEvent.EventId) == ae.EventId {
		ev := *a.currentMCEvent
		ae.MCEvent = &ev
		a.currentMCEvent = nil
	}
	if a.currentTelescopeData != nil && int64(a.currentTelescopeData.EventId) == ae.EventId {
		td := a.currentTelescopeData
		ae.Photons = td.Photons
		ae.Emitter = td.Emitter
		ae.PhotoElectrons = td.PhotoElectrons
		a.currentTelescopeData = nil
	}
	if a.currentPhotoelectronSum != nil && int64(a.currentPhotoelectronSum.EventId) == ae.EventId {
		s := *a.currentPhotoelectronSum
		ae.PhotoElectronSum = &s
		a.currentPhotoelectronSum = nil
	}

	ae.CameraMonitorings = snapshotCameraMonitorings(a.CameraMonitorings, ae.TelescopeEvents)
	ae.LaserCalibrations = snapshotLaserCalibrations(a.LaserCalibrations, ae.TelescopeEvents)
	ae.PixelMonitorings = snapshotPixelMonitorings(a.PixelMonitorings, ae.TelescopeEvents)
}

// NextArrayEvent yields the next assembled array or calibration event, or
// (nil, nil) at end of stream. Data events take priority over a pending
// calibration event on the same step, matching the dispatch priority
// order (ArrayEvent ahead of CalibrationEvent).
func (a *Assembler) NextArrayEvent() (*ArrayEvent, error) {
	if err := a.ensureReady(); err != nil {
		return nil, err
	}

	for {
		if a.currentArrayEvent != nil {
			ae := a.currentArrayEvent
			a.currentArrayEvent = nil
			a.stampDataEvent(ae)
			return ae, nil
		}
		if a.currentCalibrationEvent != nil {
			ce := a.currentCalibrationEvent
			a.currentCalibrationEvent = nil
			return ce, nil
		}

		ok, err := a.step()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}
}

// NextMCEvent yields the next pre-array-event Monte Carlo event, peeking
// one object ahead to attach TelescopeData if it immediately follows, or
// (nil, nil) at end of stream.
func (a *Assembler) NextMCEvent() (*MCEventRecord, error) {
	if err := a.ensureReady(); err != nil {
		return nil, err
	}

	for {
		if a.currentMCEvent != nil {
			ev := *a.currentMCEvent
			a.currentMCEvent = nil
			rec := &MCEventRecord{Event: ev}

			if peek, ok := a.index.PeekNext(); ok && peek.Header.Type == RecordTelescopeData {
				obj, _ := a.index.Next()
				td, err := parseTelescopeData(obj)
				if err != nil {
					return nil, err
				}
				rec.Photons = td.Photons
				rec.Emitter = td.Emitter
				rec.PhotoElectrons = td.PhotoElectrons
			}

			return rec, nil
		}

		ok, err := a.step()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}
}
