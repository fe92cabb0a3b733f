package eventio

// Record type ids. Values taken directly from the upstream simtel_array
// object catalogue where the specification names them explicitly
// (History, RunHeader, MCRunHeader, the telescope description septet,
// TriggerInformation, ArrayEvent, MCShower, MCEvent, CameraMonitoring,
// LaserCalibration, MCPhotoelectronSum, StereoReconstruction,
// CalibrationEvent); ids with no numbered analogue in that catalogue
// (PixelMonitoring, the TelescopeData/Photons/Emitter/PhotoElectrons
// family, CalibrationPhotoelectrons, InputCard, AtmosphericProfile,
// HistoryMeta) are assigned adjacent, unused numbers and are out of scope
// for exact numeric fidelity per the specification's framing/assembler
// boundary - the core only needs to dispatch on them consistently.
const (
	RecordHistory           uint32 = 70
	RecordHistoryCommandLine uint32 = 71
	RecordHistoryConfig     uint32 = 72
	RecordHistoryMeta       uint32 = 75

	RecordInputCard          uint32 = 1000
	RecordAtmosphericProfile uint32 = 1001

	RecordTelescopeData uint32 = 1204
	RecordPhotons       uint32 = 1205
	RecordEmitter       uint32 = 1206
	RecordPhotoElectrons uint32 = 1207

	RecordRunHeader              uint32 = 2000
	RecordMCRunHeader            uint32 = 2001
	RecordCameraSettings         uint32 = 2002
	RecordCameraOrganization     uint32 = 2003
	RecordPixelSettings          uint32 = 2004
	RecordDisabledPixels         uint32 = 2005
	RecordCameraSoftwareSettings uint32 = 2006
	RecordPointingCorrection     uint32 = 2007
	RecordDriveSettings          uint32 = 2008
	RecordTriggerInformation     uint32 = 2009
	RecordArrayEvent             uint32 = 2010
	RecordTelescopeEventHeader   uint32 = 2011
	RecordADCSums                uint32 = 2012
	RecordADCSamples             uint32 = 2013
	RecordImageParameters        uint32 = 2014
	RecordStereoReconstruction   uint32 = 2015
	RecordPixelTiming            uint32 = 2016
	RecordPixelTriggerTimes      uint32 = 2017
	RecordAuxAnalogTrace         uint32 = 2018
	RecordAuxDigitalTrace        uint32 = 2019

	RecordMCShower         uint32 = 2020
	RecordMCEvent          uint32 = 2021
	RecordCameraMonitoring uint32 = 2022
	RecordLaserCalibration uint32 = 2023
	RecordPixelMonitoring  uint32 = 2025
	RecordMCPhotoelectronSum uint32 = 2026
	RecordPixelList          uint32 = 2027
	RecordCalibrationEvent          uint32 = 2028
	RecordCalibrationPhotoelectrons uint32 = 2029
)

// Telescope-id encoding: a numeric range base plus the convention
// type = base + (tel_id mod 100) + 1000*(tel_id div 100), used to pack a
// small integer telescope id into a 16-bit type field instead of tabulating
// one type constant per telescope.
const (
	trackingTypeBase       uint32 = 2100
	telescopeEventTypeBase uint32 = 2200
)

// TrackingType returns the record type id for a tracking-position record
// belonging to telId.
func TrackingType(telId uint16) uint32 {
	return trackingTypeBase + uint32(telId)%100 + 1000*(uint32(telId)/100)
}

// TelescopeIdFromTrackingType recovers the telescope id packed into a
// tracking-record type, the inverse of TrackingType.
func TelescopeIdFromTrackingType(t uint32) uint16 {
	base := t - trackingTypeBase
	return uint16(100*(base/1000) + base%1000)
}

// TelescopeEventType returns the record type id for a telescope-event
// record belonging to telId.
func TelescopeEventType(telId uint16) uint32 {
	return telescopeEventTypeBase + uint32(telId)%100 + 1000*(uint32(telId)/100)
}

// TelescopeIdFromTelescopeEventType recovers the telescope id packed into a
// telescope-event record type, the inverse of TelescopeEventType.
func TelescopeIdFromTelescopeEventType(t uint32) uint16 {
	base := t - telescopeEventTypeBase
	return uint16(100*(base/1000) + base%1000)
}

// isTrackingType reports whether t falls in the tracking numeric range.
// The range is bounded at +1000*100 (100 "hundreds" groups), comfortably
// beyond any real telescope array, so it never collides with the fixed
// record ids above 2100 that are not telescope-id-encoded. Within each
// group of 1000 only the 100 ids from the base belong to it, which keeps
// it disjoint from the telescope-event range 100 ids above.
func isTrackingType(t uint32) bool {
	return t >= trackingTypeBase && t < trackingTypeBase+100000 && (t-trackingTypeBase)%1000 < 100
}

func isTelescopeEventType(t uint32) bool {
	return t >= telescopeEventTypeBase && t < telescopeEventTypeBase+100000 && (t-telescopeEventTypeBase)%1000 < 100
}

// TelescopeIdFromType recovers a telescope id from any type in either the
// tracking or telescope-event numeric range; ok is false for a type that
// falls in neither.
func TelescopeIdFromType(t uint32) (id uint16, ok bool) {
	switch {
	case isTrackingType(t):
		return TelescopeIdFromTrackingType(t), true
	case isTelescopeEventType(t):
		return TelescopeIdFromTelescopeEventType(t), true
	default:
		return 0, false
	}
}

// descriptionRecordTypes lists the seven per-telescope description record
// types that must each appear exactly once per telescope before any event
// iteration begins.
var descriptionRecordTypes = [...]uint32{
	RecordCameraSettings,
	RecordCameraOrganization,
	RecordPixelSettings,
	RecordDisabledPixels,
	RecordCameraSoftwareSettings,
	RecordDriveSettings,
	RecordPointingCorrection,
}

// descriptionRecordNames maps a description record type to its snake_case
// name, the name of the TelescopeDescription field its decoded value is
// stored in.
var descriptionRecordNames = map[uint32]string{
	RecordCameraSettings:         "camera_settings",
	RecordCameraOrganization:     "camera_organization",
	RecordPixelSettings:          "pixel_settings",
	RecordDisabledPixels:         "disabled_pixels",
	RecordCameraSoftwareSettings: "camera_software_settings",
	RecordDriveSettings:          "drive_settings",
	RecordPointingCorrection:     "pointing_correction",
}
