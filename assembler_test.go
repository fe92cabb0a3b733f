package eventio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// The helpers below build a minimal synthetic stream exercising one full
// array event, closely modelled on the one_shower fixture: a single
// telescope, a single reused shower, one photon-bunch array.

// writeRecord and writeContainer emit a record with no sync word, the
// form every nested (non-top-level) record takes. writeTopRecord and
// writeTopContainer emit the same records preceded by a sync word, the
// form DecodeHeader requires of every top-level record (header.go's
// readSync, called once per top-level object, not once per stream).
func writeRecord(buf *bytes.Buffer, recType uint32, version uint16, id uint32, payload []byte) {
	writeHeaderWords(buf, recType, version, false, false, id, int64(len(payload)))
	buf.Write(payload)
}

func writeContainer(buf *bytes.Buffer, recType uint32, id uint32, children *bytes.Buffer) {
	writeHeaderWords(buf, recType, 0, false, true, id, int64(children.Len()))
	buf.Write(children.Bytes())
}

func writeTopRecord(buf *bytes.Buffer, recType uint32, version uint16, id uint32, payload []byte) {
	buf.Write(syncMarkerLE[:])
	writeRecord(buf, recType, version, id, payload)
}

func writeTopContainer(buf *bytes.Buffer, recType uint32, id uint32, children *bytes.Buffer) {
	buf.Write(syncMarkerLE[:])
	writeContainer(buf, recType, id, children)
}

func float32Bytes(vals ...float32) []byte {
	var buf bytes.Buffer
	for _, v := range vals {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func int32Bytes(vals ...int32) []byte {
	var buf bytes.Buffer
	for _, v := range vals {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

func lengthPrefixedString(s string) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint16(len(s)))
	buf.WriteString(s)
	return buf.Bytes()
}

func runHeaderPayload(telIds []int32, target, observer string) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(0)) // observation mode
	binary.Write(&buf, binary.LittleEndian, int32(len(telIds)))
	buf.Write(int32Bytes(telIds...))
	buf.Write(lengthPrefixedString(target))
	buf.Write(lengthPrefixedString(observer))
	return buf.Bytes()
}

func mcRunHeaderPayload(progId, progVersion int32, height, eMin, eMax, slope float32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, progId)
	binary.Write(&buf, binary.LittleEndian, progVersion)
	buf.Write(float32Bytes(height, eMin, eMax, slope))
	return buf.Bytes()
}

func cameraSettingsPayload(n int32, focal float32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, n)
	buf.Write(float32Bytes(focal))
	xs := make([]float32, n)
	ys := make([]float32, n)
	buf.Write(float32Bytes(xs...))
	buf.Write(float32Bytes(ys...))
	return buf.Bytes()
}

func cameraOrganizationPayload(n, drawers int32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, n)
	binary.Write(&buf, binary.LittleEndian, drawers)
	buf.Write(int32Bytes(make([]int32, n)...))
	return buf.Bytes()
}

func pixelSettingsPayload(n int32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, n)
	buf.Write(float32Bytes(make([]float32, n)...))
	return buf.Bytes()
}

func disabledPixelsPayload(numTrig, numHV int32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, numTrig)
	buf.Write(int32Bytes(make([]int32, numTrig)...))
	binary.Write(&buf, binary.LittleEndian, numHV)
	buf.Write(int32Bytes(make([]int32, numHV)...))
	return buf.Bytes()
}

func cameraSoftwareSettingsPayload(mask int32) []byte {
	return int32Bytes(mask)
}

func driveSettingsPayload(driveType int32, maxSlew float32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, driveType)
	buf.Write(float32Bytes(maxSlew))
	return buf.Bytes()
}

func pointingCorrectionPayload(n int32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, n)
	buf.Write(float32Bytes(make([]float32, n)...))
	return buf.Bytes()
}

// writeTelescopeDescriptionSeptet writes the seven description records as
// top-level records, each preceded by its own sync word.
func writeTelescopeDescriptionSeptet(buf *bytes.Buffer, telId uint32) {
	writeTopRecord(buf, RecordCameraSettings, 0, telId, cameraSettingsPayload(1, 10.0))
	writeTopRecord(buf, RecordCameraOrganization, 0, telId, cameraOrganizationPayload(1, 1))
	writeTopRecord(buf, RecordPixelSettings, 0, telId, pixelSettingsPayload(1))
	writeTopRecord(buf, RecordDisabledPixels, 0, telId, disabledPixelsPayload(0, 0))
	writeTopRecord(buf, RecordCameraSoftwareSettings, 0, telId, cameraSoftwareSettingsPayload(0))
	writeTopRecord(buf, RecordDriveSettings, 0, telId, driveSettingsPayload(0, 1.0))
	writeTopRecord(buf, RecordPointingCorrection, 0, telId, pointingCorrectionPayload(0))
}

func triggerInformationPayload(telIds []uint32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(len(telIds)))
	for _, id := range telIds {
		binary.Write(&buf, binary.LittleEndian, id)
	}
	return buf.Bytes()
}

func telescopeEventHeaderPayload(count uint32, seconds, nanoseconds int32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, count)
	binary.Write(&buf, binary.LittleEndian, seconds)
	binary.Write(&buf, binary.LittleEndian, nanoseconds)
	return buf.Bytes()
}

func trackingPositionRawPayload(azimuth, altitude float32) []byte {
	return float32Bytes(azimuth, altitude)
}

func mcShowerPayload(primaryId int32, zenith, azimuth, totalEnergy, xmax, hmax float32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, primaryId)
	buf.Write(float32Bytes(zenith, azimuth, totalEnergy, xmax, hmax))
	return buf.Bytes()
}

func mcEventPayload(reuse int32, coreX, coreY float32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, reuse)
	buf.Write(float32Bytes(coreX, coreY))
	return buf.Bytes()
}

func photonBunchesPayload(rows [][9]float32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, int32(len(rows)))
	for _, row := range rows {
		buf.Write(float32Bytes(row[:]...))
	}
	return buf.Bytes()
}

// buildOneShowerFixture assembles a single-telescope, single-event stream:
// run header, mc run header, one telescope's full description septet, an
// mc shower/mc event pair, a telescope-data block carrying one photon
// bunch array, and an array event with one triggered telescope.
func buildOneShowerFixture(t *testing.T) *ByteSource {
	t.Helper()

	var buf bytes.Buffer

	writeTopRecord(&buf, RecordRunHeader, 0, 1, runHeaderPayload([]int32{1}, "target", "observer"))
	writeTopRecord(&buf, RecordMCRunHeader, 0, 0, mcRunHeaderPayload(1, 0, 2000.0, 5.0, 100.0, -2.7))
	writeTelescopeDescriptionSeptet(&buf, 1)

	writeTopRecord(&buf, RecordMCShower, 0, 1, mcShowerPayload(0, 0, 0, 9.3249321, 0, 0))
	writeTopRecord(&buf, RecordMCEvent, 0, 1, mcEventPayload(1, 0, 0))

	var tdChildren bytes.Buffer
	writeRecord(&tdChildren, RecordPhotons, 0, 1, photonBunchesPayload([][9]float32{
		{0, 0, 0, 0, 0, 0, 1, 1, 0},
	}))
	writeTopContainer(&buf, RecordTelescopeData, 1, &tdChildren)

	var teChildren bytes.Buffer
	writeRecord(&teChildren, RecordTelescopeEventHeader, 0, 0, telescopeEventHeaderPayload(1, 0, 0))
	var arrayChildren bytes.Buffer
	writeRecord(&arrayChildren, RecordTriggerInformation, 0, 1, triggerInformationPayload([]uint32{1}))
	writeContainer(&arrayChildren, TelescopeEventType(1), 0, &teChildren)
	writeRecord(&arrayChildren, TrackingType(1), 0, 1|(1<<8), trackingPositionRawPayload(0, 0))
	writeTopContainer(&buf, RecordArrayEvent, 0, &arrayChildren)

	return newByteSourceFromBuf(&buf)
}

func TestAssemblerOneShower(t *testing.T) {
	source := buildOneShowerFixture(t)
	a, err := newAssembler(source)
	require.NoError(t, err)

	ev, err := a.NextArrayEvent()
	require.NoError(t, err)
	require.NotNil(t, ev)

	require.Equal(t, int64(1), ev.EventId)
	require.False(t, ev.IsCalibration)
	require.Len(t, ev.TelescopeEvents, 1)
	require.Len(t, ev.TrackingPositions, 1)

	require.NotNil(t, ev.MCShower)
	require.InDelta(t, 9.3249321, ev.MCShower.TotalEnergy, 1e-4)

	require.NotNil(t, ev.MCEvent)
	require.Equal(t, int32(1), ev.MCEvent.Reuse)

	require.Len(t, ev.Photons[1], 1)

	require.Equal(t, int32(1), a.NTelescopes)
	require.NotNil(t, a.Header)
	require.Len(t, a.MCRunHeaders, 1)
	require.InDelta(t, 5.0, a.MCRunHeaders[0].EnergyRangeMin, 1e-6)
	require.InDelta(t, 100.0, a.MCRunHeaders[0].EnergyRangeMax, 1e-6)
	require.InDelta(t, -2.7, a.MCRunHeaders[0].EnergySlope, 1e-6)

	next, err := a.NextArrayEvent()
	require.NoError(t, err)
	require.Nil(t, next)
}

func TestAssemblerTelescopeFilterDropsUnwantedTelescopes(t *testing.T) {
	source := buildOneShowerFixture(t)
	a, err := newAssembler(source, WithAllowedTelescopes([]uint16{2}))
	require.NoError(t, err)

	ev, err := a.NextArrayEvent()
	require.NoError(t, err)
	require.Nil(t, ev)
}

func TestAssemblerSkipCalibration(t *testing.T) {
	var buf bytes.Buffer
	writeTopRecord(&buf, RecordRunHeader, 0, 1, runHeaderPayload([]int32{1}, "t", "o"))
	writeTelescopeDescriptionSeptet(&buf, 1)

	var arrayChildren bytes.Buffer
	writeRecord(&arrayChildren, RecordTriggerInformation, 0, 7, triggerInformationPayload([]uint32{1}))
	var teChildren bytes.Buffer
	writeRecord(&teChildren, RecordTelescopeEventHeader, 0, 0, telescopeEventHeaderPayload(1, 0, 0))
	writeContainer(&arrayChildren, TelescopeEventType(1), 0, &teChildren)
	writeRecord(&arrayChildren, TrackingType(1), 0, 1|(1<<8), trackingPositionRawPayload(0, 0))

	var calibChildren bytes.Buffer
	writeContainer(&calibChildren, RecordArrayEvent, 7, &arrayChildren)
	writeTopContainer(&buf, RecordCalibrationEvent, 0, &calibChildren)

	source := newByteSourceFromBuf(&buf)
	a, err := newAssembler(source, WithSkipCalibration(true))
	require.NoError(t, err)

	ev, err := a.NextArrayEvent()
	require.NoError(t, err)
	require.Nil(t, ev)
}

func TestAssemblerCalibrationEventNegatedId(t *testing.T) {
	var buf bytes.Buffer
	writeTopRecord(&buf, RecordRunHeader, 0, 1, runHeaderPayload([]int32{1}, "t", "o"))
	writeTelescopeDescriptionSeptet(&buf, 1)

	var arrayChildren bytes.Buffer
	writeRecord(&arrayChildren, RecordTriggerInformation, 0, 7, triggerInformationPayload([]uint32{1}))
	var teChildren bytes.Buffer
	writeRecord(&teChildren, RecordTelescopeEventHeader, 0, 0, telescopeEventHeaderPayload(1, 0, 0))
	writeContainer(&arrayChildren, TelescopeEventType(1), 0, &teChildren)
	writeRecord(&arrayChildren, TrackingType(1), 0, 1|(1<<8), trackingPositionRawPayload(0, 0))

	var calibChildren bytes.Buffer
	writeContainer(&calibChildren, RecordArrayEvent, 7, &arrayChildren)
	writeTopContainer(&buf, RecordCalibrationEvent, 0, &calibChildren)

	source := newByteSourceFromBuf(&buf)
	a, err := newAssembler(source)
	require.NoError(t, err)

	ev, err := a.NextArrayEvent()
	require.NoError(t, err)
	require.NotNil(t, ev)
	require.True(t, ev.IsCalibration)
	require.Equal(t, int64(-7), ev.EventId)
}
