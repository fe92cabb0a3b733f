package eventio

import (
	"io"
)

// The seven per-telescope description records. Each decoded value is
// filed into the TelescopeDescription field for its type (the field
// descriptionRecordNames names in snake_case); every telescope must have
// all seven before public event iteration begins (see the assembler's
// header-readiness gate).

// CameraSettings (type 2002): pixel geometry.
type CameraSettings struct {
	TelescopeId  uint32
	NPixels      int32
	FocalLength  float32
	PixelX       []float32
	PixelY       []float32
}

func decodeCameraSettings(header Header, v *ObjectView) (CameraSettings, error) {
	if err := checkVersion(header.Type, header.Version, cameraSettingsVersionTag{}); err != nil {
		return CameraSettings{}, err
	}
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return CameraSettings{}, err
	}

	nPixels, err := readInt32(v)
	if err != nil {
		return CameraSettings{}, err
	}
	focalLength, err := readFloat32(v)
	if err != nil {
		return CameraSettings{}, err
	}
	pixelX, err := readFloat32Array(v, nPixels)
	if err != nil {
		return CameraSettings{}, err
	}
	pixelY, err := readFloat32Array(v, nPixels)
	if err != nil {
		return CameraSettings{}, err
	}

	return CameraSettings{
		TelescopeId: header.Id,
		NPixels:     nPixels,
		FocalLength: focalLength,
		PixelX:      pixelX,
		PixelY:      pixelY,
	}, nil
}

// CameraOrganization (type 2003): pixel-to-readout-group mapping.
type CameraOrganization struct {
	TelescopeId   uint32
	NPixels       int32
	NDrawers      int32
	PixelDrawer   []int32
}

func decodeCameraOrganization(header Header, v *ObjectView) (CameraOrganization, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return CameraOrganization{}, err
	}
	nPixels, err := readInt32(v)
	if err != nil {
		return CameraOrganization{}, err
	}
	nDrawers, err := readInt32(v)
	if err != nil {
		return CameraOrganization{}, err
	}
	drawer, err := readInt32Array(v, nPixels)
	if err != nil {
		return CameraOrganization{}, err
	}
	return CameraOrganization{
		TelescopeId: header.Id,
		NPixels:     nPixels,
		NDrawers:    nDrawers,
		PixelDrawer: drawer,
	}, nil
}

// PixelSettings (type 2004): per-pixel HV/threshold setup.
type PixelSettings struct {
	TelescopeId  uint32
	NPixels      int32
	Thresholds   []float32
}

func decodePixelSettings(header Header, v *ObjectView) (PixelSettings, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return PixelSettings{}, err
	}
	nPixels, err := readInt32(v)
	if err != nil {
		return PixelSettings{}, err
	}
	thresholds, err := readFloat32Array(v, nPixels)
	if err != nil {
		return PixelSettings{}, err
	}
	return PixelSettings{TelescopeId: header.Id, NPixels: nPixels, Thresholds: thresholds}, nil
}

// DisabledPixels (type 2005): pixels disabled at trigger level and at the
// high-voltage level. The upstream reads HV_disabled using the trigger
// count variable instead of its own num_HV_disabled count; this decoder
// uses each announced count for its own array, per the documented
// correction - do not replicate that defect.
type DisabledPixels struct {
	TelescopeId      uint32
	NumTrigDisabled  int32
	TriggerDisabled  []int32
	NumHVDisabled    int32
	HVDisabled       []int32
}

func decodeDisabledPixels(header Header, v *ObjectView) (DisabledPixels, error) {
	if err := checkVersion(header.Type, header.Version, disabledPixelsVersionTag{}); err != nil {
		return DisabledPixels{}, err
	}
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return DisabledPixels{}, err
	}

	numTrigDisabled, err := readInt32(v)
	if err != nil {
		return DisabledPixels{}, err
	}
	triggerDisabled, err := readInt32Array(v, numTrigDisabled)
	if err != nil {
		return DisabledPixels{}, err
	}

	numHVDisabled, err := readInt32(v)
	if err != nil {
		return DisabledPixels{}, err
	}
	// Fixed: read HVDisabled with its own announced count, not
	// numTrigDisabled.
	hvDisabled, err := readInt32Array(v, numHVDisabled)
	if err != nil {
		return DisabledPixels{}, err
	}

	return DisabledPixels{
		TelescopeId:     header.Id,
		NumTrigDisabled: numTrigDisabled,
		TriggerDisabled: triggerDisabled,
		NumHVDisabled:   numHVDisabled,
		HVDisabled:      hvDisabled,
	}, nil
}

// CameraSoftwareSettings (type 2006): data-acquisition software
// configuration for a telescope's camera.
type CameraSoftwareSettings struct {
	TelescopeId   uint32
	DAQConfigMask int32
}

func decodeCameraSoftwareSettings(header Header, v *ObjectView) (CameraSoftwareSettings, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return CameraSoftwareSettings{}, err
	}
	mask, err := readInt32(v)
	if err != nil {
		return CameraSoftwareSettings{}, err
	}
	return CameraSoftwareSettings{TelescopeId: header.Id, DAQConfigMask: mask}, nil
}

// DriveSettings (type 2008): telescope drive/tracking configuration.
type DriveSettings struct {
	TelescopeId     uint32
	DriveType       int32
	MaxSlewRateDegS float32
}

func decodeDriveSettings(header Header, v *ObjectView) (DriveSettings, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return DriveSettings{}, err
	}
	driveType, err := readInt32(v)
	if err != nil {
		return DriveSettings{}, err
	}
	maxSlew, err := readFloat32(v)
	if err != nil {
		return DriveSettings{}, err
	}
	return DriveSettings{TelescopeId: header.Id, DriveType: driveType, MaxSlewRateDegS: maxSlew}, nil
}

// PointingCorrection (type 2007): static pointing-model correction terms.
type PointingCorrection struct {
	TelescopeId uint32
	Terms       []float32
}

func decodePointingCorrection(header Header, v *ObjectView) (PointingCorrection, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return PointingCorrection{}, err
	}
	n, err := readInt32(v)
	if err != nil {
		return PointingCorrection{}, err
	}
	terms, err := readFloat32Array(v, n)
	if err != nil {
		return PointingCorrection{}, err
	}
	return PointingCorrection{TelescopeId: header.Id, Terms: terms}, nil
}
