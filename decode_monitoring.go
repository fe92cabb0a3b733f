package eventio

import "io"

// The three cumulative per-telescope maps. Each is updated by merging new
// fields from any matching record; only the fields a given wire record
// actually carries are overwritten, so earlier values survive until a
// later record replaces them.

const (
	cameraMonitoringHasHV   uint32 = 1 << 0
	cameraMonitoringHasTemp uint32 = 1 << 1
)

// CameraMonitoring (type 2022): rolling HV settings and temperatures.
type CameraMonitoring struct {
	TelescopeId  uint32
	HVSettings   []float32
	Temperatures []float32
}

func decodeCameraMonitoring(header Header, v *ObjectView) (CameraMonitoring, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return CameraMonitoring{}, err
	}

	nPixels, err := readInt32(v)
	if err != nil {
		return CameraMonitoring{}, err
	}
	flags, err := readUint32(v)
	if err != nil {
		return CameraMonitoring{}, err
	}

	cm := CameraMonitoring{TelescopeId: header.Id}
	if flags&cameraMonitoringHasHV != 0 {
		cm.HVSettings, err = readFloat32Array(v, nPixels)
		if err != nil {
			return CameraMonitoring{}, err
		}
	}
	if flags&cameraMonitoringHasTemp != 0 {
		cm.Temperatures, err = readFloat32Array(v, nPixels)
		if err != nil {
			return CameraMonitoring{}, err
		}
	}

	return cm, nil
}

func mergeCameraMonitoring(dst, src CameraMonitoring) CameraMonitoring {
	out := dst
	out.TelescopeId = src.TelescopeId
	if len(src.HVSettings) > 0 {
		out.HVSettings = src.HVSettings
	}
	if len(src.Temperatures) > 0 {
		out.Temperatures = src.Temperatures
	}
	return out
}

// LaserCalibration (type 2023): per-pixel gain calibration constants from
// the calibration laser.
type LaserCalibration struct {
	TelescopeId    uint32
	CalibConstants []float32
}

func decodeLaserCalibration(header Header, v *ObjectView) (LaserCalibration, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return LaserCalibration{}, err
	}
	n, err := readInt32(v)
	if err != nil {
		return LaserCalibration{}, err
	}
	vals, err := readFloat32Array(v, n)
	if err != nil {
		return LaserCalibration{}, err
	}
	return LaserCalibration{TelescopeId: header.Id, CalibConstants: vals}, nil
}

func mergeLaserCalibration(dst, src LaserCalibration) LaserCalibration {
	out := dst
	out.TelescopeId = src.TelescopeId
	if len(src.CalibConstants) > 0 {
		out.CalibConstants = src.CalibConstants
	}
	return out
}

// PixelMonitoring (type 2025): per-pixel operational status flags.
type PixelMonitoring struct {
	TelescopeId uint32
	PixelStatus []int32
}

func decodePixelMonitoring(header Header, v *ObjectView) (PixelMonitoring, error) {
	if _, err := v.Seek(0, io.SeekStart); err != nil {
		return PixelMonitoring{}, err
	}
	n, err := readInt32(v)
	if err != nil {
		return PixelMonitoring{}, err
	}
	status, err := readInt32Array(v, n)
	if err != nil {
		return PixelMonitoring{}, err
	}
	return PixelMonitoring{TelescopeId: header.Id, PixelStatus: status}, nil
}

func mergePixelMonitoring(dst, src PixelMonitoring) PixelMonitoring {
	out := dst
	out.TelescopeId = src.TelescopeId
	if len(src.PixelStatus) > 0 {
		out.PixelStatus = src.PixelStatus
	}
	return out
}
