package types

import (
	"strings"

	"wristmon-go/errcode"
)

// ------------------------
// Sensor kinds & enable mask
// ------------------------

// SensorKind is one bit of the enabled-sensor mask. Values follow the
// expansion-board datalog protocol.
type SensorKind uint32

const (
	Accelerometer SensorKind = 0x01
	Gyroscope     SensorKind = 0x02
	Magnetometer  SensorKind = 0x04
	Humidity      SensorKind = 0x08
	Temperature   SensorKind = 0x10
	Pressure      SensorKind = 0x20
)

// AllSensorKinds lists kinds in acquisition order.
var AllSensorKinds = []SensorKind{Accelerometer, Gyroscope, Magnetometer, Pressure, Temperature, Humidity}

func (k SensorKind) String() string {
	switch k {
	case Accelerometer:
		return "accelerometer"
	case Gyroscope:
		return "gyroscope"
	case Magnetometer:
		return "magnetometer"
	case Humidity:
		return "humidity"
	case Temperature:
		return "temperature"
	case Pressure:
		return "pressure"
	default:
		return "unknown"
	}
}

// ParseSensorKind accepts the lower-case names used in config files.
func ParseSensorKind(s string) (SensorKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accelerometer", "acc", "accel":
		return Accelerometer, nil
	case "gyroscope", "gyro":
		return Gyroscope, nil
	case "magnetometer", "mag":
		return Magnetometer, nil
	case "humidity", "hum":
		return Humidity, nil
	case "temperature", "temp":
		return Temperature, nil
	case "pressure", "press":
		return Pressure, nil
	default:
		return 0, &errcode.E{C: errcode.InvalidConfig, Op: "types.ParseSensorKind", Msg: "unknown sensor " + s}
	}
}

// SensorMask is the set of enabled sensors. Fixed after start-up.
type SensorMask uint32

// MaskOf builds a mask from kinds.
func MaskOf(kinds ...SensorKind) SensorMask {
	var m SensorMask
	for _, k := range kinds {
		m |= SensorMask(k)
	}
	return m
}

// Has reports whether every kind given is enabled.
func (m SensorMask) Has(kinds ...SensorKind) bool {
	for _, k := range kinds {
		if m&SensorMask(k) != SensorMask(k) {
			return false
		}
	}
	return true
}

func (m SensorMask) With(k SensorKind) SensorMask { return m | SensorMask(k) }

func (m SensorMask) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, k := range AllSensorKinds {
		if m.Has(k) {
			parts = append(parts, k.String())
		}
	}
	return strings.Join(parts, "|")
}

// ------------------------
// Samples
// ------------------------

// AccelSample holds raw accelerometer axes in milli-g.
type AccelSample struct {
	X, Y, Z int32
}

// G converts milli-g to g.
func (s AccelSample) G() AccelG {
	return AccelG{
		X: float64(s.X) / 1000.0,
		Y: float64(s.Y) / 1000.0,
		Z: float64(s.Z) / 1000.0,
	}
}

// AccelG is acceleration in standard gravity units.
type AccelG struct {
	X, Y, Z float64
}

// GyroSample holds angular rate in milli-degrees per second.
type GyroSample struct {
	X, Y, Z int32
}
