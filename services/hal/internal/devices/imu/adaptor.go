// services/hal/internal/devices/imu/adaptor.go
package imu

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/lsm6ds3tr"

	"wristmon-go/errcode"
	"wristmon-go/types"
)

// Adaptor exposes an LSM6DS3TR-C as accelerometer, gyroscope and die
// temperature readers. Accel is ±4 g, gyro ±500 dps, both at 26 Hz.
type Adaptor struct {
	dev *lsm6ds3tr.Device
}

// New probes and configures the IMU. addr 0 selects the driver default.
func New(bus drivers.I2C, addr uint16) (*Adaptor, error) {
	dev := lsm6ds3tr.New(bus)
	if addr != 0 {
		dev.Address = addr
	}
	err := dev.Configure(lsm6ds3tr.Configuration{
		AccelRange:      lsm6ds3tr.ACCEL_4G,
		AccelSampleRate: lsm6ds3tr.ACCEL_SR_26,
		GyroRange:       lsm6ds3tr.GYRO_500DPS,
		GyroSampleRate:  lsm6ds3tr.GYRO_SR_26,
	})
	if err != nil {
		return nil, errcode.Wrap(errcode.InitFailed, "imu.New", err)
	}
	return &Adaptor{dev: dev}, nil
}

// ReadAxes returns milli-g.
func (a *Adaptor) ReadAxes() (types.AccelSample, error) {
	x, y, z, err := a.dev.ReadAcceleration()
	if err != nil {
		return types.AccelSample{}, errcode.Wrap(errcode.ReadFailed, "imu.ReadAxes", err)
	}
	return types.AccelSample{X: x / 1000, Y: y / 1000, Z: z / 1000}, nil
}

// ReadRates returns milli-dps.
func (a *Adaptor) ReadRates() (types.GyroSample, error) {
	x, y, z, err := a.dev.ReadRotation()
	if err != nil {
		return types.GyroSample{}, errcode.Wrap(errcode.ReadFailed, "imu.ReadRates", err)
	}
	return types.GyroSample{X: x / 1000, Y: y / 1000, Z: z / 1000}, nil
}

// Temperature reads the die temperature in milli-°C.
func (a *Adaptor) Temperature() TemperatureReader { return TemperatureReader{a.dev} }

type TemperatureReader struct{ dev *lsm6ds3tr.Device }

func (t TemperatureReader) ReadValue() (int32, error) {
	v, err := t.dev.ReadTemperature()
	if err != nil {
		return 0, errcode.Wrap(errcode.ReadFailed, "imu.ReadTemperature", err)
	}
	return v, nil
}
