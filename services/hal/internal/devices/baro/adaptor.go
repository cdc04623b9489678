// services/hal/internal/devices/baro/adaptor.go
package baro

import (
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/lps22hb"

	"wristmon-go/errcode"
)

// Adaptor exposes an LPS22HB as a pressure reader in pascals.
type Adaptor struct {
	dev lps22hb.Device
}

// New probes and configures the sensor. addr 0 selects the driver default.
// The driver spins on the one-shot bit without checking bus errors, so an
// absent part must be caught here.
func New(bus drivers.I2C, addr uint8) (*Adaptor, error) {
	dev := lps22hb.New(bus)
	if addr != 0 {
		dev.Address = addr
	}
	if !dev.Connected() {
		return nil, &errcode.E{C: errcode.InitFailed, Op: "baro.New", Msg: "lps22hb not found"}
	}
	dev.Configure()
	return &Adaptor{dev: dev}, nil
}

// ReadValue returns pressure in Pa. The driver reports hPa × 1000.
func (a *Adaptor) ReadValue() (int32, error) {
	v, err := a.dev.ReadPressure()
	if err != nil {
		return 0, errcode.Wrap(errcode.ReadFailed, "baro.ReadValue", err)
	}
	return v / 10, nil
}
