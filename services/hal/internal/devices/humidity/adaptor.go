// services/hal/internal/devices/humidity/adaptor.go
package humidity

import (
	"errors"

	"tinygo.org/x/drivers"

	"wristmon-go/drivers/aht20"
	"wristmon-go/errcode"
	"wristmon-go/x/mathx"
)

// Adaptor exposes an AHT20 as a humidity reader in %RH × 100. Each read
// collects the previous conversion and triggers the next, so the caller never
// blocks on the ~80 ms conversion.
type Adaptor struct {
	dev   aht20.Device
	armed bool
	last  int32
}

// New probes, calibrates and starts the first conversion. addr 0 selects the
// driver default.
func New(bus drivers.I2C, addr uint16) (*Adaptor, error) {
	dev := aht20.New(bus)
	if addr != 0 {
		dev.Address = addr
	}
	if err := dev.Configure(); err != nil {
		return nil, &errcode.E{C: errcode.InitFailed, Op: "humidity.New", Msg: "aht20 not found", Err: err}
	}
	a := &Adaptor{dev: dev}
	if err := a.dev.Trigger(); err != nil {
		return nil, errcode.Wrap(errcode.InitFailed, "humidity.New", err)
	}
	a.armed = true
	return a, nil
}

// ReadValue returns the newest humidity. While a conversion is running the
// previous value is returned.
func (a *Adaptor) ReadValue() (int32, error) {
	if !a.armed {
		if err := a.dev.Trigger(); err != nil {
			return 0, errcode.Wrap(errcode.ReadFailed, "humidity.ReadValue", err)
		}
		a.armed = true
		return a.last, nil
	}

	var s aht20.Sample
	err := a.dev.Collect(&s)
	switch {
	case errors.Is(err, aht20.ErrNotReady):
		return a.last, nil
	case err != nil:
		a.armed = false
		return 0, errcode.Wrap(errcode.ReadFailed, "humidity.ReadValue", err)
	}
	a.last = mathx.Clamp(s.RHx100(), 0, 10000)
	a.armed = a.dev.Trigger() == nil
	return a.last, nil
}
