// services/hal/types.go
package hal

import (
	"io"

	"wristmon-go/services/hal/internal/halcore"
	"wristmon-go/services/hal/internal/platform"
)

// Platform seams, re-exported for callers outside the hal tree.
type (
	I2CBusFactory = halcore.I2CBusFactory
	PinFactory    = halcore.PinFactory
	SerialOpener  = halcore.SerialOpener
)

// Factories supplies the hardware a Board is built from. Output, when set,
// replaces the configured serial port.
type Factories struct {
	I2C    I2CBusFactory
	Pins   PinFactory
	Serial SerialOpener
	Output io.Writer
}

// DefaultFactories returns the platform's buses, pins and serial ports.
func DefaultFactories() Factories {
	return Factories{
		I2C:    platform.DefaultI2CFactory(),
		Pins:   platform.DefaultPinFactory(),
		Serial: platform.DefaultSerialOpener(),
	}
}
