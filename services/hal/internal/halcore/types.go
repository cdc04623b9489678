// services/hal/internal/halcore/types.go
package halcore

import (
	"io"

	"tinygo.org/x/drivers"
)

// ---- Buses ----

// I2CBusFactory injects configured I²C instances by id.
// Uses the TinyGo drivers.I2C interface to remain compatible on MCU builds.
type I2CBusFactory interface {
	ByID(id string) (drivers.I2C, bool)
}

// ---- GPIO abstractions ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Toggle()
	Number() int
}

// Edge selection for IRQ.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

// IRQPin extends GPIOPin with interrupts.
type IRQPin interface {
	GPIOPin
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}

// PinFactory supplies GPIO pins by the configured number scheme.
type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}

// Util
func EdgeToString(e Edge) string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	case EdgeBoth:
		return "both"
	default:
		return "none"
	}
}

// ---------------- Serial abstractions ----------------

// SerialPort is the byte output towards the host. Writes may block up to
// the port's own timeout.
type SerialPort interface {
	io.Writer
}

// SerialOpener opens the named port at a baud rate.
type SerialOpener interface {
	OpenSerial(name string, baud int) (SerialPort, error)
}
