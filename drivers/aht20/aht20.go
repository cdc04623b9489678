// Package aht20 drives the AHT20 temperature/humidity sensor with a
// two-phase measurement API so a fixed-rate loop never waits on a conversion:
//
//	d.Trigger()              // start a measurement (fast)
//	err := d.Collect(&s)     // fetch when ready; returns ErrNotReady while busy
//
// NOTE: I2C.Tx MUST perform a write followed by a repeated-start read when both
// w and r are provided, without releasing the bus.
//
// Conversions are integer only: deci-°C and %RH × 100.
package aht20

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// I2C address.
const Address = 0x38

// Commands and status bits.
const (
	cmdTrigger    = 0xAC
	cmdInitialize = 0xBE
	cmdSoftReset  = 0xBA
	cmdStatus     = 0x71

	StatusBusy       = 0x80
	StatusCalibrated = 0x08
)

// Conversion time from Trigger to a ready Collect.
const TriggerHint = 80 * time.Millisecond

var ErrNotReady = errors.New("aht20: not ready")

// Device wraps an I2C connection to an AHT20.
type Device struct {
	bus     drivers.I2C
	Address uint16

	buf [7]byte
}

// New creates a Device on an already configured bus. It does not touch the
// part.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// Configure loads the calibration if the part reports it missing.
func (d *Device) Configure() error {
	st, err := d.Status()
	if err != nil {
		return err
	}
	if st&StatusCalibrated != 0 {
		return nil
	}
	if err := d.bus.Tx(d.Address, []byte{cmdInitialize, 0x08, 0x00}, nil); err != nil {
		return err
	}
	time.Sleep(10 * time.Millisecond)
	return nil
}

// Reset issues a soft reset. Allow ~20 ms before the next command.
func (d *Device) Reset() error {
	return d.bus.Tx(d.Address, []byte{cmdSoftReset}, nil)
}

func (d *Device) Status() (byte, error) {
	data := d.buf[:1]
	if err := d.bus.Tx(d.Address, []byte{cmdStatus}, data); err != nil {
		return 0, err
	}
	return data[0], nil
}

// Trigger starts a measurement without waiting for it.
func (d *Device) Trigger() error {
	return d.bus.Tx(d.Address, []byte{cmdTrigger, 0x33, 0x00}, nil)
}

// Collect reads the last measurement. ErrNotReady means the conversion is
// still running; bus errors are returned as-is.
func (d *Device) Collect(out *Sample) error {
	data := d.buf[:]
	if err := d.bus.Tx(d.Address, nil, data); err != nil {
		return err
	}
	if data[0]&StatusCalibrated == 0 || data[0]&StatusBusy != 0 {
		return ErrNotReady
	}
	out.RawHumidity = uint32(data[1])<<12 | uint32(data[2])<<4 | uint32(data[3])>>4
	out.RawTemp = uint32(data[3]&0x0F)<<16 | uint32(data[4])<<8 | uint32(data[5])
	return nil
}

// Sample holds one pair of 20-bit raw readings.
type Sample struct {
	RawHumidity uint32
	RawTemp     uint32
}

// RHx100 is relative humidity in hundredths of a percent.
func (s Sample) RHx100() int32 {
	return int32(uint64(s.RawHumidity) * 10000 >> 20)
}

func (s Sample) DeciCelsius() int32 {
	return int32(int64(s.RawTemp)*2000>>20) - 500
}
