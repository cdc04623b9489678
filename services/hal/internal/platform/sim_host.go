// services/hal/internal/platform/sim_host.go
//go:build !rp2040 && !rp2350

package platform

import (
	"sync"

	"tinygo.org/x/drivers/lps22hb"
	"tinygo.org/x/drivers/lsm6ds3tr"
)

// ---- LSM6DS3TR-C ----

// IMUSim is a register-level LSM6DS3TR-C. Output registers are scaled by the
// full-scale bits the driver wrote to CTRL1_XL and CTRL2_G.
type IMUSim struct{ *RegDevice }

func NewIMUSim() IMUSim {
	d := &RegDevice{}
	d.Poke(lsm6ds3tr.WHO_AM_I, 0x6A)
	return IMUSim{d}
}

// accel µg per LSB by FS_XL
func (s IMUSim) accelScale() int32 {
	switch s.Peek(lsm6ds3tr.CTRL1_XL) & 0x0C {
	case 0x08:
		return 122
	case 0x0C:
		return 244
	case 0x04:
		return 488
	default:
		return 61
	}
}

// gyro µdps per LSB by FS_G
func (s IMUSim) gyroScale() int32 {
	ctrl := s.Peek(lsm6ds3tr.CTRL2_G)
	if ctrl&0x02 != 0 {
		return 4375
	}
	switch ctrl & 0x0C {
	case 0x04:
		return 17500
	case 0x08:
		return 35000
	case 0x0C:
		return 70000
	default:
		return 8750
	}
}

// SetAccel loads the output registers with a milli-g vector.
func (s IMUSim) SetAccel(x, y, z int32) {
	k := s.accelScale()
	s.Poke(lsm6ds3tr.OUTX_L_XL, le3(x*1000/k, y*1000/k, z*1000/k)...)
}

// SetGyro loads the output registers with milli-dps rates.
func (s IMUSim) SetGyro(x, y, z int32) {
	k := s.gyroScale()
	s.Poke(lsm6ds3tr.OUTX_L_G, le3(x*1000/k, y*1000/k, z*1000/k)...)
}

func le3(x, y, z int32) []byte {
	b := make([]byte, 0, 6)
	for _, v := range []int32{x, y, z} {
		u := uint16(int16(v))
		b = append(b, byte(u), byte(u>>8))
	}
	return b
}

// ---- LPS22HB ----

// BaroSim is a register-level LPS22HB whose one-shot conversions complete
// immediately.
type BaroSim struct{ *RegDevice }

func NewBaroSim() BaroSim {
	d := &RegDevice{}
	d.Poke(lps22hb.LPS22HB_WHO_AM_I_REG, 0xB1)
	d.OnWrite(func(reg, v byte) byte {
		if reg == lps22hb.LPS22HB_CTRL2_REG {
			return v &^ 0x01
		}
		return v
	})
	return BaroSim{d}
}

// SetPressure loads the 24-bit output (hPa × 4096) from pascals.
func (s BaroSim) SetPressure(pa int32) {
	raw := uint32(int64(pa) * 4096 / 100)
	s.Poke(lps22hb.LPS22HB_PRESS_OUT_REG, byte(raw), byte(raw>>8), byte(raw>>16))
}

// ---- AHT20 ----

// AHT20Sim is a command-level AHT20. It powers up uncalibrated and answers
// BusyReads collects with the busy bit after each trigger.
type AHT20Sim struct {
	mu         sync.Mutex
	calibrated bool
	busy       int
	BusyReads  int
	rhx100     int32
	deciC      int32
	triggers   int
	fail       error
}

func NewAHT20Sim() *AHT20Sim { return &AHT20Sim{} }

// Set loads the next conversion result.
func (s *AHT20Sim) Set(rhx100, deciC int32) {
	s.mu.Lock()
	s.rhx100, s.deciC = rhx100, deciC
	s.mu.Unlock()
}

func (s *AHT20Sim) Triggers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.triggers
}

// Fail makes every transaction return err until cleared with nil.
func (s *AHT20Sim) Fail(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

func (s *AHT20Sim) tx(w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	status := byte(0)
	if s.calibrated {
		status |= 0x08
	}
	if len(w) > 0 {
		switch w[0] {
		case 0xBE:
			s.calibrated = true
		case 0xBA:
			s.calibrated = false
		case 0xAC:
			s.triggers++
			s.busy = s.BusyReads
		case 0x71:
			if len(r) > 0 {
				r[0] = status
			}
		}
		return nil
	}
	if len(r) == 0 {
		return nil
	}
	if s.busy > 0 {
		s.busy--
		r[0] = status | 0x80
		return nil
	}
	// round up so the driver's truncating conversion returns the set value
	h := uint32((int64(s.rhx100)<<20 + 9999) / 10000)
	t := uint32((int64(s.deciC+500)<<20 + 1999) / 2000)
	out := []byte{status, byte(h >> 12), byte(h >> 4), byte(h<<4) | byte(t>>16&0x0F), byte(t >> 8), byte(t), 0}
	copy(r, out)
	return nil
}
