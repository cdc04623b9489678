package sensing

import (
	"log/slog"
	"sync/atomic"

	"wristmon-go/services/motion/internal/motioncore"
	"wristmon-go/types"
)

// Gate performs the per-tick acquisition allowed by the enable mask and owns
// the latest samples plus the turn-over latch. It is driven from the tick
// loop only; apart from ReadFailures nothing here is safe for concurrent use.
type Gate struct {
	mask types.SensorMask
	src  motioncore.Sensors
	log  *slog.Logger

	accel       types.AccelSample
	gyro        types.GyroSample
	mag         types.AccelSample
	pressure    int32
	temperature int32
	humidity    int32

	turn TurnOverDetector

	readFailures atomic.Uint64
}

func NewGate(mask types.SensorMask, src motioncore.Sensors, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{mask: mask, src: src, log: log}
}

func (g *Gate) Mask() types.SensorMask { return g.mask }

// Acquire runs once per tick. A failed read leaves the stored value as is.
func (g *Gate) Acquire() {
	if g.mask.Has(types.Accelerometer) && g.src.Accel != nil {
		prevZ := g.accel.Z
		s, err := g.src.Accel.ReadAxes()
		if err != nil {
			g.failed(types.Accelerometer, err)
		} else {
			g.turn.Observe(prevZ, s.Z)
			g.accel = s
		}
	}

	if g.mask.Has(types.Pressure) && g.src.Pressure != nil {
		if v, err := g.src.Pressure.ReadValue(); err != nil {
			g.failed(types.Pressure, err)
		} else {
			g.pressure = v
		}
	}

	// Acquired for completeness; neither dispatcher consumes these.
	if g.mask.Has(types.Gyroscope) && g.src.Gyro != nil {
		if v, err := g.src.Gyro.ReadRates(); err != nil {
			g.failed(types.Gyroscope, err)
		} else {
			g.gyro = v
		}
	}
	if g.mask.Has(types.Magnetometer) && g.src.Magnetometer != nil {
		if v, err := g.src.Magnetometer.ReadAxes(); err != nil {
			g.failed(types.Magnetometer, err)
		} else {
			g.mag = v
		}
	}
	if g.mask.Has(types.Temperature) && g.src.Temperature != nil {
		if v, err := g.src.Temperature.ReadValue(); err != nil {
			g.failed(types.Temperature, err)
		} else {
			g.temperature = v
		}
	}
	if g.mask.Has(types.Humidity) && g.src.Humidity != nil {
		if v, err := g.src.Humidity.ReadValue(); err != nil {
			g.failed(types.Humidity, err)
		} else {
			g.humidity = v
		}
	}
}

func (g *Gate) failed(k types.SensorKind, err error) {
	g.readFailures.Add(1)
	g.log.Debug("sensor read failed", "sensor", k.String(), "err", err)
}

func (g *Gate) Accel() types.AccelSample        { return g.accel }
func (g *Gate) Gyro() types.GyroSample          { return g.gyro }
func (g *Gate) Magnetometer() types.AccelSample { return g.mag }
func (g *Gate) Pressure() int32                 { return g.pressure }
func (g *Gate) Temperature() int32              { return g.temperature }
func (g *Gate) Humidity() int32                 { return g.humidity }
func (g *Gate) ReadFailures() uint64            { return g.readFailures.Load() }

// TurnOverPending reports the latch without clearing it.
func (g *Gate) TurnOverPending() bool { return g.turn.Pending() }

// ConsumeTurnOver clears the latch; true means the caller owes the alert burst.
func (g *Gate) ConsumeTurnOver() bool { return g.turn.Consume() }
