// services/hal/hal.go
package hal

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"wristmon-go/bus"
	"wristmon-go/errcode"
	"wristmon-go/services/config"
	"wristmon-go/services/hal/internal/devices/baro"
	"wristmon-go/services/hal/internal/devices/humidity"
	"wristmon-go/services/hal/internal/devices/imu"
	"wristmon-go/services/hal/internal/devices/modbusimu"
	"wristmon-go/services/hal/internal/devices/synthetic"
	"wristmon-go/services/hal/internal/gpioirq"
	"wristmon-go/services/hal/internal/halcore"
	"wristmon-go/services/hal/internal/uartio"
	"wristmon-go/services/indicator"
	"wristmon-go/services/motion"
	"wristmon-go/types"
)

// ButtonName is the bus name of the mode button.
const ButtonName = "mode"

// TopicButton returns the topic a named button publishes on.
func TopicButton(name string) bus.Topic { return bus.T("hal", "button", name) }

// Board is the brought-up hardware: sensor readers, the serial sink, the
// mode button and the busy LED.
type Board struct {
	Sensors motion.Sensors
	LED     motion.Indicator

	// StatusPin is the LED pin for the fault pattern; nil when not fitted.
	StatusPin indicator.Pin

	sink    *uartio.Sink
	buttons *gpioirq.Worker
	cancels []func()
	closers []io.Closer
	log     *slog.Logger
}

// Build brings the board up from a validated and normalised config. Any
// failure is an errcode.InitFailed; partially opened resources are released.
func Build(cfg *types.Config, f Factories, log *slog.Logger) (b *Board, err error) {
	if log == nil {
		log = slog.Default()
	}
	b = &Board{LED: motion.NopIndicator{}, log: log.With("component", "hal")}
	defer func() {
		if err != nil {
			_ = b.Close()
			b = nil
			if errcode.Of(err) != errcode.InitFailed {
				err = errcode.Wrap(errcode.InitFailed, "hal.Build", err)
			}
		}
	}()

	if err = b.buildSensors(cfg, f); err != nil {
		return
	}
	if err = b.buildSerial(cfg.Serial, f); err != nil {
		return
	}
	if err = b.buildButton(cfg.Button, f.Pins); err != nil {
		return
	}
	if err = b.buildLED(cfg.LED, f.Pins); err != nil {
		return
	}

	mask := config.SensorMask(cfg)
	for _, k := range types.AllSensorKinds {
		if mask.Has(k) && !fitted(b.Sensors, k) {
			b.log.Warn("sensor enabled but not fitted", "sensor", k.String())
		}
	}
	b.log.Info("board ready", "bus", cfg.SensorBus.Kind, "sensors", mask.String(), "serial", cfg.Serial.Port)
	return b, nil
}

func fitted(s motion.Sensors, k types.SensorKind) bool {
	switch k {
	case types.Accelerometer:
		return s.Accel != nil
	case types.Gyroscope:
		return s.Gyro != nil
	case types.Magnetometer:
		return s.Magnetometer != nil
	case types.Pressure:
		return s.Pressure != nil
	case types.Temperature:
		return s.Temperature != nil
	case types.Humidity:
		return s.Humidity != nil
	}
	return false
}

func (b *Board) buildSensors(cfg *types.Config, f Factories) error {
	mask := config.SensorMask(cfg)
	sb := cfg.SensorBus
	switch sb.Kind {
	case types.BusSynthetic:
		src := synthetic.New(sb.Synthetic, cfg.Sampling.FrequencyHz)
		b.Sensors = motion.Sensors{Accel: src, Gyro: src, Pressure: src}
		return nil

	case types.BusModbus:
		a, err := modbusimu.Dial(sb.Modbus)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, a)
		b.Sensors = motion.Sensors{Accel: a, Pressure: a}
		return nil

	case types.BusI2C:
		if f.I2C == nil {
			return &errcode.E{C: errcode.InitFailed, Op: "hal.Build", Msg: "no i2c factory"}
		}
		i2c, ok := f.I2C.ByID(sb.I2C.Bus)
		if !ok {
			return &errcode.E{C: errcode.UnknownBus, Op: "hal.Build", Msg: sb.I2C.Bus}
		}
		if mask.Has(types.Accelerometer) || mask.Has(types.Gyroscope) || mask.Has(types.Temperature) {
			dev, err := imu.New(i2c, sb.I2C.IMUAddr)
			if err != nil {
				return err
			}
			b.Sensors.Accel = dev
			b.Sensors.Gyro = dev
			b.Sensors.Temperature = dev.Temperature()
		}
		if mask.Has(types.Pressure) {
			dev, err := baro.New(i2c, sb.I2C.PressureAddr)
			if err != nil {
				return err
			}
			b.Sensors.Pressure = dev
		}
		if mask.Has(types.Humidity) {
			dev, err := humidity.New(i2c, sb.I2C.HumidityAddr)
			if err != nil {
				return err
			}
			b.Sensors.Humidity = dev
		}
		return nil
	}
	return &errcode.E{C: errcode.InvalidConfig, Op: "hal.Build", Msg: "unknown sensor bus " + sb.Kind}
}

func (b *Board) buildSerial(sc types.SerialConfig, f Factories) error {
	out := f.Output
	if out == nil {
		if f.Serial == nil {
			return &errcode.E{C: errcode.InitFailed, Op: "hal.Build", Msg: "no serial opener"}
		}
		port, err := f.Serial.OpenSerial(sc.Port, sc.Baud)
		if err != nil {
			return errcode.Wrap(errcode.InitFailed, "hal.Build", err)
		}
		if c, ok := port.(io.Closer); ok {
			b.closers = append(b.closers, c)
		}
		out = port
	}
	b.sink = uartio.NewSink(out, sc.QueueSize, sc.SendTimeout, b.log)
	return nil
}

func (b *Board) buildButton(bc types.ButtonConfig, pins PinFactory) error {
	if bc.Pin < 0 {
		return nil
	}
	irq, err := irqPin(pins, bc.Pin)
	if err != nil {
		return err
	}
	w := gpioirq.New(16, 16)
	cancel, err := w.RegisterButton(ButtonName, irq, bc.ActiveLow, bc.Debounce)
	if err != nil {
		return errcode.Wrap(errcode.InitFailed, "hal.Build", err)
	}
	b.buttons = w
	b.cancels = append(b.cancels, cancel)
	return nil
}

func irqPin(pins PinFactory, n int) (halcore.IRQPin, error) {
	if pins == nil {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "hal.Build", Msg: "no pin factory"}
	}
	p, ok := pins.ByNumber(n)
	if !ok {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "hal.Build"}
	}
	irq, ok := p.(halcore.IRQPin)
	if !ok {
		return nil, &errcode.E{C: errcode.Unsupported, Op: "hal.Build", Msg: "pin has no interrupt"}
	}
	return irq, nil
}

func (b *Board) buildLED(lc types.LEDConfig, pins PinFactory) error {
	if lc.Pin < 0 {
		return nil
	}
	if pins == nil {
		return &errcode.E{C: errcode.UnknownPin, Op: "hal.Build", Msg: "no pin factory"}
	}
	p, ok := pins.ByNumber(lc.Pin)
	if !ok {
		return &errcode.E{C: errcode.UnknownPin, Op: "hal.Build"}
	}
	if err := p.ConfigureOutput(false); err != nil {
		return errcode.Wrap(errcode.InitFailed, "hal.Build", err)
	}
	b.LED = indicator.NewLED(p, false)
	b.StatusPin = p
	return nil
}

// Sink is the serial byte output.
func (b *Board) Sink() motion.ByteSink { return b.sink }

// SerialWritten is the number of bytes handed to the port so far.
func (b *Board) SerialWritten() uint64 { return b.sink.Written() }

// Start runs the serial drain and, when a button is fitted, publishes its
// debounced edges as types.ButtonValue on TopicButton. Both stop with ctx.
func (b *Board) Start(ctx context.Context, conn *bus.Connection) {
	b.sink.Start(ctx)
	if b.buttons == nil {
		return
	}
	b.buttons.Start(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-b.buttons.Events():
				b.log.Debug("button", "name", ev.Name, "pressed", ev.Pressed, "edge", halcore.EdgeToString(ev.Edge))
				conn.Publish(conn.NewMessage(TopicButton(ev.Name),
					types.ButtonValue{Pressed: ev.Pressed, TS: ev.TS.UnixMilli()}, false))
			}
		}
	}()
}

// Drained is closed once the serial drain has flushed and exited.
func (b *Board) Drained() <-chan struct{} { return b.sink.Done() }

// Close detaches interrupts and closes opened ports.
func (b *Board) Close() error {
	for _, c := range b.cancels {
		c()
	}
	b.cancels = nil
	var errs []error
	for _, c := range b.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}
