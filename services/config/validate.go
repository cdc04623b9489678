package config

import (
	"strconv"

	"wristmon-go/errcode"
	"wristmon-go/types"
)

// MaxFrequencyHz is the highest accepted sampling rate.
const MaxFrequencyHz = 1000

func invalid(field, msg string) error {
	return &errcode.E{C: errcode.InvalidConfig, Op: "config.Validate", Msg: field + ": " + msg}
}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *types.Config) error {
	if cfg == nil {
		return invalid("config", "nil")
	}

	// A zero frequency is filled by Normalize; anything else must be usable.
	if cfg.Sampling.FrequencyHz > MaxFrequencyHz {
		return invalid("sampling.frequency_hz", "must be 1.."+strconv.Itoa(MaxFrequencyHz))
	}

	for _, s := range cfg.Sensors {
		if _, err := types.ParseSensorKind(s); err != nil {
			return invalid("sensors", "unknown sensor "+strconv.Quote(s))
		}
	}

	if _, err := types.ParseProgramState(cfg.InitialMode); err != nil {
		return invalid("initial_mode", "want aw or sm")
	}

	if cfg.Serial.Baud < 0 {
		return invalid("serial.baud", "negative")
	}
	if cfg.Serial.SendTimeout < 0 {
		return invalid("serial.send_timeout", "negative")
	}

	switch cfg.SensorBus.Kind {
	case "", types.BusSynthetic:
		for i, seg := range cfg.SensorBus.Synthetic.Segments {
			if seg.Duration <= 0 {
				return invalid("sensor_bus.synthetic.segments["+strconv.Itoa(i)+"]", "duration must be positive")
			}
			if seg.StepHz < 0 {
				return invalid("sensor_bus.synthetic.segments["+strconv.Itoa(i)+"]", "step_hz negative")
			}
		}
	case types.BusI2C:
	case types.BusModbus:
		if cfg.SensorBus.Modbus.Port == "" {
			return invalid("sensor_bus.modbus.port", "required")
		}
		if cfg.SensorBus.Modbus.SlaveID == 0 || cfg.SensorBus.Modbus.SlaveID > 247 {
			return invalid("sensor_bus.modbus.slave_id", "must be 1..247")
		}
	default:
		return invalid("sensor_bus.kind", "unknown bus "+strconv.Quote(cfg.SensorBus.Kind))
	}

	if cfg.Button.Debounce < 0 {
		return invalid("button.debounce", "negative")
	}

	c := cfg.Classifier
	if c.Window < 0 || c.SleepAfter < 0 {
		return invalid("classifier", "negative window")
	}
	if c.PeakInfluence < 0 || c.PeakInfluence > 1 {
		return invalid("classifier.peak_influence", "must be 0..1")
	}
	if c.StillThreshold < 0 || c.JogThreshold < 0 || c.FastStepHz < 0 || c.PeakThreshold < 0 {
		return invalid("classifier", "thresholds must not be negative")
	}

	switch cfg.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return invalid("log.level", "unknown level "+strconv.Quote(cfg.Log.Level))
	}
	return nil
}
