package config

import (
	"time"

	"wristmon-go/types"
	"wristmon-go/x/mathx"
)

// Defaults applied by Normalize.
const (
	DefaultFrequencyHz = 16
	DefaultBaud        = 115200
	DefaultSendTimeout = 255 * time.Millisecond
	DefaultQueueSize   = 64
	DefaultDebounce    = 50 * time.Millisecond
	DefaultModbusBaud  = 19200
	DefaultModbusTO    = 100 * time.Millisecond
)

// DefaultSensors is the boot-time enable mask.
var DefaultSensors = []string{"accelerometer", "gyroscope", "pressure"}

// DefaultClassifier is the reference classifier tuning.
var DefaultClassifier = types.ClassifierConfig{
	Window:         32,
	StillThreshold: 0.02,
	JogThreshold:   0.45,
	FastStepHz:     2.2,
	PeakThreshold:  1.2,
	PeakInfluence:  0.3,
	SleepAfter:     20,
}

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *types.Config) {
	if cfg == nil {
		return
	}

	if cfg.Sampling.FrequencyHz == 0 {
		cfg.Sampling.FrequencyHz = DefaultFrequencyHz
	}
	if cfg.Sensors == nil {
		cfg.Sensors = append([]string(nil), DefaultSensors...)
	}
	if cfg.InitialMode == "" {
		cfg.InitialMode = types.AWMode.String()
	}

	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = DefaultBaud
	}
	if cfg.Serial.SendTimeout == 0 {
		cfg.Serial.SendTimeout = DefaultSendTimeout
	}
	if cfg.Serial.QueueSize <= 0 {
		cfg.Serial.QueueSize = DefaultQueueSize
	}
	cfg.Serial.QueueSize = mathx.Clamp(cfg.Serial.QueueSize, 8, 4096)

	if cfg.SensorBus.Kind == "" {
		cfg.SensorBus.Kind = types.BusSynthetic
	}
	if m := &cfg.SensorBus.Modbus; cfg.SensorBus.Kind == types.BusModbus {
		if m.Baud == 0 {
			m.Baud = DefaultModbusBaud
		}
		if m.Timeout == 0 {
			m.Timeout = DefaultModbusTO
		}
	}

	if cfg.Button.Debounce == 0 {
		cfg.Button.Debounce = DefaultDebounce
	}

	c := &cfg.Classifier
	d := DefaultClassifier
	if c.Window == 0 {
		c.Window = d.Window
	}
	c.Window = mathx.Clamp(c.Window, 4, 256)
	if c.StillThreshold == 0 {
		c.StillThreshold = d.StillThreshold
	}
	if c.JogThreshold == 0 {
		c.JogThreshold = d.JogThreshold
	}
	if c.FastStepHz == 0 {
		c.FastStepHz = d.FastStepHz
	}
	if c.PeakThreshold == 0 {
		c.PeakThreshold = d.PeakThreshold
	}
	if c.PeakInfluence == 0 {
		c.PeakInfluence = d.PeakInfluence
	}
	if c.SleepAfter == 0 {
		c.SleepAfter = d.SleepAfter
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// SensorMask builds the enable mask. Call after Validate.
func SensorMask(cfg *types.Config) types.SensorMask {
	var m types.SensorMask
	for _, s := range cfg.Sensors {
		if k, err := types.ParseSensorKind(s); err == nil {
			m = m.With(k)
		}
	}
	return m
}

// InitialMode parses the configured start mode. Call after Validate.
func InitialMode(cfg *types.Config) types.ProgramState {
	s, _ := types.ParseProgramState(cfg.InitialMode)
	return s
}
