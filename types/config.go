package types

import "time"

// Device configuration, loaded from YAML and published retained on "config/wristmon".

type Config struct {
	Board       string           `yaml:"board"`
	Sampling    SamplingConfig   `yaml:"sampling"`
	Sensors     []string         `yaml:"sensors"`
	InitialMode string           `yaml:"initial_mode"`
	Serial      SerialConfig     `yaml:"serial"`
	SensorBus   SensorBusConfig  `yaml:"sensor_bus"`
	Button      ButtonConfig     `yaml:"button"`
	LED         LEDConfig        `yaml:"led"`
	Classifier  ClassifierConfig `yaml:"classifier"`
	Log         LogConfig        `yaml:"log"`
}

type SamplingConfig struct {
	FrequencyHz uint32 `yaml:"frequency_hz"`
}

type SerialConfig struct {
	Port        string        `yaml:"port"`
	Baud        int           `yaml:"baud"`
	SendTimeout time.Duration `yaml:"send_timeout"`
	QueueSize   int           `yaml:"queue_size"`
}

// Sensor bus kinds.
const (
	BusI2C       = "i2c"
	BusModbus    = "modbus"
	BusSynthetic = "synthetic"
)

type SensorBusConfig struct {
	Kind      string          `yaml:"kind"`
	I2C       I2CConfig       `yaml:"i2c"`
	Modbus    ModbusConfig    `yaml:"modbus"`
	Synthetic SyntheticConfig `yaml:"synthetic"`
}

type I2CConfig struct {
	Bus          string `yaml:"bus"`           // "i2c0", "i2c1"
	IMUAddr      uint16 `yaml:"imu_addr"`      // 0 = driver default
	PressureAddr uint8  `yaml:"pressure_addr"` // 0 = driver default
	HumidityAddr uint16 `yaml:"humidity_addr"` // 0 = driver default
}

type ModbusConfig struct {
	Port     string        `yaml:"port"`
	Baud     int           `yaml:"baud"`
	SlaveID  byte          `yaml:"slave_id"`
	Timeout  time.Duration `yaml:"timeout"`
	AccelReg uint16        `yaml:"accel_reg"`    // 3 input registers x,y,z (int16 milli-g)
	PressReg uint16        `yaml:"pressure_reg"` // 2 input registers, uint32 Pa
}

// SyntheticConfig scripts a motion trace for simulation and bench tests.
type SyntheticConfig struct {
	Segments []SyntheticSegment `yaml:"segments"`
	Loop     bool               `yaml:"loop"`
}

type SyntheticSegment struct {
	Duration  time.Duration `yaml:"duration"`
	Gravity   [3]int32      `yaml:"gravity"`   // static milli-g vector
	StepHz    float64       `yaml:"step_hz"`   // 0 = still
	Amplitude int32         `yaml:"amplitude"` // milli-g added on z per step
	Pressure  int32         `yaml:"pressure"`  // Pa
}

type ButtonConfig struct {
	Pin       int           `yaml:"pin"`
	ActiveLow bool          `yaml:"active_low"`
	Debounce  time.Duration `yaml:"debounce"`
}

type LEDConfig struct {
	Pin int `yaml:"pin"` // <0 disables the indicator
}

type ClassifierConfig struct {
	Window         int     `yaml:"window"`          // samples
	StillThreshold float64 `yaml:"still_threshold"` // g, std-dev of |a|
	JogThreshold   float64 `yaml:"jog_threshold"`   // g, std-dev of |a|
	FastStepHz     float64 `yaml:"fast_step_hz"`    // cadence above = fast walking
	PeakThreshold  float64 `yaml:"peak_threshold"`  // z-score
	PeakInfluence  float64 `yaml:"peak_influence"`  // 0..1
	SleepAfter     int     `yaml:"sleep_after"`     // still windows before sleep
}

type LogConfig struct {
	Level string `yaml:"level"`
}
