// services/motion/internal/motioncore/types.go
package motioncore

import (
	"wristmon-go/types"
)

// SampleTick is raised once per sampling period. TsMs is the logical clock,
// advanced by the nominal period before the tick is raised.
type SampleTick struct {
	Seq  uint64
	TsMs int64
}

// ---- Sensor capabilities ----

// AxesReader yields raw milli-g triples.
type AxesReader interface {
	ReadAxes() (types.AccelSample, error)
}

// GyroReader yields angular rate in milli-dps.
type GyroReader interface {
	ReadRates() (types.GyroSample, error)
}

// ScalarReader yields one integer value in driver units.
type ScalarReader interface {
	ReadValue() (int32, error)
}

// Sensors groups the fitted readers. A nil reader means not fitted.
type Sensors struct {
	Accel        AxesReader
	Gyro         GyroReader
	Magnetometer AxesReader
	Pressure     ScalarReader
	Temperature  ScalarReader
	Humidity     ScalarReader
}

// ---- Output ----

// ByteSink sends one byte within a bounded time. A send that cannot complete
// in time returns an error and the byte is lost.
type ByteSink interface {
	SendByte(b byte) error
}

// ---- Classifiers ----

// AWClassifier is the activity-recognition algorithm.
type AWClassifier interface {
	ClassifyActivity(acc types.AccelG, tsMs int64) types.Activity
}

// SMClassifier is the sleep-monitor algorithm.
type SMClassifier interface {
	ClassifySleep(acc types.AccelG) types.SleepState
}

// AWFunc adapts a plain function to AWClassifier.
type AWFunc func(acc types.AccelG, tsMs int64) types.Activity

func (f AWFunc) ClassifyActivity(acc types.AccelG, tsMs int64) types.Activity { return f(acc, tsMs) }

// SMFunc adapts a plain function to SMClassifier.
type SMFunc func(acc types.AccelG) types.SleepState

func (f SMFunc) ClassifySleep(acc types.AccelG) types.SleepState { return f(acc) }

// ---- Indicator ----

// Indicator is lit while a classifier runs.
type Indicator interface {
	Busy(on bool)
}

type NopIndicator struct{}

func (NopIndicator) Busy(bool) {}
