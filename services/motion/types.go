// services/motion/types.go
package motion

import (
	"wristmon-go/services/motion/internal/motioncore"
)

// Re-exported capability types so board and classifier packages can
// implement them without reaching into internal packages.
type (
	SampleTick   = motioncore.SampleTick
	AxesReader   = motioncore.AxesReader
	GyroReader   = motioncore.GyroReader
	ScalarReader = motioncore.ScalarReader
	Sensors      = motioncore.Sensors
	ByteSink     = motioncore.ByteSink
	AWClassifier = motioncore.AWClassifier
	SMClassifier = motioncore.SMClassifier
	AWFunc       = motioncore.AWFunc
	SMFunc       = motioncore.SMFunc
	Indicator    = motioncore.Indicator
	NopIndicator = motioncore.NopIndicator
)
