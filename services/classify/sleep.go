package classify

import "wristmon-go/types"

// SleepClassifier reports sleep once the wrist has been still for
// SleepAfter full windows in a row. Any movement resets the count.
// Not safe for concurrent use.
type SleepClassifier struct {
	cfg   types.ClassifierConfig
	mag   *window
	still int // consecutive still samples
}

func NewSleepClassifier(cfg types.ClassifierConfig) *SleepClassifier {
	return &SleepClassifier{cfg: cfg, mag: newWindow(cfg.Window)}
}

func (c *SleepClassifier) ClassifySleep(acc types.AccelG) types.SleepState {
	c.mag.Push(magnitude([3]float64{acc.X, acc.Y, acc.Z}))
	if !c.mag.Full() {
		return types.SleepOther
	}
	if c.mag.Std() < c.cfg.StillThreshold {
		c.still++
	} else {
		c.still = 0
	}
	if c.still >= c.cfg.SleepAfter*c.cfg.Window {
		return types.Sleep
	}
	return types.NoSleep
}

// StillSamples is the current run of still samples.
func (c *SleepClassifier) StillSamples() int { return c.still }
