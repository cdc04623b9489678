package classify

import (
	"math"

	"wristmon-go/types"
)

// Posture thresholds on the mean gravity direction, in g.
const (
	dominantAxisG = 0.8
	freeFallG     = 0.2
)

// ActivityClassifier labels each sample from the variability of |a| over a
// sliding window, step cadence, and the mean gravity direction when still.
// Not safe for concurrent use.
type ActivityClassifier struct {
	cfg types.ClassifierConfig

	mag     *window
	gx, gy  *window
	gz      *window
	steps   *StepCounter
	samples uint64
}

func NewActivityClassifier(cfg types.ClassifierConfig) *ActivityClassifier {
	return &ActivityClassifier{
		cfg:   cfg,
		mag:   newWindow(cfg.Window),
		gx:    newWindow(cfg.Window),
		gy:    newWindow(cfg.Window),
		gz:    newWindow(cfg.Window),
		steps: NewStepCounter(cfg.Window, cfg.PeakThreshold, cfg.PeakInfluence),
	}
}

// ClassifyActivity consumes one sample stamped with the logical clock.
func (c *ActivityClassifier) ClassifyActivity(acc types.AccelG, tsMs int64) types.Activity {
	c.samples++
	m := magnitude([3]float64{acc.X, acc.Y, acc.Z})
	c.mag.Push(m)
	c.gx.Push(acc.X)
	c.gy.Push(acc.Y)
	c.gz.Push(acc.Z)
	c.steps.Push(m, tsMs)

	if !c.mag.Full() {
		return types.ActivityUnknown
	}
	return Decide(c.cfg, Features{
		MeanG:   c.mag.Mean(),
		StdG:    c.mag.Std(),
		Cadence: c.steps.Cadence(tsMs),
		Gravity: [3]float64{c.gx.Mean(), c.gy.Mean(), c.gz.Mean()},
	})
}

// Steps is the number of steps detected so far.
func (c *ActivityClassifier) Steps() uint64 { return c.steps.Total() }

// Features summarise one window.
type Features struct {
	MeanG   float64    // mean |a|
	StdG    float64    // std-dev of |a|
	Cadence float64    // steps per second
	Gravity [3]float64 // mean x, y, z
}

// Decide maps window features to an activity.
func Decide(cfg types.ClassifierConfig, f Features) types.Activity {
	switch {
	case f.MeanG < freeFallG:
		return types.NoActivity
	case f.StdG < cfg.StillThreshold:
		return posture(f.Gravity)
	case f.StdG >= cfg.JogThreshold:
		return types.Jogging
	case f.Cadence >= cfg.FastStepHz:
		return types.FastWalking
	case f.Cadence >= 0.5:
		return types.Walking
	default:
		return types.Biking
	}
}

// posture reads the dominant gravity axis: x along the forearm, y across
// the wrist, z out of the watch face.
func posture(g [3]float64) types.Activity {
	x, y, z := math.Abs(g[0]), math.Abs(g[1]), math.Abs(g[2])
	switch {
	case y >= dominantAxisG:
		return types.Standing // arm hanging
	case x >= dominantAxisG:
		return types.Lying
	case z >= dominantAxisG:
		return types.Stationary // face up or down, resting on a surface
	default:
		return types.Sitting
	}
}
