package classify

import (
	"github.com/MicahParks/peakdetect"
)

// CadenceHorizonMs is how far back steps count towards cadence.
const CadenceHorizonMs = 4000

// StepCounter detects steps as rising edges of positive peaks in the
// acceleration magnitude, using a smoothed z-score detector seeded with the
// first lag samples.
type StepCounter struct {
	lag       int
	threshold float64
	influence float64

	detector peakdetect.PeakDetector
	seed     []float64
	ready    bool
	inPeak   bool

	firstMs int64
	started bool
	steps   []int64 // timestamps within the horizon
	total   uint64
}

func NewStepCounter(lag int, threshold, influence float64) *StepCounter {
	if lag < 2 {
		lag = 2
	}
	return &StepCounter{
		lag:       lag,
		threshold: threshold,
		influence: influence,
		detector:  peakdetect.NewPeakDetector(),
		seed:      make([]float64, 0, lag),
	}
}

// Push feeds one magnitude sample and reports whether it started a step.
func (s *StepCounter) Push(v float64, tsMs int64) bool {
	if !s.started {
		s.firstMs, s.started = tsMs, true
	}
	s.expire(tsMs)

	if !s.ready {
		s.seed = append(s.seed, v)
		if len(s.seed) < s.lag {
			return false
		}
		if err := s.detector.Initialize(s.influence, s.threshold, s.seed); err != nil {
			// slide and retry on the next sample
			s.seed = s.seed[1:]
			return false
		}
		s.ready = true
		return false
	}

	positive := s.detector.Next(v) == peakdetect.SignalPositive
	step := positive && !s.inPeak
	s.inPeak = positive
	if step {
		s.steps = append(s.steps, tsMs)
		s.total++
	}
	return step
}

func (s *StepCounter) expire(nowMs int64) {
	i := 0
	for i < len(s.steps) && nowMs-s.steps[i] > CadenceHorizonMs {
		i++
	}
	if i > 0 {
		s.steps = append(s.steps[:0], s.steps[i:]...)
	}
}

// Cadence is steps per second over the horizon, or over the time seen so
// far when that is shorter.
func (s *StepCounter) Cadence(nowMs int64) float64 {
	if !s.started {
		return 0
	}
	s.expire(nowMs)
	span := nowMs - s.firstMs
	if span > CadenceHorizonMs {
		span = CadenceHorizonMs
	}
	if span <= 0 {
		return 0
	}
	return float64(len(s.steps)) * 1000 / float64(span)
}

func (s *StepCounter) Total() uint64 { return s.total }
