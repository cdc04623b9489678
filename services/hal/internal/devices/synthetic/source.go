// services/hal/internal/devices/synthetic/source.go
package synthetic

import (
	"math"
	"sync"
	"time"

	"wristmon-go/types"
)

// Source replays scripted motion segments. Every accelerometer read advances
// the trace by one sample period, so output is independent of wall time.
// A trace that does not loop holds its last segment.
type Source struct {
	mu     sync.Mutex
	segs   []types.SyntheticSegment
	loop   bool
	period time.Duration

	seg     int
	elapsed time.Duration // within seg
	total   time.Duration
}

func New(cfg types.SyntheticConfig, hz uint32) *Source {
	if hz == 0 {
		hz = 1
	}
	var segs []types.SyntheticSegment
	for _, sg := range cfg.Segments {
		if sg.Duration > 0 {
			segs = append(segs, sg)
		}
	}
	return &Source{
		segs:   segs,
		loop:   cfg.Loop,
		period: time.Second / time.Duration(hz),
	}
}

func (s *Source) current() types.SyntheticSegment {
	if len(s.segs) == 0 {
		return types.SyntheticSegment{Gravity: [3]int32{0, 0, 1000}}
	}
	return s.segs[s.seg]
}

func (s *Source) advance() {
	s.total += s.period
	if len(s.segs) == 0 {
		return
	}
	s.elapsed += s.period
	for s.elapsed >= s.segs[s.seg].Duration {
		last := s.seg == len(s.segs)-1
		if last && !s.loop {
			s.elapsed = s.segs[s.seg].Duration
			return
		}
		s.elapsed -= s.segs[s.seg].Duration
		s.seg = (s.seg + 1) % len(s.segs)
	}
}

// ReadAxes returns the current sample in milli-g, then advances.
func (s *Source) ReadAxes() (types.AccelSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.current()
	out := types.AccelSample{X: g.Gravity[0], Y: g.Gravity[1], Z: g.Gravity[2]}
	if g.StepHz > 0 && g.Amplitude != 0 {
		phase := 2 * math.Pi * g.StepHz * s.total.Seconds()
		out.Z += int32(math.Round(float64(g.Amplitude) * math.Sin(phase)))
	}
	s.advance()
	return out, nil
}

// ReadRates reports a still wrist.
func (s *Source) ReadRates() (types.GyroSample, error) { return types.GyroSample{}, nil }

// ReadValue returns the current segment's pressure in Pa.
func (s *Source) ReadValue() (int32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current().Pressure, nil
}

// Segment is the index of the segment the next read comes from.
func (s *Source) Segment() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seg
}
