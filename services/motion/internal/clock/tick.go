// services/motion/internal/clock/tick.go
package clock

import (
	"context"
	"sync/atomic"
	"time"

	"wristmon-go/errcode"
	"wristmon-go/services/motion/internal/motioncore"
	"wristmon-go/x/timex"
)

// MaxFrequencyHz bounds the sampling rate; the logical clock has 1 ms resolution.
const MaxFrequencyHz = 1000

// Source raises SampleTicks at a fixed rate. At most one tick is pending:
// a tick raised while the previous one is unconsumed replaces it and counts
// as an overrun. The logical clock advances on every raise regardless.
type Source struct {
	period   time.Duration
	periodMs int64

	ticks chan motioncore.SampleTick

	now      atomic.Int64
	seq      atomic.Uint64
	overruns atomic.Uint64
}

// New configures a source. An unusable frequency is a fatal init error.
func New(freqHz uint32) (*Source, error) {
	if freqHz == 0 || freqHz > MaxFrequencyHz {
		return nil, &errcode.E{C: errcode.InitFailed, Op: "clock.New", Msg: "sampling frequency out of range"}
	}
	return &Source{
		period:   timex.PeriodFromHz(freqHz),
		periodMs: timex.PeriodMsFromHz(freqHz),
		ticks:    make(chan motioncore.SampleTick, 1),
	}, nil
}

func (s *Source) Period() time.Duration { return s.period }
func (s *Source) PeriodMs() int64       { return s.periodMs }

// Now returns the logical clock in ms.
func (s *Source) Now() int64 { return s.now.Load() }

// Overruns counts ticks coalesced because the consumer was still busy.
func (s *Source) Overruns() uint64 { return s.overruns.Load() }

// Ticks is consumed by the engine loop.
func (s *Source) Ticks() <-chan motioncore.SampleTick { return s.ticks }

// Raise is the period-elapsed handler. It never blocks.
func (s *Source) Raise() {
	tick := motioncore.SampleTick{
		Seq:  s.seq.Add(1),
		TsMs: s.now.Add(s.periodMs),
	}
	for {
		select {
		case s.ticks <- tick:
			return
		default:
		}
		select {
		case <-s.ticks:
			s.overruns.Add(1)
		default:
		}
	}
}

// Start drives Raise from a wall-clock ticker until ctx is cancelled.
func (s *Source) Start(ctx context.Context) {
	go func() {
		t := time.NewTicker(s.period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Raise()
			}
		}
	}()
}
