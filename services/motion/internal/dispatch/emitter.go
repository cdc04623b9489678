package dispatch

import (
	"log/slog"
	"sync/atomic"

	"wristmon-go/services/motion/internal/motioncore"
	"wristmon-go/types"
)

// Emitter hands codes to the byte sink. Send failures are counted and
// dropped; the tick loop never waits beyond the sink's own bound.
type Emitter struct {
	sink motioncore.ByteSink
	log  *slog.Logger

	// OnEmit, if set, observes every attempted byte.
	OnEmit func(types.CodeValue)

	sent    atomic.Uint64
	dropped atomic.Uint64
}

func NewEmitter(sink motioncore.ByteSink, log *slog.Logger) *Emitter {
	if log == nil {
		log = slog.Default()
	}
	return &Emitter{sink: sink, log: log}
}

// Emit sends one byte stamped with the logical clock.
func (e *Emitter) Emit(code byte, tsMs int64) {
	ok := true
	if err := e.sink.SendByte(code); err != nil {
		ok = false
		e.dropped.Add(1)
		e.log.Debug("code dropped", "code", string(code), "err", err)
	} else {
		e.sent.Add(1)
	}
	if e.OnEmit != nil {
		e.OnEmit(types.CodeValue{Code: code, Sent: ok, TS: tsMs})
	}
}

// Burst emits code n times in a row.
func (e *Emitter) Burst(code byte, n int, tsMs int64) {
	for i := 0; i < n; i++ {
		e.Emit(code, tsMs)
	}
}

func (e *Emitter) Sent() uint64    { return e.sent.Load() }
func (e *Emitter) Dropped() uint64 { return e.dropped.Load() }
