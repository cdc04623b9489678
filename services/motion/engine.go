// services/motion/engine.go
package motion

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"wristmon-go/errcode"
	"wristmon-go/services/motion/internal/clock"
	"wristmon-go/services/motion/internal/dispatch"
	"wristmon-go/services/motion/internal/mode"
	"wristmon-go/services/motion/internal/sensing"
	"wristmon-go/types"
)

// Options are fixed at construction.
type Options struct {
	FrequencyHz uint32
	Mask        types.SensorMask
	InitialMode types.ProgramState
}

// Deps are the capabilities the engine drives.
type Deps struct {
	Sensors Sensors
	Sink    ByteSink
	AW      AWClassifier
	SM      SMClassifier
	LED     Indicator
	Logger  *slog.Logger

	// OnEmit observes each byte handed to the sink, from the tick loop.
	OnEmit func(types.CodeValue)
	// OnMode observes every toggle, from the caller of Toggle.
	OnMode func(types.ModeValue)
}

// Stats is a point-in-time snapshot of engine counters.
type Stats struct {
	Ticks        uint64 `json:"ticks"`
	Overruns     uint64 `json:"overruns"`
	Sent         uint64 `json:"sent"`
	Dropped      uint64 `json:"dropped"`
	ReadFailures uint64 `json:"read_failures"`
	NowMs        int64  `json:"now_ms"`
}

// Engine is the composition root: one tick source, one mode controller, one
// sensor gate and the dispatch table. All tick processing happens on the
// goroutine calling Run (or Step).
type Engine struct {
	log   *slog.Logger
	opts  Options
	clk   *clock.Source
	mode  *mode.Controller
	gate  *sensing.Gate
	out   *dispatch.Emitter
	table dispatch.Table

	onMode func(types.ModeValue)

	ticks   atomic.Uint64
	running atomic.Bool
}

func NewEngine(opts Options, deps Deps) (*Engine, error) {
	const op = "motion.NewEngine"
	if deps.Sink == nil {
		return nil, &errcode.E{C: errcode.InitFailed, Op: op, Msg: "no byte sink"}
	}
	if deps.AW == nil || deps.SM == nil {
		return nil, &errcode.E{C: errcode.InitFailed, Op: op, Msg: "classifier missing"}
	}
	if opts.InitialMode != types.AWMode && opts.InitialMode != types.SMMode {
		return nil, &errcode.E{C: errcode.InitFailed, Op: op, Msg: "unknown initial mode"}
	}
	clk, err := clock.New(opts.FrequencyHz)
	if err != nil {
		return nil, err
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "motion")

	gate := sensing.NewGate(opts.Mask, deps.Sensors, log)
	out := dispatch.NewEmitter(deps.Sink, log)
	out.OnEmit = deps.OnEmit

	aw := dispatch.NewAW(gate, deps.AW, out, deps.LED)
	sm := dispatch.NewSM(gate, deps.SM, aw, out, deps.LED)

	return &Engine{
		log:    log,
		opts:   opts,
		clk:    clk,
		mode:   mode.New(opts.InitialMode),
		gate:   gate,
		out:    out,
		table:  dispatch.NewTable(aw, sm),
		onMode: deps.OnMode,
	}, nil
}

// Mode returns the current program state.
func (e *Engine) Mode() types.ProgramState { return e.mode.State() }

// Mask returns the fixed sensor enable mask.
func (e *Engine) Mask() types.SensorMask { return e.gate.Mask() }

// Period returns the nominal tick period.
func (e *Engine) Period() time.Duration { return e.clk.Period() }

// Toggle flips the program state. Safe from any goroutine; the next tick
// observes the new state.
func (e *Engine) Toggle() types.ProgramState {
	s := e.mode.Toggle()
	e.log.Info("mode changed", "mode", s.String())
	if e.onMode != nil {
		e.onMode(types.ModeValue{State: s, TS: e.clk.Now()})
	}
	return s
}

// Step processes one tick: acquire, then dispatch by mode.
func (e *Engine) Step(tick SampleTick) {
	e.ticks.Add(1)
	e.gate.Acquire()
	e.table.Dispatch(e.mode.State(), tick)
}

// Advance raises the next tick on the logical clock and processes it
// synchronously. Must not be mixed with Run.
func (e *Engine) Advance() SampleTick {
	e.clk.Raise()
	tick := <-e.clk.Ticks()
	e.Step(tick)
	return tick
}

// Run drives the tick source from wall time and processes ticks until ctx
// is cancelled. Ticks raised while a previous one is still being handled
// are coalesced.
func (e *Engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return &errcode.E{C: errcode.Error, Op: "motion.Run", Msg: "already running"}
	}
	defer e.running.Store(false)

	e.log.Info("engine started",
		"hz", e.opts.FrequencyHz,
		"period_ms", e.clk.PeriodMs(),
		"sensors", e.gate.Mask().String(),
		"mode", e.mode.State().String())

	e.clk.Start(ctx)
	ticks := e.clk.Ticks()
	for {
		select {
		case <-ctx.Done():
			st := e.Stats()
			e.log.Info("engine stopped", "ticks", st.Ticks, "overruns", st.Overruns, "sent", st.Sent, "dropped", st.Dropped)
			return nil
		case tick := <-ticks:
			e.Step(tick)
		}
	}
}

func (e *Engine) Stats() Stats {
	return Stats{
		Ticks:        e.ticks.Load(),
		Overruns:     e.clk.Overruns(),
		Sent:         e.out.Sent(),
		Dropped:      e.out.Dropped(),
		ReadFailures: e.gate.ReadFailures(),
		NowMs:        e.clk.Now(),
	}
}
