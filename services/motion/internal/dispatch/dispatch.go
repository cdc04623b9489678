package dispatch

import (
	"wristmon-go/services/motion/internal/motioncore"
	"wristmon-go/services/motion/internal/sensing"
	"wristmon-go/types"
)

// Dispatcher runs one mode's handling for a tick.
type Dispatcher interface {
	Dispatch(tick motioncore.SampleTick)
}

// Table selects the dispatcher for the current program state.
type Table map[types.ProgramState]Dispatcher

// NewTable wires the two mode dispatchers.
func NewTable(aw *AW, sm *SM) Table {
	return Table{
		types.AWMode: aw,
		types.SMMode: sm,
	}
}

// Dispatch routes tick to the dispatcher registered for state; unknown
// states are ignored.
func (t Table) Dispatch(state types.ProgramState, tick motioncore.SampleTick) {
	if d, ok := t[state]; ok && d != nil {
		d.Dispatch(tick)
	}
}

// ---- AW ----

// AW runs the activity classifier.
type AW struct {
	gate *sensing.Gate
	algo motioncore.AWClassifier
	out  *Emitter
	led  motioncore.Indicator
}

func NewAW(gate *sensing.Gate, algo motioncore.AWClassifier, out *Emitter, led motioncore.Indicator) *AW {
	if led == nil {
		led = motioncore.NopIndicator{}
	}
	return &AW{gate: gate, algo: algo, out: out, led: led}
}

// Dispatch runs only when both accelerometer and pressure are enabled.
func (d *AW) Dispatch(tick motioncore.SampleTick) {
	if !d.gate.Mask().Has(types.Accelerometer, types.Pressure) {
		return
	}
	d.Run(tick)
}

// Run classifies the latest acceleration and emits its code. It does not
// consult the enable mask; the sleep dispatcher composes it directly.
func (d *AW) Run(tick motioncore.SampleTick) {
	d.led.Busy(true)
	a := d.algo.ClassifyActivity(d.gate.Accel().G(), tick.TsMs)
	d.led.Busy(false)
	d.out.Emit(ActivityCode(a), tick.TsMs)
}

// ---- SM ----

// SM runs the sleep classifier, composes activity recognition while awake,
// and delivers any pending turn-over alert.
type SM struct {
	gate *sensing.Gate
	algo motioncore.SMClassifier
	aw   *AW
	out  *Emitter
	led  motioncore.Indicator
}

func NewSM(gate *sensing.Gate, algo motioncore.SMClassifier, aw *AW, out *Emitter, led motioncore.Indicator) *SM {
	if led == nil {
		led = motioncore.NopIndicator{}
	}
	return &SM{gate: gate, algo: algo, aw: aw, out: out, led: led}
}

// Dispatch runs only when the accelerometer is enabled.
func (d *SM) Dispatch(tick motioncore.SampleTick) {
	if !d.gate.Mask().Has(types.Accelerometer) {
		return
	}

	d.led.Busy(true)
	s := d.algo.ClassifySleep(d.gate.Accel().G())
	d.led.Busy(false)

	d.out.Emit(SleepCode(s), tick.TsMs)
	switch s {
	case types.NoSleep:
		d.aw.Run(tick)
	case types.Sleep:
	default:
		// latch left pending for the next classified tick
		return
	}

	if d.gate.ConsumeTurnOver() {
		d.out.Burst(types.CodeTurnOver, types.TurnOverBurst, tick.TsMs)
	}
}
