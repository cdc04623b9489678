package dispatch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wristmon-go/services/motion/internal/motioncore"
	"wristmon-go/services/motion/internal/sensing"
	"wristmon-go/types"
)

// --- fakes ---

type recSink struct {
	out  []byte
	fail bool
}

func (s *recSink) SendByte(b byte) error {
	if s.fail {
		return errors.New("timeout")
	}
	s.out = append(s.out, b)
	return nil
}

type zAccel struct{ zs []int32 }

func (a *zAccel) ReadAxes() (types.AccelSample, error) {
	z := a.zs[0]
	if len(a.zs) > 1 {
		a.zs = a.zs[1:]
	}
	return types.AccelSample{Z: z}, nil
}

type pressure struct{}

func (pressure) ReadValue() (int32, error) { return 101325, nil }

type busyLog struct{ events []bool }

func (b *busyLog) Busy(on bool) { b.events = append(b.events, on) }

type rig struct {
	gate  *sensing.Gate
	sink  *recSink
	emit  *Emitter
	aw    *AW
	sm    *SM
	table Table
	led   *busyLog

	awCalls int
}

func newRig(mask types.SensorMask, zs []int32, act types.Activity, sleep types.SleepState) *rig {
	r := &rig{sink: &recSink{}, led: &busyLog{}}
	r.gate = sensing.NewGate(mask, motioncore.Sensors{Accel: &zAccel{zs: zs}, Pressure: pressure{}}, nil)
	r.emit = NewEmitter(r.sink, nil)
	r.aw = NewAW(r.gate, motioncore.AWFunc(func(types.AccelG, int64) types.Activity {
		r.awCalls++
		return act
	}), r.emit, r.led)
	r.sm = NewSM(r.gate, motioncore.SMFunc(func(types.AccelG) types.SleepState { return sleep }), r.aw, r.emit, r.led)
	r.table = NewTable(r.aw, r.sm)
	return r
}

func (r *rig) step(state types.ProgramState, seq uint64) {
	r.gate.Acquire()
	r.table.Dispatch(state, motioncore.SampleTick{Seq: seq, TsMs: int64(seq) * 62})
}

func repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// --- tests ---

func TestAW_WalkingEmitsF(t *testing.T) {
	r := newRig(types.MaskOf(types.Accelerometer, types.Pressure), []int32{1000}, types.Walking, types.NoSleep)
	r.step(types.AWMode, 1)
	assert.Equal(t, []byte("f"), r.sink.out)
	assert.Equal(t, []bool{true, false}, r.led.events)
}

func TestAW_RequiresAccelAndPressure(t *testing.T) {
	for _, mask := range []types.SensorMask{0, types.MaskOf(types.Accelerometer), types.MaskOf(types.Pressure)} {
		r := newRig(mask, []int32{1000}, types.Walking, types.NoSleep)
		r.step(types.AWMode, 1)
		assert.Empty(t, r.sink.out, "mask %s", mask)
		assert.Zero(t, r.awCalls)
	}
}

func TestSM_SleepWithPendingTurnOver(t *testing.T) {
	r := newRig(types.MaskOf(types.Accelerometer), []int32{120, -50}, types.Walking, types.Sleep)
	r.gate.Acquire()
	r.gate.Acquire()
	require.True(t, r.gate.TurnOverPending())

	r.sm.Dispatch(motioncore.SampleTick{Seq: 2, TsMs: 124})

	want := append([]byte("o"), repeat('q', 10)...)
	assert.Equal(t, want, r.sink.out)
	assert.False(t, r.gate.TurnOverPending())
}

func TestSM_NoSleepComposesActivity(t *testing.T) {
	// pressure disabled: the composed activity call is not gated on it
	r := newRig(types.MaskOf(types.Accelerometer), []int32{1000}, types.Sitting, types.NoSleep)
	r.step(types.SMMode, 1)
	assert.Equal(t, []byte("nd"), r.sink.out)
	assert.Equal(t, 1, r.awCalls)
}

func TestSM_NoSleepThenTurnOverBurst(t *testing.T) {
	r := newRig(types.MaskOf(types.Accelerometer), []int32{800, -800}, types.Lying, types.NoSleep)
	r.step(types.SMMode, 1)
	r.sink.out = nil
	r.step(types.SMMode, 2)

	want := append([]byte("ne"), repeat('q', 10)...)
	assert.Equal(t, want, r.sink.out)
}

func TestSM_OtherLeavesLatchPending(t *testing.T) {
	r := newRig(types.MaskOf(types.Accelerometer), []int32{500, -500}, types.Walking, types.SleepOther)
	r.step(types.SMMode, 1)
	r.step(types.SMMode, 2)
	assert.Equal(t, []byte("jj"), r.sink.out)
	assert.True(t, r.gate.TurnOverPending())
	assert.Zero(t, r.awCalls)
}

func TestSM_RequiresAccel(t *testing.T) {
	r := newRig(types.MaskOf(types.Pressure), []int32{500}, types.Walking, types.Sleep)
	r.step(types.SMMode, 1)
	assert.Empty(t, r.sink.out)
}

func TestSM_SingleBurstForRepeatedFlips(t *testing.T) {
	r := newRig(types.MaskOf(types.Accelerometer), []int32{500, -500, 500, 500}, types.Walking, types.Sleep)
	r.gate.Acquire()
	r.gate.Acquire()
	r.gate.Acquire()
	r.sm.Dispatch(motioncore.SampleTick{Seq: 3})
	r.step(types.SMMode, 4)

	want := append([]byte("o"), repeat('q', 10)...)
	want = append(want, 'o')
	assert.Equal(t, want, r.sink.out)
}

func TestAWMode_NoTurnOverAlert(t *testing.T) {
	r := newRig(types.MaskOf(types.Accelerometer, types.Pressure), []int32{500, -500}, types.Standing, types.Sleep)
	r.step(types.AWMode, 1)
	r.step(types.AWMode, 2)
	assert.Equal(t, []byte("cc"), r.sink.out)
	assert.True(t, r.gate.TurnOverPending())
}

func TestEmitter_CountsDrops(t *testing.T) {
	sink := &recSink{fail: true}
	e := NewEmitter(sink, nil)
	var seen []types.CodeValue
	e.OnEmit = func(v types.CodeValue) { seen = append(seen, v) }

	e.Emit('a', 62)
	sink.fail = false
	e.Burst('q', 3, 124)

	assert.Equal(t, uint64(1), e.Dropped())
	assert.Equal(t, uint64(3), e.Sent())
	require.Len(t, seen, 4)
	assert.Equal(t, types.CodeValue{Code: 'a', Sent: false, TS: 62}, seen[0])
	assert.Equal(t, types.CodeValue{Code: 'q', Sent: true, TS: 124}, seen[3])
	assert.Equal(t, []byte("qqq"), sink.out)
}

func TestCodeTables(t *testing.T) {
	assert.Equal(t, byte('a'), ActivityCode(types.NoActivity))
	assert.Equal(t, byte('f'), ActivityCode(types.Walking))
	assert.Equal(t, byte('i'), ActivityCode(types.Biking))
	assert.Equal(t, byte('j'), ActivityCode(types.ActivityUnknown))
	assert.Equal(t, byte('j'), ActivityCode(types.Activity(200)))
	assert.Equal(t, byte('n'), SleepCode(types.NoSleep))
	assert.Equal(t, byte('o'), SleepCode(types.Sleep))
	assert.Equal(t, byte('j'), SleepCode(types.SleepOther))
}

func TestTable_UnknownStateIgnored(t *testing.T) {
	r := newRig(types.MaskOf(types.Accelerometer, types.Pressure), []int32{500}, types.Walking, types.Sleep)
	r.gate.Acquire()
	r.table.Dispatch(types.ProgramState(7), motioncore.SampleTick{})
	assert.Empty(t, r.sink.out)
}

func TestSM_OutOfRangeStateIsUnknown(t *testing.T) {
	r := newRig(types.MaskOf(types.Accelerometer), []int32{500, -500}, types.Walking, types.SleepState(42))
	r.step(types.SMMode, 1)
	r.step(types.SMMode, 2)
	assert.Equal(t, []byte("jj"), r.sink.out)
	assert.True(t, r.gate.TurnOverPending(), "unrecognised state leaves the latch alone")
	assert.Zero(t, r.awCalls)
}
