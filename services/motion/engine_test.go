package motion

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wristmon-go/errcode"
	"wristmon-go/types"
)

// --- fakes ---

type memSink struct {
	mu  sync.Mutex
	out []byte
}

func (s *memSink) SendByte(b byte) error {
	s.mu.Lock()
	s.out = append(s.out, b)
	s.mu.Unlock()
	return nil
}

func (s *memSink) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.out...)
}

func (s *memSink) Reset() {
	s.mu.Lock()
	s.out = nil
	s.mu.Unlock()
}

type seqAccel struct {
	mu sync.Mutex
	zs []int32
}

func (a *seqAccel) ReadAxes() (types.AccelSample, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	z := a.zs[0]
	if len(a.zs) > 1 {
		a.zs = a.zs[1:]
	}
	return types.AccelSample{Z: z}, nil
}

type fixedPressure int32

func (p fixedPressure) ReadValue() (int32, error) { return int32(p), nil }

func fixedAW(a types.Activity) AWClassifier {
	return AWFunc(func(types.AccelG, int64) types.Activity { return a })
}

func fixedSM(s types.SleepState) SMClassifier {
	return SMFunc(func(types.AccelG) types.SleepState { return s })
}

func newTestEngine(t *testing.T, opts Options, zs []int32, a types.Activity, s types.SleepState) (*Engine, *memSink) {
	t.Helper()
	sink := &memSink{}
	eng, err := NewEngine(opts, Deps{
		Sensors: Sensors{Accel: &seqAccel{zs: zs}, Pressure: fixedPressure(101325)},
		Sink:    sink,
		AW:      fixedAW(a),
		SM:      fixedSM(s),
	})
	require.NoError(t, err)
	return eng, sink
}

// --- tests ---

func TestNewEngine_RejectsBadInputs(t *testing.T) {
	deps := Deps{Sink: &memSink{}, AW: fixedAW(types.Walking), SM: fixedSM(types.Sleep)}

	_, err := NewEngine(Options{FrequencyHz: 0}, deps)
	require.Error(t, err)
	assert.Equal(t, errcode.InitFailed, errcode.Of(err))

	_, err = NewEngine(Options{FrequencyHz: 5000}, deps)
	assert.Equal(t, errcode.InitFailed, errcode.Of(err))

	_, err = NewEngine(Options{FrequencyHz: 16}, Deps{AW: deps.AW, SM: deps.SM})
	assert.Equal(t, errcode.InitFailed, errcode.Of(err))

	_, err = NewEngine(Options{FrequencyHz: 16, InitialMode: types.ProgramState(4)}, deps)
	assert.Equal(t, errcode.InitFailed, errcode.Of(err))
}

func TestEngine_LogicalClockAdvancesBeforeHandling(t *testing.T) {
	var stamps []int64
	sink := &memSink{}
	eng, err := NewEngine(
		Options{FrequencyHz: 16, Mask: types.MaskOf(types.Accelerometer, types.Pressure)},
		Deps{
			Sensors: Sensors{Accel: &seqAccel{zs: []int32{1000}}, Pressure: fixedPressure(1)},
			Sink:    sink,
			AW:      AWFunc(func(_ types.AccelG, ts int64) types.Activity { stamps = append(stamps, ts); return types.Walking }),
			SM:      fixedSM(types.Sleep),
		})
	require.NoError(t, err)

	assert.Equal(t, int64(62), eng.Advance().TsMs)
	assert.Equal(t, int64(124), eng.Advance().TsMs)
	assert.Equal(t, []int64{62, 124}, stamps)
	assert.Equal(t, []byte("ff"), sink.Bytes())
	assert.Equal(t, 62500*time.Microsecond, eng.Period())
}

func TestEngine_ToggleSwitchesDispatcher(t *testing.T) {
	eng, sink := newTestEngine(t,
		Options{FrequencyHz: 16, Mask: types.MaskOf(types.Accelerometer, types.Pressure)},
		[]int32{1000}, types.Sitting, types.Sleep)

	eng.Advance()
	assert.Equal(t, types.SMMode, eng.Toggle())
	eng.Advance()
	eng.Toggle()
	eng.Advance()

	assert.Equal(t, []byte("dod"), sink.Bytes())
}

func TestEngine_DisabledAccelEmitsNothing(t *testing.T) {
	eng, sink := newTestEngine(t, Options{FrequencyHz: 16}, []int32{1000}, types.Walking, types.NoSleep)
	for i := 0; i < 3; i++ {
		eng.Advance()
	}
	assert.Empty(t, sink.Bytes())
	assert.Equal(t, uint64(3), eng.Stats().Ticks)
}

func TestEngine_TurnOverInSleepMode(t *testing.T) {
	eng, sink := newTestEngine(t,
		Options{FrequencyHz: 16, Mask: types.MaskOf(types.Accelerometer), InitialMode: types.SMMode},
		[]int32{120, -50}, types.Walking, types.Sleep)

	eng.Advance()
	sink.Reset()
	eng.Advance()

	assert.Equal(t, "oqqqqqqqqqq", string(sink.Bytes()))
	st := eng.Stats()
	assert.Equal(t, uint64(12), st.Sent)
	assert.Equal(t, int64(124), st.NowMs)
}

func TestEngine_RunUntilCancelled(t *testing.T) {
	eng, sink := newTestEngine(t,
		Options{FrequencyHz: 200, Mask: types.MaskOf(types.Accelerometer, types.Pressure)},
		[]int32{1000}, types.Jogging, types.Sleep)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	require.Eventually(t, func() bool { return eng.Stats().Ticks >= 5 }, 2*time.Second, 5*time.Millisecond)

	// a second Run while the first is active is refused
	assert.Error(t, eng.Run(ctx))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("engine did not stop")
	}

	out := sink.Bytes()
	require.NotEmpty(t, out)
	for _, b := range out {
		assert.Equal(t, byte('h'), b)
	}
}
