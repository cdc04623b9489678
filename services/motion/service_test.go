package motion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wristmon-go/bus"
	"wristmon-go/types"
)

func recvMode(t *testing.T, sub *bus.Subscription) types.ModeValue {
	t.Helper()
	select {
	case msg := <-sub.Channel():
		v, ok := msg.Payload.(types.ModeValue)
		require.True(t, ok, "payload %T", msg.Payload)
		return v
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for mode")
		return types.ModeValue{}
	}
}

func TestService_ButtonPressTogglesMode(t *testing.T) {
	b := bus.NewBus(16)
	hal := b.NewConnection("hal")
	obs := b.NewConnection("observer")

	svc, err := NewService(b.NewConnection("motion"),
		Options{FrequencyHz: 16, Mask: types.MaskOf(types.Accelerometer)},
		Deps{Sink: &memSink{}, AW: fixedAW(types.Walking), SM: fixedSM(types.Sleep)})
	require.NoError(t, err)
	svc.StatsEvery = 0

	modeSub := obs.Subscribe(TopicMode)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	assert.Equal(t, types.AWMode, recvMode(t, modeSub).State)

	btn := bus.T("hal", "button", "mode")
	hal.Publish(hal.NewMessage(btn, types.ButtonValue{Pressed: false}, false))
	hal.Publish(hal.NewMessage(btn, types.ButtonValue{Pressed: true}, false))
	assert.Equal(t, types.SMMode, recvMode(t, modeSub).State)

	hal.Publish(hal.NewMessage(btn, "noise", false))
	hal.Publish(hal.NewMessage(btn, types.ButtonValue{Pressed: true}, false))
	assert.Equal(t, types.AWMode, recvMode(t, modeSub).State)
	assert.Equal(t, types.AWMode, svc.Engine().Mode())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("service did not stop")
	}
}

func TestService_PublishesCodesAndStats(t *testing.T) {
	b := bus.NewBus(64)
	obs := b.NewConnection("observer")
	codeSub := obs.Subscribe(TopicCode)

	var seen []byte
	sink := &memSink{}
	svc, err := NewService(b.NewConnection("motion"),
		Options{FrequencyHz: 100, Mask: types.MaskOf(types.Accelerometer, types.Pressure)},
		Deps{
			Sensors: Sensors{Accel: &seqAccel{zs: []int32{1000}}, Pressure: fixedPressure(1)},
			Sink:    sink,
			AW:      fixedAW(types.Biking),
			SM:      fixedSM(types.Sleep),
			OnEmit:  func(v types.CodeValue) { seen = append(seen, v.Code) },
		})
	require.NoError(t, err)
	svc.StatsEvery = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case msg := <-codeSub.Channel():
		v, ok := msg.Payload.(types.CodeValue)
		require.True(t, ok)
		assert.Equal(t, types.CodeBiking, v.Code)
		assert.True(t, v.Sent)
		assert.Positive(t, v.TS)
	case <-time.After(2 * time.Second):
		t.Fatal("no code published")
	}

	cancel()
	require.NoError(t, <-done)
	assert.NotEmpty(t, seen, "caller hook still invoked")

	statsSub := obs.Subscribe(TopicStats)
	msg := <-statsSub.Channel()
	st, ok := msg.Payload.(Stats)
	require.True(t, ok)
	assert.Positive(t, st.Ticks)
	assert.Equal(t, st.Sent, uint64(len(sink.Bytes())))
}
