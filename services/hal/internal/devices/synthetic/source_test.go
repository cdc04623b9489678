package synthetic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wristmon-go/types"
)

func trace(loop bool) types.SyntheticConfig {
	return types.SyntheticConfig{
		Loop: loop,
		Segments: []types.SyntheticSegment{
			{Duration: 250 * time.Millisecond, Gravity: [3]int32{0, 0, 1000}, Pressure: 101325},
			{Duration: 250 * time.Millisecond, Gravity: [3]int32{0, 0, -1000}, Pressure: 101300},
		},
	}
}

func TestSegmentsAdvancePerRead(t *testing.T) {
	s := New(trace(false), 16) // 62.5 ms per read, 4 reads per segment

	for i := 0; i < 4; i++ {
		a, err := s.ReadAxes()
		require.NoError(t, err)
		assert.Equal(t, int32(1000), a.Z, "read %d", i)
	}
	p, _ := s.ReadValue()
	assert.Equal(t, int32(101300), p)

	a, _ := s.ReadAxes()
	assert.Equal(t, int32(-1000), a.Z)
}

func TestHoldsLastSegmentWithoutLoop(t *testing.T) {
	s := New(trace(false), 16)
	for i := 0; i < 100; i++ {
		_, _ = s.ReadAxes()
	}
	assert.Equal(t, 1, s.Segment())
	a, _ := s.ReadAxes()
	assert.Equal(t, int32(-1000), a.Z)
}

func TestLoops(t *testing.T) {
	s := New(trace(true), 16)
	for i := 0; i < 8; i++ {
		_, _ = s.ReadAxes()
	}
	assert.Equal(t, 0, s.Segment())
}

func TestStepOscillation(t *testing.T) {
	cfg := types.SyntheticConfig{Segments: []types.SyntheticSegment{
		{Duration: time.Minute, Gravity: [3]int32{0, 0, 1000}, StepHz: 2, Amplitude: 400},
	}}
	s := New(cfg, 16)
	lo, hi := int32(1000), int32(1000)
	for i := 0; i < 32; i++ {
		a, _ := s.ReadAxes()
		lo, hi = min(lo, a.Z), max(hi, a.Z)
	}
	assert.InDelta(t, 1400, hi, 5)
	assert.InDelta(t, 600, lo, 5)
}

func TestEmptyTraceIsFlat(t *testing.T) {
	s := New(types.SyntheticConfig{Segments: []types.SyntheticSegment{{Duration: 0}}}, 16)
	a, err := s.ReadAxes()
	require.NoError(t, err)
	assert.Equal(t, types.AccelSample{Z: 1000}, a)
}
