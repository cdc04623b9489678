package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccelSampleG(t *testing.T) {
	for _, v := range []int32{0, 1, -1, 999, 1000, -1000, 4000, -4096, 123456} {
		g := AccelSample{X: v, Y: -v, Z: v / 2}.G()
		assert.InDelta(t, float64(v)/1000.0, g.X, 1e-12)
		assert.InDelta(t, float64(-v)/1000.0, g.Y, 1e-12)
		assert.InDelta(t, float64(v/2)/1000.0, g.Z, 1e-12)
	}
}

func TestSensorMask(t *testing.T) {
	m := MaskOf(Accelerometer, Pressure)
	assert.True(t, m.Has(Accelerometer))
	assert.True(t, m.Has(Accelerometer, Pressure))
	assert.False(t, m.Has(Gyroscope))
	assert.False(t, m.Has(Accelerometer, Gyroscope))
	assert.Equal(t, "accelerometer|pressure", m.String())
	assert.Equal(t, "none", SensorMask(0).String())
	assert.True(t, m.With(Gyroscope).Has(Gyroscope))
}

func TestParse(t *testing.T) {
	k, err := ParseSensorKind(" Accel ")
	require.NoError(t, err)
	assert.Equal(t, Accelerometer, k)

	_, err = ParseSensorKind("lidar")
	assert.Error(t, err)

	p, err := ParseProgramState("sm")
	require.NoError(t, err)
	assert.Equal(t, SMMode, p)

	p, err = ParseProgramState("")
	require.NoError(t, err)
	assert.Equal(t, AWMode, p)

	_, err = ParseProgramState("run")
	assert.Error(t, err)
}

func TestCodeTableUnique(t *testing.T) {
	seen := map[byte]bool{}
	for _, c := range CodeTable {
		assert.False(t, seen[c.Code], "duplicate code %q", c.Code)
		seen[c.Code] = true
	}
	assert.Len(t, CodeTable, 13)
}
