package hal

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wristmon-go/bus"
	"wristmon-go/errcode"
	"wristmon-go/services/config"
	"wristmon-go/services/hal/internal/halcore"
	"wristmon-go/services/hal/internal/platform"
	"wristmon-go/types"
)

type memPort struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (p *memPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Write(b)
}

func (p *memPort) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

func (p *memPort) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.String()
}

type fakeOpener struct {
	port *memPort
	err  error
	name string
	baud int
}

func (o *fakeOpener) OpenSerial(name string, baud int) (halcore.SerialPort, error) {
	o.name, o.baud = name, baud
	if o.err != nil {
		return nil, o.err
	}
	return o.port, nil
}

type picoRig struct {
	cfg    *types.Config
	imu    platform.IMUSim
	baro   platform.BaroSim
	pins   *platform.HostPinFactory
	opener *fakeOpener
	f      Factories
}

func newPicoRig(t *testing.T) *picoRig {
	t.Helper()
	cfg, err := config.Resolve("", "pico")
	require.NoError(t, err)

	r := &picoRig{
		cfg:    cfg,
		imu:    platform.NewIMUSim(),
		baro:   platform.NewBaroSim(),
		pins:   &platform.HostPinFactory{},
		opener: &fakeOpener{port: &memPort{}},
	}
	i2c0 := &platform.HostI2C{}
	i2c0.Attach(0x6A, r.imu.RegDevice)
	i2c0.Attach(0x5C, r.baro.RegDevice)
	r.f = Factories{
		I2C:    platform.I2CFactoryOf(map[string]*platform.HostI2C{"i2c0": i2c0}),
		Pins:   r.pins,
		Serial: r.opener,
	}
	return r
}

func TestBuild_PicoOverI2C(t *testing.T) {
	r := newPicoRig(t)
	b, err := Build(r.cfg, r.f, nil)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, "uart0", r.opener.name)
	assert.Equal(t, 115200, r.opener.baud)

	r.imu.SetAccel(0, 0, 1000)
	a, err := b.Sensors.Accel.ReadAxes()
	require.NoError(t, err)
	assert.InDelta(t, 1000, a.Z, 1)

	r.baro.SetPressure(101325)
	p, err := b.Sensors.Pressure.ReadValue()
	require.NoError(t, err)
	assert.InDelta(t, 101325, p, 1)

	assert.NotNil(t, b.Sensors.Gyro)
	assert.Nil(t, b.Sensors.Magnetometer)
	assert.NotNil(t, b.StatusPin)

	// LED follows Busy on pin 25
	led := r.pins.Pin(25)
	b.LED.Busy(true)
	assert.True(t, led.Get())
	b.LED.Busy(false)
	assert.False(t, led.Get())
}

func TestBuild_ButtonPublishesEdges(t *testing.T) {
	r := newPicoRig(t)
	b, err := Build(r.cfg, r.f, nil)
	require.NoError(t, err)
	defer b.Close()

	bs := bus.NewBus(4)
	sub := bs.NewConnection("test").Subscribe(TopicButton(ButtonName))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.Start(ctx, bs.NewConnection("hal"))

	btn := r.pins.Pin(15)
	require.True(t, btn.Get(), "active-low button rests high")
	btn.Set(false)

	select {
	case msg := <-sub.Channel():
		v, ok := msg.Payload.(types.ButtonValue)
		require.True(t, ok)
		assert.True(t, v.Pressed)
	case <-time.After(time.Second):
		t.Fatal("no button event")
	}
}

func TestBuild_SerialSinkWritesPort(t *testing.T) {
	r := newPicoRig(t)
	b, err := Build(r.cfg, r.f, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	b.Start(ctx, bus.NewBus(1).NewConnection("hal"))
	for _, c := range []byte("nqqqqqqqqqq") {
		require.NoError(t, b.Sink().SendByte(c))
	}
	cancel()
	<-b.Drained()
	assert.Equal(t, "nqqqqqqqqqq", r.opener.port.String())
	assert.Equal(t, uint64(11), b.SerialWritten())

	require.NoError(t, b.Close())
	assert.True(t, r.opener.port.closed)
}

func TestBuild_SyntheticWithOutputOverride(t *testing.T) {
	cfg, err := config.Resolve("", "host-sim")
	require.NoError(t, err)
	out := &memPort{}

	b, err := Build(cfg, Factories{Output: out}, nil)
	require.NoError(t, err)
	defer b.Close()

	a, err := b.Sensors.Accel.ReadAxes()
	require.NoError(t, err)
	assert.Equal(t, int32(1000), a.Z)
	assert.Nil(t, b.StatusPin)
	assert.NotPanics(t, func() { b.LED.Busy(true) })
}

func TestBuild_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *picoRig)
	}{
		{"imu missing", func(r *picoRig) {
			r.f.I2C = platform.I2CFactoryOf(map[string]*platform.HostI2C{"i2c0": {}})
		}},
		{"unknown bus", func(r *picoRig) { r.cfg.SensorBus.I2C.Bus = "i2c7" }},
		{"no i2c factory", func(r *picoRig) { r.f.I2C = nil }},
		{"serial open fails", func(r *picoRig) { r.opener.err = errors.New("busy") }},
		{"no pins", func(r *picoRig) { r.f.Pins = nil }},
		{"unknown sensor bus", func(r *picoRig) { r.cfg.SensorBus.Kind = "can" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newPicoRig(t)
			tc.mutate(r)
			b, err := Build(r.cfg, r.f, nil)
			require.Error(t, err)
			assert.Nil(t, b)
			assert.True(t, errcode.IsFatal(err), "%v", err)
		})
	}
}

func TestBuild_FailureReleasesOpenedPort(t *testing.T) {
	r := newPicoRig(t)
	r.f.Pins = nil // fails after the serial port is open
	_, err := Build(r.cfg, r.f, nil)
	require.Error(t, err)
	assert.True(t, r.opener.port.closed)
}

func TestBuild_PressureDisabledSkipsBarometer(t *testing.T) {
	r := newPicoRig(t)
	r.cfg.Sensors = []string{"accelerometer"}
	i2c0 := &platform.HostI2C{}
	i2c0.Attach(0x6A, r.imu.RegDevice) // no barometer fitted
	r.f.I2C = platform.I2CFactoryOf(map[string]*platform.HostI2C{"i2c0": i2c0})

	b, err := Build(r.cfg, r.f, nil)
	require.NoError(t, err)
	defer b.Close()
	assert.Nil(t, b.Sensors.Pressure)
}

func TestBuild_HumidityOverI2C(t *testing.T) {
	r := newPicoRig(t)
	r.cfg.Sensors = append(r.cfg.Sensors, "humidity")
	aht := platform.NewAHT20Sim()
	aht.Set(4200, 230)
	i2c0 := &platform.HostI2C{}
	i2c0.Attach(0x6A, r.imu.RegDevice)
	i2c0.Attach(0x5C, r.baro.RegDevice)
	i2c0.Attach(0x38, aht)
	r.f.I2C = platform.I2CFactoryOf(map[string]*platform.HostI2C{"i2c0": i2c0})

	b, err := Build(r.cfg, r.f, nil)
	require.NoError(t, err)
	defer b.Close()

	require.NotNil(t, b.Sensors.Humidity)
	v, err := b.Sensors.Humidity.ReadValue()
	require.NoError(t, err)
	assert.Equal(t, int32(4200), v)
}
