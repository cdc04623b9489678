// services/hal/internal/platform/factories_host.go
//go:build !rp2040 && !rp2350

package platform

import (
	"errors"
	"sync"
	"time"

	"github.com/goburrow/serial"
	"tinygo.org/x/drivers"

	"wristmon-go/services/hal/internal/halcore"
)

// ----------------------------- I²C (host) ------------------------------------

var ErrNACK = errors.New("i2c: no ack")

// RegDevice emulates one I²C target as a 256-byte register file. Reads and
// writes auto-increment from the register pointer set by the first written byte.
type RegDevice struct {
	mu      sync.Mutex
	regs    [256]byte
	onWrite func(reg, v byte) byte
	fail    error
}

// Poke stores vals from reg upwards without running write hooks.
func (d *RegDevice) Poke(reg byte, vals ...byte) {
	d.mu.Lock()
	for i, v := range vals {
		d.regs[reg+byte(i)] = v
	}
	d.mu.Unlock()
}

func (d *RegDevice) Peek(reg byte) byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.regs[reg]
}

// OnWrite installs a hook that maps each bus write to the stored value.
func (d *RegDevice) OnWrite(h func(reg, v byte) byte) {
	d.mu.Lock()
	d.onWrite = h
	d.mu.Unlock()
}

// Fail makes every transaction return err until cleared with nil.
func (d *RegDevice) Fail(err error) {
	d.mu.Lock()
	d.fail = err
	d.mu.Unlock()
}

func (d *RegDevice) tx(w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return d.fail
	}
	if len(w) == 0 {
		return nil
	}
	ptr := w[0]
	for _, v := range w[1:] {
		if d.onWrite != nil {
			v = d.onWrite(ptr, v)
		}
		d.regs[ptr] = v
		ptr++
	}
	for i := range r {
		r[i] = d.regs[ptr]
		ptr++
	}
	return nil
}

// target is one simulated I²C device.
type target interface {
	tx(w, r []byte) error
}

// HostI2C implements tinygo drivers.I2C over attached simulated targets.
type HostI2C struct {
	mu     sync.Mutex
	devs   map[uint16]target
	LastTx struct {
		Addr uint16
		W    []byte
		Rn   int
	}
}

// Attach places a *RegDevice or a command-level sim at addr.
func (h *HostI2C) Attach(addr uint16, d target) {
	h.mu.Lock()
	if h.devs == nil {
		h.devs = make(map[uint16]target)
	}
	h.devs[addr] = d
	h.mu.Unlock()
}

func (h *HostI2C) Tx(addr uint16, w, r []byte) error {
	h.mu.Lock()
	h.LastTx.Addr = addr
	h.LastTx.W = append(h.LastTx.W[:0], w...)
	h.LastTx.Rn = len(r)
	d := h.devs[addr]
	h.mu.Unlock()
	if d == nil {
		return ErrNACK
	}
	return d.tx(w, r)
}

type hostI2CFactory struct {
	buses map[string]drivers.I2C
}

func (f *hostI2CFactory) ByID(id string) (drivers.I2C, bool) {
	b, ok := f.buses[id]
	return b, ok
}

// DefaultI2CFactory creates empty host I²C buses "i2c0" and "i2c1".
func DefaultI2CFactory() halcore.I2CBusFactory {
	return I2CFactoryOf(map[string]*HostI2C{"i2c0": {}, "i2c1": {}})
}

// I2CFactoryOf exposes prepared host buses, typically carrying simulated targets.
func I2CFactoryOf(buses map[string]*HostI2C) halcore.I2CBusFactory {
	f := &hostI2CFactory{buses: make(map[string]drivers.I2C, len(buses))}
	for id, b := range buses {
		f.buses[id] = b
	}
	return f
}

// ----------------------------- GPIO (host) -----------------------------------

// FakePin implements GPIOPin and IRQPin for host-side tests.
type FakePin struct {
	mu      sync.RWMutex
	number  int
	level   bool
	modeOut bool
	pull    halcore.Pull
	irqEdge halcore.Edge
	irqFunc func()
	sets    int
}

func (p *FakePin) ConfigureInput(pull halcore.Pull) error {
	p.mu.Lock()
	p.modeOut = false
	p.pull = pull
	// an open input rests at its pull level
	p.level = pull == halcore.PullUp
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ConfigureOutput(initial bool) error {
	p.mu.Lock()
	p.modeOut = true
	p.level = initial
	p.mu.Unlock()
	return nil
}

func (p *FakePin) Set(level bool) {
	p.mu.Lock()
	old := p.level
	p.level = level
	p.sets++
	irq := p.irqFunc
	want := irqWanted(p.irqEdge, edgeFrom(old, level))
	p.mu.Unlock()
	if want && irq != nil {
		irq() // ISR-style callback used by gpioirq.Worker
	}
}

func (p *FakePin) Get() bool {
	p.mu.RLock()
	v := p.level
	p.mu.RUnlock()
	return v
}

func (p *FakePin) Toggle() { p.Set(!p.Get()) }

func (p *FakePin) Number() int { return p.number }

// Sets counts level writes, for indicator tests.
func (p *FakePin) Sets() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sets
}

func (p *FakePin) SetIRQ(edge halcore.Edge, handler func()) error {
	p.mu.Lock()
	p.irqEdge = edge
	p.irqFunc = handler
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ClearIRQ() error {
	p.mu.Lock()
	p.irqEdge = halcore.EdgeNone
	p.irqFunc = nil
	p.mu.Unlock()
	return nil
}

func edgeFrom(old, new bool) halcore.Edge {
	switch {
	case !old && new:
		return halcore.EdgeRising
	case old && !new:
		return halcore.EdgeFalling
	default:
		return halcore.EdgeNone
	}
}

func irqWanted(cfg, seen halcore.Edge) bool {
	switch cfg {
	case halcore.EdgeBoth:
		return seen == halcore.EdgeRising || seen == halcore.EdgeFalling
	default:
		return cfg != halcore.EdgeNone && cfg == seen
	}
}

// HostPinFactory returns stable *FakePin instances per number.
type HostPinFactory struct {
	mu   sync.Mutex
	pins map[int]*FakePin
}

func (f *HostPinFactory) ByNumber(n int) (halcore.GPIOPin, bool) {
	return f.Pin(n), true
}

// Pin exposes the underlying *FakePin for tests (e.g. to drive IRQ edges).
func (f *HostPinFactory) Pin(n int) *FakePin {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pins == nil {
		f.pins = make(map[int]*FakePin)
	}
	p, ok := f.pins[n]
	if !ok {
		p = &FakePin{number: n}
		f.pins[n] = p
	}
	return p
}

// DefaultPinFactory provides a host GPIO factory.
func DefaultPinFactory() halcore.PinFactory {
	return &HostPinFactory{pins: make(map[int]*FakePin)}
}

// ----------------------------- Serial (host) ---------------------------------

// WriteTimeout bounds one write to a host serial device.
const WriteTimeout = 500 * time.Millisecond

type hostSerial struct{}

// OpenSerial opens a tty at 8N1.
func (hostSerial) OpenSerial(name string, baud int) (halcore.SerialPort, error) {
	return serial.Open(&serial.Config{
		Address:  name,
		BaudRate: baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  WriteTimeout,
	})
}

// DefaultSerialOpener opens host tty devices.
func DefaultSerialOpener() halcore.SerialOpener { return hostSerial{} }
