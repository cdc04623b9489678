// services/hal/internal/devices/modbusimu/adaptor.go
package modbusimu

import (
	"encoding/binary"
	"errors"
	"sync"

	"github.com/goburrow/modbus"

	"wristmon-go/errcode"
	"wristmon-go/types"
)

// RegisterReader is the slice of modbus.Client used here.
type RegisterReader interface {
	ReadInputRegisters(address, quantity uint16) ([]byte, error)
}

// Adaptor reads a bench IMU over Modbus input registers:
// three int16 milli-g axes at AccelReg and a uint32 pressure in Pa
// (high word first) at PressReg.
type Adaptor struct {
	mu       sync.Mutex
	c        RegisterReader
	accelReg uint16
	pressReg uint16
	closer   func() error
}

// New wraps an existing register reader.
func New(c RegisterReader, accelReg, pressReg uint16) *Adaptor {
	return &Adaptor{c: c, accelReg: accelReg, pressReg: pressReg}
}

// Dial opens the RTU link described by cfg.
func Dial(cfg types.ModbusConfig) (*Adaptor, error) {
	if cfg.Port == "" {
		return nil, &errcode.E{C: errcode.InitFailed, Op: "modbusimu.Dial", Msg: "port required"}
	}
	h := modbus.NewRTUClientHandler(cfg.Port)
	h.BaudRate = cfg.Baud
	h.DataBits = 8
	h.Parity = "N"
	h.StopBits = 1
	h.SlaveId = cfg.SlaveID
	if cfg.Timeout > 0 {
		h.Timeout = cfg.Timeout
	}
	if err := h.Connect(); err != nil {
		return nil, errcode.Wrap(errcode.InitFailed, "modbusimu.Dial", err)
	}
	a := New(modbus.NewClient(h), cfg.AccelReg, cfg.PressReg)
	a.closer = h.Close
	return a, nil
}

func (a *Adaptor) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

var errShort = errors.New("short register response")

func (a *Adaptor) read(op string, addr, qty uint16) ([]byte, error) {
	a.mu.Lock()
	b, err := a.c.ReadInputRegisters(addr, qty)
	a.mu.Unlock()
	if err != nil {
		return nil, errcode.Wrap(errcode.ReadFailed, op, err)
	}
	if len(b) < int(qty)*2 {
		return nil, errcode.Wrap(errcode.ReadFailed, op, errShort)
	}
	return b, nil
}

// ReadAxes returns milli-g.
func (a *Adaptor) ReadAxes() (types.AccelSample, error) {
	b, err := a.read("modbusimu.ReadAxes", a.accelReg, 3)
	if err != nil {
		return types.AccelSample{}, err
	}
	return types.AccelSample{
		X: int32(int16(binary.BigEndian.Uint16(b[0:2]))),
		Y: int32(int16(binary.BigEndian.Uint16(b[2:4]))),
		Z: int32(int16(binary.BigEndian.Uint16(b[4:6]))),
	}, nil
}

// ReadValue returns pressure in Pa.
func (a *Adaptor) ReadValue() (int32, error) {
	b, err := a.read("modbusimu.ReadValue", a.pressReg, 2)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b[0:4])), nil
}
