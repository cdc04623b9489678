package indicator

import (
	"context"
	"time"
)

// Pin is the output the LED hangs off.
type Pin interface {
	Set(level bool)
}

// LED lights while a classifier runs. A nil pin makes it inert.
type LED struct {
	pin       Pin
	activeLow bool
}

func NewLED(pin Pin, activeLow bool) *LED {
	l := &LED{pin: pin, activeLow: activeLow}
	l.Busy(false)
	return l
}

func (l *LED) Busy(on bool) {
	if l == nil || l.pin == nil {
		return
	}
	l.pin.Set(on != l.activeLow)
}

// HaltBlink is the on and off time of the fault pattern.
const HaltBlink = 100 * time.Millisecond

// Halt blinks pin until ctx is done. Device builds pass a context that is
// never cancelled, so this is the terminal state after a fatal init error.
func Halt(ctx context.Context, pin Pin) {
	if pin == nil {
		<-ctx.Done()
		return
	}
	t := time.NewTicker(HaltBlink)
	defer t.Stop()
	level := true
	pin.Set(level)
	for {
		select {
		case <-ctx.Done():
			pin.Set(false)
			return
		case <-t.C:
			level = !level
			pin.Set(level)
		}
	}
}
