// services/hal/internal/gpioirq/irq_worker.go
package gpioirq

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"wristmon-go/services/hal/internal/halcore"
)

// ButtonEvent is delivered from the worker to the HAL button service.
type ButtonEvent struct {
	Name    string
	Pressed bool // logical level after active-low inversion
	Edge    halcore.Edge
	TS      time.Time
}

type Worker struct {
	// Written by ISR; MUST NOT block the ISR:
	isrQ chan isrEvent
	// Names whose debounce window closed with an edge still unreported:
	settleQ chan string
	// Consumed by the HAL button service:
	outQ    chan ButtonEvent
	stopped chan struct{}

	mu      sync.RWMutex
	buttons map[string]*watch // name -> watch

	drops   atomic.Uint32 // ISR queue full
	dropped atomic.Uint32 // out queue full
	now     func() time.Time
}

type isrEvent struct {
	name  string
	level bool // captured in ISR
}

type watch struct {
	name      string
	pin       halcore.IRQPin
	debounce  time.Duration
	activeLow bool
	pressed   bool
	lastEvent time.Time
	settling  bool // a settle check is scheduled
}

func New(isrBuf, outBuf int) *Worker {
	if isrBuf <= 0 {
		isrBuf = 64
	}
	if outBuf <= 0 {
		outBuf = 64
	}
	return &Worker{
		isrQ:    make(chan isrEvent, isrBuf),
		settleQ: make(chan string, isrBuf),
		outQ:    make(chan ButtonEvent, outBuf),
		stopped: make(chan struct{}),
		buttons: map[string]*watch{},
		now:     time.Now,
	}
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.stopped)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-w.isrQ:
				w.handleISR(ev)
			case name := <-w.settleQ:
				w.handleSettle(name)
			}
		}
	}()
}

// Done is closed once the worker goroutine has exited.
func (w *Worker) Done() <-chan struct{} { return w.stopped }

func (w *Worker) Events() <-chan ButtonEvent { return w.outQ }

// RegisterButton watches both edges of pin. Returns a cancel that detaches
// the interrupt.
func (w *Worker) RegisterButton(name string, pin halcore.IRQPin, activeLow bool, debounce time.Duration) (func(), error) {
	pull := halcore.PullDown
	if activeLow {
		pull = halcore.PullUp
	}
	if err := pin.ConfigureInput(pull); err != nil {
		return nil, err
	}
	if debounce < 0 {
		debounce = 0
	}

	// Initial logical snapshot so edge detection compares like-for-like.
	wh := &watch{
		name:      name,
		pin:       pin,
		debounce:  debounce,
		activeLow: activeLow,
		pressed:   pin.Get() != activeLow,
	}

	// ISR handler: fast register read + non-blocking channel send.
	handler := func() {
		l := pin.Get()
		select {
		case w.isrQ <- isrEvent{name: name, level: l}:
		default:
			w.drops.Add(1)
		}
	}
	if err := pin.SetIRQ(halcore.EdgeBoth, handler); err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.buttons[name] = wh
	w.mu.Unlock()

	return func() {
		w.mu.Lock()
		if cur, ok := w.buttons[name]; ok {
			_ = cur.pin.ClearIRQ()
			delete(w.buttons, name)
		}
		w.mu.Unlock()
	}, nil
}

func (w *Worker) handleISR(ev isrEvent) {
	wh := w.watch(ev.name)
	if wh == nil {
		return
	}
	now := w.now()

	// Edges inside the window are not reported now; the level is re-read
	// once the window closes so a short tap cannot leave pressed stale.
	if !wh.lastEvent.IsZero() && now.Sub(wh.lastEvent) < wh.debounce {
		if !wh.settling {
			wh.settling = true
			name := ev.name
			time.AfterFunc(wh.lastEvent.Add(wh.debounce).Sub(now), func() {
				select {
				case w.settleQ <- name:
				default:
				}
			})
		}
		return
	}
	w.report(wh, ev.level != wh.activeLow, now)
}

// handleSettle samples the pin after a debounce window that saw edges.
func (w *Worker) handleSettle(name string) {
	wh := w.watch(name)
	if wh == nil {
		return
	}
	wh.settling = false
	w.report(wh, wh.pin.Get() != wh.activeLow, w.now())
}

func (w *Worker) watch(name string) *watch {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.buttons[name]
}

// report emits an event when the logical level differs from the last one
// reported, and opens a new debounce window.
func (w *Worker) report(wh *watch, pressed bool, now time.Time) {
	if pressed == wh.pressed {
		// bounce that settled back, or a repeated level
		return
	}

	e := halcore.EdgeFalling
	if pressed {
		e = halcore.EdgeRising
	}
	select {
	case w.outQ <- ButtonEvent{Name: wh.name, Pressed: pressed, Edge: e, TS: now}:
	default:
		w.dropped.Add(1)
	}

	wh.pressed = pressed
	wh.lastEvent = now
}

// ISRDrops counts interrupts lost because the ISR queue was full.
func (w *Worker) ISRDrops() uint32 { return w.drops.Load() }

// Dropped counts debounced events lost because no one was reading.
func (w *Worker) Dropped() uint32 { return w.dropped.Load() }
