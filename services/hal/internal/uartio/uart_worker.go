// services/hal/internal/uartio/uart_worker.go
package uartio

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"wristmon-go/errcode"
	"wristmon-go/x/shmring"
)

// Sink queues output bytes in a ring and drains them to a port from its own
// goroutine. SendByte is single-producer and waits at most the send timeout
// for queue space.
type Sink struct {
	ring    *shmring.Ring
	port    io.Writer
	timeout time.Duration
	log     *slog.Logger

	written   atomic.Uint64
	writeErrs atomic.Uint64
	stopped   chan struct{}
}

// NewSink rounds queue up to a power of two.
func NewSink(port io.Writer, queue int, timeout time.Duration, log *slog.Logger) *Sink {
	if log == nil {
		log = slog.Default()
	}
	size := 2
	for size < queue {
		size <<= 1
	}
	return &Sink{
		ring:    shmring.New(size),
		port:    port,
		timeout: timeout,
		log:     log,
		stopped: make(chan struct{}),
	}
}

func (s *Sink) SendByte(b byte) error {
	buf := [1]byte{b}
	if s.ring.TryWriteFrom(buf[:]) == 1 {
		return nil
	}
	if s.timeout <= 0 {
		return &errcode.E{C: errcode.Timeout, Op: "uartio.SendByte", Msg: "queue full"}
	}
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	for {
		select {
		case <-s.ring.Writable():
			if s.ring.TryWriteFrom(buf[:]) == 1 {
				return nil
			}
		case <-timer.C:
			// last chance: the edge may have been taken by an earlier wait
			if s.ring.TryWriteFrom(buf[:]) == 1 {
				return nil
			}
			return &errcode.E{C: errcode.Timeout, Op: "uartio.SendByte", Msg: "queue full"}
		}
	}
}

// Start runs the drain loop until ctx is cancelled, then flushes what is
// already queued.
func (s *Sink) Start(ctx context.Context) {
	go func() {
		defer close(s.stopped)
		var chunk [64]byte
		for {
			if n := s.ring.TryReadInto(chunk[:]); n > 0 {
				s.write(chunk[:n])
				continue
			}
			select {
			case <-ctx.Done():
				for n := s.ring.TryReadInto(chunk[:]); n > 0; n = s.ring.TryReadInto(chunk[:]) {
					s.write(chunk[:n])
				}
				return
			case <-s.ring.Readable():
			}
		}
	}()
}

func (s *Sink) write(p []byte) {
	n, err := s.port.Write(p)
	s.written.Add(uint64(n))
	if err != nil {
		if s.writeErrs.Add(1) == 1 {
			s.log.Warn("serial write failed", "error", err)
		}
	}
}

// Done is closed when the drain loop has exited.
func (s *Sink) Done() <-chan struct{} { return s.stopped }

// Queued is the number of bytes not yet handed to the port.
func (s *Sink) Queued() int { return s.ring.Available() }

func (s *Sink) Written() uint64     { return s.written.Load() }
func (s *Sink) WriteErrors() uint64 { return s.writeErrs.Load() }
