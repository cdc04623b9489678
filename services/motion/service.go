// services/motion/service.go
package motion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"wristmon-go/bus"
	"wristmon-go/types"
)

var (
	TopicMode  = bus.T("motion", "mode")
	TopicCode  = bus.T("motion", "code")
	TopicStats = bus.T("motion", "stats")

	topicButtons = bus.T("hal", "button", bus.SingleLevel)
)

// Service connects an Engine to the bus: button presses toggle the mode,
// mode changes are published retained and every emitted code is published.
type Service struct {
	conn *bus.Connection
	eng  *Engine
	log  *slog.Logger

	// StatsEvery is the retained stats publish interval; zero disables it.
	StatsEvery time.Duration
}

// NewService builds the engine with bus publishing hooks chained in front
// of any caller-supplied ones.
func NewService(conn *bus.Connection, opts Options, deps Deps) (*Service, error) {
	s := &Service{conn: conn, StatsEvery: 5 * time.Second}
	s.log = deps.Logger
	if s.log == nil {
		s.log = slog.Default()
	}

	userEmit, userMode := deps.OnEmit, deps.OnMode
	deps.OnEmit = func(v types.CodeValue) {
		s.conn.Publish(s.conn.NewMessage(TopicCode, v, false))
		if userEmit != nil {
			userEmit(v)
		}
	}
	deps.OnMode = func(v types.ModeValue) {
		s.conn.Publish(s.conn.NewMessage(TopicMode, v, true))
		if userMode != nil {
			userMode(v)
		}
	}

	eng, err := NewEngine(opts, deps)
	if err != nil {
		return nil, err
	}
	s.eng = eng
	return s, nil
}

func (s *Service) Engine() *Engine { return s.eng }

// Run starts the engine and services button events until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	btnSub := s.conn.Subscribe(topicButtons)
	defer s.conn.Unsubscribe(btnSub)

	s.conn.Publish(s.conn.NewMessage(TopicMode, types.ModeValue{State: s.eng.Mode()}, true))

	var (
		wg     sync.WaitGroup
		engErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		engErr = s.eng.Run(ctx)
	}()

	var statsC <-chan time.Time
	if s.StatsEvery > 0 {
		t := time.NewTicker(s.StatsEvery)
		defer t.Stop()
		statsC = t.C
	}

	btnC := btnSub.Channel()
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			s.conn.Publish(s.conn.NewMessage(TopicStats, s.eng.Stats(), true))
			return engErr

		case msg, ok := <-btnC:
			if !ok {
				btnC = nil
				continue
			}
			ev, ok := msg.Payload.(types.ButtonValue)
			if !ok {
				s.log.Debug("button payload ignored", "topic", msg.Topic.String())
				continue
			}
			// releases are not events
			if ev.Pressed {
				s.eng.Toggle()
			}

		case <-statsC:
			s.conn.Publish(s.conn.NewMessage(TopicStats, s.eng.Stats(), true))
		}
	}
}
