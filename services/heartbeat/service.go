package heartbeat

import (
	"context"
	"log/slog"
	"time"

	"wristmon-go/bus"
	"wristmon-go/errcode"
	"wristmon-go/services/motion"
	"wristmon-go/types"
)

// Service logs a liveness line carrying the latest mode and engine counters.
type Service struct {
	Interval time.Duration
	Log      *slog.Logger

	beats uint64
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	modeSub := conn.Subscribe(motion.TopicMode)
	defer conn.Unsubscribe(modeSub)
	statsSub := conn.Subscribe(motion.TopicStats)
	defer conn.Unsubscribe(statsSub)

	iv := s.Interval
	if iv <= 0 {
		iv = 10 * time.Second
	}
	tick := time.NewTicker(iv)
	defer tick.Stop()

	var (
		mode  types.ProgramState
		stats motion.Stats
	)
	// loop until context is cancelled, respond to tick and state changes
	for {
		select {
		case <-ctx.Done():
			s.Log.Debug("heartbeat service stopping")
			return
		case <-tick.C:
			s.beats++
			s.Log.Info("heartbeat",
				"beat", s.beats,
				"mode", mode.String(),
				"ticks", stats.Ticks,
				"sent", stats.Sent,
				"dropped", stats.Dropped,
				"overruns", stats.Overruns)
		case msg := <-modeSub.Channel():
			if v, ok := msg.Payload.(types.ModeValue); ok {
				mode = v.State
			}
		case msg := <-statsSub.Channel():
			if v, ok := msg.Payload.(motion.Stats); ok {
				stats = v
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	if conn == nil {
		return &errcode.E{C: errcode.InvalidParams, Op: "heartbeat.Start", Msg: "nil connection"}
	}
	if s.Log == nil {
		s.Log = slog.Default()
	}
	go s.serviceLoop(ctx, conn)
	return nil
}
