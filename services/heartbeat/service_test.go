package heartbeat

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wristmon-go/bus"
	"wristmon-go/errcode"
	"wristmon-go/services/motion"
	"wristmon-go/types"
)

type syncBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuf) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuf) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestHeartbeatReportsRetainedState(t *testing.T) {
	b := bus.NewBus(4)
	pub := b.NewConnection("motion")
	pub.Publish(pub.NewMessage(motion.TopicMode, types.ModeValue{State: types.SMMode}, true))
	pub.Publish(pub.NewMessage(motion.TopicStats, motion.Stats{Ticks: 42, Sent: 40}, true))

	out := &syncBuf{}
	s := &Service{
		Interval: 10 * time.Millisecond,
		Log:      slog.New(slog.NewTextHandler(out, nil)),
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx, b.NewConnection("heartbeat")))

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("mode=sm ticks=42 sent=40"))
	}, time.Second, 5*time.Millisecond)
	assert.Contains(t, out.String(), "msg=heartbeat")
}

func TestStartRejectsNilConnection(t *testing.T) {
	err := (&Service{}).Start(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, errcode.InvalidParams, errcode.Of(err))
}
