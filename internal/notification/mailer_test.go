package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"securevet.io/securevet/internal/pkg/logger"
	"securevet.io/securevet/internal/pkg/worker"
)

func init() {
	_ = logger.Init("error", "json")
}

type captureMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
	done chan struct{}
}

func (c *captureMailer) Send(_ context.Context, msg Message) error {
	c.mu.Lock()
	c.sent = append(c.sent, msg)
	c.mu.Unlock()
	if c.done != nil {
		close(c.done)
	}
	return c.err
}

func TestDispatcher_DeliversInBackground(t *testing.T) {
	pools, err := worker.NewPools(context.Background(), worker.DefaultPoolConfig())
	require.NoError(t, err)
	defer pools.Shutdown()

	m := &captureMailer{done: make(chan struct{})}
	d := NewDispatcher(m, pools)

	d.Dispatch(Message{To: "carla@vet.example", Subject: "Password request received", Body: "An admin will contact you."})

	<-m.done
	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.sent, 1)
	assert.Equal(t, "carla@vet.example", m.sent[0].To)
}

func TestDispatcher_FailureDoesNotPanic(t *testing.T) {
	pools, err := worker.NewPools(context.Background(), worker.DefaultPoolConfig())
	require.NoError(t, err)
	defer pools.Shutdown()

	m := &captureMailer{err: errors.New("smtp down"), done: make(chan struct{})}
	d := NewDispatcher(m, pools)

	d.Dispatch(Message{To: "carla@vet.example", Subject: "x", Body: "y"})
	<-m.done
}

func TestNoopMailer(t *testing.T) {
	assert.NoError(t, NoopMailer{}.Send(context.Background(), Message{To: "x@y.example"}))
}

func TestBuildMessage_RejectsBadAddress(t *testing.T) {
	_, err := buildMessage("noreply@securevet.example", Message{To: "not-an-address"})
	assert.Error(t, err)
}
