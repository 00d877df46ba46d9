package listener

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/catpoint/internal/config"
	domain "github.com/oshokin/catpoint/internal/domain/security"
)

var errTestBroker = errors.New("test broker error")

// doneToken is an already completed mqtt.Token.
type doneToken struct {
	err error
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Error() error                   { return t.err }

func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)

	return ch
}

// message is a recorded publish call.
type message struct {
	topic    string
	retained bool
	payload  any
}

// fakePublisher records publish calls.
type fakePublisher struct {
	messages []message
	err      error
	mu       sync.Mutex
}

func (p *fakePublisher) Publish(topic string, _ byte, retained bool, payload any) mqtt.Token {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages = append(p.messages, message{topic: topic, retained: retained, payload: payload})

	return &doneToken{err: p.err}
}

// TestMQTT_Publishes verifies every callback lands on its topic with the expected payload.
func TestMQTT_Publishes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	publisher := new(fakePublisher)
	listener := NewMQTT(publisher, "home", time.Second)
	listener.now = func() time.Time { return time.Date(2026, 10, 14, 8, 30, 0, 0, time.UTC) }

	listener.Notify(ctx, domain.PendingAlarm)
	listener.CatDetected(ctx, true)
	listener.CatDetected(ctx, false)
	listener.SensorStatusChanged(ctx)

	require.Equal(t, []message{
		{topic: "home/alarm/state", retained: true, payload: "PENDING_ALARM"},
		{topic: "home/cat/state", retained: true, payload: PayloadOn},
		{topic: "home/cat/state", retained: true, payload: PayloadOff},
		{topic: "home/sensors/changed", retained: false, payload: "2026-10-14T08:30:00Z"},
	}, publisher.messages)
	require.Equal(t, "home/bridge/state", listener.BridgeStateTopic())
}

// TestMQTT_PublishFailureDoesNotPanic ensures broker errors are only logged.
func TestMQTT_PublishFailureDoesNotPanic(t *testing.T) {
	t.Parallel()

	publisher := &fakePublisher{err: errTestBroker}
	listener := NewMQTT(publisher, "home", time.Second)

	require.NotPanics(t, func() {
		listener.Notify(context.Background(), domain.Alarm)
	})
	require.Len(t, publisher.messages, 1)
}

// TestWaitToken covers completion and error propagation.
func TestWaitToken(t *testing.T) {
	t.Parallel()

	require.NoError(t, waitToken(new(doneToken), time.Second, errPublishTimeout))
	require.ErrorIs(t, waitToken(&doneToken{err: errTestBroker}, time.Second, errPublishTimeout), errTestBroker)
}

// TestClientOptions verifies broker address, credentials and will message.
func TestClientOptions(t *testing.T) {
	t.Parallel()

	opts := ClientOptions(&config.MQTTConfig{
		Host:      "broker.local",
		Port:      1883,
		Username:  "user",
		Password:  "secret",
		BaseTopic: "catpoint",
	})

	require.Len(t, opts.Servers, 1)
	require.Equal(t, "tcp://broker.local:1883", opts.Servers[0].String())
	require.Equal(t, "user", opts.Username)
	require.True(t, opts.WillEnabled)
	require.True(t, opts.WillRetained)
	require.Equal(t, "catpoint/bridge/state", opts.WillTopic)
	require.Equal(t, []byte(PayloadOffline), opts.WillPayload)
}

// TestClientOptions_UniqueClientID ensures two server instances never share a broker client id.
func TestClientOptions_UniqueClientID(t *testing.T) {
	t.Parallel()

	cfg := &config.MQTTConfig{Host: "broker.local", Port: 1883, BaseTopic: "catpoint"}
	seen := make(map[string]struct{})

	for range 100 {
		id := ClientOptions(cfg).ClientID
		require.True(t, strings.HasPrefix(id, clientIDPrefix), id)

		_, err := uuid.Parse(strings.TrimPrefix(id, clientIDPrefix))
		require.NoError(t, err)

		seen[id] = struct{}{}
	}

	require.Len(t, seen, 100)
}

// TestLogging_DoesNotPanic exercises every logging callback.
func TestLogging_DoesNotPanic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	listener := NewLogging(zapcore.DebugLevel)

	require.NotPanics(t, func() {
		listener.Notify(ctx, domain.Alarm)
		listener.Notify(ctx, domain.NoAlarm)
		listener.CatDetected(ctx, true)
		listener.SensorStatusChanged(ctx)
	})
}
