package listener

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	domain "github.com/oshokin/catpoint/internal/domain/security"
	"github.com/oshokin/catpoint/internal/logger"
)

const (
	// PayloadOnline marks the bridge as available.
	PayloadOnline = "online"
	// PayloadOffline marks the bridge as gone, also used as the will message.
	PayloadOffline = "offline"
	// PayloadOn is published when the camera sees a cat.
	PayloadOn = "on"
	// PayloadOff is published when the camera sees no cat.
	PayloadOff = "off"

	// publishQoS delivers every status at least once.
	publishQoS byte = 1
)

// errPublishTimeout is logged when the broker does not acknowledge in time.
var errPublishTimeout = errors.New("mqtt publish timed out")

// Publisher is the part of mqtt.Client the listener needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload any) mqtt.Token
}

// MQTT publishes engine events below a base topic.
//
// Publishing does not wait for the broker: acknowledgements are awaited in
// the background and failures are only logged, so a slow broker cannot stall
// the engine.
type MQTT struct {
	// client delivers messages to the broker.
	client Publisher
	// baseTopic prefixes every topic.
	baseTopic string
	// timeout bounds the wait for a broker acknowledgement.
	timeout time.Duration
	// now returns the timestamp for sensor change events.
	now func() time.Time
}

// NewMQTT creates a listener publishing through client.
func NewMQTT(client Publisher, baseTopic string, timeout time.Duration) *MQTT {
	return &MQTT{
		client:    client,
		baseTopic: baseTopic,
		timeout:   timeout,
		now:       time.Now,
	}
}

// BridgeStateTopic carries PayloadOnline or PayloadOffline.
func (m *MQTT) BridgeStateTopic() string {
	return bridgeStateTopic(m.baseTopic)
}

// AlarmStateTopic carries the alarm status name.
func (m *MQTT) AlarmStateTopic() string {
	return fmt.Sprintf("%s/alarm/state", m.baseTopic)
}

// CatStateTopic carries PayloadOn or PayloadOff.
func (m *MQTT) CatStateTopic() string {
	return fmt.Sprintf("%s/cat/state", m.baseTopic)
}

// SensorsChangedTopic carries the RFC 3339 time of each sensor change.
func (m *MQTT) SensorsChangedTopic() string {
	return fmt.Sprintf("%s/sensors/changed", m.baseTopic)
}

// Notify publishes the alarm status as a retained message.
func (m *MQTT) Notify(ctx context.Context, status domain.AlarmStatus) {
	m.publish(ctx, m.AlarmStateTopic(), true, status.String())
}

// CatDetected publishes the camera verdict as a retained message.
func (m *MQTT) CatDetected(ctx context.Context, detected bool) {
	payload := PayloadOff
	if detected {
		payload = PayloadOn
	}

	m.publish(ctx, m.CatStateTopic(), true, payload)
}

// SensorStatusChanged publishes a non-retained change event.
func (m *MQTT) SensorStatusChanged(ctx context.Context) {
	m.publish(ctx, m.SensorsChangedTopic(), false, m.now().UTC().Format(time.RFC3339))
}

func (m *MQTT) publish(ctx context.Context, topic string, retained bool, payload string) {
	token := m.client.Publish(topic, publishQoS, retained, payload)

	go func() {
		if err := waitToken(token, m.timeout, errPublishTimeout); err != nil {
			logger.ErrorKV(ctx, "MQTT publish failed", "topic", topic, "error", err)
		}
	}()
}

// waitToken waits for token and returns its error, or timeoutErr when it does not complete in time.
func waitToken(token mqtt.Token, timeout time.Duration, timeoutErr error) error {
	if !token.WaitTimeout(timeout) {
		return timeoutErr
	}

	return token.Error()
}

func bridgeStateTopic(baseTopic string) string {
	return fmt.Sprintf("%s/bridge/state", baseTopic)
}
