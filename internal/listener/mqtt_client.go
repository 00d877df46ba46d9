package listener

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/oshokin/catpoint/internal/config"
	"github.com/oshokin/catpoint/internal/logger"
)

// clientIDPrefix starts every broker client id.
const clientIDPrefix = "catpoint_"

var (
	errConnectTimeout = errors.New("mqtt connect timed out")
	errClientNotSet   = errors.New("mqtt client is not set")
)

// ClientOptions builds broker options from configuration, with a retained
// PayloadOffline will on the bridge state topic.
func ClientOptions(cfg *config.MQTTConfig) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port))
	opts.SetClientID(clientIDPrefix + uuid.NewString())
	opts.SetAutoReconnect(true)

	if cfg.Username != "" && cfg.Password != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetWill(bridgeStateTopic(cfg.BaseTopic), PayloadOffline, 0, true)

	return opts
}

// Connect opens a broker connection and announces the bridge as online
// every time the connection is (re)established.
//
//nolint:ireturn // mqtt.Client is the library's own abstraction.
func Connect(ctx context.Context, cfg *config.MQTTConfig, timeout time.Duration) (mqtt.Client, error) {
	opts := ClientOptions(cfg)
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		logger.InfoKV(ctx, "MQTT connected", "host", cfg.Host, "port", cfg.Port)

		token := client.Publish(bridgeStateTopic(cfg.BaseTopic), publishQoS, true, PayloadOnline)
		go func() {
			if err := waitToken(token, timeout, errPublishTimeout); err != nil {
				logger.ErrorKV(ctx, "MQTT bridge state publish failed", "error", err)
			}
		}()
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.WarnKV(ctx, "MQTT connection lost", "error", err)
	})

	client := mqtt.NewClient(opts)
	if err := waitToken(client.Connect(), timeout, errConnectTimeout); err != nil {
		return nil, fmt.Errorf("connect to mqtt broker: %w", err)
	}

	return client, nil
}

// Disconnect marks the bridge offline and closes the connection.
func Disconnect(ctx context.Context, client mqtt.Client, baseTopic string, timeout time.Duration) error {
	if client == nil {
		return errClientNotSet
	}

	token := client.Publish(bridgeStateTopic(baseTopic), publishQoS, true, PayloadOffline)
	err := waitToken(token, timeout, errPublishTimeout)

	client.Disconnect(uint(timeout.Milliseconds()))
	logger.Info(ctx, "MQTT disconnected")

	return err
}
