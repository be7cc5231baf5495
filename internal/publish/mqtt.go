// Package publish pushes schedule snapshots to an MQTT broker so signage
// screens can subscribe instead of polling the web server.
//
// Each successful refresh is published as retained JSON on the configured
// topic, so a screen that connects later immediately receives the current
// schedule. Availability is announced on <topic>/status: "online" after
// connecting, "offline" on a clean Close, and the same "offline" as the
// broker-side last will when the connection drops.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/JonMunkholm/prayerboard/internal/config"
	"github.com/JonMunkholm/prayerboard/internal/core"
)

// Errors returned by the publisher.
var (
	ErrConnectionFailed = errors.New("mqtt connection failed")
	ErrNotConnected     = errors.New("mqtt not connected")
	ErrPublishFailed    = errors.New("mqtt publish failed")
)

const (
	// maxPayloadSize bounds one snapshot message (1MB), a common broker limit.
	maxPayloadSize = 1 << 20

	defaultPublishTimeout = 5 * time.Second
	disconnectQuiesceMs   = 250
	keepAlive             = 60 * time.Second

	statusOnline  = "online"
	statusOffline = "offline"
)

// brokerClient is the part of the paho client the publisher uses.
type brokerClient interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

// MQTTPublisher implements core.Publisher.
type MQTTPublisher struct {
	client  brokerClient
	topic   string
	qos     byte
	timeout time.Duration
}

// Connect dials the broker described by cfg and returns a ready publisher.
func Connect(cfg config.PublishConfig) (*MQTTPublisher, error) {
	statusTopic := StatusTopic(cfg.Topic)

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetKeepAlive(keepAlive)
	opts.SetWill(statusTopic, statusOffline, byte(cfg.QoS), true)

	opts.SetOnConnectHandler(func(c pahomqtt.Client) {
		slog.Info("mqtt connected", "broker", cfg.BrokerURL, "topic", cfg.Topic)
		c.Publish(statusTopic, byte(cfg.QoS), true, statusOnline)
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		slog.Warn("mqtt connection lost", "error", err)
	})

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return newPublisher(client, cfg.Topic, byte(cfg.QoS)), nil
}

func newPublisher(client brokerClient, topic string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{
		client:  client,
		topic:   topic,
		qos:     qos,
		timeout: defaultPublishTimeout,
	}
}

// StatusTopic is where availability is announced for topic.
func StatusTopic(topic string) string {
	return topic + "/status"
}

// Publish sends snap as a retained message. It returns when the broker has
// acknowledged it (for QoS > 0), the timeout passes or ctx is done.
func (p *MQTTPublisher) Publish(ctx context.Context, snap *core.Snapshot) error {
	payload, err := Payload(snap)
	if err != nil {
		return err
	}
	if !p.client.IsConnected() {
		return ErrNotConnected
	}

	token := p.client.Publish(p.topic, p.qos, true, payload)

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
	case <-timer.C:
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, p.timeout)
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrPublishFailed, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	slog.Debug("snapshot published", "topic", p.topic, "snapshot_id", snap.ID, "bytes", len(payload))
	return nil
}

// Payload encodes snap as published on the topic.
func Payload(snap *core.Snapshot) ([]byte, error) {
	if snap == nil || snap.Result == nil {
		return nil, fmt.Errorf("%w: empty snapshot", ErrPublishFailed)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: encode snapshot: %w", ErrPublishFailed, err)
	}
	if len(data) > maxPayloadSize {
		return nil, fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(data), maxPayloadSize)
	}
	return data, nil
}

// Close announces the publisher as offline and disconnects.
func (p *MQTTPublisher) Close() {
	if p.client.IsConnected() {
		token := p.client.Publish(StatusTopic(p.topic), p.qos, true, statusOffline)
		token.WaitTimeout(p.timeout)
	}
	p.client.Disconnect(disconnectQuiesceMs)
}
