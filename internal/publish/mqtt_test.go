package publish

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/prayerboard/internal/core"
	"github.com/JonMunkholm/prayerboard/internal/schedule"
)

// fakeToken completes immediately unless hold is set.
type fakeToken struct {
	done chan struct{}
	err  error
}

func newToken(err error, hold bool) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	if !hold {
		close(t.done)
	}
	return t
}

func (t *fakeToken) Wait() bool { <-t.done; return true }
func (t *fakeToken) WaitTimeout(d time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(d):
		return false
	}
}
func (t *fakeToken) Done() <-chan struct{} { return t.done }
func (t *fakeToken) Error() error          { return t.err }

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  interface{}
}

type fakeClient struct {
	mu           sync.Mutex
	connected    bool
	err          error
	hold         bool
	sent         []message
	disconnected bool
}

func (c *fakeClient) IsConnected() bool { return c.connected }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, message{topic, qos, retained, payload})
	return newToken(c.err, c.hold)
}

func (c *fakeClient) Disconnect(quiesce uint) { c.disconnected = true }

func snapshot() *core.Snapshot {
	updated := "Last updated: 1 Jan"
	return &core.Snapshot{
		ID:        "3f1c",
		FetchedAt: time.Date(2026, 1, 1, 5, 0, 0, 0, time.UTC),
		Source:    "primary",
		Result: &schedule.ParseResult{
			LastUpdated:   &updated,
			PrayerContext: schedule.PrayerContext{schedule.Fajr: "فجر"},
			Mosques: []schedule.Mosque{{
				Area:   "North",
				NameEn: "Al-Noor",
				Times:  map[schedule.PrayerKey]schedule.PrayerSlot{schedule.Fajr: {Time: "5:00", Label: "فجر"}},
			}},
			FooterNotes: []string{},
		},
	}
}

func TestPayload(t *testing.T) {
	data, err := Payload(snapshot())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "3f1c", decoded["id"])
	assert.Equal(t, "primary", decoded["source"])

	result := decoded["result"].(map[string]any)
	assert.Equal(t, "Last updated: 1 Jan", result["last_updated"])
	mosques := result["mosques"].([]any)
	require.Len(t, mosques, 1)
	assert.Equal(t, "Al-Noor", mosques[0].(map[string]any)["name_en"])
}

func TestPayload_Empty(t *testing.T) {
	_, err := Payload(nil)
	assert.ErrorIs(t, err, ErrPublishFailed)

	_, err = Payload(&core.Snapshot{ID: "x"})
	assert.ErrorIs(t, err, ErrPublishFailed)
}

func TestPayload_TooLarge(t *testing.T) {
	snap := snapshot()
	snap.Result.FooterNotes = []string{strings.Repeat("x", maxPayloadSize)}
	_, err := Payload(snap)
	assert.ErrorIs(t, err, ErrPublishFailed)
}

func TestPublish_Retained(t *testing.T) {
	client := &fakeClient{connected: true}
	p := newPublisher(client, "prayerboard/schedule", 1)

	require.NoError(t, p.Publish(context.Background(), snapshot()))
	require.Len(t, client.sent, 1)

	msg := client.sent[0]
	assert.Equal(t, "prayerboard/schedule", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained)
	assert.Contains(t, string(msg.payload.([]byte)), `"name_en":"Al-Noor"`)
}

func TestPublish_Errors(t *testing.T) {
	t.Run("not connected", func(t *testing.T) {
		p := newPublisher(&fakeClient{}, "t", 0)
		assert.ErrorIs(t, p.Publish(context.Background(), snapshot()), ErrNotConnected)
	})

	t.Run("broker error", func(t *testing.T) {
		p := newPublisher(&fakeClient{connected: true, err: errors.New("not authorized")}, "t", 1)
		err := p.Publish(context.Background(), snapshot())
		assert.ErrorIs(t, err, ErrPublishFailed)
		assert.ErrorContains(t, err, "not authorized")
	})

	t.Run("timeout", func(t *testing.T) {
		p := newPublisher(&fakeClient{connected: true, hold: true}, "t", 1)
		p.timeout = 10 * time.Millisecond
		assert.ErrorIs(t, p.Publish(context.Background(), snapshot()), ErrPublishFailed)
	})

	t.Run("context cancelled", func(t *testing.T) {
		p := newPublisher(&fakeClient{connected: true, hold: true}, "t", 1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := p.Publish(ctx, snapshot())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClose(t *testing.T) {
	client := &fakeClient{connected: true}
	p := newPublisher(client, "prayerboard/schedule", 1)
	p.Close()

	require.Len(t, client.sent, 1)
	assert.Equal(t, "prayerboard/schedule/status", client.sent[0].topic)
	assert.Equal(t, statusOffline, client.sent[0].payload)
	assert.True(t, client.sent[0].retained)
	assert.True(t, client.disconnected)
}

func TestPublisherSatisfiesCore(t *testing.T) {
	var _ core.Publisher = (*MQTTPublisher)(nil)
}
