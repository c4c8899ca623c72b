package mqtt

import (
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/smartcharge/chargest/core/metrics"
	"github.com/smartcharge/chargest/core/snapshot"
	"github.com/smartcharge/chargest/internal/eventbus"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type fakeClient struct {
	connected  bool
	connectErr error
	subscribed []string
}

func (c *fakeClient) IsConnected() bool { return c.connected }
func (c *fakeClient) Connect() paho.Token {
	if c.connectErr == nil {
		c.connected = true
	}
	return &fakeToken{err: c.connectErr}
}
func (c *fakeClient) Disconnect(uint) { c.connected = false }
func (c *fakeClient) Subscribe(topic string, _ byte, _ paho.MessageHandler) paho.Token {
	c.subscribed = append(c.subscribed, topic)
	return &fakeToken{}
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func withFakeClient(t *testing.T, cli pahoClient) {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return cli }
	t.Cleanup(func() { newMQTTClient = orig })
}

type countingSink struct {
	coremetrics.NopSink
	snapshots []coremetrics.SnapshotEvent
}

func (s *countingSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	s.snapshots = append(s.snapshots, ev)
	return nil
}

func TestNewSubscriberConnects(t *testing.T) {
	cli := &fakeClient{}
	withFakeClient(t, cli)

	store := snapshot.NewMemoryStore()
	sub, err := NewSubscriber(Config{Enabled: true, Broker: "tcp://broker:1883", ClientID: "chargest"}, store, nil, nil)
	if err != nil {
		t.Fatalf("new subscriber: %v", err)
	}
	if !cli.connected {
		t.Fatal("client not connected")
	}
	sub.Close()
	if cli.connected {
		t.Fatal("client not disconnected on close")
	}
}

func TestNewSubscriberConnectError(t *testing.T) {
	withFakeClient(t, &fakeClient{connectErr: errors.New("broker down")})

	_, err := NewSubscriber(Config{Enabled: true, Broker: "tcp://broker:1883"}, snapshot.NewMemoryStore(), nil, nil)
	if err == nil {
		t.Fatal("expected connect error")
	}
}

func TestOnQueueStatus(t *testing.T) {
	withFakeClient(t, &fakeClient{})
	store := snapshot.NewMemoryStore()
	bus := eventbus.New()
	defer bus.Close()
	events := bus.Subscribe()
	sink := &countingSink{}

	sub, err := NewSubscriber(Config{Enabled: true, Broker: "tcp://broker:1883"}, store, bus, sink)
	if err != nil {
		t.Fatalf("new subscriber: %v", err)
	}

	sub.onQueueStatus(nil, &fakeMessage{
		topic:   "station/queue/status",
		payload: []byte(`{"fast_charging": {"waiting_count": 3}}`),
	})

	qs, _ := store.QueueStatus()
	if qs == nil || qs.FastCharging == nil || qs.FastCharging.WaitingCount != 3 {
		t.Fatalf("snapshot not stored: %+v", qs)
	}
	select {
	case e := <-events:
		ev, ok := e.(snapshot.QueueUpdated)
		if !ok || ev.Source != "mqtt" {
			t.Fatalf("unexpected event %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("no queue update published")
	}
	if len(sink.snapshots) != 1 || !sink.snapshots[0].Success || sink.snapshots[0].Source != "mqtt" {
		t.Fatalf("snapshot events: %+v", sink.snapshots)
	}
}

func TestOnQueueStatusBadPayload(t *testing.T) {
	withFakeClient(t, &fakeClient{})
	store := snapshot.NewMemoryStore()
	sink := &countingSink{}

	sub, err := NewSubscriber(Config{Enabled: true, Broker: "tcp://broker:1883"}, store, nil, sink)
	if err != nil {
		t.Fatalf("new subscriber: %v", err)
	}

	sub.onQueueStatus(nil, &fakeMessage{topic: "station/queue/status", payload: []byte("{broken")})

	if qs, _ := store.QueueStatus(); qs != nil {
		t.Fatalf("bad payload must not touch the store: %+v", qs)
	}
	if len(sink.snapshots) != 1 || sink.snapshots[0].Success {
		t.Fatalf("expected one failed event: %+v", sink.snapshots)
	}
}

func TestOnParameters(t *testing.T) {
	withFakeClient(t, &fakeClient{})
	store := snapshot.NewMemoryStore()

	sub, err := NewSubscriber(Config{Enabled: true, Broker: "tcp://broker:1883"}, store, nil, nil)
	if err != nil {
		t.Fatalf("new subscriber: %v", err)
	}

	sub.onParameters(nil, &fakeMessage{
		topic:   "station/system/parameters",
		payload: []byte(`{"pricing": {"peak_rate": 1.2, "service_rate": 0.3}}`),
	})

	p, _ := store.SystemParameters()
	if p == nil || p.Pricing == nil || p.Pricing.PeakRate != 1.2 {
		t.Fatalf("parameters not stored: %+v", p)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{Enabled: false}).Validate(); err != nil {
		t.Fatalf("disabled config should validate: %v", err)
	}
	if err := (Config{Enabled: true}).Validate(); err == nil {
		t.Fatal("enabled config without broker should fail")
	}
	if err := (Config{Enabled: true, Broker: "tcp://broker:1883"}).Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
