// Package mqtt receives pushed snapshot updates from stations that publish
// queue state over a broker, complementing the REST poller with lower
// refresh latency. Entirely optional: the estimator works from polling
// alone.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/smartcharge/chargest/core/metrics"
	"github.com/smartcharge/chargest/core/model"
	"github.com/smartcharge/chargest/core/snapshot"
	"github.com/smartcharge/chargest/infra/logger"
	"github.com/smartcharge/chargest/internal/eventbus"
)

// Config defines the connection parameters for the snapshot subscriber.
type Config struct {
	Enabled     bool   `json:"enabled"`
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	QueueTopic  string `json:"queue_topic"`
	ParamsTopic string `json:"params_topic"`
	QoS         byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "chargest"
	}
	if c.QueueTopic == "" {
		c.QueueTopic = "station/queue/status"
	}
	if c.ParamsTopic == "" {
		c.ParamsTopic = "station/system/parameters"
	}
}

// Validate checks mandatory fields when the subscriber is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required when enabled")
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Subscriber feeds pushed snapshots into the store.
type Subscriber struct {
	cli  pahoClient
	cfg  Config
	stor snapshot.Store
	bus  eventbus.EventBus
	sink coremetrics.Sink
	log  logger.Logger
}

// NewSubscriber connects to the broker and subscribes to the snapshot
// topics. bus and sink may be nil.
func NewSubscriber(cfg Config, store snapshot.Store, bus eventbus.EventBus, sink coremetrics.Sink) (*Subscriber, error) {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	log := logger.New("mqtt-subscriber")
	s := &Subscriber{cfg: cfg, stor: store, bus: bus, sink: sink, log: log}

	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Subscribe(cfg.QueueTopic, cfg.QoS, s.onQueueStatus); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe %s: %v", cfg.QueueTopic, token.Error())
		}
		if token := c.Subscribe(cfg.ParamsTopic, cfg.QoS, s.onParameters); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe %s: %v", cfg.ParamsTopic, token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	s.cli = cli
	return s, nil
}

func (s *Subscriber) onQueueStatus(_ paho.Client, msg paho.Message) {
	var qs model.QueueSnapshot
	if err := json.Unmarshal(msg.Payload(), &qs); err != nil {
		s.log.Warnf("bad queue status payload on %s: %v", msg.Topic(), err)
		s.record("queue_status", false)
		return
	}
	s.stor.SetQueueStatus(&qs)
	s.record("queue_status", true)
	s.publish(snapshot.QueueUpdated{Source: "mqtt", At: time.Now()})
}

func (s *Subscriber) onParameters(_ paho.Client, msg paho.Message) {
	var p model.SystemParameters
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		s.log.Warnf("bad parameters payload on %s: %v", msg.Topic(), err)
		s.record("system_parameters", false)
		return
	}
	s.stor.SetSystemParameters(&p)
	s.record("system_parameters", true)
	s.publish(snapshot.ParametersUpdated{Source: "mqtt", At: time.Now()})
}

func (s *Subscriber) record(kind string, ok bool) {
	if err := s.sink.RecordSnapshot(coremetrics.SnapshotEvent{
		Kind: kind, Source: "mqtt", Success: ok, Time: time.Now(),
	}); err != nil {
		s.log.Warnf("record snapshot metric: %v", err)
	}
}

func (s *Subscriber) publish(ev eventbus.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

// Close disconnects from the broker.
func (s *Subscriber) Close() {
	if s.cli != nil && s.cli.IsConnected() {
		s.cli.Disconnect(250)
	}
}
