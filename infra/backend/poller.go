package backend

import (
	"context"
	"time"

	coremetrics "github.com/smartcharge/chargest/core/metrics"
	"github.com/smartcharge/chargest/core/snapshot"
	"github.com/smartcharge/chargest/infra/logger"
	"github.com/smartcharge/chargest/internal/eventbus"
)

// Poller periodically refreshes the snapshot store from the backend.
// Queue status and system parameters refresh on independent cadences since
// parameters change rarely.
type Poller struct {
	client         *Client
	store          snapshot.Store
	bus            eventbus.EventBus
	sink           coremetrics.Sink
	log            logger.Logger
	queueInterval  time.Duration
	paramsInterval time.Duration
}

// NewPoller creates a Poller. bus and sink may be nil.
func NewPoller(cfg Config, store snapshot.Store, bus eventbus.EventBus, sink coremetrics.Sink) *Poller {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Poller{
		client:         NewClient(cfg),
		store:          store,
		bus:            bus,
		sink:           sink,
		log:            logger.New("backend-poller"),
		queueInterval:  time.Duration(cfg.QueuePollSeconds) * time.Second,
		paramsInterval: time.Duration(cfg.ParamsPollSeconds) * time.Second,
	}
}

// Start fetches both snapshots once, then polls until the context is
// cancelled. Fetch failures are logged and retried on the next tick; the
// store keeps serving the last good snapshot meanwhile.
func (p *Poller) Start(ctx context.Context) error {
	p.refreshParams(ctx)
	p.refreshQueue(ctx)

	queueTicker := time.NewTicker(p.queueInterval)
	defer queueTicker.Stop()
	paramsTicker := time.NewTicker(p.paramsInterval)
	defer paramsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-queueTicker.C:
			p.refreshQueue(ctx)
		case <-paramsTicker.C:
			p.refreshParams(ctx)
		}
	}
}

func (p *Poller) refreshQueue(ctx context.Context) {
	qs, err := p.client.EnhancedQueueStatus(ctx)
	if err != nil {
		p.log.Warnf("enhanced queue status failed, trying legacy: %v", err)
		qs, err = p.client.QueueStatus(ctx)
	}
	if err != nil {
		p.log.Errorf("queue status refresh failed: %v", err)
		p.record("queue_status", false)
		return
	}
	p.store.SetQueueStatus(qs)
	p.record("queue_status", true)
	p.publish(snapshot.QueueUpdated{Source: "rest", At: time.Now()})
}

func (p *Poller) refreshParams(ctx context.Context) {
	params, err := p.client.SystemParameters(ctx)
	if err != nil {
		p.log.Errorf("system parameters refresh failed: %v", err)
		p.record("system_parameters", false)
		return
	}
	p.store.SetSystemParameters(params)
	p.record("system_parameters", true)
	p.publish(snapshot.ParametersUpdated{Source: "rest", At: time.Now()})
}

func (p *Poller) record(kind string, ok bool) {
	if err := p.sink.RecordSnapshot(coremetrics.SnapshotEvent{
		Kind: kind, Source: "rest", Success: ok, Time: time.Now(),
	}); err != nil {
		p.log.Warnf("record snapshot metric: %v", err)
	}
}

func (p *Poller) publish(ev eventbus.Event) {
	if p.bus != nil {
		p.bus.Publish(ev)
	}
}
