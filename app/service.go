package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	estimateapi "github.com/smartcharge/chargest/api/estimate"
	"github.com/smartcharge/chargest/config"
	"github.com/smartcharge/chargest/core/estimate"
	coremetrics "github.com/smartcharge/chargest/core/metrics"
	"github.com/smartcharge/chargest/core/snapshot"
	"github.com/smartcharge/chargest/infra/backend"
	"github.com/smartcharge/chargest/infra/logger"
	"github.com/smartcharge/chargest/infra/metrics"
	"github.com/smartcharge/chargest/infra/mqtt"
	"github.com/smartcharge/chargest/internal/eventbus"
)

// Service wires the snapshot sources, the estimation engine and the API.
type Service struct {
	store       *snapshot.MemoryStore
	poller      *backend.Poller
	subscriber  *mqtt.Subscriber
	handler     *estimateapi.Handler
	bus         *eventbus.Bus
	log         logger.Logger
	addr        string
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	store := snapshot.NewMemoryStore()
	bus := eventbus.New()
	poller := backend.NewPoller(cfg.Backend, store, bus, sink)

	var subscriber *mqtt.Subscriber
	if cfg.MQTT.Enabled {
		sub, err := mqtt.NewSubscriber(cfg.MQTT, store, bus, sink)
		if err != nil {
			return nil, fmt.Errorf("mqtt subscriber: %w", err)
		}
		subscriber = sub
	}

	var opts []estimate.Option
	if cfg.Estimator.UseConfiguredPeriods {
		opts = append(opts, estimate.WithConfiguredPeriods())
	}
	engine := estimate.NewEngine(logger.New("engine"), opts...)

	return &Service{
		store:       store,
		poller:      poller,
		subscriber:  subscriber,
		handler:     estimateapi.NewHandler(engine, store, sink),
		bus:         bus,
		log:         logg,
		addr:        cfg.Server.Address,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

// Run starts the snapshot sources and the API server, blocking until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go func() {
		if err := s.poller.Start(ctx); err != nil {
			s.log.Errorf("poller error: %v", err)
		}
	}()
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go s.logSnapshotEvents(ctx)

	mux := http.NewServeMux()
	s.handler.Register(mux)
	srv := &http.Server{Addr: s.addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("server shutdown: %v", err)
		}
	}()
	s.log.Infof("estimator API listening on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// logSnapshotEvents surfaces refresh activity at debug level.
func (s *Service) logSnapshotEvents(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			switch e := ev.(type) {
			case snapshot.QueueUpdated:
				s.log.Debugf("queue status refreshed via %s", e.Source)
			case snapshot.ParametersUpdated:
				s.log.Debugf("system parameters refreshed via %s", e.Source)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.subscriber != nil {
		s.subscriber.Close()
	}
	s.bus.Close()
	return nil
}
