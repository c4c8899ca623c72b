package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/smartcharge/chargest/core/metrics"
)

// PromSink records estimator events in Prometheus metrics.
type PromSink struct {
	estimates   *prometheus.CounterVec
	wait        *prometheus.HistogramVec
	latency     prometheus.Histogram
	snapshots   *prometheus.CounterVec
	lastRefresh *prometheus.GaugeVec
}

// NewPromSink registers estimator metrics on the default Prometheus
// registerer. The metrics server is started separately on cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	estimates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estimate_requests_total",
		Help: "Total number of estimates computed",
	}, []string{"mode", "data_source"})
	wait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "estimate_wait_minutes",
		Help:    "Projected wait time per estimate",
		Buckets: []float64{5, 10, 15, 30, 60, 120, 240},
	}, []string{"mode"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "estimate_compute_seconds",
		Help:    "Time spent computing one estimate",
		Buckets: prometheus.DefBuckets,
	})
	snapshots := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_refreshes_total",
		Help: "Snapshot refreshes by kind, source and outcome",
	}, []string{"kind", "source", "success"})
	lastRefresh := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "snapshot_last_refresh_timestamp_seconds",
		Help: "Unix time of the last successful snapshot refresh",
	}, []string{"kind", "source"})

	if err := reg.Register(estimates); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			estimates = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(wait); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			wait = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(snapshots); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			snapshots = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(lastRefresh); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			lastRefresh = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{estimates: estimates, wait: wait, latency: latency, snapshots: snapshots, lastRefresh: lastRefresh}, nil
}

// RecordEstimate increments the counters for one computed estimate.
func (s *PromSink) RecordEstimate(ev coremetrics.EstimateEvent) error {
	s.estimates.WithLabelValues(string(ev.Mode), ev.Source).Inc()
	s.wait.WithLabelValues(string(ev.Mode)).Observe(float64(ev.WaitMinutes))
	s.latency.Observe(ev.Latency.Seconds())
	return nil
}

// RecordSnapshot counts one snapshot refresh.
func (s *PromSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	success := "false"
	if ev.Success {
		success = "true"
	}
	s.snapshots.WithLabelValues(ev.Kind, ev.Source, success).Inc()
	if ev.Success {
		s.lastRefresh.WithLabelValues(ev.Kind, ev.Source).Set(float64(ev.Time.Unix()))
	}
	return nil
}
