package metrics

import (
	"time"

	"github.com/smartcharge/chargest/core/model"
)

// EstimateEvent captures one computed estimate for observability.
type EstimateEvent struct {
	ID              string
	Mode            model.Mode
	RequestedKWh    float64
	WaitMinutes     int
	DurationMinutes int
	TotalCost       float64
	// Source is the snapshot quality backing the estimate: enhanced,
	// legacy or none.
	Source  string
	Latency time.Duration
	Time    time.Time
}

// SnapshotEvent records a refresh of backend state.
type SnapshotEvent struct {
	Kind    string // "queue_status" or "system_parameters"
	Source  string // "rest" or "mqtt"
	Success bool
	Time    time.Time
}

// Sink records estimator events for observability purposes.
type Sink interface {
	RecordEstimate(ev EstimateEvent) error
	RecordSnapshot(ev SnapshotEvent) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordEstimate(EstimateEvent) error { return nil }
func (NopSink) RecordSnapshot(SnapshotEvent) error { return nil }
