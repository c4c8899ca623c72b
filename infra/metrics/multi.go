package metrics

import (
	"errors"

	coremetrics "github.com/smartcharge/chargest/core/metrics"
)

// MultiSink fans events out to several sinks, collecting all errors.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink from the given sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordEstimate(ev coremetrics.EstimateEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordEstimate(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordSnapshot(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
