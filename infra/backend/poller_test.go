package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	coremetrics "github.com/smartcharge/chargest/core/metrics"
	"github.com/smartcharge/chargest/core/snapshot"
	"github.com/smartcharge/chargest/internal/eventbus"
)

type recordingSink struct {
	coremetrics.NopSink
	snapshots []coremetrics.SnapshotEvent
}

func (s *recordingSink) RecordSnapshot(ev coremetrics.SnapshotEvent) error {
	s.snapshots = append(s.snapshots, ev)
	return nil
}

func TestPollerRefreshEnhanced(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/charging/queue/enhanced/":    `{"fast": {"piles": [{"pile_id": "FAST-01"}], "external_waiting": {"count": 0}}}`,
		"/charging/system_parameters/": `{"pricing": {"peak_rate": 1.2}}`,
	})
	store := snapshot.NewMemoryStore()
	sink := &recordingSink{}
	p := NewPoller(Config{BaseURL: srv.URL, QueuePollSeconds: 15, ParamsPollSeconds: 300, TimeoutSeconds: 5}, store, nil, sink)

	ctx := context.Background()
	p.refreshParams(ctx)
	p.refreshQueue(ctx)

	if params, _ := store.SystemParameters(); params == nil || params.Pricing == nil {
		t.Fatalf("parameters not stored: %+v", params)
	}
	qs, at := store.QueueStatus()
	if qs == nil || qs.Fast == nil || len(qs.Fast.Piles) != 1 {
		t.Fatalf("queue not stored: %+v", qs)
	}
	if at.IsZero() {
		t.Fatal("queue timestamp not set")
	}
	if len(sink.snapshots) != 2 {
		t.Fatalf("expected 2 snapshot events, got %d", len(sink.snapshots))
	}
	for _, ev := range sink.snapshots {
		if !ev.Success || ev.Source != "rest" {
			t.Fatalf("snapshot event: %+v", ev)
		}
	}
}

func TestPollerFallsBackToLegacy(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		// No enhanced endpoint: only the legacy aggregate.
		"/charging/queue/status/": `{"fast_charging": {"waiting_count": 2}}`,
	})
	store := snapshot.NewMemoryStore()
	p := NewPoller(Config{BaseURL: srv.URL, QueuePollSeconds: 15, ParamsPollSeconds: 300, TimeoutSeconds: 5}, store, nil, nil)

	p.refreshQueue(context.Background())

	qs, _ := store.QueueStatus()
	if qs == nil || qs.FastCharging == nil || qs.FastCharging.WaitingCount != 2 {
		t.Fatalf("legacy snapshot not stored: %+v", qs)
	}
}

func TestPollerKeepsLastGoodSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	store := snapshot.NewMemoryStore()
	sink := &recordingSink{}
	p := NewPoller(Config{BaseURL: srv.URL, QueuePollSeconds: 15, ParamsPollSeconds: 300, TimeoutSeconds: 5}, store, nil, sink)

	store.SetQueueStatus(nil) // simulate nothing fetched yet
	p.refreshQueue(context.Background())

	if len(sink.snapshots) != 1 || sink.snapshots[0].Success {
		t.Fatalf("expected one failed snapshot event, got %+v", sink.snapshots)
	}
}

func TestPollerPublishesEvents(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/charging/queue/enhanced/": `{"fast": {"piles": [], "external_waiting": {"count": 0}}}`,
	})
	store := snapshot.NewMemoryStore()
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe()
	p := NewPoller(Config{BaseURL: srv.URL, QueuePollSeconds: 15, ParamsPollSeconds: 300, TimeoutSeconds: 5}, store, bus, nil)

	p.refreshQueue(context.Background())

	select {
	case e := <-sub:
		ev, ok := e.(snapshot.QueueUpdated)
		if !ok {
			t.Fatalf("unexpected event type %T", e)
		}
		if ev.Source != "rest" {
			t.Fatalf("event source: %s", ev.Source)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for queue update event")
	}
}

func TestPollerStartStopsOnCancel(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/charging/queue/enhanced/":    `{}`,
		"/charging/system_parameters/": `{}`,
	})
	store := snapshot.NewMemoryStore()
	p := NewPoller(Config{BaseURL: srv.URL, QueuePollSeconds: 1, ParamsPollSeconds: 1, TimeoutSeconds: 5}, store, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("start returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop on cancel")
	}
}
