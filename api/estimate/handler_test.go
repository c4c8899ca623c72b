package estimate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	coreestimate "github.com/smartcharge/chargest/core/estimate"
	coremetrics "github.com/smartcharge/chargest/core/metrics"
	"github.com/smartcharge/chargest/core/model"
	"github.com/smartcharge/chargest/core/snapshot"
)

type captureSink struct {
	coremetrics.NopSink
	estimates []coremetrics.EstimateEvent
}

func (s *captureSink) RecordEstimate(ev coremetrics.EstimateEvent) error {
	s.estimates = append(s.estimates, ev)
	return nil
}

func newTestHandler(t *testing.T, params *model.SystemParameters, queue *model.QueueSnapshot) (*http.ServeMux, *captureSink) {
	t.Helper()
	store := snapshot.NewMemoryStore()
	if params != nil {
		store.SetSystemParameters(params)
	}
	if queue != nil {
		store.SetQueueStatus(queue)
	}
	sink := &captureSink{}
	h := NewHandler(coreestimate.NewEngine(nil), store, sink)
	mux := http.NewServeMux()
	h.Register(mux)
	return mux, sink
}

func apiParams() *model.SystemParameters {
	return &model.SystemParameters{
		Pricing:       &model.Pricing{PeakRate: 1.2, NormalRate: 0.8, ValleyRate: 0.4, ServiceRate: 0.3},
		ChargingPower: &model.ChargingPower{FastKW: 120, SlowKW: 7},
	}
}

func TestHandleEstimate(t *testing.T) {
	mux, sink := newTestHandler(t, apiParams(), &model.QueueSnapshot{
		FastCharging: &model.LegacyModeStatus{WaitingCount: 2},
	})

	body := `{"charging_mode":"fast","requested_amount":50,"start_time":"2025-06-15T12:00:00+08:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/estimate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var est coreestimate.Estimate
	if err := json.Unmarshal(rec.Body.Bytes(), &est); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if est.ChargingDurationMinutes != 25 {
		t.Fatalf("duration: expected 25 got %d", est.ChargingDurationMinutes)
	}
	if est.Mode != model.ModeFast {
		t.Fatalf("mode: %s", est.Mode)
	}
	if len(sink.estimates) != 1 {
		t.Fatalf("expected 1 recorded estimate, got %d", len(sink.estimates))
	}
	if sink.estimates[0].ID == "" || sink.estimates[0].DurationMinutes != 25 {
		t.Fatalf("recorded event: %+v", sink.estimates[0])
	}
}

func TestHandleEstimateDefaultsAmount(t *testing.T) {
	mux, _ := newTestHandler(t, apiParams(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/estimate", strings.NewReader(`{"charging_mode":"fast"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var est coreestimate.Estimate
	if err := json.Unmarshal(rec.Body.Bytes(), &est); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if est.RequestedKWh != 50 {
		t.Fatalf("expected default 50 kWh, got %v", est.RequestedKWh)
	}
}

func TestHandleEstimateNoParameters(t *testing.T) {
	mux, _ := newTestHandler(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/estimate", strings.NewReader(`{"charging_mode":"fast"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "system parameters unavailable" {
		t.Fatalf("error message: %q", resp.Error)
	}
}

func TestHandleEstimateMalformedBody(t *testing.T) {
	mux, _ := newTestHandler(t, apiParams(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/estimate", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestHandleEstimateMethodNotAllowed(t *testing.T) {
	mux, _ := newTestHandler(t, apiParams(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/estimate", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestHandleAdvice(t *testing.T) {
	mux, _ := newTestHandler(t, apiParams(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/estimate/advice?amount=30", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp adviceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Suggestions) != 2 {
		t.Fatalf("suggestions: %+v", resp.Suggestions)
	}
	if resp.Comparison == nil || resp.Comparison.Cheapest != "valley charging" {
		t.Fatalf("comparison: %+v", resp.Comparison)
	}
	if resp.Comparison.MaxSavings != 24.00 {
		t.Fatalf("max savings: %v", resp.Comparison.MaxSavings)
	}
}

func TestHandleAdviceBadAmount(t *testing.T) {
	mux, _ := newTestHandler(t, apiParams(), nil)

	for _, raw := range []string{"abc", "-5", "0"} {
		req := httptest.NewRequest(http.MethodGet, "/api/estimate/advice?amount="+raw, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("amount=%s: status %d", raw, rec.Code)
		}
	}
}

func TestHandleAdviceNoParameters(t *testing.T) {
	mux, _ := newTestHandler(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/estimate/advice", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestHandleQueueStatusLegacy(t *testing.T) {
	mux, _ := newTestHandler(t, apiParams(), &model.QueueSnapshot{
		FastCharging: &model.LegacyModeStatus{WaitingCount: 3},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/queue/status?mode=fast", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp queueStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.DataSource != "legacy" {
		t.Fatalf("data source: %s", resp.DataSource)
	}
	if len(resp.Piles) != 4 {
		t.Fatalf("expected 4 synthetic piles, got %d", len(resp.Piles))
	}
	if resp.ExternalWaiting != 3 {
		t.Fatalf("external waiting: %d", resp.ExternalWaiting)
	}
	if resp.Piles[0].RemainingMinutes <= 0 {
		t.Fatalf("busy pile should report remaining time: %+v", resp.Piles[0])
	}
}

func TestHandleQueueStatusDefaultsMode(t *testing.T) {
	mux, _ := newTestHandler(t, apiParams(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/queue/status", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var resp queueStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Mode != model.ModeFast {
		t.Fatalf("mode: %s", resp.Mode)
	}
	if resp.DataSource != "none" || len(resp.Piles) != 0 {
		t.Fatalf("expected empty view: %+v", resp)
	}
}
