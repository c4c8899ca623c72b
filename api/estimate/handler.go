// Package estimate exposes the estimation engine over HTTP for UI clients.
package estimate

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	coreestimate "github.com/smartcharge/chargest/core/estimate"
	coremetrics "github.com/smartcharge/chargest/core/metrics"
	"github.com/smartcharge/chargest/core/model"
	"github.com/smartcharge/chargest/core/snapshot"
	"github.com/smartcharge/chargest/infra/logger"
)

// defaultAmountKWh is assumed when a request omits the amount, matching
// the station UI's preselected value.
const defaultAmountKWh = 50

// Handler serves estimation requests from the latest snapshots.
type Handler struct {
	engine *coreestimate.Engine
	store  snapshot.Store
	sink   coremetrics.Sink
	log    logger.Logger
}

// NewHandler creates a Handler. sink may be nil.
func NewHandler(engine *coreestimate.Engine, store snapshot.Store, sink coremetrics.Sink) *Handler {
	if sink == nil {
		sink = coremetrics.NopSink{}
	}
	return &Handler{engine: engine, store: store, sink: sink, log: logger.New("api-estimate")}
}

// Register mounts all estimator routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/estimate", h.handleEstimate)
	mux.HandleFunc("/api/estimate/advice", h.handleAdvice)
	mux.HandleFunc("/api/queue/status", h.handleQueueStatus)
}

type estimateRequest struct {
	ChargingMode    model.Mode `json:"charging_mode"`
	RequestedAmount *float64   `json:"requested_amount"`
	StartTime       *time.Time `json:"start_time"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	req := model.Request{Mode: body.ChargingMode, RequestedKWh: defaultAmountKWh}
	if body.RequestedAmount != nil {
		req.RequestedKWh = *body.RequestedAmount
	}
	if body.StartTime != nil {
		req.StartTime = *body.StartTime
	}

	params, _ := h.store.SystemParameters()
	queue, _ := h.store.QueueStatus()

	started := time.Now()
	est, err := h.engine.Estimate(req, params, queue)
	if err != nil {
		if errors.Is(err, coreestimate.ErrSystemParametersUnavailable) {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
		h.log.Errorf("estimate failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "estimate failed"})
		return
	}

	if err := h.sink.RecordEstimate(coremetrics.EstimateEvent{
		ID:              uuid.NewString(),
		Mode:            est.Mode,
		RequestedKWh:    est.RequestedKWh,
		WaitMinutes:     est.Wait.EstimatedWaitMinutes,
		DurationMinutes: est.ChargingDurationMinutes,
		TotalCost:       est.Cost.TotalCost,
		Source:          est.Wait.Source,
		Latency:         time.Since(started),
		Time:            time.Now(),
	}); err != nil {
		h.log.Warnf("record estimate metric: %v", err)
	}

	writeJSON(w, http.StatusOK, est)
}

type adviceResponse struct {
	Suggestions []coreestimate.Suggestion    `json:"suggestions"`
	Comparison  *coreestimate.CostComparison `json:"comparison,omitempty"`
}

func (h *Handler) handleAdvice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	params, _ := h.store.SystemParameters()
	if params == nil || params.Pricing == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "system parameters unavailable"})
		return
	}
	amount := float64(defaultAmountKWh)
	if raw := r.URL.Query().Get("amount"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "amount must be a positive number"})
			return
		}
		amount = v
	}
	writeJSON(w, http.StatusOK, adviceResponse{
		Suggestions: coreestimate.OptimalChargingSuggestions(params.Pricing),
		Comparison:  coreestimate.CompareCostsByPeriod(amount, params.Pricing),
	})
}

type pileSummary struct {
	PileID           string `json:"pile_id"`
	Working          bool   `json:"is_working"`
	QueueCount       int    `json:"queue_count"`
	MaxQueueSize     int    `json:"max_queue_size"`
	RemainingMinutes int    `json:"remaining_minutes"`
}

type queueStatusResponse struct {
	Mode            model.Mode    `json:"mode"`
	DataSource      string        `json:"data_source"`
	ExternalWaiting int           `json:"external_waiting"`
	Piles           []pileSummary `json:"piles"`
	FetchedAt       time.Time     `json:"fetched_at"`
}

func (h *Handler) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	mode := model.Mode(r.URL.Query().Get("mode"))
	if !mode.Valid() {
		mode = model.ModeFast
	}
	queue, fetchedAt := h.store.QueueStatus()
	params, _ := h.store.SystemParameters()

	view := coreestimate.NormalizeQueue(mode, queue, params)
	powerKW := params.PowerFor(mode)
	piles := make([]pileSummary, len(view.Piles))
	for i, p := range view.Piles {
		piles[i] = pileSummary{
			PileID:           p.ID,
			Working:          p.Working,
			QueueCount:       p.QueueCount,
			MaxQueueSize:     p.QueueCapacity(),
			RemainingMinutes: coreestimate.PileRemainingMinutes(p, powerKW),
		}
	}
	writeJSON(w, http.StatusOK, queueStatusResponse{
		Mode:            mode,
		DataSource:      view.Source.String(),
		ExternalWaiting: view.ExternalWaiting,
		Piles:           piles,
		FetchedAt:       fetchedAt,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
