package estimate

import (
	"errors"
	"math"
	"time"

	"github.com/smartcharge/chargest/core/logger"
	"github.com/smartcharge/chargest/core/model"
	"github.com/smartcharge/chargest/core/tariff"
)

// ErrSystemParametersUnavailable is returned when no system parameters
// were supplied; without pricing and power ratings there is nothing to
// estimate and callers should render a loading state instead.
var ErrSystemParametersUnavailable = errors.New("system parameters unavailable")

// Estimate is the composed end-to-end projection for one candidate
// request, ready for display.
type Estimate struct {
	Mode                    model.Mode    `json:"charging_mode"`
	RequestedKWh            float64       `json:"requested_amount"`
	PowerKW                 float64       `json:"charging_power"`
	ChargingDurationMinutes int           `json:"charging_duration_minutes"`
	Wait                    WaitEstimate  `json:"wait_time"`
	EstimatedStart          time.Time     `json:"estimated_start_time"`
	EstimatedEnd            time.Time     `json:"estimated_end_time"`
	TotalTimeMinutes        int           `json:"total_time_minutes"`
	Cost                    CostBreakdown `json:"cost_breakdown"`
	Summary                 Summary       `json:"summary"`
}

// Summary carries the display strings the UI shows directly. Formatting is
// kept out of the numeric fields so computation stays locale-agnostic.
type Summary struct {
	TotalCost           float64 `json:"total_cost"`
	TotalCostDisplay    string  `json:"total_cost_display"`
	TotalTimeDisplay    string  `json:"total_time_display"`
	WaitTimeDisplay     string  `json:"wait_time_display"`
	ChargingTimeDisplay string  `json:"charging_time_display"`
}

// Engine composes the classifier, selector, wait estimator and cost
// calculator into one orchestration. It keeps no state between calls:
// identical inputs yield identical estimates.
type Engine struct {
	log logger.Logger
	// useConfiguredPeriods switches cost classification to the backend's
	// configured tariff boundaries instead of the fixed-hour default. Off
	// by default so estimates match the billing path.
	useConfiguredPeriods bool
	now                  func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithConfiguredPeriods makes the engine honour the time_periods block of
// the system parameters when classifying tariff periods.
func WithConfiguredPeriods() Option {
	return func(e *Engine) { e.useConfiguredPeriods = true }
}

// WithNow overrides the clock used when a request carries no start time.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an estimation engine logging through log.
func NewEngine(log logger.Logger, opts ...Option) *Engine {
	e := &Engine{log: log, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ChargingDurationMinutes returns the minutes needed to deliver amountKWh
// at powerKW, rounded up. Non-positive inputs yield zero.
func ChargingDurationMinutes(amountKWh, powerKW float64) int {
	if amountKWh <= 0 || powerKW <= 0 {
		return 0
	}
	return int(math.Ceil(amountKWh / powerKW * 60))
}

// Estimate produces the full projection for the request given the latest
// snapshots. A nil params is the only hard failure; degraded or absent
// queue data lowers precision but still yields a result.
func (e *Engine) Estimate(req model.Request, params *model.SystemParameters, qs *model.QueueSnapshot) (*Estimate, error) {
	if params == nil {
		return nil, ErrSystemParametersUnavailable
	}
	mode := req.Mode
	if !mode.Valid() {
		mode = model.ModeFast
	}
	start := req.StartTime
	if start.IsZero() {
		start = e.now()
	}

	powerKW := params.PowerFor(mode)
	durationMinutes := ChargingDurationMinutes(req.RequestedKWh, powerKW)

	wait := EstimateWait(mode, qs, params)
	estimatedStart := start.Add(time.Duration(wait.EstimatedWaitMinutes) * time.Minute)

	cls := tariff.Classifier{}
	if e.useConfiguredPeriods {
		cls.Boundaries = tariff.BoundariesFrom(params.TimePeriods)
	}
	cost := CalculateCost(req.RequestedKWh, estimatedStart, durationMinutes, params.Pricing, cls)

	total := wait.EstimatedWaitMinutes + durationMinutes
	if e.log != nil {
		e.log.Debugw("estimate computed", map[string]any{
			"mode":         mode,
			"amount_kwh":   req.RequestedKWh,
			"wait_min":     wait.EstimatedWaitMinutes,
			"duration_min": durationMinutes,
			"total_cost":   cost.TotalCost,
			"data_source":  wait.Source,
		})
	}

	return &Estimate{
		Mode:                    mode,
		RequestedKWh:            req.RequestedKWh,
		PowerKW:                 powerKW,
		ChargingDurationMinutes: durationMinutes,
		Wait:                    wait,
		EstimatedStart:          estimatedStart,
		EstimatedEnd:            estimatedStart.Add(time.Duration(durationMinutes) * time.Minute),
		TotalTimeMinutes:        total,
		Cost:                    cost,
		Summary: Summary{
			TotalCost:           cost.TotalCost,
			TotalCostDisplay:    FormatCurrency(cost.TotalCost),
			TotalTimeDisplay:    FormatMinutes(total),
			WaitTimeDisplay:     FormatMinutes(wait.EstimatedWaitMinutes),
			ChargingTimeDisplay: FormatMinutes(durationMinutes),
		},
	}, nil
}
