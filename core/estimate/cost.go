package estimate

import (
	"math"
	"time"

	"github.com/smartcharge/chargest/core/model"
	"github.com/smartcharge/chargest/core/tariff"
)

// CostSlice records one hour-step of the session walk.
type CostSlice struct {
	Hour          int     `json:"hour"`
	Period        string  `json:"period"`
	DurationHours float64 `json:"duration_hours"`
	Rate          float64 `json:"rate"`
}

// CostBreakdown splits a session's projected cost across tariff periods.
// Monetary fields and hour totals are rounded to two decimals.
type CostBreakdown struct {
	PeakCost    float64     `json:"peak_cost"`
	NormalCost  float64     `json:"normal_cost"`
	ValleyCost  float64     `json:"valley_cost"`
	ServiceCost float64     `json:"service_cost"`
	TotalCost   float64     `json:"total_cost"`
	PeakHours   float64     `json:"peak_hours"`
	NormalHours float64     `json:"normal_hours"`
	ValleyHours float64     `json:"valley_hours"`
	Breakdown   []CostSlice `json:"breakdown"`
}

// CalculateCost walks the session forward from start in one-hour steps
// (the last step may be partial), classifies each step's start instant and
// attributes energy pro rata: delivery is assumed uniform over the whole
// session, so each period's energy cost is its share of the hours times the
// amount and rate. That uniformity is a documented approximation of real
// power delivery. The per-kWh service cost applies to the full amount.
//
// Non-positive amount or duration, or missing pricing, yields an all-zero
// breakdown: there is nothing to estimate yet, which is not an error.
func CalculateCost(amountKWh float64, start time.Time, durationMinutes int, pricing *model.Pricing, cls tariff.Classifier) CostBreakdown {
	if pricing == nil || amountKWh <= 0 || durationMinutes <= 0 {
		return CostBreakdown{Breakdown: []CostSlice{}}
	}

	totalHours := float64(durationMinutes) / 60
	var peakHours, normalHours, valleyHours float64
	breakdown := make([]CostSlice, 0, durationMinutes/60+1)

	current := start
	remaining := totalHours
	for remaining > 0 {
		period := cls.Classify(current)
		step := math.Min(remaining, 1)

		switch period {
		case tariff.Peak:
			peakHours += step
		case tariff.Valley:
			valleyHours += step
		default:
			normalHours += step
		}
		breakdown = append(breakdown, CostSlice{
			Hour:          current.Hour(),
			Period:        period.String(),
			DurationHours: step,
			Rate:          period.Rate(*pricing),
		})

		remaining -= step
		current = current.Add(time.Hour)
	}

	peakCost := peakHours / totalHours * amountKWh * pricing.PeakRate
	normalCost := normalHours / totalHours * amountKWh * pricing.NormalRate
	valleyCost := valleyHours / totalHours * amountKWh * pricing.ValleyRate
	serviceCost := amountKWh * pricing.ServiceRate

	return CostBreakdown{
		PeakCost:    round2(peakCost),
		NormalCost:  round2(normalCost),
		ValleyCost:  round2(valleyCost),
		ServiceCost: round2(serviceCost),
		TotalCost:   round2(peakCost + normalCost + valleyCost + serviceCost),
		PeakHours:   round2(peakHours),
		NormalHours: round2(normalHours),
		ValleyHours: round2(valleyHours),
		Breakdown:   breakdown,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
