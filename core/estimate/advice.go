package estimate

import (
	"math"

	"github.com/smartcharge/chargest/core/model"
)

// Suggestion recommends a tariff period to target or avoid.
type Suggestion struct {
	Period          string  `json:"period"`
	Rate            float64 `json:"rate"`
	TimeRange       string  `json:"time_range"`
	SavingsPercent  float64 `json:"savings_percent,omitempty"`
	ExtraCostPerKWh float64 `json:"extra_cost_per_kwh,omitempty"`
	Description     string  `json:"description"`
}

// OptimalChargingSuggestions derives period advice from the tariff: charge
// in the valley when it is the cheapest period, avoid the peak when it
// costs more than normal hours. Returns nil without pricing.
func OptimalChargingSuggestions(p *model.Pricing) []Suggestion {
	if p == nil {
		return nil
	}
	var out []Suggestion
	if p.ValleyRate < p.NormalRate && p.ValleyRate < p.PeakRate {
		savings := 0.0
		if p.PeakRate > 0 {
			savings = round1((p.PeakRate - p.ValleyRate) / p.PeakRate * 100)
		}
		out = append(out, Suggestion{
			Period:         "valley",
			Rate:           p.ValleyRate,
			TimeRange:      "23:00-07:00",
			SavingsPercent: savings,
			Description:    "valley charging is cheapest",
		})
	}
	if p.PeakRate > p.NormalRate {
		out = append(out, Suggestion{
			Period:          "avoid_peak",
			Rate:            p.PeakRate,
			TimeRange:       "10:00-15:00, 18:00-21:00",
			ExtraCostPerKWh: round2(p.PeakRate - p.ValleyRate),
			Description:     "avoiding peak hours reduces cost",
		})
	}
	return out
}

// PeriodCost is the flat-rate cost of a session charged entirely within
// one tariff period.
type PeriodCost struct {
	Name            string  `json:"name"`
	Period          string  `json:"period"`
	Rate            float64 `json:"rate"`
	ElectricityCost float64 `json:"electricity_cost"`
	ServiceCost     float64 `json:"service_cost"`
	TotalCost       float64 `json:"total_cost"`
}

// CostComparison contrasts charging the same amount in each period.
type CostComparison struct {
	Scenarios  []PeriodCost `json:"scenarios"`
	Cheapest   string       `json:"cheapest"`
	MaxSavings float64      `json:"max_savings"`
}

// CompareCostsByPeriod prices the amount as if delivered entirely in each
// tariff period, identifying the cheapest scenario and the spread against
// peak charging. Returns nil without pricing or a positive amount.
func CompareCostsByPeriod(amountKWh float64, p *model.Pricing) *CostComparison {
	if p == nil || amountKWh <= 0 {
		return nil
	}
	scenarios := []PeriodCost{
		{Name: "valley charging", Period: "valley", Rate: p.ValleyRate},
		{Name: "normal charging", Period: "normal", Rate: p.NormalRate},
		{Name: "peak charging", Period: "peak", Rate: p.PeakRate},
	}
	service := amountKWh * p.ServiceRate
	cheapest := 0
	for i := range scenarios {
		s := &scenarios[i]
		s.ElectricityCost = round2(amountKWh * s.Rate)
		s.ServiceCost = round2(service)
		s.TotalCost = round2(amountKWh*s.Rate + service)
		if s.TotalCost < scenarios[cheapest].TotalCost {
			cheapest = i
		}
	}
	return &CostComparison{
		Scenarios:  scenarios,
		Cheapest:   scenarios[cheapest].Name,
		MaxSavings: round2(scenarios[2].TotalCost - scenarios[cheapest].TotalCost),
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
