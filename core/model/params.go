package model

// Default power ratings applied when the backend omits charging_power.
const (
	DefaultFastPowerKW = 120
	DefaultSlowPowerKW = 7
)

// Pricing holds the per-kWh tariff rates. All rates are non-negative
// currency per kWh; the service rate applies regardless of tariff period.
type Pricing struct {
	PeakRate    float64 `json:"peak_rate"`
	NormalRate  float64 `json:"normal_rate"`
	ValleyRate  float64 `json:"valley_rate"`
	ServiceRate float64 `json:"service_rate"`
}

// ChargingPower carries the station power ratings per mode.
type ChargingPower struct {
	FastKW float64 `json:"fast_charging_power"`
	SlowKW float64 `json:"slow_charging_power"`
}

// TimePeriods carries the configured tariff boundaries as "HH:MM" strings.
// See core/tariff for how (and whether) they are applied.
type TimePeriods struct {
	PeakStart   string `json:"peak_start"`
	PeakEnd     string `json:"peak_end"`
	ValleyStart string `json:"valley_start"`
	ValleyEnd   string `json:"valley_end"`
}

// SystemParameters is the slow-changing station configuration fetched from
// the backend. Pricing is mandatory for a cost estimate; the rest has
// documented defaults.
type SystemParameters struct {
	Pricing       *Pricing       `json:"pricing,omitempty"`
	ChargingPower *ChargingPower `json:"charging_power,omitempty"`
	TimePeriods   *TimePeriods   `json:"time_periods,omitempty"`
}

// PowerFor resolves the charging power for a mode, falling back to the
// station defaults when the parameter block or the rating is absent.
// Every component resolves power through here so the defaults live in
// exactly one place.
func (p *SystemParameters) PowerFor(m Mode) float64 {
	if p != nil && p.ChargingPower != nil {
		if m == ModeFast && p.ChargingPower.FastKW > 0 {
			return p.ChargingPower.FastKW
		}
		if m == ModeSlow && p.ChargingPower.SlowKW > 0 {
			return p.ChargingPower.SlowKW
		}
	}
	if m == ModeSlow {
		return DefaultSlowPowerKW
	}
	return DefaultFastPowerKW
}
