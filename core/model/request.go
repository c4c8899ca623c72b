package model

import (
	"fmt"
	"time"
)

// Request is the hypothetical charging request being estimated. It is an
// input to the estimator only; submitting real requests is the backend's
// business.
type Request struct {
	Mode         Mode      `json:"charging_mode"`
	RequestedKWh float64   `json:"requested_amount"`
	StartTime    time.Time `json:"start_time,omitempty"`
}

// Validate checks that the request can be estimated at all.
func (r Request) Validate() error {
	if !r.Mode.Valid() {
		return fmt.Errorf("unknown charging mode %q", r.Mode)
	}
	if r.RequestedKWh <= 0 {
		return fmt.Errorf("requested amount must be positive, got %v", r.RequestedKWh)
	}
	return nil
}
