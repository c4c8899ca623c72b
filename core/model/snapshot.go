package model

// Mode identifies the charging speed class of a pile or request.
type Mode string

const (
	ModeFast Mode = "fast"
	ModeSlow Mode = "slow"
)

// Valid reports whether the mode is one of the known charging modes.
func (m Mode) Valid() bool { return m == ModeFast || m == ModeSlow }

// Session is the charging session currently occupying a pile.
type Session struct {
	QueueNumber  string  `json:"queue_number"`
	RequestedKWh float64 `json:"requested_amount"`
	CurrentKWh   float64 `json:"current_amount"`
}

// RemainingKWh returns the energy still to be delivered, never negative.
func (s Session) RemainingKWh() float64 {
	if r := s.RequestedKWh - s.CurrentKWh; r > 0 {
		return r
	}
	return 0
}

// QueuedRequest is a request waiting in a pile queue or the external
// waiting area.
type QueuedRequest struct {
	QueueNumber  string  `json:"queue_number,omitempty"`
	RequestedKWh float64 `json:"requested_amount"`
}

// Pile is a read-only snapshot of one physical charging point and its
// bounded queue. Snapshots come from the station backend and are never
// mutated by the estimator.
type Pile struct {
	ID           string          `json:"pile_id"`
	Working      bool            `json:"is_working"`
	PowerKW      float64         `json:"charging_power"`
	Current      *Session        `json:"current_charging,omitempty"`
	QueueCount   int             `json:"queue_count"`
	MaxQueueSize int             `json:"max_queue_size"`
	Queue        []QueuedRequest `json:"queue_list,omitempty"`
}

// QueueCapacity returns the pile queue bound, applying the station default
// of three slots when the snapshot omits it.
func (p Pile) QueueCapacity() int {
	if p.MaxQueueSize > 0 {
		return p.MaxQueueSize
	}
	return 3
}

// HasOpenSlot reports whether a new request could join the pile queue now.
func (p Pile) HasOpenSlot() bool { return p.QueueCount < p.QueueCapacity() }

// ExternalWaiting describes the holding pool of requests not yet assigned
// to any pile.
type ExternalWaiting struct {
	Count int             `json:"count"`
	Queue []QueuedRequest `json:"queue_list,omitempty"`
}

// ModeStatus is the enhanced per-mode queue view with full pile detail.
type ModeStatus struct {
	Piles           []Pile          `json:"piles"`
	ExternalWaiting ExternalWaiting `json:"external_waiting"`
}

// LegacyModeStatus is the older aggregate-only view exposed by backends
// that predate the multi-level queue API.
type LegacyModeStatus struct {
	WaitingCount int `json:"waiting_count"`
}

// QueueSnapshot is the top-level queue status document. Enhanced backends
// populate Fast/Slow; legacy backends populate FastCharging/SlowCharging
// with aggregate counts only. Either shape, or neither, is acceptable
// input: missing detail degrades the estimate, it never fails it.
type QueueSnapshot struct {
	Fast *ModeStatus `json:"fast,omitempty"`
	Slow *ModeStatus `json:"slow,omitempty"`

	FastCharging *LegacyModeStatus `json:"fast_charging,omitempty"`
	SlowCharging *LegacyModeStatus `json:"slow_charging,omitempty"`
}

// Enhanced returns the enhanced view for the mode, or nil.
func (q *QueueSnapshot) Enhanced(m Mode) *ModeStatus {
	if q == nil {
		return nil
	}
	if m == ModeFast {
		return q.Fast
	}
	return q.Slow
}

// Legacy returns the legacy view for the mode, or nil.
func (q *QueueSnapshot) Legacy(m Mode) *LegacyModeStatus {
	if q == nil {
		return nil
	}
	if m == ModeFast {
		return q.FastCharging
	}
	return q.SlowCharging
}
