package estimate

import (
	"fmt"
	"strings"

	"github.com/smartcharge/chargest/core/model"
)

// Source describes how much queue detail backed an estimate.
type Source int

const (
	// SourceNone means no queue data for the mode was available.
	SourceNone Source = iota
	// SourceLegacy means only an aggregate waiting count was available
	// and pile state was synthesized.
	SourceLegacy
	// SourceEnhanced means full per-pile detail was available.
	SourceEnhanced
)

func (s Source) String() string {
	switch s {
	case SourceEnhanced:
		return "enhanced"
	case SourceLegacy:
		return "legacy"
	default:
		return "none"
	}
}

// QueueView is the canonical per-mode queue state every algorithm runs on,
// regardless of which snapshot shape the backend returned. Shape detection
// happens once, here, instead of in every component.
type QueueView struct {
	Mode            model.Mode
	Piles           []model.Pile
	ExternalWaiting int
	Source          Source
}

// Synthetic pile counts used when a legacy snapshot carries no pile detail.
const (
	legacyFastPiles = 4
	legacySlowPiles = 6
)

// NormalizeQueue resolves the snapshot into a QueueView for the mode.
// Enhanced data is passed through; legacy data gets a plausible synthetic
// pile layout so the selector has something to reason about; a missing
// snapshot yields an empty view. Degraded input is never an error, only
// reduced precision.
func NormalizeQueue(m model.Mode, qs *model.QueueSnapshot, params *model.SystemParameters) QueueView {
	if enhanced := qs.Enhanced(m); enhanced != nil && enhanced.Piles != nil {
		return QueueView{
			Mode:            m,
			Piles:           enhanced.Piles,
			ExternalWaiting: enhanced.ExternalWaiting.Count,
			Source:          SourceEnhanced,
		}
	}
	if legacy := qs.Legacy(m); legacy != nil {
		return QueueView{
			Mode:            m,
			Piles:           syntheticPiles(m, params.PowerFor(m)),
			ExternalWaiting: legacy.WaitingCount,
			Source:          SourceLegacy,
		}
	}
	return QueueView{Mode: m, Source: SourceNone}
}

// syntheticPiles approximates a realistic station layout for the mode: a
// handful of piles with the first one mid-session and one request queued.
func syntheticPiles(m model.Mode, powerKW float64) []model.Pile {
	count := legacyFastPiles
	if m == model.ModeSlow {
		count = legacySlowPiles
	}
	piles := make([]model.Pile, count)
	for i := range piles {
		piles[i] = model.Pile{
			ID:           fmt.Sprintf("%s-%02d", strings.ToUpper(string(m)), i+1),
			PowerKW:      powerKW,
			MaxQueueSize: 3,
		}
	}
	piles[0].Working = true
	piles[0].QueueCount = 1
	piles[0].Current = &model.Session{
		QueueNumber:  "SIMULATED",
		RequestedKWh: 50,
		CurrentKWh:   25,
	}
	return piles
}
