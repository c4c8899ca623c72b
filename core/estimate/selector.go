package estimate

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/smartcharge/chargest/core/model"
)

// defaultSessionMinutes stands in for the average queued session when a
// pile reports a full queue but its queue list is empty in the snapshot.
const defaultSessionMinutes = 30

// Selection is the outcome of scanning the piles of one mode.
type Selection struct {
	// WaitMinutes is the projected wait at the best pile. +Inf when no
	// pile was supplied at all.
	WaitMinutes float64
	// Pile is the winning pile, nil when none was supplied.
	Pile *model.Pile
	// OpenSlot reports whether the winning pile still has queue capacity.
	// False means the winner's queue is full and the wait includes one
	// average session until a slot frees.
	OpenSlot bool
}

// SelectBestPile scans all piles of the requested mode and returns the one
// with the minimum projected wait. Open-slot and full-queue candidates
// compete on equal footing: a full pile that clears quickly can beat an
// open pile with a long backlog. Ties keep the first pile encountered.
func SelectBestPile(piles []model.Pile, powerKW float64) Selection {
	best := Selection{WaitMinutes: math.Inf(1)}
	for i := range piles {
		p := &piles[i]
		remaining := float64(PileRemainingMinutes(*p, powerKW))

		if p.HasOpenSlot() {
			if remaining < best.WaitMinutes {
				best = Selection{WaitMinutes: remaining, Pile: p, OpenSlot: true}
			}
			continue
		}

		// Queue full: the arrival must additionally wait for one slot to
		// free, approximated by the mean queued session length.
		avg := float64(defaultSessionMinutes)
		if len(p.Queue) > 0 && powerKW > 0 {
			amounts := make([]float64, len(p.Queue))
			for j, q := range p.Queue {
				amounts[j] = q.RequestedKWh
			}
			avg = stat.Mean(amounts, nil) / powerKW * 60
		}
		if total := remaining + avg; total < best.WaitMinutes {
			best = Selection{WaitMinutes: total, Pile: p, OpenSlot: false}
		}
	}
	return best
}
