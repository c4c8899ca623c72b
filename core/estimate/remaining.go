// Package estimate implements the client-side charging queue estimator:
// pile remaining-time computation, best-pile selection, multi-level wait
// estimation and time-of-use cost projection. Every function is a pure
// computation over caller-supplied snapshots; nothing here mutates queue
// state or reads the wall clock on its own.
package estimate

import (
	"math"

	"github.com/smartcharge/chargest/core/model"
)

// PileRemainingMinutes returns the minutes until the pile can accept a new
// arrival at the tail of its queue: the remaining energy of the running
// session plus one full session per queued request, all delivered at
// powerKW. The result is rounded to whole minutes and never negative.
//
// powerKW must be positive; resolve it through SystemParameters.PowerFor.
func PileRemainingMinutes(p model.Pile, powerKW float64) int {
	if powerKW <= 0 {
		return 0
	}
	total := 0.0
	if p.Current != nil {
		if rem := p.Current.RemainingKWh(); rem > 0 {
			total += rem / powerKW * 60
		}
	}
	for _, q := range p.Queue {
		if q.RequestedKWh > 0 {
			total += q.RequestedKWh / powerKW * 60
		}
	}
	return int(math.Round(total))
}
