package estimate

import (
	"fmt"
	"math"

	"github.com/smartcharge/chargest/core/model"
)

const (
	// minutesPerWaiting is the flat per-person surcharge for requests
	// ahead in the external waiting area.
	minutesPerWaiting = 10
	// fallbackWaitMinutes is used when no candidate pile could be found.
	fallbackWaitMinutes = 30
)

// WaitEstimate is the multi-level wait projection for one candidate
// request: time until the best pile frees plus the external-area backlog.
type WaitEstimate struct {
	EstimatedWaitMinutes int         `json:"estimated_wait_minutes"`
	QueuePosition        int         `json:"queue_position"`
	AheadCount           int         `json:"ahead_count"`
	BasePileWait         int         `json:"base_pile_wait"`
	AdditionalQueueWait  int         `json:"additional_queue_wait"`
	BestPile             *model.Pile `json:"best_pile,omitempty"`
	PileDetails          string      `json:"pile_details"`
	Details              string      `json:"details"`
	Source               string      `json:"data_source"`
}

// EstimateWait combines the external waiting backlog with the best pile's
// projected free time. It tolerates enhanced, legacy and absent snapshots,
// degrading to coarser numbers rather than failing, and is idempotent for
// identical inputs.
func EstimateWait(m model.Mode, qs *model.QueueSnapshot, params *model.SystemParameters) WaitEstimate {
	view := NormalizeQueue(m, qs, params)
	ahead := view.ExternalWaiting

	if len(view.Piles) == 0 {
		// No pile data at all: flat per-person estimate.
		base := ahead * minutesPerWaiting
		if base < minutesPerWaiting {
			base = minutesPerWaiting
		}
		return WaitEstimate{
			EstimatedWaitMinutes: base,
			QueuePosition:        ahead + 1,
			AheadCount:           ahead,
			AdditionalQueueWait:  base,
			PileDetails:          fmt.Sprintf("headcount estimate (%d waiting)", ahead),
			Details:              fmt.Sprintf("no pile data: %d ahead at about %d min each", ahead, minutesPerWaiting),
			Source:               view.Source.String(),
		}
	}

	sel := SelectBestPile(view.Piles, params.PowerFor(m))

	var base float64
	var pileDetails string
	switch {
	case sel.Pile != nil && sel.OpenSlot:
		base = sel.WaitMinutes
		pileDetails = fmt.Sprintf("pile %s frees in about %d min", sel.Pile.ID, int(math.Round(base)))
	case sel.Pile != nil:
		base = sel.WaitMinutes
		pileDetails = fmt.Sprintf("pile %s queue full, about %d min until a slot frees", sel.Pile.ID, int(math.Round(base)))
	default:
		base = fallbackWaitMinutes
		pileDetails = fmt.Sprintf("no candidate pile, assuming %d min", fallbackWaitMinutes)
	}

	additional := ahead * minutesPerWaiting
	return WaitEstimate{
		EstimatedWaitMinutes: int(math.Round(base)) + additional,
		QueuePosition:        ahead + 1,
		AheadCount:           ahead,
		BasePileWait:         int(math.Round(base)),
		AdditionalQueueWait:  additional,
		BestPile:             sel.Pile,
		PileDetails:          pileDetails,
		Details:              fmt.Sprintf("%s + %d ahead in waiting area (%d min)", pileDetails, ahead, additional),
		Source:               view.Source.String(),
	}
}
