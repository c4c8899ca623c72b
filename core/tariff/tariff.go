// Package tariff maps wall-clock instants to time-of-use tariff periods.
package tariff

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smartcharge/chargest/core/model"
)

// Period is a time-of-use tariff bucket.
type Period int

const (
	Peak Period = iota
	Normal
	Valley
)

func (p Period) String() string {
	switch p {
	case Peak:
		return "peak"
	case Valley:
		return "valley"
	default:
		return "normal"
	}
}

// Rate returns the per-kWh rate for the period.
func (p Period) Rate(pr model.Pricing) float64 {
	switch p {
	case Peak:
		return pr.PeakRate
	case Valley:
		return pr.ValleyRate
	default:
		return pr.NormalRate
	}
}

// Classify maps an instant to its tariff period using the station's fixed
// hour policy, local time:
//
//	peak:   10-15 and 18-21
//	valley: 23-24 and 0-7
//	normal: everything else
//
// The backend also publishes configurable period boundaries, but its
// billing path applies these fixed hours regardless; the estimator must
// match the bill, so this is the default everywhere. Boundary-driven
// classification is available as an explicit opt-in via Classifier.
func Classify(t time.Time) Period {
	h := t.Hour()
	switch {
	case (h >= 10 && h < 15) || (h >= 18 && h < 21):
		return Peak
	case h >= 23 || h < 7:
		return Valley
	default:
		return Normal
	}
}

// Boundaries holds configured tariff period boundaries as "HH:MM" strings.
type Boundaries struct {
	PeakStart   string
	PeakEnd     string
	ValleyStart string
	ValleyEnd   string
}

// BoundariesFrom converts the backend time_periods block, returning nil
// when it is absent.
func BoundariesFrom(tp *model.TimePeriods) *Boundaries {
	if tp == nil {
		return nil
	}
	return &Boundaries{
		PeakStart:   tp.PeakStart,
		PeakEnd:     tp.PeakEnd,
		ValleyStart: tp.ValleyStart,
		ValleyEnd:   tp.ValleyEnd,
	}
}

// Validate checks that every boundary parses as a clock time.
func (b Boundaries) Validate() error {
	for _, s := range []string{b.PeakStart, b.PeakEnd, b.ValleyStart, b.ValleyEnd} {
		if _, err := parseClock(s); err != nil {
			return err
		}
	}
	return nil
}

// parseClock parses "HH:MM" into fractional hours, e.g. "7:30" -> 7.5.
func parseClock(s string) (float64, error) {
	parts := strings.SplitN(s, ":", 2)
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	m := 0
	if len(parts) == 2 {
		m, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || m < 0 || m > 59 {
			return 0, fmt.Errorf("invalid clock time %q", s)
		}
	}
	return float64(h) + float64(m)/60, nil
}

// Classifier classifies instants. With nil Boundaries it applies the fixed
// hour policy; with Boundaries set it honours the configured windows
// instead. The valley window may wrap midnight.
type Classifier struct {
	Boundaries *Boundaries
}

// Classify maps the instant to its period.
func (c Classifier) Classify(t time.Time) Period {
	if c.Boundaries == nil {
		return Classify(t)
	}
	b := *c.Boundaries
	hour := float64(t.Hour()) + float64(t.Minute())/60

	peakStart, err1 := parseClock(b.PeakStart)
	peakEnd, err2 := parseClock(b.PeakEnd)
	valleyStart, err3 := parseClock(b.ValleyStart)
	valleyEnd, err4 := parseClock(b.ValleyEnd)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return Classify(t)
	}

	if within(hour, peakStart, peakEnd) {
		return Peak
	}
	if within(hour, valleyStart, valleyEnd) {
		return Valley
	}
	return Normal
}

// within reports whether h falls in [start, end), wrapping midnight when
// start >= end.
func within(h, start, end float64) bool {
	if start < end {
		return h >= start && h < end
	}
	return h >= start || h < end
}
