// Package timegrid generates the ordered sequence of 15-minute time instants
// spanning an event's daily window on a given candidate date.
//
// The grid is the join key space of the whole system: per-participant
// availability and the aggregation engine are computed independently and
// meet only on grid keys, so generation must be a pure function — identical
// inputs always yield an identical sequence.
package timegrid

import (
	"fmt"
	"iter"
	"time"

	"github.com/mfreitag/meetsync/internal/domain"
)

// StepMinutes is the grid cadence.
const StepMinutes = 15

// Slot is one grid instant.
//
// Key is the wall-clock label in the event's declared timezone and is what
// availability entries are keyed by. Label is the same instant rendered in
// the viewer's timezone for display; when viewer and event zones coincide
// the two are equal.
type Slot struct {
	Instant time.Time
	Key     string
	Label   string
}

// Grid is a parsed, validated window on one date. It is cheap to copy and
// its methods never mutate it, so a Grid can be generated once and ranged
// over any number of times.
type Grid struct {
	year, month, day int
	startMin         int
	count            int
	event            *time.Location
	viewer           *time.Location
}

// New builds the grid for date (ISO "2006-01-02") with the window
// [startLabel, endLabel] declared in eventZone, rendering labels in
// viewerZone.
//
// The window endpoints are anchored to the date in the event's zone — never
// kept as naive wall-clock values — so every Slot.Instant is an absolute
// instant and downstream comparisons are timezone-safe. The end label is
// inclusive. An end at or before the start wall-clock is treated as
// spanning into the next day, except the degenerate equal case, which is a
// single-instant window.
func New(date, eventZone, startLabel, endLabel, viewerZone string) (Grid, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return Grid{}, fmt.Errorf("%w: bad date %q", domain.ErrValidation, date)
	}

	eventLoc, err := time.LoadLocation(eventZone)
	if err != nil {
		return Grid{}, fmt.Errorf("%w: unknown timezone %q", domain.ErrValidation, eventZone)
	}
	viewerLoc := eventLoc
	if viewerZone != "" && viewerZone != eventZone {
		viewerLoc, err = time.LoadLocation(viewerZone)
		if err != nil {
			return Grid{}, fmt.Errorf("%w: unknown timezone %q", domain.ErrValidation, viewerZone)
		}
	}

	startMin, err := domain.ParseClockLabel(startLabel)
	if err != nil {
		return Grid{}, err
	}
	endMin, err := domain.ParseClockLabel(endLabel)
	if err != nil {
		return Grid{}, err
	}

	// Cross-midnight windows roll into the next day rather than producing an
	// empty or negative range. endMin == startMin stays a single slot.
	span := endMin - startMin
	if span < 0 {
		span += 24 * 60
	}

	return Grid{
		year:     day.Year(),
		month:    int(day.Month()),
		day:      day.Day(),
		startMin: startMin,
		count:    span/StepMinutes + 1,
		event:    eventLoc,
		viewer:   viewerLoc,
	}, nil
}

// Len returns the number of slots in the grid.
func (g Grid) Len() int { return g.count }

// All returns the slots as a lazy, finite, restartable sequence in
// strictly increasing instant order.
func (g Grid) All() iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		for i := 0; i < g.count; i++ {
			if !yield(g.at(i)) {
				return
			}
		}
	}
}

// Slots collects the full sequence into a slice.
func (g Grid) Slots() []Slot {
	out := make([]Slot, 0, g.count)
	for s := range g.All() {
		out = append(out, s)
	}
	return out
}

// at materializes slot i. Wall-clock arithmetic happens in plain minutes and
// time.Date does the zone anchoring, which also normalizes day overflow for
// rolled-over windows.
func (g Grid) at(i int) Slot {
	m := g.startMin + i*StepMinutes
	instant := time.Date(g.year, time.Month(g.month), g.day+m/1440, (m%1440)/60, m%60, 0, 0, g.event)
	return Slot{
		Instant: instant,
		Key:     domain.FormatClockLabel(m % 1440),
		Label:   formatLabel(instant.In(g.viewer)),
	}
}

// formatLabel renders an instant as a 12-hour label without a leading zero,
// the same shape ParseClockLabel accepts.
func formatLabel(t time.Time) string {
	return t.Format("3:04 PM")
}

// WindowLabels enumerates the raw 15-minute label sequence for a window with
// no date or timezone involved. It is what event creation derives TimeSlots
// from, and by construction equals the Key sequence of any grid built from
// the same window.
func WindowLabels(startLabel, endLabel string) ([]string, error) {
	startMin, err := domain.ParseClockLabel(startLabel)
	if err != nil {
		return nil, err
	}
	endMin, err := domain.ParseClockLabel(endLabel)
	if err != nil {
		return nil, err
	}

	span := endMin - startMin
	if span < 0 {
		span += 24 * 60
	}

	labels := make([]string, 0, span/StepMinutes+1)
	for m := startMin; m <= startMin+span; m += StepMinutes {
		labels = append(labels, domain.FormatClockLabel(m%1440))
	}
	return labels, nil
}
