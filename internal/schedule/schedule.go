// Package schedule aggregates per-identity availability into the consensus
// views: per-slot ratio buckets and ranked contiguous "best time" ranges.
//
// Everything here is pure computation over domain values; the package knows
// nothing about storage or HTTP.
package schedule

import (
	"github.com/mfreitag/meetsync/internal/domain"
)

// Bucket classifies the fraction of considered identities available at a slot.
type Bucket string

const (
	BucketNone   Bucket = "none"
	BucketLow    Bucket = "low"
	BucketMedium Bucket = "medium"
	BucketHigh   Bucket = "high"
	BucketFull   Bucket = "full"
)

// majorityRatio is the best-times inclusion threshold. 51% rather than 50%:
// a slot qualifies only on a true majority, never on an exact half.
const majorityRatio = 0.51

// BucketFor maps an availability count over a total to its bucket.
// Boundaries: 0 → none, (0,0.5) → low, [0.5,0.75) → medium,
// [0.75,1.0) → high, exactly 1.0 → full. A zero total is always none.
func BucketFor(count, total int) Bucket {
	if total == 0 || count == 0 {
		return BucketNone
	}
	ratio := float64(count) / float64(total)
	switch {
	case ratio >= 1.0:
		return BucketFull
	case ratio >= 0.75:
		return BucketHigh
	case ratio >= 0.5:
		return BucketMedium
	default:
		return BucketLow
	}
}

// SlotCount is the everyone-view consensus for a single grid slot.
type SlotCount struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Count  int    `json:"count"`
	Total  int    `json:"total"`
	Bucket Bucket `json:"bucket"`
}

// DaySummary groups slot counts for one candidate date, in grid order.
type DaySummary struct {
	Date  string      `json:"date"`
	Slots []SlotCount `json:"slots"`
}

// Range is a contiguous run of majority slots on one date, annotated with
// the constant availability count across the run.
type Range struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Available int    `json:"available"`
	Total     int    `json:"total"`
}

// Summarize computes the everyone view: for every candidate date and every
// slot key, how many of the considered identities marked themselves
// available, and which bucket that lands in.
//
// subset, when non-empty, restricts the considered identities by
// case-insensitive name; unknown names in the subset are ignored. The slot
// key order of slotKeys is preserved, as is the date order.
func Summarize(dates []string, slotKeys []string, responses []domain.Response, subset []string) []DaySummary {
	considered := filterResponses(responses, subset)
	total := len(considered)

	// available[date][time] = count of identities available there.
	// Each identity contributes at most one tick per slot: a snapshot that
	// carries the same (date, time) twice must not push count past total.
	type slotRef struct{ date, time string }
	available := make(map[string]map[string]int, len(dates))
	for _, r := range considered {
		seen := make(map[slotRef]bool, len(r.Availability))
		for _, entry := range r.Availability {
			if !entry.Available {
				continue
			}
			ref := slotRef{date: entry.Date, time: entry.Time}
			if seen[ref] {
				continue
			}
			seen[ref] = true
			byTime := available[entry.Date]
			if byTime == nil {
				byTime = make(map[string]int)
				available[entry.Date] = byTime
			}
			byTime[entry.Time]++
		}
	}

	days := make([]DaySummary, 0, len(dates))
	for _, date := range dates {
		slots := make([]SlotCount, 0, len(slotKeys))
		for _, key := range slotKeys {
			count := available[date][key]
			slots = append(slots, SlotCount{
				Date:   date,
				Time:   key,
				Count:  count,
				Total:  total,
				Bucket: BucketFor(count, total),
			})
		}
		days = append(days, DaySummary{Date: date, Slots: slots})
	}
	return days
}

// BestTimes ranks majority timeframes: per date, slots where at least 51% of
// the considered identities are available, merged into contiguous ranges.
// A change in count starts a new range even when both counts still qualify,
// so each range carries one exact (available, total) annotation.
//
// The boolean result is false when no date has any qualifying slot, so
// callers can report "no majority timeframe" instead of an empty list.
func BestTimes(days []DaySummary) ([]Range, bool) {
	var ranges []Range

	for _, day := range days {
		var current *Range
		for _, slot := range day.Slots {
			if !qualifies(slot) {
				current = nil
				continue
			}
			if current != nil && current.Available == slot.Count {
				current.EndTime = slot.Time
				continue
			}
			ranges = append(ranges, Range{
				Date:      day.Date,
				StartTime: slot.Time,
				EndTime:   slot.Time,
				Available: slot.Count,
				Total:     slot.Total,
			})
			current = &ranges[len(ranges)-1]
		}
	}

	return ranges, len(ranges) > 0
}

func qualifies(s SlotCount) bool {
	if s.Total == 0 {
		return false
	}
	return float64(s.Count)/float64(s.Total) >= majorityRatio
}

// filterResponses returns the responses whose names appear in subset, or all
// responses when subset is empty. Matching is case-insensitive.
func filterResponses(responses []domain.Response, subset []string) []domain.Response {
	if len(subset) == 0 {
		return responses
	}
	wanted := make(map[string]bool, len(subset))
	for _, name := range subset {
		wanted[domain.NormalizeName(name)] = true
	}
	var out []domain.Response
	for _, r := range responses {
		if wanted[domain.NormalizeName(r.Name)] {
			out = append(out, r)
		}
	}
	return out
}
