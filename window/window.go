// Package window re-expresses dated time slots as hours relative to a frozen "now" and keeps
// the ones inside the requested charting window.
package window

import (
	"math"
	"slices"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aouyang1/go-trafficcast/timeslot"
)

const (
	DefaultBefore       = 2 * time.Hour
	DefaultMinAfter     = 2 * time.Hour
	DefaultETAPadding   = 2 * time.Hour
	DefaultETATolerance = 60 * time.Second
)

// Policy sets how far the window reaches around now and the selected ETA
type Policy struct {
	Before       time.Duration `json:"before"`
	MinAfter     time.Duration `json:"min_after"`
	ETAPadding   time.Duration `json:"eta_padding"`
	ETATolerance time.Duration `json:"eta_tolerance"`
}

// NewDefaultPolicy returns a policy of 2h before now and 2h past the later of now and the ETA
func NewDefaultPolicy() Policy {
	return Policy{
		Before:       DefaultBefore,
		MinAfter:     DefaultMinAfter,
		ETAPadding:   DefaultETAPadding,
		ETATolerance: DefaultETATolerance,
	}
}

// Window is an inclusive range of hours relative to now
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Contains reports whether h is within the window bounds
func (w Window) Contains(h float64) bool {
	return h >= w.Start && h <= w.End
}

// Window computes the range for a now and ETA. An ETA within the tolerance of now is treated
// as now.
func (p Policy) Window(now, eta time.Time) Window {
	w := Window{
		Start: -p.Before.Hours(),
		End:   p.MinAfter.Hours(),
	}
	ahead := eta.Sub(now)
	if ahead.Abs() <= p.ETATolerance {
		return w
	}
	w.End = math.Max((ahead + p.ETAPadding).Hours(), p.MinAfter.Hours())
	return w
}

// Dates returns every local calendar date the window touches around now
func Dates(now time.Time, w Window) []civil.Date {
	first := civil.DateOf(now.Add(hoursToDuration(w.Start)))
	last := civil.DateOf(now.Add(hoursToDuration(w.End)))
	var dates []civil.Date
	for d := first; !d.After(last); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// HoursFromNow returns the signed hours from the local wall clock now to the start of a dated slot
func HoursFromNow(k timeslot.DatedKey, now time.Time) float64 {
	days := k.Date.DaysSince(civil.DateOf(now))
	return float64(k.Slot.Minutes()-minuteOfDay(now))/60.0 + 24.0*float64(days)
}

// LegacyHoursFromNow handles slots without a date by assuming today and wrapping by a day when
// the slot is more than 12 hours away.
func LegacyHoursFromNow(slot timeslot.Key, now time.Time) float64 {
	h := float64(slot.Minutes()-minuteOfDay(now)) / 60.0
	switch {
	case h > 12:
		h -= 24
	case h < -12:
		h += 24
	}
	return h
}

// LegacyDate is the calendar date a date-less slot lands on after the legacy wrap
func LegacyDate(slot timeslot.Key, now time.Time) civil.Date {
	today := civil.DateOf(now)
	h := float64(slot.Minutes()-minuteOfDay(now)) / 60.0
	switch {
	case h > 12:
		return today.AddDays(-1)
	case h < -12:
		return today.AddDays(1)
	}
	return today
}

// RelativeSlot is a slot of a specific calendar date placed relative to now
type RelativeSlot struct {
	HoursFromNow float64      `json:"hoursFromNow"`
	Slot         timeslot.Key `json:"timeSlot"`
	Date         civil.Date   `json:"calendarDate"`
	Label        string       `json:"label"`
}

// Key returns the dated slot key
func (r RelativeSlot) Key() timeslot.DatedKey {
	return timeslot.DatedKey{Date: r.Date, Slot: r.Slot}
}

// Label formats a slot for display, prefixing the weekday when it is not today
func Label(k timeslot.DatedKey, today civil.Date) string {
	if k.Date == today {
		return string(k.Slot)
	}
	return k.Date.In(time.UTC).Weekday().String()[:3] + " " + string(k.Slot)
}

// Build places dated slots relative to now and keeps those inside the window. The result is
// ordered by strictly increasing HoursFromNow with every (date, slot) pair emitted once.
func Build(keys []timeslot.DatedKey, now time.Time, w Window) []RelativeSlot {
	today := civil.DateOf(now)
	seen := make(map[timeslot.DatedKey]struct{}, len(keys))
	slots := make([]RelativeSlot, 0, len(keys))
	for _, k := range keys {
		if _, exists := seen[k]; exists {
			continue
		}
		seen[k] = struct{}{}

		h := HoursFromNow(k, now)
		if !w.Contains(h) {
			continue
		}
		slots = append(slots, RelativeSlot{
			HoursFromNow: h,
			Slot:         k.Slot,
			Date:         k.Date,
			Label:        Label(k, today),
		})
	}
	slices.SortFunc(slots, func(a, b RelativeSlot) int {
		return a.Key().Compare(b.Key())
	})
	return slots
}
