// Package series validates the live forecast input and normalizes its forecast and observed
// counts into dated slot series.
package series

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aouyang1/go-trafficcast/timeslot"
	"github.com/aouyang1/go-trafficcast/window"
	"github.com/goccy/go-json"
)

var (
	ErrNoSlots       = errors.New("no time slots")
	ErrLenMismatch   = errors.New("parallel arrays have different lengths than time slots")
	ErrDuplicateSlot = errors.New("time slot repeated on the same date")
	ErrInvalidDate   = errors.New("slot date is not formatted as YYYY-MM-DD")
)

// Input is the forecast payload as delivered upstream. SlotDates and ActualCounts are optional
// but when present must match TimeSlots in length.
type Input struct {
	TimeSlots     []string   `json:"timeSlots"`
	ArrivalCounts []float64  `json:"arrivalCounts"`
	SlotDates     []string   `json:"slotDates,omitempty"`
	ActualCounts  []*float64 `json:"actualCounts,omitempty"`
}

// Decode parses a forecast payload
func Decode(data []byte) (*Input, error) {
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("unable to decode forecast input, %w", err)
	}
	return &in, nil
}

// Legacy reports whether the payload carries no per-slot dates
func (in *Input) Legacy() bool {
	return len(in.SlotDates) == 0
}

// Point is one dated count
type Point struct {
	Key   timeslot.DatedKey `json:"key"`
	Count float64           `json:"count"`
}

// Series is a dated slot series. Legacy series came without dates and are nominally today.
type Series struct {
	Points []Point `json:"points"`
	Legacy bool    `json:"legacy"`

	idx map[timeslot.DatedKey]int
}

func newSeries(points []Point, legacy bool) (*Series, error) {
	idx := make(map[timeslot.DatedKey]int, len(points))
	for i, p := range points {
		if _, exists := idx[p.Key]; exists {
			return nil, fmt.Errorf("%s, %w", p.Key, ErrDuplicateSlot)
		}
		idx[p.Key] = i
	}
	return &Series{Points: points, Legacy: legacy, idx: idx}, nil
}

// Keys returns the dated keys in input order
func (s *Series) Keys() []timeslot.DatedKey {
	if s == nil {
		return nil
	}
	keys := make([]timeslot.DatedKey, len(s.Points))
	for i, p := range s.Points {
		keys[i] = p.Key
	}
	return keys
}

// Lookup returns the count at a dated key
func (s *Series) Lookup(k timeslot.DatedKey) (float64, bool) {
	if s == nil {
		return 0, false
	}
	i, exists := s.idx[k]
	if !exists {
		return 0, false
	}
	return s.Points[i].Count, true
}

// Len returns the number of points
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// keys resolves every time slot to a dated key. Date-less payloads are placed relative to
// the local wall clock now.
func (in *Input) keys(now time.Time) ([]timeslot.DatedKey, error) {
	if len(in.TimeSlots) == 0 {
		return nil, ErrNoSlots
	}
	if !in.Legacy() && len(in.SlotDates) != len(in.TimeSlots) {
		return nil, fmt.Errorf(
			"time slots has length of %d, but slot dates has a length of %d, %w",
			len(in.TimeSlots), len(in.SlotDates), ErrLenMismatch,
		)
	}

	keys := make([]timeslot.DatedKey, len(in.TimeSlots))
	for i, s := range in.TimeSlots {
		slot, err := timeslot.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("at index %d, %w", i, err)
		}
		if in.Legacy() {
			keys[i] = timeslot.DatedKey{Date: window.LegacyDate(slot, now), Slot: slot}
			continue
		}
		d, err := civil.ParseDate(in.SlotDates[i])
		if err != nil {
			return nil, fmt.Errorf("at index %d %q, %w", i, in.SlotDates[i], ErrInvalidDate)
		}
		keys[i] = timeslot.DatedKey{Date: d, Slot: slot}
	}
	return keys, nil
}

// Forecast returns the forecast arrival counts as a dated series
func (in *Input) Forecast(now time.Time) (*Series, error) {
	keys, err := in.keys(now)
	if err != nil {
		return nil, err
	}
	if len(in.ArrivalCounts) != len(keys) {
		return nil, fmt.Errorf(
			"time slots has length of %d, but arrival counts has a length of %d, %w",
			len(keys), len(in.ArrivalCounts), ErrLenMismatch,
		)
	}

	points := make([]Point, len(keys))
	for i, k := range keys {
		points[i] = Point{Key: k, Count: in.ArrivalCounts[i]}
	}
	return newSeries(points, in.Legacy())
}

// Actuals returns the observed counts as a dated series, skipping slots with no observation.
// A payload without actual counts yields an empty series.
func (in *Input) Actuals(now time.Time) (*Series, error) {
	if len(in.ActualCounts) == 0 {
		return newSeries(nil, in.Legacy())
	}
	keys, err := in.keys(now)
	if err != nil {
		return nil, err
	}
	if len(in.ActualCounts) != len(keys) {
		return nil, fmt.Errorf(
			"time slots has length of %d, but actual counts has a length of %d, %w",
			len(keys), len(in.ActualCounts), ErrLenMismatch,
		)
	}

	points := make([]Point, 0, len(keys))
	for i, k := range keys {
		if in.ActualCounts[i] == nil {
			continue
		}
		points = append(points, Point{Key: k, Count: *in.ActualCounts[i]})
	}
	return newSeries(points, in.Legacy())
}
