// Package baseline holds the historical traffic baseline tables of an airport and selects the
// curve that applies to a local calendar date.
package baseline

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aouyang1/go-trafficcast/clock"
	"github.com/aouyang1/go-trafficcast/holiday"
	"github.com/aouyang1/go-trafficcast/timeslot"
	"github.com/goccy/go-json"
)

var ErrNoSeasons = errors.New("baseline has neither a summer nor a winter table")

type SampleSize struct {
	Days int `json:"days"`
}

// Slot is the historical average count for one time slot and how many days it was averaged over
type Slot struct {
	AverageCount float64    `json:"averageCount"`
	SampleSize   SampleSize `json:"sampleSize"`
}

// SlotMap is one baseline curve keyed by slot
type SlotMap map[timeslot.Key]Slot

// Keys returns the slot keys ordered by time of day
func (m SlotMap) Keys() []timeslot.Key {
	return timeslot.SortedKeys(m)
}

// SeasonTable holds every baseline curve of one season
type SeasonTable struct {
	DayOfWeek map[string]SlotMap      `json:"dayOfWeekTimeSlots"`
	Holiday   map[holiday.Key]SlotMap `json:"holidayTimeSlots"`
	Seasonal  SlotMap                 `json:"seasonalTimeSlots"`
}

// Table is the per airport baseline input. It is immutable once decoded.
type Table struct {
	Summer         *SeasonTable            `json:"summer"`
	Winter         *SeasonTable            `json:"winter"`
	DSTDatesByYear map[int]clock.DSTWindow `json:"dstDatesByYear"`
}

// Decode parses a baseline table. Slots with malformed keys are dropped with a warning so a
// single bad entry does not discard the whole table.
func Decode(data []byte) (*Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unable to decode baseline table, %w", err)
	}
	if t.Summer == nil && t.Winter == nil {
		return nil, ErrNoSeasons
	}
	if t.DSTDatesByYear == nil {
		t.DSTDatesByYear = make(map[int]clock.DSTWindow)
	}
	t.Summer.normalize(clock.Summer)
	t.Winter.normalize(clock.Winter)
	return &t, nil
}

func (s *SeasonTable) normalize(season clock.Season) {
	if s == nil {
		return
	}
	dow := make(map[string]SlotMap, len(s.DayOfWeek))
	for name, m := range s.DayOfWeek {
		bucket := string(season) + "/" + name
		dow[strings.ToLower(name)] = m.normalize(bucket)
	}
	s.DayOfWeek = dow
	for key, m := range s.Holiday {
		s.Holiday[key] = m.normalize(string(season) + "/" + string(key))
	}
	s.Seasonal = s.Seasonal.normalize(string(season) + "/seasonal")
}

func (m SlotMap) normalize(bucket string) SlotMap {
	for key := range m {
		if _, err := timeslot.Parse(string(key)); err != nil {
			slog.Warn("dropping invalid baseline slot", "bucket", bucket, "error", err.Error())
			delete(m, key)
		}
	}
	return m
}

// Clock builds the airport clock from the table's DST dates
func (t *Table) Clock(airport string, utcOffset time.Duration) *clock.AirportClock {
	return clock.New(airport, utcOffset, t.DSTDatesByYear)
}

func (t *Table) season(s clock.Season) *SeasonTable {
	if t == nil {
		return nil
	}
	if s == clock.Summer {
		return t.Summer
	}
	return t.Winter
}

// Seasonal returns the aggregate curve of a season
func (t *Table) Seasonal(s clock.Season) (SlotMap, bool) {
	st := t.season(s)
	if st == nil || len(st.Seasonal) == 0 {
		return nil, false
	}
	return st.Seasonal, true
}

func (s *SeasonTable) holiday(k holiday.Key) (SlotMap, bool) {
	if s == nil {
		return nil, false
	}
	m, exists := s.Holiday[k]
	return m, exists && len(m) > 0
}

func (s *SeasonTable) weekday(name string) (SlotMap, bool) {
	if s == nil {
		return nil, false
	}
	m, exists := s.DayOfWeek[name]
	return m, exists && len(m) > 0
}
