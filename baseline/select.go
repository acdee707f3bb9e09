package baseline

import (
	"cloud.google.com/go/civil"
	"github.com/aouyang1/go-trafficcast/clock"
	"github.com/aouyang1/go-trafficcast/holiday"
)

// DayType is the classification of a local date used to pick its baseline
type DayType struct {
	Date      civil.Date
	Season    clock.Season
	Weekday   string
	Holiday   holiday.Key
	IsHoliday bool
}

// Classify derives season, weekday name, and holiday key of a local date
func Classify(d civil.Date, c *clock.AirportClock) DayType {
	key, isHoliday := holiday.Classify(d)
	return DayType{
		Date:      d,
		Season:    c.Season(d),
		Weekday:   clock.WeekdayName(d),
		Holiday:   key,
		IsHoliday: isHoliday,
	}
}

// Selection is a found baseline curve
type Selection struct {
	Slots     SlotMap
	Label     string
	IsHoliday bool
	Season    clock.Season
}

// Select picks the curve for a classified date. Holiday curves are looked up in the date's own
// season and then the other season before falling back to the weekday curve of the date's own
// season. The false result means no baseline is available for the date.
func (t *Table) Select(dt DayType) (Selection, bool) {
	if dt.IsHoliday {
		for _, s := range []clock.Season{dt.Season, dt.Season.Other()} {
			if m, ok := t.season(s).holiday(dt.Holiday); ok {
				return Selection{
					Slots:     m,
					Label:     string(dt.Holiday),
					IsHoliday: true,
					Season:    s,
				}, true
			}
		}
	}
	if m, ok := t.season(dt.Season).weekday(dt.Weekday); ok {
		return Selection{
			Slots:  m,
			Label:  dt.Weekday,
			Season: dt.Season,
		}, true
	}
	return Selection{}, false
}
