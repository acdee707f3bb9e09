// Package clock converts instants between universal time and an airport's local wall clock.
// Daylight saving is driven by the airport supplied table of DST windows per year rather than
// a timezone database, so the airport data owner decides when summer time applies.
package clock

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

var ErrInvalidWindow = errors.New("dst window end is not after start")

// DefaultDSTSaving is the shift applied on top of the standard offset inside a DST window
const DefaultDSTSaving = time.Hour

// Season is the baseline bucket a local date belongs to. Dates inside the airport's DST window
// are summer, everything else is winter.
type Season string

const (
	Summer Season = "summer"
	Winter Season = "winter"
)

// Other returns the opposite season
func (s Season) Other() Season {
	if s == Summer {
		return Winter
	}
	return Summer
}

// MissingYearPolicy decides the season for a date whose year has no DST window in the table.
type MissingYearPolicy string

const (
	// AssumeSummer treats every date of an untabulated year as summer
	AssumeSummer MissingYearPolicy = "assume_summer"
	// AssumeWinter treats every date of an untabulated year as winter
	AssumeWinter MissingYearPolicy = "assume_winter"
	// NearestYear reuses the month and day of the closest tabulated year's window
	NearestYear MissingYearPolicy = "nearest_year"
)

// DefaultMissingYearPolicy is used when an AirportClock leaves the policy unset
const DefaultMissingYearPolicy = AssumeSummer

// DSTWindow is the inclusive start and exclusive end date of daylight saving for one year.
type DSTWindow struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
}

// Contains reports whether d falls in [Start, End)
func (w DSTWindow) Contains(d civil.Date) bool {
	return !d.Before(w.Start) && d.Before(w.End)
}

// shiftYear moves the window by the difference between its start year and the target year
func (w DSTWindow) shiftYear(year int) DSTWindow {
	delta := year - w.Start.Year
	return DSTWindow{
		Start: dateIn(w.Start.Year+delta, w.Start.Month, w.Start.Day),
		End:   dateIn(w.End.Year+delta, w.End.Month, w.End.Day),
	}
}

// dateIn normalizes dates like Feb 29 of a non leap year
func dateIn(year int, month time.Month, day int) civil.Date {
	return civil.DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// AirportClock holds the standard UTC offset of an airport and its DST table. It is immutable
// after load and safe to share between goroutines.
type AirportClock struct {
	Airport        string            `json:"airport"`
	UTCOffset      time.Duration     `json:"utc_offset"`
	DSTSaving      time.Duration     `json:"dst_saving"`
	DSTDatesByYear map[int]DSTWindow `json:"dst_dates_by_year"`
	MissingYear    MissingYearPolicy `json:"missing_year"`
}

// New creates an AirportClock with the default DST saving and missing year policy
func New(airport string, utcOffset time.Duration, dstDatesByYear map[int]DSTWindow) *AirportClock {
	if dstDatesByYear == nil {
		dstDatesByYear = make(map[int]DSTWindow)
	}
	return &AirportClock{
		Airport:        airport,
		UTCOffset:      utcOffset,
		DSTSaving:      DefaultDSTSaving,
		DSTDatesByYear: dstDatesByYear,
		MissingYear:    DefaultMissingYearPolicy,
	}
}

// Validate checks that every tabulated window has an end after its start
func (c *AirportClock) Validate() error {
	for year, w := range c.DSTDatesByYear {
		if !w.End.After(w.Start) {
			return fmt.Errorf("year %d window %s to %s, %w", year, w.Start, w.End, ErrInvalidWindow)
		}
	}
	return nil
}

func (c *AirportClock) saving() time.Duration {
	if c.DSTSaving == 0 {
		return DefaultDSTSaving
	}
	return c.DSTSaving
}

func (c *AirportClock) policy() MissingYearPolicy {
	if c.MissingYear == "" {
		return DefaultMissingYearPolicy
	}
	return c.MissingYear
}

// window returns the DST window used for a year, resolving untabulated years through the
// nearest year policy when configured.
func (c *AirportClock) window(year int) (DSTWindow, bool) {
	if w, exists := c.DSTDatesByYear[year]; exists {
		return w, true
	}
	if c.policy() != NearestYear || len(c.DSTDatesByYear) == 0 {
		return DSTWindow{}, false
	}

	nearest := 0
	found := false
	for y := range c.DSTDatesByYear {
		if !found || absInt(y-year) < absInt(nearest-year) ||
			(absInt(y-year) == absInt(nearest-year) && y < nearest) {
			nearest = y
			found = true
		}
	}
	return c.DSTDatesByYear[nearest].shiftYear(year), true
}

// Season classifies a local calendar date as summer when it is inside the year's DST window.
// Years without a window follow the missing year policy and never fail.
func (c *AirportClock) Season(d civil.Date) Season {
	w, ok := c.window(d.Year)
	if !ok {
		slog.Debug("no dst window for year, applying policy",
			"airport", c.Airport, "year", d.Year, "policy", string(c.policy()))
		if c.policy() == AssumeWinter {
			return Winter
		}
		return Summer
	}
	if w.Contains(d) {
		return Summer
	}
	return Winter
}

// Offset returns the UTC offset in effect on a local calendar date
func (c *AirportClock) Offset(d civil.Date) time.Duration {
	if c.Season(d) == Summer {
		return c.UTCOffset + c.saving()
	}
	return c.UTCOffset
}

func (c *AirportClock) zone(offset time.Duration) *time.Location {
	name := c.Airport
	if name == "" {
		name = "LOCAL"
	}
	return time.FixedZone(name, int(offset/time.Second))
}

// UTCToLocal returns t in a fixed zone carrying the airport's effective offset so the wall
// clock fields read as local time. The offset is chosen from the calendar date of t at the
// standard offset.
func (c *AirportClock) UTCToLocal(t time.Time) time.Time {
	std := t.UTC().Add(c.UTCOffset)
	offset := c.Offset(civil.DateOf(std))
	return t.In(c.zone(offset))
}

// LocalToUTC is the inverse of UTCToLocal. The local value must carry the offset it was
// produced with; bare wall clock values go through WallToUTC instead.
func (c *AirportClock) LocalToUTC(local time.Time) time.Time {
	_, offset := local.Zone()
	wall := time.Date(local.Year(), local.Month(), local.Day(),
		local.Hour(), local.Minute(), local.Second(), local.Nanosecond(), time.UTC)
	return wall.Add(-time.Duration(offset) * time.Second)
}

// WallToUTC resolves a wall clock reading at the airport to an instant using the offset of the
// reading's calendar date.
func (c *AirportClock) WallToUTC(dt civil.DateTime) time.Time {
	return dt.In(time.UTC).Add(-c.Offset(dt.Date))
}

// LocalDate returns the airport local calendar date of t
func (c *AirportClock) LocalDate(t time.Time) civil.Date {
	return civil.DateOf(c.UTCToLocal(t))
}

// WeekdayName returns the lowercase English weekday name of a calendar date
func WeekdayName(d civil.Date) string {
	return strings.ToLower(d.In(time.UTC).Weekday().String())
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
