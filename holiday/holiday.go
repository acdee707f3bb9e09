// Package holiday maps a local calendar date to a holiday-offset key such as "christmas_-1".
package holiday

import (
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

const (
	Christmas       = "christmas"
	Thanksgiving    = "thanksgiving"
	IndependenceDay = "independence_day"
	NewYearsDay     = "new_years_day"
)

// Key identifies a holiday and the signed day offset from it, e.g. "thanksgiving_0"
type Key string

// NewKey formats a holiday name and day offset as a Key
func NewKey(name string, offset int) Key {
	return Key(name + "_" + strconv.Itoa(offset))
}

// Holiday returns the holiday name portion of the key
func (k Key) Holiday() string {
	idx := strings.LastIndex(string(k), "_")
	if idx < 0 {
		return string(k)
	}
	return string(k)[:idx]
}

// Offset returns the signed day offset portion of the key
func (k Key) Offset() (int, error) {
	idx := strings.LastIndex(string(k), "_")
	if idx < 0 {
		return 0, fmt.Errorf("no offset in holiday key %q", string(k))
	}
	return strconv.Atoi(string(k)[idx+1:])
}

// Holiday is a tracked holiday and the day offsets around it that get their own baseline
type Holiday struct {
	Name    string
	Def     *cal.Holiday
	Offsets []int
}

// Catalogue lists the holidays with dedicated baselines. Order is the classification order.
var Catalogue = []Holiday{
	{Name: Christmas, Def: us.ChristmasDay, Offsets: []int{-1, 0, 1}},
	{Name: Thanksgiving, Def: us.ThanksgivingDay, Offsets: []int{-1, 0, 1}},
	{Name: IndependenceDay, Def: us.IndependenceDay, Offsets: []int{-1, 0, 1}},
	{Name: NewYearsDay, Def: us.NewYear, Offsets: []int{0, 1, 2}},
}

// Date returns the actual (not observed) date of the holiday in a year
func (h Holiday) Date(year int) (civil.Date, bool) {
	actual, _ := h.Def.Calc(year)
	if actual.IsZero() {
		return civil.Date{}, false
	}
	return civil.Date{Year: actual.Year(), Month: actual.Month(), Day: actual.Day()}, true
}

// Classify returns the holiday-offset key for a local date. Distances are whole calendar days
// to the holiday in the same calendar year, so Dec 31 is never new_years_day_-1.
func Classify(d civil.Date) (Key, bool) {
	for _, h := range Catalogue {
		hd, ok := h.Date(d.Year)
		if !ok {
			continue
		}
		dist := d.DaysSince(hd)
		for _, offset := range h.Offsets {
			if dist == offset {
				return NewKey(h.Name, offset), true
			}
		}
	}
	return "", false
}

// Date returns the date of a catalogued holiday by name
func Date(name string, year int) (civil.Date, bool) {
	for _, h := range Catalogue {
		if h.Name == name {
			return h.Date(year)
		}
	}
	return civil.Date{}, false
}
