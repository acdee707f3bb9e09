// Package timeslot handles 15 minute "HH:MM" slot keys and aligns differently keyed slot
// series onto one sorted grid.
package timeslot

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
)

var (
	ErrMalformedKey   = errors.New("time slot is not formatted as HH:MM")
	ErrUnquantizedKey = errors.New("time slot is not aligned to the slot interval")
)

const (
	// Interval is the width of one slot
	Interval = 15 * time.Minute

	// PerDay is the number of slots in a calendar day
	PerDay = int(24 * time.Hour / Interval)

	intervalMinutes = int(Interval / time.Minute)
	minutesPerDay   = 24 * 60
)

// Key is the "HH:MM" start time of a slot within a day
type Key string

// Parse validates s as a quantized slot key
func Parse(s string) (Key, error) {
	if len(s) != 5 || s[2] != ':' {
		return "", fmt.Errorf("%q, %w", s, ErrMalformedKey)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return "", fmt.Errorf("%q hour, %w", s, ErrMalformedKey)
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil || m < 0 || m > 59 {
		return "", fmt.Errorf("%q minute, %w", s, ErrMalformedKey)
	}
	if m%intervalMinutes != 0 {
		return "", fmt.Errorf("%q, %w", s, ErrUnquantizedKey)
	}
	return Key(s), nil
}

// FromMinutes returns the slot containing the given minute of the day. Minutes outside a day
// wrap around.
func FromMinutes(minutes int) Key {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	minutes -= minutes % intervalMinutes
	return Key(fmt.Sprintf("%02d:%02d", minutes/60, minutes%60))
}

// Floor returns the slot containing the wall clock hour and minute
func Floor(hour, minute int) Key {
	return FromMinutes(hour*60 + minute)
}

// Minutes returns the minute of the day the slot starts at. The key is assumed valid.
func (k Key) Minutes() int {
	if len(k) != 5 {
		return 0
	}
	h, _ := strconv.Atoi(string(k[:2]))
	m, _ := strconv.Atoi(string(k[3:]))
	return h*60 + m
}

// Compare orders keys by time of day
func (k Key) Compare(o Key) int {
	return k.Minutes() - o.Minutes()
}

// DatedKey scopes a slot to a calendar date so slots of different days never collide
type DatedKey struct {
	Date civil.Date `json:"date"`
	Slot Key        `json:"slot"`
}

// DatedKeyOf returns the slot containing the wall clock time of t
func DatedKeyOf(t time.Time) DatedKey {
	return DatedKey{
		Date: civil.DateOf(t),
		Slot: Floor(t.Hour(), t.Minute()),
	}
}

// Compare orders dated keys by date and then by time of day
func (k DatedKey) Compare(o DatedKey) int {
	switch {
	case k.Date.Before(o.Date):
		return -1
	case k.Date.After(o.Date):
		return 1
	}
	return k.Slot.Compare(o.Slot)
}

func (k DatedKey) String() string {
	return k.Date.String() + " " + string(k.Slot)
}

// Dated scopes every key to one calendar date
func Dated(d civil.Date, keys []Key) []DatedKey {
	dated := make([]DatedKey, len(keys))
	for i, k := range keys {
		dated[i] = DatedKey{Date: d, Slot: k}
	}
	return dated
}
