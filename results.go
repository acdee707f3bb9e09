package trafficcast

import (
	"cloud.google.com/go/civil"
	"github.com/aouyang1/go-trafficcast/clock"
	"github.com/aouyang1/go-trafficcast/timeslot"
	"github.com/aouyang1/go-trafficcast/window"
)

// Point is one charted slot of a projection. Nil counts mean the source has no value there.
type Point struct {
	Label                string       `json:"label"`
	HoursFromNow         float64      `json:"hoursFromNow"`
	Slot                 timeslot.Key `json:"timeSlot"`
	Date                 civil.Date   `json:"calendarDate"`
	BaselineCount        *float64     `json:"baselineCount"`
	SeasonalAverageCount *float64     `json:"seasonalAverageCount"`
	ForecastCount        *float64     `json:"forecastCount"`
	ActualCount          *float64     `json:"actualCount"`
}

// Expected prefers the forecast over the baseline
func (p Point) Expected() *float64 {
	if p.ForecastCount != nil {
		return p.ForecastCount
	}
	return p.BaselineCount
}

// Estimate is the expected traffic at one point of the projection. Index is -1 when the slot
// is not inside the window.
type Estimate struct {
	Index int      `json:"index"`
	Value *float64 `json:"value"`
}

// BaselineRef records which baseline curve was used for a calendar date of the window
type BaselineRef struct {
	Date      civil.Date   `json:"date"`
	Found     bool         `json:"found"`
	Label     string       `json:"label"`
	Season    clock.Season `json:"season"`
	IsHoliday bool         `json:"isHoliday"`
}

// Diagnostic is a recovered data quality problem met while projecting
type Diagnostic struct {
	Component string `json:"component"`
	Message   string `json:"message"`
}

// Projection is the merged "hours from now" view of baseline, forecast, and observed counts.
// Available is false when no baseline curve exists for today.
type Projection struct {
	Available   bool          `json:"available"`
	Window      window.Window `json:"window"`
	Today       civil.Date    `json:"today"`
	ETADate     civil.Date    `json:"etaDate"`
	Baselines   []BaselineRef `json:"baselines"`
	Points      []Point       `json:"points"`
	Now         Estimate      `json:"now"`
	ETA         Estimate      `json:"eta"`
	Scores      *Scores       `json:"scores,omitempty"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"`
}
