package trafficcast

import (
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aouyang1/go-trafficcast/baseline"
	"github.com/aouyang1/go-trafficcast/clock"
	"github.com/aouyang1/go-trafficcast/holiday"
	"github.com/aouyang1/go-trafficcast/series"
	"github.com/aouyang1/go-trafficcast/timeslot"
	"github.com/aouyang1/go-trafficcast/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// 2024-11-27 10:00 PST, the day before thanksgiving
	morning = time.Date(2024, 11, 27, 18, 0, 0, 0, time.UTC)
	// 2024-11-27 22:00 PST
	night = time.Date(2024, 11, 28, 6, 0, 0, 0, time.UTC)

	wednesday = civil.Date{Year: 2024, Month: 11, Day: 27}
	thursday  = civil.Date{Year: 2024, Month: 11, Day: 28}
)

func val(v float64) *float64 {
	return &v
}

func flat(v float64) baseline.SlotMap {
	m := make(baseline.SlotMap, timeslot.PerDay)
	for i := 0; i < timeslot.PerDay; i++ {
		m[timeslot.FromMinutes(i*15)] = baseline.Slot{AverageCount: v, SampleSize: baseline.SampleSize{Days: 10}}
	}
	return m
}

func testTable() *baseline.Table {
	return &baseline.Table{
		Summer: &baseline.SeasonTable{
			DayOfWeek: map[string]baseline.SlotMap{"wednesday": flat(11), "thursday": flat(21)},
			Seasonal:  flat(8),
		},
		Winter: &baseline.SeasonTable{
			DayOfWeek: map[string]baseline.SlotMap{"wednesday": flat(10), "thursday": flat(20)},
			Holiday:   map[holiday.Key]baseline.SlotMap{"thanksgiving_0": flat(5)},
			Seasonal:  flat(7),
		},
		DSTDatesByYear: map[int]clock.DSTWindow{
			2024: {Start: civil.Date{Year: 2024, Month: 3, Day: 10}, End: civil.Date{Year: 2024, Month: 11, Day: 3}},
		},
	}
}

func testInput(fc *series.Input) Input {
	tbl := testTable()
	return Input{
		Clock:           tbl.Clock("KSFO", -8*time.Hour),
		Baseline:        tbl,
		BaselineVersion: 1,
		Forecast:        fc,
		ForecastVersion: 1,
	}
}

func datedForecast() *series.Input {
	return &series.Input{
		TimeSlots:     []string{"21:00", "22:00", "00:30"},
		ArrivalCounts: []float64{30, 31, 40},
		SlotDates:     []string{"2024-11-27", "2024-11-27", "2024-11-28"},
		ActualCounts:  []*float64{val(29), nil, val(99)},
	}
}

func TestProjectWindow(t *testing.T) {
	testData := map[string]struct {
		eta            time.Time
		expectedWindow window.Window
		expectedLen    int
		expectedETA    int
		expectedLast   string
	}{
		"eta is now": {
			eta:            morning,
			expectedWindow: window.Window{Start: -2, End: 2},
			expectedLen:    17,
			expectedETA:    8,
			expectedLast:   "12:00",
		},
		"eta in five hours": {
			eta:            morning.Add(5 * time.Hour),
			expectedWindow: window.Window{Start: -2, End: 7},
			expectedLen:    37,
			expectedETA:    28,
			expectedLast:   "17:00",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := Project(testInput(nil), morning, td.eta, nil)
			require.True(t, res.Available)
			assert.Equal(t, td.expectedWindow, res.Window)
			require.Len(t, res.Points, td.expectedLen)

			assert.Equal(t, Point{
				Label:                "08:00",
				HoursFromNow:         -2,
				Slot:                 "08:00",
				Date:                 wednesday,
				BaselineCount:        val(10),
				SeasonalAverageCount: val(7),
			}, res.Points[0])
			assert.Equal(t, td.expectedLast, res.Points[len(res.Points)-1].Label)

			assert.Equal(t, Estimate{Index: 8, Value: val(10)}, res.Now)
			assert.Equal(t, Estimate{Index: td.expectedETA, Value: val(10)}, res.ETA)
			assert.Empty(t, res.Diagnostics)
			assert.Nil(t, res.Scores)
		})
	}
}

func TestProjectNoCrossDayLeakage(t *testing.T) {
	res := Project(testInput(datedForecast()), night, night.Add(time.Hour), nil)
	require.True(t, res.Available)
	assert.Equal(t, window.Window{Start: -2, End: 3}, res.Window)
	require.Len(t, res.Points, 21)

	assert.Equal(t, []BaselineRef{
		{Date: wednesday, Found: true, Label: "wednesday", Season: clock.Winter},
		{Date: thursday, Found: true, Label: "thanksgiving_0", Season: clock.Winter, IsHoliday: true},
	}, res.Baselines)

	at2100 := res.Points[4]
	assert.Equal(t, "21:00", at2100.Label)
	assert.Equal(t, val(30), at2100.ForecastCount)
	assert.Equal(t, val(29), at2100.ActualCount)

	tomorrow := res.Points[18]
	assert.Equal(t, timeslot.DatedKey{Date: thursday, Slot: "00:30"}, timeslot.DatedKey{Date: tomorrow.Date, Slot: tomorrow.Slot})
	assert.Equal(t, "Thu 00:30", tomorrow.Label)
	assert.Nil(t, tomorrow.ForecastCount, "tomorrow is neither today nor the eta date")
	assert.Nil(t, tomorrow.ActualCount, "actuals never apply past today")
	assert.Equal(t, val(5), tomorrow.BaselineCount)

	assert.Equal(t, Estimate{Index: 12, Value: val(10)}, res.ETA)
	assert.Equal(t, &Scores{MSE: 1, MAPE: 1.0 / 29.0, Samples: 1}, res.Scores)
}

func TestProjectETATomorrow(t *testing.T) {
	res := Project(testInput(datedForecast()), night, night.Add(150*time.Minute), nil)
	assert.Equal(t, thursday, res.ETADate)
	assert.Equal(t, window.Window{Start: -2, End: 4.5}, res.Window)

	tomorrow := res.Points[18]
	assert.Equal(t, "Thu 00:30", tomorrow.Label)
	assert.Equal(t, val(40), tomorrow.ForecastCount)
	assert.Nil(t, tomorrow.ActualCount)
	assert.Equal(t, Estimate{Index: 18, Value: val(40)}, res.ETA)
}

func TestProjectPrecedence(t *testing.T) {
	res := Project(testInput(datedForecast()), night, night, nil)
	now := res.Points[res.Now.Index]
	require.Equal(t, "22:00", now.Label)
	assert.Equal(t, val(10), now.BaselineCount)
	assert.Equal(t, val(31), res.Now.Value)

	fc := datedForecast()
	fc.TimeSlots[1] = "21:15"
	res = Project(testInput(fc), night, night, nil)
	assert.Nil(t, res.Points[res.Now.Index].ForecastCount)
	assert.Equal(t, val(10), res.Now.Value)
}

func TestProjectIdempotent(t *testing.T) {
	in := testInput(datedForecast())
	first := Project(in, night.Add(20*time.Second), night.Add(time.Hour), nil)
	second := Project(in, night.Add(-25*time.Second), night.Add(time.Hour+10*time.Second), nil)
	assert.Equal(t, first, second)
}

func TestProjectMalformedForecast(t *testing.T) {
	fc := datedForecast()
	fc.ArrivalCounts = fc.ArrivalCounts[:2]

	res := Project(testInput(fc), night, night, nil)
	require.True(t, res.Available)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, componentForecast, res.Diagnostics[0].Component)

	for _, pt := range res.Points {
		assert.Nil(t, pt.ForecastCount)
		assert.NotNil(t, pt.BaselineCount)
	}
	assert.Equal(t, val(29), res.Points[4].ActualCount)
	assert.Equal(t, val(10), res.Now.Value)
	assert.Nil(t, res.Scores)
}

func TestProjectNoBaseline(t *testing.T) {
	in := testInput(nil)
	delete(in.Baseline.Winter.DayOfWeek, "wednesday")

	res := Project(in, morning, morning, nil)
	assert.False(t, res.Available)
	require.Len(t, res.Baselines, 1)
	assert.False(t, res.Baselines[0].Found)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, componentBaseline, res.Diagnostics[0].Component)

	require.NotEmpty(t, res.Points)
	for _, pt := range res.Points {
		assert.Nil(t, pt.BaselineCount)
		assert.Equal(t, val(7), pt.SeasonalAverageCount)
	}
	assert.Equal(t, 8, res.Now.Index)
	assert.Nil(t, res.Now.Value)
}

func TestProjectMissingInputs(t *testing.T) {
	res := Project(Input{}, morning, morning, nil)
	assert.False(t, res.Available)
	assert.Len(t, res.Diagnostics, 2)
	// only the now and eta anchors remain
	require.Len(t, res.Points, 1)
	assert.Equal(t, "18:00", res.Points[0].Label)
	assert.Equal(t, Estimate{Index: 0}, res.Now)
}

func TestProjectLegacyForecast(t *testing.T) {
	// 2024-11-27 23:00 PST
	now := time.Date(2024, 11, 28, 7, 0, 0, 0, time.UTC)
	fc := &series.Input{
		TimeSlots:     []string{"23:00", "00:30"},
		ArrivalCounts: []float64{12, 13},
	}

	res := Project(testInput(fc), now, now, nil)
	assert.Equal(t, val(12), res.Now.Value)

	var found bool
	for _, pt := range res.Points {
		if pt.Date == thursday && pt.Slot == "00:30" {
			found = true
			assert.InDelta(t, 1.5, pt.HoursFromNow, 1e-9)
			assert.Equal(t, val(13), pt.ForecastCount)
		}
	}
	assert.True(t, found)
}

func TestProjectPastETA(t *testing.T) {
	res := Project(testInput(nil), morning, morning.Add(-5*time.Hour), nil)
	assert.Equal(t, Estimate{Index: -1}, res.ETA)
	assert.Equal(t, val(10), res.Now.Value)
}

func TestProjector(t *testing.T) {
	p := New(nil)
	in := testInput(datedForecast())
	eta := night.Add(time.Hour)

	first := p.Project(in, night, eta)
	second := p.Project(in, night.Add(10*time.Second), eta)
	assert.Same(t, first, second)
	assert.Equal(t, uint64(1), p.Hits())

	in.ForecastVersion++
	third := p.Project(in, night, eta)
	assert.NotSame(t, first, third)
	assert.Equal(t, first, third)

	fourth := p.Project(in, night.Add(time.Minute), eta)
	assert.NotSame(t, third, fourth)
	assert.Equal(t, uint64(1), p.Hits())

	p.Reset()
	fifth := p.Project(in, night.Add(time.Minute), eta)
	assert.NotSame(t, fourth, fifth)
}

func TestProjectorConcurrent(t *testing.T) {
	p := New(nil)
	in := testInput(datedForecast())

	var wg sync.WaitGroup
	results := make([]*Projection, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Project(in, night, night)
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		assert.Equal(t, results[0], res)
	}
}
