package trafficcast

import (
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aouyang1/go-trafficcast/baseline"
	"github.com/aouyang1/go-trafficcast/clock"
	"github.com/aouyang1/go-trafficcast/series"
	"github.com/aouyang1/go-trafficcast/timeslot"
	"github.com/aouyang1/go-trafficcast/window"
)

const (
	componentClock    = "clock"
	componentBaseline = "baseline"
	componentForecast = "forecast"
	componentActuals  = "actuals"
	componentScores   = "scores"
)

// Input bundles the per airport data a projection is computed from. The version numbers are
// bumped by the caller whenever the baseline or forecast content changes.
type Input struct {
	Clock           *clock.AirportClock
	Baseline        *baseline.Table
	BaselineVersion uint64
	Forecast        *series.Input
	ForecastVersion uint64
}

// source is one series laid out on dated keys with parallel values
type source struct {
	keys   []timeslot.DatedKey
	values []float64
}

func (s *source) add(k timeslot.DatedKey, v float64) {
	s.keys = append(s.keys, k)
	s.values = append(s.values, v)
}

func fromSeries(s *series.Series) source {
	var src source
	if s == nil {
		return src
	}
	for _, p := range s.Points {
		src.add(p.Key, p.Count)
	}
	return src
}

// indices of the aligned sources
const (
	srcBaseline = iota
	srcSeasonal
	srcForecast
	srcActuals
	srcAnchors
)

type merger struct {
	in  Input
	opt *Options

	clk      *clock.AirportClock
	now      time.Time // airport local
	eta      time.Time // airport local
	today    civil.Date
	etaDate  civil.Date
	forecast *series.Series

	res *Projection
}

func (p *merger) diagnose(component string, msg string, args ...any) {
	slog.Warn(msg, append([]any{"component", component}, args...)...)
	text := msg
	for i := 0; i+1 < len(args); i += 2 {
		text += fmt.Sprintf(" %v=%v", args[i], args[i+1])
	}
	p.res.Diagnostics = append(p.res.Diagnostics, Diagnostic{Component: component, Message: text})
}

// Project merges the baseline, live forecast, and observed counts of an airport into an
// "hours from now" projection between the window policy bounds. Now is sampled once by the
// caller and rounded to the options' granularity, so identical inputs within the same minute
// produce identical projections. Data quality problems are recovered and reported in the
// projection's Diagnostics; Project never fails.
func Project(in Input, now, eta time.Time, opt *Options) *Projection {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	p := &merger{
		in:  in,
		opt: opt,
		res: &Projection{
			Now: Estimate{Index: -1},
			ETA: Estimate{Index: -1},
		},
	}

	p.clk = in.Clock
	if p.clk == nil {
		p.diagnose(componentClock, "no airport clock, projecting in utc")
		p.clk = clock.New("UTC", 0, nil)
		p.clk.MissingYear = clock.AssumeWinter
	}

	if opt.NowRounding > 0 {
		now = now.Round(opt.NowRounding)
		eta = eta.Round(opt.NowRounding)
	}
	p.now = p.clk.UTCToLocal(now)
	p.eta = p.clk.UTCToLocal(eta)
	p.today = civil.DateOf(p.now)
	p.etaDate = civil.DateOf(p.eta)

	p.res.Window = opt.WindowPolicy.Window(now, eta)
	p.res.Today = p.today
	p.res.ETADate = p.etaDate

	baselineSrc, seasonalSrc := p.baselines()
	forecastSrc, actualsSrc := p.live()

	nowKey := timeslot.DatedKeyOf(p.now)
	etaKey := timeslot.DatedKeyOf(p.eta)
	anchors := []timeslot.DatedKey{nowKey, etaKey}

	al := timeslot.AlignFunc(timeslot.DatedKey.Compare,
		baselineSrc.keys, seasonalSrc.keys, forecastSrc.keys, actualsSrc.keys, anchors)

	rel := window.Build(al.Keys, p.now, p.res.Window)
	p.res.Points = make([]Point, 0, len(rel))
	for i, r := range rel {
		pos, _ := al.Position(r.Key())
		pt := Point{
			Label:                r.Label,
			HoursFromNow:         r.HoursFromNow,
			Slot:                 r.Slot,
			Date:                 r.Date,
			BaselineCount:        valueAt(al, srcBaseline, pos, baselineSrc),
			SeasonalAverageCount: valueAt(al, srcSeasonal, pos, seasonalSrc),
		}
		if p.forecastApplies(r.Date) {
			pt.ForecastCount = valueAt(al, srcForecast, pos, forecastSrc)
		}
		if r.Date == p.today {
			pt.ActualCount = valueAt(al, srcActuals, pos, actualsSrc)
		}
		p.res.Points = append(p.res.Points, pt)

		if r.Key() == nowKey {
			p.res.Now.Index = i
		}
		if r.Key() == etaKey {
			p.res.ETA.Index = i
		}
	}

	p.res.Now.Value = p.expectedAt(p.res.Now.Index)
	p.res.ETA.Value = p.expectedAt(p.res.ETA.Index)
	p.score()
	return p.res
}

// baselines selects a curve for every calendar date the window touches and lays the selected
// and seasonal curves out on dated keys.
func (p *merger) baselines() (source, source) {
	var selected, seasonal source
	if p.in.Baseline == nil {
		p.diagnose(componentBaseline, "no baseline table")
		return selected, seasonal
	}

	for _, d := range window.Dates(p.now, p.res.Window) {
		dt := baseline.Classify(d, p.clk)
		sel, found := p.in.Baseline.Select(dt)
		ref := BaselineRef{Date: d, Found: found, Season: dt.Season}
		if found {
			ref.Label = sel.Label
			ref.Season = sel.Season
			ref.IsHoliday = sel.IsHoliday
			for _, k := range sel.Slots.Keys() {
				selected.add(timeslot.DatedKey{Date: d, Slot: k}, sel.Slots[k].AverageCount)
			}
		} else {
			p.diagnose(componentBaseline, "no baseline for date",
				"date", d.String(), "season", string(dt.Season), "weekday", dt.Weekday, "holiday", string(dt.Holiday))
		}
		if d == p.today {
			p.res.Available = found
		}
		p.res.Baselines = append(p.res.Baselines, ref)

		if m, ok := p.in.Baseline.Seasonal(dt.Season); ok {
			for _, k := range m.Keys() {
				seasonal.add(timeslot.DatedKey{Date: d, Slot: k}, m[k].AverageCount)
			}
		}
	}
	return selected, seasonal
}

// live normalizes the forecast payload. A malformed forecast or actuals series is dropped on
// its own so baseline only rendering still works.
func (p *merger) live() (source, source) {
	if p.in.Forecast == nil {
		return source{}, source{}
	}

	fc, err := p.in.Forecast.Forecast(p.now)
	if err != nil {
		p.diagnose(componentForecast, "dropping forecast series", "error", err.Error())
		fc = nil
	}
	p.forecast = fc

	act, err := p.in.Forecast.Actuals(p.now)
	if err != nil {
		p.diagnose(componentActuals, "dropping actuals series", "error", err.Error())
		act = nil
	}
	return fromSeries(fc), fromSeries(act)
}

// forecastApplies limits forecast values to today and the ETA date. Date-less forecasts are
// nominally today.
func (p *merger) forecastApplies(d civil.Date) bool {
	if p.forecast != nil && p.forecast.Legacy {
		return true
	}
	return d == p.today || d == p.etaDate
}

func valueAt(al *timeslot.Alignment[timeslot.DatedKey], s, pos int, src source) *float64 {
	j := al.Index[s][pos]
	if j == timeslot.Missing {
		return nil
	}
	v := src.values[j]
	return &v
}

func (p *merger) expectedAt(idx int) *float64 {
	if idx < 0 || idx >= len(p.res.Points) {
		return nil
	}
	return p.res.Points[idx].Expected()
}

// score compares forecast and observed counts wherever both exist in the window
func (p *merger) score() {
	var predicted, actual []float64
	for _, pt := range p.res.Points {
		if pt.ForecastCount == nil || pt.ActualCount == nil {
			continue
		}
		predicted = append(predicted, *pt.ForecastCount)
		actual = append(actual, *pt.ActualCount)
	}
	if len(actual) == 0 {
		return
	}
	scores, err := NewScores(predicted, actual)
	if err != nil {
		p.diagnose(componentScores, "unable to score forecast", "error", err.Error())
		return
	}
	p.res.Scores = scores
}
