// Command projectplot projects airport traffic from a baseline table and an optional live
// forecast, prints the projection as json, and charts it to an html file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	trafficcast "github.com/aouyang1/go-trafficcast"
	"github.com/aouyang1/go-trafficcast/baseline"
	"github.com/aouyang1/go-trafficcast/clock"
	"github.com/aouyang1/go-trafficcast/series"
	"github.com/goccy/go-json"
)

func parseTime(name, s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse -%s, %w", name, err)
	}
	return t, nil
}

func loadInput(baselinePath, forecastPath, airport string, offset time.Duration, missingYear string) (trafficcast.Input, error) {
	var in trafficcast.Input

	data, err := os.ReadFile(baselinePath)
	if err != nil {
		return in, err
	}
	tbl, err := baseline.Decode(data)
	if err != nil {
		return in, err
	}
	in.Baseline = tbl
	in.Clock = tbl.Clock(airport, offset)
	if missingYear != "" {
		in.Clock.MissingYear = clock.MissingYearPolicy(missingYear)
	}
	if err := in.Clock.Validate(); err != nil {
		return in, err
	}

	if forecastPath == "" {
		return in, nil
	}
	data, err = os.ReadFile(forecastPath)
	if err != nil {
		return in, err
	}
	fc, err := series.Decode(data)
	if err != nil {
		return in, err
	}
	in.Forecast = fc
	return in, nil
}

func run() error {
	var (
		baselinePath string
		forecastPath string
		airport      string
		utcOffset    time.Duration
		missingYear  string
		nowStr       string
		etaStr       string
		out          string
		verbose      bool
	)
	flag.StringVar(&baselinePath, "baseline", "", "path to the airport baseline table json")
	flag.StringVar(&forecastPath, "forecast", "", "optional path to the live forecast json")
	flag.StringVar(&airport, "airport", "", "airport code used in the chart title")
	flag.DurationVar(&utcOffset, "utc-offset", 0, "standard (winter) UTC offset of the airport, e.g. -8h")
	flag.StringVar(&missingYear, "missing-year", "", "season policy for years without DST dates: assume_summer, assume_winter, nearest_year")
	flag.StringVar(&nowStr, "now", "", "projection time (RFC3339), defaults to the current time")
	flag.StringVar(&etaStr, "eta", "", "selected ETA (RFC3339), defaults to now")
	flag.StringVar(&out, "out", "", "optional html chart output path")
	flag.BoolVar(&verbose, "v", false, "log debug messages")
	flag.Parse()

	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	if baselinePath == "" {
		return fmt.Errorf("-baseline is required")
	}

	now, err := parseTime("now", nowStr, time.Now().UTC())
	if err != nil {
		return err
	}
	eta, err := parseTime("eta", etaStr, now)
	if err != nil {
		return err
	}

	in, err := loadInput(baselinePath, forecastPath, airport, utcOffset, missingYear)
	if err != nil {
		return err
	}

	res := trafficcast.New(nil).Project(in, now, eta)
	slog.Info("projected traffic",
		"airport", airport,
		"available", res.Available,
		"points", len(res.Points),
		"diagnostics", len(res.Diagnostics),
	)

	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))

	if out == "" {
		return nil
	}
	title := airport + " arrivals"
	if err := trafficcast.PlotProjection(out, title, res); err != nil {
		return fmt.Errorf("unable to plot projection, %w", err)
	}
	slog.Info("wrote projection chart", "path", out)
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("projectplot failed", "error", err.Error())
		os.Exit(1)
	}
}
