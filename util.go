package trafficcast

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func lineValue(v *float64) opts.LineData {
	if v == nil {
		return opts.LineData{Value: nil}
	}
	return opts.LineData{Value: *v}
}

func estimateText(name string, e Estimate) string {
	if e.Value == nil {
		return name + ": n/a"
	}
	return fmt.Sprintf("%s: %.1f", name, *e.Value)
}

// LineProjection generates an echart line chart of a projection with the baseline, seasonal
// average, forecast, and observed counts per slot. Missing values leave gaps.
func LineProjection(title string, p *Projection) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title:    title,
				Subtitle: estimateText("Now", p.Now) + "  " + estimateText("ETA", p.ETA),
			},
		),
	)

	labels := make([]string, 0, len(p.Points))
	baselineData := make([]opts.LineData, 0, len(p.Points))
	seasonalData := make([]opts.LineData, 0, len(p.Points))
	forecastData := make([]opts.LineData, 0, len(p.Points))
	actualData := make([]opts.LineData, 0, len(p.Points))

	for _, pt := range p.Points {
		labels = append(labels, pt.Label)
		baselineData = append(baselineData, lineValue(pt.BaselineCount))
		seasonalData = append(seasonalData, lineValue(pt.SeasonalAverageCount))
		forecastData = append(forecastData, lineValue(pt.ForecastCount))
		actualData = append(actualData, lineValue(pt.ActualCount))
	}

	line.SetXAxis(labels).
		AddSeries("Baseline", baselineData).
		AddSeries("Seasonal Average", seasonalData).
		AddSeries("Forecast", forecastData).
		AddSeries("Actual", actualData)
	return line
}

// RenderProjection writes an html page charting the projection
func RenderProjection(w io.Writer, title string, p *Projection) error {
	page := components.NewPage()
	page.AddCharts(LineProjection(title, p))
	return page.Render(w)
}

// PlotProjection writes the projection chart to an html file at path
func PlotProjection(path, title string, p *Projection) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return RenderProjection(file, title, p)
}
