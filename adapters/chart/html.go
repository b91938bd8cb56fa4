package chart

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// HTMLRenderer draws curves as an interactive go-echarts page
type HTMLRenderer struct {
	Title    string
	Subtitle string
}

// NewHTMLRenderer creates an HTML renderer
func NewHTMLRenderer(title, subtitle string) *HTMLRenderer {
	return &HTMLRenderer{Title: title, Subtitle: subtitle}
}

func (r *HTMLRenderer) Extension() string { return ".html" }

// Build assembles the line chart without writing it
func (r *HTMLRenderer) Build(records []signal.TaggedRecord, intervals []signal.Interval) (*charts.Line, error) {
	curves := GroupCurves(records)
	if len(curves) == 0 {
		return nil, fmt.Errorf("chart: no data to plot")
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    r.Title,
			Subtitle: r.Subtitle,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "Time",
			Type: "category",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	axis := make([]string, len(curves[0].Time))
	for i, t := range curves[0].Time {
		axis[i] = strconv.Itoa(t)
	}
	line.SetXAxis(axis)

	for i, c := range curves {
		items := make([]opts.LineData, len(c.Mean))
		for j, v := range c.Mean {
			if math.IsNaN(v) {
				// echarts treats "-" as a gap
				items[j] = opts.LineData{Value: "-"}
				continue
			}
			items[j] = opts.LineData{Value: v}
		}
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineStyleOpts(opts.LineStyle{Width: 2}),
		}
		if i == 0 {
			for _, iv := range intervals {
				seriesOpts = append(seriesOpts, charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{
					Name:  iv.Label,
					XAxis: strconv.Itoa(iv.Start),
				}))
			}
		}
		line.AddSeries(string(c.Group), items, seriesOpts...)
	}
	return line, nil
}

// Render writes the chart page to path
func (r *HTMLRenderer) Render(path string, records []signal.TaggedRecord, intervals []signal.Interval) error {
	line, err := r.Build(records, intervals)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := line.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("chart: render %s: %w", path, err)
	}
	return f.Close()
}
