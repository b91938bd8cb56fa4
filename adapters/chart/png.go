package chart

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/AIR-DISCOVER/ExpertDrivingDataset/domain/signal"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PNGRenderer draws curves with gonum/plot
type PNGRenderer struct {
	Title  string
	YLabel string
	Width  int // points
	Height int // points
}

// NewPNGRenderer returns a renderer with a 1000x500 point canvas
func NewPNGRenderer(title string) *PNGRenderer {
	return &PNGRenderer{Title: title, YLabel: "Baseline-corrected value", Width: 1000, Height: 500}
}

func (r *PNGRenderer) Extension() string { return ".png" }

var groupColors = map[signal.Group]color.RGBA{
	signal.GroupExpert: colornames.Darkmagenta,
	signal.GroupNovice: colornames.Darkcyan,
}

// Render writes the group curves with dashed event boundaries to path
func (r *PNGRenderer) Render(path string, records []signal.TaggedRecord, intervals []signal.Interval) error {
	curves := GroupCurves(records)
	if len(curves) == 0 {
		return fmt.Errorf("chart: no data to plot")
	}

	p := plot.New()
	p.Title.Text = r.Title
	p.X.Label.Text = "Time"
	p.Y.Label.Text = r.YLabel
	p.BackgroundColor = colornames.Snow
	p.Legend.Top = true
	p.Legend.Padding = vg.Points(5)

	for _, c := range curves {
		line, err := plotter.NewLine(toXYs(c))
		if err != nil {
			return fmt.Errorf("chart: %s line: %w", c.Group, err)
		}
		line.Color = groupColors[c.Group]
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(string(c.Group), line)
	}

	lo, hi := valueRange(curves)
	if len(intervals) > 0 {
		for _, x := range eventMarks(intervals) {
			mark, err := plotter.NewLine(plotter.XYs{{X: float64(x), Y: lo}, {X: float64(x), Y: hi}})
			if err != nil {
				return err
			}
			mark.Color = colornames.Gray
			mark.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
			p.Add(mark)
		}

		points := make(plotter.XYs, len(intervals))
		texts := make([]string, len(intervals))
		for i, iv := range intervals {
			points[i] = plotter.XY{X: float64(iv.Start+iv.End) / 2, Y: hi}
			texts[i] = iv.Label
		}
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: points, Labels: texts})
		if err != nil {
			return fmt.Errorf("chart: labels: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].Color = colornames.Darkgreen
		}
		p.Add(labels)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(vg.Points(float64(r.Width)), vg.Points(float64(r.Height)), path)
}

// toXYs drops missing points; gonum/plot rejects NaN
func toXYs(c Curve) plotter.XYs {
	xys := make(plotter.XYs, 0, len(c.Time))
	for i, t := range c.Time {
		if math.IsNaN(c.Mean[i]) {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(t), Y: c.Mean[i]})
	}
	return xys
}
