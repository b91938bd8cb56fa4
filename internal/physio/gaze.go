package physio

import "math"

// Screen is the eye-tracker display resolution in pixels
type Screen struct {
	Width  float64 `mapstructure:"width"`
	Height float64 `mapstructure:"height"`
}

// DefaultScreen is the 1920x1080 display used in the driving simulator
var DefaultScreen = Screen{Width: 1920, Height: 1080}

// GridNumber maps a gaze point to one of nine screen regions numbered
// row-major from 1. The centre region is a W/7 x H/7 box and is always 5;
// the outer bands split the remaining space evenly.
func (s Screen) GridNumber(x, y float64) int {
	centerW := s.Width / 7
	centerH := s.Height / 7
	outerW := (s.Width - centerW) / 2
	outerH := (s.Height - centerH) / 2

	if x >= outerW && x < outerW+centerW && y >= outerH && y < outerH+centerH {
		return 5
	}

	col := band(x, outerW, centerW)
	row := band(y, outerH, centerH)
	return row*3 + col + 1
}

// GridNumbers labels every sample; 0 marks a missing coordinate
func (s Screen) GridNumbers(xs, ys []float64) []int {
	out := make([]int, len(xs))
	for i := range xs {
		if i >= len(ys) || math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		out[i] = s.GridNumber(xs[i], ys[i])
	}
	return out
}

func band(v, outer, center float64) int {
	switch {
	case v < outer:
		return 0
	case v < outer+center:
		return 1
	default:
		return 2
	}
}
