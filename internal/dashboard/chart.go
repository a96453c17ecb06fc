package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as a row of block characters scaled between their
// minimum and maximum. A flat series renders at mid height.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	var b strings.Builder
	top := len(sparkBlocks) - 1
	for _, v := range values {
		i := top / 2
		if hi > lo {
			i = int(math.Round((v - lo) / (hi - lo) * float64(top)))
		}
		b.WriteRune(sparkBlocks[i])
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// SVG line chart
// ---------------------------------------------------------------------------

// palette cycles over series.
var palette = []string{"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f", "#edc948", "#b07aa1", "#ff9da7", "#9c755f", "#bab0ac"}

// Point is a chart coordinate with the observation it plots.
type Point struct {
	X, Y  float64
	Label string
	Value float64
}

// Series is one item's polyline.
type Series struct {
	Item   string
	Color  string
	Points []Point
}

// Polyline returns the points in SVG polyline syntax.
func (s Series) Polyline() string {
	parts := make([]string, len(s.Points))
	for i, p := range s.Points {
		parts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

// Tick is an axis label at a chart coordinate.
type Tick struct {
	Pos   float64
	Label string
}

// Chart is a multi-series line chart laid out in a Width x Height box with
// Pad pixels reserved on every side for axes.
type Chart struct {
	Width, Height, Pad float64
	Series             []Series
	XTicks, YTicks     []Tick
}

// Empty reports whether there is nothing to draw.
func (c Chart) Empty() bool { return len(c.Series) == 0 }

// Plot lays out l as one series per item, x by bucket time and y by value.
func Plot(l LongTable, width, height float64, format func(float64) string) Chart {
	const pad = 48
	c := Chart{Width: width, Height: height, Pad: pad}
	if len(l) == 0 {
		return c
	}

	tMin, tMax := l[0].Bucket, l[0].Bucket
	vMin, vMax := l[0].Value, l[0].Value
	for _, o := range l {
		if o.Bucket.Before(tMin) {
			tMin = o.Bucket
		}
		if o.Bucket.After(tMax) {
			tMax = o.Bucket
		}
		vMin = math.Min(vMin, o.Value)
		vMax = math.Max(vMax, o.Value)
	}
	if vMax == vMin {
		vMax, vMin = vMax+1, vMin-1
	}
	span := tMax.Sub(tMin)

	plotW, plotH := width-2*pad, height-2*pad
	x := func(t time.Time) float64 {
		if span == 0 {
			return pad + plotW/2
		}
		return pad + float64(t.Sub(tMin))/float64(span)*plotW
	}
	y := func(v float64) float64 {
		return pad + (vMax-v)/(vMax-vMin)*plotH
	}

	idx := make(map[string]int)
	for _, o := range l {
		i, ok := idx[o.Item]
		if !ok {
			i = len(c.Series)
			idx[o.Item] = i
			c.Series = append(c.Series, Series{Item: o.Item, Color: palette[i%len(palette)]})
		}
		c.Series[i].Points = append(c.Series[i].Points, Point{X: x(o.Bucket), Y: y(o.Value), Label: o.Label, Value: o.Value})
	}

	const ticks = 4
	for i := 0; i <= ticks; i++ {
		v := vMin + (vMax-vMin)*float64(i)/ticks
		c.YTicks = append(c.YTicks, Tick{Pos: y(v), Label: format(v)})
	}
	c.XTicks = append(c.XTicks, Tick{Pos: x(tMin), Label: tMin.Format("01-02 15:04")})
	if span > 0 {
		c.XTicks = append(c.XTicks, Tick{Pos: x(tMax), Label: tMax.Format("01-02 15:04")})
	}
	return c
}
