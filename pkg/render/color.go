package render

import (
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/matzehuels/chartdir/pkg/chart"
)

// transparent is a fully transparent color. The zero drawing.Color means
// "unset" to go-chart styles, so transparency needs non-zero channels.
var transparent = drawing.Color{R: 255, G: 255, B: 255, A: 0}

// colors converts model colors against one chart's palette and dynamic
// color table.
type colors struct {
	c *chart.Chart
}

// resolve returns the explicit color for col. fallback replaces Auto.
func (p colors) resolve(col, fallback chart.Color) chart.Color {
	if col == chart.Auto {
		col = fallback
	}
	return p.c.Resolve(col)
}

// draw converts col to a go-chart color. Auto with an Auto fallback comes
// back transparent.
func (p colors) draw(col, fallback chart.Color) drawing.Color {
	v := p.resolve(col, fallback)
	if v == chart.Auto {
		return transparent
	}
	r, g, b, a := v.RGBA()
	if a == 0 {
		return transparent
	}
	return drawing.Color{R: r, G: g, B: b, A: a}
}

// visible reports whether col draws anything.
func (p colors) visible(col, fallback chart.Color) bool {
	return p.draw(col, fallback).A != 0
}

// dash returns the dash pattern of a dash line color, if any.
func (p colors) dash(col chart.Color) []float64 {
	return p.c.Dash(col)
}

// data returns the i-th data color of the palette.
func (p colors) data(i int) chart.Color {
	return p.c.Colors().DataEntry(i)
}

// palette adapts the chart palette to go-chart's defaults for anything the
// renderer does not style explicitly.
type palette struct {
	colors
}

var _ gochart.ColorPalette = palette{}

func (p palette) BackgroundColor() drawing.Color {
	return p.draw(chart.BackgroundColor, chart.Auto)
}

func (p palette) BackgroundStrokeColor() drawing.Color {
	return p.draw(chart.LineColor, chart.Auto)
}

func (p palette) CanvasColor() drawing.Color {
	return transparent
}

func (p palette) CanvasStrokeColor() drawing.Color {
	return p.draw(chart.LineColor, chart.Auto)
}

func (p palette) AxisStrokeColor() drawing.Color {
	return p.draw(chart.LineColor, chart.Auto)
}

func (p palette) TextColor() drawing.Color {
	return p.draw(chart.TextColor, chart.Auto)
}

func (p palette) GetSeriesColor(index int) drawing.Color {
	return p.draw(p.data(index), chart.Auto)
}
