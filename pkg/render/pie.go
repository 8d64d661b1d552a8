package render

import (
	"math"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/matzehuels/chartdir/pkg/chart"
)

// pie builds a go-chart PieChart. Sectors without a positive value are
// left out; a pie with nothing to draw renders as a blank chart.
func (b *builder) pie() (drawable, error) {
	c := b.c
	label := b.style(chart.Font{Size: 8, Color: chart.TextColor})
	edge := b.col.draw(chart.LineColor, chart.Auto)

	var values []gochart.Value
	for i, v := range c.Pie.Data {
		name := ""
		if i < len(c.Pie.Labels) {
			name = c.Pie.Labels[i]
		}
		fill := b.col.draw(b.col.data(i), chart.Auto)
		b.legend = append(b.legend, legendEntry{name: name, fill: fill, edge: edge})
		if v == chart.NoValue || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		if name == "" {
			name = strconv.FormatFloat(v, 'g', -1, 64)
		}
		values = append(values, gochart.Value{
			Value: v,
			Label: name,
			Style: gochart.Style{
				FillColor:   fill,
				StrokeColor: edge,
				StrokeWidth: 1,
				Font:        label.font,
				FontSize:    label.size,
				FontColor:   label.color,
			},
		})
	}
	if len(values) == 0 {
		return b.blank(), nil
	}

	bg := b.background()
	if r := c.Pie.Radius; r > 0 {
		bg.Padding = gochart.Box{
			Top:    max(0, c.Pie.Y-r),
			Left:   max(0, c.Pie.X-r),
			Right:  max(0, c.Width-(c.Pie.X+r)),
			Bottom: max(0, c.Height-(c.Pie.Y+r)),
			IsSet:  true,
		}
	}
	return &gochart.PieChart{
		Width:        c.Width,
		Height:       c.Height,
		DPI:          dpi,
		Font:         b.font,
		ColorPalette: palette{b.col},
		Background:   bg,
		Canvas:       gochart.Style{FillColor: transparent, StrokeColor: transparent},
		Values:       values,
		Elements:     b.elements(),
	}, nil
}

// blank renders only the background, titles, legend and text.
func (b *builder) blank() drawable {
	hidden := gochart.Style{Hidden: true}
	unit := func() *gochart.ContinuousRange { return &gochart.ContinuousRange{Min: 0, Max: 1} }
	return &gochart.Chart{
		Width:          b.c.Width,
		Height:         b.c.Height,
		DPI:            dpi,
		Font:           b.font,
		ColorPalette:   palette{b.col},
		Background:     b.background(),
		Canvas:         gochart.Style{FillColor: transparent, StrokeColor: transparent},
		XAxis:          gochart.XAxis{Style: hidden, Range: unit()},
		YAxis:          gochart.YAxis{Style: hidden, Range: unit()},
		YAxisSecondary: gochart.YAxis{Style: hidden, Range: unit()},
		Series: []gochart.Series{
			overlay{name: "blank", draw: func(gochart.Renderer, gochart.Box, gochart.Range, gochart.Range) {}},
		},
		Elements: b.elements(),
	}
}
