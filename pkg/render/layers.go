package render

import (
	"math"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/matzehuels/chartdir/pkg/chart"
)

// defaultBarGap is the fraction of each x slot left empty between bars.
const defaultBarGap = 0.2

// point is one plotted value in data space. Stacked points carry the
// bottom of their segment in lo.
type point struct {
	lo, hi  float64
	ok      bool
	stacked bool
}

// stackLayer returns the plotted points of every data set. With the Stack
// combine method each value sits on top of the values before it; positive
// and negative values stack separately.
func stackLayer(l *chart.Layer) [][]point {
	stack := l.CombineMethod() == chart.Stack
	var pos, neg []float64
	out := make([][]point, len(l.DataSets))
	for j, ds := range l.DataSets {
		pts := make([]point, len(ds.Values))
		for i, v := range ds.Values {
			if v == chart.NoValue || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			if !stack {
				pts[i] = point{hi: v, ok: true}
				continue
			}
			for len(pos) <= i {
				pos, neg = append(pos, 0), append(neg, 0)
			}
			base := &pos[i]
			if v < 0 {
				base = &neg[i]
			}
			pts[i] = point{lo: *base, hi: *base + v, ok: true, stacked: true}
			*base += v
		}
		out[j] = pts
	}
	return out
}

// legendEntry is one line of the legend.
type legendEntry struct {
	name   string
	fill   drawing.Color
	edge   drawing.Color
	line   bool
	symbol chart.Symbol
}

// layerSeries builds go-chart series for every layer in slot order. Auto
// colors take consecutive data colors across layers.
func (p *plot) layerSeries() []gochart.Series {
	var out []gochart.Series
	next := 0
	for _, l := range p.b.c.Layers {
		if l == nil {
			continue
		}
		switch l.Type {
		case chart.LayerLine:
			out = append(out, p.lineLayer(l, &next, false)...)
		case chart.LayerArea:
			out = append(out, p.lineLayer(l, &next, true)...)
		case chart.LayerTrend:
			out = append(out, p.trendLayer(l, &next)...)
		case chart.LayerBar:
			out = append(out, p.barLayer(l, &next))
		}
	}
	return out
}

// dataColor resolves a data set color, taking the next palette data color
// for Auto.
func (p *plot) dataColor(col chart.Color, next *int) chart.Color {
	fallback := p.b.col.data(*next)
	*next++
	if col == chart.Auto {
		return fallback
	}
	return col
}

// runs splits a data set into runs of consecutive plottable points.
func (p *plot) runs(pts []point) [][][2]float64 {
	var out [][][2]float64
	var cur [][2]float64
	for i, pt := range pts {
		v, ok := p.y.value(pt.hi)
		if !pt.ok || !ok {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, [2]float64{float64(i), v})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func continuous(name string, run [][2]float64, yAxis gochart.YAxisType, style gochart.Style) gochart.ContinuousSeries {
	s := gochart.ContinuousSeries{Name: name, YAxis: yAxis, Style: style}
	for _, pt := range run {
		s.XValues = append(s.XValues, pt[0])
		s.YValues = append(s.YValues, pt[1])
	}
	return s
}

func (p *plot) lineLayer(l *chart.Layer, next *int, area bool) []gochart.Series {
	col := p.b.col
	sets := stackLayer(l)
	width := float64(l.LineWidth)
	if width <= 0 {
		width = 1
	}

	type drawn struct {
		ds    chart.DataSet
		color chart.Color
		runs  [][][2]float64
	}
	items := make([]drawn, len(l.DataSets))
	for j, ds := range l.DataSets {
		items[j] = drawn{ds: ds, color: p.dataColor(ds.Color, next), runs: p.runs(sets[j])}
		p.b.legend = append(p.b.legend, legendEntry{
			name:   ds.Name,
			fill:   col.draw(items[j].color, chart.Auto),
			edge:   col.draw(ds.EdgeColor, chart.Auto),
			line:   !area,
			symbol: ds.Symbol,
		})
	}
	// Stacked areas fill down to the bottom, so the tallest goes first.
	if area && l.CombineMethod() == chart.Stack {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}

	var out []gochart.Series
	for _, it := range items {
		stroke := col.draw(it.color, chart.Auto)
		style := gochart.Style{
			StrokeColor:     stroke,
			StrokeWidth:     width,
			StrokeDashArray: col.dash(it.color),
		}
		if area {
			style.FillColor = stroke
			style.StrokeColor = col.draw(it.ds.EdgeColor, it.color)
			style.StrokeDashArray = nil
		}
		for _, run := range it.runs {
			out = append(out, continuous(it.ds.Name, run, p.yType, style))
		}
		if !area && l.GapColor != nil && len(it.runs) > 1 {
			out = append(out, p.gapSeries(l, it.runs))
		}
		if it.ds.Symbol != "" && it.ds.Symbol != chart.NoSymbol {
			out = append(out, p.symbolSeries(it.ds, it.color, it.runs))
		}
	}
	if l.DataLabels != nil {
		out = append(out, p.labelSeries(l, sets, false))
	}
	return out
}

// gapSeries bridges missing points of a line with the gap color.
func (p *plot) gapSeries(l *chart.Layer, runs [][][2]float64) gochart.Series {
	width := float64(l.GapWidth)
	if width <= 0 {
		width = math.Max(1, float64(l.LineWidth))
	}
	color := p.b.col.draw(*l.GapColor, chart.Transparent)
	dash := p.b.col.dash(*l.GapColor)
	return overlay{name: "gaps", yAxis: p.yType, draw: func(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range) {
		for k := 0; k+1 < len(runs); k++ {
			a := runs[k][len(runs[k])-1]
			b := runs[k+1][0]
			line(r, px(box, xr, a[0]), py(box, yr, a[1]), px(box, xr, b[0]), py(box, yr, b[1]), color, width, dash)
		}
	}}
}

func (p *plot) symbolSeries(ds chart.DataSet, color chart.Color, runs [][][2]float64) gochart.Series {
	size := ds.SymbolSize
	if size <= 0 {
		size = 5
	}
	fill := p.b.col.draw(ds.SymbolFill, color)
	edge := p.b.col.draw(ds.SymbolEdge, chart.Auto)
	return overlay{name: ds.Name, yAxis: p.yType, draw: func(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range) {
		for _, run := range runs {
			for _, pt := range run {
				symbol(r, ds.Symbol, px(box, xr, pt[0]), py(box, yr, pt[1]), size, fill, edge)
			}
		}
	}}
}

func (p *plot) trendLayer(l *chart.Layer, next *int) []gochart.Series {
	col := p.b.col
	width := float64(l.LineWidth)
	if width <= 0 {
		width = 1
	}
	var out []gochart.Series
	for _, ds := range l.DataSets {
		color := p.dataColor(ds.Color, next)
		p.b.legend = append(p.b.legend, legendEntry{name: ds.Name, fill: col.draw(color, chart.Auto), line: true})

		var all [][2]float64
		for _, run := range p.runs(stackLayer(&chart.Layer{DataSets: []chart.DataSet{ds}})[0]) {
			all = append(all, run...)
		}
		if len(all) < 2 {
			continue
		}
		out = append(out, &gochart.LinearRegressionSeries{
			Name:  ds.Name,
			YAxis: p.yType,
			Style: gochart.Style{
				StrokeColor:     col.draw(color, chart.Auto),
				StrokeWidth:     width,
				StrokeDashArray: col.dash(color),
			},
			InnerSeries: continuous(ds.Name, all, p.yType, gochart.Style{}),
		})
	}
	return out
}

// bar is one rectangle of a bar layer in data space.
type bar struct {
	x, w   float64
	lo, hi float64
	fill   drawing.Color
	edge   drawing.Color
}

func (p *plot) barLayer(l *chart.Layer, next *int) gochart.Series {
	col := p.b.col
	sets := stackLayer(l)
	gap := defaultBarGap
	if l.BarGap != nil {
		gap = math.Max(0, math.Min(*l.BarGap, 0.95))
	}
	subGap := math.Max(0, math.Min(l.SubBarGap, 0.95))
	side := l.CombineMethod() == chart.Side && len(sets) > 1
	multi := len(l.BarColors) > 0 || len(l.BarNames) > 0

	edgeOf := func(ds chart.DataSet) drawing.Color {
		if l.BorderColor != nil {
			return col.draw(*l.BorderColor, chart.Auto)
		}
		return col.draw(ds.EdgeColor, chart.Auto)
	}

	var bars []bar
	for j, ds := range l.DataSets {
		var setColor chart.Color
		if !multi {
			setColor = p.dataColor(ds.Color, next)
			p.b.legend = append(p.b.legend, legendEntry{name: ds.Name, fill: col.draw(setColor, chart.Auto), edge: edgeOf(ds)})
		}
		for i, pt := range sets[j] {
			color := setColor
			if multi {
				switch {
				case len(l.BarColors) == 1:
					color = l.BarColors[0]
				case i < len(l.BarColors):
					color = l.BarColors[i]
				default:
					color = col.data(*next + i)
				}
				if i < len(l.BarNames) {
					p.b.legend = append(p.b.legend, legendEntry{name: l.BarNames[i], fill: col.draw(color, chart.Auto), edge: edgeOf(ds)})
				}
			}
			if !pt.ok {
				continue
			}
			w := 1 - gap
			x := float64(i) - w/2
			if side {
				sub := w / float64(len(sets))
				x += float64(j) * sub
				w = sub
				x += w * subGap / 2
				w *= 1 - subGap
			}
			bars = append(bars, bar{x: x, w: w, lo: pt.lo, hi: pt.hi, fill: col.draw(color, chart.Auto), edge: edgeOf(ds)})
		}
	}
	if multi && len(l.BarColors) != 1 {
		*next += len(l.DataSets[0].Values)
	}

	var labels gochart.Series
	if l.DataLabels != nil || l.AggregateLabel != nil {
		labels = p.labelSeries(l, sets, true)
	}
	return overlay{name: "bars", yAxis: p.yType, draw: func(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range) {
		for _, bb := range bars {
			hi, ok := p.y.value(bb.hi)
			if !ok {
				continue
			}
			lo := p.y.baseline()
			if bb.lo != 0 {
				if v, ok := p.y.value(bb.lo); ok {
					lo = v
				}
			}
			rect(r, px(box, xr, bb.x), py(box, yr, lo), px(box, xr, bb.x+bb.w), py(box, yr, hi), bb.fill, bb.edge, 1)
		}
		if labels != nil {
			labels.Render(r, box, xr, yr, gochart.Style{})
		}
	}}
}

// labelSeries prints data values next to each point. Bars get the value
// inside the top of a stacked segment and the stack total on top when
// aggregate labels are configured.
func (p *plot) labelSeries(l *chart.Layer, sets [][]point, bars bool) gochart.Series {
	return overlay{name: "labels", yAxis: p.yType, draw: func(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range) {
		totals := map[int]float64{}
		for _, set := range sets {
			for i, pt := range set {
				if !pt.ok {
					continue
				}
				if pt.stacked {
					if pt.hi >= 0 {
						totals[i] = math.Max(totals[i], pt.hi)
					}
				}
				if l.DataLabels == nil {
					continue
				}
				v, ok := p.y.value(pt.hi)
				if !ok {
					continue
				}
				text := formatValue(pt.hi-pt.lo, -1, "")
				x, y := px(box, xr, float64(i)), py(box, yr, v)
				align := chart.Bottom
				if pt.stacked && bars {
					align = chart.Top
					y += 2
				} else {
					y -= 2
				}
				p.b.style(*l.DataLabels).text(r, text, x, y, align)
			}
		}
		if l.AggregateLabel == nil || !bars {
			return
		}
		for i, total := range totals {
			v, ok := p.y.value(total)
			if !ok {
				continue
			}
			p.b.style(*l.AggregateLabel).text(r, formatValue(total, -1, ""), px(box, xr, float64(i)), py(box, yr, v)-2, chart.Bottom)
		}
	}}
}
