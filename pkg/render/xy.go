package render

import (
	"math"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/matzehuels/chartdir/pkg/chart"
)

// plot holds the resolved geometry of an XY chart.
type plot struct {
	b      *builder
	area   chart.PlotArea
	slots  int
	x      span
	y      span
	y2     span
	y2Used bool

	// yType is the go-chart axis carrying the primary Y axis. go-chart
	// draws its secondary axis on the left, so that is our primary unless
	// the axes are swapped.
	yType  gochart.YAxisType
	y2Type gochart.YAxisType
}

// overlay is a series drawn entirely by a callback.
type overlay struct {
	name  string
	yAxis gochart.YAxisType
	draw  func(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range)
}

func (o overlay) GetName() string              { return o.name }
func (o overlay) GetYAxis() gochart.YAxisType  { return o.yAxis }
func (o overlay) GetStyle() gochart.Style      { return gochart.Style{} }
func (o overlay) Validate() error              { return nil }
func (o overlay) Render(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range, _ gochart.Style) {
	o.draw(r, box, xr, yr)
}

// px maps an x value to a pixel column.
func px(box gochart.Box, xr gochart.Range, v float64) int {
	return box.Left + xr.Translate(v)
}

// py maps a y value to a pixel row.
func py(box gochart.Box, yr gochart.Range, v float64) int {
	return box.Bottom - yr.Translate(v)
}

func (b *builder) plotArea() chart.PlotArea {
	if b.c.PlotArea != nil {
		return *b.c.PlotArea
	}
	w, h := b.c.Width, b.c.Height
	return chart.NewPlotArea(w/10, h/10, w*8/10, h*8/10)
}

// slots is the number of x positions: the longest data set or label list.
func (b *builder) slots() int {
	n := len(b.c.XAxis.Labels)
	for _, l := range b.c.Layers {
		if l == nil {
			continue
		}
		for _, ds := range l.DataSets {
			if len(ds.Values) > n {
				n = len(ds.Values)
			}
		}
	}
	if n == 0 {
		n = 1
	}
	return n
}

func (b *builder) hasLayer(t chart.LayerType) bool {
	for _, l := range b.c.Layers {
		if l != nil && l.Type == t {
			return true
		}
	}
	return false
}

func (p *plot) xSpan() span {
	a := &p.b.c.XAxis
	if a.Scale != nil {
		return fixedSpan(*a.Scale, p.area.Width, a.TickDensity)
	}
	indent := p.b.hasLayer(chart.LayerBar)
	if a.Indent != nil {
		indent = *a.Indent
	}
	n := max(p.slots, 1)
	s := span{Min: 0, Max: float64(n - 1), Step: 1}
	if indent || n == 1 {
		s.Min, s.Max = -0.5, float64(n)-0.5
	}
	for i := 0; i < p.slots; i++ {
		s.Ticks = append(s.Ticks, float64(i))
	}
	return s
}

// extent returns the lowest and highest plotted value over all layers.
func (p *plot) extent() (float64, float64) {
	lo, hi := 1.0, -1.0
	first := true
	add := func(v float64) {
		if first {
			lo, hi, first = v, v, false
			return
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	for _, l := range p.b.c.Layers {
		if l == nil {
			continue
		}
		for _, set := range stackLayer(l) {
			for _, sg := range set {
				if !sg.ok {
					continue
				}
				add(sg.hi)
				if sg.stacked {
					add(sg.lo)
				}
			}
		}
	}
	return lo, hi
}

func (p *plot) ySpan() span {
	a := &p.b.c.YAxis
	length := p.area.Height - a.TopMargin
	if length <= 0 {
		length = p.area.Height
	}
	var s span
	if a.Scale != nil {
		s = fixedSpan(*a.Scale, length, a.TickDensity)
	} else {
		as := chart.AutoScale{ZeroAffinity: chart.DefaultZeroAffinity}
		if a.AutoScale != nil {
			as = *a.AutoScale
		}
		lo, hi := p.extent()
		forceZero := p.b.hasLayer(chart.LayerBar) || p.b.hasLayer(chart.LayerArea)
		s = autoSpan(lo, hi, as, forceZero, length, a.TickDensity)
	}
	if a.TopMargin > 0 && a.TopMargin < p.area.Height {
		s.Max = s.Min + (s.Max-s.Min)*float64(p.area.Height)/float64(p.area.Height-a.TopMargin)
	}
	return s
}

func (p *plot) y2Span() (span, bool) {
	c := p.b.c
	a := &c.YAxis2
	used := c.Sync != nil || a.Title != "" || a.Scale != nil || a.LabelFormat != "" ||
		a.LabelStyle != nil || len(a.Marks) > 0 || len(a.Zones) > 0
	switch {
	case c.Sync != nil:
		return syncSpan(p.y, *c.Sync), used
	case a.Scale != nil:
		return fixedSpan(*a.Scale, p.area.Height, a.TickDensity), used
	}
	return p.y, used
}

// xy builds the go-chart Chart for an XY model.
func (b *builder) xy() (drawable, error) {
	c := b.c
	p := &plot{b: b, area: b.plotArea(), slots: b.slots()}
	p.x = p.xSpan()
	p.y = p.ySpan()
	p.y2, p.y2Used = p.y2Span()
	p.yType, p.y2Type = gochart.YAxisSecondary, gochart.YAxisPrimary
	if c.YAxisOnRight {
		p.yType, p.y2Type = gochart.YAxisPrimary, gochart.YAxisSecondary
	}

	series := []gochart.Series{
		overlay{name: "grid", yAxis: p.yType, draw: p.drawGrid},
		overlay{name: "zones", yAxis: p.yType, draw: p.drawZones(&c.XAxis, &c.YAxis, p.y)},
	}
	if p.y2Used {
		series = append(series, overlay{name: "zones2", yAxis: p.y2Type, draw: p.drawZones(nil, &c.YAxis2, p.y2)})
	}
	series = append(series, p.markSeries(false)...)
	series = append(series, p.layerSeries()...)
	series = append(series, p.markSeries(true)...)

	bg := b.background()
	bg.Padding = gochart.Box{
		Top:    p.area.Y,
		Left:   p.area.X,
		Right:  c.Width - (p.area.X + p.area.Width),
		Bottom: c.Height - (p.area.Y + p.area.Height),
		IsSet:  true,
	}

	canvasFill := b.col.draw(p.area.Background, chart.Transparent)
	if p.area.BgImage != nil {
		canvasFill = transparent
	}

	primary := p.yAxis(&c.YAxis, p.y, false)
	secondary := p.yAxis(&c.YAxis2, p.y2, !p.y2Used)
	if !c.YAxisOnRight {
		primary, secondary = secondary, primary
	}
	primary.AxisType = gochart.YAxisPrimary
	secondary.AxisType = gochart.YAxisSecondary

	return &gochart.Chart{
		Width:        c.Width,
		Height:       c.Height,
		DPI:          dpi,
		Font:         b.font,
		ColorPalette: palette{b.col},
		Background:   bg,
		Canvas: gochart.Style{
			FillColor:   canvasFill,
			StrokeColor: b.col.draw(p.area.Edge, chart.Transparent),
			StrokeWidth: 1,
		},
		XAxis:          p.xAxis(),
		YAxis:          primary,
		YAxisSecondary: secondary,
		Series:         series,
		Elements:       b.elements(),
	}, nil
}

var hiddenGrid = gochart.Style{Hidden: true}

func (p *plot) axisStyle(a *chart.Axis, hidden bool) gochart.Style {
	f := chart.Font{Size: 8, Color: chart.TextColor}
	if a.LabelStyle != nil {
		f = *a.LabelStyle
	}
	ts := p.b.style(f)
	width := float64(a.Width)
	if width <= 0 {
		width = 1
	}
	return gochart.Style{
		Hidden:              hidden,
		StrokeColor:         p.b.col.draw(chart.LineColor, chart.Auto),
		StrokeWidth:         width,
		Font:                ts.font,
		FontSize:            ts.size,
		FontColor:           ts.color,
		TextRotationDegrees: ts.angle,
	}
}

func (p *plot) nameStyle() gochart.Style {
	ts := p.b.style(chart.Font{Size: 10, Color: chart.TextColor})
	return gochart.Style{Font: ts.font, FontSize: ts.size, FontColor: ts.color}
}

func (p *plot) xAxis() gochart.XAxis {
	a := &p.b.c.XAxis
	var ticks []gochart.Tick
	for _, v := range p.x.Ticks {
		label := p.x.label(v, a.LabelFormat)
		if a.Scale == nil {
			i := int(v)
			label = ""
			if i < len(a.Labels) {
				label = a.Labels[i]
			} else if len(a.Labels) == 0 {
				label = strconv.Itoa(i)
			}
		}
		ticks = append(ticks, gochart.Tick{Value: v, Label: label})
	}
	return gochart.XAxis{
		Name:           a.Title,
		NameStyle:      p.nameStyle(),
		Style:          p.axisStyle(a, false),
		Range:          &gochart.ContinuousRange{Min: p.x.Min, Max: p.x.Max},
		Ticks:          boundedTicks(p.x, ticks),
		GridMajorStyle: hiddenGrid,
		GridMinorStyle: hiddenGrid,
	}
}

func (p *plot) yAxis(a *chart.Axis, s span, hidden bool) gochart.YAxis {
	format := a.LabelFormat
	var ticks []gochart.Tick
	for _, v := range s.Ticks {
		ticks = append(ticks, gochart.Tick{Value: v, Label: s.label(v, format)})
	}
	return gochart.YAxis{
		Name:           a.Title,
		NameStyle:      p.nameStyle(),
		Style:          p.axisStyle(a, hidden),
		Range:          &gochart.ContinuousRange{Min: s.Min, Max: s.Max},
		Ticks:          boundedTicks(s, ticks),
		Zero:           gochart.GridLine{Style: hiddenGrid},
		GridMajorStyle: hiddenGrid,
		GridMinorStyle: hiddenGrid,
	}
}

// boundedTicks adds unlabeled ticks at the span limits. go-chart derives
// the axis range from the ticks whenever any are set.
func boundedTicks(s span, ticks []gochart.Tick) []gochart.Tick {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, t := range ticks {
		lo = math.Min(lo, t.Value)
		hi = math.Max(hi, t.Value)
	}
	if lo > s.Min {
		ticks = append(ticks, gochart.Tick{Value: s.Min})
	}
	if hi < s.Max {
		ticks = append(ticks, gochart.Tick{Value: s.Max})
	}
	return ticks
}

// drawGrid draws alternate bands and grid lines at the primary ticks.
func (p *plot) drawGrid(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range) {
	col := p.b.col
	if col.visible(p.area.AltBackground, chart.Transparent) {
		alt := col.draw(p.area.AltBackground, chart.Transparent)
		for k := 1; k+1 < len(p.y.Ticks); k += 2 {
			rect(r, box.Left, py(box, yr, p.y.Ticks[k]), box.Right, py(box, yr, p.y.Ticks[k+1]), alt, transparent, 0)
		}
	}
	hgrid := col.draw(p.area.HGrid, chart.Transparent)
	for _, v := range p.y.Ticks {
		y := py(box, yr, v)
		line(r, box.Left, y, box.Right, y, hgrid, 1, nil)
	}
	vgrid := col.draw(p.area.VGrid, chart.Transparent)
	for _, v := range p.x.Ticks {
		x := px(box, xr, v)
		line(r, x, box.Top, x, box.Bottom, vgrid, 1, nil)
	}
}

// drawZones fills the zones of an x axis (vertical bands) and a y axis
// (horizontal bands).
func (p *plot) drawZones(xa, ya *chart.Axis, ys span) func(gochart.Renderer, gochart.Box, gochart.Range, gochart.Range) {
	return func(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range) {
		col := p.b.col
		if xa != nil {
			for _, z := range xa.Zones {
				rect(r, px(box, xr, z.Start), box.Top, px(box, xr, z.End), box.Bottom,
					col.draw(z.Color, chart.Transparent), transparent, 0)
			}
		}
		for _, z := range ya.Zones {
			lo, ok1 := ys.value(z.Start)
			hi, ok2 := ys.value(z.End)
			if !ok1 || !ok2 {
				continue
			}
			rect(r, box.Left, py(box, yr, lo), box.Right, py(box, yr, hi),
				col.draw(z.Color, chart.Transparent), transparent, 0)
		}
	}
}

// markSeries returns the mark overlays drawn below (onTop false) or above
// the layers.
func (p *plot) markSeries(onTop bool) []gochart.Series {
	c := p.b.c
	out := []gochart.Series{
		overlay{name: "marks", yAxis: p.yType, draw: p.drawMarks(&c.XAxis, &c.YAxis, p.y, onTop)},
	}
	if p.y2Used {
		out = append(out, overlay{name: "marks2", yAxis: p.y2Type, draw: p.drawMarks(nil, &c.YAxis2, p.y2, onTop)})
	}
	return out
}

func (p *plot) drawMarks(xa, ya *chart.Axis, ys span, onTop bool) func(gochart.Renderer, gochart.Box, gochart.Range, gochart.Range) {
	return func(r gochart.Renderer, box gochart.Box, xr, yr gochart.Range) {
		col := p.b.col
		if xa != nil {
			for _, m := range xa.Marks {
				if m.OnTop != onTop {
					continue
				}
				x := px(box, xr, m.Value)
				line(r, x, box.Top, x, box.Bottom, col.draw(m.LineColor, chart.LineColor), markWidth(m), col.dash(m.LineColor))
				line(r, x, box.Bottom, x, box.Bottom+4, col.draw(m.TickColor, m.LineColor), 1, nil)
				ty := box.Top + (box.Height())/2
				switch m.Align.Vertical() {
				case -1:
					ty = box.Top + 2
				case 1:
					ty = box.Bottom - 2
				}
				p.b.style(m.Font).text(r, m.Text, x, ty, flip(m.Align, true))
			}
		}
		for _, m := range ya.Marks {
			if m.OnTop != onTop {
				continue
			}
			v, ok := ys.value(m.Value)
			if !ok {
				continue
			}
			y := py(box, yr, v)
			line(r, box.Left, y, box.Right, y, col.draw(m.LineColor, chart.LineColor), markWidth(m), col.dash(m.LineColor))
			tick := box.Left - 4
			if p.yType == gochart.YAxisPrimary {
				tick = box.Right + 4
			}
			line(r, tick, y, tick+4*sign(box.Left-tick), y, col.draw(m.TickColor, m.LineColor), 1, nil)
			tx := box.Left + box.Width()/2
			switch m.Align.Horizontal() {
			case -1:
				tx = box.Left + 2
			case 1:
				tx = box.Right - 2
			}
			p.b.style(m.Font).text(r, m.Text, tx, y, flip(m.Align, false))
		}
	}
}

func markWidth(m chart.Mark) float64 {
	if m.LineWidth <= 0 {
		return 1
	}
	return float64(m.LineWidth)
}

func sign(v int) int {
	if v < 0 {
		return -1
	}
	return 1
}

// flip turns a mark alignment into a text anchor. Marks label the side of
// the line named by the alignment, so a top mark anchors the text's
// bottom edge on a horizontal line. On vertical lines the horizontal side
// flips instead.
func flip(a chart.Alignment, vertical bool) chart.Alignment {
	h, v := a.Horizontal(), a.Vertical()
	if vertical {
		h = -h
	} else {
		v = -v
	}
	return alignment(h, v)
}

func alignment(h, v int) chart.Alignment {
	row := map[int]chart.Alignment{-1: chart.TopLeft, 0: chart.Left, 1: chart.BottomLeft}[v]
	return row + chart.Alignment(h+1)
}
