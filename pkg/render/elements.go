package render

import (
	gochart "github.com/wcharczuk/go-chart/v2"

	"github.com/matzehuels/chartdir/pkg/chart"
)

// titleMargin separates docked titles from the image edge.
const titleMargin = 4

// elements returns the renderables drawn after all series: titles, the
// legend, then free text.
func (b *builder) elements() []gochart.Renderable {
	return []gochart.Renderable{b.drawTitles, b.drawLegend, b.drawTexts}
}

func (b *builder) drawTitles(r gochart.Renderer, _ gochart.Box, _ gochart.Style) {
	// Titles on the same side stack away from the edge.
	offset := map[int]int{}
	for _, t := range b.c.Titles {
		ts := b.style(t.Font)
		w, h := ts.measure(r, t.Text)
		pad := t.Border + 2
		bw, bh := w+2*pad, h+2*pad

		side := t.Align.Vertical()
		x, y := place(0, 0, b.c.Width, b.c.Height, bw, bh, t.Align)
		switch side {
		case -1:
			y = titleMargin + offset[side]
		case 1:
			y = b.c.Height - titleMargin - bh - offset[side]
		}
		offset[side] += bh + titleMargin

		fill := b.col.draw(t.Background, chart.Transparent)
		edge := b.col.draw(t.Edge, chart.Transparent)
		if fill.A != 0 || edge.A != 0 {
			rect(r, x, y, x+bw, y+bh, fill, edge, 1)
		}
		ts.text(r, t.Text, x+pad, y+pad, chart.TopLeft)
	}
}

func (b *builder) drawTexts(r gochart.Renderer, _ gochart.Box, _ gochart.Style) {
	for _, t := range b.c.Texts {
		ts := b.style(t.Font)
		if t.Vertical && ts.angle == 0 {
			ts.angle = 90
		}
		ts.text(r, t.Text, t.X, t.Y, t.Align)
	}
}

// legend layout, in pixels.
const (
	legendPad = 4
	legendGap = 6
)

func (b *builder) drawLegend(r gochart.Renderer, _ gochart.Box, _ gochart.Style) {
	lg := b.c.Legend
	if lg == nil {
		return
	}
	var entries []legendEntry
	for _, e := range b.legend {
		if e.name != "" {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return
	}

	ts := b.style(lg.Font)
	swatch := int(ts.size)
	if swatch < 6 {
		swatch = 6
	}
	type cell struct {
		e    legendEntry
		w, h int
	}
	cells := make([]cell, len(entries))
	var bw, bh int
	for i, e := range entries {
		w, h := ts.measure(r, e.name)
		if h < swatch {
			h = swatch
		}
		w += swatch + legendPad
		cells[i] = cell{e: e, w: w, h: h}
		if lg.Vertical {
			bw = max(bw, w)
			bh += h
			if i > 0 {
				bh += legendPad
			}
		} else {
			bh = max(bh, h)
			bw += w
			if i > 0 {
				bw += legendGap
			}
		}
	}
	bw += 2 * legendPad
	bh += 2 * legendPad

	x, y := anchor(lg.X, lg.Y, bw, bh, lg.Align)
	fill := b.col.draw(lg.Background, chart.Transparent)
	edge := b.col.draw(lg.Edge, chart.Auto)
	rect(r, x, y, x+bw, y+bh, fill, edge, 1)

	cx, cy := x+legendPad, y+legendPad
	for _, c := range cells {
		sy := cy + (c.h-swatch)/2
		if c.e.line {
			mid := sy + swatch/2
			line(r, cx, mid, cx+swatch, mid, c.e.fill, 2, nil)
			if c.e.symbol != "" && c.e.symbol != chart.NoSymbol {
				symbol(r, c.e.symbol, cx+swatch/2, mid, swatch*2/3, c.e.fill, c.e.edge)
			}
		} else {
			rect(r, cx, sy, cx+swatch, sy+swatch, c.e.fill, c.e.edge, 1)
		}
		ts.text(r, c.e.name, cx+swatch+legendPad, cy+c.h/2, chart.Left)
		if lg.Vertical {
			cy += c.h + legendPad
		} else {
			cx += c.w + legendGap
		}
	}
}
